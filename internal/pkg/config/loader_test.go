package config

import (
	"testing"
	"time"
)

func TestLoadEnvString(t *testing.T) {
	t.Run("returns default when unset", func(t *testing.T) {
		if got := LoadEnvString("NEWSBRIEF_TEST_UNSET", "fallback"); got != "fallback" {
			t.Errorf("LoadEnvString() = %q, want %q", got, "fallback")
		}
	})

	t.Run("returns env value when set", func(t *testing.T) {
		t.Setenv("NEWSBRIEF_TEST_STR", "custom")
		if got := LoadEnvString("NEWSBRIEF_TEST_STR", "fallback"); got != "custom" {
			t.Errorf("LoadEnvString() = %q, want %q", got, "custom")
		}
	})
}

func TestLoadEnvWithFallback(t *testing.T) {
	t.Run("unset uses default without warning", func(t *testing.T) {
		result := LoadEnvWithFallback("NEWSBRIEF_TEST_UNSET", "30 5 * * *", ValidateCronSchedule)
		if result.Value.(string) != "30 5 * * *" {
			t.Errorf("Value = %v, want default", result.Value)
		}
		if result.FallbackApplied {
			t.Error("FallbackApplied = true for unset variable")
		}
	})

	t.Run("invalid value falls back with warning", func(t *testing.T) {
		t.Setenv("NEWSBRIEF_TEST_CRON", "not a cron")
		result := LoadEnvWithFallback("NEWSBRIEF_TEST_CRON", "30 5 * * *", ValidateCronSchedule)
		if result.Value.(string) != "30 5 * * *" {
			t.Errorf("Value = %v, want default", result.Value)
		}
		if !result.FallbackApplied {
			t.Error("FallbackApplied = false for invalid value")
		}
		if len(result.Warnings) != 1 {
			t.Errorf("Warnings = %d, want 1", len(result.Warnings))
		}
	})

	t.Run("valid value passes through", func(t *testing.T) {
		t.Setenv("NEWSBRIEF_TEST_CRON", "0 */6 * * *")
		result := LoadEnvWithFallback("NEWSBRIEF_TEST_CRON", "30 5 * * *", ValidateCronSchedule)
		if result.Value.(string) != "0 */6 * * *" {
			t.Errorf("Value = %v, want env value", result.Value)
		}
	})
}

func TestLoadEnvDuration(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		want         time.Duration
		wantFallback bool
	}{
		{"unset uses default", "", 45 * time.Second, false},
		{"valid duration", "2m", 2 * time.Minute, false},
		{"unparseable falls back", "fortnight", 45 * time.Second, true},
		{"out of range falls back", "10h", 45 * time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv("NEWSBRIEF_TEST_DUR", tt.envValue)
			}
			result := LoadEnvDuration("NEWSBRIEF_TEST_DUR", 45*time.Second, func(d time.Duration) error {
				return ValidateDuration(d, time.Second, time.Hour)
			})
			if result.Value.(time.Duration) != tt.want {
				t.Errorf("Value = %v, want %v", result.Value, tt.want)
			}
			if result.FallbackApplied != tt.wantFallback {
				t.Errorf("FallbackApplied = %v, want %v", result.FallbackApplied, tt.wantFallback)
			}
		})
	}
}

func TestLoadEnvInt(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		want         int
		wantFallback bool
	}{
		{"unset uses default", "", 3, false},
		{"valid integer", "7", 7, false},
		{"unparseable falls back", "seven", 3, true},
		{"out of range falls back", "999", 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv("NEWSBRIEF_TEST_INT", tt.envValue)
			}
			result := LoadEnvInt("NEWSBRIEF_TEST_INT", 3, func(v int) error {
				return ValidateIntRange(v, 0, 10)
			})
			if result.Value.(int) != tt.want {
				t.Errorf("Value = %v, want %d", result.Value, tt.want)
			}
			if result.FallbackApplied != tt.wantFallback {
				t.Errorf("FallbackApplied = %v, want %v", result.FallbackApplied, tt.wantFallback)
			}
		})
	}
}

func TestLoadEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
		wantFallback bool
	}{
		{"unset uses default", "", true, true, false},
		{"true string", "true", false, true, false},
		{"numeric true", "1", false, true, false},
		{"false string", "false", true, false, false},
		{"garbage falls back", "yes please", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv("NEWSBRIEF_TEST_BOOL", tt.envValue)
			}
			result := LoadEnvBool("NEWSBRIEF_TEST_BOOL", tt.defaultValue)
			if result.Value.(bool) != tt.want {
				t.Errorf("Value = %v, want %v", result.Value, tt.want)
			}
			if result.FallbackApplied != tt.wantFallback {
				t.Errorf("FallbackApplied = %v, want %v", result.FallbackApplied, tt.wantFallback)
			}
		})
	}
}
