package fetcher

import (
	"time"

	"newsbrief/internal/pkg/config"
)

// Settings is the operator-facing content enhancement configuration,
// combining the fetch limits with the enhancement policy.
type Settings struct {
	// Enabled toggles content enhancement entirely.
	Enabled bool

	// Threshold is the body length in bytes below which an item's full
	// text is fetched.
	Threshold int

	// Parallelism bounds concurrent content fetches.
	Parallelism int

	// Fetch bounds each individual fetch.
	Fetch Config
}

// DefaultSettings returns the production enhancement settings.
func DefaultSettings() Settings {
	return Settings{
		Enabled:     true,
		Threshold:   600,
		Parallelism: 5,
		Fetch:       DefaultConfig(),
	}
}

// LoadSettingsFromEnv loads the enhancement settings with validated
// fallback to defaults.
//
// Environment variables:
//   - CONTENT_FETCH_ENABLED: toggle (default true)
//   - CONTENT_FETCH_THRESHOLD: bytes, 0-100000 (default 600)
//   - CONTENT_FETCH_PARALLELISM: 1-20 (default 5)
//   - CONTENT_FETCH_TIMEOUT: duration, 1s-2m (default 20s)
//   - CONTENT_FETCH_DENY_PRIVATE_IPS: SSRF guard toggle (default true)
func LoadSettingsFromEnv() (Settings, []string) {
	s := DefaultSettings()
	var warnings []string

	result := config.LoadEnvBool("CONTENT_FETCH_ENABLED", s.Enabled)
	s.Enabled = result.Value.(bool)
	warnings = append(warnings, result.Warnings...)

	result = config.LoadEnvInt("CONTENT_FETCH_THRESHOLD", s.Threshold, func(v int) error {
		return config.ValidateIntRange(v, 0, 100000)
	})
	s.Threshold = result.Value.(int)
	warnings = append(warnings, result.Warnings...)

	result = config.LoadEnvInt("CONTENT_FETCH_PARALLELISM", s.Parallelism, func(v int) error {
		return config.ValidateIntRange(v, 1, 20)
	})
	s.Parallelism = result.Value.(int)
	warnings = append(warnings, result.Warnings...)

	result = config.LoadEnvDuration("CONTENT_FETCH_TIMEOUT", s.Fetch.Timeout, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Second, 2*time.Minute)
	})
	s.Fetch.Timeout = result.Value.(time.Duration)
	warnings = append(warnings, result.Warnings...)

	result = config.LoadEnvBool("CONTENT_FETCH_DENY_PRIVATE_IPS", s.Fetch.DenyPrivateIPs)
	s.Fetch.DenyPrivateIPs = result.Value.(bool)
	warnings = append(warnings, result.Warnings...)

	return s, warnings
}
