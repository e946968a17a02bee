package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"newsbrief/internal/domain/entity"
	"newsbrief/internal/resilience/circuitbreaker"
	"newsbrief/internal/resilience/retry"
)

// fakeSource is a scripted Source for wrapper tests.
type fakeSource struct {
	name  string
	calls int
	fetch func(call int) ([]entity.Item, error)
}

func (f *fakeSource) Fetch(ctx context.Context) ([]entity.Item, error) {
	f.calls++
	return f.fetch(f.calls)
}

func (f *fakeSource) Name() string            { return f.name }
func (f *fakeSource) Kind() entity.SourceKind { return entity.SourceKindFeed }
func (f *fakeSource) Priority() int           { return 5 }

func fastRetry() retry.Config {
	return retry.Config{
		MaxAttempts:    3,
		InitialDelay:   time.Millisecond,
		MaxDelay:       5 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

func newTestBreaker(name string) *circuitbreaker.SourceBreaker {
	return circuitbreaker.NewSourceBreaker(circuitbreaker.SourceConfig{
		SourceName:       name,
		FailureThreshold: 3,
		Cooldown:         time.Hour,
	})
}

func testItems(n int) []entity.Item {
	items := make([]entity.Item, n)
	for i := range items {
		items[i] = entity.Item{ID: string(rune('a' + i)), SourceName: "test"}
	}
	return items
}

func TestResilientSource_Fetch_Success(t *testing.T) {
	src := &fakeSource{name: "test", fetch: func(int) ([]entity.Item, error) {
		return testItems(2), nil
	}}
	rs := NewResilientSource(src, newTestBreaker("test"), fastRetry(), nil)

	res := rs.Fetch(context.Background())

	if res.Outcome.Status != entity.FetchOK {
		t.Errorf("Status = %q, want %q", res.Outcome.Status, entity.FetchOK)
	}
	if res.Outcome.ItemsCount != 2 {
		t.Errorf("ItemsCount = %d, want 2", res.Outcome.ItemsCount)
	}
	if res.Outcome.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", res.Outcome.Attempts)
	}
	if len(res.Items) != 2 {
		t.Errorf("items length = %d, want 2", len(res.Items))
	}
}

func TestResilientSource_Fetch_RetriesTransient(t *testing.T) {
	src := &fakeSource{name: "test", fetch: func(call int) ([]entity.Item, error) {
		if call < 3 {
			return nil, &retry.HTTPError{StatusCode: 503, Message: "Service Unavailable"}
		}
		return testItems(1), nil
	}}
	rs := NewResilientSource(src, newTestBreaker("test"), fastRetry(), nil)

	res := rs.Fetch(context.Background())

	if res.Outcome.Status != entity.FetchOK {
		t.Errorf("Status = %q, want %q", res.Outcome.Status, entity.FetchOK)
	}
	if res.Outcome.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", res.Outcome.Attempts)
	}
	if src.calls != 3 {
		t.Errorf("adapter calls = %d, want 3", src.calls)
	}
}

func TestResilientSource_Fetch_PermanentNoRetry(t *testing.T) {
	src := &fakeSource{name: "test", fetch: func(int) ([]entity.Item, error) {
		return nil, &retry.HTTPError{StatusCode: 401, Message: "Unauthorized"}
	}}
	rs := NewResilientSource(src, newTestBreaker("test"), fastRetry(), nil)

	res := rs.Fetch(context.Background())

	if res.Outcome.Status != entity.FetchFailed {
		t.Errorf("Status = %q, want %q", res.Outcome.Status, entity.FetchFailed)
	}
	if res.Outcome.ErrorKind != string(entity.ErrorKindPermanent) {
		t.Errorf("ErrorKind = %q, want %q", res.Outcome.ErrorKind, entity.ErrorKindPermanent)
	}
	if src.calls != 1 {
		t.Errorf("adapter calls = %d, want 1 (no retry)", src.calls)
	}
}

func TestResilientSource_Fetch_QuotaNoRetry(t *testing.T) {
	src := &fakeSource{name: "test", fetch: func(int) ([]entity.Item, error) {
		return nil, entity.NewSourceError("test", entity.ErrorKindQuota, errors.New("rate limited"))
	}}
	rs := NewResilientSource(src, newTestBreaker("test"), fastRetry(), nil)

	res := rs.Fetch(context.Background())

	if res.Outcome.ErrorKind != string(entity.ErrorKindQuota) {
		t.Errorf("ErrorKind = %q, want %q", res.Outcome.ErrorKind, entity.ErrorKindQuota)
	}
	if src.calls != 1 {
		t.Errorf("adapter calls = %d, want 1 (quota skips retry)", src.calls)
	}
}

func TestResilientSource_Fetch_CircuitShortCircuits(t *testing.T) {
	src := &fakeSource{name: "test", fetch: func(int) ([]entity.Item, error) {
		return nil, &retry.HTTPError{StatusCode: 401, Message: "Unauthorized"}
	}}
	breaker := newTestBreaker("test")
	rs := NewResilientSource(src, breaker, fastRetry(), nil)

	// Three failed logical calls open the circuit.
	for i := 0; i < 3; i++ {
		rs.Fetch(context.Background())
	}
	if breaker.State() != entity.BreakerOpen {
		t.Fatalf("breaker state = %q, want %q", breaker.State(), entity.BreakerOpen)
	}

	callsBefore := src.calls
	res := rs.Fetch(context.Background())

	if src.calls != callsBefore {
		t.Error("adapter was invoked while the circuit was open")
	}
	if res.Outcome.Status != entity.FetchFailed {
		t.Errorf("Status = %q, want %q", res.Outcome.Status, entity.FetchFailed)
	}
	if res.Outcome.ErrorKind != string(entity.ErrorKindCircuitOpen) {
		t.Errorf("ErrorKind = %q, want %q", res.Outcome.ErrorKind, entity.ErrorKindCircuitOpen)
	}
	if res.Outcome.Attempts != 0 {
		t.Errorf("Attempts = %d, want 0", res.Outcome.Attempts)
	}
}

func TestResilientSource_Fetch_PartialResults(t *testing.T) {
	src := &fakeSource{name: "test", fetch: func(int) ([]entity.Item, error) {
		return testItems(2), errors.New("one feed of three unreachable")
	}}
	breaker := newTestBreaker("test")
	rs := NewResilientSource(src, breaker, fastRetry(), nil)

	res := rs.Fetch(context.Background())

	if res.Outcome.Status != entity.FetchPartial {
		t.Errorf("Status = %q, want %q", res.Outcome.Status, entity.FetchPartial)
	}
	if len(res.Items) != 2 {
		t.Errorf("items length = %d, want 2 (partial results kept)", len(res.Items))
	}
	// Partial responses keep the breaker closed.
	if breaker.State() != entity.BreakerClosed {
		t.Errorf("breaker state = %q, want %q", breaker.State(), entity.BreakerClosed)
	}
}

func TestResilientSource_Fetch_PanicContained(t *testing.T) {
	src := &fakeSource{name: "test", fetch: func(int) ([]entity.Item, error) {
		panic("adapter bug")
	}}
	rs := NewResilientSource(src, newTestBreaker("test"), fastRetry(), nil)

	res := rs.Fetch(context.Background())

	if res.Outcome.Status != entity.FetchFailed {
		t.Errorf("Status = %q, want %q", res.Outcome.Status, entity.FetchFailed)
	}
	if res.Outcome.ErrorKind != string(entity.ErrorKindPermanent) {
		t.Errorf("ErrorKind = %q, want %q", res.Outcome.ErrorKind, entity.ErrorKindPermanent)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want entity.SourceErrorKind
	}{
		{"typed source error", entity.NewSourceError("s", entity.ErrorKindQuota, errors.New("x")), entity.ErrorKindQuota},
		{"deadline exceeded", context.DeadlineExceeded, entity.ErrorKindTimeout},
		{"http 503", &retry.HTTPError{StatusCode: 503}, entity.ErrorKindTransient},
		{"http 429", &retry.HTTPError{StatusCode: 429}, entity.ErrorKindQuota},
		{"http 401", &retry.HTTPError{StatusCode: 401}, entity.ErrorKindPermanent},
		{"plain error", errors.New("boom"), entity.ErrorKindPermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.err); got != tt.want {
				t.Errorf("classify(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
