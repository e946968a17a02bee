package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordSourceFetch(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		status    string
		itemCount int
	}{
		{"successful fetch", "go-blog", "ok", 12},
		{"partial fetch", "hn-golang", "partial", 3},
		{"failed fetch", "releases", "failed", 0},
		{"empty source name", "", "ok", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordSourceFetch(tt.source, tt.status, 120*time.Millisecond, tt.itemCount)
			})
		})
	}
}

func TestRecordSourceFetchError(t *testing.T) {
	for _, kind := range []string{"transient", "permanent", "quota", "circuit_open", "timeout"} {
		assert.NotPanics(t, func() {
			RecordSourceFetchError("go-blog", kind)
		})
	}
}

func TestRecordCircuitTransition(t *testing.T) {
	for _, state := range []string{"closed", "open", "half_open"} {
		assert.NotPanics(t, func() {
			RecordCircuitTransition("go-blog", state)
		})
	}
}

func TestRecordItemsDropped(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordItemsDropped("filter", "stale", 5)
	})
	// Zero and negative counts must not register.
	assert.NotPanics(t, func() {
		RecordItemsDropped("filter", "stale", 0)
		RecordItemsDropped("dedup_batch", "url_match", -1)
	})
}

func TestRecordEnrichment(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordEnrichment(true, 2*time.Second)
		RecordEnrichment(false, 100*time.Millisecond)
	})
}

func TestRecordRun(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordRun("ok", 45*time.Second)
		RecordRun("failed", time.Second)
	})
}

func TestRecordDelivery(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordDelivery("telegram", true)
		RecordDelivery("slack", false)
	})
}

func TestRecordHistoryPruned(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordHistoryPruned(10)
		RecordHistoryPruned(0)
	})
}
