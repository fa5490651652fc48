package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHistogram_Summary(t *testing.T) {
	h := NewHistogram()
	assert.Equal(t, int64(0), h.Summary().Count)

	for i := 1; i <= 100; i++ {
		h.RecordSend(time.Duration(i) * time.Millisecond)
	}

	s := h.Summary()
	assert.Equal(t, int64(100), s.Count)
	assert.InDelta(t, float64(50*time.Millisecond), float64(s.P50), float64(time.Millisecond))
	assert.InDelta(t, float64(99*time.Millisecond), float64(s.P99), float64(time.Millisecond))
	assert.InDelta(t, float64(100*time.Millisecond), float64(s.Max), float64(time.Millisecond))
}

func TestHistogram_ClampsOutOfRange(t *testing.T) {
	h := NewHistogram()
	h.RecordSend(0)
	h.RecordSend(time.Minute)

	s := h.Summary()
	assert.Equal(t, int64(2), s.Count)
	assert.LessOrEqual(t, s.Max, 10*time.Second+10*time.Millisecond)
}
