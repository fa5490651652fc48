// Package stats records write latencies for the transmitter.
package stats

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	minLatency = int64(time.Microsecond)
	maxLatency = int64(10 * time.Second)
	sigFigures = 3
)

// Summary is a snapshot of recorded write latencies.
type Summary struct {
	Count int64
	P50   time.Duration
	P99   time.Duration
	Max   time.Duration
}

// Histogram implements ports.SendRecorder on top of an HDR histogram.
// Safe for concurrent use.
type Histogram struct {
	mu sync.Mutex
	h  *hdrhistogram.Histogram
}

// NewHistogram creates an empty latency histogram.
func NewHistogram() *Histogram {
	return &Histogram{h: hdrhistogram.New(minLatency, maxLatency, sigFigures)}
}

// RecordSend records one write latency. Values are clamped into the trackable range.
func (h *Histogram) RecordSend(d time.Duration) {
	v := int64(d)
	if v < minLatency {
		v = minLatency
	}
	if v > maxLatency {
		v = maxLatency
	}
	h.mu.Lock()
	_ = h.h.RecordValue(v)
	h.mu.Unlock()
}

// Summary returns the current counts and percentiles.
func (h *Histogram) Summary() Summary {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Summary{
		Count: h.h.TotalCount(),
		P50:   time.Duration(h.h.ValueAtQuantile(50)),
		P99:   time.Duration(h.h.ValueAtQuantile(99)),
		Max:   time.Duration(h.h.Max()),
	}
}
