package metrics

import (
	"math"

	"github.com/san-kum/yawrate/internal/loop"
	"github.com/san-kum/yawrate/internal/pids"
)

// WindupResets counts ticks where the rate error dropped the integral.
type WindupResets struct {
	name   string
	resets int
}

func NewWindupResets() *WindupResets {
	return &WindupResets{name: "windup_resets"}
}

func (w *WindupResets) Name() string {
	return w.name
}

func (w *WindupResets) Observe(t loop.Tick) {
	if t.Reset {
		w.resets++
	}
}

func (w *WindupResets) Value() float64 {
	return float64(w.resets)
}

func (w *WindupResets) Reset() {
	w.resets = 0
}

// Saturation is the fraction of ticks whose carried integral sits past
// the windup limit.
type Saturation struct {
	name      string
	threshold float64
	saturated int
	samples   int
}

func NewSaturation() *Saturation {
	return &Saturation{
		name:      "saturation",
		threshold: pids.WindupMax,
	}
}

func (s *Saturation) Name() string {
	return s.name
}

func (s *Saturation) Observe(t loop.Tick) {
	s.samples++
	if math.Abs(t.Integral) > s.threshold {
		s.saturated++
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.saturated) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.saturated = 0
	s.samples = 0
}

// Defaults returns the metrics every run records.
func Defaults() []loop.Metric {
	return []loop.Metric{
		NewTrackingRMS(),
		NewControlEffort(),
		NewWindupResets(),
		NewSaturation(),
	}
}
