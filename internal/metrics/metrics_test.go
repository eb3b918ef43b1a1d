package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/yawrate/internal/loop"
)

func TestTrackingRMS(t *testing.T) {
	m := NewTrackingRMS()
	m.Observe(loop.Tick{Demand: 1, DPsi: 0})
	m.Observe(loop.Tick{Demand: 0, DPsi: 1})
	m.Observe(loop.Tick{Demand: 0.5, DPsi: 0.5})
	m.Observe(loop.Tick{Demand: 0, DPsi: 0})

	if v := m.Value(); math.Abs(v-math.Sqrt(0.5)) > 1e-12 {
		t.Errorf("expected %f, got %f", math.Sqrt(0.5), v)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()
	m.Observe(loop.Tick{Command: 0.4})
	m.Observe(loop.Tick{Command: -0.2})

	if v := m.Value(); math.Abs(v-0.3) > 1e-12 {
		t.Errorf("expected 0.3, got %f", v)
	}
}

func TestControlEffortUsesMixerRange(t *testing.T) {
	m := NewControlEffort()
	m.Observe(loop.Tick{Command: 2.5})
	m.Observe(loop.Tick{Command: -0.5})
	m.Observe(loop.Tick{Command: -3})
	m.Observe(loop.Tick{Command: 0})

	if v := m.Value(); math.Abs(v-0.625) > 1e-12 {
		t.Errorf("expected 0.625, got %f", v)
	}
	if c := m.Clipped(); math.Abs(c-0.5) > 1e-12 {
		t.Errorf("expected clipped 0.5, got %f", c)
	}

	m.Reset()
	if m.Value() != 0 || m.Clipped() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestWindupResets(t *testing.T) {
	m := NewWindupResets()
	for _, r := range []bool{true, false, true, true} {
		m.Observe(loop.Tick{Reset: r})
	}
	if m.Value() != 3 {
		t.Errorf("expected 3 resets, got %f", m.Value())
	}
}

func TestSaturation(t *testing.T) {
	m := NewSaturation()
	if m.Value() != 0 {
		t.Error("expected zero with no samples")
	}

	for _, integral := range []float64{0, 5.9, 6, 6.1, -7} {
		m.Observe(loop.Tick{Integral: integral})
	}
	if v := m.Value(); math.Abs(v-0.4) > 1e-12 {
		t.Errorf("expected 0.4, got %f", v)
	}
}

func TestDefaultsHaveUniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Defaults() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
	if len(seen) != 4 {
		t.Errorf("expected 4 metrics, got %d", len(seen))
	}
}
