package metrics

import (
	"math"

	"github.com/san-kum/yawrate/internal/flight"
	"github.com/san-kum/yawrate/internal/loop"
)

// ControlEffort is the mean yaw command the mixer actually receives,
// after the normalized ±1 clamp. Commands beyond the clamp are counted
// separately by Clipped.
type ControlEffort struct {
	name    string
	sum     float64
	clipped int
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{name: "control_effort"}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(t loop.Tick) {
	if math.Abs(t.Command) > 1 {
		c.clipped++
	}
	c.sum += math.Abs(flight.ConstrainAbs(t.Command, 1))
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

// Clipped is the fraction of ticks whose command exceeded the mixer range.
func (c *ControlEffort) Clipped() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.clipped) / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.clipped = 0
	c.samples = 0
}
