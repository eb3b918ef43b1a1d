package loop

import (
	"math"

	"github.com/san-kum/yawrate/internal/plant"
)

// Tick records one pass through the control law.
type Tick struct {
	Index    int     `json:"index"`
	Time     float64 `json:"time"`
	Throttle float64 `json:"throttle"`
	Demand   float64 `json:"demand"`
	Psi      float64 `json:"psi"`
	DPsi     float64 `json:"dpsi"`
	Command  float64 `json:"command"`
	Integral float64 `json:"integral"`
	Reset    bool    `json:"reset"`
	Cut      bool    `json:"cut"`
}

// RateError is the yaw-rate error the law saw on this tick.
func (t Tick) RateError() float64 {
	return t.Demand - t.DPsi
}

type Metric interface {
	Name() string
	Observe(t Tick)
	Value() float64
	Reset()
}

type Observer interface {
	OnTick(t Tick)
}

type Config struct {
	RateHz        float64
	Duration      float64
	ThrottleCut   float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		RateHz:        500,
		Duration:      5,
		ThrottleCut:   0.05,
		ValidateState: true,
	}
}

func (c Config) Dt() float64 {
	return 1.0 / c.RateHz
}

func (c Config) Ticks() int {
	return int(math.Round(c.Duration * c.RateHz))
}

type Result struct {
	Ticks   []Tick
	States  []plant.State
	Metrics map[string]float64
	Errors  []error
}
