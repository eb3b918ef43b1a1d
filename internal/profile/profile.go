// Package profile generates yaw-rate demands over time for closed-loop runs.
package profile

import (
	"fmt"
	"math"

	"github.com/san-kum/yawrate/internal/config"
	"github.com/san-kum/yawrate/internal/flight"
)

// Profile yields the stick demands for time t.
type Profile interface {
	Demand(t float64) flight.Demands
}

// Func adapts a yaw-rate function into a Profile.
type Func struct {
	Throttle float64
	Rate     func(t float64) float64
}

func (f Func) Demand(t float64) flight.Demands {
	return flight.Demands{Throttle: f.Throttle, Yaw: f.Rate(t)}
}

func Hold(throttle, rate float64) Func {
	return Func{Throttle: throttle, Rate: func(float64) float64 { return rate }}
}

func Step(throttle, amplitude, start float64) Func {
	return Func{Throttle: throttle, Rate: func(t float64) float64 {
		if t < start {
			return 0
		}
		return amplitude
	}}
}

// Doublet commands +amplitude for width seconds, then -amplitude for
// width seconds, then zero.
func Doublet(throttle, amplitude, start, width float64) Func {
	return Func{Throttle: throttle, Rate: func(t float64) float64 {
		switch {
		case t < start:
			return 0
		case t < start+width:
			return amplitude
		case t < start+2*width:
			return -amplitude
		default:
			return 0
		}
	}}
}

// Ramp rises at slope from start until it reaches amplitude.
func Ramp(throttle, amplitude, start, slope float64) Func {
	return Func{Throttle: throttle, Rate: func(t float64) float64 {
		if t < start {
			return 0
		}
		r := slope * (t - start)
		if math.Abs(r) >= math.Abs(amplitude) {
			return amplitude
		}
		return r
	}}
}

func Sine(throttle, amplitude, frequency float64) Func {
	return Func{Throttle: throttle, Rate: func(t float64) float64 {
		return amplitude * math.Sin(2*math.Pi*frequency*t)
	}}
}

// ThrottleCut wraps p and drops the throttle to zero in [from, to).
type ThrottleCut struct {
	Profile
	From, To float64
}

func (c ThrottleCut) Demand(t float64) flight.Demands {
	d := c.Profile.Demand(t)
	if t >= c.From && t < c.To {
		d.Throttle = 0
	}
	return d
}

func FromConfig(cfg config.ProfileConfig) (Profile, error) {
	var p Profile
	switch cfg.Kind {
	case "hold":
		p = Hold(cfg.Throttle, cfg.Amplitude)
	case "step":
		p = Step(cfg.Throttle, cfg.Amplitude, cfg.Start)
	case "doublet":
		p = Doublet(cfg.Throttle, cfg.Amplitude, cfg.Start, cfg.Width)
	case "ramp":
		p = Ramp(cfg.Throttle, cfg.Amplitude, cfg.Start, cfg.Slope)
	case "sine":
		p = Sine(cfg.Throttle, cfg.Amplitude, cfg.Frequency)
	default:
		return nil, fmt.Errorf("%w: %q", flight.ErrUnknownProfile, cfg.Kind)
	}

	if cfg.CutTo > cfg.CutFrom {
		p = ThrottleCut{Profile: p, From: cfg.CutFrom, To: cfg.CutTo}
	}
	return p, nil
}

func Kinds() []string {
	return []string{"doublet", "hold", "ramp", "sine", "step"}
}
