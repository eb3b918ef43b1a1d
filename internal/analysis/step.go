package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/yawrate/internal/flight"
	"github.com/san-kum/yawrate/internal/loop"
)

const settleBand = 0.02

type Response struct {
	Target        float64
	Final         float64
	RiseTime      float64
	Overshoot     float64
	SettlingTime  float64
	SteadyError   float64
	Settled       bool
	StepStartTime float64
}

// StepResponse measures the rate response to the last change in demand.
// Times are relative to the tick the demand changed on; Overshoot is a
// fraction of the step size.
func StepResponse(ticks []loop.Tick) (Response, error) {
	if len(ticks) < 2 {
		return Response{}, fmt.Errorf("%w: need at least 2 ticks", flight.ErrInvalidState)
	}

	last := ticks[len(ticks)-1]
	target := last.Demand

	start := 0
	for i := len(ticks) - 1; i > 0; i-- {
		if ticks[i-1].Demand != target {
			start = i
			break
		}
	}

	initial := ticks[start].DPsi
	step := target - initial
	if step == 0 {
		return Response{}, fmt.Errorf("%w: no step in demand", flight.ErrInvalidState)
	}

	resp := Response{
		Target:        target,
		Final:         last.DPsi,
		SteadyError:   target - last.DPsi,
		StepStartTime: ticks[start].Time,
		RiseTime:      math.NaN(),
		SettlingTime:  math.NaN(),
	}
	t0 := ticks[start].Time

	var t10, t90 float64
	got10, got90 := false, false
	peak := 0.0
	for _, tk := range ticks[start:] {
		progress := (tk.DPsi - initial) / step
		if !got10 && progress >= 0.1 {
			t10, got10 = tk.Time, true
		}
		if !got90 && progress >= 0.9 {
			t90, got90 = tk.Time, true
		}
		if progress-1 > peak {
			peak = progress - 1
		}
	}
	if got10 && got90 {
		resp.RiseTime = t90 - t10
	}
	resp.Overshoot = peak

	// The loop carries a steady-state error, so settling is measured
	// against the final rate rather than the demand.
	band := settleBand * math.Abs(step)
	lastOut := -1
	for i := len(ticks) - 1; i >= start; i-- {
		if math.Abs(ticks[i].DPsi-resp.Final) > band {
			lastOut = i
			break
		}
	}
	switch {
	case lastOut < 0:
		resp.Settled = true
		resp.SettlingTime = 0
	case lastOut < len(ticks)-1:
		resp.Settled = true
		resp.SettlingTime = ticks[lastOut+1].Time - t0
	}

	return resp, nil
}
