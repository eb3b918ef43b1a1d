package pids

import (
	"math"

	"github.com/san-kum/yawrate/internal/flight"
)

// Yaw-rate gains and limits. KP and KI are tuned for the tick rate of the
// driving loop; retune them together with that rate.
const (
	KP = 1.0625
	KI = 0.001875

	// WindupMax bounds the integral fed into the output.
	WindupMax = 6.0

	// RateMaxDPS is the error, in degrees/second, above which the
	// integral is dropped for the tick.
	RateMaxDPS = 45.0
)

// YawPidState is the yaw-rate controller memory.
type YawPidState struct {
	ErrorIntegral float64 `json:"error_integral"`
}

// YawPid wraps the state handed between ticks.
type YawPid struct {
	State YawPidState `json:"state"`
}

// New returns a controller with an empty integral.
func New() YawPid {
	return newYawPid(0)
}

// Run applies the yaw-rate law for one tick. demands.Yaw is the desired
// yaw rate in radians/second; throttle, roll and pitch pass through.
//
// The integral persisted for the next tick is the accumulated sum before
// the windup clamp. Only the value used in this tick's output is clamped.
func Run(demands flight.Demands, vstate *flight.VehicleState, pstate YawPidState) (flight.Demands, YawPid) {
	err := demands.Yaw - vstate.DPsi

	// NaN errors compare false and carry the integral.
	carried := pstate.ErrorIntegral
	if Resets(err) {
		carried = 0
	}

	accumulated := carried + err
	bounded := flight.ConstrainAbs(accumulated, WindupMax)

	out := flight.Demands{
		Throttle: demands.Throttle,
		Roll:     demands.Roll,
		Pitch:    demands.Pitch,
		Yaw:      KP*err + KI*bounded,
	}

	return out, newYawPid(accumulated)
}

// Run forwards to [Run] with the wrapped state.
func (p YawPid) Run(demands flight.Demands, vstate *flight.VehicleState) (flight.Demands, YawPid) {
	return Run(demands, vstate, p.State)
}

// Resets reports whether err trips the anti-windup reset.
func Resets(err float64) bool {
	return math.Abs(err) > flight.Deg2Rad(RateMaxDPS)
}

func newYawPid(errorIntegral float64) YawPid {
	return YawPid{State: YawPidState{ErrorIntegral: errorIntegral}}
}
