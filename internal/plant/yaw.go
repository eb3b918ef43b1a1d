package plant

import (
	"fmt"

	"github.com/san-kum/yawrate/internal/flight"
)

const (
	DefaultInertia   = 0.02
	DefaultDamping   = 0.05
	DefaultAuthority = 0.1
)

// Yaw is a rigid body rotating about its vertical axis. The yaw command
// is a normalized mixer input in [-1, 1] that maps to torque through
// Authority.
type Yaw struct {
	Inertia     float64
	Damping     float64
	Authority   float64
	Disturbance float64
}

func NewYaw() *Yaw {
	return &Yaw{
		Inertia:   DefaultInertia,
		Damping:   DefaultDamping,
		Authority: DefaultAuthority,
	}
}

func (y *Yaw) StateDim() int   { return 2 }
func (y *Yaw) ControlDim() int { return 1 }

func (y *Yaw) Derive(x State, u Control, t float64) State {
	dpsi := x[1]

	cmd := 0.0
	if len(u) > 0 {
		cmd = flight.ConstrainAbs(u[0], 1)
	}

	torque := y.Authority*cmd + y.Disturbance - y.Damping*dpsi
	return State{dpsi, torque / y.Inertia}
}

// SteadyRate is the yaw rate the plant settles at for a constant command.
func (y *Yaw) SteadyRate(cmd float64) float64 {
	if y.Damping == 0 {
		return 0
	}
	return (y.Authority*flight.ConstrainAbs(cmd, 1) + y.Disturbance) / y.Damping
}

func (y *Yaw) Energy(x State) float64 {
	return 0.5 * y.Inertia * x[1] * x[1]
}

func (y *Yaw) GetParams() map[string]float64 {
	return map[string]float64{
		"inertia":     y.Inertia,
		"damping":     y.Damping,
		"authority":   y.Authority,
		"disturbance": y.Disturbance,
	}
}

func (y *Yaw) SetParam(name string, value float64) error {
	switch name {
	case "inertia":
		if value <= 0 {
			return fmt.Errorf("inertia must be positive, got %f: %w", value, flight.ErrInvalidConfig)
		}
		y.Inertia = value
	case "damping":
		y.Damping = value
	case "authority":
		y.Authority = value
	case "disturbance":
		y.Disturbance = value
	default:
		return fmt.Errorf("%w: %s", flight.ErrUnknownParam, name)
	}
	return nil
}

// VehicleState maps a yaw plant state onto the vehicle snapshot the
// control laws read.
func VehicleState(x State) flight.VehicleState {
	vs := flight.VehicleState{}
	if len(x) >= 2 {
		vs.Psi = x[0]
		vs.DPsi = x[1]
	}
	return vs
}
