package loop

import (
	"github.com/san-kum/yawrate/internal/flight"
	"github.com/san-kum/yawrate/internal/pids"
)

// Driver owns the yaw controller state and threads it tick to tick.
type Driver struct {
	pid         pids.YawPid
	throttleCut float64
}

func NewDriver(throttleCut float64) *Driver {
	return &Driver{
		pid:         pids.New(),
		throttleCut: throttleCut,
	}
}

// Step runs the yaw law once and keeps the returned state for the next
// call.
func (d *Driver) Step(demands flight.Demands, vstate *flight.VehicleState) flight.Demands {
	out, _ := d.step(demands, vstate)
	return out
}

func (d *Driver) step(demands flight.Demands, vstate *flight.VehicleState) (flight.Demands, bool) {
	// The flight manager resets its PIDs while the throttle is cut.
	cut := demands.Throttle < d.throttleCut
	if cut {
		d.pid = pids.New()
	}

	out, next := pids.Run(demands, vstate, d.pid.State)
	d.pid = next
	return out, cut
}

func (d *Driver) Reset() {
	d.pid = pids.New()
}

// State returns the controller state the next tick will consume.
func (d *Driver) State() pids.YawPid {
	return d.pid
}
