package integrators

import "github.com/san-kum/yawrate/internal/plant"

// Verlet treats the first half of the state as positions and the second
// half as their rates. For the yaw plant that is [psi | dpsi].
type Verlet struct {
	scratch plant.State
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(sys plant.System, x plant.State, u plant.Control, t, dt float64) plant.State {
	n := len(x)
	half := n / 2
	if len(v.scratch) != n {
		v.scratch = make(plant.State, n)
	}

	result := make(plant.State, n)
	dx := sys.Derive(x, u, t)
	dt2 := dt * dt

	for i := 0; i < half; i++ {
		result[i] = x[i] + x[half+i]*dt + 0.5*dx[half+i]*dt2
	}

	for i := 0; i < half; i++ {
		v.scratch[i] = result[i]
		v.scratch[half+i] = x[half+i]
	}

	dxNew := sys.Derive(v.scratch, u, t+dt)

	halfDt := 0.5 * dt
	for i := 0; i < half; i++ {
		result[half+i] = x[half+i] + (dx[half+i]+dxNew[half+i])*halfDt
	}

	return result
}
