package integrators

import "github.com/san-kum/yawrate/internal/plant"

// Euler is the forward Euler step. It holds the yaw command fixed over
// dt, as the controller does between ticks.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys plant.System, x plant.State, u plant.Control, t, dt float64) plant.State {
	next := make(plant.State, len(x))
	axpy(next, x, dt, sys.Derive(x, u, t))
	return next
}

// axpy writes x + h*d into dst.
func axpy(dst, x plant.State, h float64, d plant.State) {
	for i := range dst {
		dst[i] = x[i] + h*d[i]
	}
}
