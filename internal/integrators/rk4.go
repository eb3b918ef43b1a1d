package integrators

import "github.com/san-kum/yawrate/internal/plant"

// RK4 is the classic fourth-order Runge-Kutta step with the command
// held over the interval. Stage buffers are reused between calls, so an
// RK4 value must not be shared across loops running concurrently.
type RK4 struct {
	stage [4]plant.State
	point plant.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(sys plant.System, x plant.State, u plant.Control, t, dt float64) plant.State {
	n := len(x)
	if len(r.point) != n {
		for i := range r.stage {
			r.stage[i] = make(plant.State, n)
		}
		r.point = make(plant.State, n)
	}

	// Stage k is evaluated at x + c[k]*dt*stage[k-1].
	c := [4]float64{0, 0.5, 0.5, 1}
	copy(r.stage[0], sys.Derive(x, u, t))
	for k := 1; k < 4; k++ {
		axpy(r.point, x, c[k]*dt, r.stage[k-1])
		copy(r.stage[k], sys.Derive(r.point, u, t+c[k]*dt))
	}

	next := make(plant.State, n)
	k1, k2, k3, k4 := r.stage[0], r.stage[1], r.stage[2], r.stage[3]
	for i := range next {
		next[i] = x[i] + dt/6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return next
}
