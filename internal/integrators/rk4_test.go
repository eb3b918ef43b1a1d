package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/yawrate/internal/flight"
	"github.com/san-kum/yawrate/internal/plant"
)

// decay is dpsi' = -dpsi with psi' = dpsi.
type decay struct{}

func (d *decay) Derive(x plant.State, u plant.Control, t float64) plant.State {
	return plant.State{x[1], -x[1]}
}

func (d *decay) StateDim() int   { return 2 }
func (d *decay) ControlDim() int { return 0 }

func TestRK4Accuracy(t *testing.T) {
	sys := &decay{}
	integ := NewRK4()

	x := plant.State{0.0, 1.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(sys, x, nil, float64(i)*dt, dt)
	}

	T := float64(steps) * dt
	expectedRate := math.Exp(-T)
	expectedAngle := 1 - math.Exp(-T)

	if math.Abs(x[1]-expectedRate) > 1e-8 {
		t.Errorf("rate error too large: got %.10f, expected %.10f", x[1], expectedRate)
	}
	if math.Abs(x[0]-expectedAngle) > 1e-8 {
		t.Errorf("angle error too large: got %.10f, expected %.10f", x[0], expectedAngle)
	}
}

func TestIntegratorsAgree(t *testing.T) {
	sys := plant.NewYaw()
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			integ, err := Get(name)
			if err != nil {
				t.Fatal(err)
			}

			x := plant.State{0, 0}
			dt := 0.001
			for i := 0; i < 2000; i++ {
				x = integ.Step(sys, x, plant.Control{0.5}, float64(i)*dt, dt)
			}

			want := sys.SteadyRate(0.5) * (1 - math.Exp(-sys.Damping/sys.Inertia*2.0))
			if math.Abs(x[1]-want) > 1e-2 {
				t.Errorf("rate = %f, want ~%f", x[1], want)
			}
		})
	}
}

func TestGetUnknown(t *testing.T) {
	if _, err := Get("rk45"); !errors.Is(err, flight.ErrUnknownIntegrator) {
		t.Errorf("expected ErrUnknownIntegrator, got %v", err)
	}
}
