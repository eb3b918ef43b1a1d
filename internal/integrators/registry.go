package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/yawrate/internal/flight"
	"github.com/san-kum/yawrate/internal/plant"
)

// Integrator advances a plant state by one fixed step.
type Integrator interface {
	Step(sys plant.System, x plant.State, u plant.Control, t float64, dt float64) plant.State
}

var registry = map[string]func() Integrator{
	"euler":  func() Integrator { return NewEuler() },
	"rk4":    func() Integrator { return NewRK4() },
	"verlet": func() Integrator { return NewVerlet() },
}

func Get(name string) (Integrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", flight.ErrUnknownIntegrator, name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
