package flight

import (
	"errors"
	"fmt"
)

// Domain errors for the loop and its surrounding tooling. The control
// laws themselves never fail.
var (
	// ErrInvalidConfig indicates a loop or plant configuration that cannot run.
	ErrInvalidConfig = errors.New("flight: invalid configuration")

	// ErrInvalidState indicates a plant state containing NaN or Inf.
	ErrInvalidState = errors.New("flight: invalid state (NaN or Inf detected)")

	// ErrUnknownProfile indicates a demand profile kind that is not registered.
	ErrUnknownProfile = errors.New("flight: unknown demand profile")

	// ErrUnknownIntegrator indicates an integrator name that is not registered.
	ErrUnknownIntegrator = errors.New("flight: unknown integrator")

	// ErrUnknownParam indicates a tunable parameter name that does not exist.
	ErrUnknownParam = errors.New("flight: unknown parameter")

	// ErrShortFrame indicates a telemetry frame with too few bytes.
	ErrShortFrame = errors.New("flight: telemetry frame too short")

	// ErrHalted indicates the simulator asked the loop to stop.
	ErrHalted = errors.New("flight: simulator halted")
)

// TickError wraps an error with the loop tick it happened on.
type TickError struct {
	Tick    int
	Time    float64
	Wrapped error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d (t=%.4f): %v", e.Tick, e.Time, e.Wrapped)
}

func (e *TickError) Unwrap() error {
	return e.Wrapped
}
