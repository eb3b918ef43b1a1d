package loop

import (
	"context"
	"fmt"

	"github.com/san-kum/yawrate/internal/flight"
	"github.com/san-kum/yawrate/internal/integrators"
	"github.com/san-kum/yawrate/internal/pids"
	"github.com/san-kum/yawrate/internal/plant"
	"github.com/san-kum/yawrate/internal/profile"
)

// Loop closes a Driver around a plant model.
type Loop struct {
	sys        plant.System
	integrator integrators.Integrator
	profile    profile.Profile
	driver     *Driver
	metrics    []Metric
	observers  []Observer
}

func New(sys plant.System, integrator integrators.Integrator, prof profile.Profile, throttleCut float64) *Loop {
	return &Loop{
		sys:        sys,
		integrator: integrator,
		profile:    prof,
		driver:     NewDriver(throttleCut),
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (l *Loop) AddMetric(m Metric)     { l.metrics = append(l.metrics, m) }
func (l *Loop) AddObserver(o Observer) { l.observers = append(l.observers, o) }

func (l *Loop) Driver() *Driver { return l.driver }

func (l *Loop) SetProfile(p profile.Profile) { l.profile = p }

// Advance runs one tick at time t: sample the demand, run the law on the
// current plant state, and step the plant by dt with the yaw command.
func (l *Loop) Advance(x plant.State, index int, t, dt float64) (plant.State, Tick) {
	demands := l.profile.Demand(t)
	vstate := plant.VehicleState(x)

	out, cut := l.driver.step(demands, &vstate)

	tick := Tick{
		Index:    index,
		Time:     t,
		Throttle: demands.Throttle,
		Demand:   demands.Yaw,
		Psi:      vstate.Psi,
		DPsi:     vstate.DPsi,
		Command:  out.Yaw,
		Integral: l.driver.State().State.ErrorIntegral,
		Reset:    pids.Resets(demands.Yaw - vstate.DPsi),
		Cut:      cut,
	}

	for _, m := range l.metrics {
		m.Observe(tick)
	}
	for _, obs := range l.observers {
		obs.OnTick(tick)
	}

	return l.integrator.Step(l.sys, x, plant.Control{out.Yaw}, t, dt), tick
}

func (l *Loop) Run(ctx context.Context, x0 plant.State, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := cfg.Ticks()
	dt := cfg.Dt()
	result := &Result{
		Ticks:   make([]Tick, 0, steps),
		States:  make([]plant.State, 0, steps+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range l.metrics {
		m.Reset()
	}
	l.driver.Reset()

	x := x0.Clone()
	result.States = append(result.States, x.Clone())

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			l.collect(result)
			return result, ctx.Err()
		default:
		}

		t := float64(i) * dt
		next, tick := l.Advance(x, i, t, dt)
		result.Ticks = append(result.Ticks, tick)

		if cfg.ValidateState && !next.IsValid() {
			result.Errors = append(result.Errors, &flight.TickError{Tick: i, Time: t, Wrapped: flight.ErrInvalidState})
			break
		}

		x = next
		result.States = append(result.States, x.Clone())
	}

	l.collect(result)
	return result, nil
}

// collect records metric values over the ticks run so far.
func (l *Loop) collect(result *Result) {
	for _, m := range l.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(cfg Config) error {
	if cfg.RateHz <= 0 {
		return fmt.Errorf("%w: rate must be positive, got %f", flight.ErrInvalidConfig, cfg.RateHz)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", flight.ErrInvalidConfig, cfg.Duration)
	}
	if cfg.Ticks() == 0 {
		return fmt.Errorf("%w: duration %f shorter than one tick at %f Hz", flight.ErrInvalidConfig, cfg.Duration, cfg.RateHz)
	}
	return nil
}
