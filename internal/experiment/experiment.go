package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/yawrate/internal/config"
	"github.com/san-kum/yawrate/internal/integrators"
	"github.com/san-kum/yawrate/internal/loop"
	"github.com/san-kum/yawrate/internal/metrics"
	"github.com/san-kum/yawrate/internal/plant"
	"github.com/san-kum/yawrate/internal/profile"
)

// Experiment is one closed-loop yaw run assembled from a config.
type Experiment struct {
	cfg   *config.Config
	plant *plant.Yaw
	loop  *loop.Loop
}

// New validates cfg and wires the plant, integrator, profile and the
// default metrics into a loop.
func New(cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	integ, err := integrators.Get(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	prof, err := profile.FromConfig(cfg.Profile)
	if err != nil {
		return nil, err
	}

	p := NewPlant(cfg.Plant)
	l := loop.New(p, integ, prof, cfg.ThrottleCut)
	for _, m := range metrics.Defaults() {
		l.AddMetric(m)
	}

	return &Experiment{cfg: cfg, plant: p, loop: l}, nil
}

func NewPlant(pc config.PlantConfig) *plant.Yaw {
	return &plant.Yaw{
		Inertia:     pc.Inertia,
		Damping:     pc.Damping,
		Authority:   pc.Authority,
		Disturbance: pc.Disturbance,
	}
}

func (e *Experiment) Run(ctx context.Context) (*loop.Result, error) {
	if e.loop == nil {
		return nil, fmt.Errorf("experiment not set up")
	}
	return e.loop.Run(ctx, e.InitState(), e.LoopConfig())
}

func (e *Experiment) InitState() plant.State {
	return plant.State(e.cfg.GetInitState())
}

func (e *Experiment) LoopConfig() loop.Config {
	return loop.Config{
		RateHz:        e.cfg.RateHz,
		Duration:      e.cfg.Duration,
		ThrottleCut:   e.cfg.ThrottleCut,
		ValidateState: true,
	}
}

// Loop returns the underlying loop for adding observers.
func (e *Experiment) Loop() *loop.Loop {
	return e.loop
}

func (e *Experiment) Plant() *plant.Yaw {
	return e.plant
}

func (e *Experiment) Config() *config.Config {
	return e.cfg
}
