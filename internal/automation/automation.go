package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/san-kum/yawrate/internal/config"
	"github.com/san-kum/yawrate/internal/experiment"
	"github.com/san-kum/yawrate/internal/flight"
	"github.com/san-kum/yawrate/internal/log"
	"github.com/san-kum/yawrate/internal/loop"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of closed-loop runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (or the defaults) and overrides
// whatever fields it sets. The nested sections are decoded over the
// base values, so a partial profile keeps the base throttle and shape.
type ScenarioStep struct {
	Name       string    `yaml:"name"`
	Preset     string    `yaml:"preset"`
	RateHz     float64   `yaml:"rate_hz"`
	Duration   float64   `yaml:"duration"`
	Integrator string    `yaml:"integrator"`
	InitState  yaml.Node `yaml:"init_state"`
	Plant      yaml.Node `yaml:"plant"`
	Profile    yaml.Node `yaml:"profile"`
}

type StepResult struct {
	Name   string
	Config *config.Config
	Result *loop.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%w: scenario %q has no steps", flight.ErrInvalidConfig, scenario.Name)
	}

	return &scenario, nil
}

// Config resolves the step into a full run config.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %q", flight.ErrInvalidConfig, s.Preset)
		}
	}

	if s.RateHz != 0 {
		cfg.RateHz = s.RateHz
	}
	if s.Duration != 0 {
		cfg.Duration = s.Duration
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}

	sections := []struct {
		name string
		node *yaml.Node
		out  any
	}{
		{"init_state", &s.InitState, &cfg.InitState},
		{"plant", &s.Plant, &cfg.Plant},
		{"profile", &s.Profile, &cfg.Profile},
	}
	for _, sec := range sections {
		if sec.node.Kind == 0 {
			continue
		}
		if err := sec.node.Decode(sec.out); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", flight.ErrInvalidConfig, sec.name, err)
		}
	}
	return cfg, nil
}

// RunScenario executes the steps in order and stops at the first
// failure, returning the results gathered so far.
func RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}
		log.Info("scenario step", "scenario", scenario.Name, "step", name, "index", i+1, "of", len(scenario.Steps))

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp, err := experiment.New(cfg)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Name: name, Config: cfg, Result: result})
	}

	return results, nil
}

// ParameterSweep varies one plant parameter across a closed range.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Workers   int
}

type SweepResult struct {
	ParamValue float64
	Metrics    map[string]float64
	FinalDPsi  float64
	Stable     bool
}

// RunSweep runs every sweep point on its own experiment, Workers at a
// time. Results are in parameter order.
func RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("%w: sweep needs at least 2 steps, got %d", flight.ErrInvalidConfig, sweep.NumSteps)
	}

	workers := sweep.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	results := make([]SweepResult, sweep.NumSteps)
	errs := make([]error, sweep.NumSteps)

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := 0; i < sweep.NumSteps; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			val := sweep.ParamMin + float64(idx)*paramStep
			results[idx], errs[idx] = sweepPoint(ctx, sweep.Base, sweep.ParamName, val)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("sweep %s=%g: %w", sweep.ParamName, results[i].ParamValue, err)
		}
	}

	log.Info("sweep complete", "param", sweep.ParamName, "points", sweep.NumSteps)
	return results, nil
}

func sweepPoint(ctx context.Context, base *config.Config, param string, val float64) (SweepResult, error) {
	res := SweepResult{ParamValue: val}

	cfg := *base
	exp, err := experiment.New(&cfg)
	if err != nil {
		return res, err
	}
	if err := exp.Plant().SetParam(param, val); err != nil {
		return res, err
	}

	result, err := exp.Run(ctx)
	if err != nil {
		return res, err
	}

	res.Metrics = result.Metrics
	res.Stable = len(result.Errors) == 0
	if n := len(result.Ticks); n > 0 {
		res.FinalDPsi = result.Ticks[n-1].DPsi
	}
	return res, nil
}

// MonteCarloConfig perturbs the initial yaw rate of Base uniformly by
// up to ±Perturbation.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Seed         int64
}

type MonteCarloResult struct {
	TrialID     int
	InitDPsi    float64
	FinalDPsi   float64
	TrackingRMS float64
	Stable      bool
}

func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	for trial := 0; trial < cfg.NumTrials; trial++ {
		runCfg := *cfg.Base
		runCfg.InitState.DPsi = cfg.Base.InitState.DPsi + (rng.Float64()-0.5)*2*cfg.Perturbation

		exp, err := experiment.New(&runCfg)
		if err != nil {
			return nil, err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		r := MonteCarloResult{
			TrialID:     trial,
			InitDPsi:    runCfg.InitState.DPsi,
			TrackingRMS: result.Metrics["tracking_rms"],
			Stable:      len(result.Errors) == 0,
		}
		if n := len(result.Ticks); n > 0 {
			r.FinalDPsi = result.Ticks[n-1].DPsi
			if math.IsNaN(r.FinalDPsi) || math.IsInf(r.FinalDPsi, 0) {
				r.Stable = false
			}
		}
		results = append(results, r)

		if (trial+1)%10 == 0 {
			log.Debug("monte carlo progress", "done", trial+1, "of", cfg.NumTrials)
		}
	}

	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
