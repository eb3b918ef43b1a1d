package config

import (
	"fmt"
	"os"

	"github.com/san-kum/yawrate/internal/flight"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRateHz      = 500.0
	DefaultDuration    = 5.0
	DefaultIntegrator  = "rk4"
	DefaultThrottle    = 0.5
	DefaultThrottleCut = 0.05
	DefaultAmplitude   = 0.5
	DefaultStart       = 0.5
	DefaultDataDir     = ".yawrate"
	DefaultLogLevel    = "info"

	DefaultInertia   = 0.02
	DefaultDamping   = 0.05
	DefaultAuthority = 0.1
)

type Config struct {
	RateHz      float64         `yaml:"rate_hz"`
	Duration    float64         `yaml:"duration"`
	Integrator  string          `yaml:"integrator"`
	ThrottleCut float64         `yaml:"throttle_cut"`
	InitState   InitState       `yaml:"init_state"`
	Plant       PlantConfig     `yaml:"plant"`
	Profile     ProfileConfig   `yaml:"profile"`
	DataDir     string          `yaml:"data_dir"`
	LogLevel    string          `yaml:"log_level"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
}

type InitState struct {
	Psi  float64 `yaml:"psi"`
	DPsi float64 `yaml:"dpsi"`
}

type PlantConfig struct {
	Inertia     float64 `yaml:"inertia"`
	Damping     float64 `yaml:"damping"`
	Authority   float64 `yaml:"authority"`
	Disturbance float64 `yaml:"disturbance"`
}

type ProfileConfig struct {
	Kind      string  `yaml:"kind"`
	Amplitude float64 `yaml:"amplitude"`
	Start     float64 `yaml:"start"`
	Width     float64 `yaml:"width"`
	Frequency float64 `yaml:"frequency"`
	Slope     float64 `yaml:"slope"`
	Throttle  float64 `yaml:"throttle"`
	CutFrom   float64 `yaml:"cut_from"`
	CutTo     float64 `yaml:"cut_to"`
}

type TelemetryConfig struct {
	TelemPort int    `yaml:"telem_port"`
	MotorHost string `yaml:"motor_host"`
	MotorPort int    `yaml:"motor_port"`
}

func DefaultConfig() *Config {
	return &Config{
		RateHz:      DefaultRateHz,
		Duration:    DefaultDuration,
		Integrator:  DefaultIntegrator,
		ThrottleCut: DefaultThrottleCut,
		Plant: PlantConfig{
			Inertia:   DefaultInertia,
			Damping:   DefaultDamping,
			Authority: DefaultAuthority,
		},
		Profile: ProfileConfig{
			Kind:      "step",
			Amplitude: DefaultAmplitude,
			Start:     DefaultStart,
			Width:     1.0,
			Frequency: 0.5,
			Slope:     1.0,
			Throttle:  DefaultThrottle,
		},
		DataDir:  DefaultDataDir,
		LogLevel: DefaultLogLevel,
		Telemetry: TelemetryConfig{
			TelemPort: 5001,
			MotorHost: "127.0.0.1",
			MotorPort: 5000,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects configs the loop cannot run.
func (c *Config) Validate() error {
	if c.RateHz <= 0 {
		return fmt.Errorf("%w: rate_hz must be positive, got %f", flight.ErrInvalidConfig, c.RateHz)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", flight.ErrInvalidConfig, c.Duration)
	}
	if c.Plant.Inertia <= 0 {
		return fmt.Errorf("%w: plant inertia must be positive, got %f", flight.ErrInvalidConfig, c.Plant.Inertia)
	}
	if c.ThrottleCut < 0 || c.ThrottleCut > 1 {
		return fmt.Errorf("%w: throttle_cut must be in [0,1], got %f", flight.ErrInvalidConfig, c.ThrottleCut)
	}
	return nil
}

// Dt is the tick period implied by RateHz.
func (c *Config) Dt() float64 {
	return 1.0 / c.RateHz
}

func (c *Config) GetInitState() []float64 {
	return []float64{c.InitState.Psi, c.InitState.DPsi}
}
