package config

import "sort"

// Presets are full configs keyed by name. Fields a preset leaves zero
// are filled from DefaultConfig by GetPreset.
var Presets = map[string]*Config{
	"step": {
		Duration: 5.0,
		Profile:  ProfileConfig{Kind: "step", Amplitude: 0.5, Start: 0.5, Throttle: 0.5},
	},
	"doublet": {
		Duration: 6.0,
		Profile:  ProfileConfig{Kind: "doublet", Amplitude: 0.4, Start: 0.5, Width: 1.5, Throttle: 0.5},
	},
	"aggressive": {
		Duration: 4.0,
		Profile:  ProfileConfig{Kind: "step", Amplitude: 2.0, Start: 0.25, Throttle: 0.6},
	},
	"disturbance": {
		Duration: 20.0,
		Plant:    PlantConfig{Disturbance: 0.02},
		Profile:  ProfileConfig{Kind: "hold", Amplitude: 0.0, Throttle: 0.5},
	},
	"sine": {
		Duration: 10.0,
		Profile:  ProfileConfig{Kind: "sine", Amplitude: 0.3, Frequency: 0.5, Throttle: 0.5},
	},
	"throttle-cut": {
		Duration: 6.0,
		Plant:    PlantConfig{Disturbance: 0.02},
		Profile:  ProfileConfig{Kind: "hold", Amplitude: 0.2, Throttle: 0.5, CutFrom: 2.0, CutTo: 2.5},
	},
}

// GetPreset returns a copy of the named preset merged over the defaults,
// or nil if the name is unknown.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}

	cfg := DefaultConfig()
	if p.Duration != 0 {
		cfg.Duration = p.Duration
	}
	if p.RateHz != 0 {
		cfg.RateHz = p.RateHz
	}
	if p.Integrator != "" {
		cfg.Integrator = p.Integrator
	}
	cfg.InitState = p.InitState
	cfg.Plant.Disturbance = p.Plant.Disturbance
	cfg.Profile = p.Profile
	if cfg.Profile.Throttle == 0 {
		cfg.Profile.Throttle = DefaultThrottle
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
