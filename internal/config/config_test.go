package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/yawrate/internal/flight"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.RateHz <= 0 {
		t.Error("rate should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if cfg.Integrator != "rk4" {
		t.Errorf("expected integrator rk4, got %s", cfg.Integrator)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.Dt() != 0.002 {
		t.Errorf("expected dt 0.002, got %f", cfg.Dt())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero rate", func(c *Config) { c.RateHz = 0 }},
		{"negative duration", func(c *Config) { c.Duration = -1 }},
		{"zero inertia", func(c *Config) { c.Plant.Inertia = 0 }},
		{"throttle cut above one", func(c *Config) { c.ThrottleCut = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, flight.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yaw.yaml")
	data := []byte("rate_hz: 250\nprofile:\n  kind: doublet\n  amplitude: 0.3\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.RateHz != 250 {
		t.Errorf("expected rate 250, got %f", cfg.RateHz)
	}
	if cfg.Profile.Kind != "doublet" || cfg.Profile.Amplitude != 0.3 {
		t.Errorf("unexpected profile %+v", cfg.Profile)
	}
	if cfg.Duration != DefaultDuration {
		t.Errorf("expected default duration, got %f", cfg.Duration)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("rate_hz: -5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, flight.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := GetPreset("disturbance")

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Plant.Disturbance != cfg.Plant.Disturbance || got.Profile.Kind != "hold" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("aggressive")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Profile.Amplitude != 2.0 {
		t.Errorf("expected amplitude 2.0, got %f", cfg.Profile.Amplitude)
	}
	if cfg.RateHz != DefaultRateHz || cfg.Plant.Inertia != DefaultInertia {
		t.Error("preset should inherit defaults")
	}

	// Presets hand out copies.
	cfg.Profile.Amplitude = 99
	if GetPreset("aggressive").Profile.Amplitude != 2.0 {
		t.Error("preset was mutated through returned config")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}
	for _, name := range presets {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}
