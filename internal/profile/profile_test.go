package profile

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/yawrate/internal/config"
	"github.com/san-kum/yawrate/internal/flight"
)

func TestProfiles(t *testing.T) {
	tests := []struct {
		name string
		p    Profile
		t    float64
		want float64
	}{
		{"hold", Hold(0.5, 0.3), 7, 0.3},
		{"step before", Step(0.5, 0.4, 1), 0.5, 0},
		{"step after", Step(0.5, 0.4, 1), 1, 0.4},
		{"doublet up", Doublet(0.5, 0.2, 1, 0.5), 1.2, 0.2},
		{"doublet down", Doublet(0.5, 0.2, 1, 0.5), 1.7, -0.2},
		{"doublet done", Doublet(0.5, 0.2, 1, 0.5), 2.5, 0},
		{"ramp mid", Ramp(0.5, 1, 0, 0.5), 1, 0.5},
		{"ramp capped", Ramp(0.5, 1, 0, 0.5), 5, 1},
		{"ramp negative", Ramp(0.5, -1, 0, -0.5), 4, -1},
		{"sine quarter", Sine(0.5, 0.3, 1), 0.25, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.p.Demand(tt.t)
			if math.Abs(d.Yaw-tt.want) > 1e-9 {
				t.Errorf("yaw = %f, want %f", d.Yaw, tt.want)
			}
			if d.Throttle != 0.5 || d.Roll != 0 || d.Pitch != 0 {
				t.Errorf("unexpected demands %+v", d)
			}
		})
	}
}

func TestThrottleCut(t *testing.T) {
	p := ThrottleCut{Profile: Hold(0.6, 0.1), From: 1, To: 2}

	if d := p.Demand(0.5); d.Throttle != 0.6 {
		t.Errorf("throttle before cut = %f", d.Throttle)
	}
	if d := p.Demand(1.5); d.Throttle != 0 || d.Yaw != 0.1 {
		t.Errorf("unexpected demands during cut %+v", d)
	}
	if d := p.Demand(2); d.Throttle != 0.6 {
		t.Errorf("throttle after cut = %f", d.Throttle)
	}
}

func TestFromConfig(t *testing.T) {
	for _, kind := range Kinds() {
		cfg := config.ProfileConfig{Kind: kind, Amplitude: 0.2, Throttle: 0.5, Width: 1, Slope: 1, Frequency: 1}
		if _, err := FromConfig(cfg); err != nil {
			t.Errorf("%s: %v", kind, err)
		}
	}

	p, err := FromConfig(config.ProfileConfig{Kind: "hold", Throttle: 0.5, CutFrom: 1, CutTo: 2})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.(ThrottleCut); !ok {
		t.Errorf("expected throttle cut wrapper, got %T", p)
	}

	_, err = FromConfig(config.ProfileConfig{Kind: "chirp"})
	if !errors.Is(err, flight.ErrUnknownProfile) {
		t.Errorf("expected ErrUnknownProfile, got %v", err)
	}
}
