package flight

import "math"

// Demands are the normalized control outputs for one tick.
type Demands struct {
	Throttle float64 `json:"throttle"`
	Roll     float64 `json:"roll"`
	Pitch    float64 `json:"pitch"`
	Yaw      float64 `json:"yaw"`
}

func (d Demands) IsValid() bool {
	return finite(d.Throttle, d.Roll, d.Pitch, d.Yaw)
}

// VehicleState is a snapshot of estimated vehicle motion in ENU
// coordinates. Angles are radians, rates radians/second.
type VehicleState struct {
	X      float64 `json:"x"`
	DX     float64 `json:"dx"`
	Y      float64 `json:"y"`
	DY     float64 `json:"dy"`
	Z      float64 `json:"z"`
	DZ     float64 `json:"dz"`
	Phi    float64 `json:"phi"`
	DPhi   float64 `json:"dphi"`
	Theta  float64 `json:"theta"`
	DTheta float64 `json:"dtheta"`
	Psi    float64 `json:"psi"`
	DPsi   float64 `json:"dpsi"`
}

func (v *VehicleState) IsValid() bool {
	return finite(v.X, v.DX, v.Y, v.DY, v.Z, v.DZ,
		v.Phi, v.DPhi, v.Theta, v.DTheta, v.Psi, v.DPsi)
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
