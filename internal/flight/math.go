package flight

import "math"

func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180
}

func Rad2Deg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Constrain clamps x to [lo, hi].
func Constrain(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// ConstrainAbs clamps x to [-limit, +limit].
func ConstrainAbs(x, limit float64) float64 {
	return Constrain(x, -limit, limit)
}
