// Package telemetry decodes simulator telemetry frames and serves the
// yaw-rate law over UDP.
package telemetry

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/san-kum/yawrate/internal/flight"
)

const (
	// FrameValues is the number of float64 values in a telemetry frame:
	// time, twelve vehicle-state values, four stick demands.
	FrameValues = 17
	FrameSize   = FrameValues * 8

	DemandValues = 4
	DemandSize   = DemandValues * 8
)

// Frame is one decoded telemetry packet.
type Frame struct {
	Time    float64
	State   flight.VehicleState
	Demands flight.Demands
}

// Halted reports whether the simulator asked the loop to stop.
func (f Frame) Halted() bool {
	return f.Time < 0
}

// Decode reads a little-endian frame. The simulator sends NED, so z and
// dz are negated into ENU; theta and dtheta are sign-reversed; throttle
// is mapped from [-1, 1] to [0, 1].
func Decode(b []byte) (Frame, error) {
	if len(b) < FrameSize {
		return Frame{}, fmt.Errorf("%w: got %d bytes, want %d", flight.ErrShortFrame, len(b), FrameSize)
	}

	v := make([]float64, FrameValues)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}

	return Frame{
		Time: v[0],
		State: flight.VehicleState{
			X:      v[1],
			DX:     v[2],
			Y:      v[3],
			DY:     v[4],
			Z:      -v[5],
			DZ:     -v[6],
			Phi:    v[7],
			DPhi:   v[8],
			Theta:  -v[9],
			DTheta: -v[10],
			Psi:    v[11],
			DPsi:   v[12],
		},
		Demands: flight.Demands{
			Throttle: (v[13] + 1) / 2,
			Roll:     v[14],
			Pitch:    v[15],
			Yaw:      v[16],
		},
	}, nil
}

// Encode is the inverse of Decode.
func Encode(f Frame) []byte {
	v := []float64{
		f.Time,
		f.State.X, f.State.DX,
		f.State.Y, f.State.DY,
		-f.State.Z, -f.State.DZ,
		f.State.Phi, f.State.DPhi,
		-f.State.Theta, -f.State.DTheta,
		f.State.Psi, f.State.DPsi,
		f.Demands.Throttle*2 - 1,
		f.Demands.Roll,
		f.Demands.Pitch,
		f.Demands.Yaw,
	}
	return putFloats(v)
}

// EncodeDemands writes throttle, roll, pitch, yaw.
func EncodeDemands(d flight.Demands) []byte {
	return putFloats([]float64{d.Throttle, d.Roll, d.Pitch, d.Yaw})
}

func DecodeDemands(b []byte) (flight.Demands, error) {
	if len(b) < DemandSize {
		return flight.Demands{}, fmt.Errorf("%w: got %d bytes, want %d", flight.ErrShortFrame, len(b), DemandSize)
	}
	get := func(i int) float64 {
		return math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return flight.Demands{Throttle: get(0), Roll: get(1), Pitch: get(2), Yaw: get(3)}, nil
}

func putFloats(v []float64) []byte {
	b := make([]byte, len(v)*8)
	for i, x := range v {
		binary.LittleEndian.PutUint64(b[i*8:], math.Float64bits(x))
	}
	return b
}
