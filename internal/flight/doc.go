// Package flight holds the data types shared by the flight-control laws
// and the loop that drives them.
//
//   - [Demands]: normalized throttle/roll/pitch/yaw commands for one tick
//   - [VehicleState]: estimated vehicle motion, angles in radians
//
// Control laws treat both as read-only inputs and return fresh values.
package flight
