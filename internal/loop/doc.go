// Package loop drives the yaw-rate law at a fixed tick rate.
//
// A [Driver] is the single owner of the controller state. It threads the
// [pids.YawPid] returned by each tick into the next one and re-seeds it
// when the throttle is cut. A [Loop] closes the driver around a plant
// model for simulated runs.
//
// # Thread Safety
//
// Neither type is safe for concurrent use. Run one loop per goroutine.
package loop
