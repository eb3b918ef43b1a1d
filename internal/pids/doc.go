// Package pids provides the stability-loop control laws.
//
// Laws are pure functions over a value-typed controller state: each call
// takes the state returned by the previous call and hands back a new one.
// The caller owns that state and must thread it through ticks in order.
//
//	yaw := pids.New()
//	for each tick {
//		demands, yaw = pids.Run(demands, &vstate, yaw.State)
//	}
package pids
