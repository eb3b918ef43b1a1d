// Package analysis characterizes recorded yaw-loop runs.
//
//   - [StepResponse]: rise time, overshoot, settling time and steady-state
//     error of the measured rate against the final demand
//   - [PowerSpectrum]: magnitude spectrum of a series, zero-padded to a
//     power of two
//   - [DominantFrequency]: strongest non-DC frequency of the rate error,
//     used to spot limit cycles
//
// # Step Metrics
//
//	resp, err := analysis.StepResponse(ticks)
//	if err == nil && resp.Overshoot > 0.2 {
//	    // underdamped loop
//	}
package analysis
