// Package solve holds the simulation drivers: one entry point per model that
// builds the initial state S0 = N - I0 - R0, integrates it with one-day
// forward Euler steps and returns the full trajectory.
//
// Drivers are pure. Two calls with the same parameters return bit-identical
// trajectories, and nothing is validated or clamped unless [Options] asks
// for it.
package solve
