// Package dynamo provides the simulation primitives shared by every
// compartment model.
//
// The package defines the fundamental interfaces and types for fixed-step
// integration of ordinary differential equations:
//
//   - [State]: vector of compartment values
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: single-step numerical scheme
//   - [Simulator]: advances a state over a horizon and records a [Trajectory]
//   - [Batch]: runs independent simulations concurrently
//
// # Example
//
//	sys := models.NewClassicSIR(1.0/7138, 0.4)
//	s := dynamo.New(sys, integrators.NewEuler())
//	tr, _ := s.Run(ctx, dynamo.State{7137, 1, 0}, dynamo.DefaultConfig())
//
// # Numeric policy
//
// The simulator never corrects the state. Negative compartments and NaN/Inf
// values propagate into the trajectory unless [Config.Clamp] or
// [Config.ValidateState] is set.
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. For parallel runs give each job
// its own simulator and use [Batch].
package dynamo
