// Package models provides the compartment models integrated by the simulator.
//
// Every model implements [Epidemic], i.e. [dynamo.System] for the derivative
// and [dynamo.Configurable] for name-based parameter access:
//
//   - [ClassicSIR]: disease spread, dS=-βSI, dI=βSI-kI, dR=kI
//   - [RumorSIR]: rumor spread where debunkers convert believers, dI=bSI-kIR
//   - [ExtendedSIR]: SIR plus a preventive immunization flow αS from S to R
//
// All three move mass only between S, I and R, so S+I+R is conserved by the
// exact dynamics. Parameters are not validated; any real value is accepted.
package models
