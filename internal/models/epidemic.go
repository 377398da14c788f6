package models

import "github.com/san-kum/episim/internal/dynamo"

// Compartment indices shared by every model.
const (
	S = iota
	I
	R
)

// Epidemic is a three-compartment model that can be integrated, tuned by
// name and asked for its closed-form reproduction number.
type Epidemic interface {
	dynamo.System
	dynamo.Configurable
	Name() string
	Labels() [3]string
	// ReproductionNumber is the basic (or effective) reproduction number for a population of n.
	ReproductionNumber(n float64) float64
	// Threshold is the susceptible level below which I stops growing.
	Threshold() float64
}
