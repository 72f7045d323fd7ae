package dataset

import "fmt"

// DevigMethod selects how the bookmaker margin is stripped from a two-way
// market before probabilities are used.
type DevigMethod string

const (
	// DevigNone keeps raw implied probabilities (they sum above 1).
	DevigNone DevigMethod = "none"
	// DevigProportional rescales both implied probabilities by the overround.
	DevigProportional DevigMethod = "proportional"
	// DevigShin applies a simplified Shin correction: subtract half the
	// overround excess from each side before rescaling. The flat subtraction
	// strips relatively more margin from the underdog, matching the longshot
	// bias bookmakers price in.
	DevigShin DevigMethod = "shin"
)

// ParseDevigMethod validates a method name from configuration
func ParseDevigMethod(name string) (DevigMethod, error) {
	switch DevigMethod(name) {
	case DevigNone, DevigProportional, DevigShin:
		return DevigMethod(name), nil
	case "":
		return DevigShin, nil
	}
	return "", fmt.Errorf("unknown devig method %q (want none, proportional or shin)", name)
}

// Devig converts a two-way odds pair into vig-free win probabilities.
// Returns (0, 0, false) when either price is unbettable.
func Devig(priceA, priceB float64, method DevigMethod) (float64, float64, bool) {
	if priceA <= 1.0 || priceB <= 1.0 {
		return 0, 0, false
	}
	pA := 1.0 / priceA
	pB := 1.0 / priceB
	overround := pA + pB
	if overround <= 0 {
		return 0, 0, false
	}

	switch method {
	case DevigNone:
		return pA, pB, true
	case DevigShin:
		adj := (overround - 1.0) / 2.0
		if adj < 0 {
			adj = 0
		}
		denom := 1.0 - adj
		if denom < 1e-9 {
			denom = 1e-9
		}
		a := (pA - adj) / denom
		b := (pB - adj) / denom
		if a < 0 {
			a = 0
		}
		if b < 0 {
			b = 0
		}
		return a, b, true
	default:
		return pA / overround, pB / overround, true
	}
}
