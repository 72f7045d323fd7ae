package model

// Blend mixes a market-implied probability with a model estimate.
// weight is the share given to the model: 0 trusts the market entirely,
// 1 trusts the model entirely. Inputs outside [0,1] are clamped so the
// result is always a valid probability.
func Blend(marketProb, modelProb, weight float64) float64 {
	if weight < 0 {
		weight = 0
	}
	if weight > 1 {
		weight = 1
	}
	p := (1.0-weight)*clamp01(marketProb) + weight*clamp01(modelProb)
	return clamp01(p)
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
