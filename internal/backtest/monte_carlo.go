package backtest

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// MonteCarloConfig configures ledger resampling
type MonteCarloConfig struct {
	Iterations      int
	Seed            int64
	InitialBankroll float64
}

// MonteCarloResult represents resampled outcome distributions
type MonteCarloResult struct {
	Iterations          int                `json:"iterations"`
	MeanReturn          float64            `json:"mean_return"`
	StdReturn           float64            `json:"std_return"`
	VaR95               float64            `json:"var_95"`
	VaR99               float64            `json:"var_99"`
	ProbabilityOfProfit float64            `json:"probability_of_profit"`
	ProbabilityOfRuin   float64            `json:"probability_of_ruin"`
	ConfidenceIntervals map[string]float64 `json:"confidence_intervals"`
}

// RunMonteCarlo resamples the settlement of a realized ledger: each placed
// bet is re-settled at its sized probability, giving a distribution of
// terminal bankrolls instead of the single observed path.
func RunMonteCarlo(ledger []Record, cfg MonteCarloConfig) MonteCarloResult {
	if cfg.Iterations <= 0 {
		cfg.Iterations = 1000
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(seed))
	distribution := make([]float64, cfg.Iterations)

	for i := 0; i < cfg.Iterations; i++ {
		bankroll := cfg.InitialBankroll
		for _, rec := range ledger {
			if rec.Stake <= 0 {
				continue
			}
			prob := rec.PUsed
			if prob <= 0 {
				prob = 0.5
			}
			if rng.Float64() < prob {
				bankroll += rec.Stake * (rec.Price - 1.0)
			} else {
				bankroll -= rec.Stake
			}
			if bankroll <= 0 {
				bankroll = 0
				break
			}
		}
		distribution[i] = bankroll
	}

	mean, std := meanStd(distribution)
	result := MonteCarloResult{
		Iterations:          cfg.Iterations,
		ProbabilityOfProfit: probabilityAbove(distribution, cfg.InitialBankroll),
		ProbabilityOfRuin:   probabilityAtOrBelow(distribution, 0),
		ConfidenceIntervals: confidenceIntervals(distribution, []float64{0.9, 0.95, 0.99}),
	}
	if cfg.InitialBankroll > 0 {
		result.MeanReturn = (mean - cfg.InitialBankroll) / cfg.InitialBankroll
		result.StdReturn = std / cfg.InitialBankroll
		result.VaR95 = (percentile(distribution, 0.05) - cfg.InitialBankroll) / cfg.InitialBankroll
		result.VaR99 = (percentile(distribution, 0.01) - cfg.InitialBankroll) / cfg.InitialBankroll
	}
	return result
}

// ToJSON exports the Monte Carlo result to JSON
func (m MonteCarloResult) ToJSON() string {
	data, _ := json.Marshal(m)
	return string(data)
}

func confidenceIntervals(distribution []float64, levels []float64) map[string]float64 {
	results := make(map[string]float64)
	for _, level := range levels {
		p := (1.0 - level) / 2.0
		low := percentile(distribution, p)
		high := percentile(distribution, 1.0-p)
		results[fmt.Sprintf("%.0f%%", level*100)] = high - low
	}
	return results
}

func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	return average(values), stddev(values)
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64{}, values...)
	sortFloats(sorted)
	idx := int(math.Floor(p * float64(len(sorted)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func probabilityAbove(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v > threshold {
			count++
		}
	}
	return float64(count) / float64(len(values))
}

func probabilityAtOrBelow(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v <= threshold {
			count++
		}
	}
	return float64(count) / float64(len(values))
}

func sortFloats(values []float64) {
	for i := 0; i < len(values); i++ {
		for j := i + 1; j < len(values); j++ {
			if values[j] < values[i] {
				values[i], values[j] = values[j], values[i]
			}
		}
	}
}
