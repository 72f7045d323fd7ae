package backtest

import (
	"encoding/json"
	"math"
)

// SettleMode records how PnL in a summary was realized
type SettleMode string

const (
	SettleModeRealized SettleMode = "realized"
	SettleModeExpected SettleMode = "expected"
)

// Summary is the read-only aggregate of one simulation run. Derived once
// from the final state, never mutated afterwards.
type Summary struct {
	ConfigID       string     `json:"config_id"`
	Bets           int        `json:"bets"`
	Wins           int        `json:"wins"`
	HitRate        float64    `json:"hit_rate"`
	TotalStaked    float64    `json:"total_staked"`
	AvgOdds        float64    `json:"avg_odds"`
	Pnl            float64    `json:"pnl"`
	ROI            float64    `json:"roi"`
	EndBankroll    float64    `json:"end_bankroll"`
	MaxDrawdown    float64    `json:"max_drawdown"`
	MaxDrawdownPct float64    `json:"max_drawdown_pct"`
	SharpeRatio    float64    `json:"sharpe_ratio"`
	ProfitFactor   float64    `json:"profit_factor"`
	Expectancy     float64    `json:"expectancy"`
	Mode           SettleMode `json:"mode"`
}

// Summarize derives the summary from final simulation state. Ratios with
// empty denominators report as zero, never NaN: a run with zero qualifying
// bets is a valid (flat) outcome, distinguishable from a failed run by the
// caller still holding a well-formed summary.
func Summarize(state *State, cfg SimulatorConfig) Summary {
	summary := Summary{
		ConfigID:    cfg.ConfigID,
		EndBankroll: cfg.Staking.InitialBankroll,
		Mode:        SettleModeRealized,
	}
	if state == nil {
		return summary
	}
	summary.EndBankroll = state.Bankroll

	oddsSum := 0.0
	for _, rec := range state.Ledger {
		if rec.Stake <= 0 {
			continue
		}
		summary.Bets++
		summary.TotalStaked += rec.Stake
		summary.Pnl += rec.Pnl
		oddsSum += rec.Price
		if rec.Result != nil && *rec.Result == 1 {
			summary.Wins++
		}
	}

	if summary.Bets > 0 {
		summary.HitRate = float64(summary.Wins) / float64(summary.Bets)
		summary.AvgOdds = oddsSum / float64(summary.Bets)
		summary.Expectancy = summary.Pnl / float64(summary.Bets)
	}
	if summary.TotalStaked > 0 {
		summary.ROI = summary.Pnl / summary.TotalStaked
	}

	summary.MaxDrawdown = state.EquityCurve.MaxDrawdownAbsolute()
	summary.MaxDrawdownPct = state.EquityCurve.MaxDrawdownRelative()
	summary.SharpeRatio = sharpeRatio(state.EquityCurve.GetReturns())
	summary.ProfitFactor = profitFactor(state.Ledger)

	return summary
}

// ToJSON exports the summary to JSON
func (s Summary) ToJSON() string {
	data, _ := json.Marshal(s)
	return string(data)
}

func sharpeRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mean := average(returns)
	std := stddev(returns)
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(float64(len(returns)))
}

func profitFactor(ledger []Record) float64 {
	grossProfit := 0.0
	grossLoss := 0.0
	for _, rec := range ledger {
		if rec.Pnl > 0 {
			grossProfit += rec.Pnl
		} else {
			grossLoss += math.Abs(rec.Pnl)
		}
	}
	if grossLoss == 0 {
		if grossProfit > 0 {
			return 999
		}
		return 0
	}
	return grossProfit / grossLoss
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := average(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}
