package backtest

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// EquityPoint represents a point in the equity curve. RowIndex is the input
// row the point settled on; -1 marks the initial bankroll entry.
type EquityPoint struct {
	RowIndex int     `json:"row_index"`
	Value    float64 `json:"value"`
	Drawdown float64 `json:"drawdown"`
}

// EquityCurve represents an ordered series of bankroll values
type EquityCurve []EquityPoint

// MaxDrawdownAbsolute returns the largest peak-to-trough decline in currency
// units, via the running-peak method.
func (e EquityCurve) MaxDrawdownAbsolute() float64 {
	maxDD := 0.0
	peak := math.Inf(-1)
	for _, p := range e {
		if p.Value > peak {
			peak = p.Value
		}
		if dd := peak - p.Value; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// MaxDrawdownRelative returns the largest peak-to-trough decline as a
// fraction of the peak. Both units are computed from the same curve; report
// layers pick whichever a downstream format expects.
func (e EquityCurve) MaxDrawdownRelative() float64 {
	maxDD := 0.0
	peak := 0.0
	for _, p := range e {
		if p.Value > peak {
			peak = p.Value
		}
		if peak == 0 {
			continue
		}
		if dd := (peak - p.Value) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// GetReturns calculates per-step returns from the curve
func (e EquityCurve) GetReturns() []float64 {
	if len(e) < 2 {
		return []float64{}
	}
	returns := make([]float64, 0, len(e)-1)
	for i := 1; i < len(e); i++ {
		prev := e[i-1].Value
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (e[i].Value-prev)/prev)
	}
	return returns
}

// GetVolatility calculates the standard deviation of per-step returns
func (e EquityCurve) GetVolatility() float64 {
	returns := e.GetReturns()
	if len(returns) == 0 {
		return 0
	}
	return stddev(returns)
}

// ToCSV exports the equity curve to a CSV string
func (e EquityCurve) ToCSV() string {
	var buf bytes.Buffer
	buf.WriteString("row_index,value,drawdown\n")
	for _, point := range e {
		buf.WriteString(strconv.Itoa(point.RowIndex))
		buf.WriteString(",")
		buf.WriteString(strconv.FormatFloat(point.Value, 'f', 6, 64))
		buf.WriteString(",")
		buf.WriteString(strconv.FormatFloat(point.Drawdown, 'f', 6, 64))
		buf.WriteString("\n")
	}
	return buf.String()
}

// ToJSON exports the equity curve to a JSON string
func (e EquityCurve) ToJSON() string {
	data, _ := json.Marshal(e)
	return string(data)
}
