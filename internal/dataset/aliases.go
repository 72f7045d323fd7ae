// Package dataset loads and normalizes bet-candidate CSVs. All column
// aliasing, probability fallbacks and de-vig corrections happen here, once,
// at the boundary: the simulation core only ever sees canonical candidates.
package dataset

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yourusername/tennis-edge/internal/models"
)

// Column aliases accepted from upstream scrapes and aggregations. Matching
// is case-insensitive and first-hit wins, in declaration order.
var (
	priceAliases  = []string{"price", "odds", "decimal_odds"}
	probAliases   = []string{"p", "prob", "model_prob", "p_model", "probability", "pred_prob", "win_prob", "p_hat"}
	resultAliases = []string{"result", "won", "outcome", "is_win", "y", "label"}

	priceAAliases = []string{"oa", "odds_a", "odds_a_close", "odds_a_open"}
	priceBAliases = []string{"ob", "odds_b", "odds_b_close", "odds_b_open"}
	probAAliases  = []string{"pa", "prob_a", "implied_prob_a", "prob_a_vigfree", "p_a"}
	probBAliases  = []string{"pb", "prob_b", "implied_prob_b", "prob_b_vigfree", "p_b"}
)

// header maps lowercase column names to their index in the CSV record
type header map[string]int

func newHeader(columns []string) header {
	h := make(header, len(columns))
	for i, c := range columns {
		h[strings.ToLower(strings.TrimSpace(c))] = i
	}
	return h
}

func (h header) lookup(record []string, aliases []string) (string, bool) {
	for _, alias := range aliases {
		idx, ok := h[alias]
		if !ok || idx >= len(record) {
			continue
		}
		if v := strings.TrimSpace(record[idx]); v != "" {
			return v, true
		}
	}
	return "", false
}

func (h header) field(record []string, name string) string {
	idx, ok := h[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func (h header) has(aliases []string) bool {
	for _, alias := range aliases {
		if _, ok := h[alias]; ok {
			return true
		}
	}
	return false
}

// parseNumber parses numeric strings the way upstream files actually write
// them: thousand separators, currency-style precision, exponents. decimal
// keeps the tolerant parse; the core works in float64.
func parseNumber(raw string) (float64, bool) {
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, " ", ""))
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// parseResult normalizes the many shapes a result column takes to 0/1
func parseResult(raw string) (int, error) {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		if f >= 1.0 {
			return models.OutcomeWin, nil
		}
		return models.OutcomeLoss, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "win", "won", "true", "yes", "w":
		return models.OutcomeWin, nil
	case "loss", "lost", "false", "no", "l":
		return models.OutcomeLoss, nil
	}
	return 0, models.ErrMissingResult
}
