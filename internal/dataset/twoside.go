package dataset

import (
	"fmt"
	"strings"

	"github.com/yourusername/tennis-edge/internal/models"
)

// matchRow maps one two-sided match record (odds and probability for both
// players) to a single candidate backing the side with the larger expected
// value. Probabilities missing from the row are recovered by de-vigging the
// quoted pair.
func (l *Loader) matchRow(hdr header, record []string, rowIndex int) (models.Candidate, error) {
	priceA, okA := lookupNumber(hdr, record, priceAAliases)
	priceB, okB := lookupNumber(hdr, record, priceBAliases)
	if !okA || !okB || priceA <= 1.0 || priceB <= 1.0 {
		return models.Candidate{}, models.ErrInvalidOdds
	}

	probA, haveA := lookupNumber(hdr, record, probAAliases)
	probB, haveB := lookupNumber(hdr, record, probBAliases)
	switch {
	case haveA && !haveB:
		probB = 1.0 - clamp01(probA)
	case haveB && !haveA:
		probA = 1.0 - clamp01(probB)
	case !haveA && !haveB:
		var ok bool
		probA, probB, ok = Devig(priceA, priceB, l.devig)
		if !ok {
			return models.Candidate{}, models.ErrMissingProbability
		}
	}
	probA = clamp01(probA)
	probB = clamp01(probB)

	// Back the side with the larger expected value.
	side := models.PickSideA
	price, prob := priceA, probA
	if probB*priceB-1.0 > probA*priceA-1.0 {
		side = models.PickSideB
		price, prob = priceB, probB
	}

	cand := models.Candidate{
		ID:          matchKey(hdr, record, rowIndex),
		RowIndex:    rowIndex,
		Price:       price,
		Probability: prob,
		EventDate:   firstField(hdr, record, "event_date", "date"),
		Side:        side,
	}

	if winner, ok := resolveWinner(hdr, record); ok {
		outcome := models.OutcomeLoss
		if winner == side {
			outcome = models.OutcomeWin
		}
		cand.Outcome = &outcome
	}
	return cand, nil
}

// resolveWinner extracts the realized winner from whichever outcome column
// the source provides: result as "A"/"B", binary result_a/result_b flags, or
// a winner column naming a player.
func resolveWinner(hdr header, record []string) (models.PickSide, bool) {
	if r := strings.ToUpper(firstField(hdr, record, "result")); r == "A" || r == "B" {
		return models.PickSide(r), true
	}

	ra := hdr.field(record, "result_a")
	rb := hdr.field(record, "result_b")
	if ra != "" && rb != "" {
		fa, okA := parseNumber(ra)
		fb, okB := parseNumber(rb)
		if okA && okB {
			if fa >= 1.0 && fb < 1.0 {
				return models.PickSideA, true
			}
			if fb >= 1.0 && fa < 1.0 {
				return models.PickSideB, true
			}
		}
	}

	if w := firstField(hdr, record, "winner"); w != "" {
		if w == hdr.field(record, "player_a") {
			return models.PickSideA, true
		}
		if w == hdr.field(record, "player_b") {
			return models.PickSideB, true
		}
	}
	return "", false
}

func matchKey(hdr header, record []string, rowIndex int) string {
	a := hdr.field(record, "player_a")
	b := hdr.field(record, "player_b")
	if a == "" || b == "" {
		return fmt.Sprintf("match%d", rowIndex)
	}
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%s|%s vs %s", firstField(hdr, record, "event_date", "date"), a, b)
}

func lookupNumber(hdr header, record []string, aliases []string) (float64, bool) {
	raw, ok := hdr.lookup(record, aliases)
	if !ok {
		return 0, false
	}
	return parseNumber(raw)
}

func firstField(hdr header, record []string, names ...string) string {
	for _, name := range names {
		if v := hdr.field(record, name); v != "" {
			return v
		}
	}
	return ""
}
