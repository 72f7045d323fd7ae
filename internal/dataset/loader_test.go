package dataset

import (
	"io"
	"math"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/tennis-edge/internal/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestReadSingleSidedAliases(t *testing.T) {
	csvData := "Odds,Prob,Won,event_date,id\n" +
		"2.50,0.55,1,2024-05-01,m1\n" +
		"1.80,0.60,lost,2024-05-02,m2\n"

	loader := NewLoader(DevigNone, quietLogger())
	cands, err := loader.Read(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(cands) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(cands))
	}

	first := cands[0]
	if first.ID != "m1" {
		t.Errorf("expected ID m1, got %q", first.ID)
	}
	if first.Price != 2.50 {
		t.Errorf("expected price 2.50, got %v", first.Price)
	}
	if first.Probability != 0.55 {
		t.Errorf("expected probability 0.55, got %v", first.Probability)
	}
	if first.EventDate != "2024-05-01" {
		t.Errorf("expected event date 2024-05-01, got %q", first.EventDate)
	}
	if first.Outcome == nil || *first.Outcome != models.OutcomeWin {
		t.Errorf("expected win outcome, got %v", first.Outcome)
	}

	second := cands[1]
	if second.Outcome == nil || *second.Outcome != models.OutcomeLoss {
		t.Errorf("expected loss outcome for word form, got %v", second.Outcome)
	}
	if second.RowIndex != 1 {
		t.Errorf("expected row index 1, got %d", second.RowIndex)
	}
}

func TestReadImpliedProbabilityFallback(t *testing.T) {
	csvData := "price\n4.00\n"

	loader := NewLoader(DevigNone, quietLogger())
	cands, err := loader.Read(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(cands))
	}
	if cands[0].Probability != 0.25 {
		t.Errorf("expected implied probability 0.25, got %v", cands[0].Probability)
	}
	if cands[0].Outcome != nil {
		t.Errorf("expected unsettled candidate, got outcome %v", *cands[0].Outcome)
	}
}

func TestReadDropsUnbettablePrice(t *testing.T) {
	csvData := "price,p\n" +
		"1.00,0.90\n" +
		"2.00,0.55\n"

	loader := NewLoader(DevigNone, quietLogger())
	cands, err := loader.Read(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate after dropping price<=1 row, got %d", len(cands))
	}
	if cands[0].Price != 2.00 {
		t.Errorf("expected surviving price 2.00, got %v", cands[0].Price)
	}
	// Dropped rows still consume a row index so ledger positions stay stable.
	if cands[0].RowIndex != 1 {
		t.Errorf("expected row index 1, got %d", cands[0].RowIndex)
	}
}

func TestReadClampsProbability(t *testing.T) {
	csvData := "price,prob\n3.00,1.40\n"

	loader := NewLoader(DevigNone, quietLogger())
	cands, err := loader.Read(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(cands) != 1 || cands[0].Probability != 1.0 {
		t.Fatalf("expected probability clamped to 1.0, got %+v", cands)
	}
}

func TestReadTwoSidedPicksLargerEV(t *testing.T) {
	// Side B carries the larger expected value: 0.45*2.60 > 0.55*1.70.
	csvData := "player_a,player_b,oa,ob,pa,result,event_date\n" +
		"Alcaraz,Sinner,1.70,2.60,0.55,B,2024-06-01\n"

	loader := NewLoader(DevigNone, quietLogger())
	cands, err := loader.Read(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(cands))
	}
	cand := cands[0]
	if cand.Side != models.PickSideB {
		t.Errorf("expected side B, got %q", cand.Side)
	}
	if cand.Price != 2.60 {
		t.Errorf("expected price 2.60, got %v", cand.Price)
	}
	if !approxEqual(cand.Probability, 0.45, 1e-9) {
		t.Errorf("expected complement probability 0.45, got %v", cand.Probability)
	}
	if cand.Outcome == nil || *cand.Outcome != models.OutcomeWin {
		t.Errorf("expected winning outcome for backed side, got %v", cand.Outcome)
	}
	if cand.ID != "2024-06-01|Alcaraz vs Sinner" {
		t.Errorf("unexpected match key %q", cand.ID)
	}
}

func TestReadTwoSidedDevigsMissingProbabilities(t *testing.T) {
	csvData := "oa,ob\n2.00,2.00\n"

	loader := NewLoader(DevigProportional, quietLogger())
	cands, err := loader.Read(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(cands))
	}
	if !approxEqual(cands[0].Probability, 0.5, 1e-9) {
		t.Errorf("expected de-vigged probability 0.5, got %v", cands[0].Probability)
	}
}

func TestReadTwoSidedBinaryResultFlags(t *testing.T) {
	csvData := "oa,ob,pa,result_a,result_b\n" +
		"2.40,1.70,0.50,1,0\n"

	loader := NewLoader(DevigNone, quietLogger())
	cands, err := loader.Read(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(cands))
	}
	cand := cands[0]
	if cand.Side != models.PickSideA {
		t.Fatalf("expected side A, got %q", cand.Side)
	}
	if cand.Outcome == nil || *cand.Outcome != models.OutcomeWin {
		t.Errorf("expected side A win from binary flags, got %v", cand.Outcome)
	}
}

func TestParseResultForms(t *testing.T) {
	wins := []string{"1", "1.0", "2", "win", "WON", "true", "yes", "w"}
	for _, raw := range wins {
		outcome, err := parseResult(raw)
		if err != nil || outcome != models.OutcomeWin {
			t.Errorf("parseResult(%q) = (%d, %v), want win", raw, outcome, err)
		}
	}

	losses := []string{"0", "0.0", "-1", "loss", "LOST", "false", "no", "l"}
	for _, raw := range losses {
		outcome, err := parseResult(raw)
		if err != nil || outcome != models.OutcomeLoss {
			t.Errorf("parseResult(%q) = (%d, %v), want loss", raw, outcome, err)
		}
	}

	if _, err := parseResult("pending"); err == nil {
		t.Error("expected error for unparseable result")
	}
}

func TestParseNumberTolerant(t *testing.T) {
	cases := map[string]float64{
		"2.5":    2.5,
		" 1.85 ": 1.85,
		"1 250":  1250,
		"2.5e0":  2.5,
	}
	for raw, want := range cases {
		got, ok := parseNumber(raw)
		if !ok || !approxEqual(got, want, 1e-9) {
			t.Errorf("parseNumber(%q) = (%v, %v), want %v", raw, got, ok, want)
		}
	}
	if _, ok := parseNumber("n/a"); ok {
		t.Error("expected parse failure for n/a")
	}
}
