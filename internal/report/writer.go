// Package report renders backtest and sweep output as CSV, Markdown,
// HTML and console text.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/yourusername/tennis-edge/internal/backtest"
)

// ledgerHeader is the column order of the per-bet ledger export.
var ledgerHeader = []string{
	"config_id", "row_index", "price", "p_model", "p_used",
	"kelly_f_raw", "stake", "result", "pnl",
	"bankroll_before", "bankroll_after",
}

// WriteLedgerCSV exports the per-bet ledger of a simulation run.
func WriteLedgerCSV(ledger []backtest.Record, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(ledgerHeader); err != nil {
		return err
	}
	for _, rec := range ledger {
		result := ""
		if rec.Result != nil {
			result = strconv.Itoa(*rec.Result)
		}
		row := []string{
			rec.ConfigID,
			strconv.Itoa(rec.RowIndex),
			formatFloat(rec.Price),
			formatFloat(rec.PModel),
			formatFloat(rec.PUsed),
			formatFloat(rec.KellyFRaw),
			formatFloat(rec.Stake),
			result,
			formatFloat(rec.Pnl),
			formatFloat(rec.BankrollBefore),
			formatFloat(rec.BankrollAfter),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// sweepHeader is the column order of the sweep matrix export.
var sweepHeader = []string{
	"config_id", "band", "mode", "scale", "min_edge",
	"bets", "wins", "hit_rate", "avg_odds", "turnover",
	"pnl", "roi", "end_bankroll", "max_drawdown", "max_drawdown_pct",
}

// WriteSweepCSV exports every cell of a band sweep, one row per cell.
func WriteSweepCSV(report *backtest.SweepReport, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(sweepHeader); err != nil {
		return err
	}
	for _, res := range report.Results {
		row := []string{
			res.Summary.ConfigID,
			res.BandLabel,
			string(res.Mode),
			formatFloat(res.Scale),
			formatFloat(res.MinEdge),
			strconv.Itoa(res.Summary.Bets),
			strconv.Itoa(res.Summary.Wins),
			formatFloat(res.Summary.HitRate),
			formatFloat(res.Summary.AvgOdds),
			formatFloat(res.Summary.TotalStaked),
			formatFloat(res.Summary.Pnl),
			formatFloat(res.Summary.ROI),
			formatFloat(res.Summary.EndBankroll),
			formatFloat(res.Summary.MaxDrawdown),
			formatFloat(res.Summary.MaxDrawdownPct),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteSummaryJSON exports a run summary as indented JSON.
func WriteSummaryJSON(summary backtest.Summary, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatPct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}
