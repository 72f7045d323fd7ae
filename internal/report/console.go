package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yourusername/tennis-edge/internal/backtest"
)

// GenerateConsoleReport formats a run summary for terminal output.
func GenerateConsoleReport(summary backtest.Summary) string {
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Config: %s\n", summary.ConfigID))
	builder.WriteString(fmt.Sprintf("Settlement: %s\n", summary.Mode))
	builder.WriteString(fmt.Sprintf("Bets: %d (wins %d, hit rate %s)\n", summary.Bets, summary.Wins, formatPct(summary.HitRate)))
	builder.WriteString(fmt.Sprintf("Avg Odds: %.2f\n", summary.AvgOdds))
	builder.WriteString(fmt.Sprintf("Turnover: %.2f\n", summary.TotalStaked))
	builder.WriteString(fmt.Sprintf("PnL: %.2f\n", summary.Pnl))
	builder.WriteString(fmt.Sprintf("ROI: %s\n", formatPct(summary.ROI)))
	builder.WriteString(fmt.Sprintf("End Bankroll: %.2f\n", summary.EndBankroll))
	builder.WriteString(fmt.Sprintf("Max Drawdown: %.2f (%s)\n", summary.MaxDrawdown, formatPct(summary.MaxDrawdownPct)))
	builder.WriteString(fmt.Sprintf("Sharpe Ratio: %.2f\n", summary.SharpeRatio))
	builder.WriteString(fmt.Sprintf("Profit Factor: %.2f\n", summary.ProfitFactor))
	return builder.String()
}

// GenerateSweepConsoleReport formats the top sweep cells for terminal
// output, ordered by ROI.
func GenerateSweepConsoleReport(report *backtest.SweepReport, topN int) string {
	cells := make([]backtest.SweepResult, len(report.Results))
	copy(cells, report.Results)
	sort.SliceStable(cells, func(i, j int) bool {
		return cells[i].Summary.ROI > cells[j].Summary.ROI
	})
	if topN > 0 && topN < len(cells) {
		cells = cells[:topN]
	}

	var builder strings.Builder
	builder.WriteString("Band Sweep Report\n")
	builder.WriteString("==================\n")
	builder.WriteString(fmt.Sprintf("%-16s %-10s %-6s %-6s %-8s %6s %10s %10s %10s\n",
		"config", "band", "mode", "scale", "min_edge", "bets", "roi", "pnl", "drawdown"))
	for _, c := range cells {
		builder.WriteString(fmt.Sprintf("%-16s %-10s %-6s %-6.2f %-8.3f %6d %10s %10.2f %10.2f\n",
			c.Summary.ConfigID, c.BandLabel, c.Mode, c.Scale, c.MinEdge,
			c.Summary.Bets, formatPct(c.Summary.ROI), c.Summary.Pnl, c.Summary.MaxDrawdown))
	}
	if report.Best != nil {
		builder.WriteString(fmt.Sprintf("\nBest: %s band=%s mode=%s scale=%.2f min_edge=%.3f roi=%s\n",
			report.Best.Summary.ConfigID, report.Best.BandLabel, report.Best.Mode,
			report.Best.Scale, report.Best.MinEdge, formatPct(report.Best.Summary.ROI)))
	}
	return builder.String()
}

// GenerateHTMLReport creates a simple HTML report for a run summary.
func GenerateHTMLReport(summary backtest.Summary, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Backtest Report</title></head>
<body>
<h1>Backtest Report</h1>
<p><strong>Config:</strong> %s</p>
<p><strong>Bets:</strong> %d</p>
<p><strong>Hit Rate:</strong> %s</p>
<p><strong>Turnover:</strong> %.2f</p>
<p><strong>PnL:</strong> %.2f</p>
<p><strong>ROI:</strong> %s</p>
<p><strong>End Bankroll:</strong> %.2f</p>
<p><strong>Max Drawdown:</strong> %.2f (%s)</p>
<p><strong>Sharpe Ratio:</strong> %.2f</p>
<p><strong>Profit Factor:</strong> %.2f</p>
</body>
</html>`,
		summary.ConfigID,
		summary.Bets,
		formatPct(summary.HitRate),
		summary.TotalStaked,
		summary.Pnl,
		formatPct(summary.ROI),
		summary.EndBankroll,
		summary.MaxDrawdown,
		formatPct(summary.MaxDrawdownPct),
		summary.SharpeRatio,
		summary.ProfitFactor,
	)

	return os.WriteFile(outputPath, []byte(html), 0o644)
}
