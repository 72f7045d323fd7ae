package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yourusername/tennis-edge/internal/models"
)

// GeneratePicksMarkdown renders a shortlist of value picks as a
// Markdown table suitable for archiving or messaging.
func GeneratePicksMarkdown(picks []models.Pick, generatedAt time.Time) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("# Value Picks %s\n\n", generatedAt.Format("2006-01-02 15:04")))
	if len(picks) == 0 {
		builder.WriteString("No qualifying picks found.\n")
		return builder.String()
	}
	builder.WriteString("| Match | Pick | Price | Model | Implied | Edge | Stake |\n")
	builder.WriteString("|-------|------|-------|-------|---------|------|-------|\n")
	for _, p := range picks {
		builder.WriteString(fmt.Sprintf("| %s vs %s | %s | %.2f | %s | %s | %s | %.2f |\n",
			p.PlayerA, p.PlayerB, p.Selection(),
			p.Price, formatPct(p.ModelProb), formatPct(p.ImpliedProb),
			formatPct(p.Edge), p.Stake))
	}
	return builder.String()
}

// WritePicksMarkdown writes the pick shortlist to disk.
func WritePicksMarkdown(picks []models.Pick, generatedAt time.Time, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, []byte(GeneratePicksMarkdown(picks, generatedAt)), 0o644)
}
