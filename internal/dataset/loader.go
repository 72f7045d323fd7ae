package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/tennis-edge/internal/models"
)

// Loader reads candidate CSVs row by row. Per-row malformed data is
// recovered locally (row dropped, loading continues): upstream sources are
// unreliable scrapes, so one dirty row must never sink a whole dataset.
type Loader struct {
	logger *logrus.Logger
	devig  DevigMethod
}

// NewLoader creates a loader. method controls de-vig handling of two-sided
// rows; one-sided rows are unaffected.
func NewLoader(method DevigMethod, logger *logrus.Logger) *Loader {
	if logger == nil {
		logger = logrus.New()
	}
	return &Loader{logger: logger, devig: method}
}

// LoadCandidates reads a CSV file into canonical candidates. Two-sided match
// files (oa/ob columns) are expanded into per-match picks; one-sided files
// map row-per-candidate. Row order is preserved: the simulator's bankroll
// compounds in input order.
func (l *Loader) LoadCandidates(path string) ([]models.Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()
	return l.Read(f)
}

// Read parses candidates from an open CSV stream
func (l *Loader) Read(r io.Reader) ([]models.Candidate, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	columns, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}
	hdr := newHeader(columns)

	twoSided := hdr.has(priceAAliases) && hdr.has(priceBAliases)

	var candidates []models.Candidate
	dropped := 0
	rowIndex := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Ragged or corrupt line: drop it and keep reading.
			dropped++
			l.logger.WithError(err).Debug("Dropping unreadable CSV line")
			continue
		}

		var cand models.Candidate
		var rowErr error
		if twoSided {
			cand, rowErr = l.matchRow(hdr, record, rowIndex)
		} else {
			cand, rowErr = l.singleRow(hdr, record, rowIndex)
		}
		if rowErr != nil {
			dropped++
			l.logger.WithFields(logrus.Fields{"row_index": rowIndex}).
				WithError(rowErr).Debug("Dropping malformed row")
			rowIndex++
			continue
		}
		candidates = append(candidates, cand)
		rowIndex++
	}

	if dropped > 0 {
		l.logger.WithFields(logrus.Fields{
			"loaded":  len(candidates),
			"dropped": dropped,
		}).Warn("Dataset contained malformed rows")
	}
	return candidates, nil
}

// singleRow maps one row-per-candidate record. A missing probability falls
// back to the market-implied 1/price before the core ever sees the row.
func (l *Loader) singleRow(hdr header, record []string, rowIndex int) (models.Candidate, error) {
	priceRaw, ok := hdr.lookup(record, priceAliases)
	if !ok {
		return models.Candidate{}, models.ErrInvalidOdds
	}
	price, ok := parseNumber(priceRaw)
	if !ok || price <= 1.0 {
		return models.Candidate{}, models.ErrInvalidOdds
	}

	prob := 1.0 / price
	if probRaw, ok := hdr.lookup(record, probAliases); ok {
		if p, ok := parseNumber(probRaw); ok {
			prob = clamp01(p)
		}
	}

	cand := models.Candidate{
		ID:          candidateID(hdr, record, rowIndex),
		RowIndex:    rowIndex,
		Price:       price,
		Probability: prob,
		EventDate:   hdr.field(record, "event_date"),
	}
	if resultRaw, ok := hdr.lookup(record, resultAliases); ok {
		outcome, err := parseResult(resultRaw)
		if err == nil {
			cand.Outcome = &outcome
		}
	}
	return cand, nil
}

func candidateID(hdr header, record []string, rowIndex int) string {
	if id := hdr.field(record, "id"); id != "" {
		return id
	}
	if a, b := hdr.field(record, "player_a"), hdr.field(record, "player_b"); a != "" && b != "" {
		return fmt.Sprintf("%s|%s vs %s", hdr.field(record, "event_date"), a, b)
	}
	return "row" + strconv.Itoa(rowIndex)
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
