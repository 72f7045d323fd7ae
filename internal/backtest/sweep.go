package backtest

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/tennis-edge/internal/models"
	"github.com/yourusername/tennis-edge/internal/staking"
)

// OddsBand is a half-open price interval [Lo, Hi). A candidate must fall
// inside a cell's band to be eligible at all; out-of-band candidates are
// excluded before sizing, not merely zero-staked.
type OddsBand struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// Contains reports band membership. Lo is inclusive, Hi exclusive.
func (b OddsBand) Contains(price float64) bool {
	return price >= b.Lo && price < b.Hi
}

// Label returns the band's display form
func (b OddsBand) Label() string {
	return fmt.Sprintf("%.2f-%.2f", b.Lo, b.Hi)
}

// ParseBands parses a pipe-and-comma band spec such as "2.0,2.6|2.6,3.2".
// A malformed segment fails the whole sweep: a bad band is a configuration
// error, not a data error.
func ParseBands(spec string) ([]OddsBand, error) {
	var bands []OddsBand
	for _, segment := range strings.Split(spec, "|") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		parts := strings.Split(segment, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: segment %q", models.ErrInvalidBandSpec, segment)
		}
		lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %q: %v", models.ErrInvalidBandSpec, segment, err)
		}
		hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %q: %v", models.ErrInvalidBandSpec, segment, err)
		}
		if hi <= lo {
			return nil, fmt.Errorf("%w: segment %q: hi must exceed lo", models.ErrInvalidBandSpec, segment)
		}
		bands = append(bands, OddsBand{Lo: lo, Hi: hi})
	}
	if len(bands) == 0 {
		return nil, fmt.Errorf("%w: no bands in %q", models.ErrInvalidBandSpec, spec)
	}
	return bands, nil
}

// SweepGrid is the parameter grid crossed with each odds band
type SweepGrid struct {
	Modes    []staking.StakeMode `mapstructure:"modes"`
	Scales   []float64           `mapstructure:"scales"`
	MinEdges []float64           `mapstructure:"min_edges"`
}

// DefaultSweepGrid mirrors the usual research matrix: half and quarter Kelly
// plus flat staking, with and without an edge floor.
func DefaultSweepGrid() SweepGrid {
	return SweepGrid{
		Modes:    []staking.StakeMode{staking.StakeModeKelly, staking.StakeModeFlat},
		Scales:   []float64{0.25, 0.5},
		MinEdges: []float64{0, 0.01},
	}
}

// SweepConfig configures one band sweep
type SweepConfig struct {
	Bands   []OddsBand
	Grid    SweepGrid
	Base    staking.KellyConfig
	Workers int
}

// SweepResult is one row of the sweep matrix
type SweepResult struct {
	CellID    int               `json:"cell_id"`
	BandLabel string            `json:"band_label"`
	Band      OddsBand          `json:"band"`
	Mode      staking.StakeMode `json:"mode"`
	Scale     float64           `json:"scale"`
	MinEdge   float64           `json:"min_edge"`
	Summary   Summary           `json:"summary"`
}

// SweepReport holds all cells plus the best-by-ROI pointer
type SweepReport struct {
	Results []SweepResult `json:"results"`
	Best    *SweepResult  `json:"best,omitempty"`
}

type sweepCell struct {
	id      int
	band    OddsBand
	mode    staking.StakeMode
	scale   float64
	minEdge float64
}

// buildCells enumerates the cross product in a fixed order: band, then mode,
// then scale, then edge threshold. Flat mode ignores the Kelly scale, so it
// contributes a single scale slot instead of duplicating cells.
func buildCells(cfg SweepConfig) []sweepCell {
	var cells []sweepCell
	id := 0
	for _, band := range cfg.Bands {
		for _, mode := range cfg.Grid.Modes {
			scales := cfg.Grid.Scales
			if mode == staking.StakeModeFlat || len(scales) == 0 {
				scales = []float64{cfg.Base.Scale}
			}
			for _, scale := range scales {
				minEdges := cfg.Grid.MinEdges
				if len(minEdges) == 0 {
					minEdges = []float64{0}
				}
				for _, minEdge := range minEdges {
					id++
					cells = append(cells, sweepCell{
						id:      id,
						band:    band,
						mode:    mode,
						scale:   scale,
						minEdge: minEdge,
					})
				}
			}
		}
	}
	return cells
}

// RunSweep simulates every cell of the band/parameter matrix. Cells are
// independent (each owns its own State over the shared read-only candidate
// slice), so they run on a small worker pool; results are written by cell
// index, keeping output order deterministic regardless of completion order.
func RunSweep(cfg SweepConfig, candidates []models.Candidate, logger *logrus.Logger) (SweepReport, error) {
	if len(cfg.Bands) == 0 {
		return SweepReport{}, fmt.Errorf("%w: sweep requires at least one band", models.ErrInvalidBandSpec)
	}
	if err := cfg.Base.Validate(); err != nil {
		return SweepReport{}, err
	}
	if logger == nil {
		logger = logrus.New()
	}

	cells := buildCells(cfg)
	results := make([]SweepResult, len(cells))

	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	if workers > len(cells) {
		workers = len(cells)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = runCell(cells[i], cfg.Base, candidates, logger)
			}
		}()
	}
	for i := range cells {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	report := SweepReport{Results: results}
	report.Best = pickBest(results)

	if report.Best != nil {
		logger.WithFields(logrus.Fields{
			"cells":      len(results),
			"best_band":  report.Best.BandLabel,
			"best_roi":   report.Best.Summary.ROI,
			"best_bets":  report.Best.Summary.Bets,
			"best_stake": report.Best.Summary.TotalStaked,
		}).Info("Band sweep completed")
	}
	return report, nil
}

func runCell(cell sweepCell, base staking.KellyConfig, candidates []models.Candidate, logger *logrus.Logger) SweepResult {
	eligible := make([]models.Candidate, 0, len(candidates))
	for _, cand := range candidates {
		if cell.band.Contains(cand.Price) {
			eligible = append(eligible, cand)
		}
	}

	stakingCfg := base.WithMode(cell.mode).WithScale(cell.scale)
	simCfg := SimulatorConfig{
		ConfigID: fmt.Sprintf("cfg%d_%s", cell.id, cell.band.Label()),
		Staking:  stakingCfg,
		MinEdge:  cell.minEdge,
	}

	sim, err := NewSimulator(simCfg, logger)
	if err != nil {
		// Base config was validated up front; a cell can only fail here on a
		// grid value, which is still a configuration error worth surfacing.
		logger.WithError(err).WithField("cell_id", cell.id).Error("Sweep cell configuration rejected")
		return SweepResult{
			CellID:    cell.id,
			BandLabel: cell.band.Label(),
			Band:      cell.band,
			Mode:      cell.mode,
			Scale:     cell.scale,
			MinEdge:   cell.minEdge,
			Summary:   Summary{ConfigID: simCfg.ConfigID, EndBankroll: base.InitialBankroll, Mode: SettleModeRealized},
		}
	}

	_, summary := sim.Run(eligible)
	return SweepResult{
		CellID:    cell.id,
		BandLabel: cell.band.Label(),
		Band:      cell.band,
		Mode:      cell.mode,
		Scale:     cell.scale,
		MinEdge:   cell.minEdge,
		Summary:   summary,
	}
}

// pickBest ranks cells by ROI descending, total staked descending, then
// insertion order. The comparator is total so "best" is reproducible across
// runs and worker schedules.
func pickBest(results []SweepResult) *SweepResult {
	if len(results) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(results); i++ {
		if betterThan(results[i], results[best]) {
			best = i
		}
	}
	return &results[best]
}

func betterThan(a, b SweepResult) bool {
	if a.Summary.ROI != b.Summary.ROI {
		return a.Summary.ROI > b.Summary.ROI
	}
	if a.Summary.TotalStaked != b.Summary.TotalStaked {
		return a.Summary.TotalStaked > b.Summary.TotalStaked
	}
	// Equal on both keys: keep the earlier cell.
	return false
}
