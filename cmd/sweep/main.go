// Package main provides the band sweep CLI tool.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/tennis-edge/internal/backtest"
	"github.com/yourusername/tennis-edge/internal/config"
	"github.com/yourusername/tennis-edge/internal/database"
	"github.com/yourusername/tennis-edge/internal/dataset"
	applog "github.com/yourusername/tennis-edge/internal/logger"
	"github.com/yourusername/tennis-edge/internal/metrics"
	"github.com/yourusername/tennis-edge/internal/models"
	"github.com/yourusername/tennis-edge/internal/report"
	"github.com/yourusername/tennis-edge/internal/repository"
	"github.com/yourusername/tennis-edge/internal/staking"
)

var (
	configFile  string
	datasetPath string
	bandSpec    string
	workers     int
	topN        int
	outputDir   string

	logger *logrus.Logger
	cfg    *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVar(&datasetPath, "dataset", "", "Override dataset CSV path")
	rootCmd.Flags().StringVar(&bandSpec, "bands", "", "Override band spec, e.g. \"2.0,2.6|2.6,3.2\"")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "Override sweep worker count")
	rootCmd.Flags().IntVar(&topN, "top", 10, "Number of cells to print")
	rootCmd.Flags().StringVar(&outputDir, "output", "", "Override output directory")
}

var rootCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a staking parameter sweep across odds bands",
	Long:  `Replays the historical dataset through every cell of the band/mode/scale/edge matrix and reports the best-performing configuration.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
			if err := config.LoadSecretsFromAWS(cfg, os.Getenv("AWS_REGION"), os.Getenv("AWS_SECRET_NAME")); err != nil {
				return fmt.Errorf("failed to load secrets: %w", err)
			}
		}
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		logger = applog.NewLogger(cfg.App.LogLevel)
		metrics.InitRegistry()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSweep(cmd.Context())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runSweep(ctx context.Context) error {
	applyOverrides()

	bands, err := backtest.ParseBands(cfg.Backtest.BandSpec)
	if err != nil {
		return err
	}

	method, err := dataset.ParseDevigMethod(cfg.Backtest.DevigMethod)
	if err != nil {
		return err
	}

	loader := dataset.NewLoader(method, logger)
	candidates, err := loader.LoadCandidates(cfg.Backtest.Dataset)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	sweepCfg := backtest.SweepConfig{
		Bands:   bands,
		Grid:    gridFromConfig(cfg.Backtest.Grid),
		Base:    cfg.Staking,
		Workers: cfg.Backtest.SweepWorkers,
	}

	started := time.Now()
	result, err := backtest.RunSweep(sweepCfg, candidates, logger)
	if err != nil {
		metrics.RecordSimulation("sweep", "error", time.Since(started).Seconds())
		return err
	}
	metrics.RecordSimulation("sweep", "success", time.Since(started).Seconds())
	if result.Best != nil {
		metrics.UpdateSweep(len(result.Results), result.Best.Summary.ROI)
	}

	os.Stdout.WriteString(report.GenerateSweepConsoleReport(&result, topN))

	if err := report.WriteSweepCSV(&result, filepath.Join(cfg.Backtest.OutputDir, "sweep.csv")); err != nil {
		return fmt.Errorf("failed to write sweep CSV: %w", err)
	}

	if cfg.Database.Enabled {
		if err := persistSweep(ctx, &result); err != nil {
			return err
		}
	}
	return nil
}

func applyOverrides() {
	if datasetPath != "" {
		cfg.Backtest.Dataset = datasetPath
	}
	if bandSpec != "" {
		cfg.Backtest.BandSpec = bandSpec
	}
	if workers > 0 {
		cfg.Backtest.SweepWorkers = workers
	}
	if outputDir != "" {
		cfg.Backtest.OutputDir = outputDir
	}
}

// gridFromConfig falls back to the default research matrix when the
// configuration leaves the grid empty.
func gridFromConfig(spec config.GridSpec) backtest.SweepGrid {
	if len(spec.Modes) == 0 && len(spec.Scales) == 0 && len(spec.MinEdges) == 0 {
		return backtest.DefaultSweepGrid()
	}
	grid := backtest.SweepGrid{
		Scales:   spec.Scales,
		MinEdges: spec.MinEdges,
	}
	for _, mode := range spec.Modes {
		grid.Modes = append(grid.Modes, staking.StakeMode(mode))
	}
	if len(grid.Modes) == 0 {
		grid.Modes = []staking.StakeMode{staking.StakeModeKelly}
	}
	return grid
}

func persistSweep(ctx context.Context, result *backtest.SweepReport) error {
	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	runID := uuid.New()
	now := time.Now().UTC()
	cells := make([]models.SweepCell, 0, len(result.Results))
	for _, res := range result.Results {
		cells = append(cells, models.SweepCell{
			ID:             uuid.New(),
			RunID:          runID,
			CellID:         res.Summary.ConfigID,
			BandLabel:      res.BandLabel,
			Mode:           string(res.Mode),
			Scale:          res.Scale,
			MinEdge:        res.MinEdge,
			Bets:           res.Summary.Bets,
			Wins:           res.Summary.Wins,
			HitRate:        res.Summary.HitRate,
			AvgOdds:        res.Summary.AvgOdds,
			Turnover:       res.Summary.TotalStaked,
			Pnl:            res.Summary.Pnl,
			ROI:            res.Summary.ROI,
			EndBankroll:    res.Summary.EndBankroll,
			MaxDrawdown:    res.Summary.MaxDrawdown,
			MaxDrawdownPct: res.Summary.MaxDrawdownPct,
			CreatedAt:      now,
		})
	}

	repo := repository.NewPostgresSweepRepository(db)
	if err := repo.SaveRun(ctx, cells); err != nil {
		return fmt.Errorf("failed to persist sweep run: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"run_id": runID,
		"cells":  len(cells),
	}).Info("Sweep run persisted")
	return nil
}
