// Package main provides the entry point for the backtesting CLI tool.
package main

import (
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/tennis-edge/internal/backtest"
	"github.com/yourusername/tennis-edge/internal/config"
	"github.com/yourusername/tennis-edge/internal/dataset"
	"github.com/yourusername/tennis-edge/internal/logger"
	"github.com/yourusername/tennis-edge/internal/metrics"
	"github.com/yourusername/tennis-edge/internal/report"
	"github.com/yourusername/tennis-edge/internal/staking"
)

func main() {
	var (
		configPath  = flag.String("config", "config/config.yaml", "Path to config file")
		datasetPath = flag.String("dataset", "", "Override dataset CSV path")
		configID    = flag.String("config-id", "", "Run identifier used in ledger rows")
		minEdge     = flag.Float64("min-edge", -1, "Override minimum edge threshold")
		mode        = flag.String("mode", "", "Override stake mode: kelly or flat")
		scale       = flag.Float64("scale", -1, "Override Kelly scale")
		bankroll    = flag.Float64("bankroll", -1, "Override initial bankroll")
		ev          = flag.Bool("ev", false, "Settle unresolved rows at expected value")
		monteCarlo  = flag.Bool("monte-carlo", false, "Resample the ledger after the run")
		outputDir   = flag.String("output", "", "Override output directory")
	)
	flag.Parse()

	cfg := loadConfigWithSecrets(*configPath)
	log := logger.NewLogger(cfg.App.LogLevel)
	metrics.InitRegistry()

	applyOverrides(cfg, *datasetPath, *minEdge, *mode, *scale, *bankroll, *ev, *outputDir)

	method, err := dataset.ParseDevigMethod(cfg.Backtest.DevigMethod)
	if err != nil {
		log.Fatalf("Invalid devig method: %v", err)
	}

	loader := dataset.NewLoader(method, log)
	candidates, err := loader.LoadCandidates(cfg.Backtest.Dataset)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	runID := uuid.New().String()
	id := *configID
	if id == "" {
		id = "run_" + runID[:8]
	}

	simCfg := backtest.SimulatorConfig{
		ConfigID:      id,
		Staking:       cfg.Staking,
		MinEdge:       cfg.Backtest.MinEdge,
		ExpectedValue: cfg.Backtest.ExpectedValue,
	}

	sim, err := backtest.NewSimulator(simCfg, log)
	if err != nil {
		log.Fatalf("Invalid staking config: %v", err)
	}

	runLog := logger.NewRunLogger(log)
	runLog.LogSimulationStart(runID, id, cfg.Backtest.Dataset, len(candidates), cfg.Staking.InitialBankroll)

	started := time.Now()
	state, summary := sim.Run(candidates)
	metrics.RecordSimulation("backtest", "success", time.Since(started).Seconds())
	metrics.UpdateBankroll(summary.EndBankroll)

	runLog.LogSimulationResult(runID, id, summary.Bets, summary.Wins,
		summary.ROI, summary.EndBankroll, summary.MaxDrawdown)

	os.Stdout.WriteString(report.GenerateConsoleReport(summary))

	writeArtifacts(cfg, state, summary, log)

	if *monteCarlo {
		result := backtest.RunMonteCarlo(state.Ledger, backtest.MonteCarloConfig{
			Iterations:      cfg.Backtest.MonteCarloIterations,
			InitialBankroll: cfg.Staking.InitialBankroll,
		})
		log.WithFields(logrus.Fields{
			"mean_return":    result.MeanReturn,
			"var_95":         result.VaR95,
			"prob_of_profit": result.ProbabilityOfProfit,
		}).Info("Monte Carlo completed")
	}
}

func loadConfigWithSecrets(path string) *config.Config {
	boot := logrus.New()

	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		boot.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			boot.Fatalf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			boot.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		boot.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func applyOverrides(cfg *config.Config, datasetPath string, minEdge float64, mode string, scale, bankroll float64, ev bool, outputDir string) {
	if datasetPath != "" {
		cfg.Backtest.Dataset = datasetPath
	}
	if minEdge >= 0 {
		cfg.Backtest.MinEdge = minEdge
	}
	if mode != "" {
		cfg.Staking.Mode = staking.StakeMode(mode)
	}
	if scale >= 0 {
		cfg.Staking.Scale = scale
	}
	if bankroll > 0 {
		cfg.Staking.InitialBankroll = bankroll
	}
	if ev {
		cfg.Backtest.ExpectedValue = true
	}
	if outputDir != "" {
		cfg.Backtest.OutputDir = outputDir
	}
}

func writeArtifacts(cfg *config.Config, state *backtest.State, summary backtest.Summary, log *logrus.Logger) {
	dir := cfg.Backtest.OutputDir

	if err := report.WriteLedgerCSV(state.Ledger, filepath.Join(dir, "ledger.csv")); err != nil {
		log.Fatalf("Failed to write ledger: %v", err)
	}
	if err := report.WriteSummaryJSON(summary, filepath.Join(dir, "summary.json")); err != nil {
		log.Fatalf("Failed to write summary: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "equity.csv"), []byte(state.EquityCurve.ToCSV()), 0o644); err != nil {
		log.Fatalf("Failed to write equity curve: %v", err)
	}
	if err := report.GenerateHTMLReport(summary, filepath.Join(dir, "report.html")); err != nil {
		log.Fatalf("Failed to write HTML report: %v", err)
	}
}
