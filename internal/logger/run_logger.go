// Package logger provides run-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// RunLogger provides dedicated logging for simulation runs.
type RunLogger struct {
	*logrus.Entry
}

// NewRunLogger creates a new run logger.
func NewRunLogger(baseLogger *logrus.Logger) *RunLogger {
	return &RunLogger{
		Entry: baseLogger.WithField("component", "run"),
	}
}

// LogSimulationStart logs the start of a simulation run.
func (rl *RunLogger) LogSimulationStart(runID, configID, dataset string, candidates int, initialBankroll float64) {
	rl.WithFields(logrus.Fields{
		"run_id":           runID,
		"config_id":        configID,
		"dataset":          dataset,
		"candidates":       candidates,
		"initial_bankroll": initialBankroll,
	}).Info("Simulation started")
}

// LogSimulationResult logs the summary of a completed simulation run.
func (rl *RunLogger) LogSimulationResult(runID, configID string, bets, wins int, roi, endBankroll, maxDrawdown float64) {
	rl.WithFields(logrus.Fields{
		"run_id":       runID,
		"config_id":    configID,
		"bets":         bets,
		"wins":         wins,
		"roi":          roi,
		"end_bankroll": endBankroll,
		"max_drawdown": maxDrawdown,
	}).Info("Simulation completed")
}

// LogSweepResult logs the outcome of a band sweep.
func (rl *RunLogger) LogSweepResult(runID string, cells int, bestBand string, bestROI float64) {
	rl.WithFields(logrus.Fields{
		"run_id":    runID,
		"cells":     cells,
		"best_band": bestBand,
		"best_roi":  bestROI,
	}).Info("Band sweep completed")
}

// LogDrawdownBreach warns when a run's drawdown exceeds a configured limit.
func (rl *RunLogger) LogDrawdownBreach(runID string, drawdownPct, peakBankroll, currentBankroll float64) {
	rl.WithFields(logrus.Fields{
		"run_id":           runID,
		"drawdown_pct":     drawdownPct,
		"peak_bankroll":    peakBankroll,
		"current_bankroll": currentBankroll,
	}).Warn("Drawdown limit exceeded")
}
