package backtest

import (
	"github.com/sirupsen/logrus"
	"github.com/yourusername/tennis-edge/internal/models"
	"github.com/yourusername/tennis-edge/internal/staking"
)

// Record is one settlement row in the output ledger. The field names form
// the handoff contract to the report layer and must stay stable.
type Record struct {
	ConfigID       string  `json:"config_id"`
	RowIndex       int     `json:"row_index"`
	Price          float64 `json:"price"`
	PModel         float64 `json:"p_model"`
	PUsed          float64 `json:"p_used"`
	KellyFRaw      float64 `json:"kelly_f_raw"`
	Stake          float64 `json:"stake"`
	Result         *int    `json:"result"`
	Pnl            float64 `json:"pnl"`
	BankrollBefore float64 `json:"bankroll_before"`
	BankrollAfter  float64 `json:"bankroll_after"`
}

// SimulatorConfig configures one simulation run
type SimulatorConfig struct {
	ConfigID string
	Staking  staking.KellyConfig
	// MinEdge drops candidates whose margin over breakeven does not exceed
	// this threshold; they are recorded as zero-stake passthrough rows.
	MinEdge float64
	// ExpectedValue settles unresolved candidates at their expected PnL
	// instead of dropping them. Summaries report Mode "expected" when any
	// row settled this way.
	ExpectedValue bool
}

// Simulator replays a time-ordered candidate list through the stake sizer,
// compounding a single bankroll. Ordering is part of the contract: the
// bankroll at step n depends on step n-1, so candidates are processed in
// input order with no reordering.
type Simulator struct {
	config SimulatorConfig
	sizer  *staking.StakeSizer
	edges  staking.EdgeCalculator
	logger *logrus.Logger
}

// NewSimulator creates a simulator for one immutable configuration
func NewSimulator(cfg SimulatorConfig, logger *logrus.Logger) (*Simulator, error) {
	if err := cfg.Staking.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Simulator{
		config: cfg,
		sizer:  staking.NewStakeSizer(cfg.Staking, logger),
		edges:  staking.NewEdgeCalculator(cfg.Staking.EdgeBoost),
		logger: logger,
	}, nil
}

// Config returns the simulator configuration
func (s *Simulator) Config() SimulatorConfig {
	return s.config
}

// Run folds the candidate list into a final state and summary. There is no
// recoverable failure mode inside the fold: a malformed row is dropped and
// logged rather than aborting the whole run, so one bad record never
// invalidates a backtest. An empty candidate list yields a well-formed empty
// summary with the bankroll untouched.
func (s *Simulator) Run(candidates []models.Candidate) (*State, Summary) {
	state := NewState(s.config.Staking.InitialBankroll)
	expectedMode := false

	for _, cand := range candidates {
		if err := cand.Validate(); err != nil {
			s.logger.WithFields(logrus.Fields{
				"row_index": cand.RowIndex,
				"price":     cand.Price,
			}).WithError(err).Debug("Dropping malformed candidate")
			continue
		}
		if !cand.Settled() && !s.config.ExpectedValue {
			s.logger.WithField("row_index", cand.RowIndex).
				WithError(models.ErrMissingResult).Debug("Dropping unsettled candidate")
			continue
		}

		p := staking.Clamp01(cand.Probability)
		rec := Record{
			ConfigID:       s.config.ConfigID,
			RowIndex:       cand.RowIndex,
			Price:          cand.Price,
			PModel:         p,
			Result:         cand.Outcome,
			BankrollBefore: state.Bankroll,
			BankrollAfter:  state.Bankroll,
		}

		edge, err := s.edges.Calculate(p, cand.Price)
		if err != nil {
			continue
		}
		rec.PUsed = edge.PUsed

		if edge.Raw <= s.config.MinEdge {
			state.Passthrough(rec)
			continue
		}

		sizing := s.sizer.Size(p, cand.Price, state.Bankroll)
		rec.PUsed = sizing.PUsed
		rec.KellyFRaw = sizing.KellyRaw
		rec.Stake = sizing.Stake

		if sizing.Stake <= 0 {
			state.Passthrough(rec)
			continue
		}

		if cand.Settled() {
			if cand.Won() {
				rec.Pnl = sizing.Stake * (cand.Price - 1.0)
			} else {
				rec.Pnl = -sizing.Stake
			}
		} else {
			// Expected-value settlement for rows awaiting results.
			rec.Pnl = sizing.Stake * (sizing.PUsed*(cand.Price-1.0) - (1.0 - sizing.PUsed))
			expectedMode = true
		}
		rec.BankrollAfter = rec.BankrollBefore + rec.Pnl
		state.Settle(rec)
	}

	summary := Summarize(state, s.config)
	if expectedMode {
		summary.Mode = SettleModeExpected
	}
	return state, summary
}
