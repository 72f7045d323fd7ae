package backtest

// State tracks the sequential, mutable heart of one simulation run.
// Bankroll at step n depends on bankroll at step n-1, so a State must only
// ever be mutated by a single goroutine; sweeps give each cell its own.
type State struct {
	Bankroll     float64
	PeakBankroll float64
	Ledger       []Record
	EquityCurve  EquityCurve
}

// NewState initializes simulation state at the starting bankroll
func NewState(initialBankroll float64) *State {
	state := &State{
		Bankroll:     initialBankroll,
		PeakBankroll: initialBankroll,
		Ledger:       []Record{},
		EquityCurve:  EquityCurve{},
	}
	state.RecordEquityPoint(-1, initialBankroll)
	return state
}

// Settle applies a settled bet's PnL to the bankroll and appends the record
func (s *State) Settle(rec Record) {
	s.Bankroll += rec.Pnl
	if s.Bankroll > s.PeakBankroll {
		s.PeakBankroll = s.Bankroll
	}
	s.Ledger = append(s.Ledger, rec)
	s.RecordEquityPoint(rec.RowIndex, s.Bankroll)
}

// Passthrough appends a zero-impact record for a candidate that was eligible
// but not staked; the equity curve carries the prior value forward.
func (s *State) Passthrough(rec Record) {
	s.Ledger = append(s.Ledger, rec)
	s.RecordEquityPoint(rec.RowIndex, s.Bankroll)
}

// CurrentDrawdown returns the peak-relative drawdown right now
func (s *State) CurrentDrawdown() float64 {
	if s.PeakBankroll == 0 {
		return 0
	}
	dd := (s.PeakBankroll - s.Bankroll) / s.PeakBankroll
	if dd < 0 {
		return 0
	}
	return dd
}

// RecordEquityPoint appends an equity point to the curve
func (s *State) RecordEquityPoint(rowIndex int, value float64) {
	drawdown := 0.0
	if value < s.PeakBankroll && s.PeakBankroll > 0 {
		drawdown = (s.PeakBankroll - value) / s.PeakBankroll
	}

	s.EquityCurve = append(s.EquityCurve, EquityPoint{
		RowIndex: rowIndex,
		Value:    value,
		Drawdown: drawdown,
	})
}
