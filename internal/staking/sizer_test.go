package staking

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestKellyFractionClosedForm(t *testing.T) {
	// b=1.5, f* = (1.5*0.6 - 0.4) / 1.5 = 1/3
	f := KellyFraction(0.6, 2.5)
	assert.InDelta(t, 1.0/3.0, f, 1e-9)

	// b=2, f* = (2*0.4 - 0.6) / 2 = 0.1
	f = KellyFraction(0.4, 3.0)
	assert.InDelta(t, 0.1, f, 1e-9)
}

func TestKellyFractionNegativeClampedToZero(t *testing.T) {
	// p below breakeven: f* would be negative
	assert.Zero(t, KellyFraction(0.3, 2.5))
}

func TestKellyFractionUnbettablePrice(t *testing.T) {
	assert.Zero(t, KellyFraction(0.6, 1.0))
	assert.Zero(t, KellyFraction(0.6, 0.5))
}

func TestSizeHalfKelly(t *testing.T) {
	cfg := DefaultKellyConfig()
	sizer := NewStakeSizer(cfg, quietLogger())

	sizing := sizer.Size(0.6, 2.5, 1000)
	assert.InDelta(t, 1000*(1.0/3.0)*0.5, sizing.Stake, 1e-6)
	assert.InDelta(t, 1.0/3.0, sizing.KellyRaw, 1e-9)
	assert.InDelta(t, 0.6, sizing.PUsed, 1e-9)
}

func TestSizeNegativeEdgeNoBet(t *testing.T) {
	sizer := NewStakeSizer(DefaultKellyConfig(), quietLogger())

	sizing := sizer.Size(0.3, 2.5, 1000)
	assert.Zero(t, sizing.Stake)
	assert.Zero(t, sizing.KellyRaw)
}

func TestSizeFlatClampedToBankroll(t *testing.T) {
	cfg := DefaultKellyConfig()
	cfg.Mode = StakeModeFlat
	cfg.FlatStake = 50
	sizer := NewStakeSizer(cfg, quietLogger())

	sizing := sizer.Size(0.6, 2.5, 30)
	assert.Equal(t, 30.0, sizing.Stake)
}

func TestSizeNonPositiveBankroll(t *testing.T) {
	sizer := NewStakeSizer(DefaultKellyConfig(), quietLogger())

	assert.Zero(t, sizer.Size(0.6, 2.5, 0).Stake)
	assert.Zero(t, sizer.Size(0.6, 2.5, -100).Stake)
}

func TestSizeCapFraction(t *testing.T) {
	cfg := DefaultKellyConfig()
	cfg.Scale = 1.0
	cfg.CapFraction = 0.05
	sizer := NewStakeSizer(cfg, quietLogger())

	// Full Kelly wants 1/3 of bankroll; cap limits to 5%.
	sizing := sizer.Size(0.6, 2.5, 1000)
	assert.InDelta(t, 50.0, sizing.Stake, 1e-9)
}

func TestSizeNeverExceedsBankroll(t *testing.T) {
	cfg := DefaultKellyConfig()
	cfg.Scale = 5.0
	sizer := NewStakeSizer(cfg, quietLogger())

	sizing := sizer.Size(0.9, 5.0, 100)
	assert.LessOrEqual(t, sizing.Stake, 100.0)
	assert.GreaterOrEqual(t, sizing.Stake, 0.0)
}

func TestEdgeBoostAppliedBeforeSizing(t *testing.T) {
	cfg := DefaultKellyConfig()
	cfg.EdgeBoost = 0.1
	sizer := NewStakeSizer(cfg, quietLogger())

	sizing := sizer.Size(0.5, 2.5, 1000)
	assert.InDelta(t, 0.55, sizing.PUsed, 1e-9)
	assert.InDelta(t, KellyFraction(0.55, 2.5), sizing.KellyRaw, 1e-9)
}

func TestEdgeBoostClampsProbability(t *testing.T) {
	edges := NewEdgeCalculator(0.5)

	edge, err := edges.Calculate(0.9, 2.0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, edge.PUsed)
	assert.InDelta(t, 0.5, edge.Raw, 1e-9)
}

func TestEdgeCalculatorRejectsBadPrice(t *testing.T) {
	edges := NewEdgeCalculator(0)

	_, err := edges.Calculate(0.6, 1.0)
	assert.Error(t, err)
	_, err = edges.Calculate(0.6, 0.0)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultKellyConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Mode = "martingale"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Scale = -0.5
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.InitialBankroll = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.CapFraction = 1.5
	assert.Error(t, bad.Validate())
}

func TestDailyBudgetScaleDown(t *testing.T) {
	budget := NewDailyBudget(0.1, quietLogger())

	// 60+60 = 120 exceeds 10% of 1000; scale factor 100/120.
	scaled, factor := budget.Apply([]float64{60, 60}, 1000)
	assert.InDelta(t, 100.0/120.0, factor, 1e-9)
	assert.InDelta(t, 50.0, scaled[0], 1e-9)
	assert.InDelta(t, 50.0, scaled[1], 1e-9)
}

func TestDailyBudgetNoScalingUnderLimit(t *testing.T) {
	budget := NewDailyBudget(0.2, quietLogger())

	scaled, factor := budget.Apply([]float64{50, 50}, 1000)
	assert.Equal(t, 1.0, factor)
	assert.Equal(t, []float64{50, 50}, scaled)
}
