// Package service orchestrates the live odds scan workflow.
package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/tennis-edge/internal/dataset"
	"github.com/yourusername/tennis-edge/internal/datasource"
	"github.com/yourusername/tennis-edge/internal/metrics"
	"github.com/yourusername/tennis-edge/internal/model"
	"github.com/yourusername/tennis-edge/internal/models"
	"github.com/yourusername/tennis-edge/internal/notify"
	"github.com/yourusername/tennis-edge/internal/repository"
	"github.com/yourusername/tennis-edge/internal/staking"
)

// ScanParams tunes one scan cycle.
type ScanParams struct {
	SportKeys   []string
	MinEdge     float64
	TopPicks    int
	DevigMethod dataset.DevigMethod
	BlendWeight float64
	Bankroll    float64
}

// ScanService fetches live odds, scores both sides of every match and
// produces a sized shortlist of value picks.
type ScanService struct {
	odds     *datasource.OddsClient
	stream   *datasource.StreamClient
	sizer    *staking.StakeSizer
	budget   *staking.DailyBudget
	elo      *model.Elo
	pickRepo repository.PickRepository
	notifier *notify.TelegramNotifier
	logger   *logrus.Logger
}

// NewScanService creates a scan service. stream, pickRepo and notifier may
// be nil when live price pushes, persistence or notifications are disabled.
func NewScanService(
	odds *datasource.OddsClient,
	stream *datasource.StreamClient,
	sizer *staking.StakeSizer,
	budget *staking.DailyBudget,
	elo *model.Elo,
	pickRepo repository.PickRepository,
	notifier *notify.TelegramNotifier,
	logger *logrus.Logger,
) *ScanService {
	return &ScanService{
		odds:     odds,
		stream:   stream,
		sizer:    sizer,
		budget:   budget,
		elo:      elo,
		pickRepo: pickRepo,
		notifier: notifier,
		logger:   logger,
	}
}

// Scan runs one full scan cycle and returns the shortlist.
func (s *ScanService) Scan(ctx context.Context, params ScanParams) ([]models.Pick, error) {
	var rows []models.MatchOdds
	for _, key := range params.SportKeys {
		fetched, err := s.odds.FetchUpcoming(ctx, key)
		if err != nil {
			metrics.RecordScan(err)
			return nil, err
		}
		rows = append(rows, fetched...)
	}
	metrics.RecordScan(nil)

	rows = bestPricePerEvent(rows)
	s.subscribeToStream(rows)

	picks := s.evaluate(rows, params)
	picks = s.shortlist(picks, params)
	s.applyBudget(picks, params.Bankroll)

	metrics.RecordPicks(len(picks))

	if s.pickRepo != nil && len(picks) > 0 {
		if err := s.pickRepo.SaveAll(ctx, picks); err != nil {
			s.logger.WithError(err).Error("Failed to persist picks")
		}
	}

	if s.notifier != nil && len(picks) > 0 {
		if err := s.notifier.SendPicks(ctx, picks, params.Bankroll); err != nil {
			s.logger.WithError(err).Warn("Failed to send pick notification")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"events": len(rows),
		"picks":  len(picks),
	}).Info("Scan cycle completed")

	return picks, nil
}

// evaluate scores both sides of every match and keeps those clearing
// the edge threshold.
func (s *ScanService) evaluate(rows []models.MatchOdds, params ScanParams) []models.Pick {
	edges := staking.NewEdgeCalculator(s.sizer.Config().EdgeBoost)
	now := time.Now().UTC()

	var picks []models.Pick
	for _, row := range rows {
		marketA, marketB, ok := dataset.Devig(row.PriceA, row.PriceB, params.DevigMethod)
		if !ok {
			continue
		}

		probA := marketA
		probB := marketB
		if s.elo != nil && s.elo.Size() > 0 {
			eloA := s.elo.Expected(row.PlayerA, row.PlayerB)
			probA = model.Blend(marketA, eloA, params.BlendWeight)
			probB = model.Blend(marketB, 1.0-eloA, params.BlendWeight)
		}

		for _, side := range []struct {
			side  models.PickSide
			price float64
			prob  float64
		}{
			{models.PickSideA, row.PriceA, probA},
			{models.PickSideB, row.PriceB, probB},
		} {
			edge, err := edges.Calculate(side.prob, side.price)
			if err != nil || edge.Raw <= params.MinEdge {
				continue
			}
			sizing := s.sizer.Size(side.prob, side.price, params.Bankroll)
			if sizing.Stake <= 0 {
				continue
			}
			picks = append(picks, models.Pick{
				ID:          uuid.New(),
				EventDate:   row.StartTime,
				Tournament:  row.Tournament,
				PlayerA:     row.PlayerA,
				PlayerB:     row.PlayerB,
				Side:        side.side,
				Price:       side.price,
				ModelProb:   side.prob,
				ImpliedProb: 1.0 / side.price,
				Edge:        edge.Raw,
				Stake:       sizing.Stake,
				KellyRaw:    sizing.KellyRaw,
				Bookmaker:   row.Bookmaker,
				CreatedAt:   now,
			})
		}
	}
	return picks
}

// shortlist orders picks by edge and truncates to the configured count.
// At most one pick per match survives.
func (s *ScanService) shortlist(picks []models.Pick, params ScanParams) []models.Pick {
	sort.SliceStable(picks, func(i, j int) bool {
		return picks[i].Edge > picks[j].Edge
	})

	seen := make(map[string]bool)
	var out []models.Pick
	for _, p := range picks {
		key := p.EventDate.Format("2006-01-02") + "|" + p.PlayerA + "|" + p.PlayerB
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
		if params.TopPicks > 0 && len(out) >= params.TopPicks {
			break
		}
	}
	return out
}

// subscribeToStream requests live price pushes for every scanned event.
// Streamed moves patch the odds cache, so cycles inside the cache TTL
// evaluate current prices.
func (s *ScanService) subscribeToStream(rows []models.MatchOdds) {
	if s.stream == nil || !s.stream.IsConnected() || len(rows) == 0 {
		return
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.EventID)
	}
	if err := s.stream.Subscribe(ids); err != nil {
		s.logger.WithError(err).Warn("Failed to subscribe to price stream")
	}
}

// applyBudget scales the shortlist's stakes down when their sum exceeds
// the daily budget.
func (s *ScanService) applyBudget(picks []models.Pick, bankroll float64) {
	if s.budget == nil || len(picks) == 0 {
		return
	}
	stakes := make([]float64, len(picks))
	for i := range picks {
		stakes[i] = picks[i].Stake
	}
	scaled, factor := s.budget.Apply(stakes, bankroll)
	if factor < 1.0 {
		s.logger.WithField("factor", factor).Info("Stakes scaled down to daily budget")
	}
	for i := range picks {
		picks[i].Stake = scaled[i]
	}
}

// bestPricePerEvent keeps the bookmaker row with the lowest overround per
// event, so each match is evaluated once at its best available prices.
// First-seen event order is preserved.
func bestPricePerEvent(rows []models.MatchOdds) []models.MatchOdds {
	best := make(map[string]models.MatchOdds)
	var order []string
	for _, row := range rows {
		cur, ok := best[row.EventID]
		if !ok {
			best[row.EventID] = row
			order = append(order, row.EventID)
			continue
		}
		if row.Overround() < cur.Overround() {
			best[row.EventID] = row
		}
	}
	out := make([]models.MatchOdds, 0, len(order))
	for _, id := range order {
		out = append(out, best[id])
	}
	return out
}
