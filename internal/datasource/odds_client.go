package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/tennis-edge/internal/models"
)

// OddsClientConfig configures the odds API client.
type OddsClientConfig struct {
	BaseURL        string
	APIKey         string
	Regions        []string
	LookaheadHours int
	CacheTTL       time.Duration
	HTTP           HTTPClientConfig
}

// OddsClient fetches head-to-head tennis odds from a bookmaker
// aggregation API. Responses are cached to stay inside request quotas.
type OddsClient struct {
	cfg    OddsClientConfig
	http   *RateLimitedHTTPClient
	cache  *gocache.Cache
	logger *logrus.Logger
}

// NewOddsClient creates an odds API client.
func NewOddsClient(cfg OddsClientConfig, logger *logrus.Logger) *OddsClient {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &OddsClient{
		cfg:    cfg,
		http:   NewRateLimitedHTTPClient(cfg.HTTP, logger),
		cache:  gocache.New(ttl, 2*ttl),
		logger: logger,
	}
}

// apiEvent mirrors the upstream head-to-head odds payload.
type apiEvent struct {
	ID           string    `json:"id"`
	SportKey     string    `json:"sport_key"`
	SportTitle   string    `json:"sport_title"`
	CommenceTime time.Time `json:"commence_time"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	Bookmakers   []struct {
		Key     string `json:"key"`
		Title   string `json:"title"`
		Markets []struct {
			Key      string `json:"key"`
			Outcomes []struct {
				Name  string  `json:"name"`
				Price float64 `json:"price"`
			} `json:"outcomes"`
		} `json:"markets"`
	} `json:"bookmakers"`
}

// FetchUpcoming returns head-to-head odds for tennis matches starting
// within the configured lookahead window. One MatchOdds row per
// event-bookmaker pair.
func (c *OddsClient) FetchUpcoming(ctx context.Context, sportKey string) ([]models.MatchOdds, error) {
	cacheKey := "upcoming:" + sportKey
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.([]models.MatchOdds), nil
	}

	endpoint, err := c.buildURL(sportKey)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetching odds: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("odds API returned %d: %s", resp.StatusCode, string(body))
	}

	var events []apiEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decoding odds response: %w", err)
	}

	odds := c.flatten(events)
	c.cache.Set(cacheKey, odds, gocache.DefaultExpiration)

	c.logger.WithFields(logrus.Fields{
		"sport":  sportKey,
		"events": len(events),
		"rows":   len(odds),
	}).Info("Fetched upcoming odds")

	return odds, nil
}

func (c *OddsClient) buildURL(sportKey string) (string, error) {
	base, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid odds API URL: %w", err)
	}
	base.Path = strings.TrimRight(base.Path, "/") + fmt.Sprintf("/sports/%s/odds", sportKey)

	q := base.Query()
	q.Set("apiKey", c.cfg.APIKey)
	q.Set("markets", "h2h")
	q.Set("oddsFormat", "decimal")
	if len(c.cfg.Regions) > 0 {
		q.Set("regions", strings.Join(c.cfg.Regions, ","))
	}
	if c.cfg.LookaheadHours > 0 {
		until := time.Now().UTC().Add(time.Duration(c.cfg.LookaheadHours) * time.Hour)
		q.Set("commenceTimeTo", until.Format("2006-01-02T15:04:05Z"))
	}
	base.RawQuery = q.Encode()
	return base.String(), nil
}

func (c *OddsClient) flatten(events []apiEvent) []models.MatchOdds {
	var out []models.MatchOdds
	fetchedAt := time.Now().UTC()

	for _, ev := range events {
		for _, bk := range ev.Bookmakers {
			for _, market := range bk.Markets {
				if market.Key != "h2h" || len(market.Outcomes) != 2 {
					continue
				}
				row := models.MatchOdds{
					EventID:    ev.ID,
					Tournament: ev.SportTitle,
					PlayerA:    ev.HomeTeam,
					PlayerB:    ev.AwayTeam,
					StartTime:  ev.CommenceTime,
					Bookmaker:  bk.Key,
					FetchedAt:  fetchedAt,
				}
				for _, outcome := range market.Outcomes {
					switch outcome.Name {
					case ev.HomeTeam:
						row.PriceA = outcome.Price
					case ev.AwayTeam:
						row.PriceB = outcome.Price
					}
				}
				if row.HasValidPrices() {
					out = append(out, row)
				}
			}
		}
	}
	return out
}

// ApplyPriceUpdate patches cached odds rows with a streamed price move, so
// scan cycles inside the cache TTL evaluate current prices instead of the
// fetch-time quotes. Returns the number of rows patched.
func (c *OddsClient) ApplyPriceUpdate(update PriceUpdate) int {
	if update.EventID == "" || update.PriceA <= 1.0 || update.PriceB <= 1.0 {
		return 0
	}
	stamp := update.Timestamp
	if stamp.IsZero() {
		stamp = time.Now().UTC()
	}

	patched := 0
	for key, item := range c.cache.Items() {
		rows, ok := item.Object.([]models.MatchOdds)
		if !ok {
			continue
		}
		changed := false
		for i := range rows {
			if rows[i].EventID != update.EventID {
				continue
			}
			if update.Bookmaker != "" && rows[i].Bookmaker != update.Bookmaker {
				continue
			}
			rows[i].PriceA = update.PriceA
			rows[i].PriceB = update.PriceB
			rows[i].FetchedAt = stamp
			changed = true
			patched++
		}
		if changed {
			c.cache.Set(key, rows, gocache.DefaultExpiration)
		}
	}

	if patched > 0 {
		c.logger.WithFields(logrus.Fields{
			"event_id": update.EventID,
			"rows":     patched,
		}).Debug("Applied streamed price update")
	}
	return patched
}

// InvalidateCache drops all cached responses.
func (c *OddsClient) InvalidateCache() {
	c.cache.Flush()
}

// Close releases the underlying HTTP client.
func (c *OddsClient) Close() error {
	return c.http.Close()
}
