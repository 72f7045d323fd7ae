package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oddsPayload = `[{
	"id": "ev1",
	"sport_key": "tennis_atp",
	"sport_title": "ATP French Open",
	"commence_time": "2026-09-01T10:00:00Z",
	"home_team": "Alcaraz",
	"away_team": "Sinner",
	"bookmakers": [{
		"key": "pinnacle",
		"title": "Pinnacle",
		"markets": [{
			"key": "h2h",
			"outcomes": [
				{"name": "Alcaraz", "price": 1.70},
				{"name": "Sinner", "price": 2.30}
			]
		}]
	}]
}]`

func newOddsTestClient(t *testing.T) (*OddsClient, *int32) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(oddsPayload))
	}))
	t.Cleanup(srv.Close)

	client := NewOddsClient(OddsClientConfig{
		BaseURL:  srv.URL,
		APIKey:   "key",
		CacheTTL: time.Minute,
		HTTP:     testClientConfig(),
	}, quietLogger())
	t.Cleanup(func() { client.Close() })

	return client, &calls
}

func TestFetchUpcomingMapsAndCaches(t *testing.T) {
	client, calls := newOddsTestClient(t)

	rows, err := client.FetchUpcoming(context.Background(), "tennis_atp")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "ev1", row.EventID)
	assert.Equal(t, "Alcaraz", row.PlayerA)
	assert.Equal(t, "Sinner", row.PlayerB)
	assert.Equal(t, 1.70, row.PriceA)
	assert.Equal(t, 2.30, row.PriceB)
	assert.Equal(t, "pinnacle", row.Bookmaker)

	// Second fetch within the TTL is served from cache.
	_, err = client.FetchUpcoming(context.Background(), "tennis_atp")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestApplyPriceUpdatePatchesCachedRows(t *testing.T) {
	client, calls := newOddsTestClient(t)

	_, err := client.FetchUpcoming(context.Background(), "tennis_atp")
	require.NoError(t, err)

	patched := client.ApplyPriceUpdate(PriceUpdate{
		EventID:   "ev1",
		Bookmaker: "pinnacle",
		PriceA:    1.65,
		PriceB:    2.40,
		Timestamp: time.Now().UTC(),
	})
	assert.Equal(t, 1, patched)

	rows, err := client.FetchUpcoming(context.Background(), "tennis_atp")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1.65, rows[0].PriceA)
	assert.Equal(t, 2.40, rows[0].PriceB)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestApplyPriceUpdateIgnoresUnmatchedAndUnbettable(t *testing.T) {
	client, _ := newOddsTestClient(t)

	_, err := client.FetchUpcoming(context.Background(), "tennis_atp")
	require.NoError(t, err)

	assert.Zero(t, client.ApplyPriceUpdate(PriceUpdate{EventID: "other", PriceA: 2.0, PriceB: 2.0}))
	assert.Zero(t, client.ApplyPriceUpdate(PriceUpdate{EventID: "ev1", Bookmaker: "betfair", PriceA: 2.0, PriceB: 2.0}))
	assert.Zero(t, client.ApplyPriceUpdate(PriceUpdate{EventID: "ev1", PriceA: 1.0, PriceB: 2.0}))

	rows, err := client.FetchUpcoming(context.Background(), "tennis_atp")
	require.NoError(t, err)
	assert.Equal(t, 1.70, rows[0].PriceA)
}
