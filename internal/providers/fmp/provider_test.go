package fmp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/eventstudy/pkg/models"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apikey") != "test-key" {
			w.Write([]byte(`{"Error Message": "Invalid API KEY."}`))
			return
		}
		switch r.URL.Path {
		case "/historical-price-full/AAPL":
			assert.Equal(t, "2024-04-01", r.URL.Query().Get("from"))
			assert.Equal(t, "2024-04-05", r.URL.Query().Get("to"))
			w.Write([]byte(`{"symbol":"AAPL","historical":[
				{"date":"2024-04-03","close":169.65,"adjClose":169.2},
				{"date":"2024-04-02","close":168.84,"adjClose":168.4},
				{"date":"2024-04-01","close":170.03,"adjClose":0}
			]}`))
		case "/historical-price-full/DEAD":
			w.Write([]byte(`{}`))
		case "/historical/earning_calendar/MSFT":
			w.Write([]byte(`[
				{"date":"2026-01-28","symbol":"MSFT","eps":null,"epsEstimated":3.9},
				{"date":"2025-10-29","symbol":"MSFT","eps":4.13,"epsEstimated":3.67},
				{"date":"2025-07-30","symbol":"MSFT","eps":3.65,"epsEstimated":3.37},
				{"date":"2025-04-30","symbol":"MSFT","eps":3.46,"epsEstimated":null},
				{"date":"2025-01-29","symbol":"MSFT","eps":3.23,"epsEstimated":0}
			]`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestPrices(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	p := New("test-key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	got, err := p.Prices(context.Background(), "aapl", start, start.AddDate(0, 0, 4))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, start, got[0].Date)
	assert.Equal(t, 170.03, got[0].Close, "falls back to close without adjClose")
	assert.Equal(t, 168.4, got[1].Close)
	assert.Equal(t, 169.2, got[2].Close)
}

func TestPricesUnknownSymbol(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	p := New("test-key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	_, err := p.Prices(context.Background(), "DEAD", time.Now().AddDate(0, -1, 0), time.Now())
	assert.ErrorIs(t, err, models.ErrDataUnavailable)

	_, err = p.Prices(context.Background(), "NOPE", time.Now().AddDate(0, -1, 0), time.Now())
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
}

func TestAPIKeyErrors(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	_, err := New("", WithBaseURL(srv.URL)).Prices(context.Background(), "AAPL", time.Now(), time.Now())
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = New("wrong", WithBaseURL(srv.URL), WithHTTPClient(srv.Client())).Prices(context.Background(), "AAPL", time.Now(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API KEY")
}

func TestAnnouncements(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	p := New("test-key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	tbl, err := p.Announcements(context.Background(), []string{"msft", "GONE"})
	require.NoError(t, err)

	require.Len(t, tbl.Events, 2)
	assert.Equal(t, time.Date(2025, 7, 30, 0, 0, 0, 0, time.UTC), tbl.Events[0].AnnouncementDate)
	assert.Equal(t, "MSFT", tbl.Events[1].Ticker)
	assert.InDelta(t, (4.13-3.67)/3.67*100, tbl.Events[1].SurprisePct, 1e-9)

	require.Len(t, tbl.Rejected, 3)
	var kinds []models.ErrorKind
	for _, r := range tbl.Rejected {
		kinds = append(kinds, r.Kind)
	}
	assert.Contains(t, kinds, models.KindDataUnavailable, "GONE is a 404")
	assert.Contains(t, kinds, models.KindInputSchema)
}

func TestAnnouncementsSince(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	p := New("test-key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()),
		WithSince(time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)))
	tbl, err := p.Announcements(context.Background(), []string{"MSFT"})
	require.NoError(t, err)
	require.Len(t, tbl.Events, 1)
	assert.Empty(t, tbl.Rejected)
}

func TestAnnouncementsNoKey(t *testing.T) {
	_, err := New("").Announcements(context.Background(), []string{"MSFT"})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestAPIURL(t *testing.T) {
	p := New("k&y")
	assert.Equal(t, DefaultBaseURL+"/x?apikey=k%26y", p.apiURL("/x"))
	assert.True(t, strings.HasSuffix(p.apiURL("/x?from=1"), "&apikey=k%26y"))
}
