package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Marco204391/fanta-motogp-sub001/internal/syncerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 5*time.Second)
}

func TestFetchRiders(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/riders", r.URL.Path)
		w.Write([]byte(`[
			{"id": "r1", "name": "Francesco", "surname": "Bagnaia",
			 "championship_wins": 2, "race_wins": 30,
			 "current_career_step": {"number": 63, "type": "Official",
			   "category": {"id": "cat-motogp"}}},
			{"id": "r2", "name": "Test"}
		]`))
	})

	riders, err := client.FetchRiders(context.Background())
	require.NoError(t, err)
	require.Len(t, riders, 2)

	assert.Equal(t, "r1", riders[0].ID)
	assert.Equal(t, "Francesco Bagnaia", riders[0].FullName())
	require.NotNil(t, riders[0].CareerStep)
	assert.Equal(t, "cat-motogp", riders[0].CareerStep.Category.ID)

	assert.Nil(t, riders[1].CareerStep)
}

func TestFetchEvents_QueryParams(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/results/events", r.URL.Path)
		assert.Equal(t, "season-uuid", r.URL.Query().Get("seasonUuid"))
		assert.Equal(t, "true", r.URL.Query().Get("isFinished"))
		w.Write([]byte(`[{"id": "e1", "name": "Qatar GP", "test": false}]`))
	})

	events, err := client.FetchEvents(context.Background(), "season-uuid", true)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "e1", events[0].ID)
	assert.False(t, events[0].IsTest())
}

func TestFetchSessions_QueryParams(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/results/sessions", r.URL.Path)
		assert.Equal(t, "event-uuid", r.URL.Query().Get("eventUuid"))
		assert.Equal(t, "cat-uuid", r.URL.Query().Get("categoryUuid"))
		w.Write([]byte(`[{"id": "s1", "type": "RAC", "date": "2026-05-17T14:00:00+02:00"}]`))
	})

	sessions, err := client.FetchSessions(context.Background(), "event-uuid", "cat-uuid")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].IsType("RAC"))
	assert.False(t, sessions[0].StartTime().IsZero())
}

func TestFetchClassification(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/results/session/s1/classification", r.URL.Path)
		w.Write([]byte(`{"classification": [
			{"position": 1, "rider": {"id": "r1", "full_name": "Marc Marquez"}},
			{"status": "DNF", "rider": {"id": "r2", "full_name": "Jack Miller"}}
		]}`))
	})

	classification, err := client.FetchClassification(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, classification.Classification, 2)

	first := classification.Classification[0]
	require.NotNil(t, first.Position)
	assert.Equal(t, 1, *first.Position)
	assert.Equal(t, "Marc Marquez", *first.Rider.FullName)

	second := classification.Classification[1]
	assert.Nil(t, second.Position)
	assert.Equal(t, "DNF", *second.Status)
}

func TestGet_NotFound(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.FetchClassification(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, syncerr.ErrNotFound))
}

func TestGet_NonRetryableError(t *testing.T) {
	calls := 0
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.FetchSeasons(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, syncerr.ErrUpstreamUnavailable))
	assert.Equal(t, 1, calls, "client errors must not be retried")
}

func TestGet_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"id": "season-1", "year": 2026, "current": true}]`))
	})
	client.retryDelay = 10 * time.Millisecond

	seasons, err := client.FetchSeasons(context.Background())
	require.NoError(t, err)
	require.Len(t, seasons, 1)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2026, *seasons[0].Year)
}

func TestGet_ReleasesRateLimiterBetweenAttempts(t *testing.T) {
	calls := 0
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"id": "season-1", "year": 2026, "current": true}]`))
	})
	client.retryDelay = 10 * time.Millisecond

	// With a single token, a request that held its token across
	// attempts would block its own first retry.
	client.rateLimiter = make(chan struct{}, 1)
	client.rateLimiter <- struct{}{}

	seasons, err := client.FetchSeasons(context.Background())
	require.NoError(t, err)
	require.Len(t, seasons, 1)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 1, len(client.rateLimiter), "token is back after the call")
}
