package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-emotion-atlas/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestClient_Heatmap(t *testing.T) {
	t.Run("decodes a GeoJSON payload and carries the bearer token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/heatmap", r.URL.Path)
			assert.Equal(t, "excitement", r.URL.Query().Get("emotion"))
			assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"type": "FeatureCollection",
				"features": [{
					"type": "Feature",
					"geometry": {"type": "Point", "coordinates": [-0.09, 51.505]},
					"properties": {"neighborhood": "Central", "score": 0.9, "review_count": 3}
				}]
			}`))
		}))
		defer srv.Close()

		c := New(srv.URL, "session-token", testLogger())
		dataset, err := c.Heatmap(context.Background(), "excitement")

		require.NoError(t, err)
		assert.Equal(t, types.DatasetGeoJSON, dataset.Kind())
		require.Len(t, dataset.FeatureCollection().Features, 1)
	})

	t.Run("decodes the legacy flat payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data": [{"lat": 51.5, "lng": -0.1, "weight": 2}]}`))
		}))
		defer srv.Close()

		c := New(srv.URL, "", testLogger())
		dataset, err := c.Heatmap(context.Background(), "joy")

		require.NoError(t, err)
		assert.Equal(t, types.DatasetLegacy, dataset.Kind())
		require.Len(t, dataset.LegacyPoints(), 1)
		assert.Equal(t, types.GeoPoint{Lat: 51.5, Lng: -0.1, Weight: 2}, dataset.LegacyPoints()[0])
	})

	t.Run("non-2xx status is a network error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()

		c := New(srv.URL, "", testLogger())
		_, err := c.Heatmap(context.Background(), "joy")

		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrNetwork)
	})

	t.Run("unreachable host is a network error", func(t *testing.T) {
		c := New("http://127.0.0.1:1", "", testLogger())
		_, err := c.Heatmap(context.Background(), "joy")

		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrNetwork)
	})
}

func TestClient_Scrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/scrape", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body types.ScrapeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "London", body.City)
		assert.Equal(t, "restaurants", body.Category)

		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := New(srv.URL, "", testLogger())
	assert.NoError(t, c.Scrape(context.Background(), "London", "restaurants"))
}

func TestClient_Reviews(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reviews", r.URL.Path)
		assert.Equal(t, "51.505,-0.09", r.URL.Query().Get("location"))

		_, _ = w.Write([]byte(`{"reviews": [{"id": "r1", "text": "lovely", "emotion_scores": {"joy": 0.9}}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", testLogger())
	reviews, err := c.Reviews(context.Background(), 51.505, -0.09)

	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "r1", reviews[0].ID)
	assert.Equal(t, 0.9, reviews[0].EmotionScores["joy"])
}

func TestClient_SaveItinerary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/itineraries", r.URL.Path)

		var body types.CreateItineraryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"hotspot-1", "hotspot-2"}, body.HotspotIDs)

		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := New(srv.URL, "", testLogger())
	err := c.SaveItinerary(context.Background(), []string{"hotspot-1", "hotspot-2"})
	assert.NoError(t, err)
}

func TestHTTPScraper_Scrape(t *testing.T) {
	t.Run("posts the request and returns the count", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body types.ScrapeRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "London", body.City)
			_, _ = w.Write([]byte(`{"count": 17}`))
		}))
		defer srv.Close()

		s := NewHTTPScraper("tripadvisor", srv.URL, testLogger())
		count, err := s.Scrape(context.Background(), "London", "restaurants")

		require.NoError(t, err)
		assert.Equal(t, 17, count)
		assert.Equal(t, "tripadvisor", s.Name())
	})

	t.Run("non-2xx status is a network error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		s := NewHTTPScraper("reddit", srv.URL, testLogger())
		_, err := s.Scrape(context.Background(), "London", "restaurants")

		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrNetwork)
	})
}

func TestHTTPProcessor_Process(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{"processed_count": 9}`))
	}))
	defer srv.Close()

	p := NewHTTPProcessor(srv.URL, testLogger())
	count, err := p.Process(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 9, count)
}
