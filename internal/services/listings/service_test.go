package listings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/errors"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/logger"
)

const searchFixture = `{
	"took": 4,
	"hits": {
		"total": {"value": 2, "relation": "eq"},
		"hits": [
			{"_source": {
				"id": "l-1", "address": "801 K St", "city": "Sacramento", "state": "CA",
				"zipcode": "95814", "price": 625000, "totalUnits": 12,
				"propertyType": "multifamily", "source": "scraper"
			}},
			{"_source": {
				"id": "l-2", "address": "1400 J St", "city": "Sacramento", "state": "CA",
				"zipcode": "95814", "price": 1200000, "totalUnits": 24,
				"propertyType": "multifamily", "source": "scraper"
			}}
		]
	}
}`

// esJSON writes an Elasticsearch-shaped response. The v8 client rejects
// responses without the product header.
func esJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	return NewService(es, "", logger.NewNoOpLogger())
}

func TestSearch_ParsesHits(t *testing.T) {
	var captured map[string]interface{}
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/listings/_search", r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("from"))
		assert.Equal(t, "20", r.URL.Query().Get("size"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		esJSON(w, http.StatusOK, searchFixture)
	})

	res, err := svc.Search(context.Background(), SearchQuery{Zipcode: "95814", MinUnits: 10})
	require.NoError(t, err)

	assert.Equal(t, int64(2), res.TotalHits)
	require.Len(t, res.Listings, 2)
	assert.Equal(t, "801 K St", res.Listings[0].Address)
	assert.Equal(t, 12, res.Listings[0].TotalUnits)
	assert.InDelta(t, 1200000, res.Listings[1].Price, 1e-9)

	// Filters land in the bool query, keyword-less searches match all.
	boolQuery := captured["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Len(t, boolQuery["filter"], 2)
	must := boolQuery["must"].([]interface{})
	require.Len(t, must, 1)
	assert.Contains(t, must[0], "match_all")
}

func TestSearch_KeywordsUseMultiMatch(t *testing.T) {
	var captured map[string]interface{}
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		esJSON(w, http.StatusOK, searchFixture)
	})

	_, err := svc.Search(context.Background(), SearchQuery{Keywords: "K Street"})
	require.NoError(t, err)

	must := captured["query"].(map[string]interface{})["bool"].(map[string]interface{})["must"].([]interface{})
	require.Len(t, must, 1)
	assert.Contains(t, must[0], "multi_match")
}

func TestSearch_ClampsPageSize(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("size"))
		esJSON(w, http.StatusOK, searchFixture)
	})

	_, err := svc.Search(context.Background(), SearchQuery{Size: 5000})
	require.NoError(t, err)
}

func TestSearch_UpstreamFailure(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		esJSON(w, http.StatusInternalServerError, `{"error": "boom"}`)
	})

	_, err := svc.Search(context.Background(), SearchQuery{})
	require.Error(t, err)

	se, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeSearchIndexFailed, se.Code)
}

func TestIndexListings(t *testing.T) {
	var docs atomic.Int32
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "true", r.URL.Query().Get("refresh"))
		docs.Add(1)
		esJSON(w, http.StatusCreated, `{"result": "created"}`)
	})

	err := svc.IndexListings(context.Background(), []Listing{
		{ID: "l-1", Address: "801 K St", City: "Sacramento", Price: 625000, TotalUnits: 12, ScrapedAt: time.Now()},
		{ID: "l-2", Address: "1400 J St", City: "Sacramento", Price: 1200000, TotalUnits: 24, ScrapedAt: time.Now()},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), docs.Load())
}

func TestIndexListings_RequiresID(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for a listing without an id")
	})

	err := svc.IndexListings(context.Background(), []Listing{{Address: "801 K St"}})
	require.Error(t, err)

	se, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidParameter, se.Code)
}

func TestEnsureIndex_CreatesWhenMissing(t *testing.T) {
	var created atomic.Bool
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			esJSON(w, http.StatusNotFound, "")
			return
		}
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/listings", r.URL.Path)
		created.Store(true)
		esJSON(w, http.StatusOK, `{"acknowledged": true}`)
	})

	require.NoError(t, svc.EnsureIndex(context.Background()))
	assert.True(t, created.Load())
}

func TestEnsureIndex_NoopWhenPresent(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		esJSON(w, http.StatusOK, "")
	})

	require.NoError(t, svc.EnsureIndex(context.Background()))
}

func TestDashboardMetrics_AggregatesIndex(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		esJSON(w, http.StatusOK, `{
			"took": 2,
			"hits": {"total": {"value": 36}, "hits": []},
			"aggregations": {
				"total_units": {"value": 15230},
				"markets": {"value": 6}
			}
		}`)
	})

	m := svc.DashboardMetrics(context.Background())
	assert.Equal(t, 15230, m.TotalAffordableUnits)
	assert.Equal(t, 6, m.MarketInsights.TotalMarkets)
	// Figures the index cannot supply keep their defaults.
	assert.InDelta(t, 94.2, m.MarketInsights.AvgOccupancyRate, 1e-9)
}

func TestDashboardMetrics_FallsBackToDefaults(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		esJSON(w, http.StatusServiceUnavailable, `{"error": "down"}`)
	})

	m := svc.DashboardMetrics(context.Background())
	assert.Equal(t, defaultDashboard, m)
}
