package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/predictpark/predictpark/internal/domain"
	"github.com/predictpark/predictpark/internal/marketfeed"
)

func newRouter(t *testing.T, src marketfeed.Source, rate float64) http.Handler {
	t.Helper()
	s, err := New(Config{Source: src, RateLimitPerSecond: rate})
	require.NoError(t, err)
	return s.Router()
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

type envelope struct {
	Success bool             `json:"success"`
	Data    []map[string]any `json:"data"`
	Total   int              `json:"total"`
	Filters map[string]any   `json:"filters"`
	Error   string           `json:"error"`
	Message string           `json:"message"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestMarkets_Defaults(t *testing.T) {
	h := newRouter(t, marketfeed.NewMockSource(), 0)
	rec := get(h, "/api/markets/crypto")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, 2, env.Total)
	require.Len(t, env.Data, 2)
	assert.Equal(t, 1000.0, env.Filters["minVolume"], "回显应用后的默认值")
	assert.Equal(t, 500.0, env.Filters["minLiquidity"])
	assert.Equal(t, []any{"active"}, env.Filters["status"])
	assert.Equal(t, []any{"crypto"}, env.Filters["type"])

	outcomes := env.Data[0]["outcomes"].([]any)
	assert.Equal(t, "up", outcomes[0].(map[string]any)["type"])
}

func TestMarkets_Filters(t *testing.T) {
	h := newRouter(t, marketfeed.NewMockSource(), 0)

	tests := []struct {
		query string
		total int
		slug  string
	}{
		{"minVolume=999999", 0, ""},
		{"asset=BTC", 1, "btc-above-50k"},
		{"search=ethereum", 1, "eth-above-3k"},
		{"asset=BTC,ETH&search=bitcoin", 1, "btc-above-50k"},
		{"minLiquidity=40000", 2, ""},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := get(h, "/api/markets/crypto?"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code)
			env := decode(t, rec)
			assert.Equal(t, tt.total, env.Total)
			require.Len(t, env.Data, tt.total)
			if tt.slug != "" {
				assert.Equal(t, tt.slug, env.Data[0]["slug"])
			}
		})
	}
}

func TestMarkets_EmptyDataIsArray(t *testing.T) {
	h := newRouter(t, marketfeed.NewMockSource(), 0)
	rec := get(h, "/api/markets/crypto?minVolume=999999")
	assert.Contains(t, rec.Body.String(), `"data":[]`)
	assert.Contains(t, rec.Body.String(), `"total":0`)
}

func TestMarkets_LowLiquidityNotFiltered(t *testing.T) {
	markets := marketfeed.MockMarkets()
	markets[0].Liquidity = 100
	src, err := marketfeed.NewStaticSource(markets)
	require.NoError(t, err)

	rec := get(newRouter(t, src, 0), "/api/markets/crypto")
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, 2, env.Total)
	assert.Equal(t, 500.0, env.Filters["minLiquidity"], "仍然回显")
}

func TestMarkets_NonFiniteNumbersFallBack(t *testing.T) {
	h := newRouter(t, marketfeed.NewMockSource(), 0)
	for _, q := range []string{"minVolume=Infinity", "minVolume=-inf", "minLiquidity=Inf"} {
		t.Run(q, func(t *testing.T) {
			rec := get(h, "/api/markets/crypto?"+q)
			require.Equal(t, http.StatusOK, rec.Code)
			env := decode(t, rec)
			assert.True(t, env.Success)
			assert.Equal(t, 2, env.Total)
			assert.Equal(t, 1000.0, env.Filters["minVolume"])
			assert.Equal(t, 500.0, env.Filters["minLiquidity"])
		})
	}
}

func TestMarkets_SourceError(t *testing.T) {
	src := marketfeed.SourceFunc(func(context.Context) ([]domain.Market, error) {
		return nil, errors.New("upstream timeout")
	})
	rec := get(newRouter(t, src, 0), "/api/markets/crypto")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decode(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "Failed to fetch markets", env.Error)
	assert.Equal(t, "upstream timeout", env.Message)
	assert.NotContains(t, rec.Body.String(), `"data"`)
}

func TestMarkets_PanicRecovered(t *testing.T) {
	src := marketfeed.SourceFunc(func(context.Context) ([]domain.Market, error) {
		panic("fixture corrupted")
	})
	rec := get(newRouter(t, src, 0), "/api/markets/crypto")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "Failed to fetch markets", env.Error)
	assert.Equal(t, "fixture corrupted", env.Message)
}

func TestRateLimit(t *testing.T) {
	h := newRouter(t, marketfeed.NewMockSource(), 1)
	assert.Equal(t, http.StatusOK, get(h, "/api/markets/crypto").Code)

	rec := get(h, "/api/markets/crypto")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "Too many requests", env.Error)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// 健康检查不受限流影响
	assert.Equal(t, http.StatusOK, get(h, "/healthz").Code)
}

func TestHealthzMetricsCORS(t *testing.T) {
	h := newRouter(t, marketfeed.NewMockSource(), 0)
	assert.Equal(t, http.StatusOK, get(h, "/healthz").Code)

	get(h, "/api/markets/crypto")
	rec := get(h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `predictpark_market_requests_total{result="ok"} 1`)

	pre := httptest.NewRecorder()
	h.ServeHTTP(pre, httptest.NewRequest(http.MethodOptions, "/api/markets/crypto", nil))
	assert.Equal(t, http.StatusNoContent, pre.Code)
	assert.Equal(t, "*", pre.Header().Get("Access-Control-Allow-Origin"))
}

func TestNew_RequiresSource(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
