package feedclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/predictpark/predictpark/internal/domain"
	"github.com/predictpark/predictpark/internal/marketfeed"
)

func newServer(t *testing.T, h http.HandlerFunc) (*Client, *url.Values) {
	t.Helper()
	var last url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last = r.URL.Query()
		assert.Equal(t, MarketsPath, r.URL.Path)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", time.Second), &last
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestFetchMarkets_Success(t *testing.T) {
	c, last := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		fl := marketfeed.ParseFilters(r.URL.Query())
		data := marketfeed.Apply(marketfeed.MockMarkets(), fl)
		writeJSON(w, http.StatusOK, marketfeed.MarketsResponse{Success: true, Data: data, Total: len(data), Filters: &fl})
	})

	resp, err := c.FetchMarkets(context.Background(), domain.Filters{CryptoAsset: []string{"BTC"}})
	require.NoError(t, err)
	assert.Equal(t, "BTC", last.Get("asset"))
	assert.Empty(t, last.Get("minVolume"), "未设置的条件不发送")
	assert.Empty(t, last.Get("search"))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "btc-above-50k", resp.Data[0].Slug)
	assert.Equal(t, domain.OutcomeUp, resp.Data[0].Up.Type)
	require.NotNil(t, resp.Filters)
	assert.Equal(t, 1000.0, resp.Filters.MinVolume)
}

func TestFetchMarkets_EmptyDataNeverNil(t *testing.T) {
	c, last := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []any{}, "total": 0})
	})
	resp, err := c.FetchMarkets(context.Background(), domain.Filters{MinVolume: 999999, Search: "eth"})
	require.NoError(t, err)
	assert.Equal(t, "999999", last.Get("minVolume"))
	assert.Equal(t, "eth", last.Get("search"))
	assert.NotNil(t, resp.Data)
	assert.Zero(t, resp.Total)
}

func TestFetchMarkets_ServerError(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, marketfeed.ErrorResponse{Error: "Failed to fetch markets", Message: "boom"})
	})
	_, err := c.FetchMarkets(context.Background(), domain.Filters{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "Failed to fetch markets: boom")
}

func TestFetchMarkets_SuccessFalse(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, marketfeed.ErrorResponse{Error: "nope"})
	})
	_, err := c.FetchMarkets(context.Background(), domain.Filters{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestFetchMarkets_MalformedMarket(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"total":1,"data":[{"id":"1","slug":"x","outcomes":[{"type":"up"}]}]}`))
	})
	_, err := c.FetchMarkets(context.Background(), domain.Filters{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "market outcome missing")
}

func TestSourceAdapter(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		data := marketfeed.MockMarkets()
		writeJSON(w, http.StatusOK, marketfeed.MarketsResponse{Success: true, Data: data, Total: len(data)})
	})
	ms, err := c.Source(domain.Filters{}).ListMarkets(context.Background())
	require.NoError(t, err)
	assert.Len(t, ms, 2)
}
