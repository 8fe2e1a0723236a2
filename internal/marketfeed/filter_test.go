package marketfeed

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/predictpark/predictpark/internal/domain"
)

func ids(ms []domain.Market) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ID)
	}
	return out
}

func TestParseFilters_Defaults(t *testing.T) {
	fl := ParseFilters(url.Values{})
	assert.Nil(t, fl.CryptoAsset)
	assert.Equal(t, float64(DefaultMinVolume), fl.MinVolume)
	assert.Equal(t, float64(DefaultMinLiquidity), fl.MinLiquidity)
	assert.Empty(t, fl.Search)
	assert.Equal(t, []domain.MarketStatus{domain.MarketStatusActive}, fl.Status)
	assert.Equal(t, []domain.MarketType{domain.MarketTypeCrypto}, fl.Type)
}

func TestParseFilters_Numbers(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"", 1000},
		{"0", 1000},
		{"abc", 1000},
		{"NaN", 1000},
		{" 2500 ", 2500},
		{"999999", 999999},
		{"-5", -5},
		{"12.5", 12.5},
		{"Infinity", 1000},
		{"-inf", 1000},
		{"+Inf", 1000},
	}
	for _, tt := range tests {
		fl := ParseFilters(url.Values{"minVolume": {tt.raw}})
		assert.Equal(t, tt.want, fl.MinVolume, "minVolume=%q", tt.raw)
	}
}

func TestParseFilters_Assets(t *testing.T) {
	fl := ParseFilters(url.Values{"asset": {"BTC, ETH,,"}})
	assert.Equal(t, []string{"BTC", "ETH"}, fl.CryptoAsset)

	fl = ParseFilters(url.Values{"asset": {","}})
	assert.Nil(t, fl.CryptoAsset)

	// ?asset= 不限资产，而不是匹配空符号
	fl = ParseFilters(url.Values{"asset": {""}})
	assert.Nil(t, fl.CryptoAsset)
	assert.Equal(t, []string{"1", "2"}, ids(Apply(MockMarkets(), fl)))
}

func TestQuery_RoundTrip(t *testing.T) {
	in := domain.Filters{CryptoAsset: []string{"BTC", "SOL"}, MinVolume: 2000, MinLiquidity: 700, Search: "moon"}
	out := ParseFilters(Query(in))
	assert.Equal(t, in.CryptoAsset, out.CryptoAsset)
	assert.Equal(t, in.MinVolume, out.MinVolume)
	assert.Equal(t, in.MinLiquidity, out.MinLiquidity)
	assert.Equal(t, in.Search, out.Search)

	assert.Empty(t, Query(domain.Filters{}).Encode())
}

func TestApply_Fixture(t *testing.T) {
	all := MockMarkets()

	tests := []struct {
		name  string
		query url.Values
		want  []string
	}{
		{"defaults keep both", url.Values{}, []string{"1", "2"}},
		{"min volume excludes all", url.Values{"minVolume": {"999999"}}, []string{}},
		{"asset BTC", url.Values{"asset": {"BTC"}}, []string{"1"}},
		{"asset list", url.Values{"asset": {"ETH,SOL"}}, []string{"2"}},
		{"asset is exact", url.Values{"asset": {"btc"}}, []string{}},
		{"search description case-insensitive", url.Values{"search": {"ethereum"}}, []string{"2"}},
		{"search asset symbol", url.Values{"search": {"btc"}}, []string{"1"}},
		{"search and asset conjunctive", url.Values{"search": {"ethereum"}, "asset": {"BTC"}}, []string{}},
		{"volume boundary inclusive", url.Values{"minVolume": {"17000"}}, []string{"1", "2"}},
		{"liquidity is not a filter", url.Values{"minLiquidity": {"40000"}}, []string{"1", "2"}},
		{"empty asset means any", url.Values{"asset": {""}}, []string{"1", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(all, ParseFilters(tt.query))
			require.NotNil(t, got)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestApply_LowLiquidityKept(t *testing.T) {
	all := MockMarkets()
	all[0].Liquidity = 100

	fl := ParseFilters(url.Values{})
	assert.Equal(t, float64(DefaultMinLiquidity), fl.MinLiquidity)
	assert.Equal(t, []string{"1", "2"}, ids(Apply(all, fl)))
}

func TestMockSource(t *testing.T) {
	src := NewMockSource()
	ms, err := src.ListMarkets(context.Background())
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, "BTC", ms[0].CryptoAsset)
	assert.InDelta(t, 0.35, ms[0].Down.Probability, 1e-9)

	// 返回副本，修改不影响数据源
	ms[0].Title = "changed"
	again, _ := src.ListMarkets(context.Background())
	assert.NotEqual(t, "changed", again[0].Title)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.ListMarkets(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDummyDeckValid(t *testing.T) {
	_, err := NewStaticSource(DummyDeck())
	require.NoError(t, err)
	assert.Len(t, DummyDeck(), 5)

	bad := MockMarkets()
	bad[1].Down.Type = ""
	_, err = NewStaticSource(bad)
	assert.ErrorIs(t, err, domain.ErrMissingOutcome)
}
