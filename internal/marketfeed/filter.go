package marketfeed

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/predictpark/predictpark/internal/domain"
)

const (
	// DefaultMinVolume 未指定 minVolume 时的 24h 成交量下限
	DefaultMinVolume = 1000
	// DefaultMinLiquidity 未指定 minLiquidity 时的流动性下限
	DefaultMinLiquidity = 500
)

// ParseFilters 从查询参数解析过滤条件
// minVolume/minLiquidity 缺失、为 0、非有限数或无法解析时取默认值。
// asset 去空白后为空（如 ?asset=）等同于不限资产。
func ParseFilters(q url.Values) domain.Filters {
	return domain.Filters{
		CryptoAsset:  parseAssets(q.Get("asset")),
		MinVolume:    parseNumber(q.Get("minVolume"), DefaultMinVolume),
		MinLiquidity: parseNumber(q.Get("minLiquidity"), DefaultMinLiquidity),
		Search:       q.Get("search"),
		Status:       []domain.MarketStatus{domain.MarketStatusActive},
		Type:         []domain.MarketType{domain.MarketTypeCrypto},
	}
}

// Query 把过滤条件编码成查询参数（只写非零值），与 ParseFilters 相对
func Query(fl domain.Filters) url.Values {
	q := url.Values{}
	if len(fl.CryptoAsset) > 0 {
		q.Set("asset", strings.Join(fl.CryptoAsset, ","))
	}
	if fl.MinVolume != 0 {
		q.Set("minVolume", strconv.FormatFloat(fl.MinVolume, 'f', -1, 64))
	}
	if fl.MinLiquidity != 0 {
		q.Set("minLiquidity", strconv.FormatFloat(fl.MinLiquidity, 'f', -1, 64))
	}
	if fl.Search != "" {
		q.Set("search", fl.Search)
	}
	return q
}

func parseAssets(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, a := range strings.Split(raw, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

func parseNumber(raw string, def float64) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// Apply 依次应用搜索、资产白名单、成交量过滤，条件之间为 AND。
// MinLiquidity 只解析并回显，不参与过滤。结果保持输入顺序，从不返回 nil
func Apply(markets []domain.Market, fl domain.Filters) []domain.Market {
	out := make([]domain.Market, 0, len(markets))
	search := strings.ToLower(fl.Search)
	for _, m := range markets {
		if search != "" && !matchesSearch(m, search) {
			continue
		}
		if len(fl.CryptoAsset) > 0 && !containsAsset(fl.CryptoAsset, m.CryptoAsset) {
			continue
		}
		if m.Volume24h < fl.MinVolume {
			continue
		}
		out = append(out, m)
	}
	return out
}

func matchesSearch(m domain.Market, lowered string) bool {
	return strings.Contains(strings.ToLower(m.Title), lowered) ||
		strings.Contains(strings.ToLower(m.Description), lowered) ||
		(m.CryptoAsset != "" && strings.Contains(strings.ToLower(m.CryptoAsset), lowered))
}

func containsAsset(allow []string, asset string) bool {
	for _, a := range allow {
		if a == asset {
			return true
		}
	}
	return false
}
