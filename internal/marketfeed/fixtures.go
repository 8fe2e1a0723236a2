package marketfeed

import (
	"time"

	"github.com/predictpark/predictpark/internal/domain"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func f(v float64) *float64 { return &v }

// binaryCrypto 构造一个加密资产二元市场；up/down 的 price 与 probability 相同
func binaryCrypto(id, slug, asset, title, desc string, upProb, upVol, downVol, vol24h, volTotal, liq float64, created, image string) domain.Market {
	downProb := roundCents(1 - upProb)
	return domain.Market{
		ID:          id,
		Slug:        slug,
		Title:       title,
		Description: desc,
		Type:        domain.MarketTypeCrypto,
		Status:      domain.MarketStatusActive,
		Up: domain.Outcome{
			ID: id + "-yes", Name: "Yes", Type: domain.OutcomeUp,
			Probability: upProb, Price: upProb, Volume24h: upVol, LastTradePrice: upProb,
			BestBid: f(roundCents(upProb - 0.01)), BestAsk: f(roundCents(upProb + 0.01)),
		},
		Down: domain.Outcome{
			ID: id + "-no", Name: "No", Type: domain.OutcomeDown,
			Probability: downProb, Price: downProb, Volume24h: downVol, LastTradePrice: downProb,
			BestBid: f(roundCents(downProb - 0.01)), BestAsk: f(roundCents(downProb + 0.01)),
		},
		Volume24h:   vol24h,
		VolumeTotal: volTotal,
		Liquidity:   liq,
		CreatedAt:   ts(created),
		ClosesAt:    ts("2024-12-31T23:59:00Z"),
		Tags:        []string{"crypto", tagFor(asset), "price"},
		CryptoAsset: asset,
		ImageURL:    image,
	}
}

func roundCents(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

func tagFor(asset string) string {
	switch asset {
	case "BTC":
		return "bitcoin"
	case "ETH":
		return "ethereum"
	case "SOL":
		return "solana"
	case "MATIC":
		return "polygon"
	case "AVAX":
		return "avalanche"
	}
	return "altcoin"
}

// MockMarkets 接口返回的两条固定市场（BTC / ETH）
func MockMarkets() []domain.Market {
	return []domain.Market{
		binaryCrypto("1", "btc-above-50k", "BTC",
			"Will Bitcoin be above $50,000 on Dec 31?",
			"Resolves to YES if BTC price is above $50,000 at 23:59 UTC on December 31, 2024",
			0.65, 12500, 8500, 21000, 156000, 45000,
			"2024-01-15T10:00:00Z", "https://assets.polymarket.com/btc-icon.png"),
		binaryCrypto("2", "eth-above-3k", "ETH",
			"Will Ethereum be above $3,000 on Dec 31?",
			"Resolves to YES if ETH price is above $3,000 at 23:59 UTC on December 31, 2024",
			0.58, 9800, 7200, 17000, 98000, 32000,
			"2024-01-20T14:00:00Z", "https://assets.polymarket.com/eth-icon.png"),
	}
}

// DummyDeck 客户端离线模式使用的五张卡片
func DummyDeck() []domain.Market {
	return []domain.Market{
		binaryCrypto("1", "btc-50k-dec", "BTC",
			"Will Bitcoin hit $50,000?",
			"Bitcoin (BTC) will trade above $50,000 by December 31, 2024 at 11:59 PM ET",
			0.68, 125000, 85000, 210000, 1560000, 450000,
			"2024-01-15T10:00:00Z", "https://cryptologos.cc/logos/bitcoin-btc-logo.png"),
		binaryCrypto("2", "eth-4k-dec", "ETH",
			"Will Ethereum reach $4,000?",
			"Ethereum (ETH) will trade above $4,000 by December 31, 2024 at 11:59 PM ET",
			0.55, 98000, 72000, 170000, 980000, 320000,
			"2024-01-20T14:00:00Z", "https://cryptologos.cc/logos/ethereum-eth-logo.png"),
		binaryCrypto("3", "sol-100-dec", "SOL",
			"Will Solana hit $100?",
			"Solana (SOL) will trade above $100 by December 31, 2024 at 11:59 PM ET",
			0.72, 156000, 94000, 250000, 1820000, 580000,
			"2024-02-01T09:00:00Z", "https://cryptologos.cc/logos/solana-sol-logo.png"),
		binaryCrypto("4", "matic-1-dec", "MATIC",
			"Will Polygon reach $1?",
			"Polygon (MATIC) will trade above $1 by December 31, 2024 at 11:59 PM ET",
			0.48, 67000, 71000, 138000, 645000, 210000,
			"2024-02-05T11:00:00Z", "https://cryptologos.cc/logos/polygon-matic-logo.png"),
		binaryCrypto("5", "avax-50-dec", "AVAX",
			"Will Avalanche hit $50?",
			"Avalanche (AVAX) will trade above $50 by December 31, 2024 at 11:59 PM ET",
			0.61, 89000, 58000, 147000, 782000, 298000,
			"2024-02-10T13:00:00Z", "https://cryptologos.cc/logos/avalanche-avax-logo.png"),
	}
}
