package marketfeed

import (
	"context"
	"fmt"

	"github.com/predictpark/predictpark/internal/domain"
)

// Source 市场数据来源
type Source interface {
	ListMarkets(ctx context.Context) ([]domain.Market, error)
}

// StaticSource 内存中的固定市场列表
type StaticSource struct {
	markets []domain.Market
}

// NewStaticSource 创建固定数据源，入库前逐条校验
func NewStaticSource(markets []domain.Market) (*StaticSource, error) {
	for i := range markets {
		if err := markets[i].Validate(); err != nil {
			return nil, fmt.Errorf("fixture market #%d: %w", i, err)
		}
	}
	return &StaticSource{markets: markets}, nil
}

// NewMockSource 接口默认使用的两条 mock 市场
func NewMockSource() *StaticSource {
	src, err := NewStaticSource(MockMarkets())
	if err != nil {
		panic(err)
	}
	return src
}

// ListMarkets 返回副本，调用方可随意过滤
func (s *StaticSource) ListMarkets(ctx context.Context) ([]domain.Market, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.Market, len(s.markets))
	copy(out, s.markets)
	return out, nil
}

// SourceFunc 函数适配器
type SourceFunc func(ctx context.Context) ([]domain.Market, error)

func (fn SourceFunc) ListMarkets(ctx context.Context) ([]domain.Market, error) {
	return fn(ctx)
}

// MarketsResponse GET /api/markets/crypto 的响应信封。
// 客户端解码时成功与失败共用，Error/Message 只在失败时出现。
type MarketsResponse struct {
	Success bool            `json:"success"`
	Data    []domain.Market `json:"data"`
	Total   int             `json:"total"`
	Filters *domain.Filters `json:"filters,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// ErrorResponse 失败信封
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
