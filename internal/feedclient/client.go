// Package feedclient 行情服务的 HTTP 客户端
package feedclient

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/predictpark/predictpark/internal/domain"
	"github.com/predictpark/predictpark/internal/marketfeed"
)

const (
	// MarketsPath 市场列表接口
	MarketsPath = "/api/markets/crypto"

	defaultTimeout = 10 * time.Second
	userAgent      = "predictpark-client/1.0"
)

type Client struct {
	client *resty.Client
}

// NewClient host 末尾的 / 会被去掉。不做重试，失败由下一次轮询兜底。
func NewClient(host string, timeout time.Duration) *Client {
	host = strings.TrimSuffix(host, "/")
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := resty.New().
		SetBaseURL(host).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)
	return &Client{client: client}
}

// FetchMarkets 拉取市场列表，只为非空的过滤条件设置查询参数
func (c *Client) FetchMarkets(ctx context.Context, fl domain.Filters) (*marketfeed.MarketsResponse, error) {
	var out marketfeed.MarketsResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(marketfeed.Query(fl)).
		SetResult(&out).
		SetError(&out).
		Get(MarketsPath)
	if err != nil {
		return nil, errors.Wrap(err, "fetch markets")
	}
	if !resp.IsSuccess() {
		return nil, errors.Errorf("fetch markets: http %d: %s", resp.StatusCode(), envelopeMessage(&out, resp))
	}
	if !out.Success {
		return nil, errors.Errorf("fetch markets: %s", envelopeMessage(&out, resp))
	}
	if out.Data == nil {
		out.Data = []domain.Market{}
	}
	return &out, nil
}

// Source 以固定过滤条件适配成 marketfeed.Source
func (c *Client) Source(fl domain.Filters) marketfeed.Source {
	return marketfeed.SourceFunc(func(ctx context.Context) ([]domain.Market, error) {
		resp, err := c.FetchMarkets(ctx, fl)
		if err != nil {
			return nil, err
		}
		return resp.Data, nil
	})
}

func envelopeMessage(env *marketfeed.MarketsResponse, resp *resty.Response) string {
	switch {
	case env.Message != "" && env.Error != "":
		return env.Error + ": " + env.Message
	case env.Message != "":
		return env.Message
	case env.Error != "":
		return env.Error
	}
	if body := strings.TrimSpace(resp.String()); body != "" {
		return body
	}
	return resp.Status()
}
