package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	// ErrMissingOutcome 市场缺少 up 或 down 结果
	ErrMissingOutcome = errors.New("market outcome missing")
	// ErrInvalidMarket 市场数据不合法
	ErrInvalidMarket = errors.New("invalid market")
)

// MarketType 市场类型
type MarketType string

const (
	MarketTypeCrypto MarketType = "crypto"
	MarketTypeBinary MarketType = "binary"
)

// MarketStatus 市场状态
type MarketStatus string

const (
	MarketStatusActive   MarketStatus = "active"
	MarketStatusClosed   MarketStatus = "closed"
	MarketStatusResolved MarketStatus = "resolved"
	MarketStatusPaused   MarketStatus = "paused"
)

// OutcomeType 结果类型（yes/no 视为 up/down 的别名）
type OutcomeType string

const (
	OutcomeUp   OutcomeType = "up"
	OutcomeDown OutcomeType = "down"
	OutcomeYes  OutcomeType = "yes"
	OutcomeNo   OutcomeType = "no"
)

// IsUp 是否属于 UP 一侧
func (t OutcomeType) IsUp() bool {
	return t == OutcomeUp || t == OutcomeYes
}

// IsDown 是否属于 DOWN 一侧
func (t OutcomeType) IsDown() bool {
	return t == OutcomeDown || t == OutcomeNo
}

// Outcome 二元市场的一侧
type Outcome struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Type           OutcomeType `json:"type"`
	Probability    float64     `json:"probability"` // 0-1
	Price          float64     `json:"price"`       // 当前报价，与 probability 独立存储
	Volume24h      float64     `json:"volume24h"`
	LastTradePrice float64     `json:"lastTradePrice"`
	BestBid        *float64    `json:"bestBid,omitempty"`
	BestAsk        *float64    `json:"bestAsk,omitempty"`
}

// Spread 买一卖一价差，任一侧缺失时返回 false
func (o Outcome) Spread() (float64, bool) {
	if o.BestBid == nil || o.BestAsk == nil {
		return 0, false
	}
	return *o.BestAsk - *o.BestBid, true
}

// Market 市场领域模型
// Up/Down 为固定的两个槽位，在反序列化时校验，不做按下标的兜底
type Market struct {
	ID          string       `json:"id"`
	Slug        string       `json:"slug"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Type        MarketType   `json:"type"`
	Status      MarketStatus `json:"status"`

	Up   Outcome `json:"-"`
	Down Outcome `json:"-"`

	Volume24h   float64 `json:"volume24h"`
	VolumeTotal float64 `json:"volumeTotal"`
	Liquidity   float64 `json:"liquidity"`

	CreatedAt  time.Time  `json:"createdAt"`
	ClosesAt   time.Time  `json:"closesAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`

	Tags        []string `json:"tags"`
	CryptoAsset string   `json:"cryptoAsset,omitempty"` // 例如 "BTC", "ETH"
	ImageURL    string   `json:"imageUrl,omitempty"`
}

// Outcome 根据一侧取结果
func (m *Market) Outcome(t OutcomeType) Outcome {
	if t.IsDown() {
		return m.Down
	}
	return m.Up
}

// ProbabilitySkew 返回 |up+down-1|，仅用于展示和日志，不作为校验条件
func (m *Market) ProbabilitySkew() float64 {
	return math.Abs(m.Up.Probability + m.Down.Probability - 1)
}

// Validate 校验市场数据形状
func (m *Market) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("%w: id is empty", ErrInvalidMarket)
	}
	if strings.TrimSpace(m.Slug) == "" {
		return fmt.Errorf("%w: market %s slug is empty", ErrInvalidMarket, m.ID)
	}
	if !m.Up.Type.IsUp() {
		return fmt.Errorf("%w: market %s has no up outcome", ErrMissingOutcome, m.ID)
	}
	if !m.Down.Type.IsDown() {
		return fmt.Errorf("%w: market %s has no down outcome", ErrMissingOutcome, m.ID)
	}
	for _, o := range []Outcome{m.Up, m.Down} {
		if !inUnitRange(o.Probability) || !inUnitRange(o.Price) {
			return fmt.Errorf("%w: market %s outcome %s probability/price out of [0,1]", ErrInvalidMarket, m.ID, o.Type)
		}
	}
	if m.Volume24h < 0 || m.VolumeTotal < 0 || m.Liquidity < 0 {
		return fmt.Errorf("%w: market %s has negative aggregates", ErrInvalidMarket, m.ID)
	}
	if !m.CreatedAt.IsZero() && !m.ClosesAt.IsZero() && m.ClosesAt.Before(m.CreatedAt) {
		return fmt.Errorf("%w: market %s closes before it was created", ErrInvalidMarket, m.ID)
	}
	return nil
}

func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}

// marketAlias 避免 MarshalJSON 递归
type marketAlias Market

type marketWire struct {
	*marketAlias
	Outcomes []Outcome `json:"outcomes"`
}

// MarshalJSON 以 outcomes 数组的形式输出（up 在前）
func (m Market) MarshalJSON() ([]byte, error) {
	return json.Marshal(marketWire{
		marketAlias: (*marketAlias)(&m),
		Outcomes:    []Outcome{m.Up, m.Down},
	})
}

// UnmarshalJSON 按 type 查找 up/down，两者缺一即失败
func (m *Market) UnmarshalJSON(data []byte) error {
	wire := marketWire{marketAlias: (*marketAlias)(m)}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	var up, down *Outcome
	for i := range wire.Outcomes {
		o := wire.Outcomes[i]
		switch {
		case o.Type.IsUp() && up == nil:
			up = &o
		case o.Type.IsDown() && down == nil:
			down = &o
		}
	}
	if up == nil {
		return fmt.Errorf("%w: market %s has no up outcome", ErrMissingOutcome, m.ID)
	}
	if down == nil {
		return fmt.Errorf("%w: market %s has no down outcome", ErrMissingOutcome, m.ID)
	}
	m.Up = *up
	m.Down = *down
	return nil
}

// Filters 市场查询过滤条件（字段名与 HTTP 回显保持一致）
type Filters struct {
	CryptoAsset  []string       `json:"cryptoAsset,omitempty"`
	MinVolume    float64        `json:"minVolume"`
	MinLiquidity float64        `json:"minLiquidity"`
	Search       string         `json:"search,omitempty"`
	Status       []MarketStatus `json:"status,omitempty"`
	Type         []MarketType   `json:"type,omitempty"`
}
