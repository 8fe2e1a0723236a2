// Package journal 把每一次已提交的滑动决策写入 SQLite。
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/predictpark/predictpark/internal/domain"
)

// timeLayout 定宽 UTC 时间，按文本排序即按时间排序
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Decision 一次滑动决策
type Decision struct {
	ID          string             `json:"id"`
	MarketID    string             `json:"marketId"`
	Slug        string             `json:"slug"`
	Asset       string             `json:"asset,omitempty"`
	Side        domain.OutcomeType `json:"side"`
	Price       float64            `json:"price"`
	Probability float64            `json:"probability"`
	DecidedAt   time.Time          `json:"decidedAt"`
}

// NewDecision 以 side 对应结果的价格和概率生成决策
func NewDecision(m domain.Market, side domain.OutcomeType, at time.Time) Decision {
	o := m.Up
	if side.IsDown() {
		o = m.Down
	}
	return Decision{
		ID:          uuid.NewString(),
		MarketID:    m.ID,
		Slug:        m.Slug,
		Asset:       m.CryptoAsset,
		Side:        o.Type,
		Price:       o.Price,
		Probability: o.Probability,
		DecidedAt:   at.UTC(),
	}
}

type Journal struct {
	db *sql.DB
}

// Open 打开（必要时创建）数据库文件并建表
func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, errors.New("journal path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir journal dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) migrate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`
CREATE TABLE IF NOT EXISTS decisions (
  id TEXT PRIMARY KEY,
  market_id TEXT NOT NULL,
  slug TEXT NOT NULL,
  asset TEXT NOT NULL DEFAULT '',
  side TEXT NOT NULL,
  price REAL NOT NULL,
  probability REAL NOT NULL,
  decided_at TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_decided_at ON decisions(decided_at);`,
	}
	for _, stmt := range stmts {
		if _, err := j.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate journal: %w", err)
		}
	}
	return nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record 写入一条决策，ID 为空时自动生成
func (j *Journal) Record(ctx context.Context, d Decision) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.DecidedAt.IsZero() {
		d.DecidedAt = time.Now().UTC()
	}
	_, err := j.db.ExecContext(ctx, `
INSERT INTO decisions (id, market_id, slug, asset, side, price, probability, decided_at)
VALUES (?,?,?,?,?,?,?,?)
`, d.ID, d.MarketID, d.Slug, d.Asset, string(d.Side), d.Price, d.Probability, d.DecidedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("record decision: %w", err)
	}
	return nil
}

// Recent 最近的决策，按时间倒序
func (j *Journal) Recent(ctx context.Context, limit int) ([]Decision, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT id, market_id, slug, asset, side, price, probability, decided_at
FROM decisions
ORDER BY decided_at DESC, rowid DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Decision{}
	for rows.Next() {
		var (
			d         Decision
			side      string
			decidedAt string
		)
		if err := rows.Scan(&d.ID, &d.MarketID, &d.Slug, &d.Asset, &side, &d.Price, &d.Probability, &decidedAt); err != nil {
			return nil, err
		}
		d.Side = domain.OutcomeType(side)
		at, err := time.Parse(timeLayout, decidedAt)
		if err != nil {
			return nil, fmt.Errorf("decision %s: parse decided_at: %w", d.ID, err)
		}
		d.DecidedAt = at
		out = append(out, d)
	}
	return out, rows.Err()
}
