// Package deck 维护卡片队列与当前位置，把已提交的滑动转换成翻页。
package deck

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/predictpark/predictpark/internal/domain"
	"github.com/predictpark/predictpark/internal/swipe"
)

// DefaultAdvanceDelay 与退出动画时长一致
const DefaultAdvanceDelay = 400 * time.Millisecond

var log = logrus.WithField("module", "deck")

// AdvanceFunc 延迟翻页完成后回调，market 为提交时的当前卡片
type AdvanceFunc func(market domain.Market, dir swipe.Direction)

// Options 构造参数
type Options struct {
	AdvanceDelay time.Duration
	Scheduler    Scheduler
	OnAdvance    AdvanceFunc
}

// Deck 卡片队列。0 <= index <= len(markets)，index == len 表示已看完。
type Deck struct {
	mu sync.Mutex

	markets []domain.Market
	index   int

	pending    swipe.Direction
	pendingGen uint64
	cancel     func()
	closed     bool

	delay     time.Duration
	sched     Scheduler
	onAdvance AdvanceFunc
}

// New 创建队列，markets 会被复制
func New(markets []domain.Market, opts Options) *Deck {
	if opts.AdvanceDelay <= 0 {
		opts.AdvanceDelay = DefaultAdvanceDelay
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TimerScheduler{}
	}
	return &Deck{
		markets:   cloneMarkets(markets),
		delay:     opts.AdvanceDelay,
		sched:     opts.Scheduler,
		onAdvance: opts.OnAdvance,
	}
}

func cloneMarkets(in []domain.Market) []domain.Market {
	out := make([]domain.Market, len(in))
	copy(out, in)
	return out
}

// Current 当前卡片；已看完时返回 false
func (d *Deck) Current() (domain.Market, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.at(d.index)
}

// Next 当前卡片下方的背景卡
func (d *Deck) Next() (domain.Market, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.at(d.index + 1)
}

func (d *Deck) at(i int) (domain.Market, bool) {
	if i < 0 || i >= len(d.markets) {
		return domain.Market{}, false
	}
	return d.markets[i], true
}

// Pending 退出动画期间的方向，无则为 0
func (d *Deck) Pending() swipe.Direction {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Position 返回 (index, total)
func (d *Deck) Position() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.index, len(d.markets)
}

func (d *Deck) Exhausted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.index >= len(d.markets)
}

// OnCommit 记录方向并安排一次延迟翻页。
// 已有待执行的翻页、队列已看完或已关闭时拒绝，返回 false。
func (d *Deck) OnCommit(dir swipe.Direction) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || d.pending != 0 || d.index >= len(d.markets) {
		return false
	}
	market := d.markets[d.index]
	d.pending = dir
	d.pendingGen++
	gen := d.pendingGen
	d.cancel = d.sched.Schedule(d.delay, func() { d.advance(gen, market, dir) })
	log.Debugf("commit %s on %s", dir, market.Slug)
	return true
}

func (d *Deck) advance(gen uint64, market domain.Market, dir swipe.Direction) {
	d.mu.Lock()
	if d.closed || gen != d.pendingGen || d.pending == 0 {
		d.mu.Unlock()
		return
	}
	d.pending = 0
	d.cancel = nil
	if d.index < len(d.markets) {
		d.index++
	}
	cb := d.onAdvance
	d.mu.Unlock()

	if cb != nil {
		cb(market, dir)
	}
}

// cancelPendingLocked 调用方持有锁
func (d *Deck) cancelPendingLocked() bool {
	if d.pending == 0 {
		return false
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.pending = 0
	d.pendingGen++
	return true
}

// Undo 退回上一张。
// 有待执行的翻页时只撤销这次提交：计时器取消，index 不变，OnAdvance 不会被调用，
// 所以撤销的决策不会写入日志。这与“立即 index-1、计时器照常触发”的网页版不同，
// 在第一张卡上撤销也能收回提交。没有待执行翻页时 index > 0 才减一。
func (d *Deck) Undo() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancelPendingLocked() {
		return true
	}
	if d.index == 0 {
		return false
	}
	d.index--
	return true
}

// Reset 回到第一张
func (d *Deck) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelPendingLocked()
	d.index = 0
}

// Replace 刷新后整体替换列表，index 截断到新长度
func (d *Deck) Replace(markets []domain.Market) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.markets = cloneMarkets(markets)
	if d.index > len(d.markets) {
		d.index = len(d.markets)
	}
}

// Close 取消待执行的翻页，此后不再接受提交
func (d *Deck) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelPendingLocked()
	d.closed = true
	return nil
}
