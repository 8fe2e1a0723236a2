// Package marketquery 定时轮询行情服务，向界面提供 loading/error/data 状态。
package marketquery

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/predictpark/predictpark/internal/domain"
	"github.com/predictpark/predictpark/internal/marketfeed"
	"github.com/predictpark/predictpark/internal/metrics"
	"github.com/predictpark/predictpark/pkg/cache"
	"github.com/predictpark/predictpark/pkg/sigchan"
)

const (
	DefaultRefetchInterval = 10 * time.Second
	DefaultStaleTime       = 5 * time.Second

	freshKey = "markets"
)

var log = logrus.WithField("module", "marketquery")

// State 某一时刻的查询结果快照
type State struct {
	Loading   bool
	Err       error
	Markets   []domain.Market
	Total     int
	UpdatedAt time.Time
}

// Options 构造参数
type Options struct {
	RefetchInterval time.Duration
	StaleTime       time.Duration
	// Now 时钟，测试用
	Now func() time.Time
}

// Query 轮询查询。Start 之后由内部 goroutine 拉取，读取方通过 State 获取快照。
type Query struct {
	src  marketfeed.Source
	opts Options

	mu    sync.RWMutex
	state State

	fetchMu sync.Mutex
	fresh   *cache.InMemoryCache[string, struct{}]

	updates *sigchan.Chan
	refetch *sigchan.Chan

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

func New(src marketfeed.Source, opts Options) *Query {
	if opts.RefetchInterval <= 0 {
		opts.RefetchInterval = DefaultRefetchInterval
	}
	if opts.StaleTime <= 0 {
		opts.StaleTime = DefaultStaleTime
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Query{
		src:     src,
		opts:    opts,
		state:   State{Loading: true},
		fresh:   cache.NewInMemoryCache[string, struct{}](opts.StaleTime, cache.WithClock(opts.Now), cache.WithCleanupInterval(0)),
		updates: sigchan.New(1),
		refetch: sigchan.New(1),
		done:    make(chan struct{}),
	}
}

// Start 立即拉取一次，之后每 RefetchInterval 拉取一次，直到 ctx 结束或 Stop
func (q *Query) Start(ctx context.Context) {
	q.startOnce.Do(func() {
		ctx, q.cancel = context.WithCancel(ctx)
		go q.loop(ctx)
	})
}

func (q *Query) loop(ctx context.Context) {
	defer close(q.done)

	q.Fetch(ctx)
	ticker := time.NewTicker(q.opts.RefetchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.Fetch(ctx)
		case <-q.refetch.C():
			q.Fetch(ctx)
		}
	}
}

// Stop 取消轮询并等待 goroutine 退出，可重复调用
func (q *Query) Stop() {
	q.stopOnce.Do(func() {
		q.startOnce.Do(func() { close(q.done) })
		if q.cancel != nil {
			q.cancel()
		}
		<-q.done
		q.fresh.Close()
	})
}

// Fetch 同步拉取一次并更新状态。失败时保留上一次的列表。
func (q *Query) Fetch(ctx context.Context) error {
	q.fetchMu.Lock()
	defer q.fetchMu.Unlock()

	metrics.FeedFetches.Add(1)
	markets, err := q.src.ListMarkets(ctx)
	if err != nil && ctx.Err() != nil {
		// 停止过程中被取消，不算失败
		return err
	}

	q.mu.Lock()
	q.state.Loading = false
	if err != nil {
		q.state.Err = err
	} else {
		if markets == nil {
			markets = []domain.Market{}
		}
		q.state.Err = nil
		q.state.Markets = markets
		q.state.Total = len(markets)
		q.state.UpdatedAt = q.opts.Now()
	}
	q.mu.Unlock()

	if err != nil {
		metrics.FeedErrors.Add(1)
		log.Warnf("fetch markets failed: %v", err)
	} else {
		q.fresh.Set(freshKey, struct{}{}, 0)
		log.Debugf("fetched %d markets", len(markets))
	}
	q.notify()
	return err
}

func (q *Query) notify() {
	q.updates.Emit()
}

// Updates 每次拉取完成后收到一次通知（合并，不阻塞）
func (q *Query) Updates() <-chan struct{} {
	return q.updates.C()
}

// Refetch 请求立即拉取，未 Start 时无效
func (q *Query) Refetch() {
	q.refetch.Emit()
}

// Stale 距离上一次成功拉取是否超过 StaleTime
func (q *Query) Stale() bool {
	_, ok := q.fresh.Get(freshKey)
	return !ok
}

// RefetchIfStale 数据过期时请求拉取，返回是否发起了请求
func (q *Query) RefetchIfStale() bool {
	if !q.Stale() {
		return false
	}
	q.Refetch()
	return true
}

// State 当前快照，Markets 为副本
func (q *Query) State() State {
	q.mu.RLock()
	defer q.mu.RUnlock()
	s := q.state
	if s.Markets != nil {
		s.Markets = make([]domain.Market, len(q.state.Markets))
		copy(s.Markets, q.state.Markets)
	}
	return s
}

// MarketByID 在最近一次成功的结果中查找
func (q *Query) MarketByID(id string) (domain.Market, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	for _, m := range q.state.Markets {
		if m.ID == id {
			return m, true
		}
	}
	return domain.Market{}, false
}
