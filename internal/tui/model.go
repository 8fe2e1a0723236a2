// Package tui 终端滑动客户端：手势解释器 + 卡片队列 + 市场查询 + 登录状态。
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/predictpark/predictpark/internal/deck"
	"github.com/predictpark/predictpark/internal/domain"
	"github.com/predictpark/predictpark/internal/identity"
	"github.com/predictpark/predictpark/internal/journal"
	"github.com/predictpark/predictpark/internal/marketquery"
	"github.com/predictpark/predictpark/internal/metrics"
	"github.com/predictpark/predictpark/internal/swipe"
)

var modelLog = logrus.WithField("module", "tui.model")

const (
	// 终端单元格换算成显示单位，保持 150 阈值的手感
	cellScaleX = 10
	cellScaleY = 20

	tickInterval = time.Second
)

// Recorder 决策落盘
type Recorder interface {
	Record(ctx context.Context, d journal.Decision) error
}

// Options 构造参数
type Options struct {
	// ConfigErr 非空时只显示阻塞的配置错误页
	ConfigErr error
	Identity  identity.Provider

	// Query 为 nil 时使用 Markets 作为固定卡片（dummy 模式）
	Query   *marketquery.Query
	Markets []domain.Market

	Journal         Recorder
	CommitThreshold float64
	AdvanceDelay    time.Duration
	SiteName        string

	// Now 时钟，测试用
	Now func() time.Time
}

type (
	tickMsg        time.Time
	queryUpdateMsg struct{}
	authMsg        struct {
		op  string
		err error
	}
	recordedMsg struct{ err error }
)

// Model bubbletea 模型。所有状态只在事件循环 goroutine 上修改。
type Model struct {
	opts   Options
	sched  *teaScheduler
	deck   *deck.Deck
	interp *swipe.Interpreter

	// advanced 翻页回调产生、等待落盘的决策
	advanced []journal.Decision

	authErr   error
	recordErr error
	busy      bool

	width, height int
	now           time.Time
}

// New 创建模型，deck 的延迟翻页通过 tea 消息回到事件循环
func New(opts Options) *Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SiteName == "" {
		opts.SiteName = "PredictPark"
	}
	m := &Model{
		opts:   opts,
		sched:  newTeaScheduler(),
		interp: swipe.New(opts.CommitThreshold),
		width:  80,
		height: 24,
		now:    opts.Now(),
	}
	initial := opts.Markets
	if opts.Query != nil {
		initial = opts.Query.State().Markets
	}
	m.deck = deck.New(initial, deck.Options{
		AdvanceDelay: opts.AdvanceDelay,
		Scheduler:    m.sched,
		OnAdvance:    m.onAdvance,
	})
	return m
}

// Deck 当前卡片队列
func (m *Model) Deck() *deck.Deck { return m.deck }

// Close 取消待执行的翻页
func (m *Model) Close() error {
	return m.deck.Close()
}

func (m *Model) onAdvance(market domain.Market, dir swipe.Direction) {
	m.advanced = append(m.advanced, journal.NewDecision(market, dir.Side(), m.opts.Now()))
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	if m.opts.Query != nil {
		cmds = append(cmds, waitForUpdate(m.opts.Query.Updates()))
	}
	return tea.Batch(cmds...)
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitForUpdate(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return queryUpdateMsg{}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		if m.opts.Query != nil {
			m.opts.Query.RefetchIfStale()
		}
		return m, tick()

	case queryUpdateMsg:
		st := m.opts.Query.State()
		if !st.Loading {
			m.deck.Replace(st.Markets)
		}
		return m, waitForUpdate(m.opts.Query.Updates())

	case advanceMsg:
		m.sched.fire(msg.id)
		return m, m.flushDecisions()

	case authMsg:
		m.busy = false
		m.authErr = msg.err
		if msg.err != nil {
			modelLog.Warnf("%s failed: %v", msg.op, msg.err)
		}
		return m, nil

	case recordedMsg:
		m.recordErr = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	}
	return m, nil
}

type screen int

const (
	screenConfigError screen = iota
	screenIdentityLoading
	screenSignIn
	screenLoading
	screenAllDone
	screenDeck
)

func (m *Model) screen() screen {
	switch {
	case m.opts.ConfigErr != nil || m.opts.Identity == nil:
		return screenConfigError
	case !m.opts.Identity.Ready():
		return screenIdentityLoading
	case !m.opts.Identity.Authenticated():
		return screenSignIn
	}
	if m.opts.Query != nil && m.opts.Query.State().Loading {
		return screenLoading
	}
	if m.deck.Exhausted() {
		return screenAllDone
	}
	return screenDeck
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" || key == "q" {
		return m, tea.Quit
	}

	switch m.screen() {
	case screenSignIn:
		if key == "i" && !m.busy {
			return m, m.auth("login", m.opts.Identity.Login)
		}
	case screenAllDone:
		switch key {
		case "r":
			m.deck.Reset()
		case "o":
			return m, m.auth("logout", m.opts.Identity.Logout)
		}
	case screenDeck:
		switch key {
		case "left", "a":
			return m, m.commit(swipe.Left)
		case "right", "d":
			return m, m.commit(swipe.Right)
		case "u":
			if m.deck.Undo() {
				metrics.SwipesUndone.Add(1)
			}
		case "r":
			if m.opts.Query != nil {
				m.opts.Query.Refetch()
			}
		case "o":
			return m, m.auth("logout", m.opts.Identity.Logout)
		}
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.screen() != screenDeck {
		return nil
	}
	x, y := float64(msg.X*cellScaleX), float64(msg.Y*cellScaleY)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.interp.Begin(x, y)
		}
	case tea.MouseActionMotion:
		m.interp.Update(x, y)
	case tea.MouseActionRelease:
		if !m.interp.Dragging() {
			return nil
		}
		m.interp.Update(x, y)
		dir, ok := m.interp.End()
		if !ok {
			metrics.SwipesCancelled.Add(1)
			return nil
		}
		return m.commit(dir)
	}
	return nil
}

// commit 把方向交给队列；无论是否接受都清空手势状态
func (m *Model) commit(dir swipe.Direction) tea.Cmd {
	accepted := m.deck.OnCommit(dir)
	m.interp.Acknowledge()
	if !accepted {
		return nil
	}
	metrics.SwipesCommitted.Add(1)
	return tea.Batch(m.sched.drain()...)
}

func (m *Model) auth(op string, fn func(context.Context) error) tea.Cmd {
	m.busy = true
	return func() tea.Msg {
		return authMsg{op: op, err: fn(context.Background())}
	}
}

func (m *Model) flushDecisions() tea.Cmd {
	if len(m.advanced) == 0 {
		return nil
	}
	decisions := m.advanced
	m.advanced = nil
	rec := m.opts.Journal
	if rec == nil {
		return nil
	}
	return func() tea.Msg {
		for _, d := range decisions {
			if err := rec.Record(context.Background(), d); err != nil {
				return recordedMsg{err: err}
			}
			metrics.JournalWrites.Add(1)
		}
		return recordedMsg{}
	}
}
