package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// advanceMsg 延迟任务到期，回到事件循环中执行
type advanceMsg struct {
	id uint64
}

// teaScheduler 实现 deck.Scheduler：任务以 tea.Tick 的形式投递，
// 到期后由 Update 在事件循环 goroutine 上执行，避免并发修改模型。
type teaScheduler struct {
	mu      sync.Mutex
	nextID  uint64
	tasks   map[uint64]func()
	pending []tea.Cmd
}

func newTeaScheduler() *teaScheduler {
	return &teaScheduler{tasks: make(map[uint64]func())}
}

func (s *teaScheduler) Schedule(d time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.tasks[id] = fn
	s.pending = append(s.pending, tea.Tick(d, func(time.Time) tea.Msg { return advanceMsg{id: id} }))
	return func() {
		s.mu.Lock()
		delete(s.tasks, id)
		s.mu.Unlock()
	}
}

// drain 取出尚未交给 bubbletea 的 tick 命令
func (s *teaScheduler) drain() []tea.Cmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	cmds := s.pending
	s.pending = nil
	return cmds
}

// fire 执行未被取消的任务
func (s *teaScheduler) fire(id uint64) bool {
	s.mu.Lock()
	fn, ok := s.tasks[id]
	delete(s.tasks, id)
	s.mu.Unlock()
	if ok {
		fn()
	}
	return ok
}
