package shutdown

import (
	"context"
	"sync"

	"github.com/predictpark/predictpark/pkg/logger"
)

// Handler 关闭处理函数
type Handler func(ctx context.Context) error

type entry struct {
	name    string
	handler Handler
}

// Manager 优雅关闭管理器。回调按注册的逆序依次执行（后打开的先关闭）。
type Manager struct {
	callbacks []entry
	mu        sync.Mutex
	once      sync.Once
}

func NewManager() *Manager {
	return &Manager{}
}

// OnShutdown 注册关闭回调
func (m *Manager) OnShutdown(name string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, entry{name: name, handler: handler})
}

// OnClose 注册只返回 error 的 Close 方法
func (m *Manager) OnClose(name string, closeFn func() error) {
	m.OnShutdown(name, func(context.Context) error { return closeFn() })
}

// Shutdown 执行所有回调，只生效一次。ctx 到期后剩余回调不再执行。
// 返回第一个错误。
func (m *Manager) Shutdown(ctx context.Context) error {
	var firstErr error
	m.once.Do(func() {
		m.mu.Lock()
		callbacks := m.callbacks
		m.mu.Unlock()

		if len(callbacks) == 0 {
			logger.Debug("没有注册的关闭回调")
			return
		}
		logger.Debugf("开始优雅关闭，共 %d 个回调", len(callbacks))

		for i := len(callbacks) - 1; i >= 0; i-- {
			cb := callbacks[i]
			if err := ctx.Err(); err != nil {
				logger.Warnf("关闭超时，跳过 %s: %v", cb.name, err)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			if err := cb.handler(ctx); err != nil {
				logger.Warnf("关闭 %s 失败: %v", cb.name, err)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	})
	return firstErr
}
