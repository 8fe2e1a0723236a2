package deck

import "time"

// Scheduler 延迟执行一次 fn，返回的 cancel 可以重复调用
type Scheduler interface {
	Schedule(d time.Duration, fn func()) (cancel func())
}

// SchedulerFunc 函数适配器
type SchedulerFunc func(d time.Duration, fn func()) func()

func (f SchedulerFunc) Schedule(d time.Duration, fn func()) func() {
	return f(d, fn)
}

// TimerScheduler 基于 time.AfterFunc，fn 在独立 goroutine 中执行
type TimerScheduler struct{}

func (TimerScheduler) Schedule(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
