// Package sigchan 合并式通知：多次 Emit 在被消费前只保留一次。
package sigchan

// Chan 只传递“发生过”，不携带数据
type Chan struct {
	c chan struct{}
}

// New bufferSize 通常为 1，保证至多一个未消费的通知
func New(bufferSize int) *Chan {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Chan{c: make(chan struct{}, bufferSize)}
}

// Emit 非阻塞发送，缓冲已满时丢弃
func (c *Chan) Emit() {
	select {
	case c.c <- struct{}{}:
	default:
	}
}

// Pending 是否有未消费的通知
func (c *Chan) Pending() bool {
	return len(c.c) > 0
}

// C 用于 select
func (c *Chan) C() <-chan struct{} {
	return c.c
}
