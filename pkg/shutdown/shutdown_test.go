package shutdown

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShutdown_ReverseOrderOnce(t *testing.T) {
	m := NewManager()
	var order []string
	m.OnShutdown("query", func(context.Context) error { order = append(order, "query"); return nil })
	m.OnClose("journal", func() error { order = append(order, "journal"); return errors.New("disk gone") })
	m.OnShutdown("deck", func(context.Context) error { order = append(order, "deck"); return nil })

	err := m.Shutdown(context.Background())
	assert.EqualError(t, err, "disk gone")
	assert.Equal(t, []string{"deck", "journal", "query"}, order)

	assert.NoError(t, m.Shutdown(context.Background()))
	assert.Len(t, order, 3, "只执行一次")
}

func TestShutdown_ExpiredContext(t *testing.T) {
	m := NewManager()
	called := false
	m.OnShutdown("x", func(context.Context) error { called = true; return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Shutdown(ctx), context.Canceled)
	assert.False(t, called)
}

func TestShutdown_Empty(t *testing.T) {
	assert.NoError(t, NewManager().Shutdown(context.Background()))
}
