package shutdown_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/ciricc/btc-address-indexer/internal/pkg/shutdown"
	"github.com/stretchr/testify/require"
)

type closer struct {
	closed atomic.Bool
	err    error
}

func (c *closer) Close() error {
	c.closed.Store(true)

	return c.err
}

func TestShutdowner(t *testing.T) {
	t.Run("closes everything", func(t *testing.T) {
		var (
			c       = &closer{}
			stopped atomic.Bool
		)

		s := shutdown.NewShutdowner(shutdown.FromCloser(c))
		s.Add(shutdown.FromStopper(func() { stopped.Store(true) }))

		require.NoError(t, s.Shutdown(context.Background()))
		require.True(t, c.closed.Load())
		require.True(t, stopped.Load())
	})

	t.Run("returns close error", func(t *testing.T) {
		errClose := errors.New("close failed")

		s := shutdown.NewShutdowner(
			shutdown.FromCloser(&closer{err: errClose}),
			shutdown.FromCloser(&closer{}),
		)

		require.ErrorIs(t, s.Shutdown(context.Background()), errClose)
	})
}
