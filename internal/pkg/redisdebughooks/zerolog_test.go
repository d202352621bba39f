package redisdebughooks_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/ciricc/btc-address-indexer/internal/pkg/redisdebughooks"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestZerologRedisHook(t *testing.T) {
	var buf bytes.Buffer

	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	hook := redisdebughooks.NewZerologRedisHook(&logger)

	process := hook.ProcessHook(func(ctx context.Context, cmd redis.Cmder) error {
		return redis.Nil
	})

	err := process(context.Background(), redis.NewStringCmd(context.Background(), "get", "tip"))
	require.ErrorIs(t, err, redis.Nil)
	require.Contains(t, buf.String(), `"cmd":"get"`)
	require.NotContains(t, buf.String(), `"error"`)

	buf.Reset()

	pipeline := hook.ProcessPipelineHook(func(ctx context.Context, cmds []redis.Cmder) error {
		return nil
	})

	require.NoError(t, pipeline(context.Background(), []redis.Cmder{
		redis.NewIntCmd(context.Background(), "zadd", "k", 0, "m"),
		redis.NewIntCmd(context.Background(), "hset", "h", "f", "v"),
	}))
	require.Contains(t, buf.String(), `"cmds":["zadd","hset"]`)
}
