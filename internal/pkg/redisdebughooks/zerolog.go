package redisdebughooks

import (
	"context"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ZerologRedisHook writes every command sent to redis to the debug log.
type ZerologRedisHook struct {
	logger *zerolog.Logger
}

func NewZerologRedisHook(logger *zerolog.Logger) *ZerologRedisHook {
	l := logger.With().Str("component", "redis").Logger()

	return &ZerologRedisHook{
		logger: &l,
	}
}

// DialHook implements redis.Hook.
func (z *ZerologRedisHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			z.logger.Debug().Err(err).Str("addr", addr).Msg("dial failed")
		}

		return conn, err
	}
}

// ProcessHook implements redis.Hook.
func (z *ZerologRedisHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)

		z.logger.Debug().
			Str("cmd", cmd.Name()).
			Int("args", len(cmd.Args())).
			Dur("took", time.Since(start)).
			Err(commandError(err)).
			Msg("redis command")

		return err
	}
}

// ProcessPipelineHook implements redis.Hook.
func (z *ZerologRedisHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)

		names := make([]string, 0, len(cmds))
		for _, cmd := range cmds {
			names = append(names, cmd.Name())
		}

		z.logger.Debug().
			Strs("cmds", names).
			Dur("took", time.Since(start)).
			Err(commandError(err)).
			Msg("redis pipeline")

		return err
	}
}

// redis.Nil is a miss, not a failure
func commandError(err error) error {
	if err == redis.Nil {
		return nil
	}

	return err
}

var _ redis.Hook = (*ZerologRedisHook)(nil)
