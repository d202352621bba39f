package redistx

import (
	"context"

	"github.com/ciricc/btc-address-indexer/internal/pkg/transactionmanager/txmanager"
	"github.com/redis/go-redis/v9"
)

// RedisTransaction wraps a MULTI/EXEC pipeline. Commands are queued until Commit.
type RedisTransaction struct {
	tx redis.Pipeliner
}

func NewRedisTransaction(client redis.Cmdable) *RedisTransaction {
	return &RedisTransaction{tx: client.TxPipeline()}
}

// Commit sends the queued commands inside MULTI/EXEC.
func (r *RedisTransaction) Commit(ctx context.Context) error {
	_, err := r.tx.Exec(ctx)

	return err
}

// Rollback drops the queued commands. Nothing has reached the server yet.
func (r *RedisTransaction) Rollback(_ context.Context) error {
	r.tx.Discard()

	return nil
}

// Transaction returns the underlying Redis transaction (Pipeliner).
func (r *RedisTransaction) Transaction() redis.Pipeliner {
	return r.tx
}

var _ txmanager.Transaction[redis.Pipeliner] = (*RedisTransaction)(nil)
