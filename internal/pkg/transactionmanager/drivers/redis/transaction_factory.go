package redistx

import (
	"context"

	"github.com/ciricc/btc-address-indexer/internal/pkg/transactionmanager/txmanager"
	"github.com/redis/go-redis/v9"
)

func NewRedisTransactionFactory(client redis.Cmdable) txmanager.TransactionFactory[redis.Pipeliner] {
	return func(ctx context.Context, _ txmanager.Settings) (context.Context, txmanager.Transaction[redis.Pipeliner], error) {
		return ctx, NewRedisTransaction(client), nil
	}
}
