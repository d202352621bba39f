package rediskvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/keyvaluestore"
	"github.com/ciricc/btc-address-indexer/internal/pkg/transactionmanager/txmanager"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps keys in a sorted set (all scores are zero, so members are
// ordered lexicographically) and values in a hash under the same field name.
type RedisStore struct {
	redis     redis.Cmdable
	keysKey   string
	valuesKey string
	pageSize  int64
}

func New(redis redis.Cmdable, opts ...StoreOption) (*RedisStore, error) {
	options := &StoreOptions{
		Namespace: "kv",
		PageSize:  512,
	}

	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	if options.PageSize <= 0 {
		return nil, ErrInvalidPageSize
	}

	return &RedisStore{
		redis:     redis,
		keysKey:   options.Namespace + ":keys",
		valuesKey: options.Namespace + ":values",
		pageSize:  options.PageSize,
	}, nil
}

// Delete implements keyvaluestore.StoreWithTxManager.
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.redis.ZRem(ctx, r.keysKey, key).Err(); err != nil {
		return fmt.Errorf("zrem error: %w", err)
	}

	if err := r.redis.HDel(ctx, r.valuesKey, key).Err(); err != nil {
		return fmt.Errorf("hdel error: %w", err)
	}

	return nil
}

// Get implements keyvaluestore.StoreWithTxManager.
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := r.redis.HGet(ctx, r.valuesKey, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("get element error: %w", err)
	}

	return []byte(res), true, nil
}

// Put implements keyvaluestore.StoreWithTxManager.
func (r *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	if err := r.redis.ZAdd(ctx, r.keysKey, redis.Z{Score: 0, Member: key}).Err(); err != nil {
		return fmt.Errorf("zadd error: %w", err)
	}

	if err := r.redis.HSet(ctx, r.valuesKey, key, string(value)).Err(); err != nil {
		return fmt.Errorf("hset error: %w", err)
	}

	return nil
}

// Range pages through the sorted set with ZRANGEBYLEX, fetching values of each page with HMGET.
func (r *RedisStore) Range(ctx context.Context, start, end string) keyvaluestore.Iterator {
	return &rangeIterator{
		store: r,
		ctx:   ctx,
		min:   "[" + start,
		max:   "(" + end,
		pos:   -1,
	}
}

// WithTx implements keyvaluestore.StoreWithTxManager.
func (r *RedisStore) WithTx(tx txmanager.Transaction[redis.Pipeliner]) (keyvaluestore.StoreWithTxManager[redis.Pipeliner], error) {
	return &RedisStore{
		redis:     tx.Transaction(),
		keysKey:   r.keysKey,
		valuesKey: r.valuesKey,
		pageSize:  r.pageSize,
	}, nil
}

type rangeIterator struct {
	store *RedisStore
	ctx   context.Context

	min, max string

	keys   []string
	values [][]byte
	pos    int

	done     bool
	released bool
	err      error
}

func (it *rangeIterator) Next() bool {
	if it.released || it.err != nil {
		return false
	}

	it.pos++
	if it.pos < len(it.keys) {
		return true
	}

	if it.done {
		return false
	}

	if err := it.fetchPage(); err != nil {
		it.err = err

		return false
	}

	it.pos = 0

	return len(it.keys) > 0
}

func (it *rangeIterator) fetchPage() error {
	for {
		if err := it.ctx.Err(); err != nil {
			return err
		}

		keys, err := it.store.redis.ZRangeByLex(it.ctx, it.store.keysKey, &redis.ZRangeBy{
			Min:   it.min,
			Max:   it.max,
			Count: it.store.pageSize,
		}).Result()
		if err != nil {
			return fmt.Errorf("zrangebylex error: %w", err)
		}

		if int64(len(keys)) < it.store.pageSize {
			it.done = true
		}

		it.keys = it.keys[:0]
		it.values = it.values[:0]

		if len(keys) == 0 {
			return nil
		}

		it.min = "(" + keys[len(keys)-1]

		values, err := it.store.redis.HMGet(it.ctx, it.store.valuesKey, keys...).Result()
		if err != nil {
			return fmt.Errorf("hmget error: %w", err)
		}

		for i, key := range keys {
			// key removed between ZRANGEBYLEX and HMGET
			if values[i] == nil {
				continue
			}

			value, ok := values[i].(string)
			if !ok {
				return fmt.Errorf("%w: %T", ErrUnexpectedValueType, values[i])
			}

			it.keys = append(it.keys, key)
			it.values = append(it.values, []byte(value))
		}

		if len(it.keys) > 0 || it.done {
			return nil
		}
	}
}

func (it *rangeIterator) Key() string {
	if it.pos < 0 || it.pos >= len(it.keys) {
		return ""
	}

	return it.keys[it.pos]
}

func (it *rangeIterator) Value() []byte {
	if it.pos < 0 || it.pos >= len(it.values) {
		return nil
	}

	return it.values[it.pos]
}

func (it *rangeIterator) Error() error {
	return it.err
}

func (it *rangeIterator) Release() {
	it.released = true
	it.keys = nil
	it.values = nil
}

var _ keyvaluestore.StoreWithTxManager[redis.Pipeliner] = (*RedisStore)(nil)
