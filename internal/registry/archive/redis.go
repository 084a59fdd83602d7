package archive

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"keyledger/internal/lock/models"
	"keyledger/pkg/domain"
	"keyledger/pkg/platform/sentinel"
)

const (
	tombstoneKeyPrefix = "keyledger:tombstone:"
	tombstoneIndexKey  = "keyledger:tombstones"
)

// RedisStore keeps tombstones in Redis: one key per pool plus a sorted index
// scored by decommission time.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

// Put writes the snapshot and its index entry atomically.
func (s *RedisStore) Put(ctx context.Context, snap models.Snapshot) error {
	b, err := Encode(snap)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, tombstoneKeyPrefix+snap.Address.Hex(), b, 0)
	pipe.ZAdd(ctx, tombstoneIndexKey, redis.Z{
		Score:  float64(snap.TakenAt.UnixMilli()),
		Member: snap.Address.Hex(),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("archive pool %s: %w", snap.Address.Hex(), err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, addr domain.Address) (models.Snapshot, error) {
	b, err := s.client.Get(ctx, tombstoneKeyPrefix+addr.Hex()).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Snapshot{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("load tombstone %s: %w", addr.Hex(), err)
	}
	return Decode(b)
}

// List returns archived pools oldest first.
func (s *RedisStore) List(ctx context.Context) ([]domain.Address, error) {
	members, err := s.client.ZRange(ctx, tombstoneIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list tombstones: %w", err)
	}
	out := make([]domain.Address, 0, len(members))
	for _, m := range members {
		addr, err := domain.ParseAddress(m)
		if err != nil {
			return nil, fmt.Errorf("corrupt tombstone index entry %q: %w", m, err)
		}
		out = append(out, addr)
	}
	return out, nil
}
