package cursor

import (
	"context"
	"strconv"

	"github.com/akonduru/reviewrag/internal/config"
	"github.com/akonduru/reviewrag/internal/data/redisStore"
	"github.com/akonduru/reviewrag/pkg/logx"
)

const cursorKey = "sync:cursor"

type RedisCursorStore struct {
	store  *redisStore.Store
	logger *logx.Logger
}

// GetRedisCursorStore returns nil when redis is unreachable so the caller
// can fall back to the in-memory store.
func GetRedisCursorStore(ctx context.Context) *RedisCursorStore {
	store := redisStore.GetRedisStore(ctx, config.RedisCursorStore)
	if store == nil {
		return nil
	}
	return &RedisCursorStore{
		store:  store,
		logger: logx.NewLogger("CursorStore"),
	}
}

func (s *RedisCursorStore) Load(ctx context.Context) (int64, error) {
	val, err := s.store.Get(ctx, cursorKey)
	if s.store.IsNil(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	marker, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		s.logger.Error("corrupt cursor value, treating as unset", "value", val)
		return 0, nil
	}
	return marker, nil
}

func (s *RedisCursorStore) Save(ctx context.Context, marker int64) error {
	return s.store.Set(ctx, cursorKey, strconv.FormatInt(marker, 10), 0)
}

func (s *RedisCursorStore) Reset(ctx context.Context) error {
	return s.store.Del(ctx, cursorKey)
}

func TestCursorStore(store *redisStore.Store) *RedisCursorStore {
	return &RedisCursorStore{
		store:  store,
		logger: logx.NewLogger("test cursor"),
	}
}
