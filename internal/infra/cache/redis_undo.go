package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/rotaflow/field-scheduler/internal/domain/route"
)

type RedisUndoStore struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

func NewRedisUndoStore(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisUndoStore {
	return &RedisUndoStore{rdb: rdb, ttl: ttl, log: log}
}

var _ route.UndoStore = (*RedisUndoStore)(nil)

func undoKey(routeID string) string {
	return fmt.Sprintf("route:undo:%s", routeID)
}

func (s *RedisUndoStore) Save(ctx context.Context, routeID string, snap route.UndoSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal undo snapshot: %w", err)
	}
	return s.rdb.Set(ctx, undoKey(routeID), raw, s.ttl).Err()
}

// Take consome o snapshot: a leitura remove o slot, então um undo só
// pode ser aplicado uma vez.
func (s *RedisUndoStore) Take(ctx context.Context, routeID string) (route.UndoSnapshot, bool, error) {
	raw, err := s.rdb.GetDel(ctx, undoKey(routeID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return route.UndoSnapshot{}, false, nil
		}
		return route.UndoSnapshot{}, false, fmt.Errorf("read undo snapshot: %w", err)
	}

	var snap route.UndoSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return route.UndoSnapshot{}, false, fmt.Errorf("decode undo snapshot: %w", err)
	}
	return snap, true, nil
}

// Clear descarta o snapshot pendente; usado quando a rota muda de um
// jeito que invalida o undo.
func (s *RedisUndoStore) Clear(ctx context.Context, routeID string) {
	if err := s.rdb.Del(ctx, undoKey(routeID)).Err(); err != nil {
		s.log.Warn().Err(err).Str("route_id", routeID).Msg("undo slot clear failed")
	}
}
