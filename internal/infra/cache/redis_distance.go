// Package cache guarda estado volátil em Redis: custos de pares de
// pontos e o slot de undo de cada rota.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/rotaflow/field-scheduler/internal/domain/routing"
	"github.com/rotaflow/field-scheduler/internal/geo"
)

const distanceTTL = time.Hour

// RedisDistanceCache memoriza legs já calculados pelo provedor. Falha
// de cache nunca derruba a busca; é só um warn no log.
type RedisDistanceCache struct {
	rdb *redis.Client
	log zerolog.Logger
}

func NewRedisDistanceCache(rdb *redis.Client, log zerolog.Logger) *RedisDistanceCache {
	return &RedisDistanceCache{rdb: rdb, log: log}
}

var _ routing.DistanceCache = (*RedisDistanceCache)(nil)

func pairKey(origin, destination geo.Point) string {
	return fmt.Sprintf("dist:%.6f,%.6f:%.6f,%.6f",
		origin.Lon, origin.Lat, destination.Lon, destination.Lat)
}

func (c *RedisDistanceCache) Get(ctx context.Context, origin, destination geo.Point) (routing.Leg, bool) {
	raw, err := c.rdb.Get(ctx, pairKey(origin, destination)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Msg("distance cache read failed")
		}
		return routing.Leg{}, false
	}

	var leg routing.Leg
	if err := json.Unmarshal([]byte(raw), &leg); err != nil {
		c.log.Warn().Err(err).Msg("distance cache entry corrupted")
		return routing.Leg{}, false
	}
	return leg, true
}

func (c *RedisDistanceCache) Put(ctx context.Context, origin, destination geo.Point, leg routing.Leg) {
	raw, err := json.Marshal(leg)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, pairKey(origin, destination), raw, distanceTTL).Err(); err != nil {
		c.log.Warn().Err(err).Msg("distance cache write failed")
	}
}
