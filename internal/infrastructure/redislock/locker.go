// Package redislock adapta bsm/redislock al puerto custody.Locker.
package redislock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/cashdesk-api/internal/application/custody"
	"github.com/jhoicas/cashdesk-api/pkg/config"
)

var _ custody.Locker = (*Locker)(nil)

// Locker lock por clave con expiración. No reintenta: si la clave está tomada
// devuelve custody.ErrLockNotObtained y el llamador decide.
type Locker struct {
	client *redislock.Client
}

// New envuelve un cliente redis ya conectado.
func New(rdb redis.UniversalClient) *Locker {
	return &Locker{client: redislock.New(rdb)}
}

// Connect abre el cliente y verifica la conexión con un ping.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 20,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Address, err)
	}
	return rdb, nil
}

// Obtain implementa custody.Locker.
func (l *Locker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	lock, err := l.client.Obtain(ctx, "lock:"+key, ttl, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, custody.ErrLockNotObtained
		}
		return nil, fmt.Errorf("redislock: %w", err)
	}
	return func() {
		// Contexto propio: el de la petición puede estar ya cancelado al liberar.
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = lock.Release(ctx)
	}, nil
}
