package app

import (
	"context"
	"errors"

	"langscope-auth/internal/config"
	"langscope-auth/internal/db"
	"langscope-auth/internal/logger"
	"langscope-auth/internal/redis"
	"langscope-auth/internal/session"
)

// Infra holds the optional backing services. Either field may be nil
// when the corresponding setting is empty.
type Infra struct {
	DB    *db.DB
	Redis *redis.Client
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	infra := &Infra{}

	if cfg.DatabaseDSN != "" {
		database, err := db.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		infra.DB = database
		logger.Info("database ready", nil)
	}

	if cfg.RedisAddr != "" {
		redisClient, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			_ = infra.Close()
			return nil, err
		}
		infra.Redis = redisClient
		logger.Info("redis ready", nil)
	}

	return infra, nil
}

// SessionStore returns the Redis store when Redis is configured and an
// in-memory store otherwise.
func (i *Infra) SessionStore() session.Store {
	if i.Redis != nil {
		return session.NewRedisStore(i.Redis.Client)
	}
	logger.Warn("REDIS_ADDR not set, sessions kept in memory", nil)
	return session.NewMemoryStore()
}

func (i *Infra) Close() error {
	var errs []error
	if i.DB != nil {
		errs = append(errs, i.DB.Close())
	}
	if i.Redis != nil {
		errs = append(errs, i.Redis.Close())
	}
	return errors.Join(errs...)
}
