package repositories

import (
	"context"

	"shipshape/internal/core/ports"
	"shipshape/internal/infrastructure/repositories/memory"
	redisrepo "shipshape/internal/infrastructure/repositories/redis"
	"shipshape/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Factory creates repositories, preferring Redis when configured and
// reachable, falling back to the in-memory implementations otherwise.
type Factory struct {
	useRedis    bool
	redisClient *redis.Client
	logger      *zap.SugaredLogger
}

func NewFactory(cfg *config.Config, logger *zap.SugaredLogger) (*Factory, error) {
	f := &Factory{
		useRedis: cfg.Redis.Enabled,
		logger:   logger,
	}

	if cfg.Redis.Enabled {
		client, err := redisrepo.NewClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			logger,
		)
		if err != nil {
			logger.Warnw("redis unavailable, falling back to memory repositories", "error", err)
			f.useRedis = false
		} else {
			f.redisClient = client
			logger.Info("using redis repositories")
		}
	}
	if !f.useRedis {
		logger.Info("using memory repositories")
	}

	return f, nil
}

func (f *Factory) SurveyRepository() ports.SurveyRepository {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewSurveyRepository(f.redisClient)
	}
	return memory.NewSurveyRepository()
}

func (f *Factory) SubscriptionRepository() ports.SubscriptionRepository {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewSubscriptionRepository(f.redisClient)
	}
	return memory.NewSubscriptionRepository()
}

// UserRepository is memory-only: account storage belongs to the identity
// provider in production deployments.
func (f *Factory) UserRepository() ports.UserRepository {
	return memory.NewUserRepository()
}

func (f *Factory) Close() error {
	if f.redisClient != nil {
		return f.redisClient.Close()
	}
	return nil
}

func (f *Factory) HealthCheck(ctx context.Context) error {
	if f.useRedis && f.redisClient != nil {
		return f.redisClient.Ping(ctx).Err()
	}
	return nil
}
