package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	// TTL bounds how long a presence record survives without being
	// written again. Zero keeps records until SetOffline.
	TTL time.Duration
}

// RedisStore keeps presence in Redis so every gateway instance sees the
// same view.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 200
	}
	if cfg.MinIdleConns <= 0 {
		cfg.MinIdleConns = 20
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{client: client, ttl: cfg.TTL}, nil
}

func (s *RedisStore) SetOnline(ctx context.Context, identity string, rec Record) error {
	if identity == "" {
		return nil
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode presence record: %w", err)
	}
	return s.client.Set(ctx, presenceKey(identity), data, s.ttl).Err()
}

func (s *RedisStore) SetOffline(ctx context.Context, identity string) error {
	if identity == "" {
		return nil
	}
	return s.client.Del(ctx, presenceKey(identity)).Err()
}

func (s *RedisStore) Lookup(ctx context.Context, identity string) (Record, bool, error) {
	if identity == "" {
		return Record{}, false, nil
	}

	val, err := s.client.Get(ctx, presenceKey(identity)).Result()
	if err != nil {
		if err == redis.Nil {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}

	var rec Record
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return Record{}, false, fmt.Errorf("decode presence record: %w", err)
	}
	return rec, true, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// StartHealthCheck probes the connection on a ticker. It only reports;
// the client reconnects on its own.
func (s *RedisStore) StartHealthCheck(ctx context.Context, logger *zap.Logger, interval time.Duration) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case <-ticker.C:
				checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
				err := s.client.Ping(checkCtx).Err()
				cancel()

				if err != nil {
					logger.Warn("redis ping failed",
						zap.String("reason", err.Error()),
					)
				}
			}
		}
	}()
}
