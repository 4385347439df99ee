package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/AngelCh415/revpipe/internal/models"
)

// Registry remembers the latest successful deployment per country.
type Registry interface {
	Record(ctx context.Context, d models.Deployment) error
	Sites(ctx context.Context) (map[string]models.Deployment, error)
}

type MemoryRegistry struct {
	mu    sync.RWMutex
	sites map[string]models.Deployment
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{sites: make(map[string]models.Deployment)}
}

func (r *MemoryRegistry) Record(_ context.Context, d models.Deployment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sites[d.Country] = d
	return nil
}

func (r *MemoryRegistry) Sites(_ context.Context) (map[string]models.Deployment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]models.Deployment, len(r.sites))
	for k, v := range r.sites {
		out[k] = v
	}
	return out, nil
}

const sitesKey = "revpipe:sites"

// RedisRegistry keeps one hash field per country holding the deployment JSON.
type RedisRegistry struct {
	client *redis.Client
	key    string
}

func NewRedisRegistry(client *redis.Client) *RedisRegistry {
	return &RedisRegistry{client: client, key: sitesKey}
}

// ConnectRedis accepts a redis:// URL or a bare host:port.
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (r *RedisRegistry) Record(ctx context.Context, d models.Deployment) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode deployment: %w", err)
	}
	if err := r.client.HSet(ctx, r.key, d.Country, raw).Err(); err != nil {
		return fmt.Errorf("record deployment: %w", err)
	}
	return nil
}

func (r *RedisRegistry) Sites(ctx context.Context) (map[string]models.Deployment, error) {
	values, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("load deployments: %w", err)
	}
	return decodeSites(values)
}

func decodeSites(values map[string]string) (map[string]models.Deployment, error) {
	out := make(map[string]models.Deployment, len(values))
	for country, raw := range values {
		var d models.Deployment
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return nil, fmt.Errorf("decode deployment %s: %w", country, err)
		}
		out[country] = d
	}
	return out, nil
}
