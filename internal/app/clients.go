package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/caddie-backend/internal/clients/redis"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
	"github.com/yungbote/caddie-backend/internal/platform/openai"
	"github.com/yungbote/caddie-backend/internal/platform/pinecone"
)

type Clients struct {
	OpenAI  openai.Client
	Vectors pinecone.VectorStore
	Cache   redis.Cache
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	oai, err := openai.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai: %w", err)
	}

	vs, err := resolveVectorStore(ctx, log, cfg.Vector)
	if err != nil {
		return Clients{}, err
	}

	var cache redis.Cache = redis.Noop{}
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		c, err := redis.NewCache(ctx, log, redis.Config{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis cache: %w", err)
		}
		cache = c
	} else {
		log.Warn("REDIS_ADDR not set; course search cache disabled")
	}

	return Clients{OpenAI: oai, Vectors: vs, Cache: cache}, nil
}

func (c Clients) Close() error {
	if c.Cache == nil {
		return nil
	}
	return c.Cache.Close()
}
