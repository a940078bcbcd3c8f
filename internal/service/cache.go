package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flicky/e-games-api/internal/dto"
)

const productCacheTTL = 60 * time.Second

// productCache is a read-through cache of product responses. A nil client
// disables it, and Redis failures are treated as misses.
type productCache struct {
	client *redis.Client
}

func productKey(id int64) string {
	return "product:" + strconv.FormatInt(id, 10)
}

func (c productCache) get(ctx context.Context, id int64) (*dto.ProductResponse, bool) {
	if c.client == nil {
		return nil, false
	}
	cached, err := c.client.Get(ctx, productKey(id)).Result()
	if err != nil {
		return nil, false
	}
	var resp dto.ProductResponse
	if json.Unmarshal([]byte(cached), &resp) != nil {
		return nil, false
	}
	return &resp, true
}

func (c productCache) set(ctx context.Context, resp *dto.ProductResponse) {
	if c.client == nil {
		return
	}
	if data, err := json.Marshal(resp); err == nil {
		c.client.Set(ctx, productKey(resp.ID), data, productCacheTTL)
	}
}

func (c productCache) invalidate(ctx context.Context, id int64) {
	if c.client != nil {
		c.client.Del(ctx, productKey(id))
	}
}
