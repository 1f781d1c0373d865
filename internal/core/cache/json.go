package cache

import (
	"context"
	"encoding/json"
	"time"
)

// GetOrLoadJSON 读缓存，未命中回源后写入；NotFound 等错误不缓存
func GetOrLoadJSON[T any](
	c *Cache,
	ctx context.Context,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (*T, error),
) (*T, error) {
	if !c.enabled() {
		return load(ctx)
	}
	var loaded *T
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, e := load(ctx)
		if e != nil {
			return nil, e
		}
		loaded = v
		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}
	if loaded != nil {
		return loaded, nil
	}
	out := new(T)
	if e := json.Unmarshal(b, out); e != nil {
		// 结构变了导致旧值解不开：删掉重新回源
		_ = c.Invalidate(ctx, key)
		return load(ctx)
	}
	return out, nil
}
