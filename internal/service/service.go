// Package service 跨实体一致性：点赞、菜谱生命周期、注销账号级联
package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"hungrypanda/internal/core/apperr"
	"hungrypanda/internal/core/cache"
	"hungrypanda/internal/domain"
)

// Releaser 图片释放；不存在的引用视为成功
type Releaser interface {
	Release(ctx context.Context, ref string) error
}

func recipeKey(id string) string { return "recipe:" + id }

// releaseAll 事务提交后调用，失败只记日志
func releaseAll(ctx context.Context, r Releaser, log *zap.Logger, refs ...string) {
	if r == nil {
		return
	}
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if err := r.Release(ctx, ref); err != nil {
			imageReleaseFailures.Inc()
			log.Warn("release image failed", zap.String("ref", ref), zap.Error(err))
			continue
		}
		imagesReleased.Inc()
	}
}

// invalidateRecipes 提交后删掉受影响的详情缓存，失败只记日志
func invalidateRecipes(ctx context.Context, c *cache.Cache, log *zap.Logger, ids ...string) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, recipeKey(id))
	}
	if err := c.Invalidate(ctx, keys...); err != nil {
		log.Warn("invalidate recipe cache failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// notFound 仓储 ErrNotFound 转成带文案的 404
func notFound(err error, msg string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return err
}

func nopLogger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
