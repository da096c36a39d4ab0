package service

import (
	"context"
	"errors"
	"time"

	"newsroom_api/internal/domain/user/repository"
	"newsroom_api/pkg/cache"
	"newsroom_api/pkg/metrics"
	"newsroom_api/pkg/security"

	"go.uber.org/zap"
)

const identityCacheKeyPrefix = "identity:"

// IdentityResolver 按用户 ID 解析 {id, role, isActive}，可选短时缓存。
// 角色或激活状态变更后由 UserService 主动失效。
type IdentityResolver struct {
	repo  repository.UserRepository
	cache cache.CacheService
	ttl   time.Duration
	log   *zap.Logger
}

// NewIdentityResolver cache 为 nil 或 ttl <= 0 时不缓存
func NewIdentityResolver(repo repository.UserRepository, c cache.CacheService, ttl time.Duration, log *zap.Logger) *IdentityResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &IdentityResolver{repo: repo, cache: c, ttl: ttl, log: log}
}

func (r *IdentityResolver) enabled() bool {
	return r.cache != nil && r.ttl > 0
}

// Resolve 实现 security.IdentityResolver
func (r *IdentityResolver) Resolve(ctx context.Context, userID string) (security.Identity, error) {
	key := identityCacheKeyPrefix + userID

	if r.enabled() {
		var cached security.Identity
		err := r.cache.Get(ctx, key, &cached)
		if err == nil {
			metrics.RecordIdentityCache(true)
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			r.log.Warn("identity cache read failed", zap.String("user_id", userID), zap.Error(err))
		}
		metrics.RecordIdentityCache(false)
	}

	user, err := r.repo.GetByID(ctx, userID)
	if err != nil {
		return security.Identity{}, err
	}
	identity := user.Identity()

	if r.enabled() {
		if err := r.cache.Set(ctx, key, identity, r.ttl); err != nil {
			r.log.Warn("identity cache write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return identity, nil
}

// Invalidate 删除缓存的身份
func (r *IdentityResolver) Invalidate(ctx context.Context, userID string) error {
	if !r.enabled() {
		return nil
	}
	return r.cache.Delete(ctx, identityCacheKeyPrefix+userID)
}
