package cache

import (
	"context"
	"fmt"
	"time"

	"creator-dashboard/domain/repository"
	"creator-dashboard/infrastructure/configuration"
	"creator-dashboard/infrastructure/logger"

	"github.com/redis/go-redis/v9"
)

const (
	tokenKeyPrefix  = "oauth:youtube:"
	defaultTokenTTL = 30 * time.Minute
)

// NewRedisClient creates a redis client from configuration. Returns nil
// when no redis host is configured; the token cache degrades to
// database-only lookups in that case.
func NewRedisClient() *redis.Client {
	cfg := configuration.C.RedisClient
	if cfg.Host == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Username: cfg.Username,
		Password: cfg.Password,
	})
}

// TokenCache resolves upstream access tokens with a redis read-through
// in front of the oauth_tokens table. Cache entries expire before the
// token does so a stale token is never served from cache.
type TokenCache struct {
	rdb    *redis.Client
	tokens repository.IOAuthToken
}

// NewTokenCache creates a token cache. rdb may be nil.
func NewTokenCache(rdb *redis.Client, tokens repository.IOAuthToken) *TokenCache {
	return &TokenCache{rdb: rdb, tokens: tokens}
}

// AccessToken returns the owner's upstream access token.
func (c *TokenCache) AccessToken(ctx context.Context, userID string) (string, error) {
	key := tokenKeyPrefix + userID
	if c.rdb != nil {
		if v, err := c.rdb.Get(ctx, key).Result(); err == nil && v != "" {
			return v, nil
		} else if err != nil && err != redis.Nil {
			logger.GetLogger().WithField("error", err).Warn("redis token lookup failed")
		}
	}

	tok, err := c.tokens.GetToken(ctx, userID, "youtube")
	if err != nil {
		return "", fmt.Errorf("failed to load oauth token: %w", err)
	}

	ttl := defaultTokenTTL
	if tok.ExpiresAt != nil {
		ttl = time.Until(*tok.ExpiresAt) - time.Minute
	}
	if c.rdb != nil && ttl > 0 {
		if err := c.rdb.Set(ctx, key, tok.AccessToken, ttl).Err(); err != nil {
			logger.GetLogger().WithField("error", err).Warn("redis token store failed")
		}
	}
	return tok.AccessToken, nil
}
