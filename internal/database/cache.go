package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/omnibar-app/omnibar/backend/internal/models"
	"github.com/omnibar-app/omnibar/backend/pkg/utils"
)

const (
	suggestionCacheKey = "suggest:results:%s"
	userModelCacheKey  = "suggest:usermodel:%s"

	suggestionCacheTTL = 5 * time.Minute
	userModelCacheTTL  = 15 * time.Minute
)

// Cache wraps the Redis client with typed helpers for the suggestion
// pipeline. Suggestion keys are hashed over the user ID, the raw input
// and the page URL: ranked results carry per-user history and
// predictions, so two users never share a cache entry.
type Cache struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewCache(client *redis.Client, logger *logrus.Logger) *Cache {
	return &Cache{client: client, logger: logger}
}

func (c *Cache) suggestionKey(userID, input, pageURL string) string {
	if userID == "" {
		userID = "anonymous"
	}
	return fmt.Sprintf(suggestionCacheKey, utils.MD5Hash(userID+"|"+input+"|"+pageURL))
}

func (c *Cache) CacheQuery(ctx context.Context, userID string, query *models.SmartQuery) {
	data, err := json.Marshal(query)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to marshal query for cache")
		return
	}

	key := c.suggestionKey(userID, query.Input, query.Context.URL)
	if err := c.client.Set(ctx, key, data, suggestionCacheTTL).Err(); err != nil {
		c.logger.WithError(err).Warn("Failed to cache query")
	}
}

func (c *Cache) GetCachedQuery(ctx context.Context, userID, input, pageURL string) (*models.SmartQuery, bool) {
	data, err := c.client.Get(ctx, c.suggestionKey(userID, input, pageURL)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).Warn("Failed to read suggestion cache")
		}
		return nil, false
	}

	var query models.SmartQuery
	if err := json.Unmarshal(data, &query); err != nil {
		c.logger.WithError(err).Warn("Failed to unmarshal cached query")
		return nil, false
	}
	return &query, true
}

func (c *Cache) InvalidateUserModel(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, fmt.Sprintf(userModelCacheKey, userID)).Err(); err != nil && err != redis.Nil {
		c.logger.WithError(err).Warn("Failed to invalidate user model cache")
	}
}

func (c *Cache) CacheUserModel(ctx context.Context, userID string, model *models.UserBehaviorModel) {
	data, err := json.Marshal(model)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to marshal user model for cache")
		return
	}

	if err := c.client.Set(ctx, fmt.Sprintf(userModelCacheKey, userID), data, userModelCacheTTL).Err(); err != nil {
		c.logger.WithError(err).Warn("Failed to cache user model")
	}
}

func (c *Cache) GetCachedUserModel(ctx context.Context, userID string) (*models.UserBehaviorModel, bool) {
	data, err := c.client.Get(ctx, fmt.Sprintf(userModelCacheKey, userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).Warn("Failed to read user model cache")
		}
		return nil, false
	}

	var model models.UserBehaviorModel
	if err := json.Unmarshal(data, &model); err != nil {
		c.logger.WithError(err).Warn("Failed to unmarshal cached user model")
		return nil, false
	}
	return &model, true
}
