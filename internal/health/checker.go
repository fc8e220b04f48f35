package health

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/omnibar-app/omnibar/backend/internal/database"
	"github.com/omnibar-app/omnibar/backend/internal/deepseek"
	"github.com/omnibar-app/omnibar/backend/internal/models"
)

const checkTimeout = 3 * time.Second

// Checker probes the service's dependencies. DeepSeek being down
// degrades the status but the service stays "ok" for suggestion-only
// traffic as long as the stores respond.
type Checker struct {
	manager  *database.Manager
	deepseek *deepseek.Client
	logger   *logrus.Logger
}

func NewChecker(manager *database.Manager, client *deepseek.Client, logger *logrus.Logger) *Checker {
	return &Checker{
		manager:  manager,
		deepseek: client,
		logger:   logger,
	}
}

func (c *Checker) CheckPostgreSQL(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := c.manager.PingDatabase(ctx); err != nil {
		c.logger.WithError(err).Warn("PostgreSQL health check failed")
		return "unhealthy"
	}
	return "healthy"
}

func (c *Checker) CheckRedis(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := c.manager.PingRedis(ctx); err != nil {
		c.logger.WithError(err).Warn("Redis health check failed")
		return "unhealthy"
	}
	return "healthy"
}

func (c *Checker) CheckDeepSeek(ctx context.Context) string {
	if c.deepseek == nil {
		return "disabled"
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := c.deepseek.Ping(ctx); err != nil {
		c.logger.WithError(err).Warn("DeepSeek health check failed")
		return "unhealthy"
	}
	return "healthy"
}

func (c *Checker) Overall(ctx context.Context) models.HealthResponse {
	services := map[string]string{
		"postgresql": c.CheckPostgreSQL(ctx),
		"redis":      c.CheckRedis(ctx),
		"deepseek":   c.CheckDeepSeek(ctx),
	}

	status := "ok"
	if services["postgresql"] == "unhealthy" || services["redis"] == "unhealthy" {
		status = "degraded"
	}

	return models.HealthResponse{
		Status:    status,
		Service:   "omnibar-backend",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  services,
	}
}
