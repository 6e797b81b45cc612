package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/edseed/internal/retry"
	"github.com/vvka-141/edseed/pkg/edseed"
)

// TokenBasedConnector authenticates with a short-lived cloud token used as
// the PostgreSQL password (AWS IAM, Azure Entra ID). A fresh token is
// acquired for every attempt.
type TokenBasedConnector struct {
	config        *edseed.ConnectionConfig
	tokenProvider TokenProvider
	retryExecutor *retry.Executor
	providerName  string
	logger        edseed.Logger
}

// NewTokenBasedConnector creates a connector that uses a TokenProvider for authentication.
// providerName is used in log and error messages (e.g., "AWS IAM", "Azure").
func NewTokenBasedConnector(config *edseed.ConnectionConfig, tokenProvider TokenProvider, providerName string, logger edseed.Logger) *TokenBasedConnector {
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		retryExecutor: retry.NewDefaultExecutor().WithOnRetry(logRetry(logger, providerName+" connect")),
		providerName:  providerName,
		logger:        logger,
	}
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		token, expiresOn, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
		}
		c.logger.Verbose("acquired token from %s", c.tokenProvider)

		if remaining := time.Until(expiresOn); remaining < 5*time.Minute {
			c.logger.Warn("%s token expires in %v", c.providerName, remaining.Round(time.Second))
		}

		withToken := *c.config
		withToken.Password = token

		p, err := openPool(ctx, BuildConnectionString(&withToken), c.config, c.logger)
		if err != nil {
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}
