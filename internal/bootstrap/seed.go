package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/launchbase/accountd/internal/config"
	"github.com/launchbase/accountd/internal/domain"
	"github.com/launchbase/accountd/internal/password"
	"github.com/launchbase/accountd/internal/repository"
)

// EnsureSeedUser creates an initial account from ADMIN_EMAIL/ADMIN_PASSWORD
// at startup when configured. Missing config skips seeding; an existing
// account is left alone.
func EnsureSeedUser(lc fx.Lifecycle, cfg config.Config, users repository.UserRepository, node *snowflake.Node, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return ensureSeedUser(ctx, cfg, users, node, logger)
		},
	})
}

func ensureSeedUser(ctx context.Context, cfg config.Config, users repository.UserRepository, node *snowflake.Node, logger *zap.Logger) error {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" || strings.TrimSpace(cfg.AdminPassword) == "" {
		return nil
	}

	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("seed lookup user: %w", err)
	}

	hashed, err := password.Hash(strings.TrimSpace(cfg.AdminPassword))
	if err != nil {
		return fmt.Errorf("seed hash password: %w", err)
	}

	created, err := users.Create(ctx, domain.User{
		ID:           node.Generate().Int64(),
		Email:        email,
		PasswordHash: hashed,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil
		}
		return fmt.Errorf("seed create user: %w", err)
	}

	if logger != nil {
		logger.Info("seed user created",
			zap.String("email", created.Email),
			zap.Int64("user_id", created.ID),
		)
	}
	return nil
}
