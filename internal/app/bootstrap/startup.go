// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/waffle/config"
	"github.com/serveease/admin/internal/app/resources"
	adminstore "github.com/serveease/admin/internal/app/store/admins"
	loginstore "github.com/serveease/admin/internal/app/store/logins"
	"github.com/serveease/admin/internal/app/system/auth"
	"github.com/serveease/admin/internal/app/system/passwords"
	"github.com/serveease/admin/internal/app/system/timeouts"
	"github.com/serveease/admin/internal/app/system/workers"
	"github.com/serveease/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built: shared
// templates, the superadmin account and the background workers.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	if appCfg.SuperAdminEmail != "" {
		sctx, cancel := context.WithTimeout(ctx, timeouts.Short())
		defer cancel()
		if err := ensureSuperAdmin(sctx, deps.MongoDatabase, appCfg.SuperAdminEmail, appCfg.SuperAdminPassword, logger); err != nil {
			return err
		}
	}

	purge, err := workers.NewLoginPurge(loginstore.New(deps.MongoDatabase), logger, appCfg.PurgeSchedule, appCfg.LoginRetention)
	if err != nil {
		return err
	}
	if deps.Background != nil {
		deps.Background.setLoginPurge(purge)
	}
	purge.Start()

	return nil
}

// ensureSuperAdmin promotes the admin with email to an active superadmin,
// creating the account when password is set and no admin exists yet.
func ensureSuperAdmin(ctx context.Context, db *mongo.Database, email, password string, logger *zap.Logger) error {
	store := adminstore.New(db)

	a, err := store.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if a.Role == auth.RoleSuperAdmin && a.IsActive() {
			return nil
		}
		if err := store.Promote(ctx, a.ID); err != nil {
			return fmt.Errorf("promote superadmin: %w", err)
		}
		logger.Info("promoted admin to superadmin", zap.String("email", a.Email))
		return nil
	case !errors.Is(err, adminstore.ErrNotFound):
		return fmt.Errorf("look up superadmin: %w", err)
	}

	if password == "" {
		logger.Warn("superadmin does not exist and no superadmin_password is set; skipping creation",
			zap.String("email", email))
		return nil
	}
	if err := passwords.Validate(password); err != nil {
		return fmt.Errorf("superadmin_password: %w", err)
	}
	hash, err := passwords.Hash(password)
	if err != nil {
		return err
	}

	name := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		name = email[:i]
	}
	created, err := store.Create(ctx, models.Admin{
		FullName:     name,
		Email:        email,
		PasswordHash: hash,
		Role:         auth.RoleSuperAdmin,
		Status:       models.AdminStatusActive,
	})
	if err != nil {
		return fmt.Errorf("create superadmin: %w", err)
	}
	logger.Info("created superadmin", zap.String("email", created.Email))
	return nil
}
