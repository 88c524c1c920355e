// internal/app/bootstrap/guard.go
package bootstrap

import (
	"fmt"

	"github.com/serveease/admin/internal/app/system/auth"
	"github.com/serveease/admin/internal/app/system/i18n"
	"github.com/serveease/admin/internal/app/system/routeguard"
	"go.uber.org/zap"
)

// guardConfig builds the route guard configuration from app config. Rules
// from GuardRulesFile come first, then the GuardBypass patterns. Locales
// default to every loaded catalog.
func guardConfig(appCfg AppConfig, bundle *i18n.Bundle) (routeguard.Config, error) {
	mode, err := routeguard.ParseMode(appCfg.GuardMode)
	if err != nil {
		return routeguard.Config{}, err
	}

	cfg := routeguard.Config{
		Mode:          mode,
		CookieName:    appCfg.GuardCookie,
		LoginPath:     appCfg.GuardLoginPath,
		LandingPath:   appCfg.GuardLandingPath,
		DefaultLocale: appCfg.GuardDefaultLocale,
		Locales:       appCfg.GuardLocales,
		Protected:     appCfg.GuardProtected,
		ReturnParam:   appCfg.GuardReturnParam,
	}
	if len(cfg.Locales) == 0 && bundle != nil {
		cfg.Locales = bundle.Locales()
	}
	if bundle != nil {
		for _, loc := range cfg.Locales {
			if !bundle.Has(loc) {
				return routeguard.Config{}, fmt.Errorf("guard locale %q has no message catalog", loc)
			}
		}
	}

	if appCfg.GuardRulesFile != "" {
		rf, err := routeguard.LoadRulesFile(appCfg.GuardRulesFile)
		if err != nil {
			return routeguard.Config{}, fmt.Errorf("guard rules file: %w", err)
		}
		cfg.Rules = append(cfg.Rules, rf.Rules...)
		cfg.Protected = append(cfg.Protected, rf.Protected...)
	}
	cfg.Rules = append(cfg.Rules, routeguard.BypassRules(appCfg.GuardBypass)...)

	return cfg, nil
}

// buildGuard builds the guard. When the guard cookie is the admin token
// cookie, token presence is whatever LoadSessionAdmin accepted, so a forged
// or expired cookie counts as no token. Any other guard cookie is checked
// for presence only.
func buildGuard(appCfg AppConfig, bundle *i18n.Bundle, logger *zap.Logger) (*routeguard.Guard, error) {
	cfg, err := guardConfig(appCfg, bundle)
	if err != nil {
		return nil, err
	}

	opts := []routeguard.Option{routeguard.WithLogger(logger)}
	token := "session"
	if usesSessionToken(appCfg) {
		opts = append(opts, routeguard.WithTokenFunc(auth.HasToken))
	} else {
		token = "cookie"
		logger.Warn("route guard checks cookie presence only",
			zap.String("cookie", appCfg.GuardCookie),
			zap.String("session_cookie", appCfg.SessionName))
	}

	g, err := routeguard.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	logger.Info("route guard ready",
		zap.Stringer("mode", g.Mode()),
		zap.String("token", token),
		zap.String("cookie", g.Config().CookieName),
		zap.Strings("locales", g.Config().Locales),
		zap.Int("rules", len(cfg.Rules)))
	return g, nil
}

func usesSessionToken(appCfg AppConfig) bool {
	return appCfg.GuardCookie == "" || appCfg.GuardCookie == appCfg.SessionName
}
