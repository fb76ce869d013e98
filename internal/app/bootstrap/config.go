// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for CoachHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: COACHHUB_MONGO_URI, COACHHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "coachhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "coachhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Payment collaborator
	{Name: "payment_provider", Default: "none", Desc: "Payment provider: 'none' or 'stub'"},
	{Name: "payment_base_url", Default: "http://localhost:3000", Desc: "Base URL the stub provider builds checkout URLs from"},
	{Name: "payment_return_url", Default: "http://localhost:3000/enrolled", Desc: "Where the buyer lands after paying"},
	{Name: "payment_confirm_secret", Default: "", Desc: "Shared secret for the payment confirmation callback"},

	// Communication platform
	{Name: "comms_mode", Default: "none", Desc: "Channel provisioning: 'none' or 'dev'"},

	// Background workers
	{Name: "activation_interval", Default: "1m", Desc: "How often the enrollment activation sweep runs (e.g., 1m, 30s)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, COACHHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "COACHHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),

		PaymentProvider:      appValues.String("payment_provider"),
		PaymentBaseURL:       appValues.String("payment_base_url"),
		PaymentReturnURL:     appValues.String("payment_return_url"),
		PaymentConfirmSecret: appValues.String("payment_confirm_secret"),

		CommsMode: appValues.String("comms_mode"),

		ActivationInterval: appValues.String("activation_interval"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// CoachHub validates the MongoDB URI format to catch configuration errors
// early, before attempting to connect, and checks that the few enumerated
// settings hold values the app knows.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.PaymentProvider {
	case "none", "stub":
	default:
		return fmt.Errorf("unknown payment_provider %q (want 'none' or 'stub')", appCfg.PaymentProvider)
	}
	if appCfg.PaymentProvider != "none" && appCfg.PaymentConfirmSecret == "" {
		return fmt.Errorf("payment_confirm_secret is required when payment_provider is enabled")
	}

	switch appCfg.CommsMode {
	case "none", "dev":
	default:
		return fmt.Errorf("unknown comms_mode %q (want 'none' or 'dev')", appCfg.CommsMode)
	}

	if _, err := time.ParseDuration(appCfg.ActivationInterval); err != nil {
		return fmt.Errorf("invalid activation_interval %q: %w", appCfg.ActivationInterval, err)
	}

	return nil
}
