// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level, and CORS. AppConfig is where everything
// specific to CoachHub lives.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: coachhub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Payment collaborator configuration
	PaymentProvider      string // "none" or "stub"
	PaymentBaseURL       string // Base URL the stub provider builds checkout URLs from
	PaymentReturnURL     string // Where the collaborator sends the buyer after payment
	PaymentConfirmSecret string // Shared secret for the payment confirmation callback

	// Communication platform configuration
	CommsMode string // "none" or "dev"

	// Background worker configuration
	ActivationInterval string // How often the enrollment activation sweep runs (e.g., "1m")
}
