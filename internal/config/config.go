package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage"  validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Cart     CartConfig     `mapstructure:"cart"`
	Checkout CheckoutConfig `mapstructure:"checkout"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// StorageConfig describes where theme template files live.
// BucketName is the object-storage bucket holding per-store template
// trees under the templates/{storeID}/ prefix. CDNBaseURL, when set,
// is used to resolve public URLs for large theme assets.
type StorageConfig struct {
	BucketName string `mapstructure:"bucket_name" validate:"required"`
	CDNBaseURL string `mapstructure:"cdn_base_url"`
}

// CacheConfig tunes the in-memory render cache. Enabled defaults to
// true; disabling it is only intended for local theme development,
// where stale templates get in the way.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// CartConfig contains cart lifecycle settings. ExpiryDays is the
// horizon after which an untouched cart is silently replaced.
type CartConfig struct {
	ExpiryDays int `mapstructure:"expiry_days" validate:"gte=1"`
}

// CheckoutConfig contains checkout session settings. SessionTTL bounds
// how long an open checkout session stays claimable.
type CheckoutConfig struct {
	SessionTTL time.Duration `mapstructure:"session_ttl" validate:"gt=0"`
}
