package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	AllowedOrigins    string `mapstructure:"ALLOWED_ORIGINS"`
	// TrustedProxies lists the proxy addresses/CIDRs whose forwarding headers are believed.
	TrustedProxies    string `mapstructure:"TRUSTED_PROXIES"`

	// MongoDB read model.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Auth.
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	AdminEmail        string `mapstructure:"ADMIN_EMAIL"`
	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH"`

	// Booking flow.
	DefaultLocale     string `mapstructure:"DEFAULT_LOCALE"`
	SessionTTLMinutes int    `mapstructure:"SESSION_TTL_MINUTES"`
	RequiredProviders int    `mapstructure:"REQUIRED_PROVIDERS"`
	BookingSyncCron   string `mapstructure:"BOOKING_SYNC_CRON"`
	RuntimeHost       string `mapstructure:"RUNTIME_HOST"`

	// APIBaseURL is resolved once in LoadConfig, see ResolveAPIBaseURL.
	APIBaseURL string `mapstructure:"-"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	AppConfig.APIBaseURL = ResolveAPIBaseURL(lookupWith(viper.GetViper()), AppConfig.RuntimeHost)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "saubio")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 1)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")
	v.SetDefault("DEFAULT_LOCALE", "fr")
	v.SetDefault("SESSION_TTL_MINUTES", 30)
	v.SetDefault("REQUIRED_PROVIDERS", 1)
	v.SetDefault("BOOKING_SYNC_CRON", "@every 5m")
	v.SetDefault("RUNTIME_HOST", "")
	v.SetDefault("TRUSTED_PROXIES", "")
}

// lookupWith reads a key from viper first (config file or env) and from the raw
// environment second, so platform variables that were never bound still count.
func lookupWith(v *viper.Viper) func(string) string {
	return func(key string) string {
		if val := strings.TrimSpace(v.GetString(key)); val != "" {
			return val
		}
		return strings.TrimSpace(os.Getenv(key))
	}
}

// Origins splits ALLOWED_ORIGINS into a list.
func (c Config) Origins() []string {
	return splitList(c.AllowedOrigins)
}

// Proxies splits TRUSTED_PROXIES into a list. An empty list trusts no proxy.
func (c Config) Proxies() []string {
	return splitList(c.TrustedProxies)
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
