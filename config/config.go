package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// MongoDB.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisPubSubDB int    `mapstructure:"REDIS_PUBSUB_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Admin authentication.
	AdminToken string `mapstructure:"ADMIN_TOKEN"`
	JWTSecret  string `mapstructure:"JWT_SECRET"`

	// Aggregation.
	SourcePageLimit        int `mapstructure:"SOURCE_PAGE_LIMIT"`
	SourceMaxPages         int `mapstructure:"SOURCE_MAX_PAGES"`
	SourceFetchConcurrency int `mapstructure:"SOURCE_FETCH_CONCURRENCY"`
	AggregationCacheTTLSec int `mapstructure:"AGGREGATION_CACHE_TTL_SEC"`

	// Notifications.
	NotificationPollIntervalSec     int    `mapstructure:"NOTIFICATION_POLL_INTERVAL_SEC"`
	NotificationSubscribeTimeoutSec int    `mapstructure:"NOTIFICATION_SUBSCRIBE_TIMEOUT_SEC"`
	FirebaseCredentialsFile         string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	FirebaseAdminTopic              string `mapstructure:"FIREBASE_ADMIN_TOPIC"`

	// Stripe. A non-empty key switches the payment source to Stripe.
	StripeKey string `mapstructure:"STRIPE_KEY"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "backoffice")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_PUBSUB_DB", 1)
	v.SetDefault("REDIS_QUEUE_DB", 2)
	v.SetDefault("ADMIN_TOKEN", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SOURCE_PAGE_LIMIT", 50)
	v.SetDefault("SOURCE_MAX_PAGES", 20)
	v.SetDefault("SOURCE_FETCH_CONCURRENCY", 4)
	v.SetDefault("AGGREGATION_CACHE_TTL_SEC", 0)
	v.SetDefault("NOTIFICATION_POLL_INTERVAL_SEC", 30)
	v.SetDefault("NOTIFICATION_SUBSCRIBE_TIMEOUT_SEC", 10)
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	v.SetDefault("FIREBASE_ADMIN_TOPIC", "console-admins")
	v.SetDefault("STRIPE_KEY", "")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// PollInterval returns the notification polling interval.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.NotificationPollIntervalSec) * time.Second
}

// SubscribeTimeout returns the deadline for establishing a push subscription.
func (c Config) SubscribeTimeout() time.Duration {
	return time.Duration(c.NotificationSubscribeTimeoutSec) * time.Second
}

// AggregationCacheTTL returns how long merged aggregation results stay cached.
// Zero disables the cache.
func (c Config) AggregationCacheTTL() time.Duration {
	return time.Duration(c.AggregationCacheTTLSec) * time.Second
}
