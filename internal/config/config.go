package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort           string
	PublicURL          string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64

	BackendURL          string
	BackendTimeout      time.Duration
	BreakerFailures     uint32
	BreakerOpenDuration time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DBPath string

	KafkaBrokers []string
	KafkaTopic   string

	PaymentKey       string
	PaymentScriptURL string
	PaymentTheme     string
	Currency         string
	StoreName        string
	MaxConcurrent    int

	ShopperIdleTimeout time.Duration
}

// Load reads configuration from the environment, after loading a .env file if
// one is present in the working directory.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		PublicURL:          getEnv("PUBLIC_URL", "http://localhost:8080"),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxRequestBodySize: 1 << 20, // 1MB

		BackendURL:          getEnv("BACKEND_URL", "http://localhost:5000"),
		BackendTimeout:      getEnvDuration("BACKEND_TIMEOUT", 10*time.Second),
		BreakerFailures:     uint32(getEnvInt("BREAKER_FAILURES", 5)),
		BreakerOpenDuration: getEnvDuration("BREAKER_OPEN_DURATION", 30*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		DBPath: getEnv("DB_PATH", "./storefront.db"),

		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "checkout-events"),

		PaymentKey:       getEnv("PAYMENT_KEY", ""),
		PaymentScriptURL: getEnv("PAYMENT_SCRIPT_URL", "https://checkout.razorpay.com/v1/checkout.js"),
		PaymentTheme:     getEnv("PAYMENT_THEME", "#F37254"),
		Currency:         getEnv("CURRENCY", "INR"),
		StoreName:        getEnv("STORE_NAME", "Prasad Store"),
		MaxConcurrent:    getEnvInt("MAX_CONCURRENT_LOOKUPS", 8),

		ShopperIdleTimeout: getEnvDuration("SHOPPER_IDLE_TIMEOUT", 30*time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue
	}
	return d
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
