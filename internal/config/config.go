package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Configはアプリ全体の設定
type Config struct {
	Port     string // サーバーポート（8080）
	LogLevel string // info/warn/error
	GoEnv    string // dev/prod
	FEURL    string // フロントURL（CORS）

	DBDriver         string // postgres / sqlite
	DatabaseURL      string // あれば最優先
	SQLitePath       string // sqlite のファイル
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int

	JWTSecret         string // JWT署名シークレット
	AccessTokenTTL    time.Duration
	AdminUsername     string
	AdminPassword     string // 平文（起動時にbcryptする）
	AdminPasswordHash string // bcrypt済みならこちら優先

	Currency              string
	FreeDeliveryThreshold decimal.Decimal
	BaseDeliveryCharge    decimal.Decimal

	RazorpayKeyID     string
	RazorpayKeySecret string

	RedisURL string
	CartTTL  time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	GeminiAPIKey string
	GeminiModel  string
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := envIntDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	cartTTLHours, err := envIntDefault("CART_TTL_HOURS", 72)
	if err != nil {
		return Config{}, err
	}
	accessTTLMin, err := envIntDefault("ACCESS_TOKEN_TTL_MINUTES", 60)
	if err != nil {
		return Config{}, err
	}
	threshold, err := envDecimalDefault("FREE_DELIVERY_THRESHOLD", "1000")
	if err != nil {
		return Config{}, err
	}
	baseCharge, err := envDecimalDefault("BASE_DELIVERY_CHARGE", "50")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:     envDefault("PORT", "8080"),
		LogLevel: envDefault("LOG_LEVEL", "info"),
		GoEnv:    envDefault("GO_ENV", "dev"),
		FEURL:    os.Getenv("FE_URL"),

		DBDriver:         envDefault("DB_DRIVER", "postgres"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SQLitePath:       envDefault("SQLITE_PATH", "storefront.db"),
		PostgresUser:     envDefault("POSTGRES_USER", "postgres"),
		PostgresPassword: envDefault("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       envDefault("POSTGRES_DB", "storefront"),
		PostgresHost:     envDefault("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AccessTokenTTL:    time.Duration(accessTTLMin) * time.Minute,
		AdminUsername:     os.Getenv("ADMIN_USERNAME"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		Currency:              envDefault("CURRENCY", "INR"),
		FreeDeliveryThreshold: threshold,
		BaseDeliveryCharge:    baseCharge,

		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),

		RedisURL: os.Getenv("REDIS_URL"),
		CartTTL:  time.Duration(cartTTLHours) * time.Hour,

		KafkaBrokers: csv(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   envDefault("KAFKA_TOPIC", "order_events"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  envDefault("GEMINI_MODEL", "gemini-pro-latest"),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.AdminUsername == "" {
		return Config{}, fmt.Errorf("ADMIN_USERNAME is required")
	}
	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		return Config{}, fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	}
	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be postgres or sqlite")
	}

	return cfg, nil
}

// PostgresDSNはDATABASE_URLが無いときの接続文字列
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB,
		envDefault("POSTGRES_SSLMODE", "disable"),
	)
}

// GatewayEnabledはキーが両方あるときだけtrue
func (c Config) GatewayEnabled() bool {
	return c.RazorpayKeyID != "" && c.RazorpayKeySecret != ""
}

func envDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envIntDefault(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func envDecimalDefault(key, def string) (decimal.Decimal, error) {
	v := envDefault(key, def)
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be decimal: %w", key, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must be >= 0", key)
	}
	return d, nil
}

func csv(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
