package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port           string
	AppEnv         string
	StoreDriver    string
	MongoURI       string
	DBName         string
	DatabaseURL    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	CartTTL        time.Duration
	JWTSecret      string
	AccessTokenTTL time.Duration
	SessionSecret  string
	AdminEmail     string
	AdminPassword  string
	PublicDir      string
	TokenTimezone  string
	PixKey         string
	MerchantName   string
	MerchantCity   string
	RequestTimeout time.Duration
}

// Load reads .env when present and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	return Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		AppEnv:         getEnvOrDefault("APP_ENV", "development"),
		StoreDriver:    strings.ToLower(getEnvOrDefault("STORE_DRIVER", DriverMongo)),
		MongoURI:       getEnvOrDefault("MONGO_URI", ""),
		DBName:         getEnvOrDefault("DB_NAME", "cantinho"),
		DatabaseURL:    getEnvOrDefault("DATABASE_URL", ""),
		RedisAddr:      getEnvOrDefault("REDIS_ADDR", ""),
		RedisPassword:  getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:        getIntEnv("REDIS_DB", 0),
		CartTTL:        getDurationEnv("CART_TTL", 24, time.Hour),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL: getDurationEnv("ACCESS_TOKEN_TTL", 120, time.Minute),
		SessionSecret:  getEnvOrDefault("SESSION_SECRET", ""),
		AdminEmail:     strings.ToLower(getEnvOrDefault("ADMIN_EMAIL", "")),
		AdminPassword:  getEnvOrDefault("ADMIN_PASSWORD", ""),
		PublicDir:      getEnvOrDefault("PUBLIC_DIR", "./public"),
		TokenTimezone:  getEnvOrDefault("TOKEN_TIMEZONE", "America/Sao_Paulo"),
		PixKey:         getEnvOrDefault("PIX_KEY", "contato@cantinho.com.br"),
		MerchantName:   getEnvOrDefault("MERCHANT_NAME", "Cantinho do Sabor"),
		MerchantCity:   getEnvOrDefault("MERCHANT_CITY", "Sao Paulo"),
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", 5, time.Second),
	}
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Location resolves TokenTimezone, the zone that decides token days.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.TokenTimezone)
}

// Validate reports every missing or malformed setting at once.
func (c Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required when STORE_DRIVER=mongo"))
		}
	case DriverPostgres, DriverSQLite:
		if c.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=%s", c.StoreDriver))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q is not one of mongo, postgres, sqlite", c.StoreDriver))
	}

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	} else if len(c.SessionSecret) < 16 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 16 characters"))
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("TOKEN_TIMEZONE: %w", err))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
