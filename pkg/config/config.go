package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Floor    FloorConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

// FloorConfig holds the bandit defaults. Per-adapter rows in the database can
// override the ladder and the explore knobs at runtime.
type FloorConfig struct {
	CandidatePrices       []float64
	WarmUpTrials          int
	ExplorationRate       float64
	PriorSuccesses        uint64
	PriorFailures         uint64
	PersistTimeoutSeconds int
	SDKKeySecret          string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	prices, err := parsePrices(getEnv("FLOOR_CANDIDATE_PRICES", "0.10,0.25,0.50,1.00,2.00,3.00,5.00,10.00"))
	if err != nil {
		return nil, fmt.Errorf("invalid floor candidate prices: %w", err)
	}

	warmUp, err := strconv.Atoi(getEnv("FLOOR_WARMUP_TRIALS", "100"))
	if err != nil {
		return nil, errors.New("invalid floor warmup trials")
	}

	exploration, err := strconv.ParseFloat(getEnv("FLOOR_EXPLORATION_RATE", "0.10"), 64)
	if err != nil {
		return nil, errors.New("invalid floor exploration rate")
	}

	priorSuccesses, err := strconv.ParseUint(getEnv("FLOOR_PRIOR_SUCCESSES", "1"), 10, 64)
	if err != nil {
		return nil, errors.New("invalid floor prior successes")
	}

	priorFailures, err := strconv.ParseUint(getEnv("FLOOR_PRIOR_FAILURES", "1"), 10, 64)
	if err != nil {
		return nil, errors.New("invalid floor prior failures")
	}

	persistTimeout, err := strconv.Atoi(getEnv("FLOOR_PERSIST_TIMEOUT_SECONDS", "5"))
	if err != nil {
		return nil, errors.New("invalid floor persist timeout")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "FloorPilot API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "floorpilot"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Floor: FloorConfig{
			CandidatePrices:       prices,
			WarmUpTrials:          warmUp,
			ExplorationRate:       exploration,
			PriorSuccesses:        priorSuccesses,
			PriorFailures:         priorFailures,
			PersistTimeoutSeconds: persistTimeout,
			SDKKeySecret:          getEnv("SDK_KEY_SECRET", ""),
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Floor.SDKKeySecret == "" {
		return nil, errors.New("missing sdk key secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if len(cfg.Floor.CandidatePrices) == 0 {
		return nil, errors.New("empty floor candidate price list")
	}

	if cfg.Floor.ExplorationRate < 0 || cfg.Floor.ExplorationRate > 1 {
		return nil, errors.New("floor exploration rate must be within [0,1]")
	}

	return cfg, nil
}

func parsePrices(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	prices := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		price, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", p, err)
		}
		if price <= 0 {
			return nil, fmt.Errorf("price %q must be positive", p)
		}
		prices = append(prices, price)
	}

	return prices, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}
