// Package config assembles runtime configuration from AUCTION_* environment
// variables layered over compiled-in defaults. Market constants are read once
// here and never change afterwards.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/nftmarket/auction-engine/internal/core"
)

type Config struct {
	HTTPAddr string

	// PostgresDSN enables the pg repository when non-empty.
	PostgresDSN string

	// RedisAddr enables the snapshot cache and event publisher when
	// non-empty.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	LogLevel string

	Market core.Config
}

func Defaults() Config {
	return Config{
		HTTPAddr: ":8080",
		CacheTTL: 5 * time.Minute,
		LogLevel: "info",
		Market:   core.DefaultConfig(),
	}
}

// Load reads a .env file if present and applies environment overrides on top
// of the defaults.
func Load() Config {
	_ = godotenv.Load()

	cfg := Defaults()
	setStr(&cfg.HTTPAddr, "AUCTION_HTTP_ADDR")
	setStr(&cfg.PostgresDSN, "AUCTION_POSTGRES_DSN")
	setStr(&cfg.RedisAddr, "AUCTION_REDIS_ADDR")
	setStr(&cfg.RedisPassword, "AUCTION_REDIS_PASSWORD")
	setInt(&cfg.RedisDB, "AUCTION_REDIS_DB")
	setDuration(&cfg.CacheTTL, "AUCTION_CACHE_TTL")
	setStr(&cfg.LogLevel, "AUCTION_LOG_LEVEL")

	setDecimal(&cfg.Market.MinPrice, "AUCTION_MIN_PRICE")
	setInt64(&cfg.Market.MinDuration, "AUCTION_MIN_DURATION")
	setInt64(&cfg.Market.MaxDuration, "AUCTION_MAX_DURATION")
	setDecimal(&cfg.Market.MinStake, "AUCTION_MIN_STAKE")
	setInt64(&cfg.Market.DayLength, "AUCTION_DAY_LENGTH")
	setDecimal(&cfg.Market.ProfitRate, "AUCTION_PROFIT_RATE")
	setDecimal(&cfg.Market.FixedRate, "AUCTION_FIXED_RATE")
	return cfg
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func setDecimal(dst *decimal.Decimal, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			*dst = d
		}
	}
}
