// Package config loads process configuration from the environment (and an optional .env file)
// into package-level variables, and provides the default server settings record.
package config

import (
	"log"
	"os"
	"strconv"

	"chat_economy/internal/models"

	"github.com/joho/godotenv"
)

var (
	LogLevel          string
	ServerRunAddress  string
	DatabaseURI       string
	StorageDriver     string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	CatalogPath       string
	AuditArchiveDir   string
	JWTSecret         string
	DispatcherKeyHash string
	StartingCoins     int64
	StrictInvariants  bool
)

// Storage drivers accepted in STORAGE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default values")
	}

	LogLevel = os.Getenv("LOG_LEVEL")
	if LogLevel == "" {
		LogLevel = "info"
	}

	ServerRunAddress = os.Getenv("SERVER_RUN_ADDRESS")
	if ServerRunAddress == "" {
		ServerRunAddress = "0.0.0.0:8080"
	}

	DatabaseURI = os.Getenv("DATABASE_URI")
	if DatabaseURI == "" {
		DatabaseURI = "host=db user=postgres password=password dbname=economy sslmode=disable"
	}

	StorageDriver = os.Getenv("STORAGE_DRIVER")
	if StorageDriver != DriverMemory {
		StorageDriver = DriverPostgres
	}

	RedisAddr = os.Getenv("REDIS_ADDR")
	RedisPassword = os.Getenv("REDIS_PASSWORD")
	RedisDB = envInt("REDIS_DB", 0)

	CatalogPath = os.Getenv("CATALOG_PATH")
	if CatalogPath == "" {
		CatalogPath = "assets/catalog.yaml"
	}

	// Empty disables the archive.
	AuditArchiveDir = os.Getenv("AUDIT_ARCHIVE_DIR")

	JWTSecret = os.Getenv("JWT_SECRET")
	if JWTSecret == "" {
		JWTSecret = "supersecretkey"
	}

	DispatcherKeyHash = os.Getenv("DISPATCHER_KEY_HASH")

	StartingCoins = envInt64("STARTING_COINS", 1000)
	StrictInvariants = envBool("STRICT_INVARIANTS", false)
}

// DefaultSettings returns the settings record used when none has been stored.
func DefaultSettings() models.Settings {
	return models.Settings{
		DailyBaseAmount:    500,
		DailyCooldownHours: 24,
		WorkMinAmount:      100,
		WorkMaxAmount:      500,
		WorkCooldownHours:  4,
		RobBaseSuccessRate: 0.40,
		RobCooldownHours:   2,
		RobPenaltyPercent:  0.10,
		XPMultiplier:       1.0,
	}
}

// Settings returns DefaultSettings with environment overrides applied.
// It is what cmd/migrate seeds into the settings relation.
func Settings() models.Settings {
	s := DefaultSettings()
	s.DailyBaseAmount = envInt64("DAILY_BASE_AMOUNT", s.DailyBaseAmount)
	s.DailyCooldownHours = envFloat("DAILY_COOLDOWN_HOURS", s.DailyCooldownHours)
	s.WorkMinAmount = envInt64("WORK_MIN_AMOUNT", s.WorkMinAmount)
	s.WorkMaxAmount = envInt64("WORK_MAX_AMOUNT", s.WorkMaxAmount)
	s.WorkCooldownHours = envFloat("WORK_COOLDOWN_HOURS", s.WorkCooldownHours)
	s.RobBaseSuccessRate = envFloat("ROB_BASE_SUCCESS_RATE", s.RobBaseSuccessRate)
	s.RobCooldownHours = envFloat("ROB_COOLDOWN_HOURS", s.RobCooldownHours)
	s.RobPenaltyPercent = envFloat("ROB_PENALTY_PERCENT", s.RobPenaltyPercent)
	s.XPMultiplier = envFloat("XP_MULTIPLIER", s.XPMultiplier)
	if s.WorkMaxAmount < s.WorkMinAmount {
		log.Printf("WORK_MAX_AMOUNT %d is below WORK_MIN_AMOUNT %d, using the minimum for both", s.WorkMaxAmount, s.WorkMinAmount)
		s.WorkMaxAmount = s.WorkMinAmount
	}
	return s
}

func envInt(key string, fallback int) int {
	return int(envInt64(key, int64(fallback)))
}

func envInt64(key string, fallback int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("Invalid %s %q, using %d", key, raw, fallback)
		return fallback
	}
	return v
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("Invalid %s %q, using %g", key, raw, fallback)
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Invalid %s %q, using %t", key, raw, fallback)
		return fallback
	}
	return v
}
