package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"occupancy-optimizer/services"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	RegularWindowDays    int
	HolidayHorizonDays   int
	HolidayBufferDays    int
	MaxIterations        int
	FragmentationPenalty float64
	BonusScale           float64
	MinFreeUnits         int
	SufficiencyThreshold float64
	SampleFraction       float64

	RegionCode  string
	Source      string
	InputPath   string
	HolidayPath string

	MaxConcurrency    int
	MaxRetries        int
	InventoryCacheTTL time.Duration

	MovesCSVPath      string
	ImportanceCSVPath string
	Schedule          string

	LogLevel  string
	LogFormat string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := loadDotEnv(".env"); err != nil {
		log.Printf("[config] Ignoring %v, falling back to system env vars", err)
	}
	return FromEnv()
}

// loadDotEnv applies the given env files. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// FromEnv builds a Config from the process environment only.
func FromEnv() *Config {
	d := services.DefaultAnalysisConfig()

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "occupancy"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "occupancy123"),
		PostgresDB:       getEnv("POSTGRES_DB", "occupancy_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RegularWindowDays:    getEnvInt("REGULAR_WINDOW_DAYS", d.RegularWindowDays),
		HolidayHorizonDays:   getEnvInt("HOLIDAY_HORIZON_DAYS", d.HolidayHorizonDays),
		HolidayBufferDays:    getEnvInt("HOLIDAY_BUFFER_DAYS", d.HolidayBufferDays),
		MaxIterations:        getEnvInt("MAX_ITERATIONS", d.MaxIterations),
		FragmentationPenalty: getEnvFloat("FRAGMENTATION_PENALTY", d.FragmentationPenalty),
		BonusScale:           getEnvFloat("BONUS_SCALE", d.BonusScale),
		MinFreeUnits:         getEnvInt("MIN_FREE_UNITS", d.MinFreeUnits),
		SufficiencyThreshold: getEnvFloat("SUFFICIENCY_THRESHOLD", d.SufficiencyThreshold),
		SampleFraction:       getEnvFloat("SAMPLE_FRACTION", d.SampleFraction),

		RegionCode:  getEnv("REGION_CODE", ""),
		Source:      strings.ToLower(getEnv("SOURCE", "file")),
		InputPath:   getEnv("INPUT_PATH", "./data/properties.yaml"),
		HolidayPath: getEnv("HOLIDAY_PATH", "./data/holidays.yaml"),

		MaxConcurrency:    getEnvInt("MAX_CONCURRENCY", d.MaxConcurrency),
		MaxRetries:        getEnvInt("MAX_RETRIES", 3),
		InventoryCacheTTL: time.Duration(getEnvInt("INVENTORY_CACHE_TTL_MIN", 30)) * time.Minute,

		MovesCSVPath:      getEnv("MOVES_CSV_PATH", "./output/moves.csv"),
		ImportanceCSVPath: getEnv("IMPORTANCE_CSV_PATH", "./output/importance.csv"),
		Schedule:          getEnv("SCHEDULE", "0 6 * * *"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// Analysis returns the constants for one analysis run.
func (c *Config) Analysis() services.AnalysisConfig {
	return services.AnalysisConfig{
		RegularWindowDays:    c.RegularWindowDays,
		HolidayHorizonDays:   c.HolidayHorizonDays,
		HolidayBufferDays:    c.HolidayBufferDays,
		MaxIterations:        c.MaxIterations,
		FragmentationPenalty: c.FragmentationPenalty,
		BonusScale:           c.BonusScale,
		MinFreeUnits:         c.MinFreeUnits,
		SufficiencyThreshold: c.SufficiencyThreshold,
		SampleFraction:       c.SampleFraction,
		MaxConcurrency:       c.MaxConcurrency,
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}
