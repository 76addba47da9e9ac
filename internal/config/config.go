package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"keystone-tracker/internal/constants"
	"keystone-tracker/internal/domain"
	applog "keystone-tracker/internal/logger"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// Season dungeon rotation used when DUNGEONS / DUNGEONS_FILE are unset.
var defaultDungeons = []string{
	"Ara-Kara, City of Echoes",
	"City of Threads",
	"Grim Batol",
	"Mists of Tirna Scithe",
	"Siege of Boralus",
	"The Dawnbreaker",
	"The Necrotic Wake",
	"The Stonevault",
}

type Config struct {
	APIBaseURL       string
	Region           string
	RosterPath       string
	OutputPath       string
	ExtraFields      string
	DBPath           string
	LogLevel         string
	CacheTTL         time.Duration
	FetchTimeout     time.Duration
	FetchConcurrency int
	Catalog          domain.Catalog
}

// Load runs before the application logger exists, so it logs through the
// bootstrap logger.
func Load() (*Config, error) {
	logger := applog.New()

	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		APIBaseURL:   getEnv("API_BASE_URL", "https://raider.io/api/v1"),
		Region:       getEnv("REGION", "us"),
		RosterPath:   getEnv("ROSTER_PATH", "roster.json"),
		OutputPath:   getEnv("OUTPUT_PATH", "keystone-report.xlsx"),
		ExtraFields:  getEnv("EXTRA_FIELDS", ""),
		DBPath:       getEnv("DB_PATH", "keystone.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CacheTTL:     constants.ProfileCacheTTL,
		FetchTimeout: constants.ExternalAPITimeout,
	}

	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}

	concurrency, err := strconv.Atoi(getEnv("FETCH_CONCURRENCY", strconv.Itoa(constants.FetchConcurrency)))
	if err != nil || concurrency < 1 {
		return nil, fmt.Errorf("FETCH_CONCURRENCY must be a positive integer")
	}
	cfg.FetchConcurrency = concurrency

	catalog, err := loadCatalog(logger)
	if err != nil {
		return nil, err
	}
	cfg.Catalog = catalog

	logger.Info().
		Str("region", cfg.Region).
		Str("roster_path", cfg.RosterPath).
		Str("output_path", cfg.OutputPath).
		Str("db_path", cfg.DBPath).
		Str("log_level", cfg.LogLevel).
		Dur("cache_ttl", cfg.CacheTTL).
		Int("fetch_concurrency", cfg.FetchConcurrency).
		Int("dungeons", len(cfg.Catalog)).
		Msg("configuration loaded")

	return cfg, nil
}

// loadCatalog resolves the season dungeon list: DUNGEONS_FILE (JSON array)
// wins over DUNGEONS (comma-separated) wins over the built-in rotation.
func loadCatalog(logger zerolog.Logger) (domain.Catalog, error) {
	if path := os.Getenv("DUNGEONS_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read dungeons file: %w", err)
		}
		var names []string
		if err := json.Unmarshal(data, &names); err != nil {
			return nil, fmt.Errorf("failed to parse dungeons file: %w", err)
		}
		logger.Debug().Str("path", path).Int("count", len(names)).Msg("dungeon catalog loaded from file")
		return domain.NewCatalog(names)
	}
	if csv := os.Getenv("DUNGEONS"); csv != "" {
		return domain.NewCatalog(strings.Split(csv, ","))
	}
	return domain.NewCatalog(defaultDungeons)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
