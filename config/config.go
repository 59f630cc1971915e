package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	Observability ObservabilityConfig `yaml:"observability"`
	Game          GameConfig          `yaml:"game"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL       string `yaml:"url"`
	JetStream bool   `yaml:"jetstream"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	LogLevel       string `yaml:"log_level"`
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
}

// GameConfig holds the gameplay tunables.
type GameConfig struct {
	TimeZone   string          `yaml:"time_zone"`
	CutoffHour int             `yaml:"cutoff_hour"`
	Scoring    ScoringConfig   `yaml:"scoring"`
	Wager      WagerConfig     `yaml:"wager"`
	Duel       DuelConfig      `yaml:"duel"`
	Scheduler  SchedulerConfig `yaml:"scheduler"`
}

// ScoringConfig controls the fallback points formula and the rating update.
type ScoringConfig struct {
	Floor         int     `yaml:"floor"`
	Decrement     int     `yaml:"decrement"`
	InitialRating float64 `yaml:"initial_rating"`
	RatingK       float64 `yaml:"rating_k"`
}

// WagerConfig controls extra plays.
type WagerConfig struct {
	MaxPerDay        int     `yaml:"max_per_day"`
	PayoutMultiplier float64 `yaml:"payout_multiplier"`
	InitialPoints    int64   `yaml:"initial_points"`
}

// DuelConfig controls challenges.
type DuelConfig struct {
	WinnerBonus int64 `yaml:"winner_bonus"`
}

// Scheduler backends for daily target generation.
const (
	SchedulerGocron = "gocron"
	SchedulerRiver  = "river"
)

// SchedulerConfig controls daily target generation in serve mode. The river
// backend keeps its jobs in PostgreSQL and runs them on one instance at a time.
type SchedulerConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Backend  string        `yaml:"backend"`
	Interval time.Duration `yaml:"interval"`
}

// Location resolves the configured time zone, falling back to UTC.
func (g GameConfig) Location() *time.Location {
	if g.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(g.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Default returns a Config with every gameplay default filled in.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
	if c.Game.TimeZone == "" {
		c.Game.TimeZone = "Europe/Madrid"
	}
	if c.Game.CutoffHour == 0 {
		c.Game.CutoffHour = 23
	}
	if c.Game.Scoring.Decrement == 0 {
		c.Game.Scoring.Decrement = 10
	}
	if c.Game.Scoring.InitialRating == 0 {
		c.Game.Scoring.InitialRating = 1200
	}
	if c.Game.Scoring.RatingK == 0 {
		c.Game.Scoring.RatingK = 32
	}
	if c.Game.Wager.MaxPerDay == 0 {
		c.Game.Wager.MaxPerDay = 2
	}
	if c.Game.Wager.PayoutMultiplier == 0 {
		c.Game.Wager.PayoutMultiplier = 1.5
	}
	if c.Game.Duel.WinnerBonus == 0 {
		c.Game.Duel.WinnerBonus = 100
	}
	if c.Game.Scheduler.Interval == 0 {
		c.Game.Scheduler.Interval = time.Hour
	}
	if c.Game.Scheduler.Backend == "" {
		c.Game.Scheduler.Backend = SchedulerGocron
	}
}

// Validate rejects configurations the game engine cannot run with.
func (c *Config) Validate() error {
	if c.Game.CutoffHour < 0 || c.Game.CutoffHour > 24 {
		return fmt.Errorf("game.cutoff_hour must be between 0 and 24, got %d", c.Game.CutoffHour)
	}
	if c.Game.Scoring.Floor < 0 {
		return fmt.Errorf("game.scoring.floor must not be negative")
	}
	if c.Game.Wager.MaxPerDay < 0 {
		return fmt.Errorf("game.wager.max_per_day must not be negative")
	}
	switch c.Game.Scheduler.Backend {
	case "", SchedulerGocron, SchedulerRiver:
	default:
		return fmt.Errorf("game.scheduler.backend must be %q or %q, got %q", SchedulerGocron, SchedulerRiver, c.Game.Scheduler.Backend)
	}
	if c.Game.TimeZone != "" {
		if _, err := time.LoadLocation(c.Game.TimeZone); err != nil {
			return fmt.Errorf("invalid game.time_zone %q: %w", c.Game.TimeZone, err)
		}
	}
	return nil
}

// LoadConfig loads the configuration from a YAML file. A .env file in the
// working directory is loaded first so its values take part in overrides.
func LoadConfig(filename string) (*Config, error) {
	_ = godotenv.Load()

	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	cfg.Postgres.DSN = os.Getenv("DATABASE_URL")
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("NATS_JETSTREAM"); v != "" {
		cfg.NATS.JetStream = v == "true"
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("GAME_TIME_ZONE"); v != "" {
		cfg.Game.TimeZone = v
	}
	if v := os.Getenv("GAME_CUTOFF_HOUR"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GAME_CUTOFF_HOUR value: %v", err)
		}
		cfg.Game.CutoffHour = n
	}
	if v := os.Getenv("GAME_WAGER_MAX_PER_DAY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GAME_WAGER_MAX_PER_DAY value: %v", err)
		}
		cfg.Game.Wager.MaxPerDay = n
	}
	if v := os.Getenv("GAME_DUEL_WINNER_BONUS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid GAME_DUEL_WINNER_BONUS value: %v", err)
		}
		cfg.Game.Duel.WinnerBonus = n
	}
	if v := os.Getenv("GAME_SCHEDULER_ENABLED"); v != "" {
		cfg.Game.Scheduler.Enabled = v == "true"
	}
	if v := os.Getenv("GAME_SCHEDULER_BACKEND"); v != "" {
		cfg.Game.Scheduler.Backend = v
	}
	return nil
}
