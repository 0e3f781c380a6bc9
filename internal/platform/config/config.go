package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	defaultConfigPath = "configs/governance.yaml"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName    string
	HTTPPort       string
	PostgresDSN    string
	RedisURL       string
	Store          string
	OutboxStream   string
	OutboxInterval time.Duration

	// MetricCategories get their own label value on the proposals metric;
	// any other category is counted as "other".
	MetricCategories []string

	RateLimit  RateLimitConfig
	Governance GovernanceDefaults
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

// GovernanceDefaults feed proposal creation when a request leaves an option
// unset.
type GovernanceDefaults struct {
	Category          string
	VotingPeriod      time.Duration
	QuorumThreshold   float64
	ApprovalThreshold float64
	ExecutionDelay    time.Duration
}

func Default() Config {
	return Config{
		ServiceName:    "govengine",
		HTTPPort:       "8080",
		Store:          StoreMemory,
		OutboxStream:   "governance.events",
		OutboxInterval: time.Second,
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     30,
			Burst:   60,
		},
		Governance: GovernanceDefaults{
			Category:          "general",
			VotingPeriod:      7 * 24 * time.Hour,
			QuorumThreshold:   0.5,
			ApprovalThreshold: 0.6,
			ExecutionDelay:    2 * 24 * time.Hour,
		},
	}
}

// Load resolves defaults, then the optional YAML file, then environment
// overrides. An explicitly named file must exist and parse; the default path
// is skipped when absent.
func Load() (Config, error) {
	cfg := Default()

	path := strings.TrimSpace(os.Getenv("GOV_CONFIG_FILE"))
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}
	if err := mergeFile(&cfg, path, explicit); err != nil {
		return Config{}, err
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return errors.New("config: POSTGRES_DSN is required when GOV_STORE=postgres")
		}
	default:
		return fmt.Errorf("config: unknown store %q", c.Store)
	}
	if !validThreshold(c.Governance.QuorumThreshold) || !validThreshold(c.Governance.ApprovalThreshold) {
		return errors.New("config: governance thresholds must be within [0,1]")
	}
	if c.Governance.VotingPeriod <= 0 {
		return errors.New("config: governance voting period must be positive")
	}
	if c.Governance.ExecutionDelay < 0 {
		return errors.New("config: governance execution delay must not be negative")
	}
	return nil
}

type fileConfig struct {
	Service    string             `yaml:"service"`
	HTTP       fileHTTPConfig     `yaml:"http"`
	Store      fileStoreConfig    `yaml:"store"`
	Outbox     fileOutboxConfig   `yaml:"outbox"`
	RateLimit  fileRateLimit      `yaml:"rateLimit"`
	Governance fileGovernanceConf `yaml:"governance"`
	Metrics    fileMetricsConfig  `yaml:"metrics"`
}

type fileMetricsConfig struct {
	Categories []string `yaml:"categories"`
}

type fileHTTPConfig struct {
	Port string `yaml:"port"`
}

type fileStoreConfig struct {
	Kind        string `yaml:"kind"`
	PostgresDSN string `yaml:"postgresDsn"`
	RedisURL    string `yaml:"redisUrl"`
}

type fileOutboxConfig struct {
	Stream   string        `yaml:"stream"`
	Interval time.Duration `yaml:"interval"`
}

type fileRateLimit struct {
	Enabled *bool    `yaml:"enabled"`
	RPS     *float64 `yaml:"rps"`
	Burst   *int     `yaml:"burst"`
}

type fileGovernanceConf struct {
	Category          string         `yaml:"category"`
	VotingPeriod      time.Duration  `yaml:"votingPeriod"`
	QuorumThreshold   *float64       `yaml:"quorumThreshold"`
	ApprovalThreshold *float64       `yaml:"approvalThreshold"`
	ExecutionDelay    *time.Duration `yaml:"executionDelay"`
}

func mergeFile(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	var parsed fileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	merge(cfg, parsed)
	return nil
}

func merge(dst *Config, src fileConfig) {
	if src.Service != "" {
		dst.ServiceName = src.Service
	}
	if src.HTTP.Port != "" {
		dst.HTTPPort = src.HTTP.Port
	}
	if src.Store.Kind != "" {
		dst.Store = strings.ToLower(src.Store.Kind)
	}
	if src.Store.PostgresDSN != "" {
		dst.PostgresDSN = src.Store.PostgresDSN
	}
	if src.Store.RedisURL != "" {
		dst.RedisURL = src.Store.RedisURL
	}
	if src.Outbox.Stream != "" {
		dst.OutboxStream = src.Outbox.Stream
	}
	if src.Outbox.Interval != 0 {
		dst.OutboxInterval = src.Outbox.Interval
	}
	if src.RateLimit.Enabled != nil {
		dst.RateLimit.Enabled = *src.RateLimit.Enabled
	}
	if src.RateLimit.RPS != nil {
		dst.RateLimit.RPS = *src.RateLimit.RPS
	}
	if src.RateLimit.Burst != nil {
		dst.RateLimit.Burst = *src.RateLimit.Burst
	}
	if len(src.Metrics.Categories) > 0 {
		dst.MetricCategories = append([]string(nil), src.Metrics.Categories...)
	}
	if src.Governance.Category != "" {
		dst.Governance.Category = src.Governance.Category
	}
	if src.Governance.VotingPeriod != 0 {
		dst.Governance.VotingPeriod = src.Governance.VotingPeriod
	}
	if src.Governance.QuorumThreshold != nil {
		dst.Governance.QuorumThreshold = *src.Governance.QuorumThreshold
	}
	if src.Governance.ApprovalThreshold != nil {
		dst.Governance.ApprovalThreshold = *src.Governance.ApprovalThreshold
	}
	if src.Governance.ExecutionDelay != nil {
		dst.Governance.ExecutionDelay = *src.Governance.ExecutionDelay
	}
}

func applyEnvOverrides(cfg *Config) error {
	if value := strings.TrimSpace(os.Getenv("SERVICE_NAME")); value != "" {
		cfg.ServiceName = value
	}
	if value := strings.TrimSpace(os.Getenv("HTTP_PORT")); value != "" {
		cfg.HTTPPort = value
	}
	if value := strings.TrimSpace(os.Getenv("POSTGRES_DSN")); value != "" {
		cfg.PostgresDSN = value
	}
	if value := strings.TrimSpace(os.Getenv("REDIS_URL")); value != "" {
		cfg.RedisURL = value
	}
	if value := strings.TrimSpace(os.Getenv("GOV_STORE")); value != "" {
		cfg.Store = strings.ToLower(value)
	}
	if value := strings.TrimSpace(os.Getenv("GOV_OUTBOX_STREAM")); value != "" {
		cfg.OutboxStream = value
	}
	if value := strings.TrimSpace(os.Getenv("GOV_DEFAULT_CATEGORY")); value != "" {
		cfg.Governance.Category = value
	}
	if value := strings.TrimSpace(os.Getenv("GOV_METRIC_CATEGORIES")); value != "" {
		cfg.MetricCategories = splitList(value)
	}
	cfg.RateLimit.Enabled = envBool("GOV_RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled)

	var err error
	if cfg.OutboxInterval, err = envDuration("GOV_OUTBOX_INTERVAL", cfg.OutboxInterval); err != nil {
		return err
	}
	if cfg.RateLimit.RPS, err = envFloat("GOV_RATE_LIMIT_RPS", cfg.RateLimit.RPS); err != nil {
		return err
	}
	if cfg.RateLimit.Burst, err = envInt("GOV_RATE_LIMIT_BURST", cfg.RateLimit.Burst); err != nil {
		return err
	}
	if cfg.Governance.VotingPeriod, err = envDuration("GOV_DEFAULT_VOTING_PERIOD", cfg.Governance.VotingPeriod); err != nil {
		return err
	}
	if cfg.Governance.ExecutionDelay, err = envDuration("GOV_DEFAULT_EXECUTION_DELAY", cfg.Governance.ExecutionDelay); err != nil {
		return err
	}
	if cfg.Governance.QuorumThreshold, err = envFloat("GOV_DEFAULT_QUORUM", cfg.Governance.QuorumThreshold); err != nil {
		return err
	}
	if cfg.Governance.ApprovalThreshold, err = envFloat("GOV_DEFAULT_APPROVAL", cfg.Governance.ApprovalThreshold); err != nil {
		return err
	}
	return nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envFloat(name string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return value, nil
}

func envInt(name string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return value, nil
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return value, nil
}

func splitList(raw string) []string {
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

func validThreshold(value float64) bool {
	return !math.IsNaN(value) && value >= 0 && value <= 1
}
