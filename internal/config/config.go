package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sydlexius/brainzmatch/internal/logging"
	"github.com/sydlexius/brainzmatch/internal/provider"
)

// Config holds all application configuration.
type Config struct {
	Database       DatabaseConfig       `yaml:"database"`
	Logging        logging.Config       `yaml:"logging"`
	MusicBrainz    MusicBrainzConfig    `yaml:"musicbrainz"`
	AcousticBrainz AcousticBrainzConfig `yaml:"acousticbrainz"`
	Discogs        DiscogsConfig        `yaml:"discogs"`
	Matching       MatchingConfig       `yaml:"matching"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path            string `yaml:"path"`
	BackupDir       string `yaml:"backup_dir"`
	BackupRetention int    `yaml:"backup_retention"`
}

// MusicBrainzConfig holds catalog-search service settings. An empty base
// URL selects the public service.
type MusicBrainzConfig struct {
	BaseURL string `yaml:"base_url"`
	// Contact is sent in the User-Agent header.
	Contact   string  `yaml:"contact"`
	RateLimit float64 `yaml:"rate_limit"`
}

// AcousticBrainzConfig holds audio-analysis service settings.
type AcousticBrainzConfig struct {
	BaseURL   string  `yaml:"base_url"`
	RateLimit float64 `yaml:"rate_limit"`
}

// DiscogsConfig holds source-catalog settings.
type DiscogsConfig struct {
	BaseURL   string  `yaml:"base_url"`
	Token     string  `yaml:"token"`
	RateLimit float64 `yaml:"rate_limit"`
}

// MatchingConfig holds resolver settings.
type MatchingConfig struct {
	Detail               int  `yaml:"detail"`
	CandidateLimit       int  `yaml:"candidate_limit"`
	ExamineAllCandidates bool `yaml:"examine_all_candidates"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/brainzmatch.db",
			BackupDir:       "data/backups",
			BackupRetention: 5,
		},
		Logging:        logging.DefaultConfig(),
		MusicBrainz:    MusicBrainzConfig{RateLimit: 1},
		AcousticBrainz: AcousticBrainzConfig{RateLimit: 1},
		Discogs:        DiscogsConfig{RateLimit: 1},
		Matching: MatchingConfig{
			Detail:         1,
			CandidateLimit: 5,
		},
	}
}

// Load reads config from a YAML file (if it exists), then the .env file at
// envFile (if it exists), then overrides with environment variables.
// Variables already set in the environment win over the .env file.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading env file: %w", err)
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// RateLimits returns the per-provider request rates.
func (c *Config) RateLimits() map[provider.ProviderName]float64 {
	return map[provider.ProviderName]float64{
		provider.NameMusicBrainz:    c.MusicBrainz.RateLimit,
		provider.NameAcousticBrainz: c.AcousticBrainz.RateLimit,
		provider.NameDiscogs:        c.Discogs.RateLimit,
	}
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the command line
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() error {
	strs := map[string]*string{
		"BM_DB_PATH":             &c.Database.Path,
		"BM_BACKUP_DIR":          &c.Database.BackupDir,
		"BM_LOG_LEVEL":           &c.Logging.Level,
		"BM_LOG_FORMAT":          &c.Logging.Format,
		"BM_LOG_FILE":            &c.Logging.FilePath,
		"BM_MUSICBRAINZ_URL":     &c.MusicBrainz.BaseURL,
		"BM_MUSICBRAINZ_CONTACT": &c.MusicBrainz.Contact,
		"BM_ACOUSTICBRAINZ_URL":  &c.AcousticBrainz.BaseURL,
		"BM_DISCOGS_URL":         &c.Discogs.BaseURL,
		"BM_DISCOGS_TOKEN":       &c.Discogs.Token,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	floats := map[string]*float64{
		"BM_MUSICBRAINZ_RATE":    &c.MusicBrainz.RateLimit,
		"BM_ACOUSTICBRAINZ_RATE": &c.AcousticBrainz.RateLimit,
		"BM_DISCOGS_RATE":        &c.Discogs.RateLimit,
	}
	for key, dst := range floats {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", key, err)
			}
			*dst = f
		}
	}

	ints := map[string]*int{
		"BM_MATCH_DETAIL":    &c.Matching.Detail,
		"BM_CANDIDATE_LIMIT": &c.Matching.CandidateLimit,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", key, err)
			}
			*dst = n
		}
	}

	if v := os.Getenv("BM_EXAMINE_ALL_CANDIDATES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing BM_EXAMINE_ALL_CANDIDATES: %w", err)
		}
		c.Matching.ExamineAllCandidates = b
	}
	return nil
}

func (c *Config) validate() error {
	c.Database.Path = strings.TrimSpace(c.Database.Path)
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Database.BackupDir == "" {
		c.Database.BackupDir = filepath.Join(filepath.Dir(c.Database.Path), "backups")
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if c.Matching.Detail < 1 || c.Matching.Detail > 4 {
		return fmt.Errorf("matching detail must be between 1 and 4, got %d", c.Matching.Detail)
	}
	if c.Matching.CandidateLimit < 1 || c.Matching.CandidateLimit > 100 {
		return fmt.Errorf("candidate limit must be between 1 and 100, got %d", c.Matching.CandidateLimit)
	}
	return nil
}
