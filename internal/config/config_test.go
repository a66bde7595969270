package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sydlexius/brainzmatch/internal/provider"
)

// unsetEnv clears key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unsetting %s: %v", key, err)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "data/brainzmatch.db" {
		t.Errorf("db path = %q", cfg.Database.Path)
	}
	if cfg.Database.BackupDir != "data/backups" || cfg.Database.BackupRetention != 5 {
		t.Errorf("unexpected backup defaults %+v", cfg.Database)
	}
	if cfg.Matching.Detail != 1 || cfg.Matching.CandidateLimit != 5 || cfg.Matching.ExamineAllCandidates {
		t.Errorf("unexpected matching defaults %+v", cfg.Matching)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("unexpected logging defaults %+v", cfg.Logging)
	}
}

func TestLoad_MissingFilesAreIgnored(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "nope.yaml"), filepath.Join(dir, ".env")); err != nil {
		t.Fatalf("missing files should be ignored: %v", err)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "brainzmatch.yaml", `
database:
  path: /tmp/cache.db
logging:
  level: debug
  format: json
musicbrainz:
  contact: ops@example.org
  rate_limit: 0.5
matching:
  detail: 3
  examine_all_candidates: true
`)
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "/tmp/cache.db" || cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("yaml not applied: %+v", cfg)
	}
	if cfg.MusicBrainz.Contact != "ops@example.org" || cfg.MusicBrainz.RateLimit != 0.5 {
		t.Errorf("musicbrainz = %+v", cfg.MusicBrainz)
	}
	if cfg.Matching.Detail != 3 || !cfg.Matching.ExamineAllCandidates {
		t.Errorf("matching = %+v", cfg.Matching)
	}
	// Untouched sections keep their defaults.
	if cfg.Matching.CandidateLimit != 5 || cfg.Discogs.RateLimit != 1 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeFile(t, "brainzmatch.yaml", "matching:\n  detail: 2\n")
	t.Setenv("BM_MATCH_DETAIL", "4")
	t.Setenv("BM_DB_PATH", "/srv/bm.db")
	t.Setenv("BM_DISCOGS_RATE", "-1")
	t.Setenv("BM_EXAMINE_ALL_CANDIDATES", "true")

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Matching.Detail != 4 {
		t.Errorf("detail = %d, want 4", cfg.Matching.Detail)
	}
	if cfg.Database.Path != "/srv/bm.db" {
		t.Errorf("db path = %q", cfg.Database.Path)
	}
	if !cfg.Matching.ExamineAllCandidates {
		t.Error("examine all not applied")
	}
	if got := cfg.RateLimits()[provider.NameDiscogs]; got != -1 {
		t.Errorf("discogs rate = %v, want -1", got)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	unsetEnv(t, "BM_DISCOGS_TOKEN")
	t.Setenv("BM_MUSICBRAINZ_CONTACT", "from-env")
	envFile := writeFile(t, ".env", "BM_DISCOGS_TOKEN=secret-token\nBM_MUSICBRAINZ_CONTACT=from-dotenv\n")

	cfg, err := Load("", envFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Discogs.Token != "secret-token" {
		t.Errorf("token = %q, want secret-token", cfg.Discogs.Token)
	}
	if cfg.MusicBrainz.Contact != "from-env" {
		t.Errorf("process env should win over .env, got %q", cfg.MusicBrainz.Contact)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"detail too high", map[string]string{"BM_MATCH_DETAIL": "5"}, "detail"},
		{"detail not a number", map[string]string{"BM_MATCH_DETAIL": "loose"}, "BM_MATCH_DETAIL"},
		{"bad rate", map[string]string{"BM_MUSICBRAINZ_RATE": "fast"}, "BM_MUSICBRAINZ_RATE"},
		{"bad bool", map[string]string{"BM_EXAMINE_ALL_CANDIDATES": "maybe"}, "BM_EXAMINE_ALL_CANDIDATES"},
		{"bad level", map[string]string{"BM_LOG_LEVEL": "trace"}, "log level"},
		{"candidate limit", map[string]string{"BM_CANDIDATE_LIMIT": "0"}, "candidate limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("", "")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
