package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/sydlexius/brainzmatch/internal/backup"
	"github.com/sydlexius/brainzmatch/internal/config"
	"github.com/sydlexius/brainzmatch/internal/database"
	"github.com/sydlexius/brainzmatch/internal/enrich"
	"github.com/sydlexius/brainzmatch/internal/logging"
	"github.com/sydlexius/brainzmatch/internal/provider"
	"github.com/sydlexius/brainzmatch/internal/provider/acousticbrainz"
	"github.com/sydlexius/brainzmatch/internal/provider/discogs"
	"github.com/sydlexius/brainzmatch/internal/provider/musicbrainz"
)

// appContext carries flags, configuration and the logger shared by commands.
type appContext struct {
	configPath string
	envFile    string
	verbose    bool

	cfg     *config.Config
	logMgr  *logging.Manager
	logger  *slog.Logger
	limiter *provider.RateLimiterMap
}

func newAppContext() *appContext {
	return &appContext{}
}

func (a *appContext) init(stderr io.Writer) error {
	cfg, err := config.Load(a.configPath, a.envFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	a.logMgr, a.logger = logging.NewManager(cfg.Logging, stderr)
	if a.verbose {
		a.logMgr.SetLevel("debug")
	}
	a.limiter = provider.NewRateLimiterMapWithRates(cfg.RateLimits())

	a.logger.Debug("configuration loaded",
		slog.String("database", cfg.Database.Path),
		slog.String("logging", a.logMgr.Config().String()))
	return nil
}

func (a *appContext) close() {
	if a.logMgr != nil {
		_ = a.logMgr.Close()
	}
}

func (a *appContext) musicBrainz() *musicbrainz.Adapter {
	var mb *musicbrainz.Adapter
	if a.cfg.MusicBrainz.BaseURL != "" {
		mb = musicbrainz.NewWithBaseURL(a.limiter, a.logger, a.cfg.MusicBrainz.BaseURL)
	} else {
		mb = musicbrainz.New(a.limiter, a.logger)
	}
	mb.SetContact(a.cfg.MusicBrainz.Contact)
	return mb
}

func (a *appContext) enricher() *enrich.Enricher {
	var ab *acousticbrainz.Adapter
	if a.cfg.AcousticBrainz.BaseURL != "" {
		ab = acousticbrainz.NewWithBaseURL(a.limiter, a.logger, a.cfg.AcousticBrainz.BaseURL)
	} else {
		ab = acousticbrainz.New(a.limiter, a.logger)
	}
	return enrich.New(ab, a.logger)
}

func (a *appContext) discogs() *discogs.Adapter {
	if a.cfg.Discogs.BaseURL != "" {
		return discogs.NewWithBaseURL(a.limiter, a.cfg.Discogs.Token, a.logger, a.cfg.Discogs.BaseURL)
	}
	return discogs.New(a.limiter, a.cfg.Discogs.Token, a.logger)
}

// openDB opens and migrates the catalog cache.
func (a *appContext) openDB(ctx context.Context) (*sql.DB, error) {
	db, err := database.Open(ctx, a.cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (a *appContext) backups(db *sql.DB) *backup.Service {
	return backup.NewService(db, a.cfg.Database.BackupDir, a.cfg.Database.BackupRetention, a.logger)
}
