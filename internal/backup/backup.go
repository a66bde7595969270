// Package backup takes point-in-time snapshots of the catalog cache so a
// forced batch run can be rolled back by hand.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// snapshotPattern matches snapshot filenames: brainzmatch-YYYYMMDD-HHMMSS.db
var snapshotPattern = regexp.MustCompile(`^brainzmatch-\d{8}-\d{6}\.db$`)

const timestampLayout = "20060102-150405"

// Info describes a snapshot file.
type Info struct {
	Filename  string
	Path      string
	Size      int64
	CreatedAt time.Time
}

// Service manages database snapshots.
type Service struct {
	db        *sql.DB
	dir       string
	retention int
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a backup service keeping at most retention snapshots
// in dir. A retention below one keeps every snapshot.
func NewService(db *sql.DB, dir string, retention int, logger *slog.Logger) *Service {
	return &Service{
		db:        db,
		dir:       dir,
		retention: retention,
		logger:    logger.With(slog.String("component", "backup")),
		now:       time.Now,
	}
}

// Snapshot writes a copy of the database using VACUUM INTO, then prunes
// old snapshots.
func (s *Service) Snapshot(ctx context.Context) (*Info, error) {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating backup directory: %w", err)
	}

	now := s.now().UTC()
	filename := "brainzmatch-" + now.Format(timestampLayout) + ".db"
	dest := filepath.Join(s.dir, filename)

	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return nil, fmt.Errorf("VACUUM INTO: %w", err)
	}

	st, err := os.Stat(dest)
	if err != nil {
		return nil, fmt.Errorf("stat snapshot: %w", err)
	}
	s.logger.Info("snapshot written", slog.String("path", dest), slog.Int64("size", st.Size()))

	if err := s.Prune(); err != nil {
		s.logger.Warn("pruning snapshots failed", slog.String("error", err.Error()))
	}

	return &Info{Filename: filename, Path: dest, Size: st.Size(), CreatedAt: now}, nil
}

// List returns all snapshots, newest first.
func (s *Service) List() ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var out []Info
	for _, e := range entries {
		if e.IsDir() || !snapshotPattern.MatchString(e.Name()) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(e.Name(), "brainzmatch-"), ".db")
		ts, err := time.Parse(timestampLayout, stamp)
		if err != nil {
			ts = fi.ModTime()
		}
		out = append(out, Info{
			Filename:  e.Name(),
			Path:      filepath.Join(s.dir, e.Name()),
			Size:      fi.Size(),
			CreatedAt: ts,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Prune deletes snapshots beyond the retention count.
func (s *Service) Prune() error {
	if s.retention < 1 {
		return nil
	}
	snaps, err := s.List()
	if err != nil {
		return err
	}
	if len(snaps) <= s.retention {
		return nil
	}
	for _, b := range snaps[s.retention:] {
		if err := os.Remove(b.Path); err != nil {
			s.logger.Warn("failed to remove old snapshot",
				slog.String("filename", b.Filename),
				slog.String("error", err.Error()))
			continue
		}
		s.logger.Debug("pruned old snapshot", slog.String("filename", b.Filename))
	}
	return nil
}
