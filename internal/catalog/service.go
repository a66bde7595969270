// Package catalog is the local SQLite cache of source releases, their
// tracks and the MusicBrainz matches found for them.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sydlexius/brainzmatch/internal/match"
	"github.com/sydlexius/brainzmatch/internal/provider"
)

// Service provides release, track and run data operations.
type Service struct {
	db  *sql.DB
	now func() time.Time
}

// NewService creates a catalog service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// PutRelease inserts a release or replaces its descriptive fields. Match
// columns are left as they are.
func (s *Service) PutRelease(ctx context.Context, r *Release) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO releases (discogs_id, title, catalog_number, artist)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(discogs_id) DO UPDATE SET
			title = excluded.title,
			catalog_number = excluded.catalog_number,
			artist = excluded.artist
	`, r.DiscogsID, r.Title, r.CatalogNumber, r.Artist)
	if err != nil {
		return fmt.Errorf("putting release %d: %w", r.DiscogsID, err)
	}
	return nil
}

// PutTrack inserts a track or replaces its name, ordinal and override.
func (s *Service) PutTrack(ctx context.Context, t *Track) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tracks (release_id, track_label, track_name, track_ordinal, mb_recording_override)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(release_id, track_label) DO UPDATE SET
			track_name = excluded.track_name,
			track_ordinal = excluded.track_ordinal,
			mb_recording_override = excluded.mb_recording_override
	`, t.ReleaseID, t.Label, t.Name, t.Ordinal, nullString(t.MBRecordingOverride))
	if err != nil {
		return fmt.Errorf("putting track %d/%s: %w", t.ReleaseID, t.Label, err)
	}
	return nil
}

// GetRelease retrieves a release by source-catalog id. Returns nil, nil when
// it is not cached.
func (s *Service) GetRelease(ctx context.Context, id int64) (*Release, error) {
	var (
		r                Release
		mbid, method, at sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT discogs_id, title, catalog_number, artist, mb_release_id, mb_match_method, mb_matched_at
		FROM releases WHERE discogs_id = ?
	`, id).Scan(&r.DiscogsID, &r.Title, &r.CatalogNumber, &r.Artist, &mbid, &method, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting release %d: %w", id, err)
	}
	r.MBReleaseID = mbid.String
	r.MBMatchMethod = method.String
	r.MBMatchedAt = parseNullableTime(at)
	return &r, nil
}

// ListTracks returns the tracks of a release ordered by ordinal and label.
func (s *Service) ListTracks(ctx context.Context, releaseID int64) ([]Track, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT release_id, track_label, track_name, track_ordinal,
			mb_recording_id, mb_recording_override, mb_match_method,
			key, chords_key, bpm, mb_matched_at
		FROM tracks WHERE release_id = ?
		ORDER BY track_ordinal, track_label
	`, releaseID)
	if err != nil {
		return nil, fmt.Errorf("listing tracks of %d: %w", releaseID, err)
	}
	defer rows.Close() //nolint:errcheck

	var out []Track
	for rows.Next() {
		var (
			t                         Track
			rec, override, method, at sql.NullString
			key, chords               sql.NullString
			bpm                       sql.NullFloat64
		)
		if err := rows.Scan(&t.ReleaseID, &t.Label, &t.Name, &t.Ordinal,
			&rec, &override, &method, &key, &chords, &bpm, &at); err != nil {
			return nil, fmt.Errorf("scanning track: %w", err)
		}
		t.MBRecordingID = rec.String
		t.MBRecordingOverride = override.String
		t.MBMatchMethod = method.String
		t.Key = stringPtr(key)
		t.ChordsKey = stringPtr(chords)
		if bpm.Valid {
			v := bpm.Float64
			t.BPM = &v
		}
		t.MBMatchedAt = parseNullableTime(at)
		out = append(out, t)
	}
	return out, rows.Err()
}

// PendingTargets returns the identities a batch run should resolve, in
// release, ordinal and label order.
func (s *Service) PendingTargets(ctx context.Context, p PendingParams) ([]match.Target, error) {
	query := `
		SELECT r.discogs_id, r.title, r.catalog_number, r.artist,
			t.track_name, t.track_label, t.track_ordinal,
			t.mb_recording_override, t.mb_recording_id
		FROM tracks t
		JOIN releases r ON r.discogs_id = t.release_id
		WHERE 1 = 1`
	var args []any

	if !p.Force {
		query += ` AND (t.key IS NULL OR t.chords_key IS NULL OR t.bpm IS NULL)`
	}
	if p.SkipUnmatched {
		query += ` AND (t.mb_recording_id IS NOT NULL OR t.mb_recording_override IS NOT NULL)`
	}
	if p.ReleaseID != 0 {
		query += ` AND t.release_id = ?`
		args = append(args, p.ReleaseID)
	}
	query += ` ORDER BY t.release_id, t.track_ordinal, t.track_label LIMIT -1 OFFSET ?`
	args = append(args, max(p.Offset, 0))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("selecting pending targets: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []match.Target
	for rows.Next() {
		var (
			t             match.Target
			override, rec sql.NullString
		)
		if err := rows.Scan(&t.ReleaseID, &t.ReleaseTitle, &t.CatalogNumber, &t.Artist,
			&t.TrackName, &t.TrackLabel, &t.TrackOrdinal, &override, &rec); err != nil {
			return nil, fmt.Errorf("scanning pending target: %w", err)
		}
		t.RecordingOverride = override.String
		t.PriorRecordingMBID = rec.String
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pending targets: %w", err)
	}
	return out, nil
}

// UpsertReleaseMatch stores the MusicBrainz release matched to a source release.
func (s *Service) UpsertReleaseMatch(ctx context.Context, releaseID int64, mbid, method string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO releases (discogs_id, mb_release_id, mb_match_method, mb_matched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(discogs_id) DO UPDATE SET
			mb_release_id = excluded.mb_release_id,
			mb_match_method = excluded.mb_match_method,
			mb_matched_at = excluded.mb_matched_at
	`, releaseID, mbid, method, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upserting release match %d: %w", releaseID, err)
	}
	return nil
}

// UpsertTrackMatch stores what was learned about one track in a single
// statement. Absent values never overwrite stored ones.
func (s *Service) UpsertTrackMatch(ctx context.Context, m TrackMatch) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tracks (release_id, track_label, mb_recording_id, mb_match_method, key, chords_key, bpm, mb_matched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(release_id, track_label) DO UPDATE SET
			mb_recording_id = COALESCE(excluded.mb_recording_id, mb_recording_id),
			mb_match_method = COALESCE(excluded.mb_match_method, mb_match_method),
			key = COALESCE(excluded.key, key),
			chords_key = COALESCE(excluded.chords_key, chords_key),
			bpm = COALESCE(excluded.bpm, bpm),
			mb_matched_at = excluded.mb_matched_at
	`,
		m.ReleaseID, m.TrackLabel,
		nullString(m.RecordingMBID), nullString(m.Method),
		nullStringPtr(m.Key), nullStringPtr(m.ChordsKey), nullFloatPtr(m.BPM),
		s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting track match %d/%s: %w", m.ReleaseID, m.TrackLabel, err)
	}
	return nil
}

// SaveBackfill refreshes a cached release and its tracklist from the source
// catalog in one transaction. Existing match columns are kept.
func (s *Service) SaveBackfill(ctx context.Context, rel *provider.SourceRelease) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning back-fill of %d: %w", rel.ID, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO releases (discogs_id, title, catalog_number, artist)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(discogs_id) DO UPDATE SET
			title = CASE WHEN excluded.title <> '' THEN excluded.title ELSE title END,
			catalog_number = CASE WHEN excluded.catalog_number <> '' THEN excluded.catalog_number ELSE catalog_number END,
			artist = CASE WHEN excluded.artist <> '' THEN excluded.artist ELSE artist END
	`, rel.ID, rel.Title, rel.CatalogNumber, rel.Artist); err != nil {
		return fmt.Errorf("back-filling release %d: %w", rel.ID, err)
	}

	for _, tr := range rel.Tracks {
		if tr.Position == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tracks (release_id, track_label, track_name, track_ordinal)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(release_id, track_label) DO UPDATE SET
				track_name = excluded.track_name,
				track_ordinal = excluded.track_ordinal
		`, rel.ID, tr.Position, tr.Title, tr.Ordinal); err != nil {
			return fmt.Errorf("back-filling track %d/%s: %w", rel.ID, tr.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing back-fill of %d: %w", rel.ID, err)
	}
	return nil
}

// RecordRun stores a run summary, assigning an id when it has none.
func (s *Service) RecordRun(ctx context.Context, r *Run) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO match_runs (
			id, started_at, finished_at, options,
			processed, skipped, releases_matched, recordings_matched,
			keys_added, chords_keys_added, bpm_added,
			db_errors, not_found_errors, no_analysis, backfill_warnings, unavailable
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID, r.StartedAt.UTC().Format(time.RFC3339), r.FinishedAt.UTC().Format(time.RFC3339), r.Options,
		r.Processed, r.Skipped, r.ReleasesMatched, r.RecordingsMatched,
		r.KeysAdded, r.ChordsKeysAdded, r.BPMAdded,
		r.DBErrors, r.NotFoundErrors, r.NoAnalysis, r.BackfillWarnings, r.Unavailable,
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// ListRuns returns up to limit runs, newest first.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, options,
			processed, skipped, releases_matched, recordings_matched,
			keys_added, chords_keys_added, bpm_added,
			db_errors, not_found_errors, no_analysis, backfill_warnings, unavailable
		FROM match_runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished string
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.Options,
			&r.Processed, &r.Skipped, &r.ReleasesMatched, &r.RecordingsMatched,
			&r.KeysAdded, &r.ChordsKeysAdded, &r.BPMAdded,
			&r.DBErrors, &r.NotFoundErrors, &r.NoAnalysis, &r.BackfillWarnings, &r.Unavailable); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt = parseTime(started)
		r.FinishedAt = parseTime(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullStringPtr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullFloatPtr(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// parseTime parses a time string, handling both RFC3339 and SQLite datetime formats.
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}

func parseNullableTime(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t := parseTime(ns.String)
	return &t
}
