package backup

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sydlexius/brainzmatch/internal/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "brainzmatch.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSnapshot(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `INSERT INTO releases (discogs_id, title) VALUES (8633263, 'Call & Response')`); err != nil {
		t.Fatal(err)
	}

	svc := NewService(db, filepath.Join(t.TempDir(), "backups"), 3, testLogger())
	info, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if info.Size == 0 {
		t.Error("expected a non-empty snapshot")
	}

	snap, err := sql.Open("sqlite", info.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer snap.Close() //nolint:errcheck
	var title string
	if err := snap.QueryRowContext(ctx, `SELECT title FROM releases WHERE discogs_id = 8633263`).Scan(&title); err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	if title != "Call & Response" {
		t.Errorf("title = %q", title)
	}
}

func TestPrune_KeepsNewest(t *testing.T) {
	db := setupTestDB(t)
	dir := filepath.Join(t.TempDir(), "backups")
	svc := NewService(db, dir, 2, testLogger())

	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		svc.now = func() time.Time { return at }
		if _, err := svc.Snapshot(context.Background()); err != nil {
			t.Fatalf("snapshot %d: %v", i, err)
		}
	}

	snaps, err := svc.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(snaps))
	}
	if !snaps[0].CreatedAt.Equal(base.Add(3*time.Hour)) || !snaps[1].CreatedAt.Equal(base.Add(2*time.Hour)) {
		t.Errorf("unexpected survivors %+v", snaps)
	}
}

func TestList_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"brainzmatch-20260401-090000.db", "notes.txt", "brainzmatch-latest.db"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	svc := NewService(nil, dir, 0, testLogger())
	snaps, err := svc.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 1 || snaps[0].Filename != "brainzmatch-20260401-090000.db" {
		t.Errorf("unexpected list %+v", snaps)
	}

	missing := NewService(nil, filepath.Join(dir, "absent"), 0, testLogger())
	if snaps, err := missing.List(); err != nil || snaps != nil {
		t.Errorf("missing dir: %v, %v", snaps, err)
	}
}
