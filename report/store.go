package report

import (
	"context"
	"database/sql"
	"embed"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store keeps run summaries and per-track metrics in SQLite database.
type Store struct {
	*sql.DB
}

// OpenStore opens (or creates) database at path and applies pending migrations
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't open database '%s'", path)
	}
	store := &Store{db}
	if err := store.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// MigrateUp runs all embedded migrations up to the latest version.
func (s *Store) MigrateUp() error {
	m, err := s.newMigrate()
	if err != nil {
		return err
	}
	// m is not closed: it would close the underlying connection
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "migration up failed")
	}
	return nil
}

// MigrateVersion returns current schema version, 0 when nothing applied
func (s *Store) MigrateVersion() (uint, bool, error) {
	m, err := s.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if err != nil && errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (s *Store) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open embedded migrations")
	}
	driver, err := sqlite.WithInstance(s.DB, &sqlite.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create sqlite driver")
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create migrate instance")
	}
	m.Log = &migrateLogger{}
	return m, nil
}

// migrateLogger implements migrate.Logger
type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}

// SaveRun stores document. Saving the same run again replaces its rows.
func (s *Store) SaveRun(ctx context.Context, doc Document) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "Can't begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tracks WHERE run_id = ?`, doc.RunID); err != nil {
		return errors.Wrap(err, "Can't clear previous tracks")
	}
	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (
			run_id, generated_at, frames_processed, trajectory_count,
			progressive_motility_pct, mean_vigor_index, concentration_per_ml,
			microns_per_pixel, fps, drop_volume_ul, tracker
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.RunID, doc.GeneratedAt.UTC().Format(time.RFC3339Nano), doc.FramesProcessed, doc.Summary.TrajectoryCount,
		doc.Summary.ProgressiveMotilityPct, doc.Summary.MeanVigorIndex, doc.ConcentrationPerML,
		doc.Params.MicronsPerPixel, doc.Params.FPS, doc.Params.ReferenceVolumeUL, doc.Params.Tracker,
	)
	if err != nil {
		return errors.Wrap(err, "Can't insert run")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tracks (
			run_id, track_id, n_points, distance_px, velocity_um_s,
			linearity, vigor_index, vigor_class
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "Can't prepare track insert")
	}
	defer stmt.Close()
	for _, t := range doc.Tracks {
		_, err := stmt.ExecContext(ctx, doc.RunID, t.TrackID, t.Points, t.DistancePx, t.VelocityUmPerS, t.Linearity, t.VigorIndex, string(t.VigorClass))
		if err != nil {
			return errors.Wrapf(err, "Can't insert track %d", t.TrackID)
		}
	}
	return tx.Commit()
}

// TrackCount returns number of stored tracks of the run
func (s *Store) TrackCount(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, "Can't count tracks")
	}
	return n, nil
}

// RunSummary loads stored summary of the run
func (s *Store) RunSummary(ctx context.Context, runID string) (Summary, error) {
	var summary Summary
	err := s.QueryRowContext(ctx, `
		SELECT progressive_motility_pct, mean_vigor_index, trajectory_count
		FROM runs WHERE run_id = ?`, runID,
	).Scan(&summary.ProgressiveMotilityPct, &summary.MeanVigorIndex, &summary.TrajectoryCount)
	if err != nil {
		return summary, errors.Wrapf(err, "Can't load run '%s'", runID)
	}
	return summary, nil
}
