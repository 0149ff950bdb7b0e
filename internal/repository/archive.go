package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
	"youtube-tracker/internal/config"
	"youtube-tracker/internal/constants"
	"youtube-tracker/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

const upsertChannelSnapshot = `
INSERT INTO channel_snapshots (id, day, entity, channel_id, view_count, taken_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (day, entity) DO UPDATE SET
    channel_id = excluded.channel_id,
    view_count = excluded.view_count,
    taken_at = excluded.taken_at,
    updated_at = excluded.updated_at`

// ArchiveRepository keeps every snapshot in sqlite, beyond the CSV retention window.
// A nil db turns every method into a no-op.
type ArchiveRepository struct {
	db     *sql.DB
	loc    *time.Location
	logger zerolog.Logger
}

func NewArchiveRepository(sqlDB *sql.DB, cfg *config.Config, logger zerolog.Logger) *ArchiveRepository {
	return &ArchiveRepository{
		db:     sqlDB,
		loc:    cfg.Timezone,
		logger: logger,
	}
}

func (r *ArchiveRepository) Enabled() bool {
	return r.db != nil
}

// UpsertSnapshot writes one row per roster entity; a later snapshot on the same day
// overwrites the earlier one.
func (r *ArchiveRepository) UpsertSnapshot(ctx context.Context, roster domain.Roster, snapshot domain.Snapshot) error {
	if !r.Enabled() {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertChannelSnapshot)
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot upsert: %w", err)
	}
	defer stmt.Close()

	day := snapshot.Timestamp.In(r.loc).Format(constants.DayLayout)
	now := time.Now()

	for _, entity := range roster.Entities() {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}

		var count sql.NullInt64
		if v, ok := snapshot.Value(entity.Name); ok {
			count = sql.NullInt64{Int64: v, Valid: true}
		}

		if _, err := stmt.ExecContext(ctx, id, day, entity.Name, entity.ChannelID, count, snapshot.Timestamp, now, now); err != nil {
			return fmt.Errorf("failed to upsert snapshot for %s: %w", entity.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	r.logger.Debug().Str("day", day).Int("channels", len(roster.Entities())).Msg("snapshot archived")
	return nil
}

func (r *ArchiveRepository) CountDays(ctx context.Context) (int, error) {
	if !r.Enabled() {
		return 0, nil
	}

	var days int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT day) FROM channel_snapshots`).Scan(&days); err != nil {
		return 0, fmt.Errorf("failed to count archived days: %w", err)
	}
	return days, nil
}
