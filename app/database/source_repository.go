package database

import (
	"database/sql"
	"fmt"
	"time"
)

// SourceRepositoryImpl handles database operations for feedback sources
type SourceRepositoryImpl struct {
	db *DB
}

var _ SourceRepository = (*SourceRepositoryImpl)(nil)

func NewSourceRepository(db *DB) *SourceRepositoryImpl {
	return &SourceRepositoryImpl{db: db}
}

// UpsertSource registers a configured source, updating the platform if the
// configuration changed.
func (r *SourceRepositoryImpl) UpsertSource(sourceName, platform string) error {
	_, err := r.db.Exec(`
		INSERT INTO sources (name, platform)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET
			platform = EXCLUDED.platform,
			updated_at = NOW()
	`, sourceName, platform)

	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}

	return nil
}

func (r *SourceRepositoryImpl) GetSource(sourceName string) (*Source, error) {
	var source Source
	var lastSynced, nextSync sql.NullTime

	err := r.db.QueryRow(`
		SELECT id, name, platform, last_synced_at, next_sync_at, created_at, updated_at
		FROM sources
		WHERE name = $1
	`, sourceName).Scan(
		&source.ID, &source.Name, &source.Platform,
		&lastSynced, &nextSync, &source.CreatedAt, &source.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}

	if lastSynced.Valid {
		source.LastSyncedAt = &lastSynced.Time
	}
	if nextSync.Valid {
		source.NextSyncAt = &nextSync.Time
	}

	return &source, nil
}

func (r *SourceRepositoryImpl) GetSourceCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM sources").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get source count: %w", err)
	}
	return count, nil
}

// UpdateSyncStatus records a completed sync and schedules the next one.
func (r *SourceRepositoryImpl) UpdateSyncStatus(sourceName string, nextSync time.Time) error {
	result, err := r.db.Exec(`
		UPDATE sources
		SET last_synced_at = NOW(), next_sync_at = $2, updated_at = NOW()
		WHERE name = $1
	`, sourceName, nextSync)
	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("source not found: %s", sourceName)
	}

	return nil
}
