package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/continuum/internal/models"
	"github.com/desertthunder/continuum/internal/shared"
)

// MixRepository implements [models.Repository] for [models.MixRecord] persistence.
type MixRepository struct {
	db *sql.DB
}

// NewMixRepository creates a new MixRepository with the given database connection
func NewMixRepository(db *sql.DB) *MixRepository {
	return &MixRepository{db: db}
}

const mixColumns = `
	id, sequence, auth_mode, source_mode, input, target_minutes,
	saved_url, created_at, updated_at, deleted_at
`

// Create inserts a mix and its entries with generated ID and sequence
func (r *MixRepository) Create(mix *models.MixRecord) error {
	if err := mix.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := NextSequence(tx, "mixes")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO mixes (
			id, sequence, auth_mode, source_mode, input, target_minutes,
			saved_url, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query,
		id,
		sequence,
		mix.AuthMode().String(),
		mix.SourceMode().String(),
		mix.Input(),
		mix.TargetMinutes(),
		nullString(mix.SavedURL()),
		mix.CreatedAt(),
		mix.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert mix: %w", err)
	}

	trackQuery := `
		INSERT INTO mix_tracks (
			mix_id, position, track_id, name, artist, album, uri, duration_ms,
			musical_key, mode, tempo, energy, bpm
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for i, t := range mix.Tracks() {
		_, err := tx.Exec(trackQuery,
			id, i, t.ID, t.Name, t.Artist, nullString(t.Album), t.URI, t.DurationMS,
			t.Key, t.Mode, t.Tempo, t.Energy, t.BPM,
		)
		if err != nil {
			return fmt.Errorf("failed to insert mix track %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mix: %w", err)
	}

	mix.SetID(id)
	mix.SetSequence(sequence)
	return nil
}

// Get retrieves a mix by ID with its entries, excluding soft-deleted mixes
func (r *MixRepository) Get(id string) (*models.MixRecord, error) {
	query := `SELECT ` + mixColumns + ` FROM mixes WHERE id = ? AND deleted_at IS NULL`
	return r.getOne(r.db.QueryRow(query, id), id)
}

// GetBySequence retrieves a mix by its sequence number
func (r *MixRepository) GetBySequence(sequence int) (*models.MixRecord, error) {
	query := `SELECT ` + mixColumns + ` FROM mixes WHERE sequence = ? AND deleted_at IS NULL`
	return r.getOne(r.db.QueryRow(query, sequence), fmt.Sprintf("#%d", sequence))
}

func (r *MixRepository) getOne(row *sql.Row, ref string) (*models.MixRecord, error) {
	mix, err := scanMix(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrMixNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query mix: %w", err)
	}

	tracks, err := r.tracks(mix.ID())
	if err != nil {
		return nil, err
	}
	mix.SetTracks(tracks)

	return mix, nil
}

// Update writes the saved URL of an existing mix; inputs and entries are immutable
func (r *MixRepository) Update(mix *models.MixRecord) error {
	if err := mix.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	mix.SetUpdatedAt(now)

	query := `
		UPDATE mixes
		SET saved_url = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, nullString(mix.SavedURL()), now, mix.ID())
	if err != nil {
		return fmt.Errorf("failed to update mix: %w", err)
	}

	return expectRow(result, mix.ID())
}

// SetSavedURL records where a mix was saved
func (r *MixRepository) SetSavedURL(id, url string) error {
	query := `
		UPDATE mixes
		SET saved_url = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, nullString(url), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update mix: %w", err)
	}

	return expectRow(result, id)
}

// Delete soft-deletes a mix by ID
func (r *MixRepository) Delete(id string) error {
	query := `
		UPDATE mixes
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete mix: %w", err)
	}

	return expectRow(result, id)
}

// List retrieves mixes newest first, without their entries.
//
// Supported criteria: "auth_mode" and "source_mode" (wire strings), "saved" (bool), "limit" (int).
func (r *MixRepository) List(criteria map[string]any) ([]*models.MixRecord, error) {
	query := `SELECT ` + mixColumns + ` FROM mixes WHERE deleted_at IS NULL`

	args := []any{}

	if authMode, ok := criteria["auth_mode"].(string); ok && authMode != "" {
		query += " AND auth_mode = ?"
		args = append(args, authMode)
	}

	if sourceMode, ok := criteria["source_mode"].(string); ok && sourceMode != "" {
		query += " AND source_mode = ?"
		args = append(args, sourceMode)
	}

	if saved, ok := criteria["saved"].(bool); ok {
		if saved {
			query += " AND saved_url IS NOT NULL"
		} else {
			query += " AND saved_url IS NULL"
		}
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mixes: %w", err)
	}
	defer rows.Close()

	var mixes []*models.MixRecord
	for rows.Next() {
		mix, err := scanMix(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mix: %w", err)
		}
		mixes = append(mixes, mix)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return mixes, nil
}

// CountTracks returns the number of entries of each mix, keyed by mix ID.
func (r *MixRepository) CountTracks() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT mix_id, COUNT(*) FROM mix_tracks GROUP BY mix_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to count mix tracks: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var (
			id    string
			count int
		)
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[id] = count
	}

	return counts, rows.Err()
}

func (r *MixRepository) tracks(mixID string) (models.Mix, error) {
	query := `
		SELECT track_id, name, artist, album, uri, duration_ms, musical_key, mode, tempo, energy, bpm
		FROM mix_tracks
		WHERE mix_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, mixID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mix tracks: %w", err)
	}
	defer rows.Close()

	var tracks models.Mix
	for rows.Next() {
		var (
			t     models.EnrichedTrack
			album sql.NullString
		)
		err := rows.Scan(&t.ID, &t.Name, &t.Artist, &album, &t.URI, &t.DurationMS, &t.Key, &t.Mode, &t.Tempo, &t.Energy, &t.BPM)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mix track: %w", err)
		}
		t.Album = album.String
		tracks = append(tracks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMix(row scanner) (*models.MixRecord, error) {
	var (
		id            string
		sequence      int
		authMode      string
		sourceMode    string
		input         string
		targetMinutes float64
		savedURL      sql.NullString
		createdAt     time.Time
		updatedAt     time.Time
		deletedAt     sql.NullTime
	)

	err := row.Scan(&id, &sequence, &authMode, &sourceMode, &input, &targetMinutes, &savedURL, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	am, err := models.ParseAuthMode(authMode)
	if err != nil {
		return nil, fmt.Errorf("mix %s: %w", id, err)
	}
	sm, err := models.ParseSourceMode(sourceMode)
	if err != nil {
		return nil, fmt.Errorf("mix %s: %w", id, err)
	}

	mix := models.NewMixRecord(sequence, am, sm, input, targetMinutes, nil)
	mix.SetID(id)
	mix.SetSavedURL(savedURL.String)
	mix.SetCreatedAt(createdAt)
	mix.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		mix.SetDeletedAt(&deletedAt.Time)
	}

	return mix, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func expectRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s (or already deleted)", shared.ErrMixNotFound, id)
	}
	return nil
}

var _ models.Repository[*models.MixRecord] = (*MixRepository)(nil)
