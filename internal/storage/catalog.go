// Package storage keeps a SQLite catalog of pipeline runs: per-interview
// aggregation outcomes and the sample artifacts written for them.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// InterviewRecord is one interview's aggregation outcome.
type InterviewRecord struct {
	InterviewID     string
	InterviewerCode string
	BlockCount      int
	MissingFileIDs  []int
	UpdatedAt       time.Time
}

// SampleRecord is one written sample artifact pair. GroupID is -1 for a
// full-interview unit.
type SampleRecord struct {
	ID           string
	InterviewID  string
	UnitIndex    int
	GroupID      int
	AudioPath    string
	MetadataPath string
	CreatedAt    time.Time
}

// Catalog is the SQLite-backed run catalog.
type Catalog struct {
	db *sql.DB
}

// NewCatalog opens or creates the catalog database at dbPath and
// initializes the schema. Parent directories are created if they do not
// exist.
func NewCatalog(dbPath string) (*Catalog, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Catalog{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS interviews (
		id TEXT PRIMARY KEY,
		interviewer_code TEXT NOT NULL,
		block_count INTEGER NOT NULL,
		missing_file_ids TEXT,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS samples (
		id TEXT PRIMARY KEY,
		interview_id TEXT NOT NULL,
		unit_index INTEGER NOT NULL,
		group_id INTEGER NOT NULL,
		audio_path TEXT NOT NULL,
		metadata_path TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (interview_id) REFERENCES interviews(id)
	);

	CREATE INDEX IF NOT EXISTS idx_samples_interview_id ON samples(interview_id);
	`
	_, err := db.Exec(schema)
	return err
}

// UpsertInterview inserts or updates one interview's outcome, keyed by
// interview id so reruns update in place.
func (c *Catalog) UpsertInterview(ctx context.Context, rec *InterviewRecord) error {
	missingJSON, err := json.Marshal(rec.MissingFileIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal missing file ids: %w", err)
	}
	rec.UpdatedAt = time.Now()

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO interviews (id, interviewer_code, block_count, missing_file_ids, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			interviewer_code = excluded.interviewer_code,
			block_count = excluded.block_count,
			missing_file_ids = excluded.missing_file_ids,
			updated_at = excluded.updated_at`,
		rec.InterviewID, rec.InterviewerCode, rec.BlockCount, string(missingJSON), rec.UpdatedAt,
	)
	return err
}

// GetInterview returns one interview's recorded outcome.
func (c *Catalog) GetInterview(ctx context.Context, id string) (*InterviewRecord, error) {
	var rec InterviewRecord
	var missingJSON string

	err := c.db.QueryRowContext(ctx,
		`SELECT id, interviewer_code, block_count, missing_file_ids, updated_at
		 FROM interviews WHERE id = ?`, id,
	).Scan(&rec.InterviewID, &rec.InterviewerCode, &rec.BlockCount, &missingJSON, &rec.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("interview not found: %s", id)
	}
	if err != nil {
		return nil, err
	}

	if missingJSON != "" {
		if err := json.Unmarshal([]byte(missingJSON), &rec.MissingFileIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal missing file ids: %w", err)
		}
	}
	return &rec, nil
}

// RecordSample inserts one sample artifact record, assigning an id when
// the caller did not.
func (c *Catalog) RecordSample(ctx context.Context, rec *SampleRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CreatedAt = time.Now()

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO samples (id, interview_id, unit_index, group_id, audio_path, metadata_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.InterviewID, rec.UnitIndex, rec.GroupID, rec.AudioPath, rec.MetadataPath, rec.CreatedAt,
	)
	return err
}

// ListSamples returns the sample records for one interview, in unit order.
func (c *Catalog) ListSamples(ctx context.Context, interviewID string) ([]*SampleRecord, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, interview_id, unit_index, group_id, audio_path, metadata_path, created_at
		 FROM samples WHERE interview_id = ?
		 ORDER BY unit_index, group_id`, interviewID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*SampleRecord
	for rows.Next() {
		var rec SampleRecord
		if err := rows.Scan(&rec.ID, &rec.InterviewID, &rec.UnitIndex, &rec.GroupID,
			&rec.AudioPath, &rec.MetadataPath, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}
