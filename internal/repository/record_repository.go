package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/swediversity/swediversity-api/internal/models"
)

const recordColumns = `id, program_name, min_score, num_of_applicants, num_of_qualified, accepted_applicants, year, num_of_first_choice, round, selection, selection_group, created_at`

// RecordRepository provides database access for admission cutoff records.
type RecordRepository struct {
	db *sqlx.DB
}

// NewRecordRepository creates a new instance of RecordRepository.
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// ListByProgram returns every record for a program, newest year first.
func (r *RecordRepository) ListByProgram(ctx context.Context, programName string) ([]models.Record, error) {
	const query = `SELECT ` + recordColumns + ` FROM records WHERE LOWER(program_name) = LOWER($1) ORDER BY year DESC, round, selection`
	var records []models.Record
	if err := r.db.SelectContext(ctx, &records, query, programName); err != nil {
		return nil, fmt.Errorf("list records by program: %w", err)
	}
	return records, nil
}

// ListAll returns every record. Used by the export endpoint.
func (r *RecordRepository) ListAll(ctx context.Context) ([]models.Record, error) {
	const query = `SELECT ` + recordColumns + ` FROM records ORDER BY program_name, year DESC`
	var records []models.Record
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// FindByID returns a record by identifier.
func (r *RecordRepository) FindByID(ctx context.Context, id string) (*models.Record, error) {
	const query = `SELECT ` + recordColumns + ` FROM records WHERE id = $1 LIMIT 1`
	var record models.Record
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find record by id: %w", err)
	}
	return &record, nil
}

// Create inserts a new record.
func (r *RecordRepository) Create(ctx context.Context, record *models.Record) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO records (id, program_name, min_score, num_of_applicants, num_of_qualified, accepted_applicants, year, num_of_first_choice, round, selection, selection_group, created_at) VALUES (:id, :program_name, :min_score, :num_of_applicants, :num_of_qualified, :accepted_applicants, :year, :num_of_first_choice, :round, :selection, :selection_group, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

// Delete removes a record.
func (r *RecordRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM records WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
