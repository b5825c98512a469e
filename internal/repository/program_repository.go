package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/swediversity/swediversity-api/internal/models"
)

const programColumns = `id, name, code, university_name, description, prerequisites, tuition_fee, category, created_at, updated_at`

// ProgramRepository provides database access for degree programs.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository creates a new instance of ProgramRepository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// List returns all programs ordered by name.
func (r *ProgramRepository) List(ctx context.Context) ([]models.Program, error) {
	const query = `SELECT ` + programColumns + ` FROM programs ORDER BY name`
	var programs []models.Program
	if err := r.db.SelectContext(ctx, &programs, query); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programs, nil
}

// ListByUniversity returns the programs offered by a university.
func (r *ProgramRepository) ListByUniversity(ctx context.Context, universityName string) ([]models.Program, error) {
	const query = `SELECT ` + programColumns + ` FROM programs WHERE LOWER(university_name) = LOWER($1) ORDER BY name`
	var programs []models.Program
	if err := r.db.SelectContext(ctx, &programs, query, universityName); err != nil {
		return nil, fmt.Errorf("list programs by university: %w", err)
	}
	return programs, nil
}

// ListMatches returns the prerequisite filter projection for every program.
// The subset test against the expanded student set happens in the service;
// the vocabulary is small enough that scanning all programs is cheap.
func (r *ProgramRepository) ListMatches(ctx context.Context) ([]models.ProgramMatch, error) {
	const query = `SELECT id, name, prerequisites FROM programs ORDER BY name`
	var matches []models.ProgramMatch
	if err := r.db.SelectContext(ctx, &matches, query); err != nil {
		return nil, fmt.Errorf("list program matches: %w", err)
	}
	return matches, nil
}

// FindByID returns a program by identifier.
func (r *ProgramRepository) FindByID(ctx context.Context, id string) (*models.Program, error) {
	const query = `SELECT ` + programColumns + ` FROM programs WHERE id = $1 LIMIT 1`
	var program models.Program
	if err := r.db.GetContext(ctx, &program, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find program by id: %w", err)
	}
	return &program, nil
}

// FindByName returns a program by exact name, case-insensitively.
func (r *ProgramRepository) FindByName(ctx context.Context, name string) (*models.Program, error) {
	const query = `SELECT ` + programColumns + ` FROM programs WHERE LOWER(name) = LOWER($1) LIMIT 1`
	var program models.Program
	if err := r.db.GetContext(ctx, &program, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find program by name: %w", err)
	}
	return &program, nil
}

// SearchCandidates returns programs whose name contains any of the query
// tokens. First retrieval stage of the fuzzy search; the service re-ranks.
func (r *ProgramRepository) SearchCandidates(ctx context.Context, tokens []string) ([]models.Program, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	conditions := make([]string, 0, len(tokens))
	args := make([]interface{}, 0, len(tokens))
	for _, token := range tokens {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)+1))
		args = append(args, "%"+token+"%")
	}
	query := fmt.Sprintf("SELECT %s FROM programs WHERE %s ORDER BY name", programColumns, strings.Join(conditions, " OR "))

	var programs []models.Program
	if err := r.db.SelectContext(ctx, &programs, query, args...); err != nil {
		return nil, fmt.Errorf("search programs: %w", err)
	}
	return programs, nil
}

// Create inserts a new program.
func (r *ProgramRepository) Create(ctx context.Context, program *models.Program) error {
	if program.ID == "" {
		program.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	program.CreatedAt = now
	program.UpdatedAt = now
	if program.Prerequisites == nil {
		program.Prerequisites = pq.StringArray{}
	}

	const query = `INSERT INTO programs (id, name, code, university_name, description, prerequisites, tuition_fee, category, created_at, updated_at) VALUES (:id, :name, :code, :university_name, :description, :prerequisites, :tuition_fee, :category, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, program); err != nil {
		return fmt.Errorf("create program: %w", err)
	}
	return nil
}

// Update updates the mutable fields of a program.
func (r *ProgramRepository) Update(ctx context.Context, program *models.Program) error {
	program.UpdatedAt = time.Now().UTC()
	const query = `UPDATE programs SET name = :name, code = :code, university_name = :university_name, description = :description, prerequisites = :prerequisites, tuition_fee = :tuition_fee, category = :category, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, program)
	if err != nil {
		return fmt.Errorf("update program: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a program.
func (r *ProgramRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM programs WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
