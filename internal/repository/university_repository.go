package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/swediversity/swediversity-api/internal/models"
)

// UniversityRepository provides database access for universities.
type UniversityRepository struct {
	db *sqlx.DB
}

// NewUniversityRepository creates a new instance of UniversityRepository.
func NewUniversityRepository(db *sqlx.DB) *UniversityRepository {
	return &UniversityRepository{db: db}
}

// List returns all universities ordered by name.
func (r *UniversityRepository) List(ctx context.Context) ([]models.University, error) {
	const query = `SELECT id, name, city, created_at, updated_at FROM universities ORDER BY name`
	var universities []models.University
	if err := r.db.SelectContext(ctx, &universities, query); err != nil {
		return nil, fmt.Errorf("list universities: %w", err)
	}
	return universities, nil
}

// ListByCity returns universities located in the given city.
func (r *UniversityRepository) ListByCity(ctx context.Context, city string) ([]models.University, error) {
	const query = `SELECT id, name, city, created_at, updated_at FROM universities WHERE LOWER(city) = LOWER($1) ORDER BY name`
	var universities []models.University
	if err := r.db.SelectContext(ctx, &universities, query); err != nil {
		return nil, fmt.Errorf("list universities by city: %w", err)
	}
	return universities, nil
}

// FindByID returns a university by identifier.
func (r *UniversityRepository) FindByID(ctx context.Context, id string) (*models.University, error) {
	const query = `SELECT id, name, city, created_at, updated_at FROM universities WHERE id = $1 LIMIT 1`
	var university models.University
	if err := r.db.GetContext(ctx, &university, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find university by id: %w", err)
	}
	return &university, nil
}

// FindByName returns a university by exact name, case-insensitively.
func (r *UniversityRepository) FindByName(ctx context.Context, name string) (*models.University, error) {
	const query = `SELECT id, name, city, created_at, updated_at FROM universities WHERE LOWER(name) = LOWER($1) LIMIT 1`
	var university models.University
	if err := r.db.GetContext(ctx, &university, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find university by name: %w", err)
	}
	return &university, nil
}

// SearchCandidates returns universities whose name contains any of the query
// tokens. First retrieval stage of the fuzzy search; the service re-ranks.
func (r *UniversityRepository) SearchCandidates(ctx context.Context, tokens []string) ([]models.University, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	conditions := make([]string, 0, len(tokens))
	args := make([]interface{}, 0, len(tokens))
	for _, token := range tokens {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)+1))
		args = append(args, "%"+token+"%")
	}
	query := fmt.Sprintf("SELECT id, name, city, created_at, updated_at FROM universities WHERE %s ORDER BY name", strings.Join(conditions, " OR "))

	var universities []models.University
	if err := r.db.SelectContext(ctx, &universities, query, args...); err != nil {
		return nil, fmt.Errorf("search universities: %w", err)
	}
	return universities, nil
}

// Create inserts a new university.
func (r *UniversityRepository) Create(ctx context.Context, university *models.University) error {
	if university.ID == "" {
		university.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	university.CreatedAt = now
	university.UpdatedAt = now

	const query = `INSERT INTO universities (id, name, city, created_at, updated_at) VALUES (:id, :name, :city, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, university); err != nil {
		return fmt.Errorf("create university: %w", err)
	}
	return nil
}

// Update updates the mutable fields of a university.
func (r *UniversityRepository) Update(ctx context.Context, university *models.University) error {
	university.UpdatedAt = time.Now().UTC()
	const query = `UPDATE universities SET name = :name, city = :city, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, university)
	if err != nil {
		return fmt.Errorf("update university: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a university.
func (r *UniversityRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM universities WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete university: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
