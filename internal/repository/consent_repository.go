package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/swediversity/swediversity-api/internal/models"
)

// ConsentRepository provides database access for consent forms.
type ConsentRepository struct {
	db *sqlx.DB
}

// NewConsentRepository creates a new instance of ConsentRepository.
func NewConsentRepository(db *sqlx.DB) *ConsentRepository {
	return &ConsentRepository{db: db}
}

// FindByID returns a consent form by identifier.
func (r *ConsentRepository) FindByID(ctx context.Context, id string) (*models.ConsentForm, error) {
	const query = `SELECT id, topic, collected_data, signed_at, signature FROM consent_forms WHERE id = $1 LIMIT 1`
	var form models.ConsentForm
	if err := r.db.GetContext(ctx, &form, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find consent form by id: %w", err)
	}
	return &form, nil
}

// Create inserts a new consent form.
func (r *ConsentRepository) Create(ctx context.Context, form *models.ConsentForm) error {
	if form.ID == "" {
		form.ID = uuid.NewString()
	}
	if form.SignedAt.IsZero() {
		form.SignedAt = time.Now().UTC()
	}
	if form.CollectedData == nil {
		form.CollectedData = pq.StringArray{}
	}

	const query = `INSERT INTO consent_forms (id, topic, collected_data, signed_at, signature) VALUES (:id, :topic, :collected_data, :signed_at, :signature)`
	if _, err := r.db.NamedExecContext(ctx, query, form); err != nil {
		return fmt.Errorf("create consent form: %w", err)
	}
	return nil
}

// Sign attaches the signing user to an existing form.
func (r *ConsentRepository) Sign(ctx context.Context, id, userID string) error {
	const query = `UPDATE consent_forms SET signature = $2, signed_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("sign consent form: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
