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

// userRow is the flat users projection. Variant columns are nullable; the
// kind column decides which of them are folded into the user payload.
type userRow struct {
	ID           string          `db:"id"`
	Email        string          `db:"email"`
	UserName     string          `db:"user_name"`
	PasswordHash string          `db:"password_hash"`
	Kind         models.UserKind `db:"kind"`
	Admin        bool            `db:"admin"`
	RefreshToken *string         `db:"refresh_token"`
	MeritPoint   *float64        `db:"merit_point"`
	Prereqs      pq.StringArray  `db:"prerequisites"`
	ProgramID    *string         `db:"studying_program_id"`
	UniversityID *string         `db:"studying_university_id"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

const userColumns = `id, email, user_name, password_hash, kind, admin, refresh_token, merit_point, prerequisites, studying_program_id, studying_university_id, created_at, updated_at`

func (row *userRow) toModel() *models.User {
	user := &models.User{
		ID:           row.ID,
		Email:        row.Email,
		UserName:     row.UserName,
		PasswordHash: row.PasswordHash,
		Kind:         row.Kind,
		Admin:        row.Admin,
		RefreshToken: row.RefreshToken,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	switch row.Kind {
	case models.UserKindProspective:
		prereqs := row.Prereqs
		if prereqs == nil {
			prereqs = pq.StringArray{}
		}
		user.Prospective = &models.ProspectiveProfile{MeritPoint: row.MeritPoint, Prerequisites: prereqs}
	case models.UserKindStudent:
		user.Student = &models.StudentProfile{ProgramID: row.ProgramID, UniversityID: row.UniversityID}
	}
	return user
}

// UserRepository provides database access for accounts, their variant
// payloads and the prospective-student interest lists.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return row.toModel(), nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return row.toModel(), nil
}

// FindByUserName returns a user by user name. Used for the availability check.
func (r *UserRepository) FindByUserName(ctx context.Context, userName string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE user_name = $1 LIMIT 1`
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, userName); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by user name: %w", err)
	}
	return row.toModel(), nil
}

// FindByRefreshToken returns the user holding the given refresh token.
func (r *UserRepository) FindByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE refresh_token = $1 LIMIT 1`
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, token); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by refresh token: %w", err)
	}
	return row.toModel(), nil
}

// List returns all users, newest first.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]models.User, 0, len(rows))
	for i := range rows {
		users = append(users, *rows[i].toModel())
	}
	return users, nil
}

// Create inserts a new user row with its variant columns.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	row := userRow{
		ID:           user.ID,
		Email:        user.Email,
		UserName:     user.UserName,
		PasswordHash: user.PasswordHash,
		Kind:         user.Kind,
		Admin:        user.Admin,
		RefreshToken: user.RefreshToken,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
	switch user.Kind {
	case models.UserKindProspective:
		if user.Prospective != nil {
			row.MeritPoint = user.Prospective.MeritPoint
			row.Prereqs = user.Prospective.Prerequisites
		}
		if row.Prereqs == nil {
			row.Prereqs = pq.StringArray{}
		}
	case models.UserKindStudent:
		if user.Student != nil {
			row.ProgramID = user.Student.ProgramID
			row.UniversityID = user.Student.UniversityID
		}
	}

	const query = `INSERT INTO users (id, email, user_name, password_hash, kind, admin, refresh_token, merit_point, prerequisites, studying_program_id, studying_university_id, created_at, updated_at) VALUES (:id, :email, :user_name, :password_hash, :kind, :admin, :refresh_token, :merit_point, :prerequisites, :studying_program_id, :studying_university_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateRefreshToken replaces the stored refresh token for a user. A nil
// token clears it.
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, id string, token *string) error {
	const query = `UPDATE users SET refresh_token = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, token, time.Now().UTC()); err != nil {
		return fmt.Errorf("update refresh token: %w", err)
	}
	return nil
}

// UpdatePassword updates the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, time.Now().UTC()); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// UpdateMeritPoint sets the merit point of a prospective student.
func (r *UserRepository) UpdateMeritPoint(ctx context.Context, id string, meritPoint float64) error {
	const query = `UPDATE users SET merit_point = $2, updated_at = $3 WHERE id = $1 AND kind = 'prospective'`
	res, err := r.db.ExecContext(ctx, query, id, meritPoint, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update merit point: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdatePrerequisites replaces the held prerequisite set of a prospective
// student.
func (r *UserRepository) UpdatePrerequisites(ctx context.Context, id string, prerequisites []string) error {
	const query = `UPDATE users SET prerequisites = $2, updated_at = $3 WHERE id = $1 AND kind = 'prospective'`
	res, err := r.db.ExecContext(ctx, query, id, pq.StringArray(prerequisites), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update prerequisites: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a user row. Interest rows go with it via ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListProgramInterests returns the program ids on a user's interest list.
func (r *UserRepository) ListProgramInterests(ctx context.Context, userID string) ([]string, error) {
	const query = `SELECT program_id FROM user_program_interests WHERE user_id = $1 ORDER BY created_at`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("list program interests: %w", err)
	}
	return ids, nil
}

// ListUniversityInterests returns the university ids on a user's interest list.
func (r *UserRepository) ListUniversityInterests(ctx context.Context, userID string) ([]string, error) {
	const query = `SELECT university_id FROM user_university_interests WHERE user_id = $1 ORDER BY created_at`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("list university interests: %w", err)
	}
	return ids, nil
}

// AddProgramInterest inserts the interest row and bumps the program like
// counter inside one transaction. Returns sql.ErrNoRows via the insert's
// unique violation when the pair already exists.
func (r *UserRepository) AddProgramInterest(ctx context.Context, userID, programID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add program interest: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	const insertQuery = `INSERT INTO user_program_interests (user_id, program_id, created_at) VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, insertQuery, userID, programID, now); err != nil {
		return fmt.Errorf("insert program interest: %w", err)
	}

	const counterQuery = `INSERT INTO program_like_stats (program_id, num_of_likes, created_at) VALUES ($1, 1, $2) ON CONFLICT (program_id) DO UPDATE SET num_of_likes = program_like_stats.num_of_likes + 1`
	if _, err := tx.ExecContext(ctx, counterQuery, programID, now); err != nil {
		return fmt.Errorf("increment program likes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit add program interest: %w", err)
	}
	return nil
}

// RemoveProgramInterest deletes the interest row and decrements the like
// counter, clamped at zero, inside one transaction. A missing counter row
// surfaces as sql.ErrNoRows.
func (r *UserRepository) RemoveProgramInterest(ctx context.Context, userID, programID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove program interest: %w", err)
	}
	defer tx.Rollback()

	const deleteQuery = `DELETE FROM user_program_interests WHERE user_id = $1 AND program_id = $2`
	res, err := tx.ExecContext(ctx, deleteQuery, userID, programID)
	if err != nil {
		return fmt.Errorf("delete program interest: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}

	const counterQuery = `UPDATE program_like_stats SET num_of_likes = GREATEST(num_of_likes - 1, 0) WHERE program_id = $1`
	res, err = tx.ExecContext(ctx, counterQuery, programID)
	if err != nil {
		return fmt.Errorf("decrement program likes: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit remove program interest: %w", err)
	}
	return nil
}

// AddUniversityInterest inserts the interest row and bumps the university
// like counter inside one transaction.
func (r *UserRepository) AddUniversityInterest(ctx context.Context, userID, universityID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add university interest: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	const insertQuery = `INSERT INTO user_university_interests (user_id, university_id, created_at) VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, insertQuery, userID, universityID, now); err != nil {
		return fmt.Errorf("insert university interest: %w", err)
	}

	const counterQuery = `INSERT INTO university_like_stats (university_id, num_of_likes, created_at) VALUES ($1, 1, $2) ON CONFLICT (university_id) DO UPDATE SET num_of_likes = university_like_stats.num_of_likes + 1`
	if _, err := tx.ExecContext(ctx, counterQuery, universityID, now); err != nil {
		return fmt.Errorf("increment university likes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit add university interest: %w", err)
	}
	return nil
}

// RemoveUniversityInterest deletes the interest row and decrements the like
// counter, clamped at zero, inside one transaction.
func (r *UserRepository) RemoveUniversityInterest(ctx context.Context, userID, universityID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove university interest: %w", err)
	}
	defer tx.Rollback()

	const deleteQuery = `DELETE FROM user_university_interests WHERE user_id = $1 AND university_id = $2`
	res, err := tx.ExecContext(ctx, deleteQuery, userID, universityID)
	if err != nil {
		return fmt.Errorf("delete university interest: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}

	const counterQuery = `UPDATE university_like_stats SET num_of_likes = GREATEST(num_of_likes - 1, 0) WHERE university_id = $1`
	res, err = tx.ExecContext(ctx, counterQuery, universityID)
	if err != nil {
		return fmt.Errorf("decrement university likes: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit remove university interest: %w", err)
	}
	return nil
}
