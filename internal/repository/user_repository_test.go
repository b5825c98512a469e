package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swediversity/swediversity-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

var userTestColumns = []string{"id", "email", "user_name", "password_hash", "kind", "admin", "refresh_token", "merit_point", "prerequisites", "studying_program_id", "studying_university_id", "created_at", "updated_at"}

func TestFindByEmailProspective(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	merit := 18.5
	rows := sqlmock.NewRows(userTestColumns).
		AddRow("u1", "anna@example.com", "anna", "hash", string(models.UserKindProspective), false, nil, merit, pq.StringArray{"Math4", "Physics1A"}, nil, nil, now, now)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1 LIMIT 1").
		WithArgs("anna@example.com").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "anna@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.UserKindProspective, user.Kind)
	require.NotNil(t, user.Prospective)
	assert.Equal(t, 18.5, *user.Prospective.MeritPoint)
	assert.Equal(t, pq.StringArray{"Math4", "Physics1A"}, user.Prospective.Prerequisites)
	assert.Nil(t, user.Student)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDStudentVariant(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userTestColumns).
		AddRow("u2", "erik@example.com", "erik", "hash", string(models.UserKindStudent), false, nil, nil, nil, "p1", "uni1", now, now)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1 LIMIT 1").
		WithArgs("u2").
		WillReturnRows(rows)

	user, err := repo.FindByID(context.Background(), "u2")
	require.NoError(t, err)
	require.NotNil(t, user.Student)
	assert.Equal(t, "p1", *user.Student.ProgramID)
	assert.Nil(t, user.Prospective)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmailNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1 LIMIT 1").
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{Email: "new@example.com", UserName: "new", PasswordHash: "hash", Kind: models.UserKindProspective}
	err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMeritPointNotProspective(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("UPDATE users SET merit_point").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateMeritPoint(context.Background(), "u3", 12.0)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddProgramInterestTransactional(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO user_program_interests").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO program_like_stats").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.AddProgramInterest(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveProgramInterestMissingCounter(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM user_program_interests").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE program_like_stats").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.RemoveProgramInterest(context.Background(), "u1", "p1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveUniversityInterest(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM user_university_interests").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE university_like_stats SET num_of_likes = GREATEST(num_of_likes - 1, 0) WHERE university_id = $1")).
		WithArgs("uni1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.RemoveUniversityInterest(context.Background(), "u1", "uni1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
