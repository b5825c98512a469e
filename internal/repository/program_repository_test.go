package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swediversity/swediversity-api/internal/models"
)

func TestProgramSearchCandidates(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "code", "university_name", "description", "prerequisites", "tuition_fee", "category", "created_at", "updated_at"}).
		AddRow("p1", "Datateknik", "D", "Chalmers", "", pq.StringArray{"Math4", "Physics2"}, 140000.0, string(models.CategoryScience), now, now)
	mock.ExpectQuery("SELECT (.+) FROM programs WHERE name ILIKE \\$1 OR name ILIKE \\$2").
		WithArgs("%data%", "%teknik%").
		WillReturnRows(rows)

	programs, err := repo.SearchCandidates(context.Background(), []string{"data", "teknik"})
	require.NoError(t, err)
	require.Len(t, programs, 1)
	assert.Equal(t, "Datateknik", programs[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramSearchCandidatesEmptyTokens(t *testing.T) {
	db, _, cleanup := newMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	programs, err := repo.SearchCandidates(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, programs)
}

func TestProgramUpdateNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	mock.ExpectExec("UPDATE programs SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Program{ID: "ghost", Category: models.CategoryScience})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramCreateDefaultsPrerequisites(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	mock.ExpectExec("INSERT INTO programs").WillReturnResult(sqlmock.NewResult(1, 1))

	program := &models.Program{Name: "Fri konst", Category: models.CategoryArtsSports}
	err := repo.Create(context.Background(), program)
	require.NoError(t, err)
	assert.NotNil(t, program.Prerequisites)
	assert.NotEmpty(t, program.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
