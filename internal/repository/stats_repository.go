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

// StatsRepository provides database access for the cached admission
// statistics and the interest like counters.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new instance of StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// MeanMinScore returns the mean of min_score over the records matching the
// key, and zero when no record matches.
func (r *StatsRepository) MeanMinScore(ctx context.Context, programName string, round models.Round, group models.SelectionGroup) (float64, error) {
	const query = `SELECT COALESCE(AVG(min_score), 0) FROM records WHERE LOWER(program_name) = LOWER($1) AND round = $2 AND selection_group = $3`
	var mean float64
	if err := r.db.GetContext(ctx, &mean, query, programName, round, group); err != nil {
		return 0, fmt.Errorf("mean min score: %w", err)
	}
	return mean, nil
}

// ReplaceMinMeritStats swaps the cached row for the key with a fresh one
// inside a single transaction, so readers never observe the key missing.
func (r *StatsRepository) ReplaceMinMeritStats(ctx context.Context, stats *models.MinMeritStats) error {
	if stats.ID == "" {
		stats.ID = uuid.NewString()
	}
	stats.CreatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace min merit stats: %w", err)
	}
	defer tx.Rollback()

	const deleteQuery = `DELETE FROM min_merit_stats WHERE LOWER(program_name) = LOWER($1) AND round = $2 AND selection_group = $3`
	if _, err := tx.ExecContext(ctx, deleteQuery, stats.ProgramName, stats.Round, stats.SelectionGroup); err != nil {
		return fmt.Errorf("delete min merit stats: %w", err)
	}

	const insertQuery = `INSERT INTO min_merit_stats (id, program_name, round, selection_group, score, created_at) VALUES (:id, :program_name, :round, :selection_group, :score, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertQuery, stats); err != nil {
		return fmt.Errorf("insert min merit stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace min merit stats: %w", err)
	}
	return nil
}

// FindMinMeritStats returns the cached row for a key.
func (r *StatsRepository) FindMinMeritStats(ctx context.Context, programName string, round models.Round, group models.SelectionGroup) (*models.MinMeritStats, error) {
	const query = `SELECT id, program_name, round, selection_group, score, created_at FROM min_merit_stats WHERE LOWER(program_name) = LOWER($1) AND round = $2 AND selection_group = $3 LIMIT 1`
	var stats models.MinMeritStats
	if err := r.db.GetContext(ctx, &stats, query, programName, round, group); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find min merit stats: %w", err)
	}
	return &stats, nil
}

// ProgramLikes returns the like counter for a program, zero when no counter
// row exists yet.
func (r *StatsRepository) ProgramLikes(ctx context.Context, programID string) (int, error) {
	const query = `SELECT COALESCE((SELECT num_of_likes FROM program_like_stats WHERE program_id = $1), 0)`
	var likes int
	if err := r.db.GetContext(ctx, &likes, query, programID); err != nil {
		return 0, fmt.Errorf("program likes: %w", err)
	}
	return likes, nil
}

// UniversityLikes returns the like counter for a university, zero when no
// counter row exists yet.
func (r *StatsRepository) UniversityLikes(ctx context.Context, universityID string) (int, error) {
	const query = `SELECT COALESCE((SELECT num_of_likes FROM university_like_stats WHERE university_id = $1), 0)`
	var likes int
	if err := r.db.GetContext(ctx, &likes, query, universityID); err != nil {
		return 0, fmt.Errorf("university likes: %w", err)
	}
	return likes, nil
}
