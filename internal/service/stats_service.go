package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/swediversity/swediversity-api/internal/models"
	appErrors "github.com/swediversity/swediversity-api/pkg/errors"
)

type statsRepository interface {
	MeanMinScore(ctx context.Context, programName string, round models.Round, group models.SelectionGroup) (float64, error)
	ReplaceMinMeritStats(ctx context.Context, stats *models.MinMeritStats) error
	FindMinMeritStats(ctx context.Context, programName string, round models.Round, group models.SelectionGroup) (*models.MinMeritStats, error)
	ProgramLikes(ctx context.Context, programID string) (int, error)
	UniversityLikes(ctx context.Context, universityID string) (int, error)
}

// StatsService maintains the cached admission statistics and exposes the
// interest like counts.
type StatsService struct {
	repo    statsRepository
	metrics *MetricsService
	logger  *zap.Logger
}

// NewStatsService constructs a StatsService instance. metrics may be nil.
func NewStatsService(repo statsRepository, metrics *MetricsService, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{repo: repo, metrics: metrics, logger: logger}
}

// Recompute rescans the records for one (program, round, selection group)
// key and replaces the cached mean. The mean of an empty set is zero, which
// still overwrites any stale value. Failures are logged and swallowed: the
// record write that triggered the recompute has already succeeded and must
// not be reported as failed.
func (s *StatsService) Recompute(ctx context.Context, programName string, round models.Round, group models.SelectionGroup) {
	mean, err := s.repo.MeanMinScore(ctx, programName, round, group)
	if err != nil {
		s.metrics.RecordRecompute(false)
		s.logger.Error("statistics recompute failed",
			zap.String("code", appErrors.ErrAggregation.Code),
			zap.String("program", programName),
			zap.String("round", string(round)),
			zap.String("selection_group", string(group)),
			zap.Error(err))
		return
	}

	stats := &models.MinMeritStats{
		ProgramName:    programName,
		Round:          round,
		SelectionGroup: group,
		Score:          mean,
	}
	if err := s.repo.ReplaceMinMeritStats(ctx, stats); err != nil {
		s.metrics.RecordRecompute(false)
		s.logger.Error("statistics replace failed",
			zap.String("code", appErrors.ErrAggregation.Code),
			zap.String("program", programName),
			zap.Error(err))
		return
	}
	s.metrics.RecordRecompute(true)
}

// SelectionGroupAvg returns the cached mean for a key. A key that has never
// been recomputed has no cached row yet; the average of zero records is zero,
// so the miss falls back to computing the mean directly.
func (s *StatsService) SelectionGroupAvg(ctx context.Context, programName string, round models.Round, group models.SelectionGroup) (*models.MinMeritStats, error) {
	if programName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "programName is required")
	}
	if !models.ValidRound(round) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown round")
	}
	if !models.ValidSelectionGroup(group) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown selection group")
	}

	stats, err := s.repo.FindMinMeritStats(ctx, programName, round, group)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load statistics")
		}
		mean, err := s.repo.MeanMinScore(ctx, programName, round, group)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load statistics")
		}
		return &models.MinMeritStats{
			ProgramName:    programName,
			Round:          round,
			SelectionGroup: group,
			Score:          mean,
		}, nil
	}
	return stats, nil
}

// ProgramLikes returns the like count for a program.
func (s *StatsService) ProgramLikes(ctx context.Context, programID string) (int, error) {
	likes, err := s.repo.ProgramLikes(ctx, programID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program likes")
	}
	return likes, nil
}

// UniversityLikes returns the like count for a university.
func (s *StatsService) UniversityLikes(ctx context.Context, universityID string) (int, error) {
	likes, err := s.repo.UniversityLikes(ctx, universityID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load university likes")
	}
	return likes, nil
}
