package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/numguess/internal/errors"
	"github.com/vytor/numguess/internal/logger"
	"github.com/vytor/numguess/internal/models"
	"github.com/vytor/numguess/internal/repository"
)

// StatsService handles per-user statistics and leaderboards
type StatsService interface {
	GetOrCreate(ctx context.Context, userID string) (*models.UserGameStatistics, error)
	RecordGameResult(ctx context.Context, userID string, score int, isWin bool, attempts int) (*models.UserGameStatistics, error)
	Leaderboard(ctx context.Context, order models.LeaderboardOrder, minGames, page, pageSize int) (*models.Page[models.LeaderboardEntry], error)
	// ReconcileMissing creates statistics for registered users that have none
	// and returns how many were created.
	ReconcileMissing(ctx context.Context) (int, error)
}

type statsService struct {
	store repository.Store
	now   func() time.Time
}

// NewStatsService creates a new StatsService
func NewStatsService(store repository.Store, opts ...Option) StatsService {
	o := applyOptions(opts)
	return &statsService{store: store, now: o.now}
}

// getOrCreateStatistics reads the user's statistics and inserts a zeroed row
// when there is none. A losing concurrent insert re-reads once.
func getOrCreateStatistics(ctx context.Context, repo repository.StatisticsRepository, userID string, now time.Time) (*models.UserGameStatistics, error) {
	stats, err := repo.GetByUserID(ctx, userID)
	if err == nil {
		return stats, nil
	}
	if !stderrors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	fresh := models.UserGameStatistics{
		ID:            uuid.NewString(),
		UserID:        userID,
		LastUpdatedAt: now,
	}
	if err := repo.Insert(ctx, fresh); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			logger.FromContext(ctx).Debug("statistics created concurrently, re-reading: user_id=%s", userID)
			return repo.GetByUserID(ctx, userID)
		}
		return nil, err
	}
	logger.FromContext(ctx).Debug("created statistics: user_id=%s", userID)
	return &fresh, nil
}

// recordGameResult folds a finished game into the user's statistics.
func recordGameResult(ctx context.Context, repo repository.StatisticsRepository, userID string, score int, isWin bool, attempts int, now time.Time) (*models.UserGameStatistics, error) {
	stats, err := getOrCreateStatistics(ctx, repo, userID, now)
	if err != nil {
		return nil, err
	}
	stats.Record(score, isWin, attempts, now)
	if err := repo.Update(ctx, *stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *statsService) GetOrCreate(ctx context.Context, userID string) (*models.UserGameStatistics, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting statistics: user_id=%s", userID)

	stats, err := getOrCreateStatistics(ctx, s.store.Statistics(), userID, s.now())
	if err != nil {
		log.Error("failed to get statistics: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return stats, nil
}

func (s *statsService) RecordGameResult(ctx context.Context, userID string, score int, isWin bool, attempts int) (*models.UserGameStatistics, error) {
	log := logger.FromContext(ctx)
	log.Debug("recording game result: user_id=%s, score=%d, win=%t, attempts=%d", userID, score, isWin, attempts)

	var stats *models.UserGameStatistics
	err := s.store.WithinTx(ctx, func(uow repository.UnitOfWork) error {
		var err error
		stats, err = recordGameResult(ctx, uow.Statistics(), userID, score, isWin, attempts, s.now())
		return err
	})
	if err != nil {
		log.Error("failed to record game result: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return stats, nil
}

func (s *statsService) Leaderboard(ctx context.Context, order models.LeaderboardOrder, minGames, page, pageSize int) (*models.Page[models.LeaderboardEntry], error) {
	log := logger.FromContext(ctx)

	switch order {
	case "":
		order = models.LeaderboardByScore
	case models.LeaderboardByScore, models.LeaderboardByWinRate:
	default:
		return nil, errors.NewValidationError("by", "must be score or winrate")
	}
	if minGames <= 0 {
		minGames = models.DefaultLeaderboardMinGames
	}
	page, pageSize = models.NormalizePaging(page, pageSize)
	log.Debug("loading leaderboard: order=%s, min_games=%d, page=%d, page_size=%d", order, minGames, page, pageSize)

	query := models.LeaderboardQuery{
		Order:    order,
		MinGames: minGames,
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	}
	entries, err := s.store.Statistics().Leaderboard(ctx, query)
	if err != nil {
		log.Error("failed to load leaderboard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	total, err := s.store.Statistics().CountLeaderboard(ctx, query)
	if err != nil {
		log.Error("failed to count leaderboard: %v", err)
		return nil, errors.NewInternalError(err)
	}

	result := models.NewPage(entries, page, pageSize, total)
	return &result, nil
}

func (s *statsService) ReconcileMissing(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	ids, err := s.store.Users().ListIDsWithoutStatistics(ctx, 0)
	if err != nil {
		log.Error("failed to list users without statistics: %v", err)
		return 0, err
	}

	created := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		if _, err := getOrCreateStatistics(ctx, s.store.Statistics(), id, s.now()); err != nil {
			log.Error("failed to create statistics: user_id=%s: %v", id, err)
			return created, err
		}
		created++
	}
	if created > 0 {
		log.Info("created statistics for %d users", created)
	}
	return created, nil
}
