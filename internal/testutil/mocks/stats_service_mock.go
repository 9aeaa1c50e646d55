package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/numguess/internal/models"
)

// MockStatsService is a mock implementation of services.StatsService
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) GetOrCreate(ctx context.Context, userID string) (*models.UserGameStatistics, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserGameStatistics), args.Error(1)
}

func (m *MockStatsService) RecordGameResult(ctx context.Context, userID string, score int, isWin bool, attempts int) (*models.UserGameStatistics, error) {
	args := m.Called(ctx, userID, score, isWin, attempts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserGameStatistics), args.Error(1)
}

func (m *MockStatsService) Leaderboard(ctx context.Context, order models.LeaderboardOrder, minGames, page, pageSize int) (*models.Page[models.LeaderboardEntry], error) {
	args := m.Called(ctx, order, minGames, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page[models.LeaderboardEntry]), args.Error(1)
}

func (m *MockStatsService) ReconcileMissing(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
