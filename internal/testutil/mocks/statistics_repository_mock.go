package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/numguess/internal/models"
)

// MockStatisticsRepository is a mock implementation of repository.StatisticsRepository
type MockStatisticsRepository struct {
	mock.Mock
}

func (m *MockStatisticsRepository) GetByUserID(ctx context.Context, userID string) (*models.UserGameStatistics, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserGameStatistics), args.Error(1)
}

func (m *MockStatisticsRepository) Insert(ctx context.Context, stats models.UserGameStatistics) error {
	args := m.Called(ctx, stats)
	return args.Error(0)
}

func (m *MockStatisticsRepository) Update(ctx context.Context, stats models.UserGameStatistics) error {
	args := m.Called(ctx, stats)
	return args.Error(0)
}

func (m *MockStatisticsRepository) Leaderboard(ctx context.Context, query models.LeaderboardQuery) ([]models.LeaderboardEntry, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LeaderboardEntry), args.Error(1)
}

func (m *MockStatisticsRepository) CountLeaderboard(ctx context.Context, query models.LeaderboardQuery) (int, error) {
	args := m.Called(ctx, query)
	return args.Int(0), args.Error(1)
}
