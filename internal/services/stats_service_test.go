package services_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/numguess/internal/errors"
	"github.com/vytor/numguess/internal/models"
	"github.com/vytor/numguess/internal/repository"
	"github.com/vytor/numguess/internal/repository/sqlite"
	"github.com/vytor/numguess/internal/services"
	"github.com/vytor/numguess/internal/testutil"
)

type StatsServiceSuite struct {
	suite.Suite
	db      *sql.DB
	store   repository.Store
	service services.StatsService
}

func (s *StatsServiceSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.store = sqlite.NewStore(s.db)
	s.service = services.NewStatsService(s.store)
}

func (s *StatsServiceSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

// play records results for a user: true is a win worth score with 2 attempts.
func (s *StatsServiceSuite) play(userID string, score int, wins ...bool) {
	for _, win := range wins {
		points := 0
		if win {
			points = score
		}
		_, err := s.service.RecordGameResult(context.Background(), userID, points, win, 2)
		s.Require().NoError(err)
	}
}

func (s *StatsServiceSuite) TestGetOrCreate_IsIdempotent() {
	ctx := context.Background()
	first, err := s.service.GetOrCreate(ctx, "user-1")
	s.Require().NoError(err)
	second, err := s.service.GetOrCreate(ctx, "user-1")
	s.Require().NoError(err)

	s.Assert().Equal(first.ID, second.ID)
	s.Assert().Equal(0, second.GamesPlayed)
	s.Assert().Nil(second.BestAttempts)
}

func (s *StatsServiceSuite) TestRecordGameResult() {
	ctx := context.Background()

	stats, err := s.service.RecordGameResult(ctx, "user-1", 250, true, 4)
	s.Require().NoError(err)
	s.Assert().Equal(1, stats.GamesPlayed)
	s.Assert().Equal(1, stats.GamesWon)
	s.Assert().Equal(4, *stats.BestAttempts)

	_, err = s.service.RecordGameResult(ctx, "user-1", 0, false, 8)
	s.Require().NoError(err)
	stats, err = s.service.RecordGameResult(ctx, "user-1", 300, true, 6)
	s.Require().NoError(err)

	s.Assert().Equal(3, stats.GamesPlayed)
	s.Assert().Equal(2, stats.GamesWon)
	s.Assert().Equal(550, stats.TotalScore)
	s.Assert().Equal(4, *stats.BestAttempts, "best attempts never increases")

	stored, err := s.store.Statistics().GetByUserID(ctx, "user-1")
	s.Require().NoError(err)
	s.Assert().Equal(stats.TotalScore, stored.TotalScore)
}

func (s *StatsServiceSuite) TestLeaderboard_ByScore() {
	s.play("alpha", 100, true, true)
	s.play("bravo", 500, true)
	s.play("charlie", 100, false)
	_, err := s.service.GetOrCreate(context.Background(), "idle")
	s.Require().NoError(err)

	page, err := s.service.Leaderboard(context.Background(), "", 0, 0, 0)
	s.Require().NoError(err)
	s.Assert().Equal(3, page.TotalCount, "users without games are excluded")
	s.Require().Len(page.Items, 3)
	s.Assert().Equal("bravo", page.Items[0].UserID)
	s.Assert().Equal(1, page.Items[0].Rank)
	s.Assert().Equal("alpha", page.Items[1].UserID)
	s.Assert().Equal("charlie", page.Items[2].UserID)
	s.Assert().Equal(3, page.Items[2].Rank)
}

func (s *StatsServiceSuite) TestLeaderboard_ByWinRateRespectsMinGames() {
	s.play("veteran", 100, true, true, true, false, false)
	s.play("rookie", 100, true, true)
	s.play("steady", 50, true, true, true, true, false)

	page, err := s.service.Leaderboard(context.Background(), models.LeaderboardByWinRate, 0, 1, 10)
	s.Require().NoError(err)
	s.Require().Len(page.Items, 2)
	s.Assert().Equal("steady", page.Items[0].UserID)
	s.Assert().InDelta(80.0, page.Items[0].WinRate, 0.001)
	s.Assert().Equal("veteran", page.Items[1].UserID)

	relaxed, err := s.service.Leaderboard(context.Background(), models.LeaderboardByWinRate, 2, 1, 10)
	s.Require().NoError(err)
	s.Require().Len(relaxed.Items, 3)
	s.Assert().Equal("rookie", relaxed.Items[0].UserID)
}

func (s *StatsServiceSuite) TestLeaderboard_RanksContinueAcrossPages() {
	s.play("a", 300, true)
	s.play("b", 200, true)
	s.play("c", 100, true)

	page, err := s.service.Leaderboard(context.Background(), models.LeaderboardByScore, 0, 2, 2)
	s.Require().NoError(err)
	s.Require().Len(page.Items, 1)
	s.Assert().Equal("c", page.Items[0].UserID)
	s.Assert().Equal(3, page.Items[0].Rank)
	s.Assert().True(page.HasPrevious)
	s.Assert().False(page.HasNext)
}

func (s *StatsServiceSuite) TestLeaderboard_InvalidOrder() {
	_, err := s.service.Leaderboard(context.Background(), models.LeaderboardOrder("fastest"), 0, 1, 10)
	s.Assert().True(errors.Is(err, errors.ErrCodeValidation))
}

func (s *StatsServiceSuite) TestReconcileMissing() {
	ctx := context.Background()
	withStats := testutil.CreateUser(s.T(), s.db, "has@example.com", "Has", "Stats")
	testutil.CreateStatistics(s.T(), s.db, withStats.ID)
	missing := testutil.CreateUser(s.T(), s.db, "missing@example.com", "No", "Stats")

	created, err := s.service.ReconcileMissing(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(1, created)

	stats, err := s.store.Statistics().GetByUserID(ctx, missing.ID)
	s.Require().NoError(err)
	s.Assert().Equal(0, stats.GamesPlayed)

	created, err = s.service.ReconcileMissing(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(0, created)
}

func TestStatsServiceSuite(t *testing.T) {
	suite.Run(t, new(StatsServiceSuite))
}
