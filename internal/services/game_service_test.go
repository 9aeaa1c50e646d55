package services_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/numguess/internal/errors"
	"github.com/vytor/numguess/internal/game"
	"github.com/vytor/numguess/internal/models"
	"github.com/vytor/numguess/internal/repository"
	"github.com/vytor/numguess/internal/repository/sqlite"
	"github.com/vytor/numguess/internal/services"
	"github.com/vytor/numguess/internal/testutil"
)

type GameServiceSuite struct {
	suite.Suite
	db      *sql.DB
	store   repository.Store
	service services.GameService
	clock   time.Time
}

func (s *GameServiceSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.store = sqlite.NewStore(s.db)
	s.clock = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	s.service = s.newService(game.FixedSecret(21))
}

func (s *GameServiceSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *GameServiceSuite) newService(src game.SecretSource) services.GameService {
	return services.NewGameService(s.store,
		services.WithSecretSource(src),
		services.WithClock(func() time.Time {
			s.clock = s.clock.Add(time.Second)
			return s.clock
		}),
	)
}

func intPtr(v int) *int { return &v }

func (s *GameServiceSuite) create(userID string, cfg models.GameConfig) *models.GameSession {
	session, err := s.service.CreateSession(context.Background(), userID, cfg)
	s.Require().NoError(err)
	return session
}

func (s *GameServiceSuite) normal(userID string) *models.GameSession {
	return s.create(userID, models.GameConfig{Difficulty: models.DifficultyNormal})
}

func (s *GameServiceSuite) statsFor(userID string) *models.UserGameStatistics {
	stats, err := s.store.Statistics().GetByUserID(context.Background(), userID)
	s.Require().NoError(err)
	return stats
}

func (s *GameServiceSuite) TestCreateSession_NormalPreset() {
	session := s.normal("user-1")

	s.Assert().Equal(1, session.MinRange)
	s.Assert().Equal(43, session.MaxRange)
	s.Assert().Equal(8, session.MaxAttempts)
	s.Assert().Equal(models.StatusInProgress, session.Status)
	s.Assert().Equal(0, session.AttemptsCount)
	s.Assert().Equal(0, session.Score)

	stored, err := s.store.Sessions().Get(context.Background(), session.ID)
	s.Require().NoError(err)
	s.Assert().Equal(21, stored.SecretNumber)
	s.Assert().Equal("user-1", stored.UserID)
}

func (s *GameServiceSuite) TestCreateSession_SecretWithinCustomRange() {
	svc := s.newService(game.RandomSource{})
	session, err := svc.CreateSession(context.Background(), "user-1", models.GameConfig{
		Difficulty:     models.DifficultyHard,
		CustomMinRange: intPtr(100),
		CustomMaxRange: intPtr(105),
	})
	s.Require().NoError(err)
	s.Assert().Equal(10, session.MaxAttempts)
	s.Assert().GreaterOrEqual(session.SecretNumber, 100)
	s.Assert().LessOrEqual(session.SecretNumber, 105)
}

func (s *GameServiceSuite) TestCreateSession_RejectsInvalidConfig() {
	_, err := s.service.CreateSession(context.Background(), "user-1", models.GameConfig{
		Difficulty:     models.DifficultyNormal,
		CustomMinRange: intPtr(10),
		CustomMaxRange: intPtr(5),
	})
	s.Assert().True(errors.Is(err, errors.ErrCodeValidation))
}

func (s *GameServiceSuite) TestCreateSession_ConcurrentLimit() {
	for i := 0; i < 3; i++ {
		s.normal("user-1")
	}

	_, err := s.service.CreateSession(context.Background(), "user-1", models.GameConfig{Difficulty: models.DifficultyEasy})
	s.Require().Error(err)
	s.Assert().True(errors.Is(err, errors.ErrCodeSessionLimitExceeded))
	s.Assert().Equal("You can have a maximum of 3 active games at once.", errors.AsAppError(err).Message)

	var count int
	s.Require().NoError(s.db.QueryRow(`SELECT COUNT(*) FROM game_sessions`).Scan(&count))
	s.Assert().Equal(3, count, "no new row created")

	// Another user is unaffected.
	s.normal("user-2")
}

func (s *GameServiceSuite) TestCreateSession_ConcurrentRequestsRespectLimit() {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		limited int
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.CreateSession(context.Background(), "user-1", models.GameConfig{Difficulty: models.DifficultyNormal})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, errors.ErrCodeSessionLimitExceeded):
				limited++
			}
		}()
	}
	wg.Wait()

	s.Assert().Equal(3, created)
	s.Assert().Equal(3, limited)
}

func (s *GameServiceSuite) TestCreateSession_FinishedGamesFreeASlot() {
	first := s.normal("user-1")
	s.normal("user-1")
	s.normal("user-1")

	_, err := s.service.SubmitGuess(context.Background(), "user-1", first.ID, 21)
	s.Require().NoError(err)

	s.normal("user-1")
}

func (s *GameServiceSuite) TestSubmitGuess_OutOfRangeLeavesSessionUnchanged() {
	session := s.normal("user-1")

	_, err := s.service.SubmitGuess(context.Background(), "user-1", session.ID, 100)
	s.Require().Error(err)
	s.Assert().True(errors.Is(err, errors.ErrCodeOutOfRange))
	s.Assert().Equal("Guess must be between 1 and 43", errors.AsAppError(err).Message)

	stored, err := s.store.Sessions().Get(context.Background(), session.ID)
	s.Require().NoError(err)
	s.Assert().Equal(0, stored.AttemptsCount)
	s.Assert().Empty(stored.Attempts)
	s.Assert().Equal(models.StatusInProgress, stored.Status)
}

func (s *GameServiceSuite) TestSubmitGuess_WinUpdatesStatistics() {
	ctx := context.Background()
	session := s.normal("user-1")

	first, err := s.service.SubmitGuess(ctx, "user-1", session.ID, 41)
	s.Require().NoError(err)
	s.Assert().Equal(models.ResultTooHigh, first.Attempt.Result)
	s.Assert().Contains(first.Attempt.Hint, "lower")
	s.Assert().False(first.GameEnded)
	s.Assert().Equal(7, first.RemainingAttempts)

	second, err := s.service.SubmitGuess(ctx, "user-1", session.ID, 21)
	s.Require().NoError(err)
	s.Assert().Equal(models.ResultCorrect, second.Attempt.Result)
	s.Assert().Equal("Congratulations! You guessed correctly!", second.Attempt.Hint)
	s.Assert().Equal(models.StatusWon, second.Status)
	s.Assert().True(second.GameEnded)
	s.Assert().Equal(270, second.Score)

	stored, err := s.store.Sessions().Get(ctx, session.ID)
	s.Require().NoError(err)
	s.Assert().Equal(models.StatusWon, stored.Status)
	s.Assert().Equal(270, stored.Score)
	s.Require().NotNil(stored.EndedAt)

	stats := s.statsFor("user-1")
	s.Assert().Equal(1, stats.GamesPlayed)
	s.Assert().Equal(1, stats.GamesWon)
	s.Assert().Equal(270, stats.TotalScore)
	s.Require().NotNil(stats.BestAttempts)
	s.Assert().Equal(2, *stats.BestAttempts)
}

func (s *GameServiceSuite) TestSubmitGuess_BestAttemptsKeepsMinimum() {
	ctx := context.Background()

	quick := s.normal("user-1")
	_, err := s.service.SubmitGuess(ctx, "user-1", quick.ID, 21)
	s.Require().NoError(err)

	slow := s.normal("user-1")
	for _, g := range []int{1, 2, 21} {
		_, err := s.service.SubmitGuess(ctx, "user-1", slow.ID, g)
		s.Require().NoError(err)
	}

	stats := s.statsFor("user-1")
	s.Assert().Equal(2, stats.GamesWon)
	s.Assert().Equal(1, *stats.BestAttempts)
}

func (s *GameServiceSuite) TestSubmitGuess_LossOnSingleAttempt() {
	ctx := context.Background()
	session := s.create("user-1", models.GameConfig{
		Difficulty:        models.DifficultyNormal,
		CustomMinRange:    intPtr(1),
		CustomMaxRange:    intPtr(43),
		CustomMaxAttempts: intPtr(1),
	})

	outcome, err := s.service.SubmitGuess(ctx, "user-1", session.ID, 40)
	s.Require().NoError(err)
	s.Assert().Equal(models.StatusLost, outcome.Status)
	s.Assert().Equal(0, outcome.Score)
	s.Assert().Equal("Getting warmer... Try lower! Game over! The correct number was 21.", outcome.Attempt.Hint)

	stats := s.statsFor("user-1")
	s.Assert().Equal(1, stats.GamesPlayed)
	s.Assert().Equal(0, stats.GamesWon)
	s.Assert().Nil(stats.BestAttempts)

	_, err = s.service.SubmitGuess(ctx, "user-1", session.ID, 21)
	s.Assert().True(errors.Is(err, errors.ErrCodeGameNotActive))
	s.Assert().Equal(1, s.statsFor("user-1").GamesPlayed, "terminal states are absorbing")
}

func (s *GameServiceSuite) TestSubmitGuess_Preconditions() {
	ctx := context.Background()
	session := s.normal("owner")

	_, err := s.service.SubmitGuess(ctx, "owner", "missing", 10)
	s.Assert().True(errors.Is(err, errors.ErrCodeNotFound))

	_, err = s.service.SubmitGuess(ctx, "intruder", session.ID, 100)
	s.Assert().True(errors.Is(err, errors.ErrCodeForbidden), "ownership is checked before range")

	_, err = s.service.SubmitGuess(ctx, "owner", session.ID, 21)
	s.Require().NoError(err)

	_, err = s.service.SubmitGuess(ctx, "owner", session.ID, 100)
	s.Assert().True(errors.Is(err, errors.ErrCodeGameNotActive), "status is checked before range")
}

func (s *GameServiceSuite) TestSubmitGuess_AttemptNumbersContiguous() {
	ctx := context.Background()
	session := s.normal("user-1")
	for _, g := range []int{1, 2, 3, 4} {
		_, err := s.service.SubmitGuess(ctx, "user-1", session.ID, g)
		s.Require().NoError(err)
	}

	stored, err := s.store.Sessions().Get(ctx, session.ID)
	s.Require().NoError(err)
	s.Require().Len(stored.Attempts, stored.AttemptsCount)
	for i, a := range stored.Attempts {
		s.Assert().Equal(i+1, a.AttemptNumber)
	}
}

func (s *GameServiceSuite) TestSubmitGuess_ConcurrentGuessesSerialize() {
	session := s.normal("user-1")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.SubmitGuess(context.Background(), "user-1", session.ID, 1)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				accepted++
			} else if errors.Is(err, errors.ErrCodeGameNotActive) || errors.Is(err, errors.ErrCodeConflict) {
				rejected++
			}
		}()
	}
	wg.Wait()

	s.Assert().Equal(8, accepted)
	s.Assert().Equal(2, rejected)

	stored, err := s.store.Sessions().Get(context.Background(), session.ID)
	s.Require().NoError(err)
	s.Assert().Equal(models.StatusLost, stored.Status)
	s.Assert().Equal(8, stored.AttemptsCount)
	s.Require().Len(stored.Attempts, 8)
	for i, a := range stored.Attempts {
		s.Assert().Equal(i+1, a.AttemptNumber)
	}
	s.Assert().Equal(1, s.statsFor("user-1").GamesPlayed, "statistics credited exactly once")
}

func (s *GameServiceSuite) TestGetSession() {
	ctx := context.Background()
	session := s.normal("owner")
	_, err := s.service.SubmitGuess(ctx, "owner", session.ID, 10)
	s.Require().NoError(err)

	got, err := s.service.GetSession(ctx, "owner", session.ID)
	s.Require().NoError(err)
	s.Assert().Len(got.Attempts, 1)

	_, err = s.service.GetSession(ctx, "intruder", session.ID)
	s.Assert().True(errors.Is(err, errors.ErrCodeForbidden))

	_, err = s.service.GetSession(ctx, "owner", "missing")
	s.Assert().True(errors.Is(err, errors.ErrCodeNotFound))
}

func (s *GameServiceSuite) TestGetHistory_PagingAndFilters() {
	ctx := context.Background()
	won := s.normal("user-1")
	_, err := s.service.SubmitGuess(ctx, "user-1", won.ID, 21)
	s.Require().NoError(err)
	s.create("user-1", models.GameConfig{Difficulty: models.DifficultyHard})
	latest := s.normal("user-1")

	page, err := s.service.GetHistory(ctx, "user-1", services.HistoryQuery{Page: 0, PageSize: 2})
	s.Require().NoError(err)
	s.Assert().Equal(1, page.Page)
	s.Assert().Equal(2, page.PageSize)
	s.Assert().Equal(3, page.TotalCount)
	s.Assert().Equal(2, page.TotalPages)
	s.Assert().True(page.HasNext)
	s.Assert().False(page.HasPrevious)
	s.Require().Len(page.Items, 2)
	s.Assert().Equal(latest.ID, page.Items[0].ID, "newest first")

	status := models.StatusWon
	filtered, err := s.service.GetHistory(ctx, "user-1", services.HistoryQuery{Status: &status})
	s.Require().NoError(err)
	s.Assert().Equal(10, filtered.PageSize)
	s.Require().Len(filtered.Items, 1)
	s.Assert().Equal(won.ID, filtered.Items[0].ID)
	s.Assert().Len(filtered.Items[0].Attempts, 1)

	hard := models.DifficultyHard
	byDifficulty, err := s.service.GetHistory(ctx, "user-1", services.HistoryQuery{Difficulty: &hard, PageSize: 1000})
	s.Require().NoError(err)
	s.Assert().Equal(100, byDifficulty.PageSize)
	s.Assert().Equal(1, byDifficulty.TotalCount)
}

func (s *GameServiceSuite) TestGetUserStats() {
	ctx := context.Background()

	empty, err := s.service.GetUserStats(ctx, "newcomer")
	s.Require().NoError(err)
	s.Assert().Equal(0, empty.TotalGames)
	s.Assert().Equal(0.0, empty.WinRate)
	s.Assert().Nil(empty.BestAttempts)
	s.Assert().Empty(empty.StatsByDifficulty)

	won := s.normal("user-1")
	_, err = s.service.SubmitGuess(ctx, "user-1", won.ID, 21)
	s.Require().NoError(err)

	lost := s.create("user-1", models.GameConfig{
		Difficulty: models.DifficultyNormal, CustomMinRange: intPtr(1), CustomMaxRange: intPtr(43), CustomMaxAttempts: intPtr(1),
	})
	_, err = s.service.SubmitGuess(ctx, "user-1", lost.ID, 1)
	s.Require().NoError(err)

	stats, err := s.service.GetUserStats(ctx, "user-1")
	s.Require().NoError(err)
	s.Assert().Equal(2, stats.TotalGames)
	s.Assert().Equal(1, stats.GamesWon)
	s.Assert().Equal(280, stats.TotalScore)
	s.Assert().InDelta(50.0, stats.WinRate, 0.001)
	s.Require().Len(stats.StatsByDifficulty, 1)
	s.Assert().Equal(models.DifficultyNormal, stats.StatsByDifficulty[0].Difficulty)
	s.Assert().Equal(2, stats.StatsByDifficulty[0].GamesPlayed)
	s.Assert().Equal(280, stats.StatsByDifficulty[0].BestScore)
	s.Assert().InDelta(140.0, stats.StatsByDifficulty[0].AverageScore, 0.001)
}

func TestGameServiceSuite(t *testing.T) {
	suite.Run(t, new(GameServiceSuite))
}
