package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/vytor/numguess/internal/errors"
	"github.com/vytor/numguess/internal/game"
	"github.com/vytor/numguess/internal/logger"
	"github.com/vytor/numguess/internal/models"
	"github.com/vytor/numguess/internal/repository"
)

// GameService handles the game session lifecycle
type GameService interface {
	CreateSession(ctx context.Context, userID string, cfg models.GameConfig) (*models.GameSession, error)
	SubmitGuess(ctx context.Context, userID, sessionID string, guess int) (*models.GuessOutcome, error)
	GetSession(ctx context.Context, userID, sessionID string) (*models.GameSession, error)
	GetHistory(ctx context.Context, userID string, query HistoryQuery) (*models.Page[models.GameSession], error)
	GetUserStats(ctx context.Context, userID string) (*models.GameStats, error)
}

// HistoryQuery selects a page of a user's sessions.
type HistoryQuery struct {
	Page       int
	PageSize   int
	Status     *models.GameStatus
	Difficulty *models.Difficulty
}

type gameService struct {
	store   repository.Store
	now     func() time.Time
	secrets game.SecretSource
}

// NewGameService creates a new GameService
func NewGameService(store repository.Store, opts ...Option) GameService {
	o := applyOptions(opts)
	return &gameService{
		store:   store,
		now:     o.now,
		secrets: o.secrets,
	}
}

const forbiddenGameMessage = "You are not authorized to access this game"

// storageError maps repository sentinels to application errors.
func storageError(err error) error {
	var appErr *errors.AppError
	switch {
	case stderrors.As(err, &appErr):
		return appErr
	case stderrors.Is(err, repository.ErrStaleWrite):
		return errors.NewConflictError("The game was modified by another request; please retry", err)
	case stderrors.Is(err, repository.ErrDuplicate):
		return errors.NewConflictError("A concurrent request already recorded this attempt; please retry", err)
	default:
		return errors.NewInternalError(err)
	}
}

func (s *gameService) CreateSession(ctx context.Context, userID string, cfg models.GameConfig) (*models.GameSession, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating session: user_id=%s, difficulty=%s", userID, cfg.Difficulty)

	if _, err := game.ResolveConfig(cfg); err != nil {
		return nil, err
	}

	var session *models.GameSession
	err := s.store.WithinTx(ctx, func(uow repository.UnitOfWork) error {
		now := s.now()
		stats, err := getOrCreateStatistics(ctx, uow.Statistics(), userID, now)
		if err != nil {
			return err
		}

		active, err := uow.Sessions().CountActive(ctx, stats.ID)
		if err != nil {
			return err
		}
		if active >= game.MaxActiveSessions {
			log.Info("session limit reached: user_id=%s, active=%d", userID, active)
			return errors.NewSessionLimitError(game.MaxActiveSessions)
		}

		session, err = game.NewSession(stats.ID, userID, cfg, s.secrets, now)
		if err != nil {
			return err
		}
		return uow.Sessions().Insert(ctx, session)
	})
	if err != nil {
		err = storageError(err)
		if errors.CodeOf(err) == errors.ErrCodeInternal {
			log.Error("failed to create session: %v", err)
		}
		return nil, err
	}

	log.Info("session created: id=%s, range=%d-%d, max_attempts=%d", session.ID, session.MinRange, session.MaxRange, session.MaxAttempts)
	return session, nil
}

func (s *gameService) SubmitGuess(ctx context.Context, userID, sessionID string, guess int) (*models.GuessOutcome, error) {
	log := logger.FromContext(ctx)
	log.Debug("submitting guess: user_id=%s, session_id=%s", userID, sessionID)

	var outcome *models.GuessOutcome
	err := s.store.WithinTx(ctx, func(uow repository.UnitOfWork) error {
		session, err := uow.Sessions().Get(ctx, sessionID)
		if err != nil {
			if stderrors.Is(err, repository.ErrNotFound) {
				return errors.NewNotFoundError("game session", sessionID)
			}
			return err
		}
		if session.UserID != userID {
			return errors.NewForbiddenError(forbiddenGameMessage)
		}
		if err := game.CheckGuess(session, guess); err != nil {
			return err
		}

		now := s.now()
		attempt, ended := game.ApplyGuess(session, guess, now)
		if err := uow.Attempts().Insert(ctx, attempt); err != nil {
			return err
		}
		if err := uow.Sessions().Update(ctx, session); err != nil {
			return err
		}
		if ended {
			isWin := session.Status == models.StatusWon
			if _, err := recordGameResult(ctx, uow.Statistics(), userID, session.Score, isWin, session.AttemptsCount, now); err != nil {
				return err
			}
			log.Info("game finished: id=%s, status=%s, score=%d, attempts=%d", session.ID, session.Status, session.Score, session.AttemptsCount)
		}

		outcome = &models.GuessOutcome{
			Attempt:           attempt,
			Status:            session.Status,
			AttemptsCount:     session.AttemptsCount,
			RemainingAttempts: session.RemainingAttempts(),
			Score:             session.Score,
			GameEnded:         ended,
		}
		return nil
	})
	if err != nil {
		err = storageError(err)
		if errors.CodeOf(err) == errors.ErrCodeInternal {
			log.Error("failed to submit guess: %v", err)
		} else {
			log.Debug("guess rejected: %v", err)
		}
		return nil, err
	}
	return outcome, nil
}

func (s *gameService) GetSession(ctx context.Context, userID, sessionID string) (*models.GameSession, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting session: user_id=%s, session_id=%s", userID, sessionID)

	session, err := s.store.Sessions().Get(ctx, sessionID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("game session", sessionID)
		}
		log.Error("failed to get session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if session.UserID != userID {
		return nil, errors.NewForbiddenError(forbiddenGameMessage)
	}
	return session, nil
}

func (s *gameService) GetHistory(ctx context.Context, userID string, query HistoryQuery) (*models.Page[models.GameSession], error) {
	log := logger.FromContext(ctx)

	page, pageSize := models.NormalizePaging(query.Page, query.PageSize)
	log.Debug("getting history: user_id=%s, page=%d, page_size=%d", userID, page, pageSize)

	filter := models.SessionFilter{
		UserID:     userID,
		Status:     query.Status,
		Difficulty: query.Difficulty,
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	}
	sessions, err := s.store.Sessions().List(ctx, filter)
	if err != nil {
		log.Error("failed to list sessions: %v", err)
		return nil, errors.NewInternalError(err)
	}
	total, err := s.store.Sessions().Count(ctx, filter)
	if err != nil {
		log.Error("failed to count sessions: %v", err)
		return nil, errors.NewInternalError(err)
	}

	result := models.NewPage(sessions, page, pageSize, total)
	return &result, nil
}

func (s *gameService) GetUserStats(ctx context.Context, userID string) (*models.GameStats, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting user stats: user_id=%s", userID)

	stats, err := getOrCreateStatistics(ctx, s.store.Statistics(), userID, s.now())
	if err != nil {
		log.Error("failed to get statistics: %v", err)
		return nil, errors.NewInternalError(err)
	}

	breakdown, err := s.store.Sessions().DifficultyBreakdown(ctx, stats.ID)
	if err != nil {
		log.Error("failed to compute difficulty breakdown: %v", err)
		return nil, errors.NewInternalError(err)
	}

	return &models.GameStats{
		TotalGames:        stats.GamesPlayed,
		GamesWon:          stats.GamesWon,
		TotalScore:        stats.TotalScore,
		WinRate:           stats.WinRate(),
		BestAttempts:      stats.BestAttempts,
		StatsByDifficulty: breakdown,
	}, nil
}
