package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/numguess/internal/errors"
	"github.com/vytor/numguess/internal/models"
)

// MaxActiveSessions is the number of InProgress sessions a user may hold.
const MaxActiveSessions = 3

// DefaultCustomMaxAttempts applies when a custom range omits the budget.
const DefaultCustomMaxAttempts = 10

const congratulations = "Congratulations! You guessed correctly!"

// Settings is a resolved range and attempt budget.
type Settings struct {
	MinRange    int
	MaxRange    int
	MaxAttempts int
}

var presets = map[models.Difficulty]Settings{
	models.DifficultyEasy:   {MinRange: 1, MaxRange: 30, MaxAttempts: 10},
	models.DifficultyNormal: {MinRange: 1, MaxRange: 43, MaxAttempts: 8},
	models.DifficultyHard:   {MinRange: 1, MaxRange: 60, MaxAttempts: 6},
	models.DifficultyExpert: {MinRange: 1, MaxRange: 100, MaxAttempts: 5},
}

var baseScores = map[models.Difficulty]int{
	models.DifficultyEasy:   100,
	models.DifficultyNormal: 200,
	models.DifficultyHard:   400,
	models.DifficultyExpert: 800,
}

// Preset returns the default settings for a difficulty.
func Preset(d models.Difficulty) (Settings, bool) {
	s, ok := presets[d]
	return s, ok
}

// ResolveConfig picks the custom range when both bounds are supplied and the
// difficulty preset otherwise, then re-checks the result.
func ResolveConfig(cfg models.GameConfig) (Settings, error) {
	if !cfg.Difficulty.Valid() {
		return Settings{}, errors.NewValidationError("difficulty", "must be one of Easy, Normal, Hard, Expert")
	}

	var s Settings
	if cfg.CustomMinRange != nil && cfg.CustomMaxRange != nil {
		s = Settings{
			MinRange:    *cfg.CustomMinRange,
			MaxRange:    *cfg.CustomMaxRange,
			MaxAttempts: DefaultCustomMaxAttempts,
		}
		if cfg.CustomMaxAttempts != nil {
			s.MaxAttempts = *cfg.CustomMaxAttempts
		}
	} else {
		s = presets[cfg.Difficulty]
	}

	switch {
	case s.MinRange < 1:
		return Settings{}, errors.NewValidationError("customMinRange", "must be at least 1")
	case s.MaxRange < s.MinRange:
		return Settings{}, errors.NewValidationError("customMaxRange", "must not be less than the minimum")
	case s.MaxAttempts < 1:
		return Settings{}, errors.NewValidationError("customMaxAttempts", "must be at least 1")
	}
	return s, nil
}

// NewSession builds an InProgress session with a freshly drawn secret.
func NewSession(statisticsID, userID string, cfg models.GameConfig, src SecretSource, now time.Time) (*models.GameSession, error) {
	s, err := ResolveConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &models.GameSession{
		ID:           uuid.NewString(),
		StatisticsID: statisticsID,
		UserID:       userID,
		SecretNumber: src.Draw(s.MinRange, s.MaxRange),
		MinRange:     s.MinRange,
		MaxRange:     s.MaxRange,
		MaxAttempts:  s.MaxAttempts,
		Status:       models.StatusInProgress,
		Difficulty:   cfg.Difficulty,
		StartedAt:    now,
		Attempts:     []models.GameAttempt{},
	}, nil
}

// CalculateScore is the difficulty base plus ten points per unused attempt,
// counting the winning one.
func CalculateScore(attempts, maxAttempts int, d models.Difficulty) int {
	bonus := (maxAttempts - attempts + 1) * 10
	if bonus < 0 {
		bonus = 0
	}
	return baseScores[d] + bonus
}

// Evaluate compares a guess with the secret.
func Evaluate(guess, secret int) models.GuessResult {
	switch {
	case guess == secret:
		return models.ResultCorrect
	case guess < secret:
		return models.ResultTooLow
	default:
		return models.ResultTooHigh
	}
}

// Hint describes how far off a guess was and which way to go.
func Hint(guess, secret int) string {
	if guess == secret {
		return congratulations
	}

	distance := guess - secret
	if distance < 0 {
		distance = -distance
	}

	var qualifier string
	switch {
	case distance <= 5:
		qualifier = "Very close! "
	case distance <= 10:
		qualifier = "Close! "
	case distance <= 20:
		qualifier = "Getting warmer... "
	}

	if guess < secret {
		return qualifier + "Try higher!"
	}
	return qualifier + "Try lower!"
}

// CheckGuess enforces the session-level preconditions in order: the game is
// active, the guess is in range, and attempts remain.
func CheckGuess(s *models.GameSession, guess int) error {
	if s.Status != models.StatusInProgress {
		return errors.NewGameNotActiveError()
	}
	if guess < s.MinRange || guess > s.MaxRange {
		return errors.NewOutOfRangeError(s.MinRange, s.MaxRange)
	}
	if s.AttemptsCount >= s.MaxAttempts {
		return errors.NewAttemptsExhaustedError()
	}
	return nil
}

// ApplyGuess records a guess on s and performs the Won or Lost transition.
// It reports whether the session reached a terminal state. Callers must run
// CheckGuess first.
func ApplyGuess(s *models.GameSession, guess int, now time.Time) (models.GameAttempt, bool) {
	result := Evaluate(guess, s.SecretNumber)
	attempt := models.GameAttempt{
		ID:            uuid.NewString(),
		GameSessionID: s.ID,
		GuessedNumber: guess,
		AttemptNumber: s.AttemptsCount + 1,
		Result:        result,
		Hint:          Hint(guess, s.SecretNumber),
		AttemptedAt:   now,
	}
	s.AttemptsCount++

	ended := false
	switch {
	case result == models.ResultCorrect:
		s.Status = models.StatusWon
		s.Score = CalculateScore(s.AttemptsCount, s.MaxAttempts, s.Difficulty)
		ended = true
	case s.AttemptsCount >= s.MaxAttempts:
		s.Status = models.StatusLost
		s.Score = 0
		attempt.Hint += fmt.Sprintf(" Game over! The correct number was %d.", s.SecretNumber)
		ended = true
	}
	if ended {
		endedAt := now
		s.EndedAt = &endedAt
	}

	s.Attempts = append(s.Attempts, attempt)
	return attempt, ended
}
