package models

import "time"

// GameSession is one playthrough with its own secret number and attempt budget.
type GameSession struct {
	ID            string        `json:"id"`
	StatisticsID  string        `json:"-"`
	UserID        string        `json:"userId"`
	SecretNumber  int           `json:"-"`
	MinRange      int           `json:"minRange"`
	MaxRange      int           `json:"maxRange"`
	MaxAttempts   int           `json:"maxAttempts"`
	AttemptsCount int           `json:"attemptsCount"`
	Status        GameStatus    `json:"status"`
	Score         int           `json:"score"`
	Difficulty    Difficulty    `json:"difficulty"`
	StartedAt     time.Time     `json:"startedAt"`
	EndedAt       *time.Time    `json:"endedAt,omitempty"`
	Version       int           `json:"-"`
	Attempts      []GameAttempt `json:"attempts"`
}

// RemainingAttempts is the number of guesses still allowed.
func (s *GameSession) RemainingAttempts() int {
	if s.AttemptsCount >= s.MaxAttempts {
		return 0
	}
	return s.MaxAttempts - s.AttemptsCount
}

// GameAttempt is one guess and its outcome.
type GameAttempt struct {
	ID            string      `json:"id"`
	GameSessionID string      `json:"gameSessionId"`
	GuessedNumber int         `json:"guessedNumber"`
	AttemptNumber int         `json:"attemptNumber"`
	Result        GuessResult `json:"result"`
	Hint          string      `json:"hint"`
	AttemptedAt   time.Time   `json:"attemptedAt"`
}

// GameConfig requests a new session. Custom bounds override the difficulty
// preset only when both are present.
type GameConfig struct {
	Difficulty        Difficulty
	CustomMinRange    *int
	CustomMaxRange    *int
	CustomMaxAttempts *int
}

// GuessOutcome is returned after a guess: the new attempt plus the session
// state it produced.
type GuessOutcome struct {
	Attempt           GameAttempt `json:"attempt"`
	Status            GameStatus  `json:"status"`
	AttemptsCount     int         `json:"attemptsCount"`
	RemainingAttempts int         `json:"remainingAttempts"`
	Score             int         `json:"score"`
	GameEnded         bool        `json:"gameEnded"`
}

// SessionFilter narrows a user's game history.
type SessionFilter struct {
	UserID     string
	Status     *GameStatus
	Difficulty *Difficulty
	Limit      int
	Offset     int
}

// DifficultyBreakdown aggregates finished sessions of one difficulty.
type DifficultyBreakdown struct {
	Difficulty   Difficulty `json:"difficulty"`
	GamesPlayed  int        `json:"gamesPlayed"`
	GamesWon     int        `json:"gamesWon"`
	AverageScore float64    `json:"averageScore"`
	BestScore    int        `json:"bestScore"`
}
