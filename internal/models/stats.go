package models

import "time"

// UserGameStatistics holds a user's cumulative counters.
type UserGameStatistics struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	GamesPlayed   int       `json:"gamesPlayed"`
	GamesWon      int       `json:"gamesWon"`
	TotalScore    int       `json:"totalScore"`
	BestAttempts  *int      `json:"bestAttempts"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// WinRate is the percentage of played games that were won.
func (s *UserGameStatistics) WinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.GamesWon) / float64(s.GamesPlayed) * 100
}

// Record folds one finished game into the counters. bestAttempts only
// ever decreases.
func (s *UserGameStatistics) Record(score int, isWin bool, attempts int, now time.Time) {
	s.GamesPlayed++
	s.TotalScore += score
	if isWin {
		s.GamesWon++
		if attempts > 0 && (s.BestAttempts == nil || attempts < *s.BestAttempts) {
			best := attempts
			s.BestAttempts = &best
		}
	}
	s.LastUpdatedAt = now
}

// GameStats is the per-user summary returned by the stats endpoint.
type GameStats struct {
	TotalGames        int                   `json:"totalGames"`
	GamesWon          int                   `json:"gamesWon"`
	TotalScore        int                   `json:"totalScore"`
	WinRate           float64               `json:"winRate"`
	BestAttempts      *int                  `json:"bestAttempts"`
	StatsByDifficulty []DifficultyBreakdown `json:"statsByDifficulty"`
}

// LeaderboardOrder selects how leaderboard rows are ranked.
type LeaderboardOrder string

const (
	LeaderboardByScore   LeaderboardOrder = "score"
	LeaderboardByWinRate LeaderboardOrder = "winrate"
)

// DefaultLeaderboardMinGames is the games-played floor for the win-rate board.
const DefaultLeaderboardMinGames = 5

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Rank         int     `json:"rank"`
	UserID       string  `json:"userId"`
	DisplayName  string  `json:"displayName"`
	GamesPlayed  int     `json:"gamesPlayed"`
	GamesWon     int     `json:"gamesWon"`
	TotalScore   int     `json:"totalScore"`
	WinRate      float64 `json:"winRate"`
	BestAttempts *int    `json:"bestAttempts"`
}

// LeaderboardQuery selects a leaderboard page.
type LeaderboardQuery struct {
	Order    LeaderboardOrder
	MinGames int
	Limit    int
	Offset   int
}
