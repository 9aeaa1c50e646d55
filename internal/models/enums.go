package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// GameStatus is the lifecycle state of a game session.
type GameStatus int

const (
	StatusInProgress GameStatus = iota + 1
	StatusWon
	StatusLost
	StatusAbandoned
)

var gameStatusNames = map[GameStatus]string{
	StatusInProgress: "InProgress",
	StatusWon:        "Won",
	StatusLost:       "Lost",
	StatusAbandoned:  "Abandoned",
}

func (s GameStatus) String() string {
	if name, ok := gameStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("GameStatus(%d)", int(s))
}

// Terminal reports whether no further guesses are accepted.
func (s GameStatus) Terminal() bool {
	return s == StatusWon || s == StatusLost || s == StatusAbandoned
}

// ParseGameStatus maps the storage name back to a GameStatus.
func ParseGameStatus(s string) (GameStatus, error) {
	for status, name := range gameStatusNames {
		if name == s {
			return status, nil
		}
	}
	return 0, fmt.Errorf("unknown game status %q", s)
}

func (s GameStatus) MarshalJSON() ([]byte, error) {
	if _, ok := gameStatusNames[s]; !ok {
		return nil, fmt.Errorf("cannot marshal %s", s)
	}
	return json.Marshal(s.String())
}

func (s *GameStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseGameStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s GameStatus) Value() (driver.Value, error) {
	if _, ok := gameStatusNames[s]; !ok {
		return nil, fmt.Errorf("cannot store %s", s)
	}
	return s.String(), nil
}

func (s *GameStatus) Scan(src any) error {
	name, err := scanString(src)
	if err != nil {
		return err
	}
	parsed, err := ParseGameStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Difficulty selects the default range and attempt budget of a session.
type Difficulty int

const (
	DifficultyEasy Difficulty = iota + 1
	DifficultyNormal
	DifficultyHard
	DifficultyExpert
)

var difficultyNames = map[Difficulty]string{
	DifficultyEasy:   "Easy",
	DifficultyNormal: "Normal",
	DifficultyHard:   "Hard",
	DifficultyExpert: "Expert",
}

// Difficulties lists every difficulty in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyExpert}

func (d Difficulty) String() string {
	if name, ok := difficultyNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Difficulty(%d)", int(d))
}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	_, ok := difficultyNames[d]
	return ok
}

// ParseDifficulty maps the storage name back to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	for d, name := range difficultyNames {
		if name == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown difficulty %q", s)
}

func (d Difficulty) MarshalJSON() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", d)
	}
	return json.Marshal(d.String())
}

func (d *Difficulty) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseDifficulty(name)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Difficulty) Value() (driver.Value, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("cannot store %s", d)
	}
	return d.String(), nil
}

func (d *Difficulty) Scan(src any) error {
	name, err := scanString(src)
	if err != nil {
		return err
	}
	parsed, err := ParseDifficulty(name)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// GuessResult is the outcome of a single attempt.
type GuessResult int

const (
	ResultTooLow GuessResult = iota + 1
	ResultTooHigh
	ResultCorrect
)

var guessResultNames = map[GuessResult]string{
	ResultTooLow:  "TooLow",
	ResultTooHigh: "TooHigh",
	ResultCorrect: "Correct",
}

func (r GuessResult) String() string {
	if name, ok := guessResultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("GuessResult(%d)", int(r))
}

// ParseGuessResult maps the storage name back to a GuessResult.
func ParseGuessResult(s string) (GuessResult, error) {
	for r, name := range guessResultNames {
		if name == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown guess result %q", s)
}

func (r GuessResult) MarshalJSON() ([]byte, error) {
	if _, ok := guessResultNames[r]; !ok {
		return nil, fmt.Errorf("cannot marshal %s", r)
	}
	return json.Marshal(r.String())
}

func (r *GuessResult) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseGuessResult(name)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r GuessResult) Value() (driver.Value, error) {
	if _, ok := guessResultNames[r]; !ok {
		return nil, fmt.Errorf("cannot store %s", r)
	}
	return r.String(), nil
}

func (r *GuessResult) Scan(src any) error {
	name, err := scanString(src)
	if err != nil {
		return err
	}
	parsed, err := ParseGuessResult(name)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func scanString(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unsupported scan type %T", src)
	}
}
