package api

import (
	"encoding/json"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/vytor/numguess/internal/errors"
	"github.com/vytor/numguess/internal/models"
)

const (
	maxCustomRange    = 10000
	maxCustomAttempts = 50
	maxGuess          = 10000
	maxEmailLength    = 254
	minPasswordLength = 8
	maxPasswordLength = 100
	maxNameLength     = 50
	minRefreshLength  = 10
)

var nameRe = regexp.MustCompile(`^[a-zA-Z\s\-'\.]*$`)

// validator collects per-field messages in the order they were found.
type validator struct {
	details map[string][]string
}

func (v *validator) add(field, message string) {
	if v.details == nil {
		v.details = map[string][]string{}
	}
	v.details[field] = append(v.details[field], message)
}

func (v *validator) check(ok bool, field, message string) {
	if !ok {
		v.add(field, message)
	}
}

func (v *validator) err() error {
	if len(v.details) == 0 {
		return nil
	}
	return errors.NewValidationErrors(v.details)
}

type createGameRequest struct {
	Difficulty        json.RawMessage `json:"difficulty"`
	CustomMinRange    *int            `json:"customMinRange"`
	CustomMaxRange    *int            `json:"customMaxRange"`
	CustomMaxAttempts *int            `json:"customMaxAttempts"`
}

// parseDifficulty accepts a difficulty name in any case or its number.
// An absent value means Normal.
func parseDifficulty(raw json.RawMessage) (models.Difficulty, bool) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return models.DifficultyNormal, true
	}
	if n, err := strconv.Atoi(text); err == nil {
		d := models.Difficulty(n)
		return d, d.Valid()
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return 0, false
	}
	for _, d := range models.Difficulties {
		if strings.EqualFold(d.String(), strings.TrimSpace(name)) {
			return d, true
		}
	}
	return 0, false
}

func (req createGameRequest) validate() (models.GameConfig, error) {
	var v validator

	difficulty, ok := parseDifficulty(req.Difficulty)
	v.check(ok, "difficulty", "Invalid difficulty level")

	if req.CustomMinRange != nil {
		v.check(*req.CustomMinRange > 0, "customMinRange", "Minimum range must be greater than 0")
	}
	if req.CustomMinRange != nil && req.CustomMaxRange != nil {
		v.check(*req.CustomMaxRange > *req.CustomMinRange, "customMaxRange", "Maximum range must be greater than minimum range")
		v.check(*req.CustomMaxRange <= maxCustomRange, "customMaxRange", "Maximum range cannot exceed 10,000")
	}
	if req.CustomMaxAttempts != nil {
		v.check(*req.CustomMaxAttempts > 0, "customMaxAttempts", "Maximum attempts must be greater than 0")
		v.check(*req.CustomMaxAttempts <= maxCustomAttempts, "customMaxAttempts", "Maximum attempts cannot exceed 50")
	}
	v.check((req.CustomMinRange == nil) == (req.CustomMaxRange == nil), "customRange",
		"Both minimum and maximum range must be provided when using custom ranges")

	if err := v.err(); err != nil {
		return models.GameConfig{}, err
	}
	return models.GameConfig{
		Difficulty:        difficulty,
		CustomMinRange:    req.CustomMinRange,
		CustomMaxRange:    req.CustomMaxRange,
		CustomMaxAttempts: req.CustomMaxAttempts,
	}, nil
}

type guessRequest struct {
	GuessedNumber int `json:"guessedNumber"`
}

func (req guessRequest) validate() error {
	var v validator
	v.check(req.GuessedNumber > 0, "guessedNumber", "Guessed number must be greater than 0")
	v.check(req.GuessedNumber <= maxGuess, "guessedNumber", "Guessed number cannot exceed 10,000")
	return v.err()
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email, "@")
}

func (v *validator) email(field, email string) {
	switch {
	case strings.TrimSpace(email) == "":
		v.add(field, "Email is required")
	case !validEmail(strings.TrimSpace(email)):
		v.add(field, "Invalid email format")
	}
}

// password applies the strength rules. prefix is "" or "new " and leads
// each message.
func (v *validator) password(field, prefix, password string) {
	label := prefix + "password"
	label = strings.ToUpper(label[:1]) + label[1:]

	if password == "" {
		v.add(field, label+" is required")
		return
	}
	n := utf8.RuneCountInString(password)
	v.check(n >= minPasswordLength, field, label+" must be at least 8 characters long")
	v.check(n <= maxPasswordLength, field, label+" must not exceed 100 characters")

	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	v.check(lower && upper && digit, field, label+" must contain at least one lowercase letter, one uppercase letter, and one digit")
}

func (v *validator) name(field, label, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, label+" is required")
		return
	}
	v.check(utf8.RuneCountInString(value) <= maxNameLength, field, label+" must not exceed 50 characters")
	v.check(nameRe.MatchString(value), field, label+" can only contain letters, spaces, hyphens, apostrophes, and periods")
}

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
}

func (req registerRequest) validate() (models.RegisterInput, error) {
	var v validator
	v.email("email", req.Email)
	v.check(len(req.Email) <= maxEmailLength, "email", "Email must not exceed 254 characters")
	v.password("password", "", req.Password)
	if req.ConfirmPassword == "" {
		v.add("confirmPassword", "Password confirmation is required")
	} else {
		v.check(req.ConfirmPassword == req.Password, "confirmPassword", "Passwords do not match")
	}
	v.name("firstName", "First name", req.FirstName)
	v.name("lastName", "Last name", req.LastName)

	if err := v.err(); err != nil {
		return models.RegisterInput{}, err
	}
	return models.RegisterInput(req), nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req loginRequest) validate() error {
	var v validator
	v.email("email", req.Email)
	v.check(req.Password != "", "password", "Password is required")
	return v.err()
}

type changePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

func (req changePasswordRequest) validate() error {
	var v validator
	v.check(req.CurrentPassword != "", "currentPassword", "Current password is required")
	v.password("newPassword", "new ", req.NewPassword)
	if req.NewPassword != "" {
		v.check(req.NewPassword != req.CurrentPassword, "newPassword", "New password must be different from current password")
	}
	if req.ConfirmNewPassword == "" {
		v.add("confirmNewPassword", "Password confirmation is required")
	} else {
		v.check(req.ConfirmNewPassword == req.NewPassword, "confirmNewPassword", "New passwords do not match")
	}
	return v.err()
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (req refreshTokenRequest) validate() error {
	var v validator
	switch {
	case req.RefreshToken == "":
		v.add("refreshToken", "Refresh token is required")
	case len(req.RefreshToken) < minRefreshLength:
		v.add("refreshToken", "Invalid refresh token format")
	}
	return v.err()
}
