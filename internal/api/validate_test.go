package api

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/numguess/internal/errors"
	"github.com/vytor/numguess/internal/models"
)

func intPtr(v int) *int { return &v }

func detailsOf(t *testing.T, err error) map[string][]string {
	t.Helper()
	require.Error(t, err)
	appErr := errors.AsAppError(err)
	require.Equal(t, errors.ErrCodeValidation, appErr.Code)
	return appErr.Details
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		raw  string
		want models.Difficulty
		ok   bool
	}{
		{raw: ``, want: models.DifficultyNormal, ok: true},
		{raw: `null`, want: models.DifficultyNormal, ok: true},
		{raw: `"Hard"`, want: models.DifficultyHard, ok: true},
		{raw: `"expert"`, want: models.DifficultyExpert, ok: true},
		{raw: `1`, want: models.DifficultyEasy, ok: true},
		{raw: `9`, ok: false},
		{raw: `"Impossible"`, ok: false},
		{raw: `true`, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parseDifficulty(json.RawMessage(tt.raw))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCreateGameRequest_Validate(t *testing.T) {
	tests := []struct {
		name  string
		req   createGameRequest
		field string
	}{
		{
			name:  "min not positive",
			req:   createGameRequest{CustomMinRange: intPtr(0), CustomMaxRange: intPtr(10)},
			field: "customMinRange",
		},
		{
			name:  "max not above min",
			req:   createGameRequest{CustomMinRange: intPtr(10), CustomMaxRange: intPtr(10)},
			field: "customMaxRange",
		},
		{
			name:  "max above limit",
			req:   createGameRequest{CustomMinRange: intPtr(1), CustomMaxRange: intPtr(10001)},
			field: "customMaxRange",
		},
		{
			name:  "attempts zero",
			req:   createGameRequest{CustomMaxAttempts: intPtr(0)},
			field: "customMaxAttempts",
		},
		{
			name:  "attempts above limit",
			req:   createGameRequest{CustomMaxAttempts: intPtr(51)},
			field: "customMaxAttempts",
		},
		{
			name:  "only min supplied",
			req:   createGameRequest{CustomMinRange: intPtr(5)},
			field: "customRange",
		},
		{
			name:  "unknown difficulty",
			req:   createGameRequest{Difficulty: json.RawMessage(`"Impossible"`)},
			field: "difficulty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.validate()
			assert.Contains(t, detailsOf(t, err), tt.field)
		})
	}
}

func TestCreateGameRequest_ValidCustomRange(t *testing.T) {
	cfg, err := createGameRequest{
		Difficulty:        json.RawMessage(`"Easy"`),
		CustomMinRange:    intPtr(1),
		CustomMaxRange:    intPtr(10000),
		CustomMaxAttempts: intPtr(50),
	}.validate()
	require.NoError(t, err)
	assert.Equal(t, models.DifficultyEasy, cfg.Difficulty)
	assert.Equal(t, 10000, *cfg.CustomMaxRange)
}

func TestGuessRequest_Validate(t *testing.T) {
	assert.NoError(t, guessRequest{GuessedNumber: 1}.validate())
	assert.NoError(t, guessRequest{GuessedNumber: 10000}.validate())
	assert.Contains(t, detailsOf(t, guessRequest{GuessedNumber: 0}.validate()), "guessedNumber")
	assert.Contains(t, detailsOf(t, guessRequest{GuessedNumber: 10001}.validate()), "guessedNumber")
}

func validRegister() registerRequest {
	return registerRequest{
		Email:           "ada@example.com",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
		FirstName:       "Ada",
		LastName:        "O'Neil-Smith Jr.",
	}
}

func TestRegisterRequest_Validate(t *testing.T) {
	input, err := validRegister().validate()
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", input.Email)

	tests := []struct {
		name    string
		mutate  func(*registerRequest)
		field   string
		message string
	}{
		{
			name:    "missing email",
			mutate:  func(r *registerRequest) { r.Email = "" },
			field:   "email",
			message: "Email is required",
		},
		{
			name:    "malformed email",
			mutate:  func(r *registerRequest) { r.Email = "not-an-email" },
			field:   "email",
			message: "Invalid email format",
		},
		{
			name:    "email too long",
			mutate:  func(r *registerRequest) { r.Email = strings.Repeat("a", 250) + "@example.com" },
			field:   "email",
			message: "Email must not exceed 254 characters",
		},
		{
			name:    "short password",
			mutate:  func(r *registerRequest) { r.Password, r.ConfirmPassword = "Ab1", "Ab1" },
			field:   "password",
			message: "Password must be at least 8 characters long",
		},
		{
			name:    "weak password",
			mutate:  func(r *registerRequest) { r.Password, r.ConfirmPassword = "alllowercase1", "alllowercase1" },
			field:   "password",
			message: "Password must contain at least one lowercase letter, one uppercase letter, and one digit",
		},
		{
			name:    "confirmation mismatch",
			mutate:  func(r *registerRequest) { r.ConfirmPassword = "Secret124" },
			field:   "confirmPassword",
			message: "Passwords do not match",
		},
		{
			name:    "name with digits",
			mutate:  func(r *registerRequest) { r.FirstName = "R2D2" },
			field:   "firstName",
			message: "First name can only contain letters, spaces, hyphens, apostrophes, and periods",
		},
		{
			name:    "name too long",
			mutate:  func(r *registerRequest) { r.LastName = strings.Repeat("a", 51) },
			field:   "lastName",
			message: "Last name must not exceed 50 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegister()
			tt.mutate(&req)
			_, err := req.validate()
			assert.Contains(t, detailsOf(t, err)[tt.field], tt.message)
		})
	}
}

func TestChangePasswordRequest_Validate(t *testing.T) {
	ok := changePasswordRequest{CurrentPassword: "Secret123", NewPassword: "Secret456", ConfirmNewPassword: "Secret456"}
	assert.NoError(t, ok.validate())

	same := changePasswordRequest{CurrentPassword: "Secret123", NewPassword: "Secret123", ConfirmNewPassword: "Secret123"}
	assert.Contains(t, detailsOf(t, same.validate())["newPassword"], "New password must be different from current password")

	mismatch := changePasswordRequest{CurrentPassword: "Secret123", NewPassword: "Secret456", ConfirmNewPassword: "Secret789"}
	assert.Contains(t, detailsOf(t, mismatch.validate())["confirmNewPassword"], "New passwords do not match")

	weak := changePasswordRequest{CurrentPassword: "Secret123", NewPassword: "short", ConfirmNewPassword: "short"}
	assert.Contains(t, detailsOf(t, weak.validate())["newPassword"], "New password must be at least 8 characters long")
}

func TestLoginAndRefreshRequest_Validate(t *testing.T) {
	assert.NoError(t, loginRequest{Email: "ada@example.com", Password: "x"}.validate())
	assert.Contains(t, detailsOf(t, loginRequest{Email: "ada@example.com"}.validate()), "password")

	assert.Contains(t, detailsOf(t, refreshTokenRequest{}.validate())["refreshToken"], "Refresh token is required")
	assert.Contains(t, detailsOf(t, refreshTokenRequest{RefreshToken: "short"}.validate())["refreshToken"], "Invalid refresh token format")
	assert.NoError(t, refreshTokenRequest{RefreshToken: "0123456789"}.validate())
}
