package api

import (
	"context"
	"time"

	"github.com/vytor/numguess/internal/services"
)

const defaultRequestTimeout = 30 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	AuthService    services.AuthService
	GameService    services.GameService
	StatsService   services.StatsService
	DB             Pinger
	RequestTimeout time.Duration
}
