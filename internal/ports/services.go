package ports

import (
	"context"

	"github.com/flapboard/core/internal/domain/entities"
)

// LeaderboardService interface for score operations
type LeaderboardService interface {
	Submit(ctx context.Context, name string, score int64) (*SubmitResult, error)
	TopScores(ctx context.Context, n int) []entities.ScoreEntry
	Rank(ctx context.Context, name string) (*RankedEntry, error)
}

// AccountService interface for account operations
type AccountService interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) error
}

// Request/Response Types

type SubmitScoreRequest struct {
	Name  string `json:"name" validate:"required,min=1"`
	Score *int64 `json:"score" validate:"required,min=0"`
}

type CredentialsRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Password string `json:"password" validate:"required,min=3"`
}

type SubmitResult struct {
	Entry   entities.ScoreEntry `json:"entry"`
	Created bool                `json:"created"`
	Updated bool                `json:"updated"`
}

type RankedEntry struct {
	Rank  int                 `json:"rank"`
	Entry entities.ScoreEntry `json:"entry"`
	Total int                 `json:"total"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
