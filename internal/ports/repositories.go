package ports

import (
	"context"

	"github.com/flapboard/core/internal/domain/entities"
)

// ScoreRepository defines the interface for leaderboard data operations
type ScoreRepository interface {
	// List returns every stored entry in stored order. It never fails: an
	// unreadable file is reset and reads as empty.
	List(ctx context.Context) []entities.ScoreEntry
	// Update runs a read-modify-write cycle on the full sequence while
	// holding the store lock. Returning an error from fn skips the write.
	Update(ctx context.Context, fn func([]entities.ScoreEntry) ([]entities.ScoreEntry, error)) error
}

// AccountRepository defines the interface for account data operations
type AccountRepository interface {
	List(ctx context.Context) []entities.UserAccount
	Update(ctx context.Context, fn func([]entities.UserAccount) ([]entities.UserAccount, error)) error
}
