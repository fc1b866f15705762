package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/flapboard/core/internal/domain/entities"
	"github.com/flapboard/core/internal/infrastructure/logger"
	"github.com/flapboard/core/internal/ports"
)

// LeaderboardService handles score submission and ranking
type LeaderboardService struct {
	scoreRepo ports.ScoreRepository
	logger    *logger.Logger
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(scoreRepo ports.ScoreRepository, logger *logger.Logger) *LeaderboardService {
	return &LeaderboardService{
		scoreRepo: scoreRepo,
		logger:    logger.WithComponent("leaderboard"),
	}
}

// Submit records score for name, keeping the best score per player.
// Names match case-insensitively; a new player keeps the submitted casing.
func (s *LeaderboardService) Submit(ctx context.Context, name string, score int64) (*ports.SubmitResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", entities.ErrValidation)
	}
	if score < 0 {
		return nil, fmt.Errorf("%w: score must not be negative", entities.ErrValidation)
	}

	var (
		result ports.SubmitResult
		merged int
	)
	err := s.scoreRepo.Update(ctx, func(entries []entities.ScoreEntry) ([]entities.ScoreEntry, error) {
		entries, merged = collapseDuplicates(entries)

		for i := range entries {
			if entries[i].SameName(name) {
				result.Updated = entries[i].Raise(score)
				result.Entry = entries[i]
				return entries, nil
			}
		}

		result.Created = true
		result.Entry = entities.ScoreEntry{Name: name, Score: score}
		return append(entries, result.Entry), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save score: %w", err)
	}

	if merged > 0 {
		s.logger.Warnw("Merged duplicate leaderboard entries", "merged", merged)
	}

	s.logger.Infow("Score submitted",
		"name", result.Entry.Name,
		"submitted", score,
		"best", result.Entry.Score,
		"created", result.Created,
		"updated", result.Updated,
	)

	return &result, nil
}

// TopScores returns the n best entries, highest first. Equal scores keep
// their stored order. n <= 0 selects the default board size.
func (s *LeaderboardService) TopScores(ctx context.Context, n int) []entities.ScoreEntry {
	if n <= 0 {
		n = entities.DefaultTopScores
	}

	ranked := rank(s.scoreRepo.List(ctx))
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Rank returns the position of name in the full ordering
func (s *LeaderboardService) Rank(ctx context.Context, name string) (*ports.RankedEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", entities.ErrValidation)
	}

	ranked := rank(s.scoreRepo.List(ctx))
	for i := range ranked {
		if ranked[i].SameName(name) {
			return &ports.RankedEntry{
				Rank:  i + 1,
				Entry: ranked[i],
				Total: len(ranked),
			}, nil
		}
	}

	return nil, fmt.Errorf("%w: no score for %q", entities.ErrNotFound, name)
}

// rank orders entries by score, highest first. Nameless entries, left by
// malformed records in the file, are kept on disk but never ranked.
func rank(entries []entities.ScoreEntry) []entities.ScoreEntry {
	sorted := slices.DeleteFunc(slices.Clone(entries), func(e entities.ScoreEntry) bool {
		return e.Name == ""
	})
	slices.SortStableFunc(sorted, func(a, b entities.ScoreEntry) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return sorted
}

// collapseDuplicates folds entries whose names differ only by case into the
// first of them, which keeps the highest score. Nameless entries are left
// untouched. It returns how many were dropped.
func collapseDuplicates(entries []entities.ScoreEntry) ([]entities.ScoreEntry, int) {
	first := make(map[string]int, len(entries))
	out := entries[:0:0]

	for _, e := range entries {
		if e.Name == "" {
			out = append(out, e)
			continue
		}
		key := entities.NameKey(e.Name)
		if i, ok := first[key]; ok {
			out[i].Raise(e.Score)
			continue
		}
		first[key] = len(out)
		out = append(out, e)
	}

	return out, len(entries) - len(out)
}
