package repository

import (
	"context"

	"github.com/flapboard/core/internal/domain/entities"
	"github.com/flapboard/core/internal/infrastructure/storage"
	"github.com/flapboard/core/internal/ports"
)

// ScoreRepositoryImpl implements the ScoreRepository interface on a JSON file
type ScoreRepositoryImpl struct {
	store *storage.Store[entities.ScoreEntry]
}

// NewScoreRepository creates a new score repository
func NewScoreRepository(store *storage.Store[entities.ScoreEntry]) ports.ScoreRepository {
	return &ScoreRepositoryImpl{store: store}
}

func (r *ScoreRepositoryImpl) List(ctx context.Context) []entities.ScoreEntry {
	return r.store.Load()
}

func (r *ScoreRepositoryImpl) Update(ctx context.Context, fn func([]entities.ScoreEntry) ([]entities.ScoreEntry, error)) error {
	return r.store.Update(fn)
}
