package repository

import (
	"context"

	"github.com/flapboard/core/internal/domain/entities"
	"github.com/flapboard/core/internal/infrastructure/storage"
	"github.com/flapboard/core/internal/ports"
)

// AccountRepositoryImpl implements the AccountRepository interface on a JSON file
type AccountRepositoryImpl struct {
	store *storage.Store[entities.UserAccount]
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(store *storage.Store[entities.UserAccount]) ports.AccountRepository {
	return &AccountRepositoryImpl{store: store}
}

func (r *AccountRepositoryImpl) List(ctx context.Context) []entities.UserAccount {
	return r.store.Load()
}

func (r *AccountRepositoryImpl) Update(ctx context.Context, fn func([]entities.UserAccount) ([]entities.UserAccount, error)) error {
	return r.store.Update(fn)
}
