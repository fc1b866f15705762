package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/flapboard/core/internal/domain/entities"
	"github.com/flapboard/core/internal/infrastructure/logger"
	"github.com/flapboard/core/internal/ports"
)

// AccountService handles registration and credential checks
type AccountService struct {
	accountRepo ports.AccountRepository
	digester    *PasswordDigester
	logger      *logger.Logger
}

// NewAccountService creates a new account service
func NewAccountService(accountRepo ports.AccountRepository, digester *PasswordDigester, logger *logger.Logger) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		digester:    digester,
		logger:      logger.WithComponent("accounts"),
	}
}

// Register creates a new account
func (s *AccountService) Register(ctx context.Context, username, password string) error {
	if n := utf8.RuneCountInString(username); n < entities.UsernameMinLength || n > entities.UsernameMaxLength {
		return fmt.Errorf("%w: username must be %d-%d characters",
			entities.ErrValidation, entities.UsernameMinLength, entities.UsernameMaxLength)
	}
	if utf8.RuneCountInString(password) < entities.PasswordMinLength {
		return fmt.Errorf("%w: password must be at least %d characters",
			entities.ErrValidation, entities.PasswordMinLength)
	}

	err := s.accountRepo.Update(ctx, func(accounts []entities.UserAccount) ([]entities.UserAccount, error) {
		for _, a := range accounts {
			if a.Username == username {
				return nil, fmt.Errorf("%w: username %s already exists", entities.ErrConflict, username)
			}
		}

		return append(accounts, entities.UserAccount{
			Username:     username,
			PasswordHash: s.digester.Digest(password),
		}), nil
	})
	if err != nil {
		return fmt.Errorf("failed to register account: %w", err)
	}

	s.logger.Infow("Account registered", "username", username)
	return nil
}

// Login checks username and password against the stored accounts. It has
// no side effects.
func (s *AccountService) Login(ctx context.Context, username, password string) error {
	accounts := s.accountRepo.List(ctx)

	for _, a := range accounts {
		if a.Username == username && s.digester.Matches(password, a.PasswordHash) {
			s.logger.Infow("Account logged in", "username", username)
			return nil
		}
	}

	s.logger.Warnw("Login attempt with invalid credentials", "username", username)
	return entities.ErrAuthentication
}
