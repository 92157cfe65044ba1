package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hangaroo/backend/internal/auth"
	"github.com/hangaroo/backend/internal/model"
	"github.com/hangaroo/backend/internal/repository"
)

// GoogleVerifier is the federated-identity contract: given an ID token it
// either returns a verified identity or fails.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*model.GoogleAccountParams, error)
}

// AccountService handles signup, signin, federated login, profile reads, and
// push-token registration.
type AccountService struct {
	accounts repository.AccountRepository
	tokens   *auth.TokenManager
	google   GoogleVerifier
	log      *slog.Logger
}

// NewAccountService constructs an AccountService with its dependencies.
func NewAccountService(
	accounts repository.AccountRepository,
	tokens *auth.TokenManager,
	google GoogleVerifier,
	log *slog.Logger,
) *AccountService {
	return &AccountService{accounts: accounts, tokens: tokens, google: google, log: log}
}

// SignUp creates a credential-backed account.
func (s *AccountService) SignUp(ctx context.Context, params *model.SignUpParams) (*model.Account, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	return s.accounts.Create(ctx, params.Email, hash,
		strings.TrimSpace(params.FirstName), strings.TrimSpace(params.LastName))
}

// SignIn exchanges credentials for a bearer token. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *AccountService) SignIn(ctx context.Context, params *model.SignInParams) (string, *model.Account, error) {
	email := strings.TrimSpace(strings.ToLower(params.Email))
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", nil, model.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("sign in: %w", err)
	}

	if !auth.CheckPassword(account.PasswordHash, params.Password) {
		return "", nil, model.ErrInvalidCredentials
	}

	if err := s.accounts.TouchLastLogin(ctx, account.ID); err != nil {
		s.log.Warn("refresh last login failed",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()))
	}

	token, err := s.tokens.Mint(account.ID)
	if err != nil {
		return "", nil, fmt.Errorf("mint token: %w", err)
	}
	return token, account, nil
}

// GoogleSignIn verifies the external identity and signs the account in,
// creating it on first login.
func (s *AccountService) GoogleSignIn(ctx context.Context, idToken string) (string, *model.Account, error) {
	if strings.TrimSpace(idToken) == "" {
		return "", nil, fmt.Errorf("%w: idToken is required", model.ErrValidation)
	}

	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return "", nil, err
	}

	account, err := s.accounts.UpsertGoogle(ctx, identity)
	if err != nil {
		return "", nil, fmt.Errorf("google sign in: %w", err)
	}

	token, err := s.tokens.Mint(account.ID)
	if err != nil {
		return "", nil, fmt.Errorf("mint token: %w", err)
	}
	return token, account, nil
}

// Profile returns the account's own view, accumulated points included.
func (s *AccountService) Profile(ctx context.Context, accountID string) (*model.Account, error) {
	return s.accounts.GetByID(ctx, accountID)
}

// SetPushToken registers the push-delivery address for the account.
func (s *AccountService) SetPushToken(ctx context.Context, accountID, token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%w: token is required", model.ErrValidation)
	}
	return s.accounts.SetPushToken(ctx, accountID, token)
}
