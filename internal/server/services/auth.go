// Package services contains server-side business logic. This file implements
// AuthService, which handles login, registration, account deletion, and the
// password-recovery flow.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/expreshop/expreshop/internal/common"
	"github.com/expreshop/expreshop/internal/server/auth"
	"github.com/expreshop/expreshop/internal/server/config"
	"github.com/expreshop/expreshop/internal/server/models"
	"github.com/expreshop/expreshop/internal/server/repositories/repomanager"
)

// SessionToken is the login result handed to the HTTP boundary.
type SessionToken struct {
	AccessToken string
	TokenType   string
}

// RecoveryDispatcher hands a recovery email off for background delivery.
// The call returns immediately; delivery failures are never surfaced.
type RecoveryDispatcher interface {
	Enqueue(email, token string)
}

// AuthService provides authentication-related operations:
//   - Login: verify credentials and mint a session token
//   - Register / DeleteUser: account lifecycle
//   - RequestPasswordRecovery / ResetPassword: emailed-token password reset
type AuthService struct {
	db                            *sql.DB
	repomanager                   repomanager.RepositoryManager
	hasher                        auth.PasswordHasher
	tokens                        *auth.TokenService
	dispatcher                    RecoveryDispatcher
	accessTokenValidityDuration   time.Duration
	recoveryTokenValidityDuration time.Duration
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, h auth.PasswordHasher, ts *auth.TokenService, d RecoveryDispatcher, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                            db,
		repomanager:                   m,
		hasher:                        h,
		tokens:                        ts,
		dispatcher:                    d,
		accessTokenValidityDuration:   cfg.AccessTokenValidityDuration,
		recoveryTokenValidityDuration: cfg.RecoveryTokenValidityDuration,
	}
}

// Login verifies the password for the named account and, on success, mints a
// session token with the username as subject and the account's role claim.
func (s *AuthService) Login(ctx context.Context, username, password string) (*SessionToken, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}

	// The disabled flag is stored but deliberately not checked here; the
	// system this replaces never enforced it.
	if !s.hasher.Verify(password, user.HashedPassword) {
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username, user.Role, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrInternal
	}

	return &SessionToken{AccessToken: token, TokenType: "bearer"}, nil
}

// Register creates a new account. The username must be free; the email, when
// given, must be free as well. Duplicate absent emails never collide.
func (s *AuthService) Register(ctx context.Context, username, fullName, email, password, role string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByUsername(ctx, username); err == nil {
		return nil, common.ErrUsernameTaken
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	if email != "" {
		if _, err := repo.GetByEmail(ctx, email); err == nil {
			return nil, common.ErrEmailTaken
		} else if !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, common.ErrInternal
	}

	if role == "" {
		role = models.DefaultRole
	}

	user := &models.User{
		Username:       username,
		FullName:       fullName,
		Email:          email,
		HashedPassword: hashed,
		Disabled:       false,
		Role:           role,
	}

	created, err := repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return created, nil
}

// DeleteUser removes the named account. No authorization check happens here;
// the HTTP boundary is responsible for that.
func (s *AuthService) DeleteUser(ctx context.Context, username string) error {
	repo := s.repomanager.Users(s.db)
	if err := repo.Delete(ctx, username); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUserNotFound
		}
		return err
	}
	return nil
}

// RequestPasswordRecovery issues a recovery token for the account owning the
// email and hands it to the background mailer. The caller gets an immediate
// acknowledgment; whether the email ever delivers is not observable.
func (s *AuthService) RequestPasswordRecovery(ctx context.Context, email string) error {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUserNotFound
		}
		return err
	}

	token, err := s.tokens.Issue(user.Email, "", s.recoveryTokenValidityDuration)
	if err != nil {
		return common.ErrInternal
	}

	s.dispatcher.Enqueue(user.Email, token)
	return nil
}

// ResetPassword verifies a recovery token, resolves its subject as an email,
// and overwrites that account's password. An invalid or expired token aborts
// before any mutation.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return err
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUserNotFound
		}
		return err
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return common.ErrInternal
	}

	return repo.UpdatePassword(ctx, user.ID, hashed)
}
