// Package services contains server-side business logic. This file implements
// SessionService, the session manager: registration, login, refresh-token
// rotation, and logout, composed from the credential store, the token
// signer, and the refresh-token ledger.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/dsavelev/sessiond/internal/common"
	"github.com/dsavelev/sessiond/internal/dbx"
	"github.com/dsavelev/sessiond/internal/server/auth"
	"github.com/dsavelev/sessiond/internal/server/config"
	"github.com/dsavelev/sessiond/internal/server/models"
	"github.com/dsavelev/sessiond/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthResult bundles a short-lived access token, a long-lived refresh token,
// and the authenticated user.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
}

// SessionService provides authentication-related operations:
// - Register: create users
// - Login: verify credentials and mint a token pair
// - Refresh: rotate refresh tokens and mint new access tokens
// - Logout: revoke a refresh token
type SessionService struct {
	db                           *sql.DB
	repos                        repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewSessionService constructs a SessionService using repositories and
// server config.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *SessionService {
	return &SessionService{
		db:                           db,
		repos:                        m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// dummyHash is a valid bcrypt hash compared against when the user does not
// exist, so login cost does not reveal account existence.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Register creates a new user after validating the input and checking
// username/email uniqueness. The password is stored only as a bcrypt hash.
func (s *SessionService) Register(ctx context.Context, username, email, password string) error {
	if err := validateRegistration(username, email, password); err != nil {
		return err
	}

	repo := s.repos.Users(s.db)

	taken, err := repo.ExistsByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("error checking username: %w", err)
	}
	if taken {
		return common.ErrUsernameTaken
	}

	taken, err = repo.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("error checking email: %w", err)
	}
	if taken {
		return common.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return common.ErrorInternal
	}

	user := &models.User{Username: username, Email: email, PasswordHash: string(hash)}
	if _, err := repo.Create(ctx, user); err != nil {
		// The unique indexes are the backstop for races between the
		// existence checks and the insert.
		if errors.Is(err, common.ErrUsernameTaken) || errors.Is(err, common.ErrEmailTaken) {
			return err
		}
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

// Login verifies the credentials and, on success, returns a fresh token
// pair. Unknown usernames and wrong passwords are indistinguishable: both
// yield common.ErrorUnauthorized, and the password hash is always compared.
func (s *SessionService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	repo := s.repos.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrorUnauthorized
	}

	return s.generateTokenPair(ctx, user, s.db)
}

// Refresh validates a refresh token, rotates it transactionally, and returns
// a fresh pair. The presented token is consumed: a revoked-or-expired token,
// or a token already consumed by a concurrent call, never produces a pair.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	repo := s.repos.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Revoked {
		return nil, common.ErrInvalidRefreshToken
	}
	if token.Expired(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	user, err := s.repos.Users(s.db).GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("error loading token owner: %w", err)
	}

	var result *AuthResult
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		// Single-writer-per-token: the guarded revoke decides which of the
		// concurrent callers gets to mint the successor pair.
		if err := s.repos.RefreshTokens(tx).RevokeActive(ctx, refreshToken); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidRefreshToken
			}
			return fmt.Errorf("error revoking refresh token: %w", err)
		}
		var genErr error
		result, genErr = s.generateTokenPair(ctx, user, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// Logout revokes the refresh token if it exists. It is idempotent and does
// not leak token existence: unknown tokens succeed too.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.repos.RefreshTokens(s.db).Revoke(ctx, refreshToken); err != nil {
		return fmt.Errorf("error revoking refresh token: %w", err)
	}
	return nil
}

// DeleteAllForUser removes every refresh token owned by userID. Exposed for
// the collaborator that owns account deletion; session flows never call it.
func (s *SessionService) DeleteAllForUser(ctx context.Context, userID int64) error {
	if err := s.repos.RefreshTokens(s.db).DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("error deleting refresh tokens: %w", err)
	}
	return nil
}

// VerifySubject resolves an access token to its subject identity. The HTTP
// boundary uses it to answer "who is the current user".
func (s *SessionService) VerifySubject(tokenString string) (string, error) {
	return auth.ParseSubject(tokenString, s.jwtSecret)
}

// --- helpers below ---

func (s *SessionService) generateTokenPair(ctx context.Context, user *models.User, db dbx.DBTX) (*AuthResult, error) {
	access, err := auth.GenerateToken(user.Username, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh := uuid.NewString()
	if err := s.repos.RefreshTokens(db).Create(ctx, user.ID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &AuthResult{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

func validateRegistration(username, email, password string) error {
	if l := len(username); l < 3 || l > 50 {
		return fmt.Errorf("%w: username must be 3-50 characters", common.ErrValidation)
	}
	if len(email) == 0 || len(email) > 100 {
		return fmt.Errorf("%w: email must be 1-100 characters", common.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email address", common.ErrValidation)
	}
	if len(password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", common.ErrValidation)
	}
	return nil
}
