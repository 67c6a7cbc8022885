package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"dms/internal/auth"
	"dms/internal/model"
	"dms/internal/repository"
)

// Credentials identify a user by username or email.
type Credentials struct {
	Username string
	Email    string
	Password string
}

// Registration is the input of a new account.
type Registration struct {
	Username  string
	Email     string
	Password  string
	Firstname string
	Lastname  string
}

// Session is an issued token together with the user it belongs to.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      model.User
}

// AccountService covers sign-in, sign-up and sign-out.
type AccountService interface {
	// Authenticate verifies the credentials and issues a session.
	Authenticate(ctx context.Context, c Credentials) (*Session, error)

	// Register creates a regular user and issues a session for it.
	Register(ctx context.Context, r Registration) (*Session, error)

	// RevokeSession invalidates a previously issued token before its expiry.
	RevokeSession(ctx context.Context, token string) error
}

type accountService struct {
	users    repository.UserRepository
	tokens   *auth.TokenManager
	revoker  auth.Revoker
	hashCost int
	logger   *zap.Logger
	now      func() time.Time
}

// NewAccountService constructs an AccountService. A nil revoker keeps sessions stateless.
func NewAccountService(users repository.UserRepository, tokens *auth.TokenManager, revoker auth.Revoker, hashCost int, logger *zap.Logger) AccountService {
	if revoker == nil {
		revoker = auth.NoopRevoker{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if hashCost == 0 {
		hashCost = bcrypt.DefaultCost
	}
	return &accountService{
		users:    users,
		tokens:   tokens,
		revoker:  revoker,
		hashCost: hashCost,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *accountService) Authenticate(ctx context.Context, c Credentials) (*Session, error) {
	username := strings.TrimSpace(c.Username)
	email := strings.ToLower(strings.TrimSpace(c.Email))
	if username == "" && email == "" {
		return nil, &ValidationError{Field: "username", Reason: "username or email is required"}
	}
	if c.Password == "" {
		return nil, &ValidationError{Field: "password", Reason: "is required"}
	}

	u, err := s.users.FindByIdentifier(ctx, username, email)
	if err != nil {
		return nil, storeError("find user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(c.Password)); err != nil {
		s.logger.Info("login rejected", zap.Int64("user_id", u.ID))
		return nil, ErrInvalidCredentials
	}
	return s.issue(*u)
}

func (s *accountService) Register(ctx context.Context, r Registration) (*Session, error) {
	username := strings.TrimSpace(r.Username)
	if err := required("username", username); err != nil {
		return nil, err
	}
	if err := required("email", r.Email); err != nil {
		return nil, err
	}
	email, err := normalizeEmail(r.Email)
	if err != nil {
		return nil, err
	}
	if err := required("password", r.Password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(r.Password, s.hashCost)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return nil, err
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &model.User{
		Username:     username,
		Email:        email,
		Firstname:    strings.TrimSpace(r.Firstname),
		Lastname:     strings.TrimSpace(r.Lastname),
		PasswordHash: hash,
		Role:         model.RoleRegular,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, storeError("create user", err)
	}
	s.logger.Info("user registered", zap.Int64("user_id", created.ID), zap.String("username", created.Username))
	return s.issue(*created)
}

func (s *accountService) RevokeSession(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return err
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return &PersistenceError{Op: "revoke session", Err: err}
	}
	s.logger.Info("session revoked", zap.Int64("user_id", claims.UserID), zap.String("jti", claims.ID))
	return nil
}

func (s *accountService) issue(u model.User) (*Session, error) {
	token, claims, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: u}, nil
}
