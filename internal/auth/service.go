package auth

import (
	"context"
	"time"

	"storefront-be/internal/apperr"
	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = apperr.Validation("invalid credentials")
	ErrLoginDisabled      = apperr.Validation("admin login is not configured")
)

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Service interface {
	Login(ctx context.Context, password string) (*Session, error)
	Verify(token string) (*Claims, error)
}

type service struct {
	passwordHash string
	tokens       *Tokens
}

// NewService authenticates the single shop administrator against a bcrypt
// hash. An empty hash disables login.
func NewService(passwordHash string, tokens *Tokens) Service {
	return &service{passwordHash: passwordHash, tokens: tokens}
}

func (s *service) Login(ctx context.Context, password string) (*Session, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AdminLogin"),
	)

	if s.passwordHash == "" {
		log.Warn("admin login attempted but no password hash configured")
		return nil, ErrLoginDisabled
	}
	if !CheckPasswordHash(password, s.passwordHash) {
		log.Warn("admin login rejected")
		return nil, ErrInvalidCredentials
	}

	token, expires, err := s.tokens.Issue(RoleAdmin)
	if err != nil {
		log.Error("failed to issue admin token", zap.Error(err))
		return nil, err
	}

	log.Info("admin logged in")
	return &Session{Token: token, ExpiresAt: expires}, nil
}

func (s *service) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Role != RoleAdmin {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
