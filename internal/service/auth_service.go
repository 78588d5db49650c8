package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mcq-bot/internal/config"
	"mcq-bot/internal/dto"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var ErrInvalidJWTToken = errors.New("invalid jwt token")

// TokenService issues and verifies the bearer tokens of the command layer.
// The subject of a token is the owner id.
type TokenService interface {
	IssueToken(ctx context.Context, ownerID string) (string, error)
	ValidateToken(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

type tokenService struct {
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewTokenService(cfg config.AuthConfig, logger *zap.Logger) (TokenService, error) {
	if len(cfg.JWTSecret) < 16 {
		return nil, errors.New("auth.jwt_secret must be at least 16 bytes long")
	}
	return &tokenService{secret: []byte(cfg.JWTSecret), ttl: cfg.TokenTTL, logger: logger, now: time.Now}, nil
}

func (s *tokenService) IssueToken(_ context.Context, ownerID string) (string, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return "", errors.New("owner id is required")
	}
	now := s.now()
	claims := dto.AuthClaims{
		OwnerID: ownerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *tokenService) ValidateToken(_ context.Context, tokenString string) (*dto.AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			s.logger.Warn("JWT token expired", zap.Error(err))
		} else {
			s.logger.Warn("JWT validation failed", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	claims, ok := token.Claims.(*dto.AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidJWTToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidJWTToken)
	}
	claims.OwnerID = claims.Subject
	return claims, nil
}
