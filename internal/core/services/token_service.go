package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenRevoked = errors.New("token has been revoked")
	// ErrTokenCheckUnavailable means the token could not be checked, not that it is bad.
	ErrTokenCheckUnavailable = errors.New("token check unavailable")
)

type TokenService struct {
	secretKey     []byte
	issuer        string
	tokenDuration time.Duration
	userRepo      domain.UserRepository
	revoked       domain.TokenRevocationStore
}

func NewTokenService(secretKey string, issuer string, tokenDuration time.Duration, userRepo domain.UserRepository, revoked domain.TokenRevocationStore) *TokenService {
	return &TokenService{
		secretKey:     []byte(secretKey),
		issuer:        issuer,
		tokenDuration: tokenDuration,
		userRepo:      userRepo,
		revoked:       revoked,
	}
}

type IssuedToken struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

func (s *TokenService) GenerateToken(user *domain.User) (IssuedToken, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenDuration)
	tokenID := uuid.NewString()

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"jti":  tokenID,
		"exp":  expiresAt.Unix(),
		"iat":  now.Unix(),
		"iss":  s.issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(s.secretKey)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("token service: failed to sign token: %w", err)
	}

	return IssuedToken{Token: signedToken, TokenID: tokenID, ExpiresAt: time.Unix(expiresAt.Unix(), 0).UTC()}, nil
}

// ValidateToken verifies the signature and claims and resolves the caller.
// The role comes from the stored user so a role change applies immediately.
func (s *TokenService) ValidateToken(ctx context.Context, tokenString string) (domain.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return domain.Session{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return domain.Session{}, fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return domain.Session{}, fmt.Errorf("invalid token subject")
	}

	tokenID, _ := claims["jti"].(string)
	if tokenID == "" {
		return domain.Session{}, fmt.Errorf("invalid token id")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return domain.Session{}, fmt.Errorf("invalid token expiry")
	}

	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, tokenID)
		if err != nil {
			return domain.Session{}, fmt.Errorf("token service: revocation lookup failed: %w: %w", ErrTokenCheckUnavailable, err)
		}
		if revoked {
			return domain.Session{}, ErrTokenRevoked
		}
	}

	lookupCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	user, err := s.userRepo.GetByID(lookupCtx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Session{}, fmt.Errorf("token subject no longer exists: %w", err)
		}
		return domain.Session{}, fmt.Errorf("token service: user lookup failed: %w: %w", ErrTokenCheckUnavailable, err)
	}

	return domain.Session{
		UserID:    user.ID,
		Role:      user.Role,
		TokenID:   tokenID,
		ExpiresAt: exp.Time.UTC(),
	}, nil
}

// Revoke invalidates the session's token until it would have expired anyway.
func (s *TokenService) Revoke(ctx context.Context, session domain.Session) error {
	if s.revoked == nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, session.TokenID, session.ExpiresAt); err != nil {
		return fmt.Errorf("token service: failed to revoke token: %w", err)
	}
	return nil
}
