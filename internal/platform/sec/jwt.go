// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer and the authorization middleware.
//
// # Token Kinds
//
// Three token kinds share one signing secret. The kind travels inside the
// payload as the "scope" claim and every decoder checks it, so a refresh or
// email-confirmation token is never accepted where an access token is required.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is wrapped by every decode failure: bad signature, expiry,
// wrong algorithm, wrong scope or missing subject.
var ErrInvalidToken = errors.New("sec: invalid token")

// TokenKind is the scope marker embedded in each token.
type TokenKind string

const (
	KindAccess  TokenKind = "access_token"
	KindRefresh TokenKind = "refresh_token"
	KindEmail   TokenKind = "email_token"
)

// Claims is the JWT payload issued by [TokenService].
type Claims struct {
	jwt.RegisteredClaims

	// Scope distinguishes access, refresh and email-confirmation tokens.
	Scope TokenKind `json:"scope"`
}

// TokenConfig carries everything the token service needs. Tests pass a fixed
// secret and clock; production wiring builds it from [config.Config].
type TokenConfig struct {
	Secret     []byte
	Algorithm  string // HS256 or HS512
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	EmailTTL   time.Duration

	// Now defaults to time.Now when nil.
	Now func() time.Time
}

// TokenService issues and verifies HMAC-signed JWTs of the three token kinds.
//
// It holds no mutable state and is safe for concurrent use.
type TokenService struct {
	method *jwt.SigningMethodHMAC
	cfg    TokenConfig
}

// NewTokenService validates cfg and returns a ready [TokenService].
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("auth: token secret must not be empty")
	}

	var method *jwt.SigningMethodHMAC
	switch cfg.Algorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("auth: unsupported signing algorithm %q", cfg.Algorithm)
	}

	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 || cfg.EmailTTL <= 0 {
		return nil, errors.New("auth: token lifetimes must be positive")
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &TokenService{method: method, cfg: cfg}, nil
}

// # Issuing

// CreateAccessToken signs a short-lived token authorizing API calls for subject.
func (service *TokenService) CreateAccessToken(subject string) (string, error) {
	return service.sign(subject, KindAccess, service.cfg.AccessTTL)
}

// CreateRefreshToken signs a long-lived token that can only be exchanged for a new pair.
func (service *TokenService) CreateRefreshToken(subject string) (string, error) {
	return service.sign(subject, KindRefresh, service.cfg.RefreshTTL)
}

// CreateEmailToken signs a single-purpose token proving control of subject's mailbox.
func (service *TokenService) CreateEmailToken(subject string) (string, error) {
	return service.sign(subject, KindEmail, service.cfg.EmailTTL)
}

// # Decoding

// DecodeAccessToken returns the subject email of a valid access token.
func (service *TokenService) DecodeAccessToken(token string) (string, error) {
	return service.decode(token, KindAccess)
}

// DecodeRefreshToken returns the subject email of a valid refresh token.
func (service *TokenService) DecodeRefreshToken(token string) (string, error) {
	return service.decode(token, KindRefresh)
}

// DecodeEmailToken returns the subject email of a valid email-confirmation token.
func (service *TokenService) DecodeEmailToken(token string) (string, error) {
	return service.decode(token, KindEmail)
}

func (service *TokenService) sign(subject string, kind TokenKind, timeToLive time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("auth: token subject must not be empty")
	}

	currentTime := service.cfg.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			// Unique per token so two pairs issued in the same second never collide.
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    service.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		Scope: kind,
	}

	signedToken, err := jwt.NewWithClaims(service.method, claims).SignedString(service.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign %s: %w", kind, err)
	}

	return signedToken, nil
}

func (service *TokenService) decode(tokenString string, want TokenKind) (string, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{service.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(service.cfg.Now),
	}
	if service.cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(service.cfg.Issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return service.cfg.Secret, nil
	}, options...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	// The signature is fine but the token was minted for another purpose.
	if claims.Scope != want {
		return "", fmt.Errorf("%w: scope %q, want %q", ErrInvalidToken, claims.Scope, want)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims.Subject, nil
}
