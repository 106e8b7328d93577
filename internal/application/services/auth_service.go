package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dateideas/core/internal/domain/entities"
	"github.com/dateideas/core/internal/infrastructure/config"
	"github.com/dateideas/core/internal/infrastructure/logger"
	"github.com/dateideas/core/internal/ports"
)

const sessionIssuer = "dateideas"

// Claims represents the session JWT claims
type Claims struct {
	Authenticated bool `json:"authenticated"`
	jwt.RegisteredClaims
}

// AuthService implements the shared passcode gate
type AuthService struct {
	passcodeHash []byte
	secret       []byte
	sessionTTL   time.Duration
	logger       *logger.Logger
	now          func() time.Time
}

// NewAuthService creates a new auth service. A plain passcode is hashed once here
// so that only the bcrypt hash is kept in memory.
func NewAuthService(cfg config.AuthConfig, logger *logger.Logger) (*AuthService, error) {
	hash := []byte(cfg.PasscodeHash)
	if len(hash) == 0 {
		if cfg.Passcode == "" {
			return nil, errors.New("passcode or passcode hash is required")
		}
		generated, err := bcrypt.GenerateFromPassword([]byte(cfg.Passcode), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash passcode: %w", err)
		}
		hash = generated
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("invalid passcode hash: %w", err)
	}

	if cfg.SecretKey == "" {
		return nil, errors.New("secret key is required")
	}

	return &AuthService{
		passcodeHash: hash,
		secret:       []byte(cfg.SecretKey),
		sessionTTL:   cfg.SessionTTL,
		logger:       logger.WithComponent("auth"),
		now:          time.Now,
	}, nil
}

// HashPasscode returns a bcrypt hash suitable for PASSCODE_HASH
func HashPasscode(passcode string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash passcode: %w", err)
	}
	return string(hash), nil
}

// CheckPasscode compares a submitted passcode against the configured one
func (s *AuthService) CheckPasscode(passcode string) error {
	if err := bcrypt.CompareHashAndPassword(s.passcodeHash, []byte(passcode)); err != nil {
		return entities.ErrInvalidPasscode
	}
	return nil
}

// IssueSession signs a new authenticated session token
func (s *AuthService) IssueSession() (string, error) {
	now := s.now()
	claims := &Claims{
		Authenticated: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    sessionIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}

	s.logger.Debugw("Session issued", "session_id", claims.ID)
	return tokenString, nil
}

// ValidateSession parses a session token and checks that it is authenticated
func (s *AuthService) ValidateSession(tokenString string) (*ports.SessionClaims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrInvalidSession, err)
	}

	if !token.Valid || !claims.Authenticated {
		return nil, entities.ErrInvalidSession
	}

	return &ports.SessionClaims{
		ID:            claims.ID,
		Authenticated: claims.Authenticated,
	}, nil
}
