package services

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// CredentialService hashes passwords and issues and verifies signed tokens.
// Access and refresh tokens use separate secrets.
type CredentialService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewCredentialService creates a new CredentialService.
func NewCredentialService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *CredentialService {
	return &CredentialService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// WithClock replaces the time source used for issuing and verifying tokens.
func (s *CredentialService) WithClock(now func() time.Time) *CredentialService {
	s.now = now
	return s
}

// HashPassword returns a salted bcrypt hash of plain.
func (s *CredentialService) HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword reports whether plain matches hash.
func (s *CredentialService) VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// IssueAccessToken returns a short-lived token for subject.
func (s *CredentialService) IssueAccessToken(subject string) (string, error) {
	return s.issue(subject, tokenTypeAccess, s.accessTTL, s.accessSecret)
}

// IssueRefreshToken returns a long-lived token for subject.
func (s *CredentialService) IssueRefreshToken(subject string) (string, error) {
	return s.issue(subject, tokenTypeRefresh, s.refreshTTL, s.refreshSecret)
}

// VerifyAccessToken checks an access token and returns its subject.
func (s *CredentialService) VerifyAccessToken(tokenString string) (string, error) {
	return s.verify(tokenString, tokenTypeAccess, s.accessSecret)
}

// VerifyRefreshToken checks a refresh token and returns its subject.
func (s *CredentialService) VerifyRefreshToken(tokenString string) (string, error) {
	return s.verify(tokenString, tokenTypeRefresh, s.refreshSecret)
}

func (s *CredentialService) issue(subject, tokenType string, ttl time.Duration, secret []byte) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"typ": tokenType,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return tokenString, nil
}

func (s *CredentialService) verify(tokenString, tokenType string, secret []byte) (string, error) {
	claims := jwt.MapClaims{}
	parser := &jwt.Parser{SkipClaimsValidation: true}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	// Expiry is checked against the service clock rather than jwt.TimeFunc.
	if !claims.VerifyExpiresAt(s.now().Unix(), true) {
		return "", fmt.Errorf("%w: token expired", ErrInvalidToken)
	}
	if typ, _ := claims["typ"].(string); typ != tokenType {
		return "", fmt.Errorf("%w: expected %s token", ErrInvalidToken, tokenType)
	}
	subject, _ := claims["sub"].(string)
	if subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return subject, nil
}
