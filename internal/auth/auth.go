package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// CookieName is the session cookie the HTTP layer reads and writes.
const CookieName = "logbook_session"

const bcryptCost = 10

// ErrInvalidToken is returned for missing, expired or tampered session tokens.
var ErrInvalidToken = errors.New("invalid session token")

// Session identifies the acting trader. The core trusts this identity; it is
// resolved here once per request and never re-checked downstream.
type Session struct {
	TraderID int64
	Name     string
}

// Manager issues and verifies signed session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// HashPin derives the stored credential hash from a raw PIN.
func HashPin(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPin reports whether pin matches the stored hash.
func VerifyPin(pin, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}

type sessionClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// IssueToken signs a session token for the trader.
func (m *Manager) IssueToken(traderID int64, name string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", traderID),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// VerifyToken parses and validates a session token.
func (m *Manager) VerifyToken(token string) (Session, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Session{}, ErrInvalidToken
	}
	var traderID int64
	if _, err := fmt.Sscanf(claims.Subject, "%d", &traderID); err != nil || traderID <= 0 {
		return Session{}, ErrInvalidToken
	}
	return Session{TraderID: traderID, Name: claims.Name}, nil
}

// SessionCookie builds the HttpOnly cookie carrying a freshly issued token.
func (m *Manager) SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.ttl / time.Second),
	}
}

// ClearCookie expires the session cookie immediately.
func ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}
