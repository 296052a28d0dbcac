// Package session keeps the authenticated identity in a signed JWT cookie.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const CookieName = "session"

var (
	ErrNoToken      = errors.New("no session token")
	ErrInvalidToken = errors.New("invalid session token")
	ErrRevoked      = errors.New("session revoked")
)

// Claims adalah isi token session.
type Claims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// Revoker mencatat token yang sudah logout.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type NopRevoker struct{}

func (NopRevoker) Revoke(context.Context, string, time.Time) error { return nil }
func (NopRevoker) IsRevoked(context.Context, string) (bool, error)  { return false, nil }

type Manager struct {
	secret  []byte
	ttl     time.Duration
	secure  bool
	revoker Revoker
	now     func() time.Time
}

// NewManager membuat Manager. ttl 0 berarti token tidak kedaluwarsa.
func NewManager(secret []byte, ttl time.Duration, secure bool, revoker Revoker) *Manager {
	if revoker == nil {
		revoker = NopRevoker{}
	}
	return &Manager{secret: secret, ttl: ttl, secure: secure, revoker: revoker, now: time.Now}
}

// Issue menandatangani token baru untuk userID.
func (m *Manager) Issue(userID int) (string, *Claims, error) {
	now := m.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Subject:  fmt.Sprint(userID),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session: %w", err)
	}
	return signed, claims, nil
}

// Parse memverifikasi tanda tangan, masa berlaku, dan status revoke.
func (m *Manager) Parse(ctx context.Context, raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrNoToken
	}

	claims := &Claims{}
	// Waktu divalidasi di bawah memakai m.now, bukan jwt.TimeFunc global.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	token, err := parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID <= 0 || claims.ID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}
	if claims.ExpiresAt != nil && !m.now().Before(claims.ExpiresAt.Time) {
		return nil, fmt.Errorf("%w: expired", ErrInvalidToken)
	}

	revoked, err := m.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrRevoked
	}
	return claims, nil
}

// Login menerbitkan token dan menyimpannya di cookie.
func (m *Manager) Login(c *fiber.Ctx, userID int) error {
	signed, claims, err := m.Issue(userID)
	if err != nil {
		return err
	}
	cookie := &fiber.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if claims.ExpiresAt != nil {
		cookie.Expires = claims.ExpiresAt.Time
	}
	c.Cookie(cookie)
	return nil
}

// Logout selalu menghapus cookie. Token yang masih valid juga di-revoke.
func (m *Manager) Logout(c *fiber.Ctx) error {
	var revokeErr error
	if claims, err := m.Parse(c.UserContext(), TokenFromRequest(c)); err == nil {
		until := time.Time{}
		if claims.ExpiresAt != nil {
			until = claims.ExpiresAt.Time
		}
		revokeErr = m.revoker.Revoke(c.UserContext(), claims.ID, until)
	}

	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Unix(0, 0),
	})
	return revokeErr
}

// Resolve mengembalikan user id dari request; error berarti anonymous.
func (m *Manager) Resolve(c *fiber.Ctx) (int, error) {
	claims, err := m.Parse(c.UserContext(), TokenFromRequest(c))
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// TokenFromRequest membaca cookie session, lalu header "Authorization: Bearer".
func TokenFromRequest(c *fiber.Ctx) string {
	if v := c.Cookies(CookieName); v != "" {
		return v
	}
	parts := strings.Fields(c.Get(fiber.HeaderAuthorization))
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
