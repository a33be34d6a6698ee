package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sweetdreams-bakery/storefront/models"
)

const RoleGuest = "guest"

// Claims identify either a registered user (UserID set) or a guest (GuestID set).
type Claims struct {
	UserID  uint   `json:"user_id,omitempty"`
	GuestID string `json:"guest_id,omitempty"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// OwnerID is the key the caller's cart is stored under.
func (c *Claims) OwnerID() string {
	if c.GuestID != "" {
		return c.GuestID
	}
	return UserOwnerID(c.UserID)
}

func (c *Claims) IsGuest() bool { return c.GuestID != "" }

func (c *Claims) IsAdmin() bool { return c.Role == string(models.RoleAdmin) }

func UserOwnerID(userID uint) string {
	return "user_" + strconv.FormatUint(uint64(userID), 10)
}

// Manager issues and verifies tokens and hashes passwords.
type Manager struct {
	secret     []byte
	tokenTTL   time.Duration
	guestTTL   time.Duration
	bcryptCost int
	now        func() time.Time
}

func NewManager(secret string, tokenTTL, guestTTL time.Duration, bcryptCost int) *Manager {
	return &Manager{
		secret:     []byte(secret),
		tokenTTL:   tokenTTL,
		guestTTL:   guestTTL,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

func (m *Manager) GuestTTL() time.Duration { return m.guestTTL }

// IssueUser signs a token for a registered account.
func (m *Manager) IssueUser(user models.User) (string, time.Time, error) {
	expires := m.now().Add(m.tokenTTL)
	return m.sign(Claims{
		UserID: user.ID,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(m.now()),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}, expires)
}

func (m *Manager) IssueGuest(guestID string, expires time.Time) (string, time.Time, error) {
	return m.sign(Claims{
		GuestID: guestID,
		Role:    RoleGuest,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   guestID,
			IssuedAt:  jwt.NewNumericDate(m.now()),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}, expires)
}

func (m *Manager) sign(claims Claims, expires time.Time) (string, time.Time, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies a token string. A leading "Bearer " is accepted.
func (m *Manager) Parse(raw string) (*Claims, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "Bearer "))
	if raw == "" {
		return nil, errors.New("token is empty")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == 0 && claims.GuestID == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}
