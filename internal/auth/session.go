// Package auth keeps the browser session in a signed cookie.
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/careercounsel/internal/domain/user"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	CookieName = "session"
	ctxKey     = "session"
)

type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Session is the per-browser state. A zero Session is anonymous.
type Session struct {
	Username string  `json:"username,omitempty"`
	IsAdmin  bool    `json:"is_admin,omitempty"`
	Flashes  []Flash `json:"flashes,omitempty"`
}

func (s *Session) Authenticated() bool {
	return s != nil && s.Username != ""
}

type Claims struct {
	Session
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewManager(secret string, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
	}
}

func (m *Manager) Encode(s Session) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		Session: s,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			Subject:   s.Username,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) Decode(raw string) (Session, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return Session{}, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Session{}, errors.New("invalid session token")
	}
	return claims.Session, nil
}

// Load returns the request's session, decoding the cookie on first use.
// A missing, expired or tampered cookie yields an anonymous session.
func (m *Manager) Load(ctx *gin.Context) *Session {
	if v, ok := ctx.Get(ctxKey); ok {
		if s, ok := v.(*Session); ok {
			return s
		}
	}

	s := &Session{}
	if raw, err := ctx.Cookie(CookieName); err == nil && raw != "" {
		if decoded, err := m.Decode(raw); err == nil {
			*s = decoded
		}
	}
	ctx.Set(ctxKey, s)
	return s
}

// Save writes the session back as a cookie, replacing any session cookie
// already queued on this response.
func (m *Manager) Save(ctx *gin.Context, s *Session) error {
	ctx.Set(ctxKey, s)

	if !s.Authenticated() && len(s.Flashes) == 0 {
		m.writeCookie(ctx, "", -1)
		return nil
	}

	raw, err := m.Encode(*s)
	if err != nil {
		return err
	}
	m.writeCookie(ctx, raw, int(m.ttl.Seconds()))
	return nil
}

func (m *Manager) Login(ctx *gin.Context, acc user.Account) error {
	s := m.Load(ctx)
	s.Username = acc.Username
	s.IsAdmin = acc.IsAdmin
	return m.Save(ctx, s)
}

// Logout drops every session field, flashes included.
func (m *Manager) Logout(ctx *gin.Context) {
	s := m.Load(ctx)
	*s = Session{}
	m.writeCookie(ctx, "", -1)
}

func (m *Manager) AddFlash(ctx *gin.Context, category, message string) error {
	s := m.Load(ctx)
	s.Flashes = append(s.Flashes, Flash{Category: category, Message: message})
	return m.Save(ctx, s)
}

// PopFlashes returns queued flashes and clears them from the session.
func (m *Manager) PopFlashes(ctx *gin.Context) []Flash {
	s := m.Load(ctx)
	if len(s.Flashes) == 0 {
		return []Flash{}
	}

	out := s.Flashes
	s.Flashes = nil
	_ = m.Save(ctx, s)
	return out
}

func (m *Manager) writeCookie(ctx *gin.Context, value string, maxAge int) {
	h := ctx.Writer.Header()
	kept := h.Values("Set-Cookie")[:0:0]
	for _, c := range h.Values("Set-Cookie") {
		if !strings.HasPrefix(c, CookieName+"=") {
			kept = append(kept, c)
		}
	}
	h.Del("Set-Cookie")
	for _, c := range kept {
		h.Add("Set-Cookie", c)
	}

	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
