// Package middleware provides request-scoped plumbing: sessions, logging, tracing and rate limiting.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/policy"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// SessionCookie carries the signed session token.
	SessionCookie = "blogicum_session"

	LocalUserID  = "userID"
	LocalActor   = "actor"
	localSession = "session"

	tokenIssuer   = "blogicum"
	tokenAudience = "blogicum-web"
)

// ErrInvalidSession is returned for tokens that fail signature, claim or revocation checks.
var ErrInvalidSession = errors.New("invalid session")

// SessionClaims is the decoded content of a session token.
type SessionClaims struct {
	UserID    uint
	Username  string
	JTI       string
	ExpiresAt time.Time
}

type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Sessions issues, verifies and revokes signed session tokens.
// Revoked token ids are kept in Redis until the token would have expired.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	rdb    *redis.Client
	now    func() time.Time
}

// NewSessions creates a session manager. rdb may be nil, in which case logout only clears the cookie.
func NewSessions(secret string, ttl time.Duration, rdb *redis.Client) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, rdb: rdb, now: time.Now}
}

// Issue signs a new session token for the user.
func (s *Sessions) Issue(userID uint, username string) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("JWT secret not configured")
	}

	now := s.now()
	exp := now.Add(s.ttl)
	claims := tokenClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        generateJTI(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies the token and rejects it when its id has been revoked.
func (s *Sessions) Parse(ctx context.Context, raw string) (*SessionClaims, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return nil, ErrInvalidSession
	}

	revoked, err := s.isRevoked(ctx, claims.ID)
	if err != nil {
		// Redis outages degrade to signature-only checks
		Logger.WarnContext(ctx, "session revocation check failed", slog.String("error", err.Error()))
	}
	if revoked {
		return nil, ErrInvalidSession
	}

	return &SessionClaims{
		UserID:    uint(userID),
		Username:  claims.Username,
		JTI:       claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke blacklists the session id for the rest of its lifetime.
func (s *Sessions) Revoke(ctx context.Context, claims *SessionClaims) error {
	if s.rdb == nil || claims == nil || claims.JTI == "" {
		return nil
	}
	remaining := claims.ExpiresAt.Sub(s.now())
	if remaining <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, revocationKey(claims.JTI), "1", remaining).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *Sessions) isRevoked(ctx context.Context, jti string) (bool, error) {
	if s.rdb == nil || jti == "" {
		return false, nil
	}
	n, err := s.rdb.Exists(ctx, revocationKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Cookie wraps a session token in an HttpOnly cookie.
func (s *Sessions) Cookie(token string, expires time.Time, secure bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

func revocationKey(jti string) string {
	return "blacklist:" + jti
}

// generateJTI creates a unique token id so individual sessions can be revoked
func generateJTI(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8])
}

// ActorLoader resolves the signed-in user behind a session.
type ActorLoader func(ctx context.Context, userID uint) (policy.Actor, error)

// LoadActor decodes the session cookie, if any, and stores the actor in Fiber locals.
// Invalid or stale sessions are cleared and the request continues anonymously.
func LoadActor(sessions *Sessions, load ActorLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(SessionCookie)
		if raw == "" {
			return c.Next()
		}

		claims, err := sessions.Parse(c.UserContext(), raw)
		if err != nil {
			c.ClearCookie(SessionCookie)
			return c.Next()
		}

		actor, err := load(c.UserContext(), claims.UserID)
		if err != nil {
			if models.IsNotFound(err) {
				c.ClearCookie(SessionCookie)
				return c.Next()
			}
			return err
		}

		c.Locals(LocalUserID, actor.ID)
		c.Locals(LocalActor, actor)
		c.Locals(localSession, claims)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, actor.ID))
		return c.Next()
	}
}

// ActorFrom returns the current actor, anonymous when nobody is signed in.
func ActorFrom(c *fiber.Ctx) policy.Actor {
	if actor, ok := c.Locals(LocalActor).(policy.Actor); ok {
		return actor
	}
	return policy.Actor{}
}

// SessionFrom returns the decoded session of the current request, or nil.
func SessionFrom(c *fiber.Ctx) *SessionClaims {
	claims, _ := c.Locals(localSession).(*SessionClaims)
	return claims
}

// LoginRequired redirects anonymous requests to the login page, remembering where they came from.
func LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ActorFrom(c).Anonymous() {
			return c.Redirect("/auth/login/?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusSeeOther)
		}
		return c.Next()
	}
}
