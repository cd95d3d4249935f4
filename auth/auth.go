// Package auth verifies admin credentials and gates routes on an
// authenticated session or, for API paths, a bearer token.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/eringen/folio/models"
)

// SessionName is the cookie session holding the logged-in user id.
const SessionName = "admin_session"

const (
	sessionUserKey = "user_id"
	identityKey    = "auth.identity"
)

// dummyHash is compared against when the username is unknown so that both
// failure paths cost one bcrypt comparison.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Identity is the authenticated principal. It never carries the password hash.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// UserStore looks up admin accounts.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Authenticator checks credentials and resolves the identity of a request.
type Authenticator struct {
	users  UserStore
	tokens *Tokens
	logger *slog.Logger
}

// NewAuthenticator returns an Authenticator. tokens may be nil, in which
// case bearer tokens are never accepted.
func NewAuthenticator(users UserStore, tokens *Tokens, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{users: users, tokens: tokens, logger: logger.With("component", "auth")}
}

// Tokens returns the bearer token issuer, or nil.
func (a *Authenticator) Tokens() *Tokens {
	return a.tokens
}

// VerifyCredentials returns the identity for a matching username and
// password, or nil when they do not match. Only lookup failures are errors.
func (a *Authenticator) VerifyCredentials(ctx context.Context, username, password string) (*Identity, error) {
	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return nil, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil
	}
	return &Identity{ID: user.ID, Username: user.Username}, nil
}

// IsAPIRequest reports whether path belongs to the JSON API.
func IsAPIRequest(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

// Login stores the user id in the session cookie.
func Login(c echo.Context, userID int64) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	sess.Values[sessionUserKey] = userID
	return sess.Save(c.Request(), c.Response())
}

// Logout expires the session cookie.
func Logout(c echo.Context) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	delete(sess.Values, sessionUserKey)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// SessionUserID returns the user id stored in the session, if any.
func SessionUserID(c echo.Context) (int64, bool) {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return 0, false
	}
	id, ok := sess.Values[sessionUserKey].(int64)
	return id, ok && id > 0
}

// CurrentUser returns the identity attached to c by RequireAuthenticated or
// AttachIdentity, or nil.
func CurrentUser(c echo.Context) *Identity {
	id, _ := c.Get(identityKey).(*Identity)
	return id
}

// RequireAuthenticated rejects requests without a valid session. API paths
// also accept a bearer token and get a JSON 401; other paths are redirected
// to loginPath.
func (a *Authenticator) RequireAuthenticated(loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := a.resolve(c)
			if err != nil {
				return err
			}
			if id == nil {
				if IsAPIRequest(c.Request().URL.Path) {
					return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
				}
				return c.Redirect(http.StatusSeeOther, loginPath)
			}
			c.Set(identityKey, id)
			return next(c)
		}
	}
}

// AttachIdentity resolves the caller when possible and never fails the
// request.
func (a *Authenticator) AttachIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := a.resolve(c)
			if err != nil {
				a.logger.Warn("resolving identity", "error", err)
			} else if id != nil {
				c.Set(identityKey, id)
			}
			return next(c)
		}
	}
}

func (a *Authenticator) resolve(c echo.Context) (*Identity, error) {
	if id := CurrentUser(c); id != nil {
		return id, nil
	}
	ctx := c.Request().Context()
	if uid, ok := SessionUserID(c); ok {
		return a.lookup(ctx, uid)
	}
	if a.tokens == nil || !IsAPIRequest(c.Request().URL.Path) {
		return nil, nil
	}
	raw, ok := BearerToken(c.Request())
	if !ok {
		return nil, nil
	}
	uid, err := a.tokens.Parse(raw)
	if err != nil {
		a.logger.Debug("rejecting bearer token", "error", err)
		return nil, nil
	}
	return a.lookup(ctx, uid)
}

func (a *Authenticator) lookup(ctx context.Context, id int64) (*Identity, error) {
	user, err := a.users.GetByID(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}
	return &Identity{ID: user.ID, Username: user.Username}, nil
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get(echo.HeaderAuthorization)
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(h[len(prefix):])
	return tok, tok != ""
}
