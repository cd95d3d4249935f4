package folio

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/qri-io/jsonschema"

	"github.com/eringen/folio/auth"
	"github.com/eringen/folio/db"
	"github.com/eringen/folio/models"
)

const (
	loginWindow   = time.Minute
	contactWindow = time.Hour
	apiWindow     = 15 * time.Minute

	maxRecentLimit = 50
)

//go:embed contact.schema.json
var contactSchemaJSON []byte

func loadContactSchema() (*jsonschema.Schema, error) {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(contactSchemaJSON, rs); err != nil {
		return nil, fmt.Errorf("folio: compile contact schema: %w", err)
	}
	return rs, nil
}

// contactMessages maps a field to the message shown when it fails validation.
var contactMessages = map[string]string{
	"name":    "Name is required",
	"email":   "Valid email is required",
	"subject": "Subject is too long",
	"message": "Message is required",
}

// FieldError is one failed field of a submitted form.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type contactRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}

func (r contactRequest) normalized() models.ContactInput {
	return models.ContactInput{
		Name:    strings.TrimSpace(r.Name),
		Email:   strings.ToLower(strings.TrimSpace(r.Email)),
		Subject: strings.TrimSpace(r.Subject),
		Message: strings.TrimSpace(r.Message),
	}
}

// validateContact checks in against the contact schema and returns one
// error per failing field.
func (a *App) validateContact(ctx context.Context, in models.ContactInput) ([]FieldError, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	keyErrs, err := a.contactSchema.ValidateBytes(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("validating contact: %w", err)
	}
	var out []FieldError
	seen := make(map[string]bool)
	for _, ke := range keyErrs {
		field := ke.PropertyPath
		if i := strings.LastIndex(field, "/"); i >= 0 {
			field = field[i+1:]
		}
		if seen[field] {
			continue
		}
		seen[field] = true
		msg := contactMessages[field]
		if msg == "" {
			msg = ke.Message
		}
		out = append(out, FieldError{Field: field, Message: msg})
	}
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (a *App) apiProjects(c echo.Context) error {
	projects, err := a.Repos.Projects.Featured(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(projects))
}

func (a *App) apiProject(c echo.Context) error {
	p, err := a.Repos.Projects.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	if p == nil {
		return jsonError(c, http.StatusNotFound, "Project not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (a *App) apiPosts(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		posts []models.Post
		err   error
	)
	if tag := strings.TrimSpace(c.QueryParam("tag")); tag != "" {
		posts, err = a.Repos.Posts.ByTag(ctx, tag)
	} else {
		posts, err = a.Repos.Posts.List(ctx, false)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(posts))
}

func (a *App) apiRecentPosts(c echo.Context) error {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = models.DefaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	posts, err := a.Repos.Posts.Recent(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(posts))
}

func (a *App) apiPost(c echo.Context) error {
	p, err := a.Repos.Posts.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	if p == nil {
		return jsonError(c, http.StatusNotFound, "Post not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (a *App) apiSettings(c echo.Context) error {
	all, err := a.Repos.Settings.All(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.Public(all))
}

func (a *App) apiTags(c echo.Context) error {
	tags, err := a.Repos.Posts.AllTags(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(tags))
}

func (a *App) apiContact(c echo.Context) error {
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"errors": []FieldError{{Field: "body", Message: "Invalid request body"}},
		})
	}
	in := req.normalized()
	ctx := c.Request().Context()

	fieldErrs, err := a.validateContact(ctx, in)
	if err != nil {
		return err
	}
	if len(fieldErrs) > 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{"errors": fieldErrs})
	}

	contact, err := a.Repos.Contacts.Create(ctx, in)
	if err != nil {
		return err
	}
	a.logger.Info("contact message received", "id", contact.ID, "email", contact.Email, "subject", contact.Subject)
	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"message": "Thank you for your message! I'll get back to you soon.",
	})
}

type tokenRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (a *App) apiToken(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return jsonError(c, http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	var req tokenRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	id, err := a.Auth.VerifyCredentials(c.Request().Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		return err
	}
	if id == nil {
		a.loginLimiter.Record(ip)
		return jsonError(c, http.StatusUnauthorized, "Invalid username or password")
	}
	token, exp, err := a.Auth.Tokens().Issue(*id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": exp.UTC().Format(time.RFC3339),
		"user":       id,
	})
}

type reorderRequest struct {
	IDs []int64 `json:"ids"`
}

func (a *App) apiReorderProjects(c echo.Context) error {
	var req reorderRequest
	if err := c.Bind(&req); err != nil || len(req.IDs) == 0 {
		return jsonError(c, http.StatusBadRequest, "ids must be a non-empty array of project ids")
	}
	if err := a.Repos.Projects.Reorder(c.Request().Context(), req.IDs); err != nil {
		return err
	}
	a.logger.Info("projects reordered", "count", len(req.IDs), "user", auth.CurrentUser(c).Username)
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (a *App) apiUnreadCount(c echo.Context) error {
	n, err := a.Repos.Contacts.UnreadCount(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"count": n})
}

// isConflict reports whether err is a uniqueness violation the caller can
// fix by choosing another title.
func isConflict(err error) bool {
	return errors.Is(err, db.ErrConstraint)
}
