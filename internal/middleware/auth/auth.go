package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ndanilov/itemvault/internal/logging"
	"github.com/ndanilov/itemvault/internal/models"
	"github.com/ndanilov/itemvault/internal/repo"
	"github.com/ndanilov/itemvault/internal/tokens"
)

const userContextKey = "current_user"

// credentialsMessage is deliberately the same for a bad token and a
// missing or inactive account, so token errors cannot enumerate users.
const credentialsMessage = "could not validate credentials"

type Guard struct {
	Tokens *tokens.Service
	Repo   *repo.GormRepo
}

func NewGuard(t *tokens.Service, r *repo.GormRepo) *Guard {
	return &Guard{Tokens: t, Repo: r}
}

// RequireAuth resolves the bearer token to an active user and stores it in
// the request context. Every failure is the same 401.
func (g *Guard) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "require_auth")

		raw := bearerToken(c)
		if raw == "" {
			l.Warn("auth_failed", "status", 401, "reason", "missing_token")
			return echo.NewHTTPError(http.StatusUnauthorized, credentialsMessage)
		}

		userID, err := g.Tokens.Validate(raw)
		if err != nil {
			l.Warn("auth_failed", "status", 401, "reason", "invalid_token")
			return echo.NewHTTPError(http.StatusUnauthorized, credentialsMessage)
		}

		user, err := g.Repo.GetUserByID(ctx, userID)
		if err != nil || !user.IsActive {
			l.Warn("auth_failed", "status", 401, "reason", "no_active_user")
			return echo.NewHTTPError(http.StatusUnauthorized, credentialsMessage)
		}

		c.Set(userContextKey, user)
		return next(c)
	}
}

// RequireSuperuser gates destructive and administrative routes. It runs
// after RequireAuth and only inspects the already-loaded identity, never
// the token.
func (g *Guard) RequireSuperuser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := CurrentUser(c)
		if user == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, credentialsMessage)
		}
		if !user.IsSuperuser {
			ctx := c.Request().Context()
			logging.FromContext(ctx).Warn("auth_failed", "status", 403, "reason", "not_superuser", "user_id", user.ID)
			return echo.NewHTTPError(http.StatusForbidden, "requires superuser")
		}
		return next(c)
	}
}

// CurrentUser returns the authenticated user set by RequireAuth, or nil.
func CurrentUser(c echo.Context) *models.User {
	if v := c.Get(userContextKey); v != nil {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}
