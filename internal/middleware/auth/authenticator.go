package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ndanilin/account-service/internal/models"
	"github.com/ndanilin/account-service/internal/repo"
	"github.com/ndanilin/account-service/internal/token"
)

// CookieName is the session cookie the client presents on protected routes.
const CookieName = "jwt"

const contextUserKey = "user"

var ErrAuthenticationFailed = errors.New("authentication failed")

// Authenticator resolves a request's session cookie to a user record.
// It is composed into routes via RequireAuth rather than inherited.
type Authenticator struct {
	Tokens *token.Service
	Users  *repo.UserRepo
}

// Resolve returns (nil, nil) when no cookie is supplied: anonymous
// access is distinct from failed access. A cookie that fails
// verification, or whose subject no longer exists, yields
// ErrAuthenticationFailed.
func (a *Authenticator) Resolve(c echo.Context) (*models.User, error) {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	userID, err := a.Tokens.Verify(cookie.Value)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	user, err := a.Users.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAuthenticationFailed
		}
		return nil, err
	}

	return user, nil
}

func (a *Authenticator) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := a.Resolve(c)
		if err != nil {
			if errors.Is(err, ErrAuthenticationFailed) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		if user == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
		}

		c.Set(contextUserKey, user)
		return next(c)
	}
}

func UserFromContext(c echo.Context) (*models.User, bool) {
	user, ok := c.Get(contextUserKey).(*models.User)
	return user, ok
}
