package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/labstack/echo/v4"

	"github.com/ndanilin/account-service/internal/events"
	"github.com/ndanilin/account-service/internal/logging"
	authmw "github.com/ndanilin/account-service/internal/middleware/auth"
	"github.com/ndanilin/account-service/internal/models"
	"github.com/ndanilin/account-service/internal/repo"
	"github.com/ndanilin/account-service/internal/token"
)

type AccountHTTP struct {
	Users    *repo.UserRepo
	Tokens   *token.Service
	Producer *events.Producer
	TokenTTL time.Duration
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required),
		validation.Field(&r.LastName, validation.Required),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
}

func (r updateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, is.Email),
	)
}

func publicUser(u *models.User) echo.Map {
	return echo.Map{
		"id":         u.ID,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"email":      u.Email,
	}
}

func (h *AccountHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_register")

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.Validate(); err != nil {
		l.Warn("register_failed", "status", 400, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.Users.Create(ctx, repo.CreateParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrEmailTaken):
			l.Warn("register_failed", "status", 400, "reason", "email_taken")
			return echo.NewHTTPError(http.StatusBadRequest, "email already registered")
		case errors.Is(err, repo.ErrValidation):
			l.Warn("register_failed", "status", 400, "reason", "validation", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			l.Error("register_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	h.publishEvent(c, l, user, "user_registered")

	l.Info("register_success", "status", 200, "user_id", user.ID)
	return c.JSON(http.StatusOK, publicUser(user))
}

func (h *AccountHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_login")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	// unknown email and wrong password answer identically so the
	// response does not reveal which accounts exist
	if user == nil || !h.Users.VerifyPassword(user, req.Password) {
		l.Warn("login_failed", "status", 401, "reason", "invalid_credentials")
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Credentials")
	}

	tokenStr, err := h.Tokens.Issue(user.ID)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot create token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create token")
	}

	c.SetCookie(CreateCookie(authmw.CookieName, tokenStr, "/", time.Now().Add(h.TokenTTL)))

	h.publishEvent(c, l, user, "user_logged_in")

	l.Info("login_successful", "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "success"})
}

func (h *AccountHTTP) Me(c echo.Context) error {
	user, ok := authmw.UserFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	return c.JSON(http.StatusOK, publicUser(user))
}

func (h *AccountHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_update")

	user, ok := authmw.UserFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	var req updateRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.Validate(); err != nil {
		l.Warn("update_failed", "status", 400, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.Users.Update(ctx, user, repo.UpdateParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrEmailTaken):
			l.Warn("update_failed", "status", 400, "reason", "email_taken")
			return echo.NewHTTPError(http.StatusBadRequest, "email already registered")
		case errors.Is(err, repo.ErrValidation):
			l.Warn("update_failed", "status", 400, "reason", "validation", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			l.Error("update_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	h.publishEvent(c, l, updated, "user_updated")

	l.Info("update_success", "status", 200, "user_id", updated.ID)
	return c.JSON(http.StatusOK, publicUser(updated))
}

// LogOut only tells the client to drop the cookie. The token is
// stateless and stays valid until its natural expiry if replayed.
func (h *AccountHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_logout")

	c.SetCookie(DeleteCookie(authmw.CookieName, "/"))

	l.Info("logout_successful")
	return c.JSON(http.StatusOK, echo.Map{"message": "Deleted"})
}

func (h *AccountHTTP) publishEvent(c echo.Context, l *slog.Logger, user *models.User, eventType string) {
	event := map[string]any{
		"type":    eventType,
		"user_id": user.ID,
		"email":   user.Email,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Producer.PublishEvent(ctx, user.ID, event); err != nil {
		l.Error("event_publish_failed", "type", eventType, "error", err)
	}
}
