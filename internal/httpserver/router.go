package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/ndanilin/account-service/internal/middleware/auth"
)

type Deps struct {
	AccountHandler *AccountHTTP
	Auth           *authmw.Authenticator
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.POST("/register", d.AccountHandler.Register)
	e.POST("/login", d.AccountHandler.Login)

	private := e.Group("", d.Auth.RequireAuth)

	private.GET("/me", d.AccountHandler.Me)
	private.PATCH("/update", d.AccountHandler.Update)
	private.POST("/logout", d.AccountHandler.LogOut)
}
