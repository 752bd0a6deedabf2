package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ndanilov/itemvault/internal/handlers"
	"github.com/ndanilov/itemvault/internal/metrics"
	middlewareauth "github.com/ndanilov/itemvault/internal/middleware/auth"
)

type Deps struct {
	Auth  *handlers.AuthHandler
	Items *handlers.ItemHandler
	Users *handlers.UserHandler
	Guard *middlewareauth.Guard
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/api/v1", metrics.Middleware())

	v1.POST("/auth/register", d.Auth.Register)
	v1.POST("/auth/token", d.Auth.Login)

	items := v1.Group("/items", d.Guard.RequireAuth)
	items.POST("", d.Items.CreateItem)
	items.GET("", d.Items.ListItems)
	items.GET("/search", d.Items.SearchItems)
	items.GET("/:id", d.Items.GetItem)
	items.PATCH("/:id", d.Items.UpdateItem)
	items.DELETE("/:id", d.Items.SoftDeleteItem)

	admin := v1.Group("", d.Guard.RequireAuth, d.Guard.RequireSuperuser)
	admin.DELETE("/items/:id/hard", d.Items.HardDeleteItem)
	admin.POST("/users/:id/elevate", d.Users.Elevate)
	admin.GET("/users", d.Users.ListUsers)
}
