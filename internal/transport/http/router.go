package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/velora/storefront/internal/handlers"
	"github.com/velora/storefront/internal/metrics"
	"github.com/velora/storefront/internal/middleware/auth"
	"github.com/velora/storefront/internal/models"
	"github.com/velora/storefront/internal/token"
)

type Deps struct {
	DB                 *gorm.DB
	Tokens             *token.Service
	AuthHandler        *handlers.AuthHandler
	OrdersHandler      *handlers.OrdersHandler
	AdminOrdersHandler *handlers.AdminOrdersHandler
	ProductHandler     *handlers.ProductHandler
	AccountHandler     *handlers.AccountHandler
	DashboardHandler   *handlers.DashboardHandler
	SearchHandler      *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	v1 := e.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", d.AuthHandler.Register)
	authGroup.POST("/login", d.AuthHandler.Login)
	authGroup.POST("/logout", d.AuthHandler.Logout)
	authGroup.GET("/me", d.AuthHandler.Me)

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)

	v1.GET("/search", d.SearchHandler.Handler)

	loggedIn := v1.Group("", auth.RequireLogin(d.Tokens))

	loggedIn.POST("/orders", d.OrdersHandler.Create)
	loggedIn.GET("/orders", d.OrdersHandler.List)

	loggedIn.GET("/account/profile", d.AccountHandler.GetProfile)
	loggedIn.PATCH("/account/profile", d.AccountHandler.UpdateProfile)

	admin := v1.Group("/admin",
		auth.RequireLogin(d.Tokens),
		auth.RequireRole(models.RoleAdmin, models.RoleSuperAdmin),
	)

	admin.GET("/dashboard", d.DashboardHandler.Dashboard)

	admin.GET("/orders", d.AdminOrdersHandler.List)
	admin.PATCH("/orders/:id", d.AdminOrdersHandler.UpdateStatus)

	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)
}
