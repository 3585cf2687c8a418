package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/maurocmendes/leechycupcakes/internal/handlers"
	"github.com/maurocmendes/leechycupcakes/internal/handlers/admin"
	"github.com/maurocmendes/leechycupcakes/internal/handlers/auth"
	"github.com/maurocmendes/leechycupcakes/internal/handlers/cart"
	"github.com/maurocmendes/leechycupcakes/internal/handlers/catalog"
	"github.com/maurocmendes/leechycupcakes/internal/service"
)

type Deps struct {
	DB             *gorm.DB
	AuthHandler    *auth.AuthHandler
	CartHandler    *cart.CartHandler
	CatalogHandler *catalog.CatalogHandler
	AdminHandler   *admin.AdminHandler
	SearchHandler  *handlers.SearchHandler
	CEPHandler     *handlers.CEPHandler
	TokenService   *service.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.LogOut)

	v1.GET("/catalog", d.CatalogHandler.GetCatalog)
	v1.GET("/cupcakes/:id", d.CatalogHandler.GetCupcake)
	v1.GET("/menu", d.CatalogHandler.GetMenu)
	v1.GET("/search", d.SearchHandler.Search)
	v1.GET("/cep/:code", d.CEPHandler.Lookup)

	account := v1.Group("/account", d.TokenService.AutoRefreshMiddleware)
	account.GET("", d.AuthHandler.GetAccount)
	account.PUT("", d.AuthHandler.UpdateAccount)
	account.DELETE("", d.AuthHandler.DeleteAccount)

	cartGroup := v1.Group("/cart", d.TokenService.AutoRefreshMiddleware)
	cartGroup.GET("", d.CartHandler.GetCart)
	cartGroup.POST("", d.CartHandler.AddToCart)
	cartGroup.PATCH("/:id", d.CartHandler.UpdateQuantity)
	cartGroup.DELETE("/:id", d.CartHandler.RemoveFromCart)
	cartGroup.DELETE("", d.CartHandler.ClearCart)
	cartGroup.POST("/checkout", d.CartHandler.Checkout)

	adminGroup := v1.Group("/admin", d.TokenService.AutoRefreshMiddlewareAdmin)
	adminGroup.POST("/cupcakes", d.AdminHandler.CreateCupcake)
	adminGroup.PATCH("/cupcakes/:id", d.AdminHandler.PatchCupcake)
	adminGroup.DELETE("/cupcakes/:id", d.AdminHandler.DeleteCupcake)
	adminGroup.POST("/cupcakes/batch", d.AdminHandler.BatchUpdate)
	adminGroup.GET("/stats", d.AdminHandler.GetStats)
	adminGroup.GET("/reports", d.AdminHandler.GetSalesReport)
	adminGroup.GET("/users", d.AdminHandler.GetUsers)
	adminGroup.GET("/activity", d.AdminHandler.GetActivityLogs)
	adminGroup.GET("/export", d.AdminHandler.ExportCupcakes)
}
