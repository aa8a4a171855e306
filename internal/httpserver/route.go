package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/eshop/internal/images"
	"github.com/Skotchmaster/eshop/internal/logging"
	"github.com/Skotchmaster/eshop/internal/middleware/auth"
	"github.com/Skotchmaster/eshop/internal/service"
)

type Deps struct {
	// Base is the prefix of every resource route, e.g. "/api/v1".
	Base string

	Catalog *service.CatalogService
	Orders  *service.OrderService
	Users   *service.UserService

	Verifier auth.Verifier
	// Policy defaults to auth.AdminOnly.
	Policy auth.Policy

	// UploadDir is served under /public/uploads when set.
	UploadDir string
	Ready     func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.Use(auth.Gate(d.Verifier, auth.DefaultAllowList(d.Base), d.Policy)...)

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				logging.FromContext(c.Request().Context()).Error("readiness_failed", "error", err)
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	if d.UploadDir != "" {
		e.Static(images.PublicPrefix, d.UploadDir)
	}

	api := e.Group(d.Base)

	ph := &ProductHTTP{Svc: d.Catalog}
	products := api.Group("/products")
	products.GET("", ph.ListProducts)
	products.GET("/search", ph.SearchProducts)
	products.GET("/:id", ph.GetProduct)
	products.POST("", ph.CreateProduct)
	products.PUT("/:id", ph.PatchProduct)
	products.PUT("/:id/image", ph.ReplaceImage)
	products.DELETE("/:id", ph.DeleteProduct)
	products.GET("/get/count", ph.CountProducts)
	products.GET("/get/featured", ph.FeaturedProducts)
	products.GET("/get/featured/:count", ph.FeaturedProducts)

	ch := &CategoryHTTP{Svc: d.Catalog}
	categories := api.Group("/categories")
	categories.GET("", ch.ListCategories)
	categories.GET("/:id", ch.GetCategory)
	categories.POST("", ch.CreateCategory)
	categories.PUT("/:id", ch.PatchCategory)
	categories.DELETE("/:id", ch.DeleteCategory)

	oh := &OrderHTTP{Svc: d.Orders}
	orders := api.Group("/orders")
	orders.GET("", oh.ListOrders)
	orders.GET("/:id", oh.GetOrder)
	orders.POST("", oh.CreateOrder)
	orders.PUT("/:id", oh.UpdateOrderStatus)
	orders.DELETE("/:id", oh.DeleteOrder)
	orders.GET("/get/totalsales", oh.TotalSales)
	orders.GET("/get/count", oh.CountOrders)
	orders.GET("/get/userorders/:id", oh.UserOrders)

	uh := &UserHTTP{Svc: d.Users}
	users := api.Group("/users")
	users.POST("/login", uh.Login)
	users.POST("/register", uh.Register)
	users.GET("", uh.ListUsers)
	users.GET("/:id", uh.GetUser)
	users.POST("", uh.CreateUser)
	users.PUT("/:id", uh.PatchUser)
	users.DELETE("/:id", uh.DeleteUser)
	users.GET("/get/count", uh.CountUsers)
}
