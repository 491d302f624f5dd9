package routes

import (
	"storefront-service/controllers"
	"storefront-service/middleware"
	"storefront-service/models"
	"storefront-service/services"

	"github.com/gin-gonic/gin"
)

// Register wires every route group with its role gate: catalog reads
// are public, cart and checkout require Customer, management and the
// dashboard require Admin, order detail is resolved in the service
// (owner or admin).
func Register(
	r *gin.Engine,
	tokenService services.TokenService,
	authController *controllers.AuthController,
	productController *controllers.ProductController,
	categoryController *controllers.CategoryController,
	cartController *controllers.CartController,
	orderController *controllers.OrderController,
	dashboardController *controllers.DashboardController,
) {
	auth := r.Group("/auth")
	auth.POST("/register", authController.Register)
	auth.POST("/login", middleware.LoginRateLimit(), authController.Login)
	auth.GET("/me", middleware.Authenticate(tokenService), authController.Me)

	// Public catalog
	r.GET("/products", productController.ListProducts)
	r.GET("/products/:id", productController.GetProduct)
	r.GET("/categories", categoryController.ListCategories)

	// Customer cart and orders
	customer := r.Group("")
	customer.Use(middleware.Authenticate(tokenService), middleware.RequireRole(models.RoleCustomer))
	customer.GET("/cart", cartController.GetCart)
	customer.POST("/cart/items", cartController.AddItem)
	customer.PUT("/cart/items/:id", cartController.UpdateItem)
	customer.DELETE("/cart/items/:id", cartController.RemoveItem)
	customer.POST("/cart/checkout", cartController.Checkout)
	customer.GET("/orders", orderController.GetHistory)

	// Order detail: owner customer or any admin, checked in the service
	r.GET("/orders/:id", middleware.Authenticate(tokenService), orderController.GetOrder)

	// Admin management and dashboard
	admin := r.Group("/admin")
	admin.Use(middleware.Authenticate(tokenService), middleware.RequireRole(models.RoleAdmin))
	admin.POST("/products", productController.CreateProduct)
	admin.PUT("/products/:id", productController.UpdateProduct)
	admin.DELETE("/products/:id", productController.DeleteProduct)
	admin.POST("/products/:id/stock", productController.AdjustStock)
	admin.POST("/categories", categoryController.SaveCategory)
	admin.DELETE("/categories/:id", categoryController.DeleteCategory)
	admin.GET("/orders", orderController.ListForAdmin)
	admin.POST("/orders/:id/status", orderController.UpdateStatus)
	admin.GET("/dashboard", dashboardController.GetStats)
}
