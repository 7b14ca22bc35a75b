package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/barmor12/cakeshop-backend/controllers"
	"github.com/barmor12/cakeshop-backend/middleware"
	"github.com/barmor12/cakeshop-backend/services"
)

// Controllers bundles every HTTP controller for route registration.
type Controllers struct {
	Auth     *controllers.AuthController
	Cake     *controllers.CakeController
	Cart     *controllers.CartController
	Order    *controllers.OrderController
	Address  *controllers.AddressController
	Discount *controllers.DiscountController
	Stats    *controllers.StatsController
	Push     *controllers.PushController
}

// Register sets up all routes on the engine.
func Register(r *gin.Engine, c Controllers, tokens *services.TokenService) {
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "OK", "service": "cakeshop-backend"})
	})

	auth := r.Group("/auth")
	auth.POST("/register", c.Auth.Register)
	auth.POST("/login", c.Auth.Login)
	auth.POST("/verify-email", c.Auth.VerifyEmail)
	auth.POST("/refresh", c.Auth.Refresh)
	auth.POST("/logout", c.Auth.Logout)

	profile := auth.Group("/profile")
	profile.Use(middleware.RequireAuth(tokens))
	profile.GET("", c.Auth.Profile)
	profile.PUT("", c.Auth.UpdateProfile)

	// Catalog browsing is public; management is admin only.
	cakes := r.Group("/cakes")
	cakes.GET("", c.Cake.ListCakes)
	cakes.GET("/:cakeId", c.Cake.GetCake)

	cakeAdmin := cakes.Group("")
	cakeAdmin.Use(middleware.RequireAuth(tokens), middleware.AdminOnly())
	cakeAdmin.POST("", c.Cake.CreateCake)
	cakeAdmin.PUT("/:cakeId", c.Cake.UpdateCake)
	cakeAdmin.DELETE("/:cakeId", c.Cake.DeleteCake)
	cakeAdmin.POST("/image-upload", c.Cake.PresignImageUpload)

	cart := r.Group("/cart")
	cart.Use(middleware.RequireAuth(tokens))
	cart.GET("", c.Cart.GetCart)
	cart.DELETE("", c.Cart.ClearCart)
	cart.POST("/items", c.Cart.AddItem)
	cart.PUT("/items/:itemId", c.Cart.UpdateItem)
	cart.DELETE("/items/:itemId", c.Cart.RemoveItem)

	orders := r.Group("/order")
	orders.Use(middleware.RequireAuth(tokens))
	orders.POST("/new-order", c.Order.PlaceOrder)
	orders.POST("/apply-discount", c.Order.ApplyDiscount)
	orders.GET("", c.Order.ListMyOrders)

	orderAdmin := orders.Group("")
	orderAdmin.Use(middleware.AdminOnly())
	orderAdmin.GET("/all", c.Order.ListAllOrders)
	orderAdmin.PUT("/:orderId", c.Order.UpdateStatus)
	orderAdmin.DELETE("/:orderId", c.Order.DeleteOrder)

	// GetOrder is registered after the admin routes so /all wins over :orderId.
	orders.GET("/:orderId", c.Order.GetOrder)

	addresses := r.Group("/addresses")
	addresses.Use(middleware.RequireAuth(tokens))
	addresses.GET("", c.Address.ListAddresses)
	addresses.POST("", c.Address.CreateAddress)
	addresses.PUT("/:addressId", c.Address.UpdateAddress)
	addresses.DELETE("/:addressId", c.Address.DeleteAddress)
	addresses.PUT("/:addressId/default", c.Address.SetDefaultAddress)

	discounts := r.Group("/discounts")
	discounts.Use(middleware.RequireAuth(tokens), middleware.AdminOnly())
	discounts.POST("", c.Discount.CreateCode)
	discounts.GET("", c.Discount.ListCodes)
	discounts.DELETE("/:code", c.Discount.DeleteCode)

	push := r.Group("/push")
	push.Use(middleware.RequireAuth(tokens))
	push.POST("/devices", c.Push.RegisterDevice)
	push.DELETE("/devices/:token", c.Push.UnregisterDevice)

	pushAdmin := push.Group("")
	pushAdmin.Use(middleware.AdminOnly())
	pushAdmin.POST("/broadcast", c.Push.Broadcast)

	stats := r.Group("/stats")
	stats.Use(middleware.RequireAuth(tokens), middleware.AdminOnly())
	stats.GET("/overview", c.Stats.Overview)
	stats.GET("/orders-per-day", c.Stats.OrdersPerDay)
}
