package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/localmarket/marketplace/internal/handlers"
	authmw "github.com/localmarket/marketplace/internal/middleware/auth"
)

type Deps struct {
	DB              *gorm.DB
	JWTSecret       []byte
	AuthHandler     *handlers.AuthHandler
	UserHandler     *handlers.UserHandler
	ProductHandler  *handlers.ProductHandler
	CartHandler     *handlers.CartHandler
	OrderHandler    *handlers.OrderHandler
	SellerHandler   *handlers.SellerHandler
	FeedbackHandler *handlers.FeedbackHandler
	SearchHandler   *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	api := e.Group("/api")

	users := api.Group("/users")
	users.POST("/register", d.AuthHandler.Register)
	users.POST("/login", d.AuthHandler.Login)
	users.POST("/logout", d.AuthHandler.Logout)
	users.GET("/:id", d.UserHandler.GetUser)
	users.PUT("/:id", d.UserHandler.UpdateUser)
	users.POST("/address/:userId", d.UserHandler.CreateAddress)
	users.GET("/address/:userId", d.UserHandler.GetAddresses)

	products := api.Group("/products")
	products.POST("", d.ProductHandler.CreateProduct)
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("/feedback", d.FeedbackHandler.CreateFeedback)
	products.GET("/:id/feedback", d.FeedbackHandler.ListFeedback)

	api.GET("/categories", d.ProductHandler.GetCategories)
	api.GET("/search", d.SearchHandler.Search)

	cart := api.Group("/cart")
	cart.POST("", d.CartHandler.AddToCart)
	cart.GET("/:userId", d.CartHandler.GetCart)
	cart.PUT("/:userId/:itemId", d.CartHandler.UpdateCartItem)
	cart.DELETE("/:userId/:itemId", d.CartHandler.DeleteCartItem)

	api.POST("/checkout/:userId", d.OrderHandler.Checkout)
	api.PATCH("/order/:orderId", d.OrderHandler.AdvanceStatus)
	api.GET("/orders/user/:userId", d.OrderHandler.ListUserOrders)
	api.GET("/orders/seller/:sellerId", d.OrderHandler.ListSellerOrders)

	sellers := api.Group("/sellers")
	sellers.POST("", d.SellerHandler.RegisterSeller)
	sellers.GET("/:sellerId", d.SellerHandler.GetSeller)

	analytics := sellers.Group("", authmw.RequireLogin(d.JWTSecret))
	analytics.GET("/:sellerId/earnings", d.SellerHandler.Earnings)
	analytics.GET("/:sellerId/products/:productId/price-recommendation", d.SellerHandler.PriceRecommendation)
}
