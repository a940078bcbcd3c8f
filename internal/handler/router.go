package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/flicky/e-games-api/internal/identity"
	"github.com/flicky/e-games-api/internal/middleware"
)

type Handlers struct {
	Auth    *AuthHandler
	Product *ProductHandler
	Rating  *RatingHandler
	Order   *OrderHandler
	User    *UserHandler
	Health  *HealthHandler
}

func RegisterRoutes(router gin.IRouter, h Handlers, tokens *identity.TokenManager) {
	router.GET("/healthz", h.Health.Healthz)
	router.GET("/readyz", h.Health.Readyz)

	authRequired := middleware.AuthMiddleware(tokens)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/signUp", h.Auth.SignUp)
		auth.POST("/signIn", h.Auth.SignIn)

		games := api.Group("/games")
		games.GET("/topPlatforms", h.Product.TopPlatforms)
		games.GET("/search", canonicalQuery("term", "limit", "offset"), h.Product.Search)
		games.GET("/list", canonicalQuery("page", "pageSize", "genres", "ageRange", "sortBy", "sortOrder"), h.Product.List)
		games.GET("/id/:id", h.Product.GetByID)

		admin := games.Group("", authRequired, middleware.AdminOnly())
		admin.POST("", h.Product.Create)
		admin.PUT("/id/:id", h.Product.Update)
		admin.DELETE("/id/:id", h.Product.Delete)

		rating := games.Group("/rating", authRequired, canonicalQuery("gameName"))
		rating.PUT("", h.Rating.Upsert)
		rating.DELETE("", h.Rating.Remove)

		orders := api.Group("/orders", authRequired, canonicalQuery("orderId", "itemIds"))
		orders.POST("", h.Order.AddItem)
		orders.GET("", h.Order.Get)
		orders.PUT("", h.Order.UpdateItemAmount)
		orders.DELETE("", h.Order.DeleteItems)
		orders.POST("/buy", h.Order.Buy)

		user := api.Group("/user", authRequired)
		user.GET("", h.User.GetProfile)
		user.PUT("", h.User.UpdateProfile)
		user.PATCH("/password", h.User.UpdatePassword)
	}
}
