package routes

import (
	"analytics-service/controllers"
	"analytics-service/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterAnalyticsRoutes(
	r *gin.Engine,
	controller *controllers.AnalyticsController,
	visitor middleware.VisitorCookie,
	limiter *middleware.RateLimiter,
) {
	r.GET("/health", controller.Health)

	api := r.Group("/analytics")
	api.Use(middleware.Visitor(visitor))
	if limiter != nil {
		api.Use(middleware.RateLimitMiddleware(limiter))
	}
	{
		api.POST("/cart/add", controller.AddToCart)
		api.POST("/cart/remove", controller.RemoveFromCart)
		api.POST("/purchase/complete", controller.CompletePurchase)
		api.GET("/events", controller.Events)
	}
}
