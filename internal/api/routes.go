package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler, limiter *RateLimiter) {
	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(limiter))
	{
		v1.GET("/students/:admission_no", handler.GetStudent)

		v1.POST("/payments", handler.CreatePayment)
		v1.GET("/payments", handler.ListPayments)
		v1.GET("/payments/:id", handler.GetPayment)

		v1.POST("/roster/convert", handler.ConvertRoster)
	}
}
