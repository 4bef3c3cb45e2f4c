package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-ordering-app/utils"
)

// CheckoutRateLimiter: maksimal 3 checkout beruntun per IP, lalu 1 per 10 detik
func CheckoutRateLimiter() gin.HandlerFunc {
	return NewRateLimiter(10*time.Second, 3).RateLimit()
}

func LogCheckoutRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		utils.InfoLogger.WithField("session_id", CartSessionID(c)).Printf(
			"Checkout request - Status: %d, Duration: %v",
			c.Writer.Status(), time.Since(start),
		)
	}
}
