package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows cross-origin calls from the listed origins only. "*" allows any origin without
// credentials and an empty list rejects every cross-origin call.
func CORS(origins []string, allowCredentials bool) gin.HandlerFunc {

	config := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader},
		ExposeHeaders:    []string{RequestIDHeader, RateLimitHeader, RateLimitRemainingHeader, RetryAfterHeader},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}

	switch {
	case slices.Contains(origins, "*"):
		// browsers refuse credentials with a wildcard origin
		config.AllowAllOrigins = true
		config.AllowCredentials = false

	case len(origins) == 0:
		config.AllowOriginFunc = func(string) bool { return false }

	default:
		config.AllowOrigins = origins
	}

	return cors.New(config)
}
