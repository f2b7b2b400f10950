package middleware

import (
	"path"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// OriginAllowed matches origin against exact entries and glob patterns
// such as https://*.vercel.app.
func OriginAllowed(origins []string, origin string) bool {
	for _, allowed := range origins {
		allowed = strings.TrimRight(strings.TrimSpace(allowed), "/")
		if allowed == "" {
			continue
		}
		if allowed == "*" || allowed == origin {
			return true
		}
		if strings.Contains(allowed, "*") {
			if ok, err := path.Match(allowed, origin); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// CORS allows the configured origins with credentials.
func CORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return OriginAllowed(origins, origin)
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "x-access-token"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
