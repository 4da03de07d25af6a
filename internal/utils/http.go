package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// GetRealClientIP returns the caller address for request logs.
// X-Real-IP wins, then the first valid X-Forwarded-For hop, then gin's ClientIP.
func GetRealClientIP(c *gin.Context) string {
	// Try X-Real-IP header first (set by our reverse proxy)
	if ip := strings.TrimSpace(c.GetHeader("X-Real-IP")); net.ParseIP(ip) != nil {
		return ip
	}

	// Try X-Forwarded-For next, skipping hops that are not addresses
	for _, hop := range strings.Split(c.GetHeader("X-Forwarded-For"), ",") {
		if ip := strings.TrimSpace(hop); net.ParseIP(ip) != nil {
			return ip
		}
	}

	// Fall back to Gin's built-in method
	return c.ClientIP()
}
