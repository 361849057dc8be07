package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ClientIP determines the actual client IP address considering proxies.
// Cloudflare and X-Forwarded-For headers win over the socket address.
func ClientIP(c *fiber.Ctx) string {
	if cfIP := strings.TrimSpace(c.Get("CF-Connecting-IP")); cfIP != "" {
		return cfIP
	}

	if xff := c.Get("X-Forwarded-For"); xff != "" {
		// The first entry is the original client.
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	ip := c.IP()
	// Unwrap IPv4-mapped-IPv6 addresses (::ffff:192.168.1.1)
	if strings.HasPrefix(ip, "::ffff:") && strings.Contains(ip, ".") {
		return strings.TrimPrefix(ip, "::ffff:")
	}
	return ip
}
