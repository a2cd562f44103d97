package handlers

import (
	"aphc-housingportal/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// clientMeta extracts the request origin fields for the audit log
func clientMeta(c *fiber.Ctx) services.ClientMeta {
	return services.ClientMeta{
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}
