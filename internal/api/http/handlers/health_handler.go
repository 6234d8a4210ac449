package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// StatusFunc reports gateway reachability: bot connection, guild membership
// and ticket category presence.
type StatusFunc func(ctx context.Context) (botConnected, guildConnected, categoryFound bool)

// HealthHandler responds to process and external-link status probes.
type HealthHandler struct {
	serviceName string
	version     string
	status      StatusFunc
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, status StatusFunc) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, status: status}
}

// Health GET /health.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	botConnected, guildConnected, categoryFound := false, false, false
	if h.status != nil {
		botConnected, guildConnected, categoryFound = h.status(ctx)
	}

	status := "healthy"
	if !botConnected {
		status = "degraded"
	}

	return c.JSON(fiber.Map{
		"status":          status,
		"service":         h.serviceName,
		"version":         h.version,
		"bot_connected":   botConnected,
		"guild_connected": guildConnected,
		"category_found":  categoryFound,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}
