package handlers

import (
	"time"

	"aphc-housingportal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db        *gorm.DB
	startedAt time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{
		db:        db,
		startedAt: time.Now(),
	}
}

// Check handles health check
// @Summary Health check
// @Description Check API and database health
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /health [get]
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "up"
	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.Ping() != nil {
		dbStatus = "down"
	}

	data := fiber.Map{
		"status":   "ok",
		"database": dbStatus,
		"uptime":   time.Since(h.startedAt).Round(time.Second).String(),
	}
	if dbStatus != "up" {
		return response.ServiceUnavailable(c, "Database unreachable")
	}
	return response.Success(c, "Service healthy", data)
}
