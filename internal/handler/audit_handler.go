package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/controle-estoque/internal/port"
)

const maxAuditLimit = 500

// AuditHandler handles the audit log page.
type AuditHandler struct {
	audit port.AuditRepository
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(audit port.AuditRepository) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// ListLogs returns audit logs with optional filtering.
func (h *AuditHandler) ListLogs(c fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	limit = min(limit, maxAuditLimit)
	action := c.Query("action", "")

	logs, err := h.audit.ListAuditLogs(c.Context(), limit, action)
	if err != nil {
		return respondError(c, err, "Erro ao carregar auditoria.")
	}

	return c.JSON(fiber.Map{
		"logs":  nonNil(logs),
		"count": len(logs),
	})
}
