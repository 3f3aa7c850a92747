package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/facturasur/dte-engine/internal/application/billing"
	"github.com/facturasur/dte-engine/internal/application/dto"
	"github.com/facturasur/dte-engine/internal/domain/dte"
)

// CAFHandler maneja las peticiones HTTP del ledger de folios (protegido).
type CAFHandler struct {
	ledger *billing.FolioLedger
}

// NewCAFHandler construye el handler.
func NewCAFHandler(ledger *billing.FolioLedger) *CAFHandler {
	return &CAFHandler{ledger: ledger}
}

// Register registra un CAF descargado del SII.
// POST /api/caf
func (h *CAFHandler) Register(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RegisterCAFRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	caf, err := h.ledger.RegisterCAF(c.Context(), companyID, userID, []byte(in.XML))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(caf)
}

// List lista los CAF de la empresa. ?active=true filtra activos; ?type=39
// filtra por tipo de documento.
// GET /api/caf
func (h *CAFHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if typeParam := c.Query("type"); typeParam != "" {
		code, err := strconv.Atoi(typeParam)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "type debe ser numérico"})
		}
		cafs, err := h.ledger.ListByType(c.Context(), companyID, dte.DocumentType(code))
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(cafs)
	}
	if c.QueryBool("active") {
		cafs, err := h.ledger.ListActive(c.Context(), companyID)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(cafs)
	}
	cafs, err := h.ledger.ListAll(c.Context(), companyID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(cafs)
}

// Available devuelve folios restantes por tipo de documento.
// GET /api/caf/available
func (h *CAFHandler) Available(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	counts, err := h.ledger.AvailableByType(c.Context(), companyID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(counts)
}

// Deactivate desactiva un CAF (acción administrativa, idempotente).
// POST /api/caf/:id/deactivate
func (h *CAFHandler) Deactivate(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.ledger.Deactivate(c.Context(), companyID, c.Params("id")); err != nil {
		return errorJSON(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
