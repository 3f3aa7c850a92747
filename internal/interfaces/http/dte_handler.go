package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/facturasur/dte-engine/internal/application/billing"
	"github.com/facturasur/dte-engine/internal/application/dto"
)

// DTEHandler maneja las peticiones HTTP de emisión y consulta de documentos
// (protegido).
type DTEHandler struct {
	uc *billing.EmitDTEUseCase
}

// NewDTEHandler construye el handler.
func NewDTEHandler(uc *billing.EmitDTEUseCase) *DTEHandler {
	return &DTEHandler{uc: uc}
}

// Emit emite un documento tributario: folio + cálculo de montos + persistencia
// en una sola transacción.
// POST /api/dte
func (h *DTEHandler) Emit(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.EmitDTERequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	doc, err := h.uc.Emit(c.Context(), companyID, GetBranchID(c), userID, in)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// GetByID obtiene un documento con su detalle completo.
// GET /api/dte/:id
func (h *DTEHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	doc, err := h.uc.GetByID(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(doc)
}

// List lista los documentos de la empresa. Filtros: ?type=39, ?status=PENDIENTE;
// paginación: ?limit, ?offset. Orden por fecha de creación descendente.
// GET /api/dte
func (h *DTEHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	var typeCode *int
	if typeParam := c.Query("type"); typeParam != "" {
		code, err := strconv.Atoi(typeParam)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "type debe ser numérico"})
		}
		typeCode = &code
	}
	list, err := h.uc.List(c.Context(), companyID, typeCode, c.Query("status"), page)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(list)
}

// SalesLedger exporta el libro de ventas: documentos con fecha de emisión en
// [from, to] inclusive, con detalle, opcionalmente filtrados por tipo.
// GET /api/dte/ledger?from=2026-01-01&to=2026-01-31&type=39
func (h *DTEHandler) SalesLedger(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from requerido (YYYY-MM-DD)"})
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to requerido (YYYY-MM-DD)"})
	}
	var typeCode *int
	if typeParam := c.Query("type"); typeParam != "" {
		code, err := strconv.Atoi(typeParam)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "type debe ser numérico"})
		}
		typeCode = &code
	}
	docs, err := h.uc.SalesLedger(c.Context(), companyID, from, to, typeCode)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(docs)
}

// GetStatus devuelve la proyección ligera de estado (polling del frontend).
// GET /api/dte/:id/status
func (h *DTEHandler) GetStatus(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	status, err := h.uc.GetStatus(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(status)
}

// UpdateStatus escribe el resultado del flujo de firma/envío (servicio
// interno) sobre un documento ya emitido.
// PATCH /api/dte/:id/status
func (h *DTEHandler) UpdateStatus(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.UpdateDTEStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	status, err := h.uc.UpdateStatus(c.Context(), companyID, c.Params("id"), in)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(status)
}
