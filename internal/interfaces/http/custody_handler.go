package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cashdesk-api/internal/application/custody"
	"github.com/jhoicas/cashdesk-api/internal/application/dto"
)

// CustodyHandler custodias (fondos entregados a un empleado) y su libro.
type CustodyHandler struct {
	uc *custody.UseCase
}

// NewCustodyHandler construye el handler.
func NewCustodyHandler(uc *custody.UseCase) *CustodyHandler {
	return &CustodyHandler{uc: uc}
}

// Create godoc
// @Summary      Crear custodia
// @Tags         custodies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateCustodyRequest  true  "Custodia"
// @Success      201   {object}  dto.CustodyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/custodies [post]
func (h *CustodyHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCustodyRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar custodias
// @Tags         custodies
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.CustodyResponse
// @Router       /api/custodies [get]
func (h *CustodyHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetPrincipal(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener custodia con saldo actual
// @Tags         custodies
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la custodia"
// @Success      200  {object}  dto.CustodyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/custodies/{id} [get]
func (h *CustodyHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Get(c.UserContext(), GetPrincipal(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Statement godoc
// @Summary      Libro de la custodia
// @Tags         custodies
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la custodia"
// @Success      200  {object}  dto.CustodyStatementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/custodies/{id}/transactions [get]
func (h *CustodyHandler) Statement(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Statement(c.UserContext(), GetPrincipal(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ApplyTransaction godoc
// @Summary      Registrar asiento (ISSUE, SPEND, RETURN, SETTLEMENT)
// @Tags         custodies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                         true  "ID de la custodia"
// @Param        body  body  dto.CustodyTransactionRequest  true  "Asiento"
// @Success      201   {object}  dto.CustodyTransactionResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/custodies/{id}/transactions [post]
func (h *CustodyHandler) ApplyTransaction(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.CustodyTransactionRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ApplyTransaction(c.UserContext(), GetPrincipal(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar custodia
// @Tags         custodies
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la custodia"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/custodies/{id}/deactivate [post]
func (h *CustodyHandler) Deactivate(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Deactivate(c.UserContext(), GetPrincipal(c), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
