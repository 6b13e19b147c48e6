package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cashdesk-api/internal/application/dto"
	"github.com/jhoicas/cashdesk-api/internal/application/notification"
)

// inbox lo implementa *notification.Store.
type inbox interface {
	List(userID, companyID string, unreadOnly bool) []notification.Notification
	MarkRead(userID, companyID, id string) bool
}

// NotificationHandler bandeja de avisos del usuario de la sesión.
type NotificationHandler struct {
	store inbox
}

// NewNotificationHandler construye el handler.
func NewNotificationHandler(store inbox) *NotificationHandler {
	return &NotificationHandler{store: store}
}

// List godoc
// @Summary      Avisos del usuario
// @Description  Con un token de empresa solo se listan los avisos de esa empresa.
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        unread  query  bool  false  "Solo no leídos"
// @Success      200     {array}  dto.NotificationResponse
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	list := h.store.List(GetUserID(c), GetCompanyID(c), c.QueryBool("unread", false))
	out := make([]dto.NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, dto.NotificationResponse{
			ID:         n.ID,
			CompanyID:  n.CompanyID,
			Kind:       n.Kind,
			MovementID: n.MovementID,
			Message:    n.Message,
			Read:       n.Read,
			CreatedAt:  n.CreatedAt,
		})
	}
	return c.JSON(out)
}

// MarkRead godoc
// @Summary      Marcar aviso como leído
// @Tags         notifications
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del aviso"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	if !h.store.MarkRead(GetUserID(c), GetCompanyID(c), c.Params("id")) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "aviso no encontrado"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
