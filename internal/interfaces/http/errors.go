package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/cashdesk-api/internal/application/dto"
	"github.com/jhoicas/cashdesk-api/internal/domain"
)

// kindStatus código HTTP por categoría de error de dominio.
var kindStatus = map[domain.Kind]int{
	domain.KindAuthExpired:             fiber.StatusUnauthorized,
	domain.KindUnauthorized:            fiber.StatusUnauthorized,
	domain.KindPermissionDenied:        fiber.StatusForbidden,
	domain.KindNoPermissions:           fiber.StatusForbidden,
	domain.KindInsufficientBalance:     fiber.StatusUnprocessableEntity,
	domain.KindInvalidTransition:       fiber.StatusConflict,
	domain.KindDuplicateSuspected:      fiber.StatusConflict,
	domain.KindConflict:                fiber.StatusConflict,
	domain.KindValidation:              fiber.StatusBadRequest,
	domain.KindNotFound:                fiber.StatusNotFound,
	domain.KindCollaboratorUnavailable: fiber.StatusServiceUnavailable,
	domain.KindInternal:                fiber.StatusInternalServerError,
}

// requestError cuerpo o query mal formados (antes de llegar al caso de uso).
type requestError struct {
	code   string
	msg    string
	fields map[string]string
}

func (e *requestError) Error() string { return e.msg }

// writeError traduce el error a la respuesta HTTP. El mensaje sale siempre de
// domain.MessageFor: nunca se expone el texto crudo de un colaborador. Si la
// sesión venció durante la operación, cualquier fallo se reporta como AUTH_EXPIRED.
func writeError(c *fiber.Ctx, err error) error {
	var re *requestError
	if errors.As(err, &re) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: re.code, Message: re.msg, Fields: re.fields})
	}

	if sessionExpired(c.UserContext()) {
		err = domain.ErrAuthExpired
	}

	kind := domain.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = fiber.StatusInternalServerError
	}
	if status >= fiber.StatusInternalServerError {
		requestLogger(c).Error().Err(err).Str("kind", string(kind)).Msg("request failed")
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: string(kind), Message: domain.MessageFor(kind)})
}

var validate = validator.New()

// pathID valida el :id de la ruta. Un id que no es UUID no puede existir: 404
// sin consultar la BD.
func pathID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", domain.ErrNotFound
	}
	return id, nil
}

// parseBody decodifica el JSON del cuerpo y aplica las etiquetas validate.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return &requestError{code: "INVALID_BODY", msg: "cuerpo inválido"}
	}
	return validateStruct(out)
}

// parseQuery igual que parseBody pero sobre los parámetros de la URL.
func parseQuery(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return &requestError{code: "INVALID_QUERY", msg: "parámetros inválidos"}
	}
	return validateStruct(out)
}

func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return &requestError{code: string(domain.KindValidation), msg: domain.MessageFor(domain.KindValidation), fields: validationFields(ve)}
		}
		return &requestError{code: string(domain.KindValidation), msg: domain.MessageFor(domain.KindValidation)}
	}
	return nil
}

// validationFields campo -> etiqueta que falló.
func validationFields(ve validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
