package http

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cashdesk-api/internal/application/dto"
	"github.com/jhoicas/cashdesk-api/internal/application/session"
	"github.com/jhoicas/cashdesk-api/internal/domain"
	"github.com/jhoicas/cashdesk-api/internal/domain/access"
	"github.com/jhoicas/cashdesk-api/pkg/jwt"
)

// Locals keys para la identidad de la petición en Fiber.
const (
	LocalUserID    = "user_id"
	LocalCompanyID = "company_id"
	LocalPrincipal = "principal"
)

// principalResolver lo implementa *session.Resolver.
type principalResolver interface {
	Resolve(ctx context.Context, userID, companyID string, tokenExpiry time.Time) (*session.Principal, error)
	Invalidate(userID, companyID string)
}

// bearerSession extrae y valida el Bearer Token. Un token vencido devuelve
// domain.ErrAuthExpired junto con la sesión que traía.
func bearerSession(c *fiber.Ctx, jwtSecret string) (*jwt.Session, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, &requestError{code: "MISSING_TOKEN", msg: "Authorization header requerido"}
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, &requestError{code: "INVALID_TOKEN", msg: "formato: Bearer <token>"}
	}
	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return nil, &requestError{code: "MISSING_TOKEN", msg: "token vacío"}
	}
	s, err := jwt.Parse(jwtSecret, tokenString)
	if err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			return s, domain.ErrAuthExpired
		}
		return nil, &requestError{code: "INVALID_TOKEN", msg: "token inválido"}
	}
	return s, nil
}

// writeAuthError los fallos de token son 401 aunque requestError sea 400 en el resto.
func writeAuthError(c *fiber.Ctx, err error) error {
	var re *requestError
	if errors.As(err, &re) {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: re.code, Message: re.msg})
	}
	return writeError(c, err)
}

// IdentityMiddleware valida el token y carga solo el UserID. Para rutas que no
// dependen de una empresa (crear empresa, perfil).
func IdentityMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := bearerSession(c, jwtSecret)
		if err != nil {
			return writeAuthError(c, err)
		}
		c.Locals(LocalUserID, s.UserID)
		c.Locals(LocalCompanyID, s.CompanyID)
		return c.Next()
	}
}

// AuthMiddleware valida el Bearer Token, resuelve la membresía del usuario en la
// empresa del token y deja el Principal en c.Locals.
//
// Respuestas:
//   - 401 MISSING_TOKEN / INVALID_TOKEN → header ausente o token inválido.
//   - 401 AUTH_EXPIRED → token vencido, al llegar o durante la operación; la
//     caché de capacidades se descarta.
//   - 403 NO_PERMISSIONS_ASSIGNED → sin membresía o sin rol en la empresa.
//   - 503 COLLABORATOR_UNAVAILABLE → no se pudo consultar la membresía.
func AuthMiddleware(jwtSecret string, resolver principalResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := bearerSession(c, jwtSecret)
		if err != nil {
			if errors.Is(err, domain.ErrAuthExpired) && s != nil {
				resolver.Invalidate(s.UserID, s.CompanyID)
			}
			return writeAuthError(c, err)
		}
		if s.CompanyID == "" {
			return writeError(c, domain.ErrNoPermissionsAssigned)
		}
		c.Locals(LocalUserID, s.UserID)
		c.Locals(LocalCompanyID, s.CompanyID)

		p, err := resolver.Resolve(c.UserContext(), s.UserID, s.CompanyID, s.ExpiresAt)
		if err != nil {
			return writeError(c, err)
		}
		c.Locals(LocalPrincipal, p)

		// La operación no sobrevive a la sesión: al vencer el token se cancela
		// el contexto y writeError responde AUTH_EXPIRED.
		ctx := c.UserContext()
		if !s.ExpiresAt.IsZero() {
			var cancel context.CancelFunc
			ctx, cancel = context.WithDeadlineCause(ctx, s.ExpiresAt, domain.ErrAuthExpired)
			defer cancel()
			c.SetUserContext(ctx)
		}

		err = c.Next()
		if sessionExpired(ctx) {
			resolver.Invalidate(s.UserID, s.CompanyID)
		}
		return err
	}
}

// sessionExpired indica si el contexto se canceló por vencimiento del token.
func sessionExpired(ctx context.Context) bool {
	return ctx.Err() != nil && errors.Is(context.Cause(ctx), domain.ErrAuthExpired)
}

// RequirePermission protege una ruta con el mismo Guard que usan los casos de
// uso. Debe ir DESPUÉS de AuthMiddleware. La respuesta 403 no indica qué
// permiso faltó.
func RequirePermission(mode access.Mode, perms ...access.Permission) fiber.Handler {
	req := access.Require(mode, perms...)
	return func(c *fiber.Ctx) error {
		p := GetPrincipal(c)
		if p == nil {
			return writeError(c, domain.ErrUnauthorized)
		}
		if !req.Allows(p.Caps) {
			return writeError(c, domain.ErrPermissionDenied)
		}
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetCompanyID devuelve el CompanyID del contexto (después del middleware de auth).
func GetCompanyID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalCompanyID).(string)
	return s
}

// GetPrincipal devuelve el Principal resuelto o nil si la ruta no pasó por AuthMiddleware.
func GetPrincipal(c *fiber.Ctx) *session.Principal {
	p, _ := c.Locals(LocalPrincipal).(*session.Principal)
	return p
}
