package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")

	// Sesión y permisos.
	ErrAuthExpired           = errors.New("sesión expirada")
	ErrPermissionDenied      = errors.New("permiso denegado")
	ErrNoPermissionsAssigned = errors.New("el usuario no tiene permisos asignados en la empresa")

	// Máquina de estados de movimientos y custodias.
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrMovementImmutable = errors.New("el movimiento ya no admite cambios")
	ErrCustodyInactive   = errors.New("la custodia está inactiva")

	// Libro de custodias.
	ErrInsufficientBalance = errors.New("saldo insuficiente en la custodia")
	ErrLimitExceeded       = errors.New("el monto supera el límite máximo de la custodia")

	// Advertencia (no bloqueante) para el aprobador.
	ErrDuplicateSuspected = errors.New("posible movimiento duplicado")

	// Fallo del colaborador (base de datos, red).
	ErrCollaboratorUnavailable = errors.New("servicio no disponible")
)

// Kind clasifica un error en una categoría estable para el cliente.
type Kind string

const (
	KindAuthExpired             Kind = "AUTH_EXPIRED"
	KindPermissionDenied        Kind = "PERMISSION_DENIED"
	KindNoPermissions           Kind = "NO_PERMISSIONS_ASSIGNED"
	KindInsufficientBalance     Kind = "INSUFFICIENT_BALANCE"
	KindInvalidTransition       Kind = "INVALID_TRANSITION"
	KindDuplicateSuspected      Kind = "DUPLICATE_SUSPECTED"
	KindCollaboratorUnavailable Kind = "COLLABORATOR_UNAVAILABLE"
	KindValidation              Kind = "VALIDATION"
	KindNotFound                Kind = "NOT_FOUND"
	KindUnauthorized            Kind = "UNAUTHORIZED"
	KindConflict                Kind = "CONFLICT"
	KindInternal                Kind = "INTERNAL"
)

// kindTable se recorre en orden: el primer sentinel que coincide gana.
var kindTable = []struct {
	err  error
	kind Kind
}{
	{ErrAuthExpired, KindAuthExpired},
	{ErrPermissionDenied, KindPermissionDenied},
	{ErrForbidden, KindPermissionDenied},
	{ErrNoPermissionsAssigned, KindNoPermissions},
	{ErrInsufficientBalance, KindInsufficientBalance},
	{ErrInvalidTransition, KindInvalidTransition},
	{ErrMovementImmutable, KindInvalidTransition},
	{ErrCustodyInactive, KindInvalidTransition},
	{ErrDuplicateSuspected, KindDuplicateSuspected},
	{ErrCollaboratorUnavailable, KindCollaboratorUnavailable},
	{ErrInvalidInput, KindValidation},
	{ErrLimitExceeded, KindValidation},
	{ErrNotFound, KindNotFound},
	{ErrUserNotFound, KindNotFound},
	{ErrUnauthorized, KindUnauthorized},
	{ErrEmailAlreadyExists, KindConflict},
}

// KindOf devuelve la categoría del error. nil no tiene categoría ("").
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, e := range kindTable {
		if errors.Is(err, e.err) {
			return e.kind
		}
	}
	return KindInternal
}

var kindMessages = map[Kind]string{
	KindAuthExpired:             "tu sesión expiró, inicia sesión de nuevo",
	KindPermissionDenied:        "no tienes permiso para realizar esta acción",
	KindNoPermissions:           "tu usuario no tiene permisos asignados en esta empresa",
	KindInsufficientBalance:     "el saldo de la custodia no alcanza para este monto",
	KindInvalidTransition:       "la operación no es válida para el estado actual",
	KindDuplicateSuspected:      "este movimiento podría estar duplicado",
	KindCollaboratorUnavailable: "el servicio no está disponible, intenta de nuevo",
	KindValidation:              "datos inválidos",
	KindNotFound:                "recurso no encontrado",
	KindUnauthorized:            "credenciales inválidas",
	KindConflict:                "el recurso ya existe",
	KindInternal:                "error interno",
}

// MessageFor devuelve el mensaje estable para el usuario final. Nunca expone el
// error crudo del colaborador.
func MessageFor(kind Kind) string {
	if msg, ok := kindMessages[kind]; ok {
		return msg
	}
	return kindMessages[KindInternal]
}
