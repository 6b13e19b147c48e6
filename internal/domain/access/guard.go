package access

import "github.com/jhoicas/cashdesk-api/internal/domain"

// Mode cómo se combinan varios permisos requeridos. El valor cero es ModeAny.
type Mode int

const (
	ModeAny Mode = iota
	ModeAll
)

// Authorize es el único punto de decisión de permisos.
//   - sin permisos requeridos ⇒ true (contenido abierto)
//   - ModeAll ⇒ todos deben resolverse true
//   - ModeAny ⇒ al menos uno
func Authorize(caps CapabilitySet, mode Mode, required ...Permission) bool {
	if len(required) == 0 {
		return true
	}
	if mode == ModeAll {
		for _, p := range required {
			if !caps.Has(p) {
				return false
			}
		}
		return true
	}
	for _, p := range required {
		if caps.Has(p) {
			return true
		}
	}
	return false
}

// Requirement describe lo que protege un Guard.
type Requirement struct {
	Permissions []Permission
	Mode        Mode
}

// Require atajo para construir un Requirement.
func Require(mode Mode, perms ...Permission) Requirement {
	return Requirement{Permissions: perms, Mode: mode}
}

// Allows evalúa el requisito contra un conjunto de capacidades.
func (r Requirement) Allows(caps CapabilitySet) bool {
	return Authorize(caps, r.Mode, r.Permissions...)
}

// Fallback produce el resultado cuando el acceso es denegado.
type Fallback[T any] func() T

// Silent devuelve el valor cero de T.
func Silent[T any]() Fallback[T] {
	return func() T {
		var zero T
		return zero
	}
}

// Message devuelve un mensaje fijo (para T = string).
func Message(msg string) Fallback[string] {
	return func() string { return msg }
}

// Content delega en contenido alternativo del llamador.
func Content[T any](fn func() T) Fallback[T] {
	return Fallback[T](fn)
}

// Guard ejecuta content solo si caps satisface req; en otro caso devuelve el fallback.
// Un fallback nil equivale a Silent.
func Guard[T any](caps CapabilitySet, req Requirement, content func() T, fallback Fallback[T]) T {
	if req.Allows(caps) {
		return content()
	}
	if fallback == nil {
		return Silent[T]()()
	}
	return fallback()
}

// GuardErr variante para operaciones: devuelve domain.ErrPermissionDenied sin
// ejecutar fn. El error no indica qué permiso faltó.
func GuardErr(caps CapabilitySet, req Requirement, fn func() error) error {
	if !req.Allows(caps) {
		return domain.ErrPermissionDenied
	}
	return fn()
}
