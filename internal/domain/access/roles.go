// Package access contiene el registro de roles, la resolución de capacidades y el
// guardia de permisos. Todo es puro: sin I/O ni estado global mutable.
package access

import "strings"

// Role rol de la taxonomía completa (escritorio / administración).
type Role string

// Roles de la taxonomía completa. RoleUnknown es la variante explícita para tokens
// no reconocidos; no tiene permisos.
const (
	RoleUnknown        Role = ""
	RoleSystemAdmin    Role = "system_admin"
	RoleCompanyOwner   Role = "company_owner"
	RoleFinanceManager Role = "finance_manager"
	RoleAccountant     Role = "accountant"
	RoleProjectManager Role = "project_manager"
	RoleEmployee       Role = "employee"
)

// AllRoles lista los roles conocidos en orden de privilegio descendente.
var AllRoles = []Role{
	RoleSystemAdmin,
	RoleCompanyOwner,
	RoleFinanceManager,
	RoleAccountant,
	RoleProjectManager,
	RoleEmployee,
}

// ParseRole compara el token exacto (minúsculas, sin recorte) contra la taxonomía completa.
func ParseRole(s string) (Role, bool) {
	for _, r := range AllRoles {
		if string(r) == s {
			return r, true
		}
	}
	return RoleUnknown, false
}

// String implementa fmt.Stringer.
func (r Role) String() string {
	if r == RoleUnknown {
		return "unknown"
	}
	return string(r)
}

// CondensedRole rol de la taxonomía reducida (superficie móvil).
type CondensedRole string

const (
	CondensedUnknown        CondensedRole = ""
	CondensedOwner          CondensedRole = "owner"
	CondensedAccountant     CondensedRole = "accountant"
	CondensedCustodyOfficer CondensedRole = "custody_officer"
)

// ParseCondensedRole tolera mayúsculas, espacios y guiones ("Custody-Officer ").
func ParseCondensedRole(s string) CondensedRole {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	switch CondensedRole(norm) {
	case CondensedOwner:
		return CondensedOwner
	case CondensedAccountant:
		return CondensedAccountant
	case CondensedCustodyOfficer:
		return CondensedCustodyOfficer
	default:
		return CondensedUnknown
	}
}

// MapCondensed traduce la taxonomía reducida a la completa. Es total: un rol
// desconocido cae en RoleEmployee, nunca en uno con más privilegios.
func MapCondensed(c CondensedRole) Role {
	switch c {
	case CondensedOwner:
		return RoleCompanyOwner
	case CondensedAccountant:
		return RoleAccountant
	case CondensedCustodyOfficer:
		return RoleFinanceManager
	case CondensedUnknown:
		return RoleEmployee
	}
	return RoleEmployee
}

// RoleFromToken acepta un token de cualquiera de las dos taxonomías.
// Devuelve RoleUnknown si no pertenece a ninguna; el llamador decide el valor
// por defecto (ResolveCapabilities lo trata como "sin permisos").
func RoleFromToken(s string) Role {
	if r, ok := ParseRole(s); ok {
		return r
	}
	if c := ParseCondensedRole(s); c != CondensedUnknown {
		return MapCondensed(c)
	}
	return RoleUnknown
}
