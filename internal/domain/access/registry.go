package access

// Permission token atómico "recurso:acción".
type Permission string

const (
	PermDashboardView Permission = "dashboard:view"

	PermExpensesView      Permission = "expenses:view"
	PermExpensesCreate    Permission = "expenses:create"
	PermExpensesApprove   Permission = "expenses:approve"
	PermExpensesReject    Permission = "expenses:reject"
	PermExpensesDeleteAny Permission = "expenses:delete_any"

	PermCustodyView              Permission = "custody:view"
	PermCustodyManage            Permission = "custody:manage"
	PermCustodySpend             Permission = "custody:spend"
	PermCustodyApproveSettlement Permission = "custody:approve_settlement"

	PermReportsView   Permission = "reports:view"
	PermReportsExport Permission = "reports:export"

	PermTeamManage     Permission = "team:manage"
	PermCompanyManage  Permission = "company:manage"
	PermSettingsManage Permission = "settings:manage"
	PermProjectsManage Permission = "projects:manage"

	PermSystemAdmin Permission = "system:admin"
)

// registry rol → permisos, en orden fijo. Se define una sola vez; no se combina en runtime.
var registry = map[Role][]Permission{
	RoleSystemAdmin: {
		PermDashboardView,
		PermExpensesView, PermExpensesCreate, PermExpensesApprove, PermExpensesReject, PermExpensesDeleteAny,
		PermCustodyView, PermCustodyManage, PermCustodySpend, PermCustodyApproveSettlement,
		PermReportsView, PermReportsExport,
		PermTeamManage, PermCompanyManage, PermSettingsManage, PermProjectsManage,
		PermSystemAdmin,
	},
	RoleCompanyOwner: {
		PermDashboardView,
		PermExpensesView, PermExpensesCreate, PermExpensesApprove, PermExpensesReject, PermExpensesDeleteAny,
		PermCustodyView, PermCustodyManage, PermCustodySpend, PermCustodyApproveSettlement,
		PermReportsView, PermReportsExport,
		PermTeamManage, PermCompanyManage, PermSettingsManage, PermProjectsManage,
	},
	RoleFinanceManager: {
		PermDashboardView,
		PermExpensesView, PermExpensesCreate, PermExpensesApprove, PermExpensesReject,
		PermCustodyView, PermCustodyManage, PermCustodySpend, PermCustodyApproveSettlement,
		PermReportsView, PermReportsExport,
	},
	RoleAccountant: {
		PermDashboardView,
		PermExpensesView, PermExpensesCreate,
		PermCustodyView, PermCustodySpend,
		PermReportsView, PermReportsExport,
	},
	RoleProjectManager: {
		PermDashboardView,
		PermExpensesView, PermExpensesCreate, PermExpensesApprove, PermExpensesReject,
		PermCustodyView, PermCustodySpend,
		PermReportsView,
		PermProjectsManage,
	},
	RoleEmployee: {
		PermExpensesView, PermExpensesCreate,
		PermCustodyView, PermCustodySpend,
	},
}

// PermissionsOf devuelve una copia de los permisos del rol (vacía si no existe).
func PermissionsOf(r Role) []Permission {
	perms := registry[r]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// HasPermission prueba de pertenencia directa contra el registro.
func HasPermission(r Role, p Permission) bool {
	for _, candidate := range registry[r] {
		if candidate == p {
			return true
		}
	}
	return false
}

// AllPermissions lista todos los permisos que algún rol posee, sin repetir.
func AllPermissions() []Permission {
	seen := make(map[Permission]struct{})
	var out []Permission
	for _, r := range AllRoles {
		for _, p := range registry[r] {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// RoleTokensWith tokens de ambas taxonomías cuyo rol resuelto tiene p.
// Sirve para buscar destinatarios por rol en la tabla de membresías.
func RoleTokensWith(p Permission) []string {
	var out []string
	for _, r := range AllRoles {
		if HasPermission(r, p) {
			out = append(out, string(r))
		}
	}
	for _, c := range []CondensedRole{CondensedOwner, CondensedAccountant, CondensedCustodyOfficer} {
		if HasPermission(MapCondensed(c), p) && !contains(out, string(c)) {
			out = append(out, string(c))
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
