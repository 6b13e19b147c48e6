package access

// CapabilitySet proyección booleana de un rol. Se deriva del registro, no se persiste.
// El valor cero (todo false) es el resultado para roles nulos o desconocidos.
type CapabilitySet struct {
	CanViewDashboard      bool `json:"can_view_dashboard"`
	CanViewExpenses       bool `json:"can_view_expenses"`
	CanCreateExpenses     bool `json:"can_create_expenses"`
	CanApproveExpenses    bool `json:"can_approve_expenses"`
	CanRejectExpenses     bool `json:"can_reject_expenses"`
	CanDeleteAnyExpense   bool `json:"can_delete_any_expense"`
	CanViewCustody        bool `json:"can_view_custody"`
	CanManageCustody      bool `json:"can_manage_custody"`
	CanSpendCustody       bool `json:"can_spend_custody"`
	CanApproveSettlements bool `json:"can_approve_settlements"`
	CanViewReports        bool `json:"can_view_reports"`
	CanExportReports      bool `json:"can_export_reports"`
	CanManageTeam         bool `json:"can_manage_team"`
	CanManageCompany      bool `json:"can_manage_company"`
	CanManageSettings     bool `json:"can_manage_settings"`
	CanManageProjects     bool `json:"can_manage_projects"`
	IsSystemAdmin         bool `json:"is_system_admin"`
}

// ResolveCapabilities deriva el CapabilitySet de un token de rol crudo (cualquier
// taxonomía). Falla cerrado: vacío o desconocido ⇒ todo false.
func ResolveCapabilities(role string) CapabilitySet {
	return ResolveRole(RoleFromToken(role))
}

// ResolveRole deriva el CapabilitySet de un rol tipado.
func ResolveRole(r Role) CapabilitySet {
	var caps CapabilitySet
	for _, p := range registry[r] {
		if field := caps.field(p); field != nil {
			*field = true
		}
	}
	return caps
}

// Has resuelve un permiso contra el conjunto. Permisos desconocidos ⇒ false.
func (c CapabilitySet) Has(p Permission) bool {
	if field := c.field(p); field != nil {
		return *field
	}
	return false
}

// Permissions devuelve los permisos activos, en el orden del registro global.
func (c CapabilitySet) Permissions() []Permission {
	var out []Permission
	for _, p := range AllPermissions() {
		if c.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

func (c *CapabilitySet) field(p Permission) *bool {
	switch p {
	case PermDashboardView:
		return &c.CanViewDashboard
	case PermExpensesView:
		return &c.CanViewExpenses
	case PermExpensesCreate:
		return &c.CanCreateExpenses
	case PermExpensesApprove:
		return &c.CanApproveExpenses
	case PermExpensesReject:
		return &c.CanRejectExpenses
	case PermExpensesDeleteAny:
		return &c.CanDeleteAnyExpense
	case PermCustodyView:
		return &c.CanViewCustody
	case PermCustodyManage:
		return &c.CanManageCustody
	case PermCustodySpend:
		return &c.CanSpendCustody
	case PermCustodyApproveSettlement:
		return &c.CanApproveSettlements
	case PermReportsView:
		return &c.CanViewReports
	case PermReportsExport:
		return &c.CanExportReports
	case PermTeamManage:
		return &c.CanManageTeam
	case PermCompanyManage:
		return &c.CanManageCompany
	case PermSettingsManage:
		return &c.CanManageSettings
	case PermProjectsManage:
		return &c.CanManageProjects
	case PermSystemAdmin:
		return &c.IsSystemAdmin
	}
	return nil
}
