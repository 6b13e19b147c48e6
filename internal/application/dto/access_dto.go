package dto

import "github.com/jhoicas/cashdesk-api/internal/domain/access"

// CapabilityResponse capacidades de la sesión actual (GET /api/me/capabilities).
type CapabilityResponse struct {
	Role         string               `json:"role"`
	Capabilities access.CapabilitySet `json:"capabilities"`
	Permissions  []access.Permission  `json:"permissions"`
}
