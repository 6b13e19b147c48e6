package dto

import "time"

// NotificationResponse aviso en la bandeja del usuario.
type NotificationResponse struct {
	ID         string    `json:"id"`
	CompanyID  string    `json:"company_id"`
	Kind       string    `json:"kind"`
	MovementID string    `json:"movement_id,omitempty"`
	Message    string    `json:"message"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}
