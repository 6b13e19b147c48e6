// Package notification bandeja de avisos en memoria. Se construye una instancia
// en main y se inyecta en los casos de uso que publican o leen avisos.
package notification

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Tipos de aviso.
const (
	KindMovementSubmitted = "movement_submitted"
	KindMovementApproved  = "movement_approved"
	KindMovementRejected  = "movement_rejected"
	KindDuplicateFlagged  = "duplicate_suspected"
)

// maxPerUser límite de avisos retenidos por usuario; se descartan los más viejos.
const maxPerUser = 200

// Notification aviso dirigido a un usuario.
type Notification struct {
	ID         string
	UserID     string
	CompanyID  string
	Kind       string
	MovementID string
	Message    string
	Read       bool
	CreatedAt  time.Time
}

// Store bandeja por usuario, segura para uso concurrente.
type Store struct {
	mu    sync.Mutex
	inbox map[string][]*Notification
	now   func() time.Time
}

// NewStore construye una bandeja vacía.
func NewStore() *Store {
	return &Store{inbox: make(map[string][]*Notification), now: time.Now}
}

// Push agrega un aviso de la empresa para cada destinatario. Los IDs vacíos se ignoran.
func (s *Store) Push(companyID, kind, movementID, message string, userIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	seen := make(map[string]struct{}, len(userIDs))
	for _, uid := range userIDs {
		if uid == "" {
			continue
		}
		if _, dup := seen[uid]; dup {
			continue
		}
		seen[uid] = struct{}{}
		list := append(s.inbox[uid], &Notification{
			ID:         uuid.New().String(),
			UserID:     uid,
			CompanyID:  companyID,
			Kind:       kind,
			MovementID: movementID,
			Message:    message,
			CreatedAt:  now,
		})
		if len(list) > maxPerUser {
			list = list[len(list)-maxPerUser:]
		}
		s.inbox[uid] = list
	}
}

// List devuelve copias de los avisos del usuario, los más recientes primero.
// Con companyID solo los de esa empresa; vacío = todas sus empresas.
func (s *Store) List(userID, companyID string, unreadOnly bool) []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Notification
	for _, n := range s.inbox[userID] {
		if companyID != "" && n.CompanyID != companyID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, *n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// MarkRead marca un aviso como leído. Devuelve false si no pertenece al usuario
// o, con companyID, a esa empresa.
func (s *Store) MarkRead(userID, companyID, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.inbox[userID] {
		if n.ID == id && (companyID == "" || n.CompanyID == companyID) {
			n.Read = true
			return true
		}
	}
	return false
}
