// Package session resuelve la membresía y el CapabilitySet de una sesión
// autenticada, con una caché explícita que se invalida al expirar el token o
// cambiar el rol.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/cashdesk-api/internal/domain"
	"github.com/jhoicas/cashdesk-api/internal/domain/access"
	"github.com/jhoicas/cashdesk-api/internal/domain/repository"
)

// Principal identidad resuelta de la petición en curso.
type Principal struct {
	UserID    string
	CompanyID string
	Role      access.Role
	RawRole   string
	BranchID  *string
	Caps      access.CapabilitySet
	ExpiresAt time.Time
}

type entry struct {
	principal Principal
	validTill time.Time
}

// Resolver carga la membresía (una vez por sesión y TTL) y deriva capacidades.
type Resolver struct {
	memberships repository.MembershipRepository
	ttl         time.Duration
	now         func() time.Time

	mu      sync.RWMutex
	entries map[string]entry
}

// NewResolver construye el resolver. ttl <= 0 desactiva la caché.
func NewResolver(memberships repository.MembershipRepository, ttl time.Duration) *Resolver {
	return &Resolver{
		memberships: memberships,
		ttl:         ttl,
		now:         time.Now,
		entries:     make(map[string]entry),
	}
}

func cacheKey(userID, companyID string) string {
	return userID + "|" + companyID
}

// Resolve devuelve el Principal de la sesión. Si el token ya expiró descarta lo
// cacheado y devuelve domain.ErrAuthExpired.
func (r *Resolver) Resolve(ctx context.Context, userID, companyID string, tokenExpiry time.Time) (*Principal, error) {
	key := cacheKey(userID, companyID)
	now := r.now()
	if !tokenExpiry.IsZero() && !now.Before(tokenExpiry) {
		r.Invalidate(userID, companyID)
		return nil, domain.ErrAuthExpired
	}

	if r.ttl > 0 {
		r.mu.RLock()
		e, ok := r.entries[key]
		r.mu.RUnlock()
		if ok && now.Before(e.validTill) {
			p := e.principal
			p.ExpiresAt = tokenExpiry
			return &p, nil
		}
	}

	m, err := r.memberships.FetchMembership(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}
	if m == nil || m.Role == "" {
		return nil, domain.ErrNoPermissionsAssigned
	}
	role := access.RoleFromToken(m.Role)
	p := Principal{
		UserID:    userID,
		CompanyID: companyID,
		Role:      role,
		RawRole:   m.Role,
		BranchID:  m.BranchID,
		Caps:      access.ResolveRole(role),
		ExpiresAt: tokenExpiry,
	}

	if r.ttl > 0 {
		validTill := now.Add(r.ttl)
		if !tokenExpiry.IsZero() && tokenExpiry.Before(validTill) {
			validTill = tokenExpiry
		}
		r.mu.Lock()
		r.entries[key] = entry{principal: p, validTill: validTill}
		r.mu.Unlock()
	}
	return &p, nil
}

// Invalidate descarta lo cacheado para un usuario en una empresa.
func (r *Resolver) Invalidate(userID, companyID string) {
	r.mu.Lock()
	delete(r.entries, cacheKey(userID, companyID))
	r.mu.Unlock()
}

// Cached informa si hay una entrada vigente (usado en tests y diagnósticos).
func (r *Resolver) Cached(userID, companyID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[cacheKey(userID, companyID)]
	return ok && r.now().Before(e.validTill)
}
