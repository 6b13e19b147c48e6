package movement

import (
	"github.com/jhoicas/cashdesk-api/internal/domain/entity"
)

// IsProbableDuplicate mismo creador, monto, categoría y fecha calendario; nunca
// se compara consigo mismo.
func IsProbableDuplicate(m, other *entity.Movement) bool {
	if m == nil || other == nil || m.ID == other.ID {
		return false
	}
	return m.CreatedBy == other.CreatedBy &&
		m.CategoryID == other.CategoryID &&
		m.Amount.Equal(other.Amount) &&
		sameDay(m, other)
}

// FindDuplicates filtra los candidatos que parecen duplicados de m.
// Es una señal para el aprobador, no un bloqueo.
func FindDuplicates(m *entity.Movement, candidates []*entity.Movement) []*entity.Movement {
	var out []*entity.Movement
	for _, c := range candidates {
		if IsProbableDuplicate(m, c) {
			out = append(out, c)
		}
	}
	return out
}

func sameDay(a, b *entity.Movement) bool {
	ay, am, ad := a.Date.UTC().Date()
	by, bm, bd := b.Date.UTC().Date()
	return ay == by && am == bm && ad == bd
}
