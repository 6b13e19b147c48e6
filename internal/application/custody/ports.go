package custody

import (
	"context"
	"errors"
	"time"
)

// ErrLockNotObtained el lock está tomado por otra petición.
var ErrLockNotObtained = errors.New("custody: lock no obtenido")

// Locker lock distribuido por clave. Es una ayuda para reducir contención: la
// garantía de saldo no negativo la da la transacción en la BD.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// NopLocker no bloquea nada; se usa cuando no hay Redis configurado.
type NopLocker struct{}

// Obtain implementa Locker.
func (NopLocker) Obtain(context.Context, string, time.Duration) (func(), error) {
	return func() {}, nil
}
