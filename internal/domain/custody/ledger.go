// Package custody define las reglas del libro de custodias (caja chica): cálculo de
// saldo, precondiciones de cada asiento y quién puede registrarlo.
package custody

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cashdesk-api/internal/domain"
	"github.com/jhoicas/cashdesk-api/internal/domain/access"
	"github.com/jhoicas/cashdesk-api/internal/domain/entity"
)

// ValidKind informa si kind es un tipo de asiento conocido.
func ValidKind(kind string) bool {
	switch kind {
	case entity.CustodyTxIssue, entity.CustodyTxSpend, entity.CustodyTxReturn, entity.CustodyTxSettlement:
		return true
	}
	return false
}

// IsDebit SPEND y SETTLEMENT restan saldo.
func IsDebit(kind string) bool {
	return kind == entity.CustodyTxSpend || kind == entity.CustodyTxSettlement
}

// Signed devuelve el monto con el signo que aporta al saldo.
func Signed(kind string, amount decimal.Decimal) decimal.Decimal {
	if IsDebit(kind) {
		return amount.Neg()
	}
	return amount
}

// CurrentBalance saldo de apertura más la suma con signo de todos los asientos.
// El resultado no depende del orden: la suma es conmutativa.
func CurrentBalance(opening decimal.Decimal, txs []*entity.CustodyTransaction) decimal.Decimal {
	balance := opening
	for _, tx := range txs {
		if tx == nil {
			continue
		}
		balance = balance.Add(Signed(tx.Kind, tx.Amount))
	}
	return balance
}

// Check precondiciones locales de un asiento contra un saldo leído en esta misma
// operación. Es un chequeo defensivo: la BD vuelve a validar al confirmar.
func Check(c *entity.Custody, kind string, amount, balance decimal.Decimal) error {
	if c == nil {
		return domain.ErrNotFound
	}
	if !c.Active {
		return domain.ErrCustodyInactive
	}
	if !ValidKind(kind) || !amount.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if IsDebit(kind) && amount.GreaterThan(balance) {
		return domain.ErrInsufficientBalance
	}
	if kind == entity.CustodyTxIssue && c.MaxLimit != nil && balance.Add(amount).GreaterThan(*c.MaxLimit) {
		return domain.ErrLimitExceeded
	}
	return nil
}

// CanRecord decide si actorID puede registrar un asiento de tipo kind en c.
//   - ISSUE: gestores de custodia
//   - SETTLEMENT: gestores que además aprueban liquidaciones
//   - SPEND, RETURN: el empleado titular con custody:spend, o un gestor en su nombre
func CanRecord(caps access.CapabilitySet, actorID string, c *entity.Custody, kind string) bool {
	switch kind {
	case entity.CustodyTxIssue:
		return access.Authorize(caps, access.ModeAll, access.PermCustodyManage)
	case entity.CustodyTxSettlement:
		return access.Authorize(caps, access.ModeAll, access.PermCustodyManage, access.PermCustodyApproveSettlement)
	case entity.CustodyTxSpend, entity.CustodyTxReturn:
		if caps.Has(access.PermCustodyManage) {
			return true
		}
		return c != nil && c.EmployeeID == actorID && caps.Has(access.PermCustodySpend)
	}
	return false
}

// CanView el titular siempre ve su custodia; el resto necesita custody:manage.
func CanView(caps access.CapabilitySet, actorID string, c *entity.Custody) bool {
	if c == nil || !caps.Has(access.PermCustodyView) {
		return false
	}
	return c.EmployeeID == actorID || caps.Has(access.PermCustodyManage)
}
