package custody_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/cashdesk-api/internal/domain"
	"github.com/jhoicas/cashdesk-api/internal/domain/access"
	"github.com/jhoicas/cashdesk-api/internal/domain/custody"
	"github.com/jhoicas/cashdesk-api/internal/domain/entity"
)

func tx(kind string, amount int64) *entity.CustodyTransaction {
	return &entity.CustodyTransaction{Kind: kind, Amount: decimal.NewFromInt(amount)}
}

func activeCustody() *entity.Custody {
	return &entity.Custody{
		ID:             "cus-1",
		EmployeeID:     "emp-1",
		OpeningBalance: decimal.NewFromInt(1000),
		Active:         true,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Saldo
// ──────────────────────────────────────────────────────────────────────────────

// Apertura 1000, [ISSUE 500, SPEND 300, RETURN 100] ⇒ 1300.
func TestCurrentBalance_Escenario(t *testing.T) {
	txs := []*entity.CustodyTransaction{
		tx(entity.CustodyTxIssue, 500),
		tx(entity.CustodyTxSpend, 300),
		tx(entity.CustodyTxReturn, 100),
	}
	got := custody.CurrentBalance(decimal.NewFromInt(1000), txs)
	assert.True(t, got.Equal(decimal.NewFromInt(1300)), "saldo esperado 1300, obtenido %s", got)
}

func TestCurrentBalance_IndependienteDelOrden(t *testing.T) {
	txs := []*entity.CustodyTransaction{
		tx(entity.CustodyTxIssue, 500),
		tx(entity.CustodyTxSpend, 120),
		tx(entity.CustodyTxSettlement, 80),
		tx(entity.CustodyTxIssue, 40),
		tx(entity.CustodyTxReturn, 15),
		tx(entity.CustodyTxSpend, 60),
	}
	opening := decimal.NewFromInt(200)
	want := custody.CurrentBalance(opening, txs)

	reversed := make([]*entity.CustodyTransaction, len(txs))
	for i := range txs {
		reversed[len(txs)-1-i] = txs[i]
	}
	assert.True(t, want.Equal(custody.CurrentBalance(opening, reversed)))
	assert.True(t, want.Equal(decimal.NewFromInt(200+500-120-80+40+15-60)))
}

func TestCurrentBalance_SinAsientos(t *testing.T) {
	opening := decimal.RequireFromString("75.50")
	assert.True(t, custody.CurrentBalance(opening, nil).Equal(opening))
}

// ──────────────────────────────────────────────────────────────────────────────
// Precondiciones
// ──────────────────────────────────────────────────────────────────────────────

func TestCheck_SaldoInsuficiente(t *testing.T) {
	c := activeCustody()
	balance := decimal.NewFromInt(1000)

	err := custody.Check(c, entity.CustodyTxSpend, decimal.NewFromInt(1001), balance)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Equal(t, domain.KindInsufficientBalance, domain.KindOf(err))

	assert.ErrorIs(t, custody.Check(c, entity.CustodyTxSettlement, decimal.NewFromInt(1500), balance), domain.ErrInsufficientBalance)
	assert.NoError(t, custody.Check(c, entity.CustodyTxSpend, decimal.NewFromInt(1000), balance), "gastar el saldo exacto es válido")
	assert.True(t, c.OpeningBalance.Equal(decimal.NewFromInt(1000)), "el chequeo no muta la custodia")
}

func TestCheck_Precondiciones(t *testing.T) {
	balance := decimal.NewFromInt(100)

	inactive := activeCustody()
	inactive.Active = false
	assert.ErrorIs(t, custody.Check(inactive, entity.CustodyTxIssue, decimal.NewFromInt(1), balance), domain.ErrCustodyInactive)

	c := activeCustody()
	assert.ErrorIs(t, custody.Check(c, entity.CustodyTxIssue, decimal.Zero, balance), domain.ErrInvalidInput)
	assert.ErrorIs(t, custody.Check(c, "TRANSFER", decimal.NewFromInt(1), balance), domain.ErrInvalidInput)
	assert.ErrorIs(t, custody.Check(nil, entity.CustodyTxIssue, decimal.NewFromInt(1), balance), domain.ErrNotFound)

	limit := decimal.NewFromInt(150)
	c.MaxLimit = &limit
	assert.ErrorIs(t, custody.Check(c, entity.CustodyTxIssue, decimal.NewFromInt(51), balance), domain.ErrLimitExceeded)
	assert.NoError(t, custody.Check(c, entity.CustodyTxIssue, decimal.NewFromInt(50), balance))
	assert.NoError(t, custody.Check(c, entity.CustodyTxReturn, decimal.NewFromInt(500), balance), "RETURN no está sujeto al límite")
}

// ──────────────────────────────────────────────────────────────────────────────
// Quién puede registrar
// ──────────────────────────────────────────────────────────────────────────────

func TestCanRecord(t *testing.T) {
	c := activeCustody()
	employee := access.ResolveRole(access.RoleEmployee)
	manager := access.ResolveRole(access.RoleFinanceManager)
	accountant := access.ResolveRole(access.RoleAccountant)

	assert.True(t, custody.CanRecord(employee, "emp-1", c, entity.CustodyTxSpend), "el titular gasta su custodia")
	assert.True(t, custody.CanRecord(employee, "emp-1", c, entity.CustodyTxReturn))
	assert.False(t, custody.CanRecord(employee, "emp-2", c, entity.CustodyTxSpend), "otro empleado no")
	assert.False(t, custody.CanRecord(employee, "emp-1", c, entity.CustodyTxIssue), "el titular no se alimenta solo")
	assert.False(t, custody.CanRecord(employee, "emp-1", c, entity.CustodyTxSettlement))

	assert.True(t, custody.CanRecord(manager, "mgr", c, entity.CustodyTxIssue))
	assert.True(t, custody.CanRecord(manager, "mgr", c, entity.CustodyTxSpend), "gestor en nombre del titular")
	assert.True(t, custody.CanRecord(manager, "mgr", c, entity.CustodyTxSettlement))

	assert.False(t, custody.CanRecord(accountant, "acc", c, entity.CustodyTxIssue))
	assert.False(t, custody.CanRecord(access.CapabilitySet{}, "emp-1", c, entity.CustodyTxSpend))
	assert.False(t, custody.CanRecord(manager, "mgr", c, "BOGUS"))
}

func TestCanView(t *testing.T) {
	c := activeCustody()
	assert.True(t, custody.CanView(access.ResolveRole(access.RoleEmployee), "emp-1", c))
	assert.False(t, custody.CanView(access.ResolveRole(access.RoleEmployee), "emp-2", c))
	assert.True(t, custody.CanView(access.ResolveRole(access.RoleCompanyOwner), "owner", c))
}

func TestSigned(t *testing.T) {
	amount := decimal.NewFromInt(10)
	assert.True(t, custody.Signed(entity.CustodyTxSpend, amount).Equal(decimal.NewFromInt(-10)))
	assert.True(t, custody.Signed(entity.CustodyTxSettlement, amount).Equal(decimal.NewFromInt(-10)))
	assert.True(t, custody.Signed(entity.CustodyTxIssue, amount).Equal(amount))
	assert.True(t, custody.Signed(entity.CustodyTxReturn, amount).Equal(amount))
}
