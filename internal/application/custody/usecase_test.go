package custody_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cashdesk-api/internal/application/custody"
	"github.com/jhoicas/cashdesk-api/internal/application/dto"
	"github.com/jhoicas/cashdesk-api/internal/application/session"
	"github.com/jhoicas/cashdesk-api/internal/domain"
	"github.com/jhoicas/cashdesk-api/internal/domain/access"
	rules "github.com/jhoicas/cashdesk-api/internal/domain/custody"
	"github.com/jhoicas/cashdesk-api/internal/domain/entity"
	"github.com/jhoicas/cashdesk-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

// memStore custodias y libro en memoria. CommitTransaction toma el mutex como la
// BD toma la fila con FOR UPDATE y revalida el saldo antes de insertar.
type memStore struct {
	mu        sync.Mutex
	custodies map[string]entity.Custody
	txs       map[string][]*entity.CustodyTransaction
	failRead  error
	reads     int
}

func newMemStore() *memStore {
	return &memStore{custodies: map[string]entity.Custody{}, txs: map[string][]*entity.CustodyTransaction{}}
}

func (s *memStore) Create(_ context.Context, c *entity.Custody) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.custodies[c.ID] = *c
	return nil
}

func (s *memStore) GetByID(_ context.Context, id string) (*entity.Custody, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.custodies[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *memStore) ListByCompany(_ context.Context, companyID, employeeID string) ([]*entity.Custody, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Custody
	for _, c := range s.custodies {
		c := c
		if c.CompanyID == companyID && (employeeID == "" || c.EmployeeID == employeeID) {
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *memStore) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.custodies[id]
	c.Active = active
	s.custodies[id] = c
	return nil
}

func (s *memStore) balance(id string) decimal.Decimal {
	return rules.CurrentBalance(s.custodies[id].OpeningBalance, s.txs[id])
}

func (s *memStore) ComputeBalance(_ context.Context, id string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.failRead != nil {
		return decimal.Zero, s.failRead
	}
	return s.balance(id), nil
}

func (s *memStore) ListTransactions(_ context.Context, id string) ([]*entity.CustodyTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*entity.CustodyTransaction(nil), s.txs[id]...), nil
}

func (s *memStore) CommitTransaction(_ context.Context, tx *entity.CustodyTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.custodies[tx.CustodyID]
	if !ok {
		return domain.ErrNotFound
	}
	if !c.Active {
		return domain.ErrCustodyInactive
	}
	balance := s.balance(tx.CustodyID)
	if rules.IsDebit(tx.Kind) && tx.Amount.GreaterThan(balance) {
		return domain.ErrInsufficientBalance
	}
	tx.BalanceAfter = balance.Add(rules.Signed(tx.Kind, tx.Amount))
	s.txs[tx.CustodyID] = append(s.txs[tx.CustodyID], tx)
	return nil
}

type memMemberships struct{ users map[string]bool }

func (m memMemberships) FetchMembership(_ context.Context, userID, companyID string) (*entity.Membership, error) {
	if !m.users[userID] {
		return nil, domain.ErrNoPermissionsAssigned
	}
	return &entity.Membership{UserID: userID, CompanyID: companyID, Role: "employee"}, nil
}
func (memMemberships) Upsert(context.Context, *entity.Membership) error { return nil }
func (memMemberships) ListUserIDsWithRoles(context.Context, string, []string) ([]string, error) {
	return nil, nil
}

type failingLocker struct{ calls int }

func (l *failingLocker) Obtain(context.Context, string, time.Duration) (func(), error) {
	l.calls++
	return nil, custody.ErrLockNotObtained
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func principal(userID string, role access.Role) *session.Principal {
	return &session.Principal{UserID: userID, CompanyID: "c1", Role: role, Caps: access.ResolveRole(role)}
}

func newUseCase(store *memStore, locker custody.Locker) *custody.UseCase {
	return custody.NewUseCase(store, store, memMemberships{users: map[string]bool{"emp": true}}, locker, time.Second, logger.Nop())
}

func seed(t *testing.T, uc *custody.UseCase, opening int64) string {
	t.Helper()
	resp, err := uc.Create(context.Background(), principal("mgr", access.RoleFinanceManager), dto.CreateCustodyRequest{
		EmployeeID:     "emp",
		Name:           "Caja chica obra norte",
		OpeningBalance: decimal.NewFromInt(opening),
	})
	require.NoError(t, err)
	return resp.ID
}

func spend(amount int64) dto.CustodyTransactionRequest {
	return dto.CustodyTransactionRequest{Kind: entity.CustodyTxSpend, Amount: decimal.NewFromInt(amount)}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyTransaction_EscenarioDeSaldo(t *testing.T) {
	store := newMemStore()
	uc := newUseCase(store, nil)
	id := seed(t, uc, 1000)
	ctx := context.Background()
	mgr := principal("mgr", access.RoleFinanceManager)
	emp := principal("emp", access.RoleEmployee)

	_, err := uc.ApplyTransaction(ctx, mgr, id, dto.CustodyTransactionRequest{Kind: entity.CustodyTxIssue, Amount: decimal.NewFromInt(500)})
	require.NoError(t, err)
	_, err = uc.ApplyTransaction(ctx, emp, id, spend(300))
	require.NoError(t, err)
	last, err := uc.ApplyTransaction(ctx, emp, id, dto.CustodyTransactionRequest{Kind: entity.CustodyTxReturn, Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	assert.True(t, last.BalanceAfter.Equal(decimal.NewFromInt(1300)))

	got, err := uc.Get(ctx, emp, id)
	require.NoError(t, err)
	assert.True(t, got.CurrentBalance.Equal(decimal.NewFromInt(1300)))

	stmt, err := uc.Statement(ctx, mgr, id)
	require.NoError(t, err)
	assert.Len(t, stmt.Transactions, 3)
	assert.True(t, stmt.Custody.CurrentBalance.Equal(decimal.NewFromInt(1300)))
}

func TestApplyTransaction_SaldoInsuficiente(t *testing.T) {
	store := newMemStore()
	uc := newUseCase(store, nil)
	id := seed(t, uc, 1000)

	_, err := uc.ApplyTransaction(context.Background(), principal("emp", access.RoleEmployee), id, spend(1001))
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Equal(t, domain.KindInsufficientBalance, domain.KindOf(err))
	assert.Empty(t, store.txs[id], "nada se registra")
}

// Saldo 1000, dos gastos concurrentes de 600: exactamente uno se confirma.
func TestApplyTransaction_GastosConcurrentes(t *testing.T) {
	store := newMemStore()
	uc := newUseCase(store, nil)
	id := seed(t, uc, 1000)
	emp := principal("emp", access.RoleEmployee)

	const n = 2
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.ApplyTransaction(context.Background(), emp, id, spend(600))
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientBalance):
			insufficient++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.True(t, store.balance(id).Equal(decimal.NewFromInt(400)))
	assert.False(t, store.balance(id).IsNegative())
}

func TestApplyTransaction_LockNoDisponibleNoBloquea(t *testing.T) {
	store := newMemStore()
	locker := &failingLocker{}
	uc := newUseCase(store, locker)
	id := seed(t, uc, 100)

	_, err := uc.ApplyTransaction(context.Background(), principal("emp", access.RoleEmployee), id, spend(40))
	require.NoError(t, err)
	assert.Equal(t, 1, locker.calls)
	assert.True(t, store.balance(id).Equal(decimal.NewFromInt(60)))
}

func TestApplyTransaction_Permisos(t *testing.T) {
	store := newMemStore()
	uc := newUseCase(store, nil)
	id := seed(t, uc, 100)
	ctx := context.Background()

	_, err := uc.ApplyTransaction(ctx, principal("emp", access.RoleEmployee), id,
		dto.CustodyTransactionRequest{Kind: entity.CustodyTxIssue, Amount: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied, "el titular no se alimenta solo")

	_, err = uc.ApplyTransaction(ctx, principal("other", access.RoleEmployee), id, spend(10))
	assert.ErrorIs(t, err, domain.ErrNotFound, "custodia ajena no es visible")

	_, err = uc.ApplyTransaction(ctx, principal("emp", access.RoleEmployee), id,
		dto.CustodyTransactionRequest{Kind: "TRANSFER", Amount: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.ApplyTransaction(ctx, principal("emp", access.RoleEmployee), id, spend(0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApplyTransaction_ColaboradorCaido(t *testing.T) {
	store := newMemStore()
	uc := newUseCase(store, nil)
	id := seed(t, uc, 100)
	store.failRead = domain.ErrCollaboratorUnavailable

	_, err := uc.ApplyTransaction(context.Background(), principal("emp", access.RoleEmployee), id, spend(10))
	assert.Equal(t, domain.KindCollaboratorUnavailable, domain.KindOf(err))
	assert.Empty(t, store.txs[id])
}

func TestDeactivate(t *testing.T) {
	store := newMemStore()
	uc := newUseCase(store, nil)
	id := seed(t, uc, 100)
	ctx := context.Background()

	assert.ErrorIs(t, uc.Deactivate(ctx, principal("emp", access.RoleEmployee), id), domain.ErrPermissionDenied)
	require.NoError(t, uc.Deactivate(ctx, principal("mgr", access.RoleFinanceManager), id))

	_, err := uc.ApplyTransaction(ctx, principal("emp", access.RoleEmployee), id, spend(10))
	assert.ErrorIs(t, err, domain.ErrCustodyInactive)
	assert.Equal(t, domain.KindInvalidTransition, domain.KindOf(err))
}

func TestApplyTransaction_CustodiaInactivaNoConsultaSaldo(t *testing.T) {
	store := newMemStore()
	uc := newUseCase(store, nil)
	id := seed(t, uc, 100)
	ctx := context.Background()
	require.NoError(t, uc.Deactivate(ctx, principal("mgr", access.RoleFinanceManager), id))

	store.mu.Lock()
	before := store.reads
	store.mu.Unlock()

	_, err := uc.ApplyTransaction(ctx, principal("emp", access.RoleEmployee), id, spend(10))
	assert.ErrorIs(t, err, domain.ErrCustodyInactive)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, before, store.reads, "el rechazo local no lee el saldo")
	assert.Empty(t, store.txs[id])
}

func TestCreate_Validaciones(t *testing.T) {
	uc := newUseCase(newMemStore(), nil)
	ctx := context.Background()
	mgr := principal("mgr", access.RoleFinanceManager)

	_, err := uc.Create(ctx, principal("emp", access.RoleEmployee), dto.CreateCustodyRequest{EmployeeID: "emp", Name: "x"})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = uc.Create(ctx, mgr, dto.CreateCustodyRequest{EmployeeID: "ghost", Name: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el titular debe ser miembro de la empresa")

	limit := decimal.NewFromInt(50)
	_, err = uc.Create(ctx, mgr, dto.CreateCustodyRequest{EmployeeID: "emp", Name: "x", OpeningBalance: decimal.NewFromInt(80), MaxLimit: &limit})
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)
}

func TestList_TitularSoloVeLaSuya(t *testing.T) {
	store := newMemStore()
	uc := newUseCase(store, nil)
	seed(t, uc, 100)
	require.NoError(t, store.Create(context.Background(), &entity.Custody{ID: "otra", CompanyID: "c1", EmployeeID: "x", Active: true}))

	mine, err := uc.List(context.Background(), principal("emp", access.RoleEmployee))
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := uc.List(context.Background(), principal("mgr", access.RoleFinanceManager))
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
