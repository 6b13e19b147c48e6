package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/cashdesk-api/internal/domain"
	"github.com/jhoicas/cashdesk-api/internal/domain/access"
)

func TestWrap_ClasificaFallosDeConexion(t *testing.T) {
	err := wrap("compute balance", fmt.Errorf("dial: %w", context.DeadlineExceeded))
	assert.ErrorIs(t, err, domain.ErrCollaboratorUnavailable)
	assert.Equal(t, domain.KindCollaboratorUnavailable, domain.KindOf(err))
}

func TestWrap_ErrorDeConsultaNoEsIndisponibilidad(t *testing.T) {
	err := wrap("insert movement", &pgconn.PgError{Code: "42P01", Message: "relation does not exist"})
	assert.False(t, errors.Is(err, domain.ErrCollaboratorUnavailable))
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.Contains(t, err.Error(), "insert movement")
}

func TestWrap_ValorMalFormadoEsValidacion(t *testing.T) {
	err := wrap("get movement", &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, wrap("x", nil))
}

func TestCodigosPostgres(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23514"}))
	assert.True(t, isCheckViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23514"})))
	assert.True(t, isNoRows(fmt.Errorf("get: %w", pgx.ErrNoRows)))
}

func TestCondensedTokens_SoloTaxonomiaReducida(t *testing.T) {
	tokens := condensedTokens(access.RoleTokensWith(access.PermExpensesApprove))
	assert.ElementsMatch(t, []string{"owner", "custody_officer"}, tokens)
	assert.Equal(t, []string{}, condensedTokens([]string{"company_owner", "finance_manager"}))
}
