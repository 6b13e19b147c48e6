package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cashdesk-api/internal/application/dto"
	"github.com/jhoicas/cashdesk-api/internal/domain"
)

func errorApp(err error) *fiber.App {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return writeError(c, err) })
	return app
}

func TestWriteError_CodigosPorCategoria(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   domain.Kind
	}{
		{domain.ErrAuthExpired, http.StatusUnauthorized, domain.KindAuthExpired},
		{domain.ErrPermissionDenied, http.StatusForbidden, domain.KindPermissionDenied},
		{domain.ErrNoPermissionsAssigned, http.StatusForbidden, domain.KindNoPermissions},
		{fmt.Errorf("spend: %w", domain.ErrInsufficientBalance), http.StatusUnprocessableEntity, domain.KindInsufficientBalance},
		{domain.ErrInvalidTransition, http.StatusConflict, domain.KindInvalidTransition},
		{domain.ErrInvalidInput, http.StatusBadRequest, domain.KindValidation},
		{domain.ErrNotFound, http.StatusNotFound, domain.KindNotFound},
		{domain.ErrEmailAlreadyExists, http.StatusConflict, domain.KindConflict},
		{fmt.Errorf("pool: %w", domain.ErrCollaboratorUnavailable), http.StatusServiceUnavailable, domain.KindCollaboratorUnavailable},
		{fmt.Errorf("algo raro"), http.StatusInternalServerError, domain.KindInternal},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			resp, err := errorApp(tc.err).Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)
			var body dto.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, string(tc.code), body.Code)
			assert.Equal(t, domain.MessageFor(tc.code), body.Message)
		})
	}
}

func TestParseBody_ErroresDeValidacionPorCampo(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		var in dto.CustodyTransactionRequest
		if err := parseBody(c, &in); err != nil {
			return writeError(c, err)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"kind":"WITHDRAW","amount":"10"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, string(domain.KindValidation), body.Code)
	assert.Equal(t, "oneof", body.Fields["Kind"])
}

func TestParseBody_JSONInvalido(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		var in dto.CreateMovementRequest
		if err := parseBody(c, &in); err != nil {
			return writeError(c, err)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "INVALID_BODY", body.Code)
}

func TestPathID_IdMalFormadoEs404SinConsultar(t *testing.T) {
	app := fiber.New()
	movements := NewMovementHandler(nil)
	custodies := NewCustodyHandler(nil)
	app.Get("/movements/:id", movements.GetByID)
	app.Post("/movements/:id/approve", movements.Approve)
	app.Post("/custodies/:id/transactions", custodies.ApplyTransaction)

	cases := []struct{ method, path string }{
		{http.MethodGet, "/movements/abc"},
		{http.MethodPost, "/movements/1234/approve"},
		{http.MethodPost, "/custodies/caja-chica/transactions"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode, tc.path)
		var body dto.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		assert.Equal(t, string(domain.KindNotFound), body.Code)
	}
}

func TestBranchID_DebeSerUUID(t *testing.T) {
	app := fiber.New()
	app.Get("/dashboard/summary", NewDashboardHandler(nil).GetSummary)
	app.Post("/movements", NewMovementHandler(nil).Create)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/dashboard/summary?branch_id=centro", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "uuid", body.Fields["BranchID"])

	req := httptest.NewRequest(http.MethodPost, "/movements", strings.NewReader(
		`{"direction":"OUT","amount":"10","account_id":"caja","category_id":"viaticos","branch_id":"centro","date":"2026-01-10T00:00:00Z"}`))
	req.Header.Set("Content-Type", "application/json")
	resp2, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
	var body2 dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&body2))
	assert.Equal(t, "uuid", body2.Fields["BranchID"])
}
