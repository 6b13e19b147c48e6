package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción de custodia.
const (
	CustodyTxIssue      = "ISSUE"      // alimentación: suma
	CustodyTxSpend      = "SPEND"      // gasto: resta
	CustodyTxReturn     = "RETURN"     // devolución: suma
	CustodyTxSettlement = "SETTLEMENT" // liquidación: resta
)

// Custody fondo fijo (caja chica) asignado a un empleado.
// El saldo actual no se guarda aquí: se deriva del libro de transacciones.
type Custody struct {
	ID             string
	CompanyID      string
	EmployeeID     string
	Name           string
	OpeningBalance decimal.Decimal
	MaxLimit       *decimal.Decimal // nil = sin límite
	Active         bool
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CustodyTransaction asiento inmutable del libro de una custodia.
type CustodyTransaction struct {
	ID           string
	CustodyID    string
	Kind         string
	Amount       decimal.Decimal // siempre > 0; el tipo da el signo
	Notes        *string
	CreatedBy    string
	CreatedAt    time.Time
	BalanceAfter decimal.Decimal // saldo autoritativo tras el asiento, lo informa la BD
}
