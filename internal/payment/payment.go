// Package payment talks to the gateway that authorizes booking charges.
package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrDeclined   = errors.New("payment declined")
	ErrInvalidAmt = errors.New("invalid payment amount")
)

type Charge struct {
	BookingID uuid.UUID
	Reference string
	Amount    decimal.Decimal
	Currency  string
}

// Authorization is the gateway's answer for a charge.
type Authorization struct {
	Authorized bool
	Reference  string
}

// Adapter is the external payment collaborator. Implementations must honour
// ctx cancellation; callers never hold ledger locks while calling them.
type Adapter interface {
	Authorize(ctx context.Context, charge Charge) (Authorization, error)
	Refund(ctx context.Context, reference string) error
}
