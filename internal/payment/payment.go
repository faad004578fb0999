package payment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"parkmeter/internal/parking"
)

var (
	ErrUnknownMethod = errors.New("unknown payment method")
	ErrDeclined      = errors.New("settlement declined")
)

// cardCeiling is the largest single settlement the card backend accepts.
const cardCeiling = 500.0

// Card, Wallet and Crypto are process-local settlement backends. Card
// declines any single settlement above its transaction ceiling; Wallet
// and Crypto approve unconditionally. Each tags receipts with its
// method name.
type Card struct{}

func (Card) Name() string { return "card" }

func (Card) Settle(fee parking.Fee) (parking.Receipt, error) {
	if fee.Amount > cardCeiling {
		return parking.Receipt{}, fmt.Errorf("card: %w: %.2f is over the %.2f ceiling",
			ErrDeclined, fee.Amount, cardCeiling)
	}
	return receipt("card", fee), nil
}

type Wallet struct{}

func (Wallet) Name() string { return "wallet" }

func (Wallet) Settle(fee parking.Fee) (parking.Receipt, error) {
	return receipt("wallet", fee), nil
}

type Crypto struct{}

func (Crypto) Name() string { return "crypto" }

func (Crypto) Settle(fee parking.Fee) (parking.Receipt, error) {
	return receipt("crypto", fee), nil
}

func receipt(method string, fee parking.Fee) parking.Receipt {
	return parking.Receipt{
		Method:    method,
		Amount:    fee.Amount,
		Reference: uuid.New().String(),
	}
}

// ByName resolves a payment method label, case-insensitively.
func ByName(name string) (parking.PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "card":
		return Card{}, nil
	case "wallet":
		return Wallet{}, nil
	case "crypto":
		return Crypto{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
}
