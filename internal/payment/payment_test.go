package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkmeter/internal/parking"
)

func TestByName(t *testing.T) {
	cases := []struct {
		label string
		name  string
	}{
		{"card", "card"},
		{"wallet", "wallet"},
		{"crypto", "crypto"},
		{"CARD", "card"},
		{" Wallet ", "wallet"},
	}

	for _, tc := range cases {
		method, err := ByName(tc.label)
		require.NoError(t, err, "label %q", tc.label)
		assert.Equal(t, tc.name, method.Name(), "label %q", tc.label)
	}
}

func TestByNameUnknown(t *testing.T) {
	_, err := ByName("cheque")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestSettleReceipts(t *testing.T) {
	fee := parking.Fee{Category: parking.Car, Units: 2, Rate: 2.0, Amount: 4.0}

	for _, method := range []parking.PaymentMethod{Card{}, Wallet{}, Crypto{}} {
		receipt, err := method.Settle(fee)
		require.NoError(t, err)

		assert.Equal(t, method.Name(), receipt.Method)
		assert.Equal(t, fee.Amount, receipt.Amount)
		assert.NotEmpty(t, receipt.Reference)
	}
}

func TestCardDeclinesOverCeiling(t *testing.T) {
	fee := parking.Fee{Category: parking.Truck, Units: 200, Rate: 3.0, Amount: 600.0}

	_, err := Card{}.Settle(fee)
	assert.ErrorIs(t, err, ErrDeclined)

	for _, method := range []parking.PaymentMethod{Wallet{}, Crypto{}} {
		receipt, err := method.Settle(fee)
		require.NoError(t, err, "method %q", method.Name())
		assert.Equal(t, fee.Amount, receipt.Amount)
	}
}

func TestCardSettlesAtCeiling(t *testing.T) {
	fee := parking.Fee{Category: parking.Car, Units: 250, Rate: 2.0, Amount: 500.0}

	receipt, err := Card{}.Settle(fee)
	require.NoError(t, err)
	assert.Equal(t, fee.Amount, receipt.Amount)
}

func TestSettleReferencesAreUnique(t *testing.T) {
	fee := parking.Fee{Category: parking.Bike, Units: 1, Rate: 1.0, Amount: 1.0}

	first, err := Card{}.Settle(fee)
	require.NoError(t, err)
	second, err := Card{}.Settle(fee)
	require.NoError(t, err)

	assert.NotEqual(t, first.Reference, second.Reference)
}
