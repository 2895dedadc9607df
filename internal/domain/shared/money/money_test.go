package money

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMoney(t *testing.T, amount int64, currency string) Money {
	t.Helper()
	m, err := New(amount, currency)
	require.NoError(t, err)
	return m
}

func TestNewNormalisesCurrency(t *testing.T) {
	m, err := New(100, " idr")
	require.NoError(t, err)
	assert.Equal(t, "IDR", m.Currency)

	_, err = New(100, "RUPIAH")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestAddRejectsMismatch(t *testing.T) {
	_, err := mustMoney(t, 1, "IDR").Add(mustMoney(t, 1, "USD"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	sum, err := mustMoney(t, 1, "IDR").Add(mustMoney(t, 2, "IDR"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), sum.Amount)
}

func TestMulRateRoundsHalfUp(t *testing.T) {
	tests := []struct {
		amount int64
		rate   string
		want   int64
	}{
		{300000, "0.05", 15000},
		{10, "0.05", 1},  // 0.5
		{9, "0.05", 0},   // 0.45
		{30, "0.05", 2},  // 1.5
		{50, "0.01", 1},  // 0.5
		{149, "0.01", 1}, // 1.49
	}
	for _, tt := range tests {
		got, err := mustMoney(t, tt.amount, "IDR").MulRate(decimal.RequireFromString(tt.rate))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.Amount, "%d * %s", tt.amount, tt.rate)
	}
}

func TestArithmeticReportsOverflow(t *testing.T) {
	big := mustMoney(t, math.MaxInt64/2+1, "IDR")

	_, err := big.Multiply(2)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = big.Add(big)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = big.MulRate(decimal.NewFromInt(3))
	assert.ErrorIs(t, err, ErrOverflow)

	ok, err := mustMoney(t, 1000, "IDR").Multiply(3)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), ok.Amount)
}

func TestMin(t *testing.T) {
	low, err := mustMoney(t, 15000, "IDR").Min(mustMoney(t, 5000, "IDR"))
	require.NoError(t, err)
	assert.Equal(t, int64(5000), low.Amount)
}
