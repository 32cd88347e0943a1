package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), INR)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
		assert.Equal(t, INR, m.Currency())
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(1), "")
		assert.Error(t, err)
	})

	t.Run("from string", func(t *testing.T) {
		m, err := NewMoneyFromString("1300.00", INR)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("1300")))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", INR)
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyINRFromFloat(100)
	b := NewMoneyINRFromFloat(50.5)

	t.Run("add", func(t *testing.T) {
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromFloat(150.5)))
	})

	t.Run("sub", func(t *testing.T) {
		diff, err := a.Sub(b)
		require.NoError(t, err)
		assert.True(t, diff.Amount().Equal(decimal.NewFromFloat(49.5)))
	})

	t.Run("mul", func(t *testing.T) {
		prod := b.Mul(decimal.NewFromInt(10))
		assert.True(t, prod.Amount().Equal(decimal.NewFromInt(505)))
	})

	t.Run("mixed currency add fails", func(t *testing.T) {
		usd, err := NewMoneyFromFloat(10, USD)
		require.NoError(t, err)
		_, err = a.Add(usd)
		assert.Error(t, err)
	})
}

func TestMoney_Predicates(t *testing.T) {
	assert.True(t, ZeroINR().IsZero())
	assert.True(t, NewMoneyINRFromFloat(-5).IsNegative())
	assert.True(t, NewMoneyINRFromFloat(5).IsPositive())
	assert.True(t, NewMoneyINRFromFloat(5).Equals(NewMoneyINRFromFloat(5)))

	gt, err := NewMoneyINRFromFloat(10).GreaterThan(NewMoneyINRFromFloat(5))
	require.NoError(t, err)
	assert.True(t, gt)
}

func TestMoney_JSON(t *testing.T) {
	m := NewMoneyINRFromFloat(1250.75)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "1300.00 INR", NewMoneyINRFromFloat(1300).String())
}
