package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWeight(t *testing.T) {
	t.Run("accepts non-negative weight", func(t *testing.T) {
		w, err := NewWeightFromFloat(25.5)
		require.NoError(t, err)
		assert.True(t, w.Kilograms().Equal(decimal.NewFromFloat(25.5)))
	})

	t.Run("rejects negative weight", func(t *testing.T) {
		_, err := NewWeightFromFloat(-1)
		assert.Error(t, err)
	})

	t.Run("zero weight is allowed", func(t *testing.T) {
		w, err := NewWeight(decimal.Zero)
		require.NoError(t, err)
		assert.True(t, w.IsZero())
	})
}

func TestWeightRoundingPolicy_ChargedWeight(t *testing.T) {
	tests := []struct {
		name      string
		increment string
		actual    string
		charged   string
	}{
		{"rounds up to half kilo", "0.5", "25.1", "25.5"},
		{"exact multiple unchanged", "0.5", "26.0", "26.0"},
		{"rounds up to whole kilo", "1", "25.5", "26"},
		{"small increment", "0.1", "25.51", "25.6"},
		{"zero increment disables rounding", "0", "25.37", "25.37"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy, err := NewWeightRoundingPolicy(decimal.RequireFromString(tt.increment))
			require.NoError(t, err)

			actual, err := NewWeight(decimal.RequireFromString(tt.actual))
			require.NoError(t, err)

			charged := policy.ChargedWeight(actual)
			assert.True(t, charged.Kilograms().Equal(decimal.RequireFromString(tt.charged)),
				"got %s, want %s", charged.Kilograms(), tt.charged)
		})
	}
}

func TestWeightRoundingPolicy_NeverBelowActual(t *testing.T) {
	policy, err := NewWeightRoundingPolicy(decimal.RequireFromString("0.5"))
	require.NoError(t, err)

	for _, raw := range []string{"0.01", "10", "25.49", "99.99"} {
		actual, werr := NewWeight(decimal.RequireFromString(raw))
		require.NoError(t, werr)

		charged := policy.ChargedWeight(actual)
		assert.False(t, charged.LessThan(actual), "charged %s below actual %s", charged, actual)
	}
}

func TestNewWeightRoundingPolicy_RejectsNegativeIncrement(t *testing.T) {
	_, err := NewWeightRoundingPolicy(decimal.NewFromFloat(-0.5))
	assert.Error(t, err)
}
