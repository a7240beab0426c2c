package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatRatePricing_Calculate(t *testing.T) {
	strategy := NewFlatRatePricingStrategy()

	t.Run("base rate only", func(t *testing.T) {
		quote, err := strategy.Calculate(PricingParams{EstimatedHours: 3})
		require.NoError(t, err)
		assert.Equal(t, 135.0, quote.TotalCost)
		assert.Equal(t, 0.0, quote.AssistanceCost)
	})

	t.Run("with assistance", func(t *testing.T) {
		quote, err := strategy.Calculate(PricingParams{EstimatedHours: 2, NeedsAssistance: true})
		require.NoError(t, err)
		assert.Equal(t, 140.0, quote.TotalCost)
		assert.Equal(t, 50.0, quote.AssistanceCost)
	})

	t.Run("zero hours falls back to default", func(t *testing.T) {
		quote, err := strategy.Calculate(PricingParams{})
		require.NoError(t, err)
		assert.Equal(t, HourlyRate*DefaultEstimatedHours, quote.TotalCost)
	})

	t.Run("negative hours rejected", func(t *testing.T) {
		_, err := strategy.Calculate(PricingParams{EstimatedHours: -1})
		assert.Error(t, err)
	})

	t.Run("fractional hours", func(t *testing.T) {
		quote, err := strategy.Calculate(PricingParams{EstimatedHours: 1.5, NeedsAssistance: true})
		require.NoError(t, err)
		assert.Equal(t, 105.0, quote.TotalCost)
		assert.Equal(t, 37.5, quote.AssistanceCost)
	})
}
