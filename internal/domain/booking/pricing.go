package booking

import "fmt"

// PricingStrategy defines the interface for calculating booking costs.
type PricingStrategy interface {
	// Calculate returns the cost quote for the given parameters.
	Calculate(params PricingParams) (Quote, error)
}

// PricingParams holds the inputs for cost calculation.
type PricingParams struct {
	EstimatedHours  float64
	NeedsAssistance bool
}

// Quote is the calculated cost breakdown for a booking.
type Quote struct {
	TotalCost      float64
	AssistanceCost float64
}

// Flat rates applied to every booking regardless of the selected vehicle.
// The selected vehicle's own hourly rate is intentionally NOT consulted;
// this matches the marketplace's current costing behavior.
const (
	HourlyRate     = 45.0
	AssistanceRate = 25.0

	// DefaultEstimatedHours is substituted when a booking form omits the
	// duration estimate.
	DefaultEstimatedHours = 2.0
)

// FlatRatePricingStrategy implements the default marketplace costing:
// a fixed hourly rate, plus a fixed assistance rate when requested.
type FlatRatePricingStrategy struct{}

// NewFlatRatePricingStrategy creates a new FlatRatePricingStrategy.
func NewFlatRatePricingStrategy() *FlatRatePricingStrategy {
	return &FlatRatePricingStrategy{}
}

// Calculate computes the booking cost.
//
// totalCost = HourlyRate x hours, plus AssistanceRate x hours when
// assistance is requested. The assistance portion is also reported
// separately as AssistanceCost.
func (s *FlatRatePricingStrategy) Calculate(params PricingParams) (Quote, error) {
	hours := params.EstimatedHours
	if hours == 0 {
		hours = DefaultEstimatedHours
	}
	if hours < 0 {
		return Quote{}, fmt.Errorf("estimated hours cannot be negative")
	}

	quote := Quote{TotalCost: HourlyRate * hours}
	if params.NeedsAssistance {
		quote.AssistanceCost = AssistanceRate * hours
		quote.TotalCost += quote.AssistanceCost
	}
	return quote, nil
}
