// Package events defines the Kafka topics, event types and payloads the
// service publishes and consumes. It is the wire contract shared with other
// services, so changes here are breaking changes.
package events

// Kafka topics.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Event types published on booking.events.
const (
	BookingRequested = "booking.requested"
	BookingConfirmed = "booking.confirmed"
	BookingDeclined  = "booking.declined"
	BookingStarted   = "booking.started"
	BookingCompleted = "booking.completed"
	BookingCancelled = "booking.cancelled"
)

// Event types consumed from payment.events.
const (
	PaymentSettled = "payment.settled"
)

// EventSource identifies this service in published cloud events.
const EventSource = "service-marketplace"

// BookingEvent is the payload published on every booking lifecycle change.
type BookingEvent struct {
	BookingID  string  `json:"bookingId"`
	CustomerID string  `json:"customerId"`
	OwnerID    string  `json:"ownerId"`
	VehicleID  string  `json:"vehicleId"`
	Status     string  `json:"status"`
	TotalCost  float64 `json:"totalCost"`
}

// PaymentSettledEvent is the payload of payment.settled events.
type PaymentSettledEvent struct {
	BookingID string `json:"bookingId"`
	PaymentID string `json:"paymentId"`
	Amount    float64 `json:"amount"`
}
