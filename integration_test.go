//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haulbuddy/service-marketplace/internal/common/events"
)

// TestPaymentSettled_CompletesBooking verifies that when a payment.settled
// event is published to payment.events, the service picks it up and
// transitions the booking to "completed" status.
func TestPaymentSettled_CompletesBooking(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	// Seed a booking in "in-progress" state.
	bookingID := uuid.New().String()
	customerID := uuid.New().String()
	ownerID := uuid.New().String()
	seedBookingInProgress(t, infra.DB, bookingID, customerID, ownerID)

	// Start the consumer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	// Publish the settlement event.
	evt := events.PaymentSettledEvent{
		BookingID: bookingID,
		PaymentID: uuid.New().String(),
		Amount:    210,
	}
	publishTestEvent(t, infra.KafkaBrokers, events.TopicPaymentEvents,
		"service-payment", events.PaymentSettled, evt)

	// Assert: booking transitions to "completed" with a completion stamp.
	model := waitForBookingStatus(t, infra.DB, bookingID, "completed", 15*time.Second)
	assert.NotNil(t, model.CompletedAt, "completed_at should be set")
	assert.Equal(t, int64(4), model.Version)

	// Assert: booking.completed on booking.events.
	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicBookingEvents,
		events.BookingCompleted, 15*time.Second)

	var completed events.BookingEvent
	require.NoError(t, ce.ParseData(&completed))
	assert.Equal(t, bookingID, completed.BookingID)
	assert.Equal(t, customerID, completed.CustomerID)
	assert.Equal(t, "completed", completed.Status)
}
