package application

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haulbuddy/service-marketplace/internal/common/domain"
	"github.com/haulbuddy/service-marketplace/internal/common/kafka"
	bookingDomain "github.com/haulbuddy/service-marketplace/internal/domain/booking"
)

// fakeBookingRepo is an in-memory BookingRepository.
type fakeBookingRepo struct {
	bookings map[string]*bookingDomain.Booking
	order    []string
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*bookingDomain.Booking)}
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id string) (*bookingDomain.Booking, error) {
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id)
	}
	return bk, nil
}

func (r *fakeBookingRepo) FindByCustomerID(ctx context.Context, customerID string) ([]*bookingDomain.Booking, error) {
	var result []*bookingDomain.Booking
	// Newest first, like the real repository.
	for i := len(r.order) - 1; i >= 0; i-- {
		bk := r.bookings[r.order[i]]
		if bk.CustomerID() == customerID {
			result = append(result, bk)
		}
	}
	return result, nil
}

func (r *fakeBookingRepo) FindByOwnerID(ctx context.Context, ownerID string) ([]*bookingDomain.Booking, error) {
	var result []*bookingDomain.Booking
	for i := len(r.order) - 1; i >= 0; i-- {
		bk := r.bookings[r.order[i]]
		if bk.OwnerID() == ownerID {
			result = append(result, bk)
		}
	}
	return result, nil
}

func (r *fakeBookingRepo) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var all []*bookingDomain.Booking
	for i := len(r.order) - 1; i >= 0; i-- {
		all = append(all, r.bookings[r.order[i]])
	}
	return all, int64(len(all)), nil
}

func (r *fakeBookingRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, bk := range r.bookings {
		counts[bk.Status().String()]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	r.bookings[bk.ID()] = bk
	r.order = append(r.order, bk.ID())
	return nil
}

func (r *fakeBookingRepo) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	if _, ok := r.bookings[bk.ID()]; !ok {
		return domain.NewNotFoundError("Booking", bk.ID())
	}
	r.bookings[bk.ID()] = bk
	return nil
}

// recordingPublisher captures published cloud events.
type recordingPublisher struct {
	events []kafka.CloudEvent
}

func (p *recordingPublisher) PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error {
	p.events = append(p.events, event)
	return nil
}

func newTestBookingService() (*BookingService, *fakeBookingRepo, *recordingPublisher) {
	repo := newFakeBookingRepo()
	pub := &recordingPublisher{}
	svc := NewBookingService(repo, bookingDomain.NewFlatRatePricingStrategy(), pub, zap.NewNop())
	return svc, repo, pub
}

func TestSubmitBooking_DefaultsAndPricing(t *testing.T) {
	svc, _, pub := newTestBookingService()

	dto, err := svc.SubmitBooking(context.Background(), "customer-1", SubmitBookingRequest{})
	require.NoError(t, err)

	assert.Equal(t, "pending", dto.Status)
	assert.Equal(t, bookingDomain.DefaultOwnerID, dto.OwnerID)
	assert.Equal(t, bookingDomain.DefaultVehicleID, dto.VehicleID)
	assert.Equal(t, bookingDomain.DefaultEstimatedHours, dto.EstimatedHours)
	assert.Equal(t, bookingDomain.FallbackPickupTime, dto.PickupDateTime)
	assert.Equal(t, 90.0, dto.TotalCost)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "booking.requested", pub.events[0].Type)
}

func TestSubmitBooking_WithAssistance(t *testing.T) {
	svc, _, _ := newTestBookingService()

	dto, err := svc.SubmitBooking(context.Background(), "customer-1", SubmitBookingRequest{
		EstimatedHours:  2,
		NeedsAssistance: true,
		PickupDateTime:  "2025-06-01T09:30:00Z",
	})
	require.NoError(t, err)

	assert.Equal(t, 140.0, dto.TotalCost)
	assert.Equal(t, 50.0, dto.AssistanceCost)
	assert.Equal(t, "2025-06-01T09:30:00Z", dto.PickupDateTime.Format("2006-01-02T15:04:05Z07:00"))
}

func TestSubmitBooking_UnparseablePickupTimeFallsBack(t *testing.T) {
	svc, _, _ := newTestBookingService()

	dto, err := svc.SubmitBooking(context.Background(), "customer-1", SubmitBookingRequest{
		PickupDateTime: "next tuesday",
	})
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.FallbackPickupTime, dto.PickupDateTime)
}

// Every booking lands in exactly one of the two customer lists.
func TestActivePastBookings_Partition(t *testing.T) {
	svc, repo, _ := newTestBookingService()
	ctx := context.Background()

	seed := func(mutate func(*bookingDomain.Booking) error) string {
		dto, err := svc.SubmitBooking(ctx, "customer-1", SubmitBookingRequest{})
		require.NoError(t, err)
		if mutate != nil {
			bk := repo.bookings[dto.ID]
			require.NoError(t, mutate(bk))
		}
		return dto.ID
	}

	pending := seed(nil)
	confirmed := seed(func(bk *bookingDomain.Booking) error { return bk.Confirm() })
	inProgress := seed(func(bk *bookingDomain.Booking) error {
		if err := bk.Confirm(); err != nil {
			return err
		}
		return bk.Start()
	})
	completed := seed(func(bk *bookingDomain.Booking) error {
		if err := bk.Confirm(); err != nil {
			return err
		}
		if err := bk.Start(); err != nil {
			return err
		}
		return bk.Complete()
	})
	cancelled := seed(func(bk *bookingDomain.Booking) error { return bk.Cancel() })
	declined := seed(func(bk *bookingDomain.Booking) error { return bk.Decline() })

	active, err := svc.GetActiveBookings(ctx, "customer-1")
	require.NoError(t, err)
	past, err := svc.GetPastBookings(ctx, "customer-1")
	require.NoError(t, err)

	ids := func(dtos []BookingDTO) []string {
		var out []string
		for _, d := range dtos {
			out = append(out, d.ID)
		}
		sort.Strings(out)
		return out
	}

	wantActive := []string{pending, confirmed, inProgress}
	sort.Strings(wantActive)
	wantPast := []string{completed, cancelled, declined}
	sort.Strings(wantPast)

	assert.Equal(t, wantActive, ids(active))
	assert.Equal(t, wantPast, ids(past))
}

func TestCancelBooking_OwnershipEnforced(t *testing.T) {
	svc, _, _ := newTestBookingService()
	ctx := context.Background()

	dto, err := svc.SubmitBooking(ctx, "customer-1", SubmitBookingRequest{})
	require.NoError(t, err)

	_, err = svc.CancelBooking(ctx, dto.ID, "customer-2")
	assert.True(t, domain.IsKind(err, domain.KindForbidden))

	result, err := svc.CancelBooking(ctx, dto.ID, "customer-1")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", result.Status)
	assert.Equal(t, int64(2), result.Version)
}

func TestCancelBooking_CompletedRejected(t *testing.T) {
	svc, repo, _ := newTestBookingService()
	ctx := context.Background()

	dto, err := svc.SubmitBooking(ctx, "customer-1", SubmitBookingRequest{})
	require.NoError(t, err)

	bk := repo.bookings[dto.ID]
	require.NoError(t, bk.Confirm())
	require.NoError(t, bk.Start())
	require.NoError(t, bk.Complete())

	_, err = svc.CancelBooking(ctx, dto.ID, "customer-1")
	assert.True(t, domain.IsKind(err, domain.KindInvalidState))
}

func TestOwnerTransitions(t *testing.T) {
	svc, _, pub := newTestBookingService()
	ctx := context.Background()

	dto, err := svc.SubmitBooking(ctx, "customer-1", SubmitBookingRequest{OwnerID: "owner-1"})
	require.NoError(t, err)

	// A different owner cannot act on the booking.
	_, err = svc.ConfirmBooking(ctx, dto.ID, "owner-2")
	assert.True(t, domain.IsKind(err, domain.KindForbidden))

	confirmed, err := svc.ConfirmBooking(ctx, dto.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "confirmed", confirmed.Status)

	started, err := svc.StartBooking(ctx, dto.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "in-progress", started.Status)

	done, err := svc.CompleteBooking(ctx, dto.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "completed", done.Status)
	require.NotNil(t, done.CompletedAt)

	var types []string
	for _, e := range pub.events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{"booking.requested", "booking.confirmed", "booking.started", "booking.completed"}, types)
}

func TestCompleteBookingFromSettlement_Idempotent(t *testing.T) {
	svc, repo, _ := newTestBookingService()
	ctx := context.Background()

	dto, err := svc.SubmitBooking(ctx, "customer-1", SubmitBookingRequest{OwnerID: "owner-1"})
	require.NoError(t, err)

	bk := repo.bookings[dto.ID]
	require.NoError(t, bk.Confirm())
	require.NoError(t, bk.Start())

	require.NoError(t, svc.CompleteBookingFromSettlement(ctx, dto.ID))
	assert.Equal(t, bookingDomain.StatusCompleted, repo.bookings[dto.ID].Status())

	// Replayed settlement events are swallowed.
	require.NoError(t, svc.CompleteBookingFromSettlement(ctx, dto.ID))
}

func TestGetBookingStats(t *testing.T) {
	svc, repo, _ := newTestBookingService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.SubmitBooking(ctx, "customer-1", SubmitBookingRequest{})
		require.NoError(t, err)
	}
	for _, bk := range repo.bookings {
		require.NoError(t, bk.Decline())
		break
	}

	stats, err := svc.GetBookingStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.ByStatus["pending"])
	assert.Equal(t, int64(1), stats.ByStatus["declined"])
}
