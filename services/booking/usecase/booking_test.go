package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyahe-app/biyahe/internal/pkg/models"
	"github.com/biyahe-app/biyahe/services/booking"
	"github.com/biyahe-app/biyahe/services/fare"
)

// fakeBookingRepo mirrors the conditional-write semantics of the real
// repository: a transition only lands when the source state (and assigned
// driver, where required) still matches under the lock.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*models.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*models.Booking)}
}

func (f *fakeBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepo) ListByPassenger(ctx context.Context, passengerID uuid.UUID, limit int) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.bookings {
		if b.PassengerID == passengerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) Accept(ctx context.Context, bookingID, driverID uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[bookingID]
	if !ok {
		return booking.ErrBookingNotFound
	}
	if b.DriverID != nil {
		return booking.ErrRideTaken
	}
	for _, other := range f.bookings {
		if other.DriverID != nil && *other.DriverID == driverID && other.Status.Active() {
			return booking.ErrDriverBusy
		}
	}
	if b.Status != models.BookingStatusPending && b.Status != models.BookingStatusLookingForDriver {
		return booking.ErrInvalidTransition
	}
	d := driverID
	b.DriverID = &d
	b.Status = models.BookingStatusAccepted
	b.AcceptedAt = &at
	return nil
}

func (f *fakeBookingRepo) Transition(ctx context.Context, bookingID uuid.UUID, from []models.BookingStatus, to models.BookingStatus, driverID *uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[bookingID]
	if !ok {
		return booking.ErrBookingNotFound
	}
	if driverID != nil && (b.DriverID == nil || *b.DriverID != *driverID) {
		return booking.ErrNotAssignedDriver
	}
	for _, s := range from {
		if b.Status == s {
			b.Status = to
			return nil
		}
	}
	return booking.ErrInvalidTransition
}

func (f *fakeBookingRepo) StartRide(ctx context.Context, bookingID, driverID uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[bookingID]
	if !ok {
		return booking.ErrBookingNotFound
	}
	if b.DriverID == nil || *b.DriverID != driverID {
		return booking.ErrNotAssignedDriver
	}
	if b.Status != models.BookingStatusDriverArrived {
		return booking.ErrInvalidTransition
	}
	b.Status = models.BookingStatusInProgress
	b.PickupAt = &at
	return nil
}

func (f *fakeBookingRepo) CompleteRide(ctx context.Context, bookingID, driverID uuid.UUID, actualFare float64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[bookingID]
	if !ok {
		return booking.ErrBookingNotFound
	}
	if b.DriverID == nil || *b.DriverID != driverID {
		return booking.ErrNotAssignedDriver
	}
	if b.Status != models.BookingStatusInProgress {
		return booking.ErrInvalidTransition
	}
	b.Status = models.BookingStatusCompleted
	b.ActualFare = &actualFare
	b.CompletedAt = &at
	return nil
}

func (f *fakeBookingRepo) CancelBooking(ctx context.Context, bookingID uuid.UUID, from []models.BookingStatus, by models.CancelActor, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[bookingID]
	if !ok {
		return booking.ErrBookingNotFound
	}
	for _, s := range from {
		if b.Status == s {
			b.Status = models.BookingStatusCancelled
			b.CancelledBy = by
			b.CancelledAt = &at
			return nil
		}
	}
	return booking.ErrInvalidTransition
}

func (f *fakeBookingRepo) ActivateScheduled(ctx context.Context, now time.Time, to models.BookingStatus) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var activated []models.Booking
	for _, b := range f.bookings {
		if b.Status == models.BookingStatusScheduled && b.ScheduledAt != nil && !b.ScheduledAt.After(now) {
			b.Status = to
			b.RequestedAt = now
			activated = append(activated, *b)
		}
	}
	return activated, nil
}

func (f *fakeBookingRepo) ExpireStale(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var expired []models.Booking
	for _, b := range f.bookings {
		unaccepted := b.Status == models.BookingStatusPending || b.Status == models.BookingStatusLookingForDriver
		if unaccepted && b.DriverID == nil && b.RequestedAt.Before(cutoff) {
			b.Status = models.BookingStatusExpired
			expired = append(expired, *b)
		}
	}
	return expired, nil
}

type fakeBookingGW struct {
	mu     sync.Mutex
	events map[string][]models.BookingEvent
}

func newFakeBookingGW() *fakeBookingGW {
	return &fakeBookingGW{events: make(map[string][]models.BookingEvent)}
}

func (f *fakeBookingGW) PublishBookingEvent(ctx context.Context, subject string, event models.BookingEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[subject] = append(f.events[subject], event)
	return nil
}

func (f *fakeBookingGW) count(subject string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events[subject])
}

type fakeAccountGW struct {
	mu       sync.Mutex
	exceeded bool
	recorded int
	discount float64
}

func (f *fakeAccountGW) CancelQuotaExceeded(ctx context.Context, passengerID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exceeded, nil
}

func (f *fakeAccountGW) RecordCancellation(ctx context.Context, passengerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded++
	return nil
}

func (f *fakeAccountGW) DiscountPercent(ctx context.Context, passengerID string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.discount, nil
}

type fakeFareResolver struct {
	unavailable bool
}

func (f *fakeFareResolver) Resolve(ctx context.Context, pickup models.GeoPoint, destination string) (*models.FareQuote, error) {
	if f.unavailable {
		return nil, fare.ErrFareUnavailable
	}
	return &models.FareQuote{
		Amount:          50.00,
		Currency:        "PHP",
		SurgeMultiplier: 1.0,
		Zone:            "AURELIO",
	}, nil
}

func (f *fakeFareResolver) ApplyDiscount(quote *models.FareQuote, percent float64) (*models.FareQuote, error) {
	if percent < 0 || percent > 100 {
		return nil, fare.ErrInvalidDiscount
	}
	out := *quote
	out.Amount = quote.Amount * (1 - percent/100)
	return &out, nil
}

type fakeDriverPresence struct {
	mu     sync.Mutex
	online map[string]bool
}

func newFakeDriverPresence(driverIDs ...string) *fakeDriverPresence {
	f := &fakeDriverPresence{online: make(map[string]bool)}
	for _, id := range driverIDs {
		f.online[id] = true
	}
	return f
}

func (f *fakeDriverPresence) IsOnline(ctx context.Context, driverID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online[driverID], nil
}

func (f *fakeDriverPresence) OnlineDriverCount(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.online), nil
}

func bookingConfig() *models.Config {
	cfg := &models.Config{}
	cfg.Booking.GraceWindowSec = 60
	cfg.Booking.ExpiryTimeoutSec = 300
	cfg.Booking.ExpirySweepSec = 30
	cfg.Booking.DailyCancelQuota = 3
	cfg.Booking.DefaultCurrency = "PHP"
	return cfg
}

type fixture struct {
	repo     *fakeBookingRepo
	gw       *fakeBookingGW
	accounts *fakeAccountGW
	presence *fakeDriverPresence
	uc       booking.BookingUC
}

func setup(t *testing.T, driverIDs ...string) *fixture {
	t.Helper()
	f := &fixture{
		repo:     newFakeBookingRepo(),
		gw:       newFakeBookingGW(),
		accounts: &fakeAccountGW{},
		presence: newFakeDriverPresence(driverIDs...),
	}
	f.uc = NewBookingUC(bookingConfig(), f.repo, f.gw, f.accounts, &fakeFareResolver{}, f.presence)
	return f
}

func request(passengerID uuid.UUID) *models.BookingRequest {
	return &models.BookingRequest{
		PassengerID: passengerID.String(),
		Pickup: models.Place{
			Address: "Aurelio St corner Rizal Ave",
			Point:   models.GeoPoint{Latitude: 14.4500, Longitude: 120.9500},
		},
		Destination: models.Place{
			Address: "Municipal Hall",
			Name:    "Municipal Hall",
			Point:   models.GeoPoint{Latitude: 14.4550, Longitude: 120.9550},
		},
	}
}

func TestCreateBookingLocksFare(t *testing.T) {
	driverID := uuid.New()
	f := setup(t, driverID.String())

	b, err := f.uc.CreateBooking(context.Background(), request(uuid.New()))
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, b.Status)
	assert.Equal(t, 50.00, b.FareQuote.Amount)
	assert.Equal(t, "PHP", b.FareQuote.Currency)
	assert.Nil(t, b.DriverID)
	assert.True(t, b.CanCancelWithoutPenalty)
	assert.Equal(t, 1, f.gw.count("booking.created"))
}

func TestCreateBookingFailsWithoutFareRule(t *testing.T) {
	f := setup(t, uuid.New().String())
	f.uc = NewBookingUC(bookingConfig(), f.repo, f.gw, f.accounts, &fakeFareResolver{unavailable: true}, f.presence)

	_, err := f.uc.CreateBooking(context.Background(), request(uuid.New()))
	assert.ErrorIs(t, err, fare.ErrFareUnavailable)
	assert.Empty(t, f.repo.bookings)
}

func TestCreateBookingInitialStatuses(t *testing.T) {
	ctx := context.Background()

	// Nobody online
	f := setup(t)
	b, err := f.uc.CreateBooking(ctx, request(uuid.New()))
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusLookingForDriver, b.Status)

	// Scheduled for later
	f = setup(t, uuid.New().String())
	req := request(uuid.New())
	later := time.Now().Add(2 * time.Hour)
	req.ScheduledAt = &later
	b, err = f.uc.CreateBooking(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusScheduled, b.Status)
}

func TestCreateBookingValidation(t *testing.T) {
	f := setup(t, uuid.New().String())
	ctx := context.Background()

	req := request(uuid.New())
	req.PassengerID = ""
	_, err := f.uc.CreateBooking(ctx, req)
	assert.ErrorIs(t, err, booking.ErrInvalidRequest)

	req = request(uuid.New())
	req.Pickup.Point.Latitude = 95
	_, err = f.uc.CreateBooking(ctx, req)
	assert.ErrorIs(t, err, booking.ErrInvalidRequest)

	req = request(uuid.New())
	req.Destination.Address = ""
	_, err = f.uc.CreateBooking(ctx, req)
	assert.ErrorIs(t, err, booking.ErrInvalidRequest)

	assert.Empty(t, f.repo.bookings)
}

func TestConcurrentAcceptExactlyOneWins(t *testing.T) {
	const contenders = 8

	driverIDs := make([]uuid.UUID, contenders)
	names := make([]string, contenders)
	for i := range driverIDs {
		driverIDs[i] = uuid.New()
		names[i] = driverIDs[i].String()
	}
	f := setup(t, names...)

	b, err := f.uc.CreateBooking(context.Background(), request(uuid.New()))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.Accept(context.Background(), b.ID, driverIDs[i])
		}(i)
	}
	wg.Wait()

	winners := 0
	var winner uuid.UUID
	for i, err := range errs {
		if err == nil {
			winners++
			winner = driverIDs[i]
		} else {
			assert.ErrorIs(t, err, booking.ErrRideTaken)
		}
	}
	require.Equal(t, 1, winners)

	final, err := f.uc.GetBooking(context.Background(), b.ID)
	require.NoError(t, err)
	require.NotNil(t, final.DriverID)
	assert.Equal(t, winner, *final.DriverID)
	assert.Equal(t, models.BookingStatusAccepted, final.Status)
	assert.Equal(t, 1, f.gw.count("booking.accepted"))
}

func TestAcceptRequiresOnlineDriver(t *testing.T) {
	f := setup(t, uuid.New().String())

	b, err := f.uc.CreateBooking(context.Background(), request(uuid.New()))
	require.NoError(t, err)

	_, err = f.uc.Accept(context.Background(), b.ID, uuid.New())
	assert.ErrorIs(t, err, booking.ErrDriverNotOnline)
}

func TestBusyDriverCannotAcceptSecondBooking(t *testing.T) {
	driverID := uuid.New()
	f := setup(t, driverID.String())
	ctx := context.Background()

	first, err := f.uc.CreateBooking(ctx, request(uuid.New()))
	require.NoError(t, err)
	_, err = f.uc.Accept(ctx, first.ID, driverID)
	require.NoError(t, err)
	_, err = f.uc.AdvanceArrival(ctx, first.ID, driverID)
	require.NoError(t, err)
	_, err = f.uc.AdvanceArrival(ctx, first.ID, driverID)
	require.NoError(t, err)
	_, err = f.uc.Start(ctx, first.ID, driverID)
	require.NoError(t, err)

	second, err := f.uc.CreateBooking(ctx, request(uuid.New()))
	require.NoError(t, err)

	// The driver is mid-ride and may not claim another booking
	_, err = f.uc.Accept(ctx, second.ID, driverID)
	assert.ErrorIs(t, err, booking.ErrDriverBusy)

	current, err := f.uc.GetBooking(ctx, second.ID)
	require.NoError(t, err)
	assert.Nil(t, current.DriverID)
	assert.Equal(t, models.BookingStatusPending, current.Status)

	// Finishing the ride frees the driver again
	_, err = f.uc.Complete(ctx, first.ID, driverID, nil)
	require.NoError(t, err)

	accepted, err := f.uc.Accept(ctx, second.ID, driverID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusAccepted, accepted.Status)
}

func TestDriverWithEarlierAcceptedRideCannotAcceptAnother(t *testing.T) {
	driverID := uuid.New()
	f := setup(t, driverID.String())
	ctx := context.Background()

	first, err := f.uc.CreateBooking(ctx, request(uuid.New()))
	require.NoError(t, err)
	_, err = f.uc.Accept(ctx, first.ID, driverID)
	require.NoError(t, err)

	second, err := f.uc.CreateBooking(ctx, request(uuid.New()))
	require.NoError(t, err)
	_, err = f.uc.Accept(ctx, second.ID, driverID)
	assert.ErrorIs(t, err, booking.ErrDriverBusy)

	// A cancelled ride no longer occupies the driver
	_, err = f.uc.Cancel(ctx, first.ID, driverID, models.CancelledByDriver, "vehicle trouble")
	require.NoError(t, err)
	_, err = f.uc.Accept(ctx, second.ID, driverID)
	assert.NoError(t, err)
}

func TestFullLifecycleTimestampsMonotonic(t *testing.T) {
	driverID := uuid.New()
	f := setup(t, driverID.String())
	ctx := context.Background()

	b, err := f.uc.CreateBooking(ctx, request(uuid.New()))
	require.NoError(t, err)

	_, err = f.uc.Accept(ctx, b.ID, driverID)
	require.NoError(t, err)

	b, err = f.uc.AdvanceArrival(ctx, b.ID, driverID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusDriverArriving, b.Status)

	b, err = f.uc.AdvanceArrival(ctx, b.ID, driverID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusDriverArrived, b.Status)

	// A third advance has nowhere to go
	_, err = f.uc.AdvanceArrival(ctx, b.ID, driverID)
	assert.ErrorIs(t, err, booking.ErrInvalidTransition)

	b, err = f.uc.Start(ctx, b.ID, driverID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusInProgress, b.Status)

	b, err = f.uc.Complete(ctx, b.ID, driverID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, b.Status)
	require.NotNil(t, b.ActualFare)
	assert.Equal(t, 50.00, *b.ActualFare)

	require.NotNil(t, b.AcceptedAt)
	require.NotNil(t, b.PickupAt)
	require.NotNil(t, b.CompletedAt)
	assert.False(t, b.AcceptedAt.Before(b.RequestedAt))
	assert.False(t, b.PickupAt.Before(*b.AcceptedAt))
	assert.False(t, b.CompletedAt.Before(*b.PickupAt))
}

func TestCompleteAppliesDiscount(t *testing.T) {
	driverID := uuid.New()
	f := setup(t, driverID.String())
	ctx := context.Background()

	b, err := f.uc.CreateBooking(ctx, request(uuid.New()))
	require.NoError(t, err)
	_, err = f.uc.Accept(ctx, b.ID, driverID)
	require.NoError(t, err)
	_, err = f.uc.AdvanceArrival(ctx, b.ID, driverID)
	require.NoError(t, err)
	_, err = f.uc.AdvanceArrival(ctx, b.ID, driverID)
	require.NoError(t, err)
	_, err = f.uc.Start(ctx, b.ID, driverID)
	require.NoError(t, err)

	b, err = f.uc.Complete(ctx, b.ID, driverID, &models.CompleteRequest{DiscountPercent: 20})
	require.NoError(t, err)
	require.NotNil(t, b.ActualFare)
	assert.InDelta(t, 40.00, *b.ActualFare, 1e-9)
	// The locked quote is untouched
	assert.Equal(t, 50.00, b.FareQuote.Amount)
}

func TestIllegalTransitionsFailAtomically(t *testing.T) {
	driverID := uuid.New()
	f := setup(t, driverID.String())
	ctx := context.Background()

	b, err := f.uc.CreateBooking(ctx, request(uuid.New()))
	require.NoError(t, err)

	// Completing an unaccepted booking
	_, err = f.uc.Complete(ctx, b.ID, driverID, nil)
	assert.ErrorIs(t, err, booking.ErrNotAssignedDriver)

	// Starting before arrival
	_, err = f.uc.Accept(ctx, b.ID, driverID)
	require.NoError(t, err)
	_, err = f.uc.Start(ctx, b.ID, driverID)
	assert.ErrorIs(t, err, booking.ErrInvalidTransition)

	// A stranger driving someone else's ride
	stranger := uuid.New()
	f.presence.online[stranger.String()] = true
	_, err = f.uc.AdvanceArrival(ctx, b.ID, stranger)
	assert.ErrorIs(t, err, booking.ErrNotAssignedDriver)

	// Nothing moved
	current, err := f.uc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusAccepted, current.Status)
	assert.Nil(t, current.ActualFare)
}

func TestPassengerCancelInsideGraceWindow(t *testing.T) {
	passengerID := uuid.New()
	f := setup(t, uuid.New().String())
	ctx := context.Background()

	b, err := f.uc.CreateBooking(ctx, request(passengerID))
	require.NoError(t, err)

	b, err = f.uc.Cancel(ctx, b.ID, passengerID, models.CancelledByPassenger, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, b.Status)
	assert.Equal(t, models.CancelledByPassenger, b.CancelledBy)
	assert.Equal(t, 0, f.accounts.recorded)
}

func TestPassengerCancelOutsideGraceWindowChargesQuota(t *testing.T) {
	passengerID := uuid.New()
	f := setup(t, uuid.New().String())
	ctx := context.Background()

	b, err := f.uc.CreateBooking(ctx, request(passengerID))
	require.NoError(t, err)

	// Age the booking past the grace window
	f.repo.mu.Lock()
	f.repo.bookings[b.ID].RequestedAt = time.Now().Add(-10 * time.Minute)
	f.repo.mu.Unlock()

	_, err = f.uc.Cancel(ctx, b.ID, passengerID, models.CancelledByPassenger, "")
	require.NoError(t, err)
	assert.Equal(t, 1, f.accounts.recorded)
}

func TestPassengerCancelBlockedByQuota(t *testing.T) {
	passengerID := uuid.New()
	f := setup(t, uuid.New().String())
	f.accounts.exceeded = true
	ctx := context.Background()

	b, err := f.uc.CreateBooking(ctx, request(passengerID))
	require.NoError(t, err)

	f.repo.mu.Lock()
	f.repo.bookings[b.ID].RequestedAt = time.Now().Add(-10 * time.Minute)
	f.repo.mu.Unlock()

	_, err = f.uc.Cancel(ctx, b.ID, passengerID, models.CancelledByPassenger, "")
	assert.ErrorIs(t, err, booking.ErrCancelQuotaExceeded)

	current, err := f.uc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, current.Status)
}

func TestDriverCancelOnlyBeforeInProgress(t *testing.T) {
	driverID := uuid.New()
	f := setup(t, driverID.String())
	ctx := context.Background()

	b, err := f.uc.CreateBooking(ctx, request(uuid.New()))
	require.NoError(t, err)
	_, err = f.uc.Accept(ctx, b.ID, driverID)
	require.NoError(t, err)
	_, err = f.uc.AdvanceArrival(ctx, b.ID, driverID)
	require.NoError(t, err)
	_, err = f.uc.AdvanceArrival(ctx, b.ID, driverID)
	require.NoError(t, err)
	_, err = f.uc.Start(ctx, b.ID, driverID)
	require.NoError(t, err)

	_, err = f.uc.Cancel(ctx, b.ID, driverID, models.CancelledByDriver, "")
	assert.ErrorIs(t, err, booking.ErrCancelNotAllowed)

	current, err := f.uc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusInProgress, current.Status)
}

func TestPassengerCannotCancelAfterPickup(t *testing.T) {
	driverID := uuid.New()
	passengerID := uuid.New()
	f := setup(t, driverID.String())
	ctx := context.Background()

	b, err := f.uc.CreateBooking(ctx, request(passengerID))
	require.NoError(t, err)
	_, err = f.uc.Accept(ctx, b.ID, driverID)
	require.NoError(t, err)
	_, err = f.uc.AdvanceArrival(ctx, b.ID, driverID)
	require.NoError(t, err)

	_, err = f.uc.Cancel(ctx, b.ID, passengerID, models.CancelledByPassenger, "")
	assert.ErrorIs(t, err, booking.ErrCancelNotAllowed)
}

func TestActivateScheduledPromotesDueBookings(t *testing.T) {
	f := setup(t, uuid.New().String())
	ctx := context.Background()

	req := request(uuid.New())
	later := time.Now().Add(2 * time.Hour)
	req.ScheduledAt = &later
	b, err := f.uc.CreateBooking(ctx, req)
	require.NoError(t, err)
	require.Equal(t, models.BookingStatusScheduled, b.Status)

	// Not due yet, the sweep leaves it alone
	count, err := f.uc.ActivateScheduled(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	due := time.Now().Add(-time.Minute)
	f.repo.mu.Lock()
	f.repo.bookings[b.ID].ScheduledAt = &due
	f.repo.mu.Unlock()

	count, err = f.uc.ActivateScheduled(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	current, err := f.uc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, current.Status)
	assert.Equal(t, 1, f.gw.count("booking.activated"))

	// The expiry clock restarts at activation, so an immediate sweep
	// leaves the promoted booking alone
	expired, err := f.uc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, expired)
}

func TestActivateScheduledWithNobodyOnline(t *testing.T) {
	f := setup(t, uuid.New().String())
	ctx := context.Background()

	req := request(uuid.New())
	later := time.Now().Add(time.Hour)
	req.ScheduledAt = &later
	b, err := f.uc.CreateBooking(ctx, req)
	require.NoError(t, err)

	due := time.Now().Add(-time.Minute)
	f.repo.mu.Lock()
	f.repo.bookings[b.ID].ScheduledAt = &due
	f.repo.mu.Unlock()

	f.presence.mu.Lock()
	f.presence.online = map[string]bool{}
	f.presence.mu.Unlock()

	count, err := f.uc.ActivateScheduled(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	current, err := f.uc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusLookingForDriver, current.Status)
}

func TestExpireStale(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	b, err := f.uc.CreateBooking(ctx, request(uuid.New()))
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusLookingForDriver, b.Status)

	f.repo.mu.Lock()
	f.repo.bookings[b.ID].RequestedAt = time.Now().Add(-10 * time.Minute)
	f.repo.mu.Unlock()

	count, err := f.uc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	current, err := f.uc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusExpired, current.Status)
	assert.Nil(t, current.DriverID)
	assert.Equal(t, 0, f.accounts.recorded)
	assert.Equal(t, 1, f.gw.count("booking.expired"))
}
