package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/biyahe-app/biyahe/internal/pkg/constants"
	"github.com/biyahe-app/biyahe/internal/pkg/logger"
	"github.com/biyahe-app/biyahe/internal/pkg/models"
	"github.com/biyahe-app/biyahe/internal/pkg/observability"
	"github.com/biyahe-app/biyahe/internal/utils"
	"github.com/biyahe-app/biyahe/services/booking"
)

// bookingUC implements the booking.BookingUC interface. The repository's
// conditional writes carry the state machine's legality rules; this layer
// adds role checks, fare settlement, the grace-window and quota policy,
// and emits one domain event per transition.
type bookingUC struct {
	cfg      *models.Config
	repo     booking.BookingRepo
	gw       booking.BookingGW
	accounts booking.AccountGW
	fares    booking.FareResolver
	presence booking.DriverPresence
}

// NewBookingUC creates a new booking use case
func NewBookingUC(
	cfg *models.Config,
	repo booking.BookingRepo,
	gw booking.BookingGW,
	accounts booking.AccountGW,
	fares booking.FareResolver,
	presence booking.DriverPresence,
) booking.BookingUC {
	return &bookingUC{
		cfg:      cfg,
		repo:     repo,
		gw:       gw,
		accounts: accounts,
		fares:    fares,
		presence: presence,
	}
}

func (uc *bookingUC) CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	passengerID, err := uuid.Parse(req.PassengerID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad passenger id", booking.ErrInvalidRequest)
	}

	// The quote is locked before the booking exists; a booking is never
	// persisted un-priced
	destination := req.Destination.Name
	if destination == "" {
		destination = req.Destination.Address
	}
	quote, err := uc.fares.Resolve(ctx, req.Pickup.Point, destination)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	b := &models.Booking{
		ID:          uuid.New(),
		PassengerID: passengerID,
		Pickup:      req.Pickup,
		Destination: req.Destination,
		FareQuote:   *quote,
		ScheduledAt: req.ScheduledAt,
		RequestedAt: now,
	}
	b.Status, err = uc.initialStatus(ctx, req, now)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	observability.BookingTransitions.WithLabelValues(string(b.Status)).Inc()
	logger.Info("Booking created",
		logger.String("booking_id", b.ID.String()),
		logger.String("status", string(b.Status)),
		logger.Float64("fare", quote.Amount))

	uc.emit(ctx, constants.SubjectBookingCreated, b, "")
	b.CanCancelWithoutPenalty = true
	return b, nil
}

// initialStatus picks the entry state: SCHEDULED for a future request,
// LOOKING_FOR_DRIVER when nobody is online to dispatch to, PENDING
// otherwise
func (uc *bookingUC) initialStatus(ctx context.Context, req *models.BookingRequest, now time.Time) (models.BookingStatus, error) {
	if req.ScheduledAt != nil && req.ScheduledAt.After(now) {
		return models.BookingStatusScheduled, nil
	}
	online, err := uc.presence.OnlineDriverCount(ctx)
	if err != nil {
		return "", err
	}
	if online == 0 {
		return models.BookingStatusLookingForDriver, nil
	}
	return models.BookingStatusPending, nil
}

func (uc *bookingUC) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	b, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	uc.deriveGraceFlag(b, time.Now())
	return b, nil
}

func (uc *bookingUC) PassengerBookings(ctx context.Context, passengerID uuid.UUID, limit int) ([]models.Booking, error) {
	bookings, err := uc.repo.ListByPassenger(ctx, passengerID, limit)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range bookings {
		uc.deriveGraceFlag(&bookings[i], now)
	}
	return bookings, nil
}

func (uc *bookingUC) Accept(ctx context.Context, bookingID, driverID uuid.UUID) (*models.Booking, error) {
	online, err := uc.presence.IsOnline(ctx, driverID.String())
	if err != nil {
		return nil, err
	}
	if !online {
		return nil, booking.ErrDriverNotOnline
	}

	if err := uc.repo.Accept(ctx, bookingID, driverID, time.Now()); err != nil {
		if errors.Is(err, booking.ErrRideTaken) {
			observability.BookingConflicts.WithLabelValues("accept_race").Inc()
		}
		if errors.Is(err, booking.ErrDriverBusy) {
			observability.BookingConflicts.WithLabelValues("driver_busy").Inc()
		}
		return nil, err
	}

	b, err := uc.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	observability.BookingTransitions.WithLabelValues(string(models.BookingStatusAccepted)).Inc()
	logger.Info("Booking accepted",
		logger.String("booking_id", bookingID.String()),
		logger.String("driver_id", driverID.String()))

	uc.emit(ctx, constants.SubjectBookingAccepted, b, "")
	return b, nil
}

// arrivalSteps maps each arrival source state to its successor
var arrivalSteps = map[models.BookingStatus]struct {
	next    models.BookingStatus
	subject string
}{
	models.BookingStatusAccepted:       {models.BookingStatusDriverArriving, constants.SubjectBookingArriving},
	models.BookingStatusDriverArriving: {models.BookingStatusDriverArrived, constants.SubjectBookingArrived},
}

func (uc *bookingUC) AdvanceArrival(ctx context.Context, bookingID, driverID uuid.UUID) (*models.Booking, error) {
	b, err := uc.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.DriverID == nil || *b.DriverID != driverID {
		return nil, booking.ErrNotAssignedDriver
	}

	step, ok := arrivalSteps[b.Status]
	if !ok {
		return nil, booking.ErrInvalidTransition
	}

	if err := uc.repo.Transition(ctx, bookingID, []models.BookingStatus{b.Status}, step.next, &driverID); err != nil {
		return nil, err
	}

	b, err = uc.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	observability.BookingTransitions.WithLabelValues(string(step.next)).Inc()
	uc.emit(ctx, step.subject, b, "")
	return b, nil
}

func (uc *bookingUC) Start(ctx context.Context, bookingID, driverID uuid.UUID) (*models.Booking, error) {
	if err := uc.repo.StartRide(ctx, bookingID, driverID, time.Now()); err != nil {
		return nil, err
	}

	b, err := uc.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	observability.BookingTransitions.WithLabelValues(string(models.BookingStatusInProgress)).Inc()
	logger.Info("Ride started", logger.String("booking_id", bookingID.String()))

	uc.emit(ctx, constants.SubjectBookingStarted, b, "")
	return b, nil
}

func (uc *bookingUC) Complete(ctx context.Context, bookingID, driverID uuid.UUID, req *models.CompleteRequest) (*models.Booking, error) {
	b, err := uc.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.DriverID == nil || *b.DriverID != driverID {
		return nil, booking.ErrNotAssignedDriver
	}

	actualFare, err := uc.settleFare(ctx, b, req)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.CompleteRide(ctx, bookingID, driverID, actualFare, time.Now()); err != nil {
		return nil, err
	}

	b, err = uc.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	observability.BookingTransitions.WithLabelValues(string(models.BookingStatusCompleted)).Inc()
	logger.Info("Ride completed",
		logger.String("booking_id", bookingID.String()),
		logger.Float64("actual_fare", actualFare))

	uc.emit(ctx, constants.SubjectBookingCompleted, b, "")
	return b, nil
}

// settleFare defaults to the locked quote. A discount comes either from
// the completion request or from the passenger's registered percentage,
// and applies to the base amount only.
func (uc *bookingUC) settleFare(ctx context.Context, b *models.Booking, req *models.CompleteRequest) (float64, error) {
	percent := 0.0
	if req != nil {
		percent = req.DiscountPercent
	}
	if percent == 0 {
		registered, err := uc.accounts.DiscountPercent(ctx, b.PassengerID.String())
		if err != nil {
			// The registered discount is a courtesy; completion must
			// not fail because the account service is down
			logger.Warn("Failed to fetch registered discount",
				logger.String("passenger_id", b.PassengerID.String()),
				logger.Err(err))
		} else {
			percent = registered
		}
	}
	if percent == 0 {
		return b.FareQuote.Amount, nil
	}

	discounted, err := uc.fares.ApplyDiscount(&b.FareQuote, percent)
	if err != nil {
		return 0, err
	}
	return discounted.Amount, nil
}

// cancellableBy lists the source states each actor may cancel from.
// Passengers may cancel until the ride leaves ACCEPTED; drivers may
// cancel any time before IN_PROGRESS.
var cancellableBy = map[models.CancelActor][]models.BookingStatus{
	models.CancelledByPassenger: {
		models.BookingStatusPending,
		models.BookingStatusLookingForDriver,
		models.BookingStatusScheduled,
		models.BookingStatusAccepted,
	},
	models.CancelledByDriver: {
		models.BookingStatusPending,
		models.BookingStatusLookingForDriver,
		models.BookingStatusScheduled,
		models.BookingStatusAccepted,
		models.BookingStatusDriverArriving,
		models.BookingStatusDriverArrived,
	},
}

func (uc *bookingUC) Cancel(ctx context.Context, bookingID, actorID uuid.UUID, actor models.CancelActor, reason string) (*models.Booking, error) {
	allowedFrom, ok := cancellableBy[actor]
	if !ok {
		return nil, fmt.Errorf("%w: unknown cancel actor", booking.ErrInvalidRequest)
	}

	b, err := uc.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	penalised := false
	switch actor {
	case models.CancelledByPassenger:
		if b.PassengerID != actorID {
			return nil, booking.ErrCancelNotAllowed
		}
		if !uc.insideGraceWindow(b, now) {
			exceeded, err := uc.accounts.CancelQuotaExceeded(ctx, actorID.String())
			if err != nil {
				return nil, err
			}
			if exceeded {
				return nil, booking.ErrCancelQuotaExceeded
			}
			penalised = true
		}
	case models.CancelledByDriver:
		if b.DriverID == nil || *b.DriverID != actorID {
			return nil, booking.ErrNotAssignedDriver
		}
	}

	if err := uc.repo.CancelBooking(ctx, bookingID, allowedFrom, actor, now); err != nil {
		if errors.Is(err, booking.ErrInvalidTransition) {
			return nil, booking.ErrCancelNotAllowed
		}
		return nil, err
	}

	// Charge the quota only after the cancel is durable, so a failed
	// write never costs the passenger a slot
	if penalised {
		if err := uc.accounts.RecordCancellation(ctx, actorID.String()); err != nil {
			logger.Error("Failed to record penalised cancellation",
				logger.String("passenger_id", actorID.String()),
				logger.Err(err))
		}
	}

	b, err = uc.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	observability.BookingTransitions.WithLabelValues(string(models.BookingStatusCancelled)).Inc()
	logger.Info("Booking cancelled",
		logger.String("booking_id", bookingID.String()),
		logger.String("cancelled_by", string(actor)),
		logger.Bool("penalised", penalised))

	uc.emit(ctx, constants.SubjectBookingCancelled, b, reason)
	return b, nil
}

// ActivateScheduled promotes due SCHEDULED bookings into the same entry
// state a fresh request would get: LOOKING_FOR_DRIVER when nobody is
// online, PENDING otherwise.
func (uc *bookingUC) ActivateScheduled(ctx context.Context) (int, error) {
	target := models.BookingStatusPending
	online, err := uc.presence.OnlineDriverCount(ctx)
	if err != nil {
		return 0, err
	}
	if online == 0 {
		target = models.BookingStatusLookingForDriver
	}

	activated, err := uc.repo.ActivateScheduled(ctx, time.Now(), target)
	if err != nil {
		return 0, err
	}

	for i := range activated {
		observability.BookingTransitions.WithLabelValues(string(target)).Inc()
		uc.emit(ctx, constants.SubjectBookingActivated, &activated[i], "")
	}

	if len(activated) > 0 {
		logger.Info("Activated scheduled bookings", logger.Int("count", len(activated)))
	}
	return len(activated), nil
}

func (uc *bookingUC) ExpireStale(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-time.Duration(uc.cfg.Booking.ExpiryTimeoutSec) * time.Second)
	expired, err := uc.repo.ExpireStale(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	for i := range expired {
		observability.BookingTransitions.WithLabelValues(string(models.BookingStatusExpired)).Inc()
		uc.emit(ctx, constants.SubjectBookingExpired, &expired[i], "no driver accepted in time")
	}

	if len(expired) > 0 {
		logger.Info("Expired stale bookings", logger.Int("count", len(expired)))
	}
	return len(expired), nil
}

func (uc *bookingUC) insideGraceWindow(b *models.Booking, now time.Time) bool {
	window := time.Duration(uc.cfg.Booking.GraceWindowSec) * time.Second
	return now.Sub(b.RequestedAt) <= window
}

func (uc *bookingUC) deriveGraceFlag(b *models.Booking, now time.Time) {
	b.CanCancelWithoutPenalty = !b.Status.Terminal() && uc.insideGraceWindow(b, now)
}

// emit publishes the transition's domain event. Delivery failure is
// logged, never propagated: the durable state already changed.
func (uc *bookingUC) emit(ctx context.Context, subject string, b *models.Booking, reason string) {
	event := models.BookingEvent{
		BookingID:   b.ID.String(),
		PassengerID: b.PassengerID.String(),
		Status:      b.Status,
		CancelledBy: b.CancelledBy,
		Reason:      reason,
		Currency:    b.FareQuote.Currency,
		OccurredAt:  time.Now(),
	}
	if b.DriverID != nil {
		event.DriverID = b.DriverID.String()
	}
	if b.ActualFare != nil {
		event.FareAmount = *b.ActualFare
	} else {
		event.FareAmount = b.FareQuote.Amount
	}

	if err := uc.gw.PublishBookingEvent(ctx, subject, event); err != nil {
		logger.Warn("Failed to publish booking event",
			logger.String("subject", subject),
			logger.String("booking_id", b.ID.String()),
			logger.Err(err))
	}
}

func validateRequest(req *models.BookingRequest) error {
	if req == nil || req.PassengerID == "" {
		return fmt.Errorf("%w: passenger id is required", booking.ErrInvalidRequest)
	}
	if req.Pickup.Address == "" || req.Destination.Address == "" {
		return fmt.Errorf("%w: pickup and destination are required", booking.ErrInvalidRequest)
	}
	if !utils.ValidCoordinate(req.Pickup.Point.Latitude, req.Pickup.Point.Longitude) {
		return fmt.Errorf("%w: pickup coordinate out of range", booking.ErrInvalidRequest)
	}
	if !utils.ValidCoordinate(req.Destination.Point.Latitude, req.Destination.Point.Longitude) {
		return fmt.Errorf("%w: destination coordinate out of range", booking.ErrInvalidRequest)
	}
	return nil
}
