package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/biyahe-app/biyahe/internal/pkg/models"
	"github.com/biyahe-app/biyahe/services/booking"
)

type bookingRepo struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new booking repository over PostgreSQL
func NewBookingRepository(db *sqlx.DB) booking.BookingRepo {
	return &bookingRepo{db: db}
}

// bookingRow is the flat scan target for the bookings table
type bookingRow struct {
	ID                 uuid.UUID      `db:"id"`
	PassengerID        uuid.UUID      `db:"passenger_id"`
	DriverID           *uuid.UUID     `db:"driver_id"`
	PickupAddress      string         `db:"pickup_address"`
	PickupName         sql.NullString `db:"pickup_name"`
	PickupLat          float64        `db:"pickup_lat"`
	PickupLng          float64        `db:"pickup_lng"`
	DestinationAddress string         `db:"destination_address"`
	DestinationName    sql.NullString `db:"destination_name"`
	DestinationLat     float64        `db:"destination_lat"`
	DestinationLng     float64        `db:"destination_lng"`
	Status             string         `db:"status"`
	FareAmount         float64        `db:"fare_amount"`
	FareCurrency       string         `db:"fare_currency"`
	FareSurge          float64        `db:"fare_surge"`
	FareZone           string         `db:"fare_zone"`
	FareDistanceKm     float64        `db:"fare_distance_km"`
	FareDurationMin    float64        `db:"fare_duration_min"`
	ActualFare         *float64       `db:"actual_fare"`
	ScheduledAt        *time.Time     `db:"scheduled_at"`
	RequestedAt        time.Time      `db:"requested_at"`
	AcceptedAt         *time.Time     `db:"accepted_at"`
	PickupAt           *time.Time     `db:"pickup_at"`
	CompletedAt        *time.Time     `db:"completed_at"`
	CancelledAt        *time.Time     `db:"cancelled_at"`
	CancelledBy        string         `db:"cancelled_by"`
}

const bookingColumns = `
	id, passenger_id, driver_id,
	pickup_address, pickup_name, pickup_lat, pickup_lng,
	destination_address, destination_name, destination_lat, destination_lng,
	status, fare_amount, fare_currency, fare_surge, fare_zone,
	fare_distance_km, fare_duration_min, actual_fare,
	scheduled_at, requested_at, accepted_at, pickup_at,
	completed_at, cancelled_at, cancelled_by`

func (row *bookingRow) toModel() *models.Booking {
	return &models.Booking{
		ID:          row.ID,
		PassengerID: row.PassengerID,
		DriverID:    row.DriverID,
		Pickup: models.Place{
			Address: row.PickupAddress,
			Name:    row.PickupName.String,
			Point:   models.GeoPoint{Latitude: row.PickupLat, Longitude: row.PickupLng},
		},
		Destination: models.Place{
			Address: row.DestinationAddress,
			Name:    row.DestinationName.String,
			Point:   models.GeoPoint{Latitude: row.DestinationLat, Longitude: row.DestinationLng},
		},
		Status: models.BookingStatus(row.Status),
		FareQuote: models.FareQuote{
			Amount:          row.FareAmount,
			Currency:        row.FareCurrency,
			SurgeMultiplier: row.FareSurge,
			Zone:            row.FareZone,
			DistanceKm:      row.FareDistanceKm,
			DurationMin:     row.FareDurationMin,
		},
		ActualFare:  row.ActualFare,
		ScheduledAt: row.ScheduledAt,
		RequestedAt: row.RequestedAt,
		AcceptedAt:  row.AcceptedAt,
		PickupAt:    row.PickupAt,
		CompletedAt: row.CompletedAt,
		CancelledAt: row.CancelledAt,
		CancelledBy: models.CancelActor(row.CancelledBy),
	}
}

func (r *bookingRepo) Create(ctx context.Context, b *models.Booking) error {
	query := `
		INSERT INTO bookings (
			id, passenger_id,
			pickup_address, pickup_name, pickup_lat, pickup_lng,
			destination_address, destination_name, destination_lat, destination_lng,
			status, fare_amount, fare_currency, fare_surge, fare_zone,
			fare_distance_km, fare_duration_min,
			scheduled_at, requested_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19
		)
	`
	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.PassengerID,
		b.Pickup.Address, b.Pickup.Name, b.Pickup.Point.Latitude, b.Pickup.Point.Longitude,
		b.Destination.Address, b.Destination.Name, b.Destination.Point.Latitude, b.Destination.Point.Longitude,
		string(b.Status), b.FareQuote.Amount, b.FareQuote.Currency, b.FareQuote.SurgeMultiplier, b.FareQuote.Zone,
		b.FareQuote.DistanceKm, b.FareQuote.DurationMin,
		b.ScheduledAt, b.RequestedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *bookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	query := `SELECT` + bookingColumns + ` FROM bookings WHERE id = $1`

	var row bookingRow
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return row.toModel(), nil
}

func (r *bookingRepo) ListByPassenger(ctx context.Context, passengerID uuid.UUID, limit int) ([]models.Booking, error) {
	query := `SELECT` + bookingColumns + `
		FROM bookings
		WHERE passenger_id = $1
		ORDER BY requested_at DESC
		LIMIT $2`

	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, query, passengerID, limit); err != nil {
		return nil, fmt.Errorf("failed to list passenger bookings: %w", err)
	}

	bookings := make([]models.Booking, 0, len(rows))
	for i := range rows {
		bookings = append(bookings, *rows[i].toModel())
	}
	return bookings, nil
}

// Accept is the only multi-writer transition. The driver_id IS NULL
// predicate makes it first-writer-wins, and the NOT EXISTS clause keeps a
// driver who still carries an unfinished ride from claiming a second one;
// either way the loser's UPDATE matches zero rows and never touches the
// record.
func (r *bookingRepo) Accept(ctx context.Context, bookingID, driverID uuid.UUID, at time.Time) error {
	query := `
		UPDATE bookings
		SET driver_id = $2, status = $3, accepted_at = $4
		WHERE id = $1
		  AND driver_id IS NULL
		  AND status IN ($5, $6)
		  AND NOT EXISTS (
			SELECT 1 FROM bookings active
			WHERE active.driver_id = $2
			  AND active.status IN ($7, $8, $9, $10)
		  )
	`
	result, err := r.db.ExecContext(ctx, query,
		bookingID, driverID, string(models.BookingStatusAccepted), at,
		string(models.BookingStatusPending), string(models.BookingStatusLookingForDriver),
		string(models.BookingStatusAccepted), string(models.BookingStatusDriverArriving),
		string(models.BookingStatusDriverArrived), string(models.BookingStatusInProgress),
	)
	if err != nil {
		return fmt.Errorf("failed to accept booking: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read accept result: %w", err)
	}
	if affected == 0 {
		return r.classifyAcceptFailure(ctx, bookingID, driverID)
	}
	return nil
}

// classifyAcceptFailure distinguishes a lost race, a busy driver and a
// missing booking so the caller can surface the right conflict
func (r *bookingRepo) classifyAcceptFailure(ctx context.Context, bookingID, driverID uuid.UUID) error {
	current, err := r.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if current.DriverID != nil {
		return booking.ErrRideTaken
	}
	busy, err := r.driverBusy(ctx, driverID)
	if err != nil {
		return err
	}
	if busy {
		return booking.ErrDriverBusy
	}
	return booking.ErrInvalidTransition
}

// driverBusy reports whether the driver is assigned to any unfinished ride
func (r *bookingRepo) driverBusy(ctx context.Context, driverID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE driver_id = $1 AND status IN ($2, $3, $4, $5)
		)
	`
	var busy bool
	err := r.db.GetContext(ctx, &busy, query, driverID,
		string(models.BookingStatusAccepted), string(models.BookingStatusDriverArriving),
		string(models.BookingStatusDriverArrived), string(models.BookingStatusInProgress),
	)
	if err != nil {
		return false, fmt.Errorf("failed to check driver availability: %w", err)
	}
	return busy, nil
}

func (r *bookingRepo) Transition(ctx context.Context, bookingID uuid.UUID, from []models.BookingStatus, to models.BookingStatus, driverID *uuid.UUID) error {
	states := make([]string, len(from))
	for i, s := range from {
		states[i] = string(s)
	}

	query := `UPDATE bookings SET status = ? WHERE id = ? AND status IN (?)`
	args := []interface{}{string(to), bookingID, states}
	if driverID != nil {
		query = `UPDATE bookings SET status = ? WHERE id = ? AND status IN (?) AND driver_id = ?`
		args = append(args, *driverID)
	}

	expanded, expandedArgs, err := sqlx.In(query, args...)
	if err != nil {
		return fmt.Errorf("failed to build transition query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(expanded), expandedArgs...)
	if err != nil {
		return fmt.Errorf("failed to transition booking: %w", err)
	}
	return r.requireAffected(ctx, result, bookingID, driverID)
}

func (r *bookingRepo) StartRide(ctx context.Context, bookingID, driverID uuid.UUID, at time.Time) error {
	query := `
		UPDATE bookings
		SET status = $3, pickup_at = $4
		WHERE id = $1 AND driver_id = $2 AND status = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		bookingID, driverID, string(models.BookingStatusInProgress), at,
		string(models.BookingStatusDriverArrived),
	)
	if err != nil {
		return fmt.Errorf("failed to start ride: %w", err)
	}
	return r.requireAffected(ctx, result, bookingID, &driverID)
}

func (r *bookingRepo) CompleteRide(ctx context.Context, bookingID, driverID uuid.UUID, actualFare float64, at time.Time) error {
	query := `
		UPDATE bookings
		SET status = $3, actual_fare = $4, completed_at = $5
		WHERE id = $1 AND driver_id = $2 AND status = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		bookingID, driverID, string(models.BookingStatusCompleted), actualFare, at,
		string(models.BookingStatusInProgress),
	)
	if err != nil {
		return fmt.Errorf("failed to complete ride: %w", err)
	}
	return r.requireAffected(ctx, result, bookingID, &driverID)
}

func (r *bookingRepo) CancelBooking(ctx context.Context, bookingID uuid.UUID, from []models.BookingStatus, by models.CancelActor, at time.Time) error {
	states := make([]string, len(from))
	for i, s := range from {
		states[i] = string(s)
	}

	query := `UPDATE bookings SET status = ?, cancelled_by = ?, cancelled_at = ? WHERE id = ? AND status IN (?)`
	expanded, args, err := sqlx.In(query, string(models.BookingStatusCancelled), string(by), at, bookingID, states)
	if err != nil {
		return fmt.Errorf("failed to build cancel query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(expanded), args...)
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	return r.requireAffected(ctx, result, bookingID, nil)
}

// ActivateScheduled also restarts requested_at so the expiry clock and
// the cancellation grace window count from activation, not from when the
// booking was placed.
func (r *bookingRepo) ActivateScheduled(ctx context.Context, now time.Time, to models.BookingStatus) ([]models.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $1, requested_at = $3
		WHERE status = $2
		  AND scheduled_at <= $3
		RETURNING` + bookingColumns

	var rows []bookingRow
	err := r.db.SelectContext(ctx, &rows, query,
		string(to), string(models.BookingStatusScheduled), now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to activate scheduled bookings: %w", err)
	}

	activated := make([]models.Booking, 0, len(rows))
	for i := range rows {
		activated = append(activated, *rows[i].toModel())
	}
	return activated, nil
}

func (r *bookingRepo) ExpireStale(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $1
		WHERE status IN ($2, $3)
		  AND driver_id IS NULL
		  AND requested_at < $4
		RETURNING` + bookingColumns

	var rows []bookingRow
	err := r.db.SelectContext(ctx, &rows, query,
		string(models.BookingStatusExpired),
		string(models.BookingStatusPending), string(models.BookingStatusLookingForDriver),
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to expire bookings: %w", err)
	}

	expired := make([]models.Booking, 0, len(rows))
	for i := range rows {
		expired = append(expired, *rows[i].toModel())
	}
	return expired, nil
}

// requireAffected converts a zero-row conditional UPDATE into the typed
// failure the state machine reports: not found, wrong driver, or illegal
// transition.
func (r *bookingRepo) requireAffected(ctx context.Context, result sql.Result, bookingID uuid.UUID, driverID *uuid.UUID) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected > 0 {
		return nil
	}

	current, err := r.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if driverID != nil && (current.DriverID == nil || *current.DriverID != *driverID) {
		return booking.ErrNotAssignedDriver
	}
	return booking.ErrInvalidTransition
}
