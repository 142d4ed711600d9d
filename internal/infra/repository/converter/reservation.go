package converter

import (
	"encoding/json"
	"time"

	"campbook/internal/domain/quote"
	"campbook/internal/domain/reservation"
	"campbook/internal/pkg/errs"
	"campbook/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

var ErrCorruptedRow = errs.New("stored reservation row is corrupted")

// ReservationRow mirrors the reservations table.
type ReservationRow struct {
	ID               uuid.UUID
	SiteID           uuid.UUID
	Stay             pgtype.Range[pgtype.Date]
	Guests           int32
	Status           string
	Quote            []byte
	ExpiresAt        pgtype.Timestamptz
	PaymentIntentRef pgtype.Text
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ScanTargets returns the row fields in ReservationColumns order.
func (r *ReservationRow) ScanTargets() []any {
	return []any{
		&r.ID, &r.SiteID, &r.Stay, &r.Guests, &r.Status, &r.Quote,
		&r.ExpiresAt, &r.PaymentIntentRef, &r.CreatedAt, &r.UpdatedAt,
	}
}

const ReservationColumns = "id, site_id, stay, guests, status, quote, expires_at, payment_intent_ref, created_at, updated_at"

func ReservationToRow(res *reservation.Reservation) (ReservationRow, error) {
	rec := res.Record()
	raw, err := json.Marshal(rec.Quote)
	if err != nil {
		return ReservationRow{}, errs.Wrapf(err, "encode quote of reservation %s", rec.ID)
	}
	return ReservationRow{
		ID:               rec.ID,
		SiteID:           rec.SiteID,
		Stay:             pgconv.StayToRange(rec.Stay),
		Guests:           int32(rec.Guests), // #nosec G115 -- bounded by class max occupancy
		Status:           string(rec.Status),
		Quote:            raw,
		ExpiresAt:        pgconv.TimeToPgtype(rec.ExpiresAt),
		PaymentIntentRef: pgconv.StringToPgtype(rec.PaymentIntentRef),
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}, nil
}

func RowToReservation(row ReservationRow) (*reservation.Reservation, error) {
	s, err := pgconv.StayFromRange(row.Stay)
	if err != nil {
		return nil, errs.Mark(errs.Wrapf(err, "reservation %s stay", row.ID), ErrCorruptedRow)
	}
	status := reservation.Status(row.Status)
	if !status.IsValid() {
		return nil, errs.Mark(errs.Newf("reservation %s has status %q", row.ID, row.Status), ErrCorruptedRow)
	}
	var q quote.Quote
	if err := json.Unmarshal(row.Quote, &q); err != nil {
		return nil, errs.Mark(errs.Wrapf(err, "reservation %s quote", row.ID), ErrCorruptedRow)
	}
	return reservation.Reconstruct(reservation.Record{
		ID:               row.ID,
		SiteID:           row.SiteID,
		Stay:             s,
		Guests:           int(row.Guests),
		Status:           status,
		Quote:            &q,
		ExpiresAt:        pgconv.TimeFromPgtype(row.ExpiresAt),
		PaymentIntentRef: pgconv.StringFromPgtype(row.PaymentIntentRef),
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}), nil
}
