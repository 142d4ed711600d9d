package repository

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"campbook/internal/domain/inventory"
	"campbook/internal/domain/reservation"
	"campbook/internal/domain/stay"
	"campbook/internal/infra"
	"campbook/internal/infra/db"
	"campbook/internal/infra/repository/converter"
	"campbook/internal/pkg/errs"
	"campbook/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// occupying lists the statuses covered by the reservations_no_overlap
// exclusion constraint.
const occupying = "('held', 'confirmed', 'checked_in', 'checked_out')"

// live filters occupying rows whose hold, if any, has not expired at $now.
const live = "status IN " + occupying + " AND (status <> 'held' OR expires_at > @now)"

type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error
	WithDB(ctx context.Context, fn func(ctx context.Context, conn db.DBTX) error) error
}

// ReservationRepository is the PostgreSQL AllocationStore. Site exclusivity
// is enforced by the exclusion constraint; the site row lock only orders
// concurrent holds so losers see the winner's id.
type ReservationRepository struct {
	uow UnitOfWork
}

func NewReservationRepository(uow UnitOfWork) *ReservationRepository {
	return &ReservationRepository{uow: uow}
}

func (r *ReservationRepository) CreateHold(ctx context.Context, res *reservation.Reservation, now time.Time) error {
	row, err := converter.ReservationToRow(res)
	if err != nil {
		return err
	}

	return r.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.Exec(ctx, `SELECT 1 FROM sites WHERE id = $1 FOR UPDATE`, row.SiteID); err != nil {
			return infra.WrapRepoErr("failed to lock site", err)
		}

		expired, err := releaseExpiredOverlaps(ctx, tx, row.SiteID, row.Stay, now)
		if err != nil {
			return err
		}
		for _, id := range expired {
			slog.Info("released expired hold in the way of a new hold", "hold_id", id, "site_id", row.SiteID)
		}

		var existing uuid.UUID
		err = tx.QueryRow(ctx, `
			SELECT id FROM reservations
			WHERE site_id = @site AND stay && @stay AND `+live+`
			ORDER BY lower(stay), id
			LIMIT 1`,
			pgx.NamedArgs{"site": row.SiteID, "stay": row.Stay, "now": now},
		).Scan(&existing)
		switch {
		case err == nil:
			return &inventory.ConflictError{SiteID: row.SiteID, Requested: res.Stay(), Existing: existing}
		case !pgconv.IsNoRows(err):
			return infra.WrapRepoErr("failed to check overlapping allocations", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO reservations (`+converter.ReservationColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			row.ID, row.SiteID, row.Stay, row.Guests, row.Status, row.Quote,
			row.ExpiresAt, row.PaymentIntentRef, row.CreatedAt, row.UpdatedAt,
		)
		if err != nil {
			wrapped := infra.WrapRepoErr("failed to insert hold", err)
			if infra.IsKind(wrapped, infra.KindConflict) {
				return &inventory.ConflictError{SiteID: row.SiteID, Requested: res.Stay()}
			}
			return wrapped
		}
		return nil
	})
}

func releaseExpiredOverlaps(ctx context.Context, tx db.DBTX, siteID uuid.UUID, rg pgtype.Range[pgtype.Date], now time.Time) ([]uuid.UUID, error) {
	rows, err := tx.Query(ctx, `
		UPDATE reservations SET status = 'released', updated_at = @now
		WHERE site_id = @site AND stay && @stay AND status = 'held' AND expires_at <= @now
		RETURNING id`,
		pgx.NamedArgs{"site": siteID, "stay": rg, "now": now},
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to release expired holds", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, infra.WrapRepoErr("failed to release expired holds", err)
	}
	return ids, nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	var res *reservation.Reservation
	err := r.uow.WithDB(ctx, func(ctx context.Context, conn db.DBTX) error {
		var row converter.ReservationRow
		err := conn.QueryRow(ctx,
			`SELECT `+converter.ReservationColumns+` FROM reservations WHERE id = $1`, id,
		).Scan(row.ScanTargets()...)
		if err != nil {
			if pgconv.IsNoRows(err) {
				return errs.Mark(infra.WrapRepoErr("reservation not found", err), errs.ErrReservationNotFound)
			}
			return infra.WrapRepoErr("failed to find reservation by ID", err)
		}
		res, err = converter.RowToReservation(row)
		return err
	})
	return res, err
}

// Transition writes the lifecycle fields of res when the stored status is
// still from. A confirmation also requires the stored hold to be live.
func (r *ReservationRepository) Transition(ctx context.Context, res *reservation.Reservation, from reservation.Status, now time.Time) error {
	row, err := converter.ReservationToRow(res)
	if err != nil {
		return err
	}

	return r.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		tag, err := tx.Exec(ctx, `
			UPDATE reservations
			SET status = @to, payment_intent_ref = @ref, updated_at = @updated,
			    expires_at = CASE WHEN @to = 'confirmed' THEN NULL ELSE expires_at END
			WHERE id = @id AND status = @from
			  AND (@to <> 'confirmed' OR expires_at > @now)`,
			pgx.NamedArgs{
				"id":      row.ID,
				"from":    string(from),
				"to":      row.Status,
				"ref":     row.PaymentIntentRef,
				"updated": row.UpdatedAt,
				"now":     now,
			},
		)
		if err != nil {
			return infra.WrapRepoErr("failed to update reservation status", err)
		}
		if tag.RowsAffected() == 1 {
			return nil
		}

		var stored string
		err = tx.QueryRow(ctx, `SELECT status FROM reservations WHERE id = $1`, row.ID).Scan(&stored)
		if err != nil {
			if pgconv.IsNoRows(err) {
				return errs.Wrapf(errs.ErrReservationNotFound, "reservation %s", row.ID)
			}
			return infra.WrapRepoErr("failed to read reservation status", err)
		}
		return errs.Wrapf(errs.ErrStaleAllocation, "reservation %s is %s, expected live %s", row.ID, stored, from)
	})
}

func (r *ReservationRepository) BlockedNights(ctx context.Context, siteID uuid.UUID, s stay.Stay, now time.Time) ([]time.Time, error) {
	var out []time.Time
	err := r.uow.WithDB(ctx, func(ctx context.Context, conn db.DBTX) error {
		rows, err := conn.Query(ctx, `
			SELECT stay FROM reservations
			WHERE site_id = @site AND stay && @stay AND `+live,
			pgx.NamedArgs{"site": siteID, "stay": pgconv.StayToRange(s), "now": now},
		)
		if err != nil {
			return infra.WrapRepoErr("failed to query blocked nights", err)
		}
		ranges, err := pgx.CollectRows(rows, pgx.RowTo[pgtype.Range[pgtype.Date]])
		if err != nil {
			return infra.WrapRepoErr("failed to scan blocked nights", err)
		}

		for _, rg := range ranges {
			taken, err := pgconv.StayFromRange(rg)
			if err != nil {
				return errs.Mark(err, converter.ErrCorruptedRow)
			}
			for _, night := range s.Dates() {
				if taken.Contains(night) {
					out = append(out, night)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, time.Time.Compare)
	return slices.CompactFunc(out, time.Time.Equal), nil
}

func (r *ReservationRepository) Occupancy(ctx context.Context, siteIDs []uuid.UUID, s stay.Stay, now time.Time) (map[time.Time]int, error) {
	out := make(map[time.Time]int, s.Nights())
	if len(siteIDs) == 0 {
		return out, nil
	}
	err := r.uow.WithDB(ctx, func(ctx context.Context, conn db.DBTX) error {
		rows, err := conn.Query(ctx, `
			SELECT night::date, count(DISTINCT site_id)
			FROM reservations,
			     generate_series(@from::date, @to::date - 1, interval '1 day') AS night
			WHERE site_id = ANY(@sites) AND stay @> night::date AND `+live+`
			GROUP BY night`,
			pgx.NamedArgs{
				"sites": pgconv.UUIDsToPgtype(siteIDs),
				"from":  pgconv.DateToPgtype(s.Arrival()),
				"to":    pgconv.DateToPgtype(s.Departure()),
				"now":   now,
			},
		)
		if err != nil {
			return infra.WrapRepoErr("failed to query occupancy", err)
		}
		defer rows.Close()
		for rows.Next() {
			var night pgtype.Date
			var n int64
			if err := rows.Scan(&night, &n); err != nil {
				return infra.WrapRepoErr("failed to scan occupancy", err)
			}
			out[pgconv.DateFromPgtype(night)] = int(n)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReservationRepository) ExpiredHolds(ctx context.Context, now time.Time, limit int) ([]*reservation.Reservation, error) {
	var out []*reservation.Reservation
	err := r.uow.WithDB(ctx, func(ctx context.Context, conn db.DBTX) error {
		rows, err := conn.Query(ctx, `
			SELECT `+converter.ReservationColumns+` FROM reservations
			WHERE status = 'held' AND expires_at <= $1
			ORDER BY expires_at, id
			LIMIT $2`, now, limit)
		if err != nil {
			return infra.WrapRepoErr("failed to query expired holds", err)
		}
		defer rows.Close()
		for rows.Next() {
			var row converter.ReservationRow
			if err := rows.Scan(row.ScanTargets()...); err != nil {
				return infra.WrapRepoErr("failed to scan expired hold", err)
			}
			res, err := converter.RowToReservation(row)
			if err != nil {
				return err
			}
			out = append(out, res)
		}
		return rows.Err()
	})
	return out, err
}
