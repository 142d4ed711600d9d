package pgconv

import (
	"database/sql"
	"errors"
	"time"

	"campbook/internal/domain/stay"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

func UUIDToPgtype(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: id != uuid.Nil}
}

func UUIDFromPgtype(pu pgtype.UUID) uuid.UUID {
	if !pu.Valid {
		return uuid.Nil
	}
	return uuid.UUID(pu.Bytes)
}

func UUIDsToPgtype(ids []uuid.UUID) []pgtype.UUID {
	out := make([]pgtype.UUID, len(ids))
	for i, id := range ids {
		out[i] = UUIDToPgtype(id)
	}
	return out
}

func TimeToPgtype(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}

// TimeFromPgtype maps NULL to the zero time.
func TimeFromPgtype(pt pgtype.Timestamptz) time.Time {
	if !pt.Valid {
		return time.Time{}
	}
	return pt.Time.UTC()
}

func DateToPgtype(d time.Time) pgtype.Date {
	return pgtype.Date{Time: stay.Day(d), Valid: !d.IsZero()}
}

func DateFromPgtype(pd pgtype.Date) time.Time {
	if !pd.Valid {
		return time.Time{}
	}
	return stay.Day(pd.Time)
}

func StringToPgtype(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func StringFromPgtype(pt pgtype.Text) string {
	if !pt.Valid {
		return ""
	}
	return pt.String
}

// StayToRange renders s as a half-open daterange.
func StayToRange(s stay.Stay) pgtype.Range[pgtype.Date] {
	return pgtype.Range[pgtype.Date]{
		Lower:     DateToPgtype(s.Arrival()),
		Upper:     DateToPgtype(s.Departure()),
		LowerType: pgtype.Inclusive,
		UpperType: pgtype.Exclusive,
		Valid:     true,
	}
}

// StayFromRange expects the canonical [lower, upper) form postgres returns
// for discrete ranges.
func StayFromRange(r pgtype.Range[pgtype.Date]) (stay.Stay, error) {
	if !r.Valid || r.LowerType != pgtype.Inclusive || r.UpperType != pgtype.Exclusive {
		return stay.Stay{}, stay.ErrInvalidRange
	}
	return stay.New(DateFromPgtype(r.Lower), DateFromPgtype(r.Upper))
}

// IsNoRows checks if the error is a "no rows" error from either sql or pgx
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}
