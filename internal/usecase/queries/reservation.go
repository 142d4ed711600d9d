package queries

import (
	"context"

	"campbook/internal/usecase/shared"

	"github.com/google/uuid"
)

type ReservationQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ReservationView, error)
}

type reservationQueriesImpl struct {
	store shared.AllocationStore
}

func NewReservationQueries(store shared.AllocationStore) ReservationQueries {
	return &reservationQueriesImpl{store: store}
}

func (q *reservationQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*ReservationView, error) {
	r, err := q.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewReservationView(r), nil
}
