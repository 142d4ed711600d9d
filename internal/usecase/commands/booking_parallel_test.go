package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"campbook/internal/domain/inventory"
	"campbook/internal/domain/quote"
	"campbook/internal/domain/stay"
	"campbook/internal/infra/memory"
	"campbook/internal/infra/payment"
	"campbook/internal/pkg/clock"
	"campbook/internal/pkg/config"
	"campbook/internal/pkg/errs"
	"campbook/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelHoldsOnOneSite(t *testing.T) {
	catalog, err := memory.LoadCatalogFile("../../../fixtures/catalog.json")
	require.NoError(t, err)

	cfg := config.NewTestConfig()
	booking := commands.NewBookingUseCase(
		catalog,
		memory.NewAllocationStore(),
		payment.NewPrefixVerifier(cfg.Payment.IntentPrefix),
		nil,
		nil,
		quote.NewAssembler(cfg.Booking.MaxStayNights),
		cfg.Booking,
		clock.NewMockClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)),
	)

	params := commands.HoldParams{
		SiteID:    uuid.MustParse("2b000000-0000-4000-8000-000000000001"),
		Arrival:   stay.Date(2025, time.September, 11),
		Departure: stay.Date(2025, time.September, 14),
		Guests:    2,
	}

	const attempts = 100
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
		others    []error
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := booking.Hold(context.Background(), params)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errs.Is(err, inventory.ErrConflict):
				conflicts++
			default:
				others = append(others, err)
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, others)
	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, conflicts)
}
