package handler_test

import (
	"net/http"
	"testing"
	"time"

	"campbook/internal/domain/quote"
	"campbook/internal/handler"
	"campbook/internal/handler/api"
	resdto "campbook/internal/handler/dto/response"
	"campbook/internal/handler/middleware"
	"campbook/internal/infra/events"
	"campbook/internal/infra/memory"
	"campbook/internal/infra/payment"
	"campbook/internal/pkg/clock"
	"campbook/internal/pkg/config"
	"campbook/internal/testutil/httptest"
	"campbook/internal/usecase/commands"
	"campbook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	siteT1 = "2b000000-0000-4000-8000-000000000001"
	siteT4 = "2b000000-0000-4000-8000-000000000004"
)

type BookingFlowTestSuite struct {
	suite.Suite
	router  *gin.Engine
	clock   *clock.MockClock
	sweeper *commands.Sweeper
}

func TestBookingFlowSuite(t *testing.T) {
	suite.Run(t, new(BookingFlowTestSuite))
}

func (s *BookingFlowTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	cfg := config.NewTestConfig()

	catalog, err := memory.LoadCatalogFile("../../fixtures/catalog.json")
	require.NoError(s.T(), err)
	store := memory.NewAllocationStore()
	s.clock = clock.NewMockClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	assembler := quote.NewAssembler(cfg.Booking.MaxStayNights)

	booking := commands.NewBookingUseCase(
		catalog,
		store,
		payment.NewPrefixVerifier(cfg.Payment.IntentPrefix),
		events.NewLogPublisher(nil),
		nil,
		assembler,
		cfg.Booking,
		s.clock,
	)
	s.sweeper = commands.NewSweeper(booking, time.Minute)

	s.router = gin.New()
	h := api.NewBookingHandler(
		booking,
		queries.NewPricingQueries(catalog, store, assembler, s.clock),
		queries.NewReservationQueries(store),
		cfg.Booking,
	)
	handler.NewRouter(s.router, cfg, middleware.NewLogger(cfg.Log), h)
}

// Thursday to Sunday on a tent site: one weekday and two weekend nights.
func stayBody(siteID string) map[string]any {
	return map[string]any{
		"site_id":   siteID,
		"arrival":   "2025-09-11",
		"departure": "2025-09-14",
		"guests":    2,
	}
}

func (s *BookingFlowTestSuite) hold(body map[string]any) resdto.ReservationResponse {
	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/holds", body)
	var res resdto.ReservationResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusCreated, &res)
	return res
}

func (s *BookingFlowTestSuite) TestQuoteWeekendStay() {
	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/quotes", stayBody(siteT1))

	var res resdto.QuoteResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &res)
	s.Require().Len(res.Nights, 3)
	s.Equal([]int64{5000, 7000, 7000}, []int64{res.Nights[0].Rate, res.Nights[1].Rate, res.Nights[2].Rate})
	s.Equal(int64(19000), res.Total)
	s.Equal(int64(5700), res.Deposit.Amount)
	s.Equal(int64(13300), res.Deposit.Balance)
}

func (s *BookingFlowTestSuite) TestHoldConfirmLifecycle() {
	held := s.hold(stayBody(siteT1))
	s.Equal("held", held.Status)
	s.Require().NotNil(held.ExpiresAt)
	s.True(s.clock.Now().Add(15*time.Minute).Equal(*held.ExpiresAt))

	overlap := stayBody(siteT1)
	overlap["arrival"] = "2025-09-13"
	overlap["departure"] = "2025-09-15"
	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/holds", overlap)
	detail := httptest.AssertErrorResponse(s.T(), w, http.StatusConflict, "allocated by another booking")
	s.Equal([]any{"2025-09-13"}, detail["nights"])
	s.Equal(siteT1, detail["site_id"])

	adjacent := stayBody(siteT1)
	adjacent["arrival"] = "2025-09-14"
	adjacent["departure"] = "2025-09-16"
	s.hold(adjacent)

	s.clock.Add(5 * time.Minute)
	w = httptest.PerformRequest(s.T(), s.router, http.MethodPost,
		"/api/holds/"+held.ID.String()+"/confirm", map[string]any{"payment_intent_ref": "pi_3Nx"})
	var confirmed resdto.ReservationResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &confirmed)
	s.Equal("confirmed", confirmed.Status)
	s.Equal("pi_3Nx", confirmed.PaymentIntentRef)
	s.Equal(int64(19000), confirmed.Quote.Total)

	w = httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations/"+held.ID.String(), nil)
	var got resdto.ReservationResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)
	s.Equal("confirmed", got.Status)

	w = httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/api/holds/"+held.ID.String(), nil)
	httptest.AssertErrorResponse(s.T(), w, http.StatusConflict, "")
}

func (s *BookingFlowTestSuite) TestConfirmAfterExpiry() {
	held := s.hold(stayBody(siteT1))

	s.clock.Add(16 * time.Minute)
	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost,
		"/api/holds/"+held.ID.String()+"/confirm", map[string]any{"payment_intent_ref": "pi_3Nx"})
	httptest.AssertErrorResponse(s.T(), w, http.StatusGone, "expired")

	w = httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations/"+held.ID.String(), nil)
	var got resdto.ReservationResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)
	s.Equal("released", got.Status)

	again := s.hold(stayBody(siteT1))
	s.Equal("held", again.Status)
}

func (s *BookingFlowTestSuite) TestRejectedPaymentReleasesHold() {
	held := s.hold(stayBody(siteT1))

	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost,
		"/api/holds/"+held.ID.String()+"/confirm", map[string]any{"payment_intent_ref": "ch_bogus"})
	httptest.AssertErrorResponse(s.T(), w, http.StatusPaymentRequired, "Payment")

	s.hold(stayBody(siteT1))
}

func (s *BookingFlowTestSuite) TestSweeperFreesExpiredHolds() {
	held := s.hold(stayBody(siteT1))
	s.clock.Add(20 * time.Minute)

	s.Equal(1, s.sweeper.SweepOnce(s.T().Context()))

	w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations/"+held.ID.String(), nil)
	var got resdto.ReservationResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)
	s.Equal("released", got.Status)
}

func (s *BookingFlowTestSuite) TestReleaseIsIdempotent() {
	held := s.hold(stayBody(siteT1))
	for range 2 {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/api/holds/"+held.ID.String(), nil)
		var res resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &res)
		s.Equal("released", res.Status)
	}
	s.hold(stayBody(siteT1))
}

func (s *BookingFlowTestSuite) TestInactiveSiteAndGuests() {
	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/quotes", stayBody(siteT4))
	httptest.AssertErrorResponse(s.T(), w, http.StatusConflict, "not bookable")

	crowd := stayBody(siteT1)
	crowd["guests"] = 7
	w = httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/quotes", crowd)
	httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Guest count")
}

func (s *BookingFlowTestSuite) TestRates() {
	w := httptest.PerformRequest(s.T(), s.router, http.MethodGet,
		"/api/sites/"+siteT1+"/rates?from=2025-07-03&to=2025-07-06", nil)

	var res resdto.RatesResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &res)
	s.Require().Len(res.Nights, 3)
	s.Equal(int64(5000), res.Nights[0].Rate)
	s.Equal(int64(9000), res.Nights[1].Rate)
	s.Equal(int64(7000), res.Nights[2].Rate)
	s.NotEmpty(res.RuleSetVersion)
}
