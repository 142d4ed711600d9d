package api

import (
	"net/http"

	reqdto "campbook/internal/handler/dto/request"
	resdto "campbook/internal/handler/dto/response"
	"campbook/internal/handler/httperr"
	"campbook/internal/pkg/config"
	"campbook/internal/usecase/commands"
	"campbook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	cmds         commands.BookingCommands
	pricing      queries.PricingQueries
	reservations queries.ReservationQueries
	currency     string
}

func NewBookingHandler(
	cmds commands.BookingCommands,
	pricing queries.PricingQueries,
	reservations queries.ReservationQueries,
	cfg config.BookingConfig,
) *BookingHandler {
	return &BookingHandler{
		cmds:         cmds,
		pricing:      pricing,
		reservations: reservations,
		currency:     cfg.Currency,
	}
}

// Quote prices a stay without allocating anything.
func (h *BookingHandler) Quote(c *gin.Context) {
	var req reqdto.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	params, err := req.ToParams()
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	q, err := h.pricing.Quote(c.Request.Context(), params)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromQuote(q, h.currency))
}

func (h *BookingHandler) Hold(c *gin.Context) {
	var req reqdto.HoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	params, err := req.ToParams()
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	view, err := h.cmds.Hold(c.Request.Context(), params)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromReservationView(view, h.currency))
}

func (h *BookingHandler) Confirm(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req reqdto.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	view, err := h.cmds.Confirm(c.Request.Context(), id, req.PaymentIntentRef)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationView(view, h.currency))
}

func (h *BookingHandler) Release(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	view, err := h.cmds.Release(c.Request.Context(), id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationView(view, h.currency))
}

func (h *BookingHandler) GetReservation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	view, err := h.reservations.GetByID(c.Request.Context(), id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationView(view, h.currency))
}

// Rates lists nightly rates for a site over [from, to).
func (h *BookingHandler) Rates(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var q reqdto.RatesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "from and to are required", nil)
		return
	}
	from, to, err := q.Range()
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	view, err := h.pricing.Rates(c.Request.Context(), id, from, to)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRatesView(view, h.currency))
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}
