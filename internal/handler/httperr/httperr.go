package httperr

import (
	"net/http"

	"campbook/internal/domain/inventory"
	"campbook/internal/domain/quote"
	"campbook/internal/domain/reservation"
	"campbook/internal/domain/stay"
	"campbook/internal/domain/upsell"
	"campbook/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

// Abort maps a usecase error to its status, message and detail.
func Abort(c *gin.Context, err error) {
	status, msg := Classify(err)
	AbortWithError(c, status, err, msg, detailOf(err, status))
}

func Classify(err error) (int, string) {
	switch {
	case errs.Is(err, stay.ErrInvalidRange):
		return http.StatusBadRequest, "Invalid stay range"
	case errs.Is(err, quote.ErrInvalidGuests):
		return http.StatusBadRequest, "Guest count not admitted by the site class"
	case errs.Is(err, upsell.ErrUnknownItem),
		errs.Is(err, upsell.ErrInvalidQuantity):
		return http.StatusBadRequest, "Invalid upsell selection"
	case errs.Is(err, errs.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid request"
	case errs.Is(err, errs.ErrSiteNotFound):
		return http.StatusNotFound, "Site not found"
	case errs.Is(err, errs.ErrReservationNotFound):
		return http.StatusNotFound, "Reservation not found"
	case errs.Is(err, reservation.ErrHoldExpired):
		return http.StatusGone, "Hold has expired"
	case errs.Is(err, errs.ErrPaymentIntentInvalid):
		return http.StatusPaymentRequired, "Payment intent rejected"
	case errs.Is(err, quote.ErrUnavailable):
		return http.StatusConflict, "Site is unavailable for the requested stay"
	case errs.Is(err, inventory.ErrConflict):
		return http.StatusConflict, "Site was allocated by another booking"
	case errs.Is(err, quote.ErrSiteInactive), errs.Is(err, errs.ErrSiteInactive):
		return http.StatusConflict, "Site is not bookable"
	case errs.Is(err, upsell.ErrInsufficientStock):
		return http.StatusConflict, "Upsell item out of stock"
	case errs.Is(err, errs.ErrStaleAllocation),
		errs.Is(err, errs.ErrSiteLocked),
		errs.Is(err, reservation.ErrInvalidTransition):
		return http.StatusConflict, "Reservation changed concurrently"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func detailOf(err error, status int) any {
	if status >= http.StatusInternalServerError {
		return nil
	}
	var unavailable *quote.AvailabilityError
	if errs.As(err, &unavailable) {
		nights := make([]string, len(unavailable.Nights))
		for i, n := range unavailable.Nights {
			nights[i] = n.Format(stay.DateLayout)
		}
		return gin.H{"site_id": unavailable.SiteID, "nights": nights}
	}
	var conflict *inventory.ConflictError
	if errs.As(err, &conflict) {
		detail := gin.H{"site_id": conflict.SiteID}
		if conflict.Existing != uuid.Nil {
			detail["existing_id"] = conflict.Existing
		}
		if len(conflict.Nights) > 0 {
			nights := make([]string, len(conflict.Nights))
			for i, n := range conflict.Nights {
				nights[i] = n.Format(stay.DateLayout)
			}
			detail["nights"] = nights
		}
		return detail
	}
	var guests *quote.GuestCountError
	if errs.As(err, &guests) {
		return gin.H{"guests": guests.Guests, "max_occupancy": guests.MaxOccupancy}
	}
	var expired *reservation.HoldExpiredError
	if errs.As(err, &expired) {
		return gin.H{"hold_id": expired.ID, "expired_at": expired.ExpiredAt}
	}
	var stock *upsell.InsufficientStockError
	if errs.As(err, &stock) {
		return gin.H{"item_id": stock.ItemID, "requested": stock.Requested, "available": stock.Available}
	}
	return nil
}
