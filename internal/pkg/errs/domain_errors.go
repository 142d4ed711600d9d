package errs

import "errors"

// Sentinel errors shared by the usecase and handler layers
var (
	// Catalog errors
	ErrSiteNotFound     = errors.New("site not found")
	ErrSiteInactive     = errors.New("site is not bookable")
	ErrCatalogCorrupted = errors.New("catalog data is inconsistent")

	// Allocation errors
	ErrReservationNotFound = errors.New("reservation not found")
	ErrStaleAllocation     = errors.New("allocation changed concurrently")
	ErrSiteLocked          = errors.New("site is locked by another booking")

	// Payment errors
	ErrPaymentIntentInvalid = errors.New("payment intent is invalid")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
