package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// MapHTTP converts service and infra errors into an HTTP status plus a
// client-safe message. Keeps the handlers clean by centralizing the
// taxonomy in one place.
func MapHTTP(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	var ve *ValidationError
	var ce *InvalidCardReferenceError
	var nfe *NotFoundError

	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Msg

	case errors.As(err, &ce):
		return http.StatusBadRequest, ce.Error()

	case errors.As(err, &nfe):
		return http.StatusNotFound, nfe.Msg

	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "record not found"

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"

	case errors.Is(err, context.Canceled):
		return 499, "request was canceled"

	default:
		return http.StatusInternalServerError, err.Error()
	}
}
