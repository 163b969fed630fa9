package httpx

import (
	"errors"
	"net/http"

	apperrors "github.com/relaycrm/outreach-api/internal/errors"
)

// WriteAppError maps an application error onto an HTTP response.
//
// Access-denied errors are rendered exactly like not-found: a caller probing
// another workspace's resource ids must not learn that the resource exists.
// Unrecognized errors become a generic 500 so internal detail never leaks.
func WriteAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "internal_error",
			Err:     errors.New("internal server error"),
		})
		return
	}

	switch appErr.Code {
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeAccessDenied:
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "not_found",
			Err:     errors.New("resource not found"),
		})
	case apperrors.ErrCodeValidation:
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: appErr})
	case apperrors.ErrCodeConflict, apperrors.ErrCodeForeignKey:
		WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "conflict", Err: appErr})
	case apperrors.ErrCodeNotReady:
		WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "not_ready", Err: appErr})
	case apperrors.ErrCodeTimeout:
		WriteError(w, ErrorParams{Code: http.StatusGatewayTimeout, ErrCode: "timeout", Err: appErr})
	case apperrors.ErrCodeProvider:
		WriteError(w, ErrorParams{Code: http.StatusBadGateway, ErrCode: "provider_error", Err: appErr})
	default:
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "internal_error",
			Err:     errors.New("internal server error"),
		})
	}
}
