package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/service"
	"github.com/aussiebroadwan/hackreg/pkg/httpx"
	"github.com/aussiebroadwan/hackreg/pkg/regsdk"
	"github.com/aussiebroadwan/hackreg/pkg/slogx"
)

// statusFor maps a service error kind to its HTTP status.
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindAuthentication, service.KindToken:
		return http.StatusUnauthorized
	case service.KindAuthorization, service.KindDeadlineExceeded:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err. Unexpected errors are logged and hidden.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var se *service.Error
	if !errors.As(err, &se) || se.Kind == service.KindInternal {
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, regsdk.ErrorCodeServerError, "Something went wrong.")
		return
	}

	body := regsdk.ErrorResponse{
		Error:            se.Kind.String(),
		ErrorDescription: se.Msg,
	}
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			body.Fields = append(body.Fields, regsdk.FieldError{Field: fe.Field, Reason: fe.Reason})
		}
	}
	httpx.WriteJSON(w, statusFor(se.Kind), body)
}

func writeBadRequest(w http.ResponseWriter, desc string) {
	httpx.WriteError(w, http.StatusBadRequest, regsdk.ErrorCodeInvalidRequest, desc)
}

func writeForbidden(w http.ResponseWriter, desc string) {
	httpx.WriteError(w, http.StatusForbidden, regsdk.ErrorCodeAuthorization, desc)
}

// decode reads a JSON body, writing a 400 and returning false on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		writeBadRequest(w, err.Error())
		return false
	}
	return true
}
