package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"user_service/internal/auth"
	resp "user_service/internal/lib/api/response"
	sl "user_service/internal/lib/logger"

	"github.com/go-chi/render"
)

// StatusFor maps an error kind from the auth service to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, auth.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes the error envelope. Only client errors keep their
// message; upstream and internal failures are logged and replaced.
func RespondError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status := StatusFor(err)

	msg := "Internal error"
	switch status {
	case http.StatusBadGateway:
		msg = "upstream failure"
	case http.StatusInternalServerError:
	default:
		var authErr *auth.Error
		if errors.As(err, &authErr) {
			msg = authErr.Error()
		}
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed", sl.Err(err))
	} else {
		log.Info("request rejected", sl.Err(err))
	}

	render.Status(r, status)
	render.JSON(w, r, resp.Error(msg))
}
