package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/q6kkhvmy6s/rsvp/internal/service"
)

// httpError maps service errors to HTTP errors with the service message.
func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrReservationNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrRecentLoginRequired):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrSelfDemotion):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrEventDisabled),
		errors.Is(err, service.ErrReservationsPaused),
		errors.Is(err, service.ErrEmailTaken):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrMissingAnswers),
		errors.Is(err, service.ErrInvalidEvent),
		errors.Is(err, service.ErrNotInternalField),
		errors.Is(err, service.ErrEmptyPrefillValue),
		errors.Is(err, service.ErrNothingToExport),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidRole):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
