package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/q6kkhvmy6s/rsvp/internal/dto"
	"github.com/q6kkhvmy6s/rsvp/internal/export"
	"github.com/q6kkhvmy6s/rsvp/internal/links"
	"github.com/q6kkhvmy6s/rsvp/internal/middleware"
	"github.com/q6kkhvmy6s/rsvp/internal/service"
)

type ReservationHandler struct {
	svc service.ReservationService
}

func NewReservationHandler(svc service.ReservationService) *ReservationHandler {
	return &ReservationHandler{svc: svc}
}

func (h *ReservationHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/reservation/:id", h.GetForm)
	e.POST("/api/reservation/:id", h.SubmitReservation)

	events := e.Group("/api/events/:id", middleware.RequireAuth)
	events.GET("/reservations", h.ListReservations)
	events.DELETE("/reservations/:rid", h.DeleteReservation)
	events.GET("/export", h.ExportReservations, middleware.RequireAdmin)
}

// GetForm renders the public form. The query carries the link's ref and
// prefill parameters.
func (h *ReservationHandler) GetForm(c echo.Context) error {
	pf, err := h.svc.PublicForm(c.Request().Context(), c.Param("id"), links.DecodePrefill(c.QueryParams()))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToPublicFormResponse(pf))
}

func (h *ReservationHandler) SubmitReservation(c echo.Context) error {
	var req dto.SubmitReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	r, err := h.svc.Submit(c.Request().Context(), c.Param("id"), links.DecodePrefill(c.QueryParams()), req.FormData)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *ReservationHandler) ListReservations(c echo.Context) error {
	list, err := h.svc.List(
		c.Request().Context(),
		middleware.SessionFrom(c),
		c.Param("id"),
		c.QueryParam("sort"),
		export.ParseDirection(c.QueryParam("dir")),
	)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToReservationListResponse(list))
}

func (h *ReservationHandler) DeleteReservation(c echo.Context) error {
	err := h.svc.Delete(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"), c.Param("rid"))
	if err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ReservationHandler) ExportReservations(c echo.Context) error {
	var buf bytes.Buffer
	filename, err := h.svc.Export(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"), &buf)
	if err != nil {
		return httpError(err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
