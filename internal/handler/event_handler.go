package handler

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/q6kkhvmy6s/rsvp/internal/dto"
	"github.com/q6kkhvmy6s/rsvp/internal/middleware"
	"github.com/q6kkhvmy6s/rsvp/internal/models"
	"github.com/q6kkhvmy6s/rsvp/internal/service"
	"github.com/q6kkhvmy6s/rsvp/pkg/logger"
	"go.uber.org/zap"
)

type EventHandler struct {
	svc service.EventService
}

func NewEventHandler(svc service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

func (h *EventHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/public/events/:id", h.GetPublicEvent)

	events := e.Group("/api/events", middleware.RequireAuth)
	events.GET("", h.ListEvents)
	events.POST("", h.CreateEvent, middleware.RequireAdmin)
	events.GET("/:id", h.GetEvent)
	events.PUT("/:id", h.UpdateEvent, middleware.RequireAdmin)
	events.POST("/:id/status/toggle", h.ToggleStatus, middleware.RequireAdmin)
	events.POST("/:id/accepting/toggle", h.ToggleAccepting, middleware.RequireAdmin)
	events.POST("/:id/image", h.UploadImage, middleware.RequireAdmin)
	events.POST("/:id/join", h.JoinEvent)
	events.GET("/:id/links", h.GetLinks)
	events.POST("/:id/links/prefilled", h.CreatePrefilledLink)
}

func (h *EventHandler) ListEvents(c echo.Context) error {
	d, err := h.svc.ListDashboard(c.Request().Context(), middleware.SessionFrom(c), c.QueryParam("sort"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToDashboardResponse(d))
}

// CreateEvent accepts either a JSON body or a multipart form carrying the
// event JSON in "event" and an optional "image" file.
func (h *EventHandler) CreateEvent(c echo.Context) error {
	req, image, err := bindEvent(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	sess := middleware.SessionFrom(c)
	event := req.ToModel()
	if err := h.svc.CreateEvent(ctx, sess, event); err != nil {
		return httpError(err)
	}

	resp := dto.EventResponse{Event: event}
	if image != nil {
		resp.Event, resp.Warning = h.attachImage(c, event, image)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	event, err := h.svc.GetEvent(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.EventResponse{Event: event})
}

func (h *EventHandler) UpdateEvent(c echo.Context) error {
	req, image, err := bindEvent(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	event, err := h.svc.UpdateEvent(ctx, middleware.SessionFrom(c), c.Param("id"), req.ToPatch())
	if err != nil {
		return httpError(err)
	}

	resp := dto.EventResponse{Event: event}
	if image != nil {
		resp.Event, resp.Warning = h.attachImage(c, event, image)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *EventHandler) ToggleStatus(c echo.Context) error {
	event, err := h.svc.ToggleStatus(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.EventResponse{Event: event})
}

func (h *EventHandler) ToggleAccepting(c echo.Context) error {
	event, err := h.svc.ToggleAccepting(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.EventResponse{Event: event})
}

func (h *EventHandler) UploadImage(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid image upload")
	}
	defer src.Close()

	event, warning, err := h.svc.SetImage(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"), file.Filename, src)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.EventResponse{Event: event, Warning: warning})
}

func (h *EventHandler) JoinEvent(c echo.Context) error {
	if err := h.svc.Join(c.Request().Context(), middleware.SessionFrom(c), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *EventHandler) GetLinks(c echo.Context) error {
	l, err := h.svc.Links(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.LinksResponse{ReservationURL: l.Reservation, InviteURL: l.Invite})
}

func (h *EventHandler) CreatePrefilledLink(c echo.Context) error {
	var req dto.PrefilledLinkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	url, err := h.svc.PrefilledLink(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"), req.FieldID, req.Value)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.PrefilledLinkResponse{URL: url})
}

// GetPublicEvent backs the invite page, which anyone holding the link may see.
func (h *EventHandler) GetPublicEvent(c echo.Context) error {
	event, err := h.svc.PublicSummary(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToPublicEventResponse(event))
}

// attachImage stores an uploaded image for a saved event. Failures leave the
// event as saved and come back as a warning.
func (h *EventHandler) attachImage(c echo.Context, event *models.Event, fh *multipart.FileHeader) (*models.Event, string) {
	src, err := fh.Open()
	if err != nil {
		logger.Log.Warn("open image upload", zap.String("event_id", event.ID), zap.Error(err))
		return event, service.WarningImageUpload
	}
	defer src.Close()

	updated, warning, err := h.svc.SetImage(c.Request().Context(), middleware.SessionFrom(c), event.ID, fh.Filename, src)
	if err != nil {
		logger.Log.Warn("attach image", zap.String("event_id", event.ID), zap.Error(err))
		return event, service.WarningImageUpload
	}
	return updated, warning
}

func bindEvent(c echo.Context) (*dto.EventRequest, *multipart.FileHeader, error) {
	var req dto.EventRequest
	ctype := c.Request().Header.Get(echo.HeaderContentType)

	if !strings.HasPrefix(ctype, echo.MIMEMultipartForm) {
		if err := c.Bind(&req); err != nil {
			return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		return &req, nil, nil
	}

	if err := json.Unmarshal([]byte(c.FormValue("event")), &req); err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid event payload")
	}
	image, err := c.FormFile("image")
	if err != nil {
		// no file part
		return &req, nil, nil
	}
	return &req, image, nil
}
