package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/q6kkhvmy6s/rsvp/internal/dto"
	"github.com/q6kkhvmy6s/rsvp/internal/middleware"
	"github.com/q6kkhvmy6s/rsvp/internal/service"
)

type AccountHandler struct {
	svc service.AccountService
}

func NewAccountHandler(svc service.AccountService) *AccountHandler {
	return &AccountHandler{svc: svc}
}

func (h *AccountHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/auth/signup", h.Signup)
	e.POST("/api/auth/login", h.Login)
	e.POST("/api/public/events/:id/join", h.SignupAndJoin)

	me := e.Group("/api/me", middleware.RequireAuth)
	me.GET("", h.Me)
	me.PUT("/password", h.ChangePassword)
	me.DELETE("", h.DeleteAccount)

	users := e.Group("/api/users", middleware.RequireAdmin)
	users.GET("", h.ListUsers)
	users.PUT("/:uid/role", h.ChangeRole)
}

func (h *AccountHandler) Signup(c echo.Context) error {
	var req dto.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	res, err := h.svc.Signup(c.Request().Context(), service.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToAuthResponse(res))
}

func (h *AccountHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	res, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToAuthResponse(res))
}

// SignupAndJoin creates a promoter account from an invite link and attaches
// it to the event in one step.
func (h *AccountHandler) SignupAndJoin(c echo.Context) error {
	var req dto.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	res, err := h.svc.SignupAndJoin(c.Request().Context(), service.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	}, c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToAuthResponse(res))
}

func (h *AccountHandler) Me(c echo.Context) error {
	u, err := h.svc.Me(c.Request().Context(), middleware.SessionFrom(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AccountHandler) ChangePassword(c echo.Context) error {
	var req dto.PasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Password != req.ConfirmPassword {
		return echo.NewHTTPError(http.StatusBadRequest, "passwords do not match")
	}

	if err := h.svc.ChangePassword(c.Request().Context(), middleware.SessionFrom(c), req.Password); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	if err := h.svc.DeleteAccount(c.Request().Context(), middleware.SessionFrom(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AccountHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context(), middleware.SessionFrom(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AccountHandler) ChangeRole(c echo.Context) error {
	var req dto.RoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	u, err := h.svc.ChangeRole(c.Request().Context(), middleware.SessionFrom(c), c.Param("uid"), req.Role)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, u)
}
