package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shiftpool/marketplace-api/internal/core/ports"
)

// ShiftHandler handles HTTP requests for shift postings.
type ShiftHandler struct {
	service ports.ShiftService
}

func NewShiftHandler(service ports.ShiftService) *ShiftHandler {
	return &ShiftHandler{service: service}
}

// Create handles POST /v1/shifts.
//
// @Summary      Post a new shift
// @Tags         shifts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      shiftRequest  true  "Shift details"
// @Success      201   {object}  domain.Shift
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/shifts [post]
func (h *ShiftHandler) Create(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	var req shiftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	shift, err := h.service.CreateShift(c.Request().Context(), ports.CreateShiftInput{
		ActorID:    p.UserID,
		Role:       p.Role,
		Title:      req.Title,
		Location:   req.Location,
		RateAmount: req.RateAmount,
		Currency:   req.Currency,
		StartsAt:   req.StartsAt,
		EndsAt:     req.EndsAt,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, shift)
}

// Get handles GET /v1/shifts/:ref.
//
// @Summary      Get a shift by reference
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Param        ref  path      string  true  "Shift reference (e.g. SHF-01J8ZQ3BX6Rce6MJ3GVQXSRsT0)"
// @Success      200  {object}  domain.Shift
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/shifts/{ref} [get]
func (h *ShiftHandler) Get(c echo.Context) error {
	if _, err := currentPrincipal(c); err != nil {
		return err
	}

	shift, err := h.service.GetShift(c.Request().Context(), c.Param("ref"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, shift)
}

// List handles GET /v1/shifts.
//
// @Summary      List shifts
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Param        mine      query     bool    false  "Only the caller's own postings (includes closed ones)"
// @Param        open      query     bool    false  "Filter by open state (admin and owners only)"
// @Param        location  query     string  false  "Exact location match"
// @Param        search    query     string  false  "Substring match on title and location"
// @Param        from      query     string  false  "Shifts starting at or after this RFC3339 timestamp"
// @Param        to        query     string  false  "Shifts starting at or before this RFC3339 timestamp"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Page size (default 20, max 100)"
// @Success      200       {object}  listShiftsResponse
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Router       /v1/shifts [get]
func (h *ShiftHandler) List(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	input := ports.ListShiftsInput{
		ActorID:  p.UserID,
		Role:     p.Role,
		Mine:     c.QueryParam("mine") == "true",
		Location: c.QueryParam("location"),
		Search:   c.QueryParam("search"),
	}
	if v := c.QueryParam("open"); v != "" {
		open := v == "true"
		input.Open = &open
	}
	if v := c.QueryParam("from"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid from timestamp")
		}
		input.From = ts
	}
	if v := c.QueryParam("to"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid to timestamp")
		}
		input.To = ts
	}
	input.Page, _ = strconv.Atoi(c.QueryParam("page"))
	input.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.ListShifts(c.Request().Context(), input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listShiftsResponse{
		Data: result.Items,
		Pagination: paginationResponse{
			Total:      result.Total,
			Page:       result.Page,
			Limit:      result.Limit,
			TotalPages: result.TotalPages,
		},
	})
}

// Update handles PUT /v1/shifts/:ref.
//
// @Summary      Update an open shift
// @Tags         shifts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        ref   path      string        true  "Shift reference"
// @Param        body  body      shiftRequest  true  "Replacement shift details"
// @Success      200   {object}  domain.Shift
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/shifts/{ref} [put]
func (h *ShiftHandler) Update(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	var req shiftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	shift, err := h.service.UpdateShift(c.Request().Context(), ports.UpdateShiftInput{
		Ref:        c.Param("ref"),
		ActorID:    p.UserID,
		Role:       p.Role,
		Title:      req.Title,
		Location:   req.Location,
		RateAmount: req.RateAmount,
		Currency:   req.Currency,
		StartsAt:   req.StartsAt,
		EndsAt:     req.EndsAt,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, shift)
}

// Close handles POST /v1/shifts/:ref/close.
//
// @Summary      Close a shift to new applications
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Param        ref  path      string  true  "Shift reference"
// @Success      200  {object}  domain.Shift
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/shifts/{ref}/close [post]
func (h *ShiftHandler) Close(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	shift, err := h.service.CloseShift(c.Request().Context(), ports.CloseShiftInput{
		Ref:     c.Param("ref"),
		ActorID: p.UserID,
		Role:    p.Role,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, shift)
}
