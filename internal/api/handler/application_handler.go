package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/shiftpool/marketplace-api/internal/core/domain"
	"github.com/shiftpool/marketplace-api/internal/core/ports"
)

// ApplicationHandler handles HTTP requests for shift applications.
type ApplicationHandler struct {
	service ports.ApplicationService
}

func NewApplicationHandler(service ports.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

// Apply handles POST /v1/shifts/:ref/applications.
//
// @Summary      Apply to a shift
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        ref   path      string        true   "Shift reference"
// @Param        body  body      applyRequest  false  "Optional note to the shift owner"
// @Success      201   {object}  domain.Application
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/shifts/{ref}/applications [post]
func (h *ApplicationHandler) Apply(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	var req applyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	app, err := h.service.Apply(c.Request().Context(), ports.ApplyInput{
		ShiftRef: c.Param("ref"),
		ActorID:  p.UserID,
		Role:     p.Role,
		Verified: p.Verified,
		Note:     req.Note,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, app)
}

// Get handles GET /v1/applications/:ref.
//
// @Summary      Get an application by reference
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        ref  path      string  true  "Application reference"
// @Success      200  {object}  domain.Application
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/applications/{ref} [get]
func (h *ApplicationHandler) Get(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	app, err := h.service.GetApplication(c.Request().Context(), ports.GetApplicationInput{
		Ref:     c.Param("ref"),
		ActorID: p.UserID,
		Role:    p.Role,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, app)
}

// List handles GET /v1/applications.
//
// @Summary      List applications visible to the caller
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        shift_ref  query     string  false  "Only applications for this shift"
// @Param        status     query     string  false  "Filter by status (pending, accepted, rejected, withdrawn)"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Page size (default 20, max 100)"
// @Success      200        {object}  listApplicationsResponse
// @Failure      401        {object}  errorResponse
// @Router       /v1/applications [get]
func (h *ApplicationHandler) List(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	input := ports.ListApplicationsInput{
		ActorID:  p.UserID,
		Role:     p.Role,
		ShiftRef: c.QueryParam("shift_ref"),
		Status:   c.QueryParam("status"),
	}
	input.Page, _ = strconv.Atoi(c.QueryParam("page"))
	input.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.ListApplications(c.Request().Context(), input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listApplicationsResponse{
		Data: result.Items,
		Pagination: paginationResponse{
			Total:      result.Total,
			Page:       result.Page,
			Limit:      result.Limit,
			TotalPages: result.TotalPages,
		},
	})
}

// Accept handles POST /v1/applications/:ref/accept.
//
// @Summary      Accept an application
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        ref   path      string           true   "Application reference"
// @Param        body  body      decisionRequest  false  "Optional note to the applicant"
// @Success      200   {object}  domain.Application
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/applications/{ref}/accept [post]
func (h *ApplicationHandler) Accept(c echo.Context) error {
	return h.transition(c, domain.ApplicationAccepted)
}

// Reject handles POST /v1/applications/:ref/reject.
//
// @Summary      Reject an application
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        ref   path      string           true   "Application reference"
// @Param        body  body      decisionRequest  false  "Optional note to the applicant"
// @Success      200   {object}  domain.Application
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/applications/{ref}/reject [post]
func (h *ApplicationHandler) Reject(c echo.Context) error {
	return h.transition(c, domain.ApplicationRejected)
}

// Withdraw handles POST /v1/applications/:ref/withdraw.
//
// @Summary      Withdraw an application
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        ref   path      string           true   "Application reference"
// @Param        body  body      decisionRequest  false  "Optional note to the shift owner"
// @Success      200   {object}  domain.Application
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/applications/{ref}/withdraw [post]
func (h *ApplicationHandler) Withdraw(c echo.Context) error {
	return h.transition(c, domain.ApplicationWithdrawn)
}

func (h *ApplicationHandler) transition(c echo.Context, to domain.ApplicationStatus) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	// The note is optional; an empty body is fine.
	var req decisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	app, err := h.service.Transition(c.Request().Context(), ports.TransitionApplicationInput{
		Ref:     c.Param("ref"),
		ActorID: p.UserID,
		Role:    p.Role,
		To:      to,
		Note:    req.Note,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, app)
}
