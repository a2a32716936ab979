package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jmwangi/bursaryhub/internal/app/models"
	"github.com/jmwangi/bursaryhub/internal/app/models/dto"
	"github.com/jmwangi/bursaryhub/internal/app/services"
	"github.com/jmwangi/bursaryhub/internal/middleware"
)

// ApplicationController handles bursary application endpoints for students
type ApplicationController struct {
	applicationService *services.ApplicationService
	logger             zerolog.Logger
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(applicationService *services.ApplicationService, logger zerolog.Logger) *ApplicationController {
	return &ApplicationController{
		applicationService: applicationService,
		logger:             logger,
	}
}

// Submit files a new bursary application
// @Summary Submit a bursary application
// @Description Submits an application for the county or constituency fund. Requires a verified account and an open application window.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateApplicationRequest true "Application details"
// @Success 201 {object} dto.APIResponse{data=dto.ApplicationResponse} "Application submitted"
// @Failure 403 {object} dto.ErrorResponse "Unverified account or window closed"
// @Failure 409 {object} dto.ErrorResponse "A pending application already exists"
// @Router /applications [post]
func (c *ApplicationController) Submit(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	var req dto.CreateApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	app, err := c.applicationService.Submit(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(
		dto.NewApplicationResponse(app), "Application submitted"))
}

// Get returns one of the student's applications
// @Summary Get own application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the application owner"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id} [get]
func (c *ApplicationController) Get(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid application ID")))
		return
	}

	app, err := c.applicationService.Get(ctx.Request.Context(), userID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(
		dto.NewApplicationResponse(app), "Application retrieved"))
}

// ListMine returns the student's applications
// @Summary List own applications
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ApplicationResponse}
// @Router /applications [get]
func (c *ApplicationController) ListMine(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	apps, err := c.applicationService.ListMine(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	responses := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		responses = append(responses, dto.NewApplicationResponse(&apps[i]))
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(responses, "Applications retrieved"))
}

// parseStatusQuery reads an optional status filter from the query string
func parseStatusQuery(ctx *gin.Context) models.ApplicationStatus {
	switch models.ApplicationStatus(ctx.Query("status")) {
	case models.ApplicationPending:
		return models.ApplicationPending
	case models.ApplicationApproved:
		return models.ApplicationApproved
	case models.ApplicationRejected:
		return models.ApplicationRejected
	}
	return ""
}
