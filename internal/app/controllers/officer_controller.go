package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jmwangi/bursaryhub/internal/app/models/dto"
	"github.com/jmwangi/bursaryhub/internal/app/services"
	"github.com/jmwangi/bursaryhub/internal/middleware"
)

// OfficerController handles review and officer management endpoints
type OfficerController struct {
	officerService *services.OfficerService
	logger         zerolog.Logger
}

// NewOfficerController creates a new OfficerController
func NewOfficerController(officerService *services.OfficerService, logger zerolog.Logger) *OfficerController {
	return &OfficerController{
		officerService: officerService,
		logger:         logger,
	}
}

// CreateOfficer registers a new review officer
// @Summary Create an officer
// @Description Registers a review officer scoped to a constituency and fund. Admin only.
// @Tags officers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateOfficerRequest true "Officer details"
// @Success 201 {object} dto.APIResponse{data=dto.OfficerResponse} "Officer created"
// @Failure 409 {object} dto.ErrorResponse "Username already in use"
// @Router /officers [post]
func (c *OfficerController) CreateOfficer(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	var req dto.CreateOfficerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	officer, err := c.officerService.CreateOfficer(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(
		dto.NewOfficerResponse(officer), "Officer created"))
}

// ListOfficers returns officers for a constituency
// @Summary List officers
// @Tags officers
// @Produce json
// @Security BearerAuth
// @Param constituencyId query int true "Constituency ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.OfficerResponse}
// @Router /officers [get]
func (c *OfficerController) ListOfficers(ctx *gin.Context) {
	constituencyID, err := strconv.ParseInt(ctx.Query("constituencyId"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid constituency ID")))
		return
	}

	officers, err := c.officerService.ListOfficers(ctx.Request.Context(), constituencyID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	responses := make([]dto.OfficerResponse, 0, len(officers))
	for i := range officers {
		responses = append(responses, dto.NewOfficerResponse(&officers[i]))
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(responses, "Officers retrieved"))
}

// ListReviewQueue returns applications in the officer's scope
// @Summary List applications for review
// @Description Returns the applications in the officer's constituency and fund, optionally filtered by status.
// @Tags officers
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status" Enums(PENDING, APPROVED, REJECTED)
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PagedResponse}
// @Router /officers/review [get]
func (c *OfficerController) ListReviewQueue(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("pageSize", "20"))

	apps, total, err := c.officerService.ListForReview(ctx.Request.Context(), userID, parseStatusQuery(ctx), page, pageSize)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		items = append(items, dto.NewApplicationResponse(&apps[i]))
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.PagedResponse{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
	}, "Applications retrieved"))
}

// Review records a decision on an application
// @Summary Review an application
// @Description Approves or rejects a pending application in the officer's scope. Approvals must carry an award amount.
// @Tags officers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.ReviewApplicationRequest true "Decision"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse} "Application reviewed"
// @Failure 403 {object} dto.ErrorResponse "Application outside officer scope"
// @Failure 409 {object} dto.ErrorResponse "Application already decided"
// @Router /officers/review/{id} [put]
func (c *OfficerController) Review(ctx *gin.Context) {
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

	var req dto.ReviewApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	app, err := c.officerService.Review(ctx.Request.Context(), userID, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(
		dto.NewApplicationResponse(app), "Application reviewed"))
}

// Activity returns the officer's audit trail
// @Summary List own activity
// @Tags officers
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum entries"
// @Success 200 {object} dto.APIResponse{data=[]dto.ActivityLogResponse}
// @Router /officers/activity [get]
func (c *OfficerController) Activity(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "100"))

	entries, err := c.officerService.ListActivity(ctx.Request.Context(), userID, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	responses := make([]dto.ActivityLogResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.ActivityLogResponse{
			ID:          entry.ID,
			OfficerID:   entry.OfficerID,
			Action:      entry.Action,
			Description: entry.Description,
			Timestamp:   entry.Timestamp,
		})
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(responses, "Activity retrieved"))
}
