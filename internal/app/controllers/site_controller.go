package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jmwangi/bursaryhub/internal/app/models/dto"
	"github.com/jmwangi/bursaryhub/internal/app/services"
	"github.com/jmwangi/bursaryhub/internal/middleware"
)

// SiteController serves the deployment profile endpoints
type SiteController struct {
	siteService *services.SiteService
	logger      zerolog.Logger
}

// NewSiteController creates a new SiteController
func NewSiteController(siteService *services.SiteService, logger zerolog.Logger) *SiteController {
	return &SiteController{
		siteService: siteService,
		logger:      logger,
	}
}

// Profile returns the active site profile
// @Summary Get site profile
// @Description Returns the county branding and application deadline of this deployment.
// @Tags site
// @Produce json
// @Success 200 {object} dto.APIResponse{data=models.SiteProfile}
// @Router /site [get]
func (c *SiteController) Profile(ctx *gin.Context) {
	profile, err := c.siteService.Profile(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(profile, "Site profile retrieved"))
}

// UpdateDeadline moves the application deadline
// @Summary Update application deadline
// @Description Sets or clears the application deadline on the active site profile. Admin only.
// @Tags site
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateDeadlineRequest true "New deadline"
// @Success 200 {object} dto.APIResponse{data=models.SiteProfile} "Deadline updated"
// @Router /site/deadline [put]
func (c *SiteController) UpdateDeadline(ctx *gin.Context) {
	var req dto.UpdateDeadlineRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	profile, err := c.siteService.SetDeadline(ctx.Request.Context(), req.Deadline)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(profile, "Deadline updated"))
}
