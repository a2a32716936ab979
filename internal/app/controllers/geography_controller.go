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

// GeographyController serves the county/constituency/ward reference data
type GeographyController struct {
	geographyService *services.GeographyService
	logger           zerolog.Logger
}

// NewGeographyController creates a new GeographyController
func NewGeographyController(geographyService *services.GeographyService, logger zerolog.Logger) *GeographyController {
	return &GeographyController{
		geographyService: geographyService,
		logger:           logger,
	}
}

// ListCounties returns all counties
// @Summary List counties
// @Tags geography
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.County}
// @Router /geography/counties [get]
func (c *GeographyController) ListCounties(ctx *gin.Context) {
	counties, err := c.geographyService.ListCounties(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(counties, "Counties retrieved"))
}

// ListConstituencies returns constituencies, optionally for one county
// @Summary List constituencies
// @Tags geography
// @Produce json
// @Param countyId query int false "Filter by county"
// @Success 200 {object} dto.APIResponse{data=[]models.Constituency}
// @Router /geography/constituencies [get]
func (c *GeographyController) ListConstituencies(ctx *gin.Context) {
	var countyID int64
	if raw := ctx.Query("countyId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid county ID")))
			return
		}
		countyID = parsed
	}

	constituencies, err := c.geographyService.ListConstituencies(ctx.Request.Context(), countyID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(constituencies, "Constituencies retrieved"))
}

// ListWards returns the wards of a constituency
// @Summary List wards
// @Tags geography
// @Produce json
// @Param constituencyId query int true "Constituency ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Ward}
// @Router /geography/wards [get]
func (c *GeographyController) ListWards(ctx *gin.Context) {
	constituencyID, err := strconv.ParseInt(ctx.Query("constituencyId"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid constituency ID")))
		return
	}

	wards, err := c.geographyService.ListWards(ctx.Request.Context(), constituencyID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(wards, "Wards retrieved"))
}
