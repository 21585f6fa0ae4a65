package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/photoalbum/internal/app/models/dto"
	"github.com/yigit/photoalbum/internal/app/services"
	"github.com/yigit/photoalbum/internal/middleware"
)

// ReferenceController exposes the imported states, schools and student totals
type ReferenceController struct {
	referenceService services.ReferenceService
}

// NewReferenceController creates a new ReferenceController
func NewReferenceController(referenceService services.ReferenceService) *ReferenceController {
	return &ReferenceController{referenceService: referenceService}
}

// ListStates lists stored states
// @Summary List states
// @Tags reference
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.StateListResponse} "States"
// @Router /states [get]
func (c *ReferenceController) ListStates(ctx *gin.Context) {
	states, err := c.referenceService.ListStates(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.StateListResponse{States: states}))
}

// ListSchools lists stored schools
// @Summary List schools
// @Tags reference
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.SchoolListResponse} "Schools"
// @Router /schools [get]
func (c *ReferenceController) ListSchools(ctx *gin.Context) {
	schools, err := c.referenceService.ListSchools(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SchoolListResponse{Schools: schools}))
}

// StudentCounts returns student totals per state and per school
// @Summary Student totals
// @Tags reference
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.StudentCountsResponse} "Totals"
// @Router /students/counts [get]
func (c *ReferenceController) StudentCounts(ctx *gin.Context) {
	byState, bySchool, err := c.referenceService.StudentCounts(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.StudentCountsResponse{
		ByState:  byState,
		BySchool: bySchool,
	}))
}
