package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"clubfees/internal/billing"
	"clubfees/internal/models/request_models"
	"clubfees/internal/models/response_models"
	"clubfees/internal/services"
	"clubfees/pkg/utils"
)

type PlanController struct {
	planService services.PlanServiceInterface
}

func NewPlanController(planService services.PlanServiceInterface) *PlanController {
	return &PlanController{planService: planService}
}

func (pc *PlanController) CreatePlan(c *gin.Context) {
	var req request_models.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	owner, err := billing.ParseOwner(req.OwnerKind, req.OwnerID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	in, err := planInput(owner, req.Name, req.Description, req.BaseAmount, req.CurrencyCode,
		req.Interval, req.IntervalCount, req.Discount, req.EffectiveFrom, req.IsActive)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	plan, err := pc.planService.CreatePlan(c.Request.Context(), in)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondCreated(c, response_models.FromFeePlan(*plan), "Plan created successfully")
}

func (pc *PlanController) GetPlan(c *gin.Context) {
	id, err := utils.ParseID("id", c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	plan, err := pc.planService.GetPlan(c.Request.Context(), id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, response_models.FromFeePlan(*plan), "Fetched plan successfully")
}

func (pc *PlanController) UpdatePlan(c *gin.Context) {
	id, err := utils.ParseID("id", c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	var req request_models.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	in, err := planInput(billing.Owner{}, req.Name, req.Description, req.BaseAmount, req.CurrencyCode,
		req.Interval, req.IntervalCount, req.Discount, req.EffectiveFrom, req.IsActive)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	plan, err := pc.planService.UpdatePlan(c.Request.Context(), id, in)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, response_models.FromFeePlan(*plan), "Plan updated successfully")
}

func (pc *PlanController) DeletePlan(c *gin.Context) {
	id, err := utils.ParseID("id", c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	if err := pc.planService.DeletePlan(c.Request.Context(), id); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Plan deleted successfully")
}

// ListOwnerPlans lists an owner's plans; ?active=true hides inactive ones.
func (pc *PlanController) ListOwnerPlans(c *gin.Context) {
	owner, err := billing.ParseOwner(c.Param("kind"), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	activeOnly, err := strconv.ParseBool(c.DefaultQuery("active", "false"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid active flag")
		return
	}

	plans, err := pc.planService.ListPlans(c.Request.Context(), owner, activeOnly)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, response_models.FromFeePlans(plans), "Fetched plans successfully")
}
