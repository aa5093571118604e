package controllers

import (
	"github.com/gin-gonic/gin"

	"clubfees/internal/billing"
	"clubfees/internal/models/request_models"
	"clubfees/internal/models/response_models"
	"clubfees/internal/services"
	"clubfees/pkg/utils"
)

type FeePlanController struct {
	feePlanService services.FeePlanServiceInterface
}

func NewFeePlanController(feePlanService services.FeePlanServiceInterface) *FeePlanController {
	return &FeePlanController{feePlanService: feePlanService}
}

func (fc *FeePlanController) UpsertAssignment(c *gin.Context) {
	studentID, err := utils.ParseID("student_id", c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	var req request_models.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	in, err := assignmentInput(req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	assignment, err := fc.feePlanService.UpsertAssignment(c.Request.Context(), studentID, in)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, response_models.FromAssignment(*assignment), "Fee plan saved successfully")
}

func (fc *FeePlanController) GetAssignment(c *gin.Context) {
	studentID, err := utils.ParseID("student_id", c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	assignment, err := fc.feePlanService.GetAssignment(c.Request.Context(), studentID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, response_models.FromAssignment(*assignment), "Fetched fee plan successfully")
}

func (fc *FeePlanController) GetBillingPolicy(c *gin.Context) {
	studentID, err := utils.ParseID("student_id", c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	resolved, err := fc.feePlanService.ResolvePolicy(c.Request.Context(), studentID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c,
		response_models.FromPolicy(resolved.Policy, resolved.Currency, resolved.Hints),
		"Resolved billing policy successfully")
}

func (fc *FeePlanController) GetOwnerSettings(c *gin.Context) {
	owner, err := billing.ParseOwner(c.Param("kind"), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	code, err := fc.feePlanService.GetOwnerDefaultCurrency(c.Request.Context(), owner)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, response_models.FromOwnerSettings(owner, code), "Fetched owner settings successfully")
}

func (fc *FeePlanController) PutOwnerSettings(c *gin.Context) {
	owner, err := billing.ParseOwner(c.Param("kind"), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	var req request_models.OwnerSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	code := billing.NormalizeCurrencyCode(req.DefaultCurrencyCode)
	if err := fc.feePlanService.SetOwnerDefaultCurrency(c.Request.Context(), owner, code); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, response_models.FromOwnerSettings(owner, code), "Owner settings saved successfully")
}
