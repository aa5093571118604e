package controllers

import (
	"github.com/gin-gonic/gin"

	"clubfees/internal/billing"
	"clubfees/internal/models/response_models"
	"clubfees/internal/services"
	"clubfees/pkg/utils"
)

type CurrencyController struct {
	registry services.CurrencyRegistry
}

func NewCurrencyController(registry services.CurrencyRegistry) *CurrencyController {
	return &CurrencyController{registry: registry}
}

func (cc *CurrencyController) ListCurrencies(c *gin.Context) {
	currencies, err := cc.registry.List(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, response_models.FromCurrencies(currencies), "Fetched currencies successfully")
}

func (cc *CurrencyController) GetDefaultCurrency(c *gin.Context) {
	currency, err := cc.registry.DefaultCurrency(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, response_models.FromCurrency(currency), "Fetched default currency successfully")
}

func (cc *CurrencyController) GetCurrency(c *gin.Context) {
	code := billing.NormalizeCurrencyCode(c.Param("code"))
	currency, err := cc.registry.Resolve(c.Request.Context(), code)
	if err != nil {
		if billing.KindOf(err) == billing.KindConfiguration {
			err = billing.NewError("CurrencyController.GetCurrency", billing.ErrNotFound)
		}
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, response_models.FromCurrency(currency), "Fetched currency successfully")
}
