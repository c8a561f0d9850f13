package controllers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/gin-gonic/gin"
)

// PromoCodeGenerator is the injected code source. Tests swap it for a
// seeded one.
var PromoCodeGenerator = utils.NewCodeGenerator(nil)

// GeneratePromoCodes handles POST /promo-codes/generate. Unlike the event
// endpoints this path is fully synchronous: the sale, its items, the codes
// and their history rows are committed before the response.
func GeneratePromoCodes(c *gin.Context) {
	var input models.NewPromoCodeRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondFailure(c, http.StatusBadRequest, "validation failed", utils.ProcessValidationErrors(err))
		return
	}

	result, err := models.GeneratePromoCodes(c.Request.Context(), &input, PromoCodeGenerator)
	if err != nil {
		config.LogError(config.GetLogger(), "controllers", "GeneratePromoCodes", "models.GeneratePromoCodes", input.ReceiptId, err)
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, "promo codes generated", result)
}
