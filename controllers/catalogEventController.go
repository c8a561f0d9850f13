package controllers

import (
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/gin-gonic/gin"
)

type catalogEventInput struct {
	Products []models.NewCatalogProduct `json:"products" binding:"required,min=1,dive"`
}

type catalogEventAck struct {
	ProductsCount int    `json:"products_count"`
	ProcessId     string `json:"process_id"`
}

// CatalogCreated handles POST /events/product-catalog/created.
// CatalogUpdated handles POST /events/product-catalog/updated.
// Both acknowledge after validation and an outbox write; the durable
// product rows are written by the dispatcher after the response.
func CatalogCreated(c *gin.Context) {
	acceptCatalogEvent(c, models.EventTypeCatalogCreated)
}

func CatalogUpdated(c *gin.Context) {
	acceptCatalogEvent(c, models.EventTypeCatalogUpdated)
}

func acceptCatalogEvent(c *gin.Context, eventType models.EventType) {
	var input catalogEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondFailure(c, http.StatusBadRequest, "validation failed", utils.ProcessValidationErrors(err))
		return
	}

	fields := map[string]string{}
	for i := range input.Products {
		for field, message := range input.Products[i].Validate(strconv.Itoa(i)) {
			fields[field] = message
		}
	}
	if len(fields) > 0 {
		utils.RespondFailure(c, http.StatusBadRequest, "validation failed", fields)
		return
	}

	sequenceId, err := sequenceIdFromHeader(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	processId := requestProcessId(c)
	payload := models.CatalogEventPayload{Products: input.Products}
	db := config.GetDB()
	if err := models.EnqueueEvent(c.Request.Context(), db, eventType, processId, sequenceId, payload); err != nil {
		config.LogError(config.GetLogger(), "controllers", "acceptCatalogEvent", "models.EnqueueEvent", processId, err)
		utils.RespondError(c, &utils.PersistenceError{Op: "EnqueueEvent", Err: err})
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "accepted", catalogEventAck{
		ProductsCount: len(input.Products),
		ProcessId:     processId,
	})
}
