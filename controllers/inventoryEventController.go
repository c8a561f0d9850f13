package controllers

import (
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/gin-gonic/gin"
)

type inventoryEventInput struct {
	Items []models.NewInventoryItem `json:"items" binding:"required,min=1,dive"`
}

type inventoryEventAck struct {
	ItemsCount int    `json:"items_count"`
	ProcessId  string `json:"process_id"`
}

// InventoryAdded handles POST /events/inventory/items/added. The caller
// supplies the resulting total; it is stored verbatim by the applier.
func InventoryAdded(c *gin.Context) {
	acceptInventoryEvent(c, models.EventTypeInventoryAdded, true)
}

// InventoryRemoved handles POST /events/inventory/items/removed. The
// resulting quantity is computed server-side, floored at zero.
func InventoryRemoved(c *gin.Context) {
	acceptInventoryEvent(c, models.EventTypeInventoryRemoved, false)
}

func acceptInventoryEvent(c *gin.Context, eventType models.EventType, requireTotal bool) {
	var input inventoryEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondFailure(c, http.StatusBadRequest, "validation failed", utils.ProcessValidationErrors(err))
		return
	}

	fields := map[string]string{}
	for i := range input.Items {
		for field, message := range input.Items[i].Validate(strconv.Itoa(i), requireTotal) {
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
	payload := models.InventoryEventPayload{Items: input.Items}
	db := config.GetDB()
	if err := models.EnqueueEvent(c.Request.Context(), db, eventType, processId, sequenceId, payload); err != nil {
		config.LogError(config.GetLogger(), "controllers", "acceptInventoryEvent", "models.EnqueueEvent", processId, err)
		utils.RespondError(c, &utils.PersistenceError{Op: "EnqueueEvent", Err: err})
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "accepted", inventoryEventAck{
		ItemsCount: len(input.Items),
		ProcessId:  processId,
	})
}
