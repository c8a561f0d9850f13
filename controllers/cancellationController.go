package controllers

import (
	"errors"
	"net/http"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type cancellationInput struct {
	ReceiptId      string                    `json:"receipt_id" binding:"required"`
	BranchId       string                    `json:"branch_id" binding:"required"`
	CashierId      string                    `json:"cashier_id" binding:"required"`
	CancelledItems []models.NewCancelledItem `json:"cancelled_items" binding:"required,min=1,dive"`
}

type cancellationAck struct {
	CancelledItemsCount int    `json:"cancelled_items_count"`
	ProcessId           string `json:"process_id"`
}

// PromoCodesCancelled handles POST /events/promo-codes/cancelled.
// The sale lookup and the branch check run synchronously: a mismatched
// branch must never be told "accepted". The item cancellations themselves
// are deferred to the dispatcher.
func PromoCodesCancelled(c *gin.Context) {
	var input cancellationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondFailure(c, http.StatusBadRequest, "validation failed", utils.ProcessValidationErrors(err))
		return
	}

	ctx := c.Request.Context()
	db := config.GetDB()

	sale, err := models.GetSaleByReceiptId(ctx, db, input.ReceiptId)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var branch models.Branch
	if err := db.WithContext(ctx).Where("id = ?", sale.BranchId).First(&branch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, &utils.NotFoundError{Resource: "branch", Key: input.BranchId})
			return
		}
		utils.RespondError(c, &utils.PersistenceError{Op: "PromoCodesCancelled", Err: err})
		return
	}
	if branch.Code != input.BranchId {
		utils.RespondError(c, &utils.AuthorizationError{Reason: "branch mismatch for receipt " + input.ReceiptId})
		return
	}

	sequenceId, err := sequenceIdFromHeader(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	processId := requestProcessId(c)
	payload := models.CancellationEventPayload{
		ReceiptId:      input.ReceiptId,
		BranchId:       input.BranchId,
		CashierId:      input.CashierId,
		CancelledItems: input.CancelledItems,
	}
	if err := models.EnqueueEvent(ctx, db, models.EventTypePromoCancelled, processId, sequenceId, payload); err != nil {
		config.LogError(config.GetLogger(), "controllers", "PromoCodesCancelled", "models.EnqueueEvent", processId, err)
		utils.RespondError(c, &utils.PersistenceError{Op: "EnqueueEvent", Err: err})
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "accepted", cancellationAck{
		CancelledItemsCount: len(input.CancelledItems),
		ProcessId:           processId,
	})
}
