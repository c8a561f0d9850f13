package workflow

import (
	"context"
	"encoding/json"
	"errors"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ApplyInventoryEvent performs the deferred write for an inventory
// added/removed event. Lines whose product or branch cannot be resolved are
// skipped, not failed: there is no foreign-key enforcement at this layer and
// the batch is best-effort per line.
func ApplyInventoryEvent(ctx context.Context, tx *gorm.DB, logger *logrus.Logger, record *models.EventRecord) error {
	movementType := models.MovementTypeAdded
	if record.EventType == models.EventTypeInventoryRemoved {
		movementType = models.MovementTypeRemoved
	}

	var payload models.InventoryEventPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return err
	}

	for i := range payload.Items {
		item := &payload.Items[i]

		product, err := models.GetProductByExternalId(ctx, tx, item.ProductId)
		if err != nil {
			if skipUnresolvedLine(logger, record, item.ProductId, err) {
				continue
			}
			return err
		}
		branch, err := models.GetBranchByCode(ctx, tx, item.BranchId)
		if err != nil {
			if skipUnresolvedLine(logger, record, item.BranchId, err) {
				continue
			}
			return err
		}

		allowed, err := gateProductSequence(ctx, tx, logger, record, item.ProductId)
		if err != nil {
			return err
		}
		if !allowed {
			continue
		}

		entry := models.InventoryHistory{
			ProductId:        product.ID,
			BranchId:         branch.ID,
			MovementType:     movementType,
			Quantity:         utils.DereferencePtr(item.Quantity, decimal.Zero),
			PreviousQuantity: utils.DereferencePtr(item.PreviousQuantity, decimal.Zero),
			NewQuantity:      item.ResultingQuantity(movementType),
			Reason:           item.Reason,
			ActingUser:       item.ActingUser,
			Status:           models.ProductStatusProcessed,
			SequenceId:       record.SequenceId,
		}
		if err := tx.WithContext(ctx).Create(&entry).Error; err != nil {
			return err
		}
	}
	return nil
}

func skipUnresolvedLine(logger *logrus.Logger, record *models.EventRecord, key string, err error) bool {
	var nfe *utils.NotFoundError
	if !errors.As(err, &nfe) {
		return false
	}
	if logger != nil {
		logger.WithFields(logrus.Fields{
			"module":     "workflow",
			"process_id": record.ProcessId,
			"event_type": record.EventType,
			"key":        key,
		}).Error("unresolved reference, line skipped: " + err.Error())
	}
	return true
}
