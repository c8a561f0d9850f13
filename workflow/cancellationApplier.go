package workflow

import (
	"context"
	"encoding/json"
	"errors"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ApplyCancellation performs the deferred write for a receipt cancellation.
// The sale was already resolved and branch-checked synchronously before the
// acknowledgement; both are re-verified here because the deferred write runs
// later and must not trust a stale check.
//
// For each named product at most one non-cancelled line item is cancelled
// per occurrence in the request. Cancellation is monotonic per item:
// re-cancelling is a no-op. The aggregate sale status is recomputed after
// the batch.
func ApplyCancellation(ctx context.Context, tx *gorm.DB, logger *logrus.Logger, record *models.EventRecord) error {
	var payload models.CancellationEventPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return err
	}

	redisLock, err := ObtainSaleRedisLock(ctx, payload.ReceiptId)
	if err != nil {
		return err
	}
	if redisLock != nil {
		defer redisLock.Release(context.Background())
	}

	if err := AcquireSaleMutationLock(tx, payload.ReceiptId); err != nil {
		return err
	}
	defer ReleaseSaleMutationLock(tx, payload.ReceiptId)

	sale, err := models.GetSaleByReceiptId(ctx, tx, payload.ReceiptId)
	if err != nil {
		return err
	}
	branch, err := models.GetBranchByCode(ctx, tx, payload.BranchId)
	if err != nil {
		return err
	}
	if sale.BranchId != branch.ID {
		return &utils.AuthorizationError{Reason: "branch mismatch for receipt " + payload.ReceiptId}
	}

	// Monotonic sequence gate per sale: a cancellation delivered behind the
	// last applied one for this receipt is skipped whole.
	if record.SequenceId != nil {
		allowed, err := AdvanceEntitySequence(ctx, tx, models.SequenceEntitySale, payload.ReceiptId, *record.SequenceId)
		if err != nil {
			return err
		}
		if !allowed {
			if logger != nil {
				logger.WithFields(logrus.Fields{
					"module":      "workflow",
					"process_id":  record.ProcessId,
					"receipt_id":  payload.ReceiptId,
					"sequence_id": *record.SequenceId,
				}).Error("stale sequence, cancellation skipped")
			}
			return nil
		}
	}

	for _, cancelled := range payload.CancelledItems {
		var item models.SaleItem
		err := tx.WithContext(ctx).
			Where("sale_id = ? AND product_external_id = ? AND is_cancelled = ?", sale.ID, cancelled.ProductId, false).
			Order("id ASC").
			First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Already cancelled or never sold on this receipt: monotonic no-op.
				if logger != nil {
					logger.WithFields(logrus.Fields{
						"module":     "workflow",
						"process_id": record.ProcessId,
						"receipt_id": payload.ReceiptId,
						"product_id": cancelled.ProductId,
					}).Error("no cancellable line item for product")
				}
				continue
			}
			return err
		}

		if err := tx.WithContext(ctx).Model(&models.SaleItem{}).
			Where("id = ?", item.ID).
			Update("is_cancelled", true).Error; err != nil {
			return err
		}
		if err := tx.WithContext(ctx).Model(&models.PromoCodeGenerationHistory{}).
			Where("sale_item_id = ?", item.ID).
			Update("status", models.PromoCodeStatusCancelled).Error; err != nil {
			return err
		}
	}

	return sale.RecomputeStatus(ctx, tx)
}
