package workflow

import (
	"context"
	"encoding/json"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ApplyCatalogCreated performs the deferred write for a catalog "created"
// event: insert only products whose external id is not yet known.
// Re-delivering the same event is a no-op for already-known products.
func ApplyCatalogCreated(ctx context.Context, tx *gorm.DB, logger *logrus.Logger, record *models.EventRecord) error {
	var payload models.CatalogEventPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return err
	}

	externalIds := make([]string, 0, len(payload.Products))
	for _, p := range payload.Products {
		externalIds = append(externalIds, p.Id)
	}
	existing, err := models.ExistingProductExternalIds(ctx, tx, externalIds)
	if err != nil {
		return err
	}

	for i := range payload.Products {
		product := &payload.Products[i]
		if _, known := existing[product.Id]; known {
			continue
		}
		allowed, err := gateProductSequence(ctx, tx, logger, record, product.Id)
		if err != nil {
			return err
		}
		if !allowed {
			continue
		}
		if _, err := models.InsertProductIfAbsent(ctx, tx, product, record.SequenceId); err != nil {
			return err
		}
	}
	return nil
}

// ApplyCatalogUpdated performs the deferred write for a catalog "updated"
// event: unconditional upsert keyed on external id.
func ApplyCatalogUpdated(ctx context.Context, tx *gorm.DB, logger *logrus.Logger, record *models.EventRecord) error {
	var payload models.CatalogEventPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return err
	}

	for i := range payload.Products {
		product := &payload.Products[i]
		allowed, err := gateProductSequence(ctx, tx, logger, record, product.Id)
		if err != nil {
			return err
		}
		if !allowed {
			continue
		}
		if err := models.UpsertProductByExternalId(ctx, tx, product, record.SequenceId); err != nil {
			return err
		}
	}
	return nil
}

// gateProductSequence applies the per-product monotonic sequence gate.
// Events without a sequence id bypass the gate.
func gateProductSequence(ctx context.Context, tx *gorm.DB, logger *logrus.Logger, record *models.EventRecord, productExternalId string) (bool, error) {
	if record.SequenceId == nil {
		return true, nil
	}
	allowed, err := AdvanceEntitySequence(ctx, tx, models.SequenceEntityProduct, productExternalId, *record.SequenceId)
	if err != nil {
		return false, err
	}
	if !allowed && logger != nil {
		logger.WithFields(logrus.Fields{
			"module":      "workflow",
			"process_id":  record.ProcessId,
			"event_type":  record.EventType,
			"product_id":  productExternalId,
			"sequence_id": *record.SequenceId,
		}).Error("stale sequence, line skipped")
	}
	return allowed, nil
}
