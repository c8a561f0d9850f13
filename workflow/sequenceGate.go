package workflow

import (
	"context"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceIsStale reports whether an incoming sequence must be rejected
// given the last applied one. Equal sequences are stale: re-delivery of the
// same event is already absorbed by the idempotency key, so a second event
// carrying the same sequence for the same entity is out of order.
func SequenceIsStale(lastApplied, incoming int64) bool {
	return incoming <= lastApplied
}

// AdvanceEntitySequence applies the monotonic gate for one entity inside the
// caller's transaction. It returns true when the sequence moved forward and
// the write may be applied, false when the line is stale and must be skipped.
func AdvanceEntitySequence(ctx context.Context, tx *gorm.DB, entityType, entityKey string, sequenceId int64) (bool, error) {
	record := models.EntitySequence{
		EntityType:     entityType,
		EntityKey:      entityKey,
		LastSequenceId: sequenceId,
	}
	result := tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entity_type"}, {Name: "entity_key"}},
			DoNothing: true,
		}).
		Create(&record)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	var existing models.EntitySequence
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("entity_type = ? AND entity_key = ?", entityType, entityKey).
		First(&existing).Error
	if err != nil {
		return false, err
	}
	if SequenceIsStale(existing.LastSequenceId, sequenceId) {
		return false, nil
	}

	err = tx.WithContext(ctx).Model(&models.EntitySequence{}).
		Where("id = ?", existing.ID).
		Update("last_sequence_id", sequenceId).Error
	if err != nil {
		return false, err
	}
	return true, nil
}
