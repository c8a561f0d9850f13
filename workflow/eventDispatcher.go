package workflow

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventDispatcher drains the event outbox: it claims accepted events and
// applies their durable writes in-process. The caller was already
// acknowledged when the row was written; failures here never reach the
// response channel. The log line carrying the process id and payload is the
// only audit trail for a failed event.
type EventDispatcher struct {
	DB           *gorm.DB
	Logger       *logrus.Logger
	DispatcherID string

	BatchSize      int
	PollInterval   time.Duration
	LockTimeout    time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
}

func NewEventDispatcher(db *gorm.DB, logger *logrus.Logger) *EventDispatcher {
	return &EventDispatcher{
		DB:             db,
		Logger:         logger,
		DispatcherID:   uuid.NewString(),
		BatchSize:      50,
		PollInterval:   500 * time.Millisecond,
		LockTimeout:    30 * time.Second,
		MaxAttempts:    20,
		InitialBackoff: 5 * time.Second,
	}
}

func (d *EventDispatcher) Run(ctx context.Context) {
	if d == nil || d.DB == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		d.dispatchOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.PollInterval):
		}
	}
}

func (d *EventDispatcher) dispatchOnce(ctx context.Context) {
	now := time.Now().UTC()
	staleBefore := now.Add(-d.LockTimeout)

	var claimed []models.EventRecord
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Eligible:
		// - PENDING / FAILED and ready to retry
		// - PROCESSING but lock is stale (dispatcher crashed mid-batch), reclaim after LockTimeout
		q := tx.
			Where(`
				(
					status IN ? AND (next_attempt_at IS NULL OR next_attempt_at <= ?)
				)
				OR
				(
					status = ? AND locked_at IS NOT NULL AND locked_at <= ?
				)
			`, []string{models.EventStatusPending, models.EventStatusFailed}, now, models.EventStatusProcessing, staleBefore).
			Order("id ASC").
			Limit(d.BatchSize).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		if err := q.Find(&claimed).Error; err != nil {
			return err
		}
		if len(claimed) == 0 {
			return nil
		}
		for i := range claimed {
			// Enforce max attempts: poison events go terminal (DLQ equivalent).
			if d.MaxAttempts > 0 && claimed[i].Attempts >= d.MaxAttempts {
				msg := fmt.Sprintf("max attempts exceeded (%d)", d.MaxAttempts)
				claimed[i].Status = models.EventStatusDead
				if err := tx.Model(&models.EventRecord{}).Where("id = ?", claimed[i].ID).Updates(map[string]interface{}{
					"status":          models.EventStatusDead,
					"last_error":      &msg,
					"next_attempt_at": nil,
					"locked_at":       nil,
					"locked_by":       nil,
				}).Error; err != nil {
					return err
				}
				continue
			}

			// Claim for processing.
			claimed[i].Status = models.EventStatusProcessing
			claimed[i].LockedAt = &now
			claimed[i].LockedBy = &d.DispatcherID
			claimed[i].Attempts = claimed[i].Attempts + 1
			claimed[i].LastError = nil
			if err := tx.Model(&models.EventRecord{}).Where("id = ?", claimed[i].ID).Updates(map[string]interface{}{
				"status":          claimed[i].Status,
				"locked_at":       claimed[i].LockedAt,
				"locked_by":       claimed[i].LockedBy,
				"attempts":        gorm.Expr("attempts + 1"),
				"last_error":      nil,
				"next_attempt_at": nil,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil || len(claimed) == 0 {
		return
	}

	for i := range claimed {
		rec := claimed[i]
		// Skip terminal rows that were marked DEAD in the claim transaction.
		if rec.Status == models.EventStatusDead {
			continue
		}
		if procErr := d.processRecord(ctx, &rec); procErr != nil {
			d.markFailed(ctx, &rec, procErr)
			continue
		}
		d.markSucceeded(ctx, rec.ID)
	}
}

// processRecord applies one event's durable write inside a single
// all-or-nothing transaction, guarded by a DB idempotency key so
// at-least-once claiming stays safe.
func (d *EventDispatcher) processRecord(ctx context.Context, rec *models.EventRecord) error {
	handler := string(rec.EventType)
	return d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		skip, err := BeginIdempotency(tx, handler, rec.ProcessId)
		if err != nil {
			return err
		}
		if skip {
			return nil
		}

		var applyErr error
		switch rec.EventType {
		case models.EventTypeCatalogCreated:
			applyErr = ApplyCatalogCreated(ctx, tx, d.Logger, rec)
		case models.EventTypeCatalogUpdated:
			applyErr = ApplyCatalogUpdated(ctx, tx, d.Logger, rec)
		case models.EventTypeInventoryAdded, models.EventTypeInventoryRemoved:
			applyErr = ApplyInventoryEvent(ctx, tx, d.Logger, rec)
		case models.EventTypePromoCancelled:
			applyErr = ApplyCancellation(ctx, tx, d.Logger, rec)
		default:
			applyErr = fmt.Errorf("unknown event type %q", rec.EventType)
		}
		if applyErr != nil {
			// The surrounding transaction rolls back every row of this batch.
			return applyErr
		}
		return MarkIdempotencySucceeded(tx, handler, rec.ProcessId)
	})
}

func (d *EventDispatcher) markSucceeded(ctx context.Context, recordID int) {
	_ = d.DB.WithContext(ctx).Model(&models.EventRecord{}).
		Where("id = ?", recordID).
		Updates(map[string]interface{}{
			"status":          models.EventStatusSucceeded,
			"locked_at":       nil,
			"locked_by":       nil,
			"next_attempt_at": nil,
		}).Error
}

func (d *EventDispatcher) markFailed(ctx context.Context, rec *models.EventRecord, err error) {
	now := time.Now().UTC()
	msg := err.Error()

	// The apply transaction rolled back its STARTED key; record the failure
	// in its own transaction so the next claim restarts from FAILED.
	handler := string(rec.EventType)
	_ = d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, beginErr := BeginIdempotency(tx, handler, rec.ProcessId); beginErr != nil {
			return beginErr
		}
		return MarkIdempotencyFailed(tx, handler, rec.ProcessId, err)
	})

	// Terminal after MaxAttempts (DLQ equivalent).
	if d.MaxAttempts > 0 && rec.Attempts >= d.MaxAttempts {
		_ = d.DB.WithContext(ctx).Model(&models.EventRecord{}).
			Where("id = ?", rec.ID).
			Updates(map[string]interface{}{
				"status":          models.EventStatusDead,
				"last_error":      &msg,
				"next_attempt_at": nil,
				"locked_at":       nil,
				"locked_by":       nil,
			}).Error

		if d.Logger != nil {
			d.Logger.WithFields(logrus.Fields{
				"module":      "EventDispatcher",
				"process_id":  rec.ProcessId,
				"terminal_id": utils.DereferencePtr(rec.TerminalId),
				"event_type":  rec.EventType,
				"attempt":     rec.Attempts,
				"payload":     string(rec.Payload),
			}).Error("event moved to DEAD after max attempts: " + fmt.Sprintf("%v", err))
		}
		return
	}

	next := now.Add(NextBackoff(d.InitialBackoff, rec.Attempts))
	_ = d.DB.WithContext(ctx).Model(&models.EventRecord{}).
		Where("id = ?", rec.ID).
		Updates(map[string]interface{}{
			"status":          models.EventStatusFailed,
			"last_error":      &msg,
			"next_attempt_at": &next,
			"locked_at":       nil,
			"locked_by":       nil,
		}).Error

	if d.Logger != nil {
		d.Logger.WithFields(logrus.Fields{
			"module":          "EventDispatcher",
			"process_id":      rec.ProcessId,
			"terminal_id":     utils.DereferencePtr(rec.TerminalId),
			"event_type":      rec.EventType,
			"attempt":         rec.Attempts,
			"next_attempt_at": next.Format(time.RFC3339Nano),
			"payload":         string(rec.Payload),
		}).Error("event processing failed: " + fmt.Sprintf("%v", err))
	}
}

// NextBackoff doubles the initial backoff per attempt, capped at ten minutes.
func NextBackoff(initial time.Duration, attempt int) time.Duration {
	backoff := initial
	for i := 1; i < attempt; i++ {
		backoff *= 2
		if backoff > time.Minute*10 {
			backoff = time.Minute * 10
			break
		}
	}
	return backoff
}
