package models

import (
	"context"
	"encoding/json"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EventRecord is the transactional outbox row for one accepted event.
// The controller writes it inside the acknowledgement transaction; the
// dispatcher drains it asynchronously. The process id ties the caller's
// acknowledgement to the eventual write outcome in the logs.
type EventRecord struct {
	ID            int        `gorm:"primary_key" json:"id"`
	EventType     EventType  `gorm:"size:50;not null;index" json:"event_type"`
	ProcessId     string     `gorm:"uniqueIndex;size:36;not null" json:"process_id"`
	TerminalId    *string    `gorm:"size:100" json:"terminal_id"`
	SequenceId    *int64     `gorm:"index" json:"sequence_id"`
	Payload       []byte     `gorm:"type:json;not null" json:"payload"`
	Status        string     `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	Attempts      int        `gorm:"not null;default:0" json:"attempts"`
	LastError     *string    `gorm:"type:text" json:"last_error"`
	NextAttemptAt *time.Time `gorm:"index" json:"next_attempt_at"`
	LockedAt      *time.Time `json:"locked_at"`
	LockedBy      *string    `gorm:"size:64" json:"locked_by"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// EnqueueEvent writes the outbox row inside the caller's transaction.
// Nothing is applied here: the dispatcher performs the durable write after
// the response is flushed.
func EnqueueEvent(ctx context.Context, tx *gorm.DB, eventType EventType, processId string, sequenceId *int64, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	record := EventRecord{
		EventType:  eventType,
		ProcessId:  processId,
		SequenceId: sequenceId,
		Payload:    raw,
		Status:     EventStatusPending,
	}
	// The terminal middleware puts X-Terminal-Id on the request context;
	// carry it onto the row so the dispatcher's failure logs can attribute
	// the event to the terminal that sent it.
	if terminalId, ok := utils.GetTerminalIdFromContext(ctx); ok && terminalId != "" {
		record.TerminalId = &terminalId
	}
	return tx.WithContext(ctx).Create(&record).Error
}

// CatalogEventPayload is the deferred payload for catalog created/updated.
type CatalogEventPayload struct {
	Products []NewCatalogProduct `json:"products"`
}

// InventoryEventPayload is the deferred payload for inventory added/removed.
type InventoryEventPayload struct {
	Items []NewInventoryItem `json:"items"`
}

// CancellationEventPayload is the deferred payload for receipt cancellation.
type CancellationEventPayload struct {
	ReceiptId      string             `json:"receipt_id"`
	BranchId       string             `json:"branch_id"`
	CashierId      string             `json:"cashier_id"`
	CancelledItems []NewCancelledItem `json:"cancelled_items"`
}

// NewCancelledItem names one product to cancel on a sale.
type NewCancelledItem struct {
	ProductId string           `json:"product_id" binding:"required"`
	Amount    *decimal.Decimal `json:"amount" binding:"required"`
}
