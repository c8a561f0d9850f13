package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryHistory is an append-only ledger entry for one stock movement.
type InventoryHistory struct {
	ID               int             `gorm:"primary_key" json:"id"`
	ProductId        int             `gorm:"index;not null" json:"product_id"`
	BranchId         int             `gorm:"index;not null" json:"branch_id"`
	MovementType     string          `gorm:"size:20;not null" json:"movement_type"`
	Quantity         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	PreviousQuantity decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"previous_quantity"`
	NewQuantity      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"new_quantity"`
	Reason           string          `gorm:"type:text" json:"reason"`
	ActingUser       string          `gorm:"size:100" json:"acting_user"`
	Status           string          `gorm:"size:20;not null;default:new" json:"status"`
	SequenceId       *int64          `gorm:"index" json:"sequence_id"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// ComputeRemovedQuantity floors the resulting stock at zero: the ledger
// never records a negative on-hand quantity.
func ComputeRemovedQuantity(previous, quantity decimal.Decimal) decimal.Decimal {
	result := previous.Sub(quantity)
	if result.IsNegative() {
		return decimal.Zero
	}
	return result
}

// ComputeAddedQuantity is the fallback when a caller supplies no resulting
// total. The "added" event trusts a caller-supplied total verbatim when
// present; see NewInventoryItem.ResultingQuantity.
func ComputeAddedQuantity(previous, quantity decimal.Decimal) decimal.Decimal {
	return previous.Add(quantity)
}

// MinQuantityGranularity is the smallest accepted movement quantity.
var MinQuantityGranularity = decimal.NewFromFloat(0.001)

// NewInventoryItem is one line of an inventory added/removed event.
type NewInventoryItem struct {
	ProductId        string           `json:"product_id" binding:"required"`
	BranchId         string           `json:"branch_id" binding:"required"`
	Quantity         *decimal.Decimal `json:"quantity" binding:"required"`
	PreviousQuantity *decimal.Decimal `json:"previous_quantity" binding:"required"`
	TotalQuantity    *decimal.Decimal `json:"total_quantity"`
	Reason           string           `json:"reason"`
	ActingUser       string           `json:"acting_user"`
}

// Validate applies the numeric rules: quantity strictly positive with
// 0.001 granularity, previous quantity non-negative, and (for "added")
// a required caller-supplied resulting total.
func (item *NewInventoryItem) Validate(index string, requireTotal bool) map[string]string {
	fields := map[string]string{}
	if item.Quantity == nil || item.Quantity.LessThan(MinQuantityGranularity) {
		fields["items["+index+"].quantity"] = "must be at least 0.001"
	}
	if item.PreviousQuantity == nil || item.PreviousQuantity.IsNegative() {
		fields["items["+index+"].previous_quantity"] = "must be non-negative"
	}
	if requireTotal && item.TotalQuantity == nil {
		fields["items["+index+"].total_quantity"] = "required"
	}
	return fields
}

// ResultingQuantity resolves the ledger's new_quantity for this line.
// The "added" variant stores the caller-supplied total verbatim; the
// pipeline does not second-guess the caller's arithmetic, which avoids a
// read-modify-write race at ingestion time.
func (item *NewInventoryItem) ResultingQuantity(movementType string) decimal.Decimal {
	previous := decimal.Zero
	if item.PreviousQuantity != nil {
		previous = *item.PreviousQuantity
	}
	quantity := decimal.Zero
	if item.Quantity != nil {
		quantity = *item.Quantity
	}
	if movementType == MovementTypeRemoved {
		return ComputeRemovedQuantity(previous, quantity)
	}
	if item.TotalQuantity != nil {
		return *item.TotalQuantity
	}
	return ComputeAddedQuantity(previous, quantity)
}
