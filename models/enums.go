package models

// Product lifecycle status, set by the catalog event pipeline.
const (
	ProductStatusNew       = "new"
	ProductStatusProcessed = "processed"
	ProductStatusFailed    = "failed"
)

// Sale status is a pure function of its line items' cancellation state.
// It is recomputed after every cancellation write, never set independently
// except at creation (completed).
const (
	SaleStatusCompleted          = "completed"
	SaleStatusPartiallyCancelled = "partially_cancelled"
	SaleStatusCancelled          = "cancelled"
)

const (
	MovementTypeAdded    = "added"
	MovementTypeRemoved  = "removed"
	MovementTypeAdjusted = "adjusted"
)

const (
	PromoCodeStatusGenerated = "generated"
	PromoCodeStatusCancelled = "cancelled"
	PromoCodeStatusFailed    = "failed"
)

// Event outbox statuses. Keep these as strings (DB values).
const (
	EventStatusPending    = "PENDING"
	EventStatusProcessing = "PROCESSING"
	EventStatusSucceeded  = "SUCCEEDED"
	EventStatusFailed     = "FAILED"
	EventStatusDead       = "DEAD"
)

type EventType string

const (
	EventTypeCatalogCreated   EventType = "product_catalog.created"
	EventTypeCatalogUpdated   EventType = "product_catalog.updated"
	EventTypeInventoryAdded   EventType = "inventory.items.added"
	EventTypeInventoryRemoved EventType = "inventory.items.removed"
	EventTypePromoCancelled   EventType = "promo_codes.cancelled"
)

// Entity types for the per-entity sequence gate.
const (
	SequenceEntityProduct = "product"
	SequenceEntitySale    = "sale"
)
