package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PromoCodeGenerationHistory records one generated code per sale line item.
// The status mirrors the related item's cancellation state. Codes carry no
// uniqueness constraint: duplicates across sales are an accepted outcome.
type PromoCodeGenerationHistory struct {
	ID                int             `gorm:"primary_key" json:"id"`
	SaleId            int             `gorm:"index;not null" json:"sale_id"`
	SaleItemId        int             `gorm:"index;not null" json:"sale_item_id"`
	ProductExternalId string          `gorm:"size:100;not null" json:"product_external_id"`
	Code              string          `gorm:"size:20;not null" json:"code"`
	Amount            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Status            string          `gorm:"size:20;not null;default:generated" json:"status"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
