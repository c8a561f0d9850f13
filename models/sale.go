package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale is one completed (or partially/fully cancelled) POS transaction,
// addressed externally by its receipt identifier.
type Sale struct {
	ID          int             `gorm:"primary_key" json:"id"`
	ReceiptId   string          `gorm:"uniqueIndex;size:100;not null" json:"receipt_id" binding:"required"`
	BranchId    int             `gorm:"index;not null" json:"branch_id"`
	CashierId   string          `gorm:"size:100;not null" json:"cashier_id"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	SoldAt      time.Time       `gorm:"not null" json:"sold_at"`
	Status      string          `gorm:"size:30;not null;default:completed" json:"status"`
	Items       []SaleItem      `gorm:"foreignKey:SaleId;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// SaleItem is one independently cancellable line of a sale. Products are
// referenced by external id only. IsCancelled is monotonic: once true it
// never reverts.
type SaleItem struct {
	ID                int             `gorm:"primary_key" json:"id"`
	SaleId            int             `gorm:"index;not null" json:"sale_id"`
	ProductExternalId string          `gorm:"index;size:100;not null" json:"product_external_id"`
	Amount            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	IsCancelled       *bool           `gorm:"not null;default:false" json:"is_cancelled"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// ComputeSaleStatus derives the aggregate status from the items'
// cancellation flags: cancelled when no non-cancelled items remain,
// partially_cancelled when at least one item is cancelled, completed
// otherwise. There is no path back to completed once any item cancels.
func ComputeSaleStatus(items []SaleItem) string {
	if len(items) == 0 {
		return SaleStatusCompleted
	}
	remaining := 0
	for _, item := range items {
		if !utils.DereferencePtr(item.IsCancelled) {
			remaining++
		}
	}
	switch remaining {
	case len(items):
		return SaleStatusCompleted
	case 0:
		return SaleStatusCancelled
	default:
		return SaleStatusPartiallyCancelled
	}
}

// GetSaleByReceiptId loads a sale and its items by external receipt id.
func GetSaleByReceiptId(ctx context.Context, tx *gorm.DB, receiptId string) (*Sale, error) {
	var sale Sale
	err := tx.WithContext(ctx).Preload("Items").Where("receipt_id = ?", receiptId).First(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &utils.NotFoundError{Resource: "sale", Key: receiptId}
		}
		return nil, err
	}
	return &sale, nil
}

// RecomputeStatus persists the derived status after a cancellation write.
func (s *Sale) RecomputeStatus(ctx context.Context, tx *gorm.DB) error {
	var items []SaleItem
	if err := tx.WithContext(ctx).Where("sale_id = ?", s.ID).Find(&items).Error; err != nil {
		return err
	}
	status := ComputeSaleStatus(items)
	if status == s.Status {
		return nil
	}
	s.Status = status
	return tx.WithContext(ctx).Model(&Sale{}).Where("id = ?", s.ID).
		Update("status", status).Error
}
