package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Product is keyed by ExternalId: that is the sole dedup key for
// catalog-created events. Barcode is a non-unique display attribute.
type Product struct {
	ID            int              `gorm:"primary_key" json:"id"`
	ExternalId    string           `gorm:"uniqueIndex;size:100;not null" json:"external_id" binding:"required"`
	Name          string           `gorm:"size:255;not null" json:"name" binding:"required"`
	Barcode       string           `gorm:"index;size:100" json:"barcode"`
	Description   string           `gorm:"type:text" json:"description"`
	Price         decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"price"`
	DiscountPrice *decimal.Decimal `gorm:"type:decimal(20,4);default:null" json:"discount_price"`
	Unit          string           `gorm:"size:50;not null" json:"unit"`
	Category      string           `gorm:"size:100" json:"category"`
	IsActive      *bool            `gorm:"not null;default:true" json:"is_active"`
	Status        string           `gorm:"size:20;not null;default:new" json:"status"`
	SequenceId    *int64           `gorm:"index" json:"sequence_id"`
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// NewCatalogProduct is one product entry in a catalog created/updated event.
type NewCatalogProduct struct {
	Id            string           `json:"id" binding:"required"`
	Name          string           `json:"name" binding:"required"`
	Barcode       string           `json:"barcode" binding:"required"`
	Description   string           `json:"description"`
	Price         *decimal.Decimal `json:"price" binding:"required"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	Unit          string           `json:"unit" binding:"required"`
	Category      string           `json:"category"`
}

// Validate applies the numeric and format rules binding tags cannot express.
func (p *NewCatalogProduct) Validate(index string) map[string]string {
	fields := map[string]string{}
	if !utils.IsValidBarcode(p.Barcode) {
		fields["products["+index+"].barcode"] = "must be alphanumeric or hyphen"
	}
	if p.Price != nil && p.Price.IsNegative() {
		fields["products["+index+"].price"] = "must be non-negative"
	}
	if p.DiscountPrice != nil && p.DiscountPrice.IsNegative() {
		fields["products["+index+"].discount_price"] = "must be non-negative"
	}
	return fields
}

func (p *NewCatalogProduct) toProduct(sequenceId *int64) Product {
	price := decimal.Zero
	if p.Price != nil {
		price = *p.Price
	}
	return Product{
		ExternalId:    p.Id,
		Name:          p.Name,
		Barcode:       p.Barcode,
		Description:   p.Description,
		Price:         price,
		DiscountPrice: p.DiscountPrice,
		Unit:          p.Unit,
		Category:      p.Category,
		IsActive:      utils.NewTrue(),
		Status:        ProductStatusProcessed,
		SequenceId:    sequenceId,
	}
}

// ExistingProductExternalIds returns which of the given external ids are
// already known, so catalog-created re-delivery stays a no-op for them.
func ExistingProductExternalIds(ctx context.Context, tx *gorm.DB, externalIds []string) (map[string]struct{}, error) {
	var ids []string
	err := tx.WithContext(ctx).Model(&Product{}).
		Where("external_id IN ?", utils.UniqueSlice(externalIds)).
		Pluck("external_id", &ids).Error
	if err != nil {
		return nil, err
	}
	existing := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		existing[id] = struct{}{}
	}
	return existing, nil
}

// InsertProductIfAbsent inserts the product unless its external id is
// already present. Returns true when a row was written.
func InsertProductIfAbsent(ctx context.Context, tx *gorm.DB, input *NewCatalogProduct, sequenceId *int64) (bool, error) {
	product := input.toProduct(sequenceId)
	result := tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoNothing: true,
		}).
		Create(&product)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpsertProductByExternalId inserts when absent and overwrites the listed
// fields when present. Idempotent by construction; the creation timestamp
// is left untouched on update.
func UpsertProductByExternalId(ctx context.Context, tx *gorm.DB, input *NewCatalogProduct, sequenceId *int64) error {
	product := input.toProduct(sequenceId)
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "barcode", "description", "price", "discount_price",
				"unit", "category", "status", "sequence_id", "updated_at",
			}),
		}).
		Create(&product).Error
}

// GetProductByExternalId resolves a product by its external id.
func GetProductByExternalId(ctx context.Context, tx *gorm.DB, externalId string) (*Product, error) {
	var product Product
	err := tx.WithContext(ctx).Where("external_id = ?", externalId).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &utils.NotFoundError{Resource: "product", Key: externalId}
		}
		return nil, err
	}
	return &product, nil
}
