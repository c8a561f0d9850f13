package models

import (
	"context"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NewPromoCodeRequest is the synchronous promo-code generation input.
type NewPromoCodeRequest struct {
	ReceiptId   string             `json:"receipt_id" binding:"required"`
	TotalAmount *decimal.Decimal   `json:"total_amount" binding:"required"`
	SoldAt      *time.Time         `json:"sold_at" binding:"required"`
	BranchId    string             `json:"branch_id" binding:"required"`
	CashierId   string             `json:"cashier_id" binding:"required"`
	Items       []NewPromoCodeItem `json:"items" binding:"required,min=1,dive"`
}

type NewPromoCodeItem struct {
	ProductId string           `json:"product_id" binding:"required"`
	Amount    *decimal.Decimal `json:"amount" binding:"required"`
}

type GeneratedCode struct {
	ProductId string `json:"product_id"`
	Code      string `json:"code"`
}

type PromoCodeResult struct {
	ReceiptId string          `json:"receipt_id"`
	Codes     []GeneratedCode `json:"codes"`
}

// validate applies the numeric rules and the store-backed duplicate check.
// The duplicate check runs at validation time; the unique index on
// receipt_id is the backstop for the read-then-write race.
func (input *NewPromoCodeRequest) validate(ctx context.Context) error {
	fields := map[string]string{}
	if input.TotalAmount.IsNegative() {
		fields["total_amount"] = "must be non-negative"
	}
	for i, item := range input.Items {
		if item.Amount.IsNegative() {
			fields[fieldAt("items", i, "amount")] = "must be non-negative"
		}
	}
	if len(fields) > 0 {
		return &utils.ValidationError{Fields: fields}
	}

	exists, err := utils.ResourceExistsWhere[Sale](ctx, "receipt_id = ?", input.ReceiptId)
	if err != nil {
		return err
	}
	if exists {
		return utils.NewValidationError("receipt_id", "already processed")
	}
	return nil
}

// GeneratePromoCodes is the synchronous transactional path: it validates,
// creates the sale with its line items, generates one code per item and
// records each in the generation history. All rows commit or none do.
func GeneratePromoCodes(ctx context.Context, input *NewPromoCodeRequest, generator *utils.CodeGenerator) (*PromoCodeResult, error) {
	db := config.GetDB()

	branch, err := GetBranchByCode(ctx, db, input.BranchId)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	result := PromoCodeResult{ReceiptId: input.ReceiptId}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale := Sale{
			ReceiptId:   input.ReceiptId,
			BranchId:    branch.ID,
			CashierId:   input.CashierId,
			TotalAmount: *input.TotalAmount,
			SoldAt:      *input.SoldAt,
			Status:      SaleStatusCompleted,
		}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}

		for _, item := range input.Items {
			saleItem := SaleItem{
				SaleId:            sale.ID,
				ProductExternalId: item.ProductId,
				Amount:            *item.Amount,
				IsCancelled:       utils.NewFalse(),
			}
			if err := tx.Create(&saleItem).Error; err != nil {
				return err
			}

			code, err := generator.Generate()
			if err != nil {
				return err
			}
			history := PromoCodeGenerationHistory{
				SaleId:            sale.ID,
				SaleItemId:        saleItem.ID,
				ProductExternalId: item.ProductId,
				Code:              code,
				Amount:            *item.Amount,
				Status:            PromoCodeStatusGenerated,
			}
			if err := tx.Create(&history).Error; err != nil {
				return err
			}
			result.Codes = append(result.Codes, GeneratedCode{ProductId: item.ProductId, Code: code})
		}
		return nil
	})
	if err != nil {
		return nil, wrapGenerationError(err)
	}
	return &result, nil
}

// wrapGenerationError classifies a failed generation transaction. The
// validation-time duplicate check can race a concurrent request for the same
// receipt; when the unique index on receipt_id fires inside the transaction
// the loser is still a duplicate submission, not a server fault.
func wrapGenerationError(err error) error {
	if utils.IsDuplicateKeyErr(err) {
		return utils.NewValidationError("receipt_id", "already processed")
	}
	return &utils.PersistenceError{Op: "GeneratePromoCodes", Err: err}
}

func fieldAt(array string, index int, field string) string {
	return array + "[" + strconv.Itoa(index) + "]." + field
}
