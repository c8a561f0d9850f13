package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"gorm.io/gorm"
)

type Branch struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Code      string    `gorm:"uniqueIndex;size:100;not null" json:"code" binding:"required"`
	Name      string    `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Address   string    `gorm:"type:text" json:"address"`
	Phone     string    `gorm:"size:20" json:"phone"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBranch struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func (input *NewBranch) validate(ctx context.Context) error {
	exists, err := utils.ResourceExistsWhere[Branch](ctx, "code = ?", input.Code)
	if err != nil {
		return err
	}
	if exists {
		return utils.NewValidationError("code", "duplicate branch code")
	}
	if len(strings.TrimSpace(input.Phone)) > 0 {
		if err := utils.ValidatePhoneNumber(input.Phone, "MM"); err != nil {
			return utils.NewValidationError("phone", "invalid phone number")
		}
	}
	return nil
}

func CreateBranch(ctx context.Context, input *NewBranch) (*Branch, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	branch := Branch{
		Code:     input.Code,
		Name:     input.Name,
		Address:  input.Address,
		Phone:    input.Phone,
		IsActive: utils.NewTrue(),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&branch).Error; err != nil {
		return nil, &utils.PersistenceError{Op: "CreateBranch", Err: err}
	}
	// A deleted-and-recreated code must not serve the old cached row.
	_ = config.RemoveRedisKey(branchCacheKey(branch.Code))
	return &branch, nil
}

func branchCacheKey(code string) string {
	return fmt.Sprintf("branch:code:%s", code)
}

// GetBranchByCode resolves a branch by its external code, consulting the
// Redis cache first. The cache is best-effort: misses and Redis errors fall
// through to the store.
func GetBranchByCode(ctx context.Context, tx *gorm.DB, code string) (*Branch, error) {
	var cached Branch
	if found, err := config.GetRedisObject(branchCacheKey(code), &cached); err == nil && found {
		return &cached, nil
	}

	var branch Branch
	err := tx.WithContext(ctx).Where("code = ?", code).First(&branch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &utils.NotFoundError{Resource: "branch", Key: code}
		}
		return nil, err
	}
	_ = config.SetRedisObject(branchCacheKey(code), branch, 10*time.Minute)
	return &branch, nil
}
