package utils

import (
	"context"

	"bitbucket.org/mmdatafocus/pos_backend/config"
)

// ResourceCountWhere counts rows of T matching the condition.
func ResourceCountWhere[T any](ctx context.Context, condition string, values ...interface{}) (int64, error) {
	var model T

	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&model).Where(condition, values...).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ResourceExistsWhere reports whether at least one row of T matches.
func ResourceExistsWhere[T any](ctx context.Context, condition string, values ...interface{}) (bool, error) {
	count, err := ResourceCountWhere[T](ctx, condition, values...)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
