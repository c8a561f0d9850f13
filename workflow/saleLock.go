package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"github.com/bsm/redislock"
	"gorm.io/gorm"
)

// AcquireSaleMutationLock serializes mutations per sale across instances
// using MySQL advisory locks, so at most one cancellation is in flight per
// receipt at a time.
// NOTE: GET_LOCK is connection-scoped, so this must be called on the same
// *gorm.DB that will run the mutation transaction.
func AcquireSaleMutationLock(tx *gorm.DB, receiptId string) error {
	lockName := fmt.Sprintf("sale:%s", receiptId)
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, 30)", lockName).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("could not acquire mutation lock for receipt_id=%s", receiptId)
	}
	return nil
}

func ReleaseSaleMutationLock(tx *gorm.DB, receiptId string) {
	lockName := fmt.Sprintf("sale:%s", receiptId)
	var _ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&_ok).Error
}

// ObtainSaleRedisLock is a best-effort fast-fail layer in front of the
// advisory lock. Reliability must not depend on Redis: when the locker is
// unavailable the caller proceeds to the advisory lock alone.
func ObtainSaleRedisLock(ctx context.Context, receiptId string) (*redislock.Lock, error) {
	locker := config.GetRedisLock()
	if locker == nil {
		return nil, nil
	}
	lock, err := locker.Obtain(ctx, fmt.Sprintf("sale-lock:%s", receiptId), 30*time.Second, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, errors.New("sale mutation already in flight")
	}
	if err != nil {
		return nil, nil
	}
	return lock, nil
}
