package common

import (
	"errors"
	"log"
	"time"

	"pbs/src/db"
	"pbs/src/models"
	"pbs/src/types"

	"gorm.io/gorm"
)

var ErrLastAdmin = errors.New("cannot remove the last admin account")

// AdminCount returns the number of admin users visible to tx.
func AdminCount(tx *gorm.DB) (int64, error) {
	var count int64
	err := tx.
		Model(&models.User{}).
		Where("role = ?", types.ROLE_ADMIN).
		Count(&count).
		Error
	return count, err
}

// GuardLastAdmin fails with ErrLastAdmin when target is the only remaining
// admin, so delete and demote paths can reject in one place.
func GuardLastAdmin(tx *gorm.DB, target *models.User) error {
	if target.Role != types.ROLE_ADMIN {
		return nil
	}
	count, err := AdminCount(tx)
	if err != nil {
		return err
	}
	if count <= 1 {
		return ErrLastAdmin
	}
	return nil
}

// SweepExpiredResetTokens clears reset tokens whose expiry has passed.
func SweepExpiredResetTokens() {
	gdb := db.GetDb()
	result := gdb.
		Model(&models.User{}).
		Where("reset_token IS NOT NULL").
		Where("reset_token_expiry < ?", time.Now()).
		Updates(map[string]any{"reset_token": nil, "reset_token_expiry": nil})
	if result.Error != nil {
		log.Printf("[sweep] Error clearing expired reset tokens: %s\n", result.Error.Error())
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("[sweep] Cleared %d expired reset tokens\n", result.RowsAffected)
	}
}
