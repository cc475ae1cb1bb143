package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-wms/internal/apperr"
)

// forUpdate applies a row-level lock on dialects that support it. SQLite
// serializes writers on its own and its grammar rejects FOR UPDATE, so the
// clause is skipped there.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// updateVersioned writes updates only if the optimistic version still
// matches, bumping it in the same statement. Zero rows affected means a
// concurrent writer won the race.
func updateVersioned(tx *gorm.DB, mdl interface{}, id uuid.UUID, version int, updates map[string]interface{}) error {
	updates["version"] = version + 1
	res := tx.Model(mdl).
		Where("id = ? AND version = ?", id, version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ConcurrencyConflict("record changed by another user, reload and retry")
	}
	return nil
}
