package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// firstForUpdate loads a row with a FOR UPDATE lock where the dialect
// supports it. Sqlite serializes writers on its own, so the clause is
// skipped there.
func firstForUpdate(tx *gorm.DB, dest interface{}, conds ...interface{}) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx.First(dest, conds...)
}
