package dao

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrSchemaMismatch = errors.New("database schema does not match the models")

func models() []any {
	return []any{
		&Event{},
		&Run{},
		&RunResult{},
		&Profile{},
	}
}

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(models()...)
}

// CheckSchema verifies every table and column the models need is present.
// Run at startup so a stale database fails fast instead of on the first query.
func CheckSchema(db *gorm.DB) error {
	migrator := db.Migrator()

	var missing []string
	for _, model := range models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("stmt.Parse -> %w", err)
		}

		table := stmt.Schema.Table
		if !migrator.HasTable(model) {
			missing = append(missing, table)
			continue
		}

		for _, field := range stmt.Schema.Fields {
			if field.DBName == "" {
				continue
			}
			if !migrator.HasColumn(model, field.DBName) {
				missing = append(missing, table+"."+field.DBName)
			}
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrSchemaMismatch, missing)
	}

	return nil
}
