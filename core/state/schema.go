package state

import (
	"fmt"

	"ynab-exchange/core/database"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the state tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate state tables: %w", err)
	}
	return nil
}

// SchemaReport is the result of comparing the live schema with the models.
type SchemaReport struct {
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
}

// TableReport lists what one table is missing.
type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	Status         string   `json:"status"` // "ok", "error"
}

// CheckSchema verifies every state table has the columns its model expects.
func CheckSchema(db *gorm.DB) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{Matched: true, Tables: make(map[string]TableReport)}

	for _, model := range Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("failed to parse model %T: %w", model, err)
		}

		expected := make([]string, 0, len(stmt.Schema.Fields))
		for _, field := range stmt.Schema.Fields {
			if field.DBName != "" {
				expected = append(expected, field.DBName)
			}
		}

		missing, err := database.MissingColumns(db, stmt.Schema.Table, expected)
		if err != nil {
			return nil, err
		}

		table := TableReport{MissingColumns: missing, Status: "ok"}
		if len(missing) > 0 {
			table.Status = "error"
			report.Matched = false
		}
		report.Tables[stmt.Schema.Table] = table
	}

	return report, nil
}
