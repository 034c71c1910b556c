// Package database opens the SQL database that holds reconciliation state.
//
// It wraps GORM and supports two drivers: mysql for shared deployments and
// sqlite for single host runs and tests. Connections are opened with
// TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns read the live schema of a table. The
// exchange health check uses them to confirm the state tables match the
// models before a pass relies on them.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//
//	missing, err := database.MissingColumns(db, "budget_cursors", []string{"budget_id", "knowledge"})
package database
