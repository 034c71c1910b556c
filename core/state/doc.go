// Package state persists reconciliation state between passes.
//
// Three tables back a deployment with a database:
//
//   - budget_cursors: the server knowledge reached by the last successful pass
//   - mirror_records: which mirrors were created for which source transaction
//   - ledger_leases: the per-budget lease that keeps passes single flight
//
// Cursors can live in object storage instead (ObjectCursorStore) for
// deployments without a database; records and leases then fall back to the
// memo scan and the in-process locker.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err := state.AutoMigrate(db); err != nil {
//	    return err
//	}
//	cursors := state.NewDBCursorStore(db)
//	locker := state.NewDBLocker(db, 15*time.Minute, logger)
package state
