// Package exchange exposes reconciliation passes to operators.
//
// The Service runs a pass per configured budget, archives pass reports when
// enabled, and administers cursors. It is shared by the HTTP handler, the
// interval Scheduler and the CLI.
//
// # HTTP Endpoints
//
//   - GET /run-task : Runs every budget; plain text outcome for cron triggers.
//   - POST /exchange/run : Runs every budget and returns pass results (supports ?dry_run=true).
//   - GET /exchange/budgets : Lists configured budgets.
//   - POST /exchange/budgets/:id/run : Runs one budget (supports ?dry_run=true).
//   - GET /exchange/budgets/:id/cursor : Shows the stored server knowledge.
//   - DELETE /exchange/budgets/:id/cursor : Resets the cursor.
//   - GET /exchange/budgets/:id/reports : Lists archived pass ids.
//   - GET /exchange/budgets/:id/reports/:pass : Returns one archived pass result.
//   - GET /exchange/health : Checks the state schema.
package exchange
