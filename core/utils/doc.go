// Package utils provides small helpers shared by the reconcile engine and the
// HTTP layer: milliunit formatting for logs and reports, and rune-safe string
// truncation for ledger text fields.
package utils
