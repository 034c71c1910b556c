// Package ynab is a small REST client for the YNAB v1 API.
//
// Only the calls needed by the reconcile engine are implemented:
//   - ListAccounts: all accounts of a budget.
//   - ListTransactions: one account's transactions, either since a server knowledge
//     token (delta request) or since a calendar date.
//   - CreateTransaction, UpdateTransactionFlag, DeleteTransaction: mutations that
//     return the budget's new server knowledge.
//
// Amounts are integer milliunits (1/1000 of a currency unit) as on the wire.
//
// # Errors
//
// Non-2xx responses are returned as *APIError carrying the HTTP status and the
// error object YNAB puts in the body.
//
// # Usage
//
//	client := ynab.NewClient(cfg.YNAB)
//	txs, knowledge, err := client.ListTransactions(ctx, budgetID, accountID, ynab.Since{Knowledge: 42})
package ynab
