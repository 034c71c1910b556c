package ynab

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// DateLayout is the calendar date format used by the API.
const DateLayout = "2006-01-02"

// FlagColor is the colored flag a user can put on a transaction.
type FlagColor string

const (
	FlagNone   FlagColor = ""
	FlagRed    FlagColor = "red"
	FlagOrange FlagColor = "orange"
	FlagYellow FlagColor = "yellow"
	FlagGreen  FlagColor = "green"
	FlagBlue   FlagColor = "blue"
	FlagPurple FlagColor = "purple"
)

// ClearedStatus is the cleared state of a transaction.
type ClearedStatus string

const (
	Cleared    ClearedStatus = "cleared"
	Uncleared  ClearedStatus = "uncleared"
	Reconciled ClearedStatus = "reconciled"
)

// Account is a budget account.
type Account struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	OnBudget bool   `json:"on_budget"`
	Closed   bool   `json:"closed"`
	Deleted  bool   `json:"deleted"`
	Balance  int64  `json:"balance"`
}

// SubTransaction is one line of a split transaction.
type SubTransaction struct {
	ID            string `json:"id"`
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
	Memo          string `json:"memo"`
	PayeeID       string `json:"payee_id"`
	PayeeName     string `json:"payee_name"`
	CategoryID    string `json:"category_id"`
	Deleted       bool   `json:"deleted"`
}

// Transaction is a transaction as returned by the list endpoints.
// Nullable string fields decode to "".
type Transaction struct {
	ID                string           `json:"id"`
	Date              string           `json:"date"`
	Amount            int64            `json:"amount"`
	Memo              string           `json:"memo"`
	Cleared           ClearedStatus    `json:"cleared"`
	Approved          bool             `json:"approved"`
	FlagColor         FlagColor        `json:"flag_color"`
	AccountID         string           `json:"account_id"`
	AccountName       string           `json:"account_name"`
	PayeeID           string           `json:"payee_id"`
	PayeeName         string           `json:"payee_name"`
	CategoryID        string           `json:"category_id"`
	TransferAccountID string           `json:"transfer_account_id"`
	ImportID          string           `json:"import_id"`
	Deleted           bool             `json:"deleted"`
	Subtransactions   []SubTransaction `json:"subtransactions"`
}

// LiveSubtransactions returns the subtransactions that are not deleted, in order.
func (t Transaction) LiveSubtransactions() []SubTransaction {
	live := make([]SubTransaction, 0, len(t.Subtransactions))
	for _, sub := range t.Subtransactions {
		if !sub.Deleted {
			live = append(live, sub)
		}
	}
	return live
}

// SaveSubTransaction is a split line in a create payload.
type SaveSubTransaction struct {
	Amount     int64  `json:"amount"`
	PayeeID    string `json:"payee_id,omitempty"`
	PayeeName  string `json:"payee_name,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
	Memo       string `json:"memo,omitempty"`
}

// SaveTransaction is the create payload for a single transaction.
// Empty optional fields are omitted so the API treats them as null.
type SaveTransaction struct {
	AccountID       string               `json:"account_id"`
	Date            string               `json:"date"`
	Amount          int64                `json:"amount"`
	PayeeID         string               `json:"payee_id,omitempty"`
	PayeeName       string               `json:"payee_name,omitempty"`
	CategoryID      string               `json:"category_id,omitempty"`
	Memo            string               `json:"memo,omitempty"`
	Cleared         ClearedStatus        `json:"cleared,omitempty"`
	Approved        bool                 `json:"approved"`
	FlagColor       FlagColor            `json:"flag_color,omitempty"`
	Subtransactions []SaveSubTransaction `json:"subtransactions,omitempty"`
}

// SubtransactionTotal returns the sum of the split amounts.
func (t SaveTransaction) SubtransactionTotal() int64 {
	var total int64
	for _, sub := range t.Subtransactions {
		total += sub.Amount
	}
	return total
}

// MutationResult is what every mutating call returns: the affected transaction
// and the budget's server knowledge after the change.
type MutationResult struct {
	Transaction     Transaction
	ServerKnowledge int64
}

// Since bounds a transaction listing. A positive Knowledge asks for a delta
// since that server knowledge; otherwise Date is used as since_date.
type Since struct {
	Knowledge int64
	Date      time.Time
}

// IsDelta reports whether the listing is a server knowledge delta request.
func (s Since) IsDelta() bool {
	return s.Knowledge > 0
}

func (s Since) String() string {
	if s.IsDelta() {
		return fmt.Sprintf("knowledge:%d", s.Knowledge)
	}
	return "date:" + s.Date.Format(DateLayout)
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	ID         string `json:"id"`
	Name       string `json:"name"`
	Detail     string `json:"detail"`
}

func (e *APIError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("ynab api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("ynab api: status %d: %s (%s): %s", e.StatusCode, e.Name, e.ID, e.Detail)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
