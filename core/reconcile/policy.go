package reconcile

import (
	"strings"

	"ynab-exchange/core/ynab"
)

// TransferPrefix starts the payee name of every ledger transfer.
const TransferPrefix = "Transfer :"

// ReservedPayeePrefixes are payees the ledger generates itself. Their
// adjustments must not land in ordinary spending categories.
var ReservedPayeePrefixes = []string{
	"Starting Balance",
	"Manual Balance Adjustment",
	"Reconciliation Balance Adjustment",
	TransferPrefix,
}

// Verdict is the policy decision for one adjustment.
type Verdict struct {
	Accepted  bool
	Rewritten bool
	Reason    string
}

// Policy decides whether an adjustment may be created and rewrites the payee
// and category of system generated transactions.
type Policy struct {
	// ExchangeCategoryID receives rewritten adjustments. Empty keeps the category.
	ExchangeCategoryID string
	// PayeeLabel replaces reserved prefixes. Defaults to "Exchange".
	PayeeLabel string
	// RouteUncategorizedTransfers routes uncategorized transfers instead of rejecting them.
	RouteUncategorizedTransfers bool
}

// Apply checks the rules in order and may modify adj in place.
func (p Policy) Apply(source ynab.Transaction, adj *ynab.SaveTransaction) Verdict {
	if !source.Approved {
		return Verdict{Reason: "source transaction is not approved"}
	}

	if strings.HasPrefix(adj.PayeeName, TransferPrefix) && adj.CategoryID == "" {
		if !p.RouteUncategorizedTransfers {
			return Verdict{Reason: "uncategorized transfer"}
		}
		remainder := strings.TrimSpace(strings.TrimPrefix(adj.PayeeName, TransferPrefix))
		if remainder == "" {
			remainder = p.label()
		}
		adj.PayeeName = remainder
		p.route(adj)
		return Verdict{Accepted: true, Rewritten: true, Reason: "transfer routed to exchange category"}
	}

	for _, prefix := range ReservedPayeePrefixes {
		if !strings.HasPrefix(adj.PayeeName, prefix) {
			continue
		}
		remainder := strings.TrimSpace(strings.TrimPrefix(adj.PayeeName, prefix))
		if remainder == "" {
			adj.PayeeName = p.label()
		} else {
			adj.PayeeName = p.label() + ": " + remainder
		}
		p.route(adj)
		return Verdict{Accepted: true, Rewritten: true, Reason: "reserved payee " + prefix}
	}

	return Verdict{Accepted: true}
}

func (p Policy) label() string {
	if p.PayeeLabel == "" {
		return "Exchange"
	}
	return p.PayeeLabel
}

// route moves the adjustment to the exchange category. Split adjustments keep
// their per-line categories since a split parent cannot carry one.
func (p Policy) route(adj *ynab.SaveTransaction) {
	if p.ExchangeCategoryID == "" || len(adj.Subtransactions) > 0 {
		return
	}
	adj.CategoryID = p.ExchangeCategoryID
}
