package reconcile

import (
	"testing"

	"ynab-exchange/core/ynab"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_Apply(t *testing.T) {
	approved := ynab.Transaction{ID: "tx-1", Approved: true}

	tests := []struct {
		name         string
		policy       Policy
		source       ynab.Transaction
		adj          ynab.SaveTransaction
		wantAccepted bool
		wantPayee    string
		wantCategory string
	}{
		{
			name:         "Ordinary payee is accepted unchanged",
			policy:       Policy{ExchangeCategoryID: "cat-fx"},
			source:       approved,
			adj:          ynab.SaveTransaction{PayeeName: "Grocer", CategoryID: "cat-food"},
			wantAccepted: true,
			wantPayee:    "Grocer",
			wantCategory: "cat-food",
		},
		{
			name:   "Unapproved source is rejected",
			policy: Policy{},
			source: ynab.Transaction{ID: "tx-1"},
			adj:    ynab.SaveTransaction{PayeeName: "Grocer"},
		},
		{
			name:      "Uncategorized transfer is rejected",
			policy:    Policy{ExchangeCategoryID: "cat-fx"},
			source:    approved,
			adj:       ynab.SaveTransaction{PayeeName: "Transfer : Groceries"},
			wantPayee: "Transfer : Groceries",
		},
		{
			name:         "Uncategorized transfer is routed when enabled",
			policy:       Policy{ExchangeCategoryID: "cat-fx", RouteUncategorizedTransfers: true},
			source:       approved,
			adj:          ynab.SaveTransaction{PayeeName: "Transfer : Groceries"},
			wantAccepted: true,
			wantPayee:    "Groceries",
			wantCategory: "cat-fx",
		},
		{
			name:         "Categorized transfer is rewritten",
			policy:       Policy{ExchangeCategoryID: "cat-fx"},
			source:       approved,
			adj:          ynab.SaveTransaction{PayeeName: "Transfer : Savings", CategoryID: "cat-x"},
			wantAccepted: true,
			wantPayee:    "Exchange: Savings",
			wantCategory: "cat-fx",
		},
		{
			name:         "Starting balance is rewritten and routed",
			policy:       Policy{ExchangeCategoryID: "cat-fx"},
			source:       approved,
			adj:          ynab.SaveTransaction{PayeeName: "Starting Balance", CategoryID: "cat-inflow"},
			wantAccepted: true,
			wantPayee:    "Exchange",
			wantCategory: "cat-fx",
		},
		{
			name:         "Reserved prefix keeps category without exchange category",
			policy:       Policy{PayeeLabel: "FX"},
			source:       approved,
			adj:          ynab.SaveTransaction{PayeeName: "Manual Balance Adjustment", CategoryID: "cat-inflow"},
			wantAccepted: true,
			wantPayee:    "FX",
			wantCategory: "cat-inflow",
		},
		{
			name:   "Split adjustment keeps per-line categories",
			policy: Policy{ExchangeCategoryID: "cat-fx"},
			source: approved,
			adj: ynab.SaveTransaction{
				PayeeName:       "Reconciliation Balance Adjustment",
				Subtransactions: []ynab.SaveSubTransaction{{Amount: 1, CategoryID: "cat-a"}},
			},
			wantAccepted: true,
			wantPayee:    "Exchange",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adj := tt.adj
			verdict := tt.policy.Apply(tt.source, &adj)

			assert.Equal(t, tt.wantAccepted, verdict.Accepted)
			if !tt.wantAccepted {
				assert.NotEmpty(t, verdict.Reason)
				return
			}
			assert.Equal(t, tt.wantPayee, adj.PayeeName)
			assert.Equal(t, tt.wantCategory, adj.CategoryID)
		})
	}
}
