package reconcile

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"ynab-exchange/core/ynab"

	"github.com/shopspring/decimal"
)

// fakeLedger is an in-memory Ledger that records every call.
type fakeLedger struct {
	mu sync.Mutex

	accounts  []ynab.Account
	txs       map[string][]ynab.Transaction
	knowledge int64

	accountsErr error
	listErr     map[string]error
	createErr   error
	flagErr     error
	deleteErr   map[string]error

	calls   []string
	sinces  map[string]ynab.Since
	created []ynab.SaveTransaction
	deleted []string
	flagged map[string]ynab.FlagColor
	nextID  int
}

func newFakeLedger(knowledge int64, accounts ...ynab.Account) *fakeLedger {
	return &fakeLedger{
		accounts:  accounts,
		txs:       make(map[string][]ynab.Transaction),
		knowledge: knowledge,
		listErr:   make(map[string]error),
		deleteErr: make(map[string]error),
		sinces:    make(map[string]ynab.Since),
		flagged:   make(map[string]ynab.FlagColor),
	}
}

func (f *fakeLedger) ListAccounts(_ context.Context, _ string) ([]ynab.Account, error) {
	if f.accountsErr != nil {
		return nil, f.accountsErr
	}
	return f.accounts, nil
}

func (f *fakeLedger) ListTransactions(_ context.Context, _ string, accountID string, since ynab.Since) ([]ynab.Transaction, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sinces[accountID] = since
	if err := f.listErr[accountID]; err != nil {
		return nil, 0, err
	}
	return f.txs[accountID], f.knowledge, nil
}

func (f *fakeLedger) CreateTransaction(_ context.Context, _ string, tx ynab.SaveTransaction) (*ynab.MutationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	f.knowledge++
	f.calls = append(f.calls, "create")
	f.created = append(f.created, tx)
	return &ynab.MutationResult{
		Transaction:     ynab.Transaction{ID: fmt.Sprintf("new-mirror-%d", f.nextID), Amount: tx.Amount, Memo: tx.Memo},
		ServerKnowledge: f.knowledge,
	}, nil
}

func (f *fakeLedger) UpdateTransactionFlag(_ context.Context, _ string, transactionID string, flag ynab.FlagColor) (*ynab.MutationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.flagErr != nil {
		return nil, f.flagErr
	}
	f.knowledge++
	f.calls = append(f.calls, "flag:"+transactionID)
	f.flagged[transactionID] = flag
	return &ynab.MutationResult{
		Transaction:     ynab.Transaction{ID: transactionID, FlagColor: flag},
		ServerKnowledge: f.knowledge,
	}, nil
}

func (f *fakeLedger) DeleteTransaction(_ context.Context, _ string, transactionID string) (*ynab.MutationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "delete:"+transactionID)
	if err := f.deleteErr[transactionID]; err != nil {
		return nil, err
	}
	f.knowledge++
	f.deleted = append(f.deleted, transactionID)
	return &ynab.MutationResult{
		Transaction:     ynab.Transaction{ID: transactionID, Deleted: true},
		ServerKnowledge: f.knowledge,
	}, nil
}

func notFound() error {
	return &ynab.APIError{StatusCode: http.StatusNotFound, ID: "404.2", Name: "resource_not_found"}
}

type fixedRate struct {
	rate  decimal.Decimal
	err   error
	asked []string
}

func (r *fixedRate) Rate(_ context.Context, from string) (decimal.Decimal, error) {
	r.asked = append(r.asked, from)
	return r.rate, r.err
}

type memoryCursors struct {
	values map[string]int64
	puts   int
	getErr error
}

func newMemoryCursors() *memoryCursors {
	return &memoryCursors{values: make(map[string]int64)}
}

func (c *memoryCursors) Get(_ context.Context, budgetID string) (int64, bool, error) {
	if c.getErr != nil {
		return 0, false, c.getErr
	}
	v, ok := c.values[budgetID]
	return v, ok, nil
}

func (c *memoryCursors) Put(_ context.Context, budgetID string, knowledge int64) error {
	c.puts++
	c.values[budgetID] = knowledge
	return nil
}

type memoryRecords struct {
	mu      sync.Mutex
	records map[string]Record
	saveErr error
}

func newMemoryRecords() *memoryRecords {
	return &memoryRecords{records: make(map[string]Record)}
}

func (r *memoryRecords) Load(_ context.Context, budgetID, sourceID string) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[budgetID+"/"+sourceID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *memoryRecords) Save(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saveErr != nil {
		return r.saveErr
	}
	r.records[rec.BudgetID+"/"+rec.SourceID] = rec
	return nil
}

type recordingPublisher struct {
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event Event) error {
	p.events = append(p.events, event)
	return p.err
}
