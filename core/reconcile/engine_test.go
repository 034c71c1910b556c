package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"ynab-exchange/core/rates"
	"ynab-exchange/core/ynab"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testBudget  = Budget{ID: "budget-1", BaseCurrency: "CAD", Flag: "🇺🇸"}
	chequing    = ynab.Account{ID: "acc-usd", Name: "🇺🇸 Chequing"}
	mirrorAcc   = ynab.Account{ID: "acc-fx", Name: "💱 Exchange"}
	plainAcc    = ynab.Account{ID: "acc-cad", Name: "Chequing"}
	testNow     = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	defaultConf = Config{MirrorMarker: "💱", ReconciledFlag: "green", LookbackDays: 30, RoundingStep: 1, ExchangePayeeLabel: "Exchange"}
)

type engineFixture struct {
	ledger    *fakeLedger
	rate      *fixedRate
	cursors   *memoryCursors
	records   *memoryRecords
	publisher *recordingPublisher
	engine    *Engine
}

func newFixture(t *testing.T, cfg Config, accounts ...ynab.Account) *engineFixture {
	t.Helper()

	f := &engineFixture{
		ledger:    newFakeLedger(100, accounts...),
		rate:      &fixedRate{rate: decimal.RequireFromString("1.35")},
		cursors:   newMemoryCursors(),
		records:   newMemoryRecords(),
		publisher: &recordingPublisher{},
	}
	f.engine = NewEngine(cfg, Deps{
		Ledger:    f.ledger,
		Rates:     f.rate,
		Cursors:   f.cursors,
		Records:   f.records,
		Publisher: f.publisher,
	})
	f.engine.now = func() time.Time { return testNow }
	return f
}

func approvedTx(id string, amount int64) ynab.Transaction {
	return ynab.Transaction{
		ID:         id,
		Date:       "2024-03-10",
		Amount:     amount,
		Approved:   true,
		PayeeName:  "Diner",
		CategoryID: "cat-food",
		AccountID:  chequing.ID,
	}
}

func TestEngine_NewTransaction(t *testing.T) {
	f := newFixture(t, defaultConf, chequing, mirrorAcc, plainAcc)
	f.ledger.txs[chequing.ID] = []ynab.Transaction{approvedTx("tx-1", -100000)}

	result, err := f.engine.Run(context.Background(), testBudget, Options{})
	require.NoError(t, err)

	require.Len(t, f.ledger.created, 1)
	adj := f.ledger.created[0]
	assert.Equal(t, int64(-35000), adj.Amount)
	assert.Equal(t, mirrorAcc.ID, adj.AccountID)
	assert.Equal(t, "Chequing: tx-1", adj.Memo)
	assert.Equal(t, []string{"create", "flag:tx-1"}, f.ledger.calls)
	assert.Equal(t, ynab.FlagGreen, f.ledger.flagged["tx-1"])

	assert.Equal(t, []string{"USD"}, f.rate.asked)
	assert.Equal(t, int64(102), f.cursors.values[testBudget.ID])
	assert.Equal(t, int64(102), result.EndKnowledge)
	assert.Equal(t, mirrorAcc.ID, result.MirrorAccountID)
	assert.Equal(t, 1, result.Summary.New)
	assert.Equal(t, 1, result.Summary.MirrorsCreated)
	assert.Equal(t, int64(-35000), result.Summary.NetAdjustment)

	rec, _ := f.records.Load(context.Background(), testBudget.ID, "tx-1")
	require.NotNil(t, rec)
	assert.Equal(t, RecordMirrored, rec.State)
	assert.Equal(t, []string{"new-mirror-1"}, rec.MirrorIDs)

	require.Len(t, f.publisher.events, 2)
	assert.Equal(t, EventMirrorCreated, f.publisher.events[0].Type)
	assert.Equal(t, EventSourceMarked, f.publisher.events[1].Type)
	assert.Equal(t, result.PassID, f.publisher.events[0].PassID)
}

func TestEngine_DeletedTransaction(t *testing.T) {
	f := newFixture(t, defaultConf, chequing, mirrorAcc)
	deleted := approvedTx("tx-1", -100000)
	deleted.Deleted = true
	f.ledger.txs[chequing.ID] = []ynab.Transaction{deleted}
	f.ledger.txs[mirrorAcc.ID] = []ynab.Transaction{
		{ID: "m-1", Memo: "Chequing: tx-1"},
		{ID: "m-2", Memo: "Chequing: again - tx-1"},
		{ID: "m-3", Memo: "Chequing: tx-2"},
		{ID: "m-4", Memo: "Chequing: tx-1", Deleted: true},
	}

	_, err := f.engine.Run(context.Background(), testBudget, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"m-1", "m-2"}, f.ledger.deleted)
	assert.Empty(t, f.ledger.created)
	assert.Empty(t, f.ledger.flagged)

	rec, _ := f.records.Load(context.Background(), testBudget.ID, "tx-1")
	require.NotNil(t, rec)
	assert.Equal(t, RecordDeleted, rec.State)
}

func TestEngine_UpdatedTransaction(t *testing.T) {
	f := newFixture(t, defaultConf, chequing, mirrorAcc)
	edited := approvedTx("tx-1", -200000)
	edited.FlagColor = ynab.FlagGreen
	f.ledger.txs[chequing.ID] = []ynab.Transaction{edited}
	f.ledger.txs[mirrorAcc.ID] = []ynab.Transaction{{ID: "m-1", Memo: "Chequing: tx-1"}}

	result, err := f.engine.Run(context.Background(), testBudget, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"delete:m-1", "create", "flag:tx-1"}, f.ledger.calls)
	require.Len(t, f.ledger.created, 1)
	assert.Equal(t, int64(-70000), f.ledger.created[0].Amount)
	assert.Equal(t, 1, result.Summary.Updated)
	assert.Equal(t, 1, result.Summary.MirrorsDeleted)
	assert.Equal(t, 1, result.Summary.Marked)
}

func TestEngine_MarkFailureDoesNotDuplicateMirror(t *testing.T) {
	tests := []struct {
		name       string
		withRecord bool
	}{
		{"Record store", true},
		{"Memo scan only", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, defaultConf, chequing, mirrorAcc)
			if !tt.withRecord {
				f.engine.records = nil
			}
			f.ledger.txs[chequing.ID] = []ynab.Transaction{approvedTx("tx-1", -100000)}
			f.ledger.flagErr = &ynab.APIError{StatusCode: 503}

			_, err := f.engine.Run(context.Background(), testBudget, Options{})
			require.Error(t, err)
			require.Len(t, f.ledger.created, 1)
			assert.Equal(t, 0, f.cursors.puts)

			// The mirror exists in the ledger; the source is still unmarked.
			f.ledger.txs[mirrorAcc.ID] = []ynab.Transaction{{ID: "new-mirror-1", Memo: "Chequing: tx-1"}}
			f.ledger.flagErr = nil
			f.ledger.calls = nil

			result, err := f.engine.Run(context.Background(), testBudget, Options{})
			require.NoError(t, err)

			assert.Equal(t, []string{"delete:new-mirror-1", "create", "flag:tx-1"}, f.ledger.calls)
			assert.Equal(t, []string{"new-mirror-1"}, f.ledger.deleted)
			assert.Equal(t, StateUpdated, result.Accounts[0].Transactions[0].State)

			if tt.withRecord {
				rec, _ := f.records.Load(context.Background(), testBudget.ID, "tx-1")
				require.NotNil(t, rec)
				assert.Equal(t, RecordMirrored, rec.State)
				assert.Equal(t, []string{"new-mirror-2"}, rec.MirrorIDs)
			}
		})
	}
}

func TestEngine_CreateFailureAfterDeleteResumes(t *testing.T) {
	f := newFixture(t, defaultConf, chequing, mirrorAcc)
	edited := approvedTx("tx-1", -200000)
	edited.FlagColor = ynab.FlagGreen
	f.ledger.txs[chequing.ID] = []ynab.Transaction{edited}
	f.ledger.txs[mirrorAcc.ID] = []ynab.Transaction{{ID: "m-1", Memo: "Chequing: tx-1"}}
	f.ledger.createErr = &ynab.APIError{StatusCode: 500}

	_, err := f.engine.Run(context.Background(), testBudget, Options{})
	require.Error(t, err)
	assert.Equal(t, []string{"m-1"}, f.ledger.deleted)

	rec, _ := f.records.Load(context.Background(), testBudget.ID, "tx-1")
	require.NotNil(t, rec)
	assert.Equal(t, RecordPending, rec.State)
	assert.Empty(t, rec.MirrorIDs)

	// The stale mirror is gone; the replacement is still owed.
	f.ledger.txs[mirrorAcc.ID] = nil
	f.ledger.createErr = nil
	f.ledger.calls = nil

	result, err := f.engine.Run(context.Background(), testBudget, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"create", "flag:tx-1"}, f.ledger.calls)
	require.Len(t, f.ledger.created, 1)
	assert.Equal(t, int64(-70000), f.ledger.created[0].Amount)
	assert.Empty(t, result.Accounts[0].Transactions[0].Reason)

	rec, _ = f.records.Load(context.Background(), testBudget.ID, "tx-1")
	require.NotNil(t, rec)
	assert.Equal(t, RecordMirrored, rec.State)
}

func TestEngine_DeletedRecordKeepsNewTransactionNew(t *testing.T) {
	f := newFixture(t, defaultConf, chequing, mirrorAcc)
	f.ledger.txs[chequing.ID] = []ynab.Transaction{approvedTx("tx-1", -100000)}
	require.NoError(t, f.records.Save(context.Background(), Record{
		BudgetID: testBudget.ID,
		SourceID: "tx-1",
		State:    RecordDeleted,
	}))

	result, err := f.engine.Run(context.Background(), testBudget, Options{})
	require.NoError(t, err)

	assert.Equal(t, StateNew, result.Accounts[0].Transactions[0].State)
	assert.Equal(t, []string{"create", "flag:tx-1"}, f.ledger.calls)
}

func TestEngine_UpdatedWithoutMirror(t *testing.T) {
	f := newFixture(t, defaultConf, chequing, mirrorAcc)
	edited := approvedTx("tx-1", -200000)
	edited.FlagColor = ynab.FlagGreen
	f.ledger.txs[chequing.ID] = []ynab.Transaction{edited}

	result, err := f.engine.Run(context.Background(), testBudget, Options{})
	require.NoError(t, err)

	assert.Empty(t, f.ledger.calls)
	require.Len(t, result.Accounts, 1)
	assert.Equal(t, "no mirror found", result.Accounts[0].Transactions[0].Reason)
}

func TestEngine_RecordDrivesUpdate(t *testing.T) {
	f := newFixture(t, defaultConf, chequing, mirrorAcc)
	edited := approvedTx("tx-1", -100000)
	edited.FlagColor = ynab.FlagRed
	f.ledger.txs[chequing.ID] = []ynab.Transaction{edited}
	require.NoError(t, f.records.Save(context.Background(), Record{
		BudgetID:  testBudget.ID,
		SourceID:  "tx-1",
		MirrorIDs: []string{"m-9"},
		State:     RecordMirrored,
	}))

	_, err := f.engine.Run(context.Background(), testBudget, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"delete:m-9", "create", "flag:tx-1"}, f.ledger.calls)
}

func TestEngine_SkipsRejectedAndZero(t *testing.T) {
	f := newFixture(t, defaultConf, chequing, mirrorAcc)

	unapproved := approvedTx("tx-unapproved", -1000)
	unapproved.Approved = false
	transfer := approvedTx("tx-transfer", -50000)
	transfer.PayeeName = "Transfer : Groceries"
	transfer.CategoryID = ""
	zero := approvedTx("tx-zero", 0)

	f.ledger.txs[chequing.ID] = []ynab.Transaction{unapproved, transfer, zero}

	result, err := f.engine.Run(context.Background(), testBudget, Options{})
	require.NoError(t, err)

	assert.Empty(t, f.ledger.calls)
	assert.Equal(t, 3, result.Summary.Skipped)
	for _, tx := range result.Accounts[0].Transactions {
		assert.True(t, tx.Skipped, tx.SourceID)
		assert.NotEmpty(t, tx.Reason, tx.SourceID)
	}

	// The fetch knowledge still advances the cursor.
	assert.Equal(t, int64(100), f.cursors.values[testBudget.ID])
}

func TestEngine_StartingBalanceRouted(t *testing.T) {
	cfg := defaultConf
	cfg.ExchangeCategoryID = "cat-fx"
	f := newFixture(t, cfg, chequing, mirrorAcc)

	opening := approvedTx("tx-open", 500000)
	opening.PayeeName = "Starting Balance"
	opening.CategoryID = "cat-inflow"
	f.ledger.txs[chequing.ID] = []ynab.Transaction{opening}

	_, err := f.engine.Run(context.Background(), testBudget, Options{})
	require.NoError(t, err)

	require.Len(t, f.ledger.created, 1)
	assert.Equal(t, "Exchange", f.ledger.created[0].PayeeName)
	assert.Equal(t, "cat-fx", f.ledger.created[0].CategoryID)
	assert.Equal(t, int64(175000), f.ledger.created[0].Amount)
}

func TestEngine_DryRun(t *testing.T) {
	f := newFixture(t, defaultConf, chequing, mirrorAcc)
	f.ledger.txs[chequing.ID] = []ynab.Transaction{approvedTx("tx-1", -100000)}

	result, err := f.engine.Run(context.Background(), testBudget, Options{DryRun: true})
	require.NoError(t, err)

	assert.Empty(t, f.ledger.calls)
	assert.Equal(t, 0, f.cursors.puts)
	assert.True(t, result.DryRun)

	require.Len(t, result.Accounts, 1)
	actions := result.Accounts[0].Transactions[0].Actions
	require.Len(t, actions, 2)
	assert.Equal(t, ActionCreateMirror, actions[0].Type)
	assert.False(t, actions[0].Applied)
	assert.Equal(t, ActionMarkSource, actions[1].Type)
}

func TestEngine_SinceBounds(t *testing.T) {
	t.Run("Cursor present", func(t *testing.T) {
		f := newFixture(t, defaultConf, chequing, mirrorAcc)
		f.cursors.values[testBudget.ID] = 42

		_, err := f.engine.Run(context.Background(), testBudget, Options{})
		require.NoError(t, err)

		since := f.ledger.sinces[chequing.ID]
		assert.True(t, since.IsDelta())
		assert.Equal(t, int64(42), since.Knowledge)
	})

	t.Run("No cursor uses lookback", func(t *testing.T) {
		f := newFixture(t, defaultConf, chequing, mirrorAcc)

		_, err := f.engine.Run(context.Background(), testBudget, Options{})
		require.NoError(t, err)

		since := f.ledger.sinces[chequing.ID]
		assert.False(t, since.IsDelta())
		assert.Equal(t, testNow.Add(-30*24*time.Hour), since.Date)
	})
}

func TestEngine_AccountFailureKeepsCursor(t *testing.T) {
	second := ynab.Account{ID: "acc-usd-2", Name: "🇺🇸 Visa"}
	f := newFixture(t, defaultConf, chequing, second, mirrorAcc)
	f.cursors.values[testBudget.ID] = 50
	f.ledger.txs[chequing.ID] = []ynab.Transaction{approvedTx("tx-1", -100000)}
	f.ledger.listErr[second.ID] = errors.New("boom")

	result, err := f.engine.Run(context.Background(), testBudget, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acc-usd-2")

	assert.Equal(t, int64(50), f.cursors.values[testBudget.ID])
	assert.Equal(t, 0, f.cursors.puts)
	require.Len(t, result.Accounts, 1)
	assert.NotEmpty(t, result.Error)
}

func TestEngine_DeleteNotFoundContinues(t *testing.T) {
	f := newFixture(t, defaultConf, chequing, mirrorAcc)
	edited := approvedTx("tx-1", -100000)
	edited.FlagColor = ynab.FlagGreen
	f.ledger.txs[chequing.ID] = []ynab.Transaction{edited}
	f.ledger.txs[mirrorAcc.ID] = []ynab.Transaction{{ID: "m-1", Memo: "Chequing: tx-1"}}
	f.ledger.deleteErr["m-1"] = notFound()

	_, err := f.engine.Run(context.Background(), testBudget, Options{})
	require.NoError(t, err)
	assert.Len(t, f.ledger.created, 1)
}

func TestEngine_CreateFailureAborts(t *testing.T) {
	f := newFixture(t, defaultConf, chequing, mirrorAcc)
	f.ledger.txs[chequing.ID] = []ynab.Transaction{approvedTx("tx-1", -100000)}
	f.ledger.createErr = &ynab.APIError{StatusCode: 500}

	_, err := f.engine.Run(context.Background(), testBudget, Options{})
	require.Error(t, err)

	var apiErr *ynab.APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Empty(t, f.ledger.flagged)
	assert.Equal(t, 0, f.cursors.puts)
}

func TestEngine_ConfigurationErrors(t *testing.T) {
	t.Run("Mirror missing", func(t *testing.T) {
		f := newFixture(t, defaultConf, chequing)
		_, err := f.engine.Run(context.Background(), testBudget, Options{})
		assert.ErrorIs(t, err, ErrMirrorAccountMissing)
		assert.True(t, IsConfigError(err))
	})

	t.Run("Mirror ambiguous", func(t *testing.T) {
		f := newFixture(t, defaultConf, chequing, mirrorAcc, ynab.Account{ID: "acc-fx-2", Name: "💱 Old"})
		_, err := f.engine.Run(context.Background(), testBudget, Options{})
		assert.ErrorIs(t, err, ErrAmbiguousMirrorAccount)
	})

	t.Run("Unsupported currency", func(t *testing.T) {
		f := newFixture(t, defaultConf, chequing, mirrorAcc)
		budget := testBudget
		budget.BaseCurrency = "EUR"
		_, err := f.engine.Run(context.Background(), budget, Options{})
		assert.ErrorIs(t, err, rates.ErrUnsupportedCurrency)
		assert.Empty(t, f.rate.asked)
	})

	t.Run("Invalid budget", func(t *testing.T) {
		f := newFixture(t, defaultConf, chequing, mirrorAcc)
		_, err := f.engine.Run(context.Background(), Budget{ID: "b"}, Options{})
		assert.ErrorIs(t, err, ErrInvalidBudget)
	})
}

func TestEngine_LeaseHeld(t *testing.T) {
	f := newFixture(t, defaultConf, chequing, mirrorAcc)
	release, err := f.engine.locker.Acquire(context.Background(), testBudget.ID)
	require.NoError(t, err)
	defer release()

	_, err = f.engine.Run(context.Background(), testBudget, Options{})
	assert.ErrorIs(t, err, ErrLeaseHeld)
}

func TestEngine_RecordSaveFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, defaultConf, chequing, mirrorAcc)
	f.ledger.txs[chequing.ID] = []ynab.Transaction{approvedTx("tx-1", -100000)}
	f.records.saveErr = errors.New("disk full")
	f.publisher.err = errors.New("broker down")

	_, err := f.engine.Run(context.Background(), testBudget, Options{})
	require.NoError(t, err)
	assert.Len(t, f.ledger.created, 1)
}

func TestEligibleAccounts(t *testing.T) {
	accounts := []ynab.Account{
		chequing,
		mirrorAcc,
		plainAcc,
		{ID: "closed", Name: "🇺🇸 Closed", Closed: true},
		{ID: "deleted", Name: "🇺🇸 Gone", Deleted: true},
		{ID: "visa", Name: "Visa 🇺🇸"},
	}

	eligible := EligibleAccounts(accounts, "🇺🇸", mirrorAcc.ID)

	ids := make([]string, 0, len(eligible))
	for _, a := range eligible {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"acc-usd", "visa"}, ids)
}
