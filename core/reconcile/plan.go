package reconcile

import (
	"context"
	"fmt"
	"slices"

	"ynab-exchange/core/utils"
	"ynab-exchange/core/ynab"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// planAccount fetches one account's changes and classifies every transaction.
// It performs no mutation.
func (e *Engine) planAccount(ctx context.Context, pass *passState, account ynab.Account, since ynab.Since) (AccountPlan, error) {
	plan := AccountPlan{
		AccountID:    account.ID,
		AccountName:  account.Name,
		Currency:     pass.currency,
		Transactions: []TransactionPlan{},
	}

	rate, err := e.rates.Rate(ctx, pass.currency)
	if err != nil {
		return plan, fmt.Errorf("failed to fetch %s rate: %w", pass.currency, err)
	}
	plan.Rate = rate.String()

	txs, knowledge, err := e.ledger.ListTransactions(ctx, pass.budget.ID, account.ID, since)
	if err != nil {
		return plan, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	plan.FetchedKnowledge = knowledge
	pass.observe(knowledge)

	pass.logger.Debug("Fetched transactions",
		zap.String("account_id", account.ID),
		zap.String("rate", plan.Rate),
		zap.Int("count", len(txs)))

	for _, tx := range txs {
		plan.Transactions = append(plan.Transactions, e.planTransaction(ctx, pass, account, rate, tx))
	}
	return plan, nil
}

// classify infers the state of a source transaction. The record, when one
// exists, is returned for the planner.
func (e *Engine) classify(ctx context.Context, pass *passState, tx ynab.Transaction) (TransactionState, *Record) {
	var rec *Record
	if e.records != nil {
		loaded, err := e.records.Load(ctx, pass.budget.ID, tx.ID)
		if err != nil {
			pass.logger.Warn("Failed to load record",
				zap.String("transaction_id", tx.ID),
				zap.Error(err))
		}
		rec = loaded
	}

	switch {
	case tx.Deleted:
		return StateDeleted, rec
	case tx.FlagColor == pass.mark:
		return StateUpdated, rec
	case rec != nil && rec.State != RecordDeleted:
		return StateUpdated, rec
	}
	return StateNew, rec
}

func (e *Engine) planTransaction(ctx context.Context, pass *passState, account ynab.Account, rate decimal.Decimal, tx ynab.Transaction) TransactionPlan {
	state, rec := e.classify(ctx, pass, tx)
	plan := TransactionPlan{
		SourceID: tx.ID,
		Date:     tx.Date,
		Payee:    tx.PayeeName,
		Amount:   tx.Amount,
		State:    state,
		Actions:  []Action{},
	}

	mirrors := pass.correlator.FindMirrorsOf(ctx, pass.budget.ID, pass.mirror.ID, tx.ID)
	deletes := make([]Action, 0, len(mirrors))
	for _, m := range mirrors {
		deletes = append(deletes, Action{Type: ActionDeleteMirror, MirrorID: m.ID})
	}

	// An unmarked source that already has a mirror was interrupted between
	// create and mark; it is replaced like an edit.
	if plan.State == StateNew && len(mirrors) > 0 {
		plan.State = StateUpdated
	}

	switch plan.State {
	case StateDeleted:
		plan.Actions = deletes
		if len(mirrors) == 0 {
			plan.Reason = "no mirror found"
		}
		return plan

	case StateUpdated:
		pending := rec != nil && rec.State == RecordPending
		if len(mirrors) == 0 && !pending {
			plan.Reason = "no mirror found"
			e.planMark(pass, tx, &plan)
			return plan
		}
	}

	plan.Actions = append(plan.Actions, deletes...)

	adj := pass.calc.Compute(tx, rate, account.Name, pass.mirror.ID)
	verdict := pass.policy.Apply(tx, &adj)
	switch {
	case !verdict.Accepted:
		plan.Skipped = true
		plan.Reason = verdict.Reason
		pass.logger.Info("Adjustment rejected",
			zap.String("account_id", account.ID),
			zap.String("transaction_id", tx.ID),
			zap.String("reason", verdict.Reason))
		return plan
	case adj.Amount == 0:
		plan.Skipped = true
		plan.Reason = "zero adjustment"
		return plan
	}

	if verdict.Rewritten {
		plan.Reason = verdict.Reason
	}
	plan.Actions = append(plan.Actions,
		Action{Type: ActionCreateMirror, Adjustment: &adj},
		Action{Type: ActionMarkSource})
	return plan
}

// planMark marks a source whose flag is not the mark yet.
func (e *Engine) planMark(pass *passState, tx ynab.Transaction, plan *TransactionPlan) {
	if tx.FlagColor == pass.mark {
		return
	}
	plan.Actions = append(plan.Actions, Action{Type: ActionMarkSource})
}

// applyAccount performs the planned actions of one account in order.
func (e *Engine) applyAccount(ctx context.Context, pass *passState, plan *AccountPlan) error {
	for i := range plan.Transactions {
		if err := e.applyTransaction(ctx, pass, plan.AccountID, &plan.Transactions[i]); err != nil {
			return fmt.Errorf("transaction %s: %w", plan.Transactions[i].SourceID, err)
		}
	}
	return nil
}

func (e *Engine) applyTransaction(ctx context.Context, pass *passState, accountID string, plan *TransactionPlan) error {
	logger := pass.logger.With(
		zap.String("account_id", accountID),
		zap.String("transaction_id", plan.SourceID))

	// live holds the mirrors that still exist; the record is rewritten after
	// every mutation so an interrupted transaction resumes on the next pass.
	var live []string
	replacing := false
	for _, action := range plan.Actions {
		switch action.Type {
		case ActionDeleteMirror:
			live = append(live, action.MirrorID)
		case ActionCreateMirror:
			replacing = true
		}
	}
	track := func() {
		switch {
		case replacing:
			e.saveRecord(ctx, pass, Record{SourceID: plan.SourceID, MirrorIDs: live, State: RecordPending})
		case len(live) > 0:
			e.saveRecord(ctx, pass, Record{SourceID: plan.SourceID, MirrorIDs: live, State: RecordMirrored})
		default:
			e.saveRecord(ctx, pass, Record{SourceID: plan.SourceID, State: RecordDeleted})
		}
	}
	removed := func(mirrorID string) {
		live = slices.DeleteFunc(live, func(id string) bool { return id == mirrorID })
		track()
	}
	touched := false

	for i := range plan.Actions {
		action := &plan.Actions[i]

		switch action.Type {
		case ActionDeleteMirror:
			touched = true
			res, err := e.ledger.DeleteTransaction(ctx, pass.budget.ID, action.MirrorID)
			if err != nil {
				if ynab.IsNotFound(err) {
					logger.Info("Mirror already gone", zap.String("mirror_id", action.MirrorID))
					pass.correlator.Forget(pass.budget.ID, pass.mirror.ID, action.MirrorID)
					removed(action.MirrorID)
					continue
				}
				return fmt.Errorf("failed to delete mirror %s: %w", action.MirrorID, err)
			}
			action.Applied = true
			pass.observe(res.ServerKnowledge)
			pass.correlator.Forget(pass.budget.ID, pass.mirror.ID, action.MirrorID)
			removed(action.MirrorID)
			logger.Info("Deleted mirror", zap.String("mirror_id", action.MirrorID))
			e.publish(ctx, pass, Event{
				Type:            EventMirrorDeleted,
				AccountID:       accountID,
				SourceID:        plan.SourceID,
				MirrorID:        action.MirrorID,
				ServerKnowledge: res.ServerKnowledge,
			})

		case ActionCreateMirror:
			touched = true
			res, err := e.ledger.CreateTransaction(ctx, pass.budget.ID, *action.Adjustment)
			if err != nil {
				return fmt.Errorf("failed to create mirror: %w", err)
			}
			action.Applied = true
			action.MirrorID = res.Transaction.ID
			pass.observe(res.ServerKnowledge)
			replacing = false
			live = append(live, res.Transaction.ID)
			track()
			logger.Info("Created mirror",
				zap.String("mirror_id", res.Transaction.ID),
				zap.String("amount", utils.FormatMilliunits(action.Adjustment.Amount, pass.budget.BaseCurrency)))
			e.publish(ctx, pass, Event{
				Type:            EventMirrorCreated,
				AccountID:       accountID,
				SourceID:        plan.SourceID,
				MirrorID:        res.Transaction.ID,
				Amount:          action.Adjustment.Amount,
				ServerKnowledge: res.ServerKnowledge,
			})

		case ActionMarkSource:
			res, err := e.ledger.UpdateTransactionFlag(ctx, pass.budget.ID, plan.SourceID, pass.mark)
			if err != nil {
				return fmt.Errorf("failed to mark source: %w", err)
			}
			action.Applied = true
			pass.observe(res.ServerKnowledge)
			e.publish(ctx, pass, Event{
				Type:            EventSourceMarked,
				AccountID:       accountID,
				SourceID:        plan.SourceID,
				ServerKnowledge: res.ServerKnowledge,
			})
		}
	}

	if !touched && plan.State == StateDeleted {
		track()
	}
	return nil
}

// saveRecord persists the mirror index. A failure only costs the fast
// correlation path, so it is logged and the pass continues.
func (e *Engine) saveRecord(ctx context.Context, pass *passState, rec Record) {
	if e.records == nil {
		return
	}
	rec.BudgetID = pass.budget.ID
	if err := e.records.Save(ctx, rec); err != nil {
		pass.logger.Warn("Failed to save record",
			zap.String("transaction_id", rec.SourceID),
			zap.Error(err))
	}
}

// summarize counts the planned and applied work of a pass.
func summarize(accounts []AccountPlan) PassSummary {
	summary := PassSummary{Accounts: len(accounts)}
	for _, account := range accounts {
		for _, tx := range account.Transactions {
			summary.Transactions++
			switch tx.State {
			case StateNew:
				summary.New++
			case StateUpdated:
				summary.Updated++
			case StateDeleted:
				summary.Deleted++
			}
			if tx.Skipped {
				summary.Skipped++
			}
			for _, action := range tx.Actions {
				switch action.Type {
				case ActionCreateMirror:
					summary.MirrorsCreated++
					summary.NetAdjustment += action.Adjustment.Amount
				case ActionDeleteMirror:
					summary.MirrorsDeleted++
				case ActionMarkSource:
					summary.Marked++
				}
			}
		}
	}
	return summary
}
