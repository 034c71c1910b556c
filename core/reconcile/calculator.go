package reconcile

import (
	"strings"
	"unicode/utf8"

	"ynab-exchange/core/utils"
	"ynab-exchange/core/ynab"

	"github.com/shopspring/decimal"
)

// MaxMemoLength is the longest memo the ledger accepts, in characters.
const MaxMemoLength = 500

var one = decimal.NewFromInt(1)

// Calculator computes currency adjustment transactions. It is pure: the same
// transaction and rate always produce the same adjustment.
type Calculator struct {
	// FlagMarker is stripped from the source account name in the memo.
	FlagMarker string
	// RoundingStep snaps every delta to a multiple of this many milliunits.
	// Values below 2 round to the milliunit.
	RoundingStep int64
}

// Delta returns the conversion delta of a milliunit amount:
// amount*rate - amount, rounded half away from zero.
func (c Calculator) Delta(amount int64, rate decimal.Decimal) int64 {
	delta := decimal.NewFromInt(amount).Mul(rate.Sub(one))
	if c.RoundingStep <= 1 {
		return delta.Round(0).IntPart()
	}
	step := decimal.NewFromInt(c.RoundingStep)
	return delta.Div(step).Round(0).Mul(step).IntPart()
}

// Compute builds the adjustment posted to the mirror account for tx.
//
// Split transactions get one sub-adjustment per live subtransaction. Each is
// rounded on its own and the last one absorbs the remainder, so the
// sub-adjustments always sum exactly to the parent adjustment.
func (c Calculator) Compute(tx ynab.Transaction, rate decimal.Decimal, sourceAccountName, mirrorAccountID string) ynab.SaveTransaction {
	adj := ynab.SaveTransaction{
		AccountID:  mirrorAccountID,
		Date:       tx.Date,
		Amount:     c.Delta(tx.Amount, rate),
		PayeeName:  tx.PayeeName,
		CategoryID: tx.CategoryID,
		Memo:       c.Memo(tx, sourceAccountName),
		Cleared:    tx.Cleared,
		Approved:   true,
	}

	subs := tx.LiveSubtransactions()
	if len(subs) == 0 {
		return adj
	}

	adj.Subtransactions = make([]ynab.SaveSubTransaction, 0, len(subs))
	var distributed int64
	for _, sub := range subs {
		delta := c.Delta(sub.Amount, rate)
		distributed += delta
		adj.Subtransactions = append(adj.Subtransactions, ynab.SaveSubTransaction{
			Amount:     delta,
			PayeeID:    sub.PayeeID,
			CategoryID: sub.CategoryID,
			Memo:       sub.Memo,
		})
	}
	adj.Subtransactions[len(subs)-1].Amount += adj.Amount - distributed

	return adj
}

// Memo returns "<account>: [<memo> - ]<source id>". The source id is the
// correlation token and is never truncated; the user memo is shortened instead.
func (c Calculator) Memo(tx ynab.Transaction, sourceAccountName string) string {
	label := sourceAccountName
	if c.FlagMarker != "" {
		label = strings.ReplaceAll(label, c.FlagMarker, "")
	}
	prefix := strings.TrimSpace(label) + ": "

	if tx.Memo == "" {
		return prefix + tx.ID
	}

	const sep = " - "
	room := MaxMemoLength - utf8.RuneCountInString(prefix) - utf8.RuneCountInString(tx.ID) - len(sep)
	note := utils.TruncateRunes(tx.Memo, room)
	if note == "" {
		return prefix + tx.ID
	}
	return prefix + note + sep + tx.ID
}
