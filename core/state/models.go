package state

import "time"

// BudgetCursor is the stored server knowledge of one budget.
type BudgetCursor struct {
	BudgetID  string `gorm:"column:budget_id;primaryKey;size:64"`
	Knowledge int64  `gorm:"column:knowledge;not null"`
	UpdatedAt time.Time
}

func (BudgetCursor) TableName() string { return "budget_cursors" }

// MirrorRecord links a source transaction to its mirrors.
// MirrorIDs is a comma separated list.
type MirrorRecord struct {
	BudgetID  string `gorm:"column:budget_id;primaryKey;size:64"`
	SourceID  string `gorm:"column:source_id;primaryKey;size:64"`
	MirrorIDs string `gorm:"column:mirror_ids;size:2048"`
	State     string `gorm:"column:state;size:16;not null"`
	UpdatedAt time.Time
}

func (MirrorRecord) TableName() string { return "mirror_records" }

// LedgerLease is held by the pass currently running over a budget.
type LedgerLease struct {
	BudgetID   string    `gorm:"column:budget_id;primaryKey;size:64"`
	Owner      string    `gorm:"column:owner;size:36;not null"`
	AcquiredAt time.Time `gorm:"column:acquired_at"`
	ExpiresAt  time.Time `gorm:"column:expires_at;index"`
}

func (LedgerLease) TableName() string { return "ledger_leases" }

// Models lists every state table model.
func Models() []any {
	return []any{&BudgetCursor{}, &MirrorRecord{}, &LedgerLease{}}
}
