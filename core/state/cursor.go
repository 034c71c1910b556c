package state

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"ynab-exchange/core/storage"

	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBCursorStore keeps cursors in the budget_cursors table.
type DBCursorStore struct {
	db *gorm.DB
}

// NewDBCursorStore creates a DBCursorStore.
func NewDBCursorStore(db *gorm.DB) *DBCursorStore {
	return &DBCursorStore{db: db}
}

func (s *DBCursorStore) Get(ctx context.Context, budgetID string) (int64, bool, error) {
	var cursor BudgetCursor
	err := s.db.WithContext(ctx).Where("budget_id = ?", budgetID).Take(&cursor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read cursor: %w", err)
	}
	return cursor.Knowledge, true, nil
}

func (s *DBCursorStore) Put(ctx context.Context, budgetID string, knowledge int64) error {
	cursor := BudgetCursor{BudgetID: budgetID, Knowledge: knowledge, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "budget_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"knowledge", "updated_at"}),
	}).Create(&cursor).Error
	if err != nil {
		return fmt.Errorf("failed to write cursor: %w", err)
	}
	return nil
}

// Delete forgets a budget's cursor so the next pass uses the lookback window.
func (s *DBCursorStore) Delete(ctx context.Context, budgetID string) error {
	err := s.db.WithContext(ctx).Where("budget_id = ?", budgetID).Delete(&BudgetCursor{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete cursor: %w", err)
	}
	return nil
}

// objectCursor is the JSON document stored per budget.
type objectCursor struct {
	BudgetID  string    `json:"budget_id"`
	Knowledge int64     `json:"knowledge"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ObjectCursorStore keeps cursors as JSON objects under <prefix>/<budget>.json.
type ObjectCursorStore struct {
	client storage.Client
	bucket string
	prefix string
}

// NewObjectCursorStore creates an ObjectCursorStore. An empty prefix defaults to "cursors".
func NewObjectCursorStore(client storage.Client, bucket, prefix string) *ObjectCursorStore {
	if prefix == "" {
		prefix = "cursors"
	}
	return &ObjectCursorStore{client: client, bucket: bucket, prefix: prefix}
}

func (s *ObjectCursorStore) objectName(budgetID string) string {
	return path.Join(s.prefix, budgetID+".json")
}

func (s *ObjectCursorStore) Get(ctx context.Context, budgetID string) (int64, bool, error) {
	var cursor objectCursor
	err := storage.GetJSON(ctx, s.client, s.bucket, s.objectName(budgetID), &cursor)
	if storage.IsNotFound(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read cursor: %w", err)
	}
	return cursor.Knowledge, true, nil
}

func (s *ObjectCursorStore) Put(ctx context.Context, budgetID string, knowledge int64) error {
	cursor := objectCursor{BudgetID: budgetID, Knowledge: knowledge, UpdatedAt: time.Now().UTC()}
	if err := storage.PutJSON(ctx, s.client, s.bucket, s.objectName(budgetID), cursor); err != nil {
		return fmt.Errorf("failed to write cursor: %w", err)
	}
	return nil
}

func (s *ObjectCursorStore) Delete(ctx context.Context, budgetID string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.objectName(budgetID), minio.RemoveObjectOptions{})
	if err != nil && !storage.IsNotFound(err) {
		return fmt.Errorf("failed to delete cursor: %w", err)
	}
	return nil
}
