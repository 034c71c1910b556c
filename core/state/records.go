package state

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"ynab-exchange/core/reconcile"
	"ynab-exchange/core/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBRecordStore keeps the source to mirror index in mirror_records.
type DBRecordStore struct {
	db *gorm.DB
}

// NewDBRecordStore creates a DBRecordStore.
func NewDBRecordStore(db *gorm.DB) *DBRecordStore {
	return &DBRecordStore{db: db}
}

func (s *DBRecordStore) Load(ctx context.Context, budgetID, sourceID string) (*reconcile.Record, error) {
	var row MirrorRecord
	err := s.db.WithContext(ctx).
		Where("budget_id = ? AND source_id = ?", budgetID, sourceID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}

	rec := &reconcile.Record{
		BudgetID: row.BudgetID,
		SourceID: row.SourceID,
		State:    reconcile.RecordState(row.State),
	}
	if row.MirrorIDs != "" {
		rec.MirrorIDs = strings.Split(row.MirrorIDs, ",")
	}
	return rec, nil
}

func (s *DBRecordStore) Save(ctx context.Context, rec reconcile.Record) error {
	row := MirrorRecord{
		BudgetID:  rec.BudgetID,
		SourceID:  rec.SourceID,
		MirrorIDs: strings.Join(rec.MirrorIDs, ","),
		State:     string(rec.State),
		UpdatedAt: time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "budget_id"}, {Name: "source_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"mirror_ids", "state", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// ObjectRecordStore keeps records as JSON objects under <prefix>/<budget>/<source>.json.
// It serves the storage cursor backend, which has no database.
type ObjectRecordStore struct {
	client storage.Client
	bucket string
	prefix string
}

type objectRecord struct {
	MirrorIDs []string  `json:"mirror_ids"`
	State     string    `json:"state"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewObjectRecordStore creates an ObjectRecordStore. An empty prefix defaults to "records".
func NewObjectRecordStore(client storage.Client, bucket, prefix string) *ObjectRecordStore {
	if prefix == "" {
		prefix = "records"
	}
	return &ObjectRecordStore{client: client, bucket: bucket, prefix: prefix}
}

func (s *ObjectRecordStore) objectName(budgetID, sourceID string) string {
	return path.Join(s.prefix, budgetID, sourceID+".json")
}

func (s *ObjectRecordStore) Load(ctx context.Context, budgetID, sourceID string) (*reconcile.Record, error) {
	var obj objectRecord
	err := storage.GetJSON(ctx, s.client, s.bucket, s.objectName(budgetID, sourceID), &obj)
	if storage.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	return &reconcile.Record{
		BudgetID:  budgetID,
		SourceID:  sourceID,
		MirrorIDs: obj.MirrorIDs,
		State:     reconcile.RecordState(obj.State),
	}, nil
}

func (s *ObjectRecordStore) Save(ctx context.Context, rec reconcile.Record) error {
	obj := objectRecord{
		MirrorIDs: rec.MirrorIDs,
		State:     string(rec.State),
		UpdatedAt: time.Now().UTC(),
	}
	if err := storage.PutJSON(ctx, s.client, s.bucket, s.objectName(rec.BudgetID, rec.SourceID), obj); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}
