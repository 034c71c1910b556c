package exchange

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"ynab-exchange/core/reconcile"
	"ynab-exchange/core/storage"

	"github.com/minio/minio-go/v7"
)

var (
	// ErrArchiveDisabled is returned when report archiving is not configured.
	ErrArchiveDisabled = errors.New("report archive is disabled")
	// ErrReportNotFound is returned for an unknown pass id.
	ErrReportNotFound = errors.New("report not found")
)

// ReportArchive stores pass results as <prefix>/<budget>/<pass id>.json.
// Pass ids are ULIDs, so names sort in the order the passes ran.
type ReportArchive struct {
	client storage.Client
	bucket string
	prefix string
}

// NewReportArchive creates a ReportArchive. An empty prefix defaults to "reports".
func NewReportArchive(client storage.Client, bucket, prefix string) *ReportArchive {
	if prefix == "" {
		prefix = "reports"
	}
	return &ReportArchive{client: client, bucket: bucket, prefix: prefix}
}

func (a *ReportArchive) objectName(budgetID, passID string) string {
	return path.Join(a.prefix, budgetID, passID+".json")
}

// Save uploads a pass result.
func (a *ReportArchive) Save(ctx context.Context, result *reconcile.PassResult) error {
	return storage.PutJSON(ctx, a.client, a.bucket, a.objectName(result.BudgetID, result.PassID), result)
}

// Get downloads a pass result.
func (a *ReportArchive) Get(ctx context.Context, budgetID, passID string) (*reconcile.PassResult, error) {
	var result reconcile.PassResult
	err := storage.GetJSON(ctx, a.client, a.bucket, a.objectName(budgetID, passID), &result)
	if storage.IsNotFound(err) {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, passID)
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// List returns the pass ids archived for a budget, newest first. A
// non-positive limit returns all of them.
func (a *ReportArchive) List(ctx context.Context, budgetID string, limit int) ([]string, error) {
	prefix := path.Join(a.prefix, budgetID) + "/"

	ids := []string{}
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list reports: %w", obj.Err)
		}
		name := strings.TrimPrefix(obj.Key, prefix)
		if !strings.HasSuffix(name, ".json") || strings.Contains(name, "/") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}

	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}
