// Package store holds the record backends behind the reference RecordStore.
// Every backend assigns sequential decimal ids and reports a missing id with
// sentinel.ErrNotFound.
package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"recordsync/internal/records/models"
	"recordsync/pkg/platform/sentinel"
)

type Store interface {
	// List returns every record in id order.
	List(ctx context.Context) ([]models.Record, error)
	Get(ctx context.Context, id models.RecordID) (models.Record, error)
	// Create assigns the next id.
	Create(ctx context.Context, fields models.Fields) (models.Record, error)
	// Replace overwrites every field of an existing record.
	Replace(ctx context.Context, id models.RecordID, fields models.Fields) (models.Record, error)
	Delete(ctx context.Context, id models.RecordID) error
}

// parseID accepts only the ids a backend could have assigned. Anything else
// cannot exist.
func parseID(id models.RecordID) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(id.String()), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("record %q: %w", id, sentinel.ErrNotFound)
	}
	return n, nil
}

func formatID(n int64) models.RecordID {
	return models.RecordID(strconv.FormatInt(n, 10))
}

func notFound(id models.RecordID) error {
	return fmt.Errorf("record %q: %w", id, sentinel.ErrNotFound)
}
