package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/scaena/internal/models"
)

// ErrKeyNotFound is returned when a key/value lookup misses.
var ErrKeyNotFound = errors.New("key not found")

// KeyValuePair is one persisted settings entry.
type KeyValuePair struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RunListOptions filters and paginates run listings.
type RunListOptions struct {
	Limit           int
	Offset          int
	NeedsReviewOnly bool
}

// RunStorage persists processing runs.
type RunStorage interface {
	SaveRun(ctx context.Context, run *models.ProcessingRun) error
	GetRun(ctx context.Context, id string) (*models.ProcessingRun, error)
	ListRuns(ctx context.Context, opts *RunListOptions) ([]*models.ProcessingRun, error)
	DeleteRun(ctx context.Context, id string) error
	// DeleteRunsBefore removes runs created before cutoff and returns the count removed.
	DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int, error)
	CountRuns(ctx context.Context) (int, error)
}

// KeyValueStorage provides simple string key/value persistence for settings.
type KeyValueStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	GetAll(ctx context.Context) (map[string]string, error)
}

// StorageManager aggregates the storage interfaces behind one lifecycle.
type StorageManager interface {
	RunStorage() RunStorage
	KeyValueStorage() KeyValueStorage
	Close() error
}
