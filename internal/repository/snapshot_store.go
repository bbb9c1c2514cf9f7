package repository

import "context"

// SnapshotStore is a string key-value store. Get returns ErrNotFound when the
// key has never been written.
type SnapshotStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Ping(ctx context.Context) error
}
