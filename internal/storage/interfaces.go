package storage

import "context"

type KV interface {
	EnsureSchema(ctx context.Context) error
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}
