package storage

import (
	"context"
	"time"
)

// LinkIssuer mints time-limited download URLs, refusing to sign keys that
// are not present in the store.
type LinkIssuer struct {
	store ObjectStore
}

func NewLinkIssuer(store ObjectStore) *LinkIssuer {
	return &LinkIssuer{store: store}
}

// PresignDownload probes the key, then signs a GET URL valid for ttl.
// Use StatusCode on the returned error to pick the HTTP class.
func (l *LinkIssuer) PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if key == "" {
		return "", ErrInvalidParams
	}
	ok, err := l.store.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrObjectNotFound
	}
	return l.store.PresignGet(ctx, key, ttl)
}

// Presign signs without probing the key first.
func (l *LinkIssuer) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return l.store.PresignGet(ctx, key, ttl)
}
