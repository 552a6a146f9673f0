package storage

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// PrefixChecker verifies read access to a bucket/prefix.
type PrefixChecker struct {
	client *storage.Client
	bucket string
}

func NewPrefixChecker(client *storage.Client, bucket string) *PrefixChecker {
	if client == nil {
		panic("storage client is required")
	}
	if bucket == "" {
		panic("bucket is required")
	}
	return &PrefixChecker{client: client, bucket: bucket}
}

// Check lists at most one object under prefix; an empty prefix is valid.
func (p *PrefixChecker) Check(ctx context.Context, prefix string) error {
	it := p.client.Bucket(p.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	if _, err := it.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("list gs://%s/%s: %w", p.bucket, prefix, err)
	}
	return nil
}

var _ interface {
	Check(context.Context, string) error
} = (*PrefixChecker)(nil)
