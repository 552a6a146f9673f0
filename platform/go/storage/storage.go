package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// ObjectLocation describes where a blob lives.
type ObjectLocation struct {
	Bucket   string
	FullPath string
}

// ResolveObjectLocation combines the deployment prefix and an asset reference into a bucket/path pair.
//   - bucket comes from deployment configuration.
//   - prefix is optional (e.g. "dev/"); a trailing slash is added when missing.
//   - ref is a stored asset reference such as "avatars/01.png".
func ResolveObjectLocation(bucket, prefix, ref string) (ObjectLocation, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return ObjectLocation{}, fmt.Errorf("bucket is required")
	}
	key := strings.TrimSpace(ref)
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return ObjectLocation{}, fmt.Errorf("asset reference is required")
	}

	prefix = strings.TrimSpace(prefix)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return ObjectLocation{Bucket: bucket, FullPath: prefix + key}, nil
}

// IsAbsolute reports whether ref is already a fetchable URL.
func IsAbsolute(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// StaticResolver serves assets from a fixed base URL (CDN, local static dir).
type StaticResolver struct {
	baseURL string
}

func NewStaticResolver(baseURL string) *StaticResolver {
	return &StaticResolver{baseURL: strings.TrimSuffix(strings.TrimSpace(baseURL), "/")}
}

func (s *StaticResolver) URL(ctx context.Context, ref string) (string, error) {
	if ref == "" || IsAbsolute(ref) || s.baseURL == "" {
		return ref, nil
	}
	return s.baseURL + "/" + strings.TrimPrefix(ref, "/"), nil
}

// SignFunc produces a signed URL for an object in the configured bucket.
type SignFunc func(object string, opts *storage.SignedURLOptions) (string, error)

// GCSResolver hands out short-lived V4 signed URLs for private bucket objects.
type GCSResolver struct {
	bucket string
	prefix string
	ttl    time.Duration
	sign   SignFunc
	now    func() time.Time
}

func NewGCSResolver(client *storage.Client, bucket, prefix string, ttl time.Duration) *GCSResolver {
	if client == nil {
		panic("storage client is required")
	}
	return NewGCSResolverWithSigner(client.Bucket(bucket).SignedURL, bucket, prefix, ttl)
}

// NewGCSResolverWithSigner is used by tests and by callers that sign through a custom IAM path.
func NewGCSResolverWithSigner(sign SignFunc, bucket, prefix string, ttl time.Duration) *GCSResolver {
	if sign == nil {
		panic("sign func is required")
	}
	if strings.TrimSpace(bucket) == "" {
		panic("bucket is required")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &GCSResolver{bucket: bucket, prefix: prefix, ttl: ttl, sign: sign, now: time.Now}
}

func (g *GCSResolver) URL(ctx context.Context, ref string) (string, error) {
	if ref == "" || IsAbsolute(ref) {
		return ref, nil
	}
	loc, err := ResolveObjectLocation(g.bucket, g.prefix, ref)
	if err != nil {
		return "", err
	}
	signed, err := g.sign(loc.FullPath, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: g.now().Add(g.ttl),
	})
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", loc.FullPath, err)
	}
	return signed, nil
}
