package workspace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/proptrack/proptrack/platform/go/access"
	"github.com/proptrack/proptrack/platform/go/dataset"
	"github.com/proptrack/proptrack/platform/go/entity"
	"github.com/proptrack/proptrack/platform/go/views"
)

// UnavailableError wraps a failure of the data source so callers can surface a degraded state.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: data source unavailable: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

// AssetResolver turns stored image references into URLs.
type AssetResolver interface {
	URL(ctx context.Context, ref string) (string, error)
}

// Loader builds the per-request Scope every view is composed from.
type Loader struct {
	source dataset.Source
	clock  Clock
	assets AssetResolver
}

// New constructs a Loader. assets may be nil.
func New(source dataset.Source, clock Clock, assets AssetResolver) *Loader {
	if source == nil {
		panic("data source is required")
	}
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Loader{source: source, clock: clock, assets: assets}
}

// Source exposes the underlying data source for write paths.
func (l *Loader) Source() dataset.Source { return l.source }

// Now returns the loader's notion of the current time.
func (l *Loader) Now() time.Time { return l.clock() }

// Load reads one snapshot and resolves capabilities for principal. A nil principal yields
// access.ErrUnauthenticated before the source is touched.
func (l *Loader) Load(ctx context.Context, principal *entity.Principal) (views.Scope, error) {
	if principal == nil || principal.ID == "" {
		return views.Scope{}, access.ErrUnauthenticated
	}

	snap, err := l.source.Snapshot(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return views.Scope{}, err
		}
		return views.Scope{}, &UnavailableError{Op: "load snapshot", Err: err}
	}

	store := dataset.NewStore(snap)
	caps, err := access.Resolve(principal, store)
	if err != nil {
		return views.Scope{}, err
	}

	scope := views.Scope{
		Principal: principal,
		Store:     store,
		Caps:      caps,
		Now:       l.clock(),
	}
	if l.assets != nil {
		scope.AssetURL = func(ref string) string {
			url, err := l.assets.URL(ctx, ref)
			if err != nil {
				return ref
			}
			return url
		}
	}

	return scope, nil
}
