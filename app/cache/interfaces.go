package cache

import "context"

// Store persists the links of delivered articles.
//
// Load is called once at the start of a run and Record once at the end;
// no concurrent callers are assumed.
type Store interface {
	Load(ctx context.Context) (Set, error)
	Record(ctx context.Context, links []string) error
	Close() error
}
