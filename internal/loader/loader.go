// Package loader coalesces record lookups made while serving one request
// into batched queries, caching every result for the rest of the request.
package loader

import (
	"context"
	"time"

	"coinmate/internal/scope"

	"github.com/graph-gophers/dataloader/v7"
)

// BatchWait is how long a loader collects keys before running its batch.
var BatchWait = 2 * time.Millisecond

// Fetch loads the records for keys. Keys missing from the result resolve to
// the zero value of V.
type Fetch[K comparable, V any] func(ctx context.Context, keys []K) (map[K]V, error)

// Def describes one kind of loader. Its address is the key under which each
// scope keeps its own instance, so every Def must be created once.
type Def[K comparable, V any] struct {
	name  string
	fetch Fetch[K, V]
	wait  time.Duration
}

func New[K comparable, V any](name string, fetch Fetch[K, V]) *Def[K, V] {
	return &Def[K, V]{name: name, fetch: fetch, wait: BatchWait}
}

func (d *Def[K, V]) Name() string {
	return d.name
}

func (d *Def[K, V]) Load(ctx context.Context, sc *scope.Scope, key K) (V, error) {
	return d.loader(sc).Load(ctx, key)()
}

func (d *Def[K, V]) LoadMany(ctx context.Context, sc *scope.Scope, keys []K) ([]V, error) {
	values, errs := d.loader(sc).LoadMany(ctx, keys)()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return values, nil
}

// Prime replaces whatever the scope has cached for key.
func (d *Def[K, V]) Prime(ctx context.Context, sc *scope.Scope, key K, value V) {
	d.loader(sc).Clear(ctx, key).Prime(ctx, key, value)
}

func (d *Def[K, V]) Clear(ctx context.Context, sc *scope.Scope, key K) {
	d.loader(sc).Clear(ctx, key)
}

func (d *Def[K, V]) loader(sc *scope.Scope) *dataloader.Loader[K, V] {
	return sc.Loader(d, func() any {
		return dataloader.NewBatchedLoader(d.batch, dataloader.WithWait[K, V](d.wait))
	}).(*dataloader.Loader[K, V])
}

func (d *Def[K, V]) batch(ctx context.Context, keys []K) []*dataloader.Result[V] {
	found, err := d.fetch(ctx, keys)
	results := make([]*dataloader.Result[V], len(keys))
	for i, key := range keys {
		if err != nil {
			results[i] = &dataloader.Result[V]{Error: err}
			continue
		}
		results[i] = &dataloader.Result[V]{Data: found[key]}
	}
	return results
}
