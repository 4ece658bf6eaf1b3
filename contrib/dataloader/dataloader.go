// Package dataloader batches entity loads into single statements.
//
// Loading the authors of a page of posts one by one costs one statement per
// post. Load fetches them with one IN statement and returns them in key
// order:
//
//	ids := []int64{7, 3, 7}
//	users, errs, err := dataloader.Load(ctx, qb, "ID", ids,
//	    func(u *User) int64 { return u.ID })
//
// LoadGroups does the same for one-to-many properties, such as every post
// of several authors.
package dataloader

import (
	"context"
	"errors"

	"github.com/syssam/rowmap/query"
)

// ErrNotFound is returned for a key no entity matched.
var ErrNotFound = errors.New("dataloader: entity not found")

// KeyFunc extracts a key from an entity.
type KeyFunc[K comparable, V any] func(V) K

// Load fetches the entities of type T whose property prop equals one of
// keys, in one statement. The result has one entry per key, in key order;
// keys without entity get a nil entry and ErrNotFound. Duplicate keys share
// the entity. The error is the statement failure, if any.
func Load[K comparable, T any](ctx context.Context, qb *query.Builder, prop string, keys []K, keyFn KeyFunc[K, *T]) ([]*T, []error, error) {
	list, err := fetch[K, T](ctx, qb, prop, keys)
	if err != nil {
		return nil, nil, err
	}
	values, errs := OrderByKeys(keys, list, keyFn)
	return values, errs, nil
}

// LoadGroups fetches the entities of type T whose property prop equals one
// of keys and groups them by key, in key order. The order of a group
// follows the primary key.
func LoadGroups[K comparable, T any](ctx context.Context, qb *query.Builder, prop string, keys []K, keyFn KeyFunc[K, *T]) ([][]*T, error) {
	list, err := fetch[K, T](ctx, qb, prop, keys)
	if err != nil {
		return nil, err
	}
	return OrderGroupsByKeys(keys, GroupByKey(list, keyFn)), nil
}

func fetch[K comparable, T any](ctx context.Context, qb *query.Builder, prop string, keys []K) ([]*T, error) {
	uniq := Unique(keys)
	if len(uniq) == 0 {
		return nil, nil
	}
	a := qb.Alias(new(T), "")
	args := make([]any, len(uniq))
	for i, k := range uniq {
		args[i] = k
	}
	q := qb.SelectFrom(a).Where().Clause(a.Field(prop), query.In(args...))
	if d := a.Descriptor(); d != nil && d.HasPK() {
		order := make([]any, 0, len(d.PKs()))
		for _, f := range d.PKs() {
			order = append(order, a.Field(f.Name))
		}
		return query.Execute[T](ctx, q.OrderBy().Asc(order...))
	}
	return query.Execute[T](ctx, q)
}

// Unique returns keys without duplicates, in first-seen order.
func Unique[K comparable](keys []K) []K {
	seen := make(map[K]struct{}, len(keys))
	out := make([]K, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// OrderByKeys reorders values to match keys. Keys without value get the
// zero value and ErrNotFound.
func OrderByKeys[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) ([]V, []error) {
	lookup := make(map[K]V, len(values))
	for _, v := range values {
		lookup[keyFn(v)] = v
	}
	result := make([]V, len(keys))
	errs := make([]error, len(keys))
	for i, key := range keys {
		if v, ok := lookup[key]; ok {
			result[i] = v
		} else {
			errs[i] = ErrNotFound
		}
	}
	return result, errs
}

// GroupByKey groups values by key.
func GroupByKey[K comparable, V any](values []V, keyFn KeyFunc[K, V]) map[K][]V {
	result := make(map[K][]V)
	for _, v := range values {
		key := keyFn(v)
		result[key] = append(result[key], v)
	}
	return result
}

// OrderGroupsByKeys returns the group of every key, in key order. Keys
// without group get nil.
func OrderGroupsByKeys[K comparable, V any](keys []K, groups map[K][]V) [][]V {
	result := make([][]V, len(keys))
	for i, key := range keys {
		result[i] = groups[key]
	}
	return result
}
