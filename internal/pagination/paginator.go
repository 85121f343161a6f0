// Package pagination drives cursor-based pagination over a single collection endpoint.
package pagination

import (
	"context"
	"errors"
	"iter"
)

var (
	// ErrResourceAbsent is returned by a FetchFunc when the resource owning the
	// collection does not exist (e.g. a repository without a default branch).
	// The paginator stops without reporting an error.
	ErrResourceAbsent = errors.New("parent resource is absent")

	// ErrAlreadyConsumed is yielded when a Paginator is ranged over a second time.
	ErrAlreadyConsumed = errors.New("paginator already consumed")

	// ErrMissingCursor is yielded when a page claims more results but carries no cursor.
	ErrMissingCursor = errors.New("page has more results but no end cursor")
)

// Page is one page of a collection.
type Page[T any] struct {
	Items       []T
	EndCursor   string
	HasNextPage bool
}

// FetchFunc fetches the page starting after cursor. The first call receives "".
type FetchFunc[T any] func(ctx context.Context, cursor string) (Page[T], error)

// Paginator follows end cursors until the collection is exhausted.
// It is single-use and not safe for concurrent use.
type Paginator[T any] struct {
	fetch    FetchFunc[T]
	consumed bool
	fetched  int
}

// New creates a Paginator over fetch.
func New[T any](fetch FetchFunc[T]) *Paginator[T] {
	return &Paginator[T]{fetch: fetch}
}

// Pages returns the sequence of item batches in page order. A non-nil error is
// always the last element of the sequence.
func (p *Paginator[T]) Pages(ctx context.Context) iter.Seq2[[]T, error] {
	return func(yield func([]T, error) bool) {
		if p.consumed {
			yield(nil, ErrAlreadyConsumed)
			return
		}
		p.consumed = true

		cursor := ""
		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			page, err := p.fetch(ctx, cursor)
			if errors.Is(err, ErrResourceAbsent) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			p.fetched++
			if !yield(page.Items, nil) {
				return
			}
			if !page.HasNextPage {
				return
			}
			if page.EndCursor == "" {
				yield(nil, ErrMissingCursor)
				return
			}
			cursor = page.EndCursor
		}
	}
}

// Fetched returns the number of pages fetched successfully so far.
func (p *Paginator[T]) Fetched() int {
	return p.fetched
}

// Collect drains a new Paginator over fetch into a single slice.
func Collect[T any](ctx context.Context, fetch FetchFunc[T]) ([]T, error) {
	var all []T
	for items, err := range New(fetch).Pages(ctx) {
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	return all, nil
}
