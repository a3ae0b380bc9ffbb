package services

import "context"

// ItemFailure is an item that failed on its own after its batch failed.
type ItemFailure[T any] struct {
	Item T
	Err  error
}

// TwoTier runs a batch operation and falls back to one call per item
// when the batch fails.
type TwoTier[T any] struct {
	batch func(ctx context.Context, items []T) error
	item  func(ctx context.Context, item T) error
}

// NewTwoTier creates an executor from a batch func and an item func.
func NewTwoTier[T any](
	batch func(ctx context.Context, items []T) error,
	item func(ctx context.Context, item T) error,
) *TwoTier[T] {
	return &TwoTier[T]{batch: batch, item: item}
}

// Run tries the whole batch first. On a batch error every item is retried
// individually; ok holds the items that succeeded and failed the rest.
// A cancelled context fails the remaining items with ctx.Err().
func (t *TwoTier[T]) Run(ctx context.Context, items []T) (ok []T, failed []ItemFailure[T]) {
	if len(items) == 0 {
		return nil, nil
	}
	if err := t.batch(ctx, items); err == nil {
		return items, nil
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			failed = append(failed, ItemFailure[T]{Item: item, Err: err})
			continue
		}
		if err := t.item(ctx, item); err != nil {
			failed = append(failed, ItemFailure[T]{Item: item, Err: err})
			continue
		}
		ok = append(ok, item)
	}
	return ok, failed
}
