package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwoTier_BatchSucceeds(t *testing.T) {
	var itemCalls int
	tt := NewTwoTier(
		func(context.Context, []int) error { return nil },
		func(context.Context, int) error { itemCalls++; return nil },
	)

	ok, failed := tt.Run(context.Background(), []int{1, 2, 3})

	assert.Equal(t, []int{1, 2, 3}, ok)
	assert.Empty(t, failed)
	assert.Zero(t, itemCalls)
}

func TestTwoTier_FallsBackPerItem(t *testing.T) {
	errBad := errors.New("bad item")
	var seen []int
	tt := NewTwoTier(
		func(context.Context, []int) error { return errors.New("batch failed") },
		func(_ context.Context, n int) error {
			seen = append(seen, n)
			if n%2 == 0 {
				return errBad
			}
			return nil
		},
	)

	ok, failed := tt.Run(context.Background(), []int{1, 2, 3, 4})

	assert.Equal(t, []int{1, 2, 3, 4}, seen)
	assert.Equal(t, []int{1, 3}, ok)
	require.Len(t, failed, 2)
	assert.Equal(t, 2, failed[0].Item)
	assert.Equal(t, 4, failed[1].Item)
	assert.ErrorIs(t, failed[0].Err, errBad)
}

func TestTwoTier_Empty(t *testing.T) {
	called := false
	tt := NewTwoTier(
		func(context.Context, []string) error { called = true; return nil },
		func(context.Context, string) error { return nil },
	)

	ok, failed := tt.Run(context.Background(), nil)

	assert.Nil(t, ok)
	assert.Nil(t, failed)
	assert.False(t, called)
}

func TestTwoTier_CancelledDuringFallback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tt := NewTwoTier(
		func(context.Context, []int) error { return errors.New("batch failed") },
		func(_ context.Context, n int) error {
			if n == 1 {
				cancel()
			}
			return nil
		},
	)

	ok, failed := tt.Run(ctx, []int{1, 2, 3})

	assert.Equal(t, []int{1}, ok)
	require.Len(t, failed, 2)
	assert.ErrorIs(t, failed[0].Err, context.Canceled)
}
