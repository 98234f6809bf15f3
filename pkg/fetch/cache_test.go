package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestCache_TTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	calls := 0
	c := New(func(ctx context.Context, key string) (int, error) {
		calls++
		return calls, nil
	}, WithTTL[string, int](30*time.Second), WithClock[string, int](clock.Now))

	ctx := context.Background()
	v, err := c.Get(ctx, "a")
	assert.NoError(t, err)
	assert.Equal(t, 1, v)

	// within TTL: no new upstream call
	clock.Advance(10 * time.Second)
	v, err = c.Get(ctx, "a")
	assert.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, calls)

	// after expiry: one new call
	clock.Advance(30 * time.Second)
	v, err = c.Get(ctx, "a")
	assert.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, calls)
}

func TestCache_KeysAreIndependent(t *testing.T) {
	calls := map[string]int{}
	c := New(func(ctx context.Context, key string) (string, error) {
		calls[key]++
		return key, nil
	})
	ctx := context.Background()
	_, _ = c.Get(ctx, "a")
	_, _ = c.Get(ctx, "b")
	_, _ = c.Get(ctx, "a")
	assert.Equal(t, map[string]int{"a": 1, "b": 1}, calls)
}

func TestCache_StaleOnError(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	fail := false
	c := New(func(ctx context.Context, key string) (int, error) {
		if fail {
			return 0, errors.New("upstream down")
		}
		return 42, nil
	}, WithTTL[string, int](time.Second), WithClock[string, int](clock.Now))

	ctx := context.Background()
	v, err := c.Get(ctx, "a")
	assert.NoError(t, err)
	assert.Equal(t, 42, v)

	fail = true
	clock.Advance(5 * time.Second)

	// strict variant surfaces the error along with the stale value
	v, err = c.Get(ctx, "a")
	assert.Error(t, err)
	assert.Equal(t, 42, v)

	// fail-soft variant hides the error entirely
	assert.Equal(t, 42, c.GetSoft(ctx, "a"))
}

func TestCache_ErrorWithoutStaleValue(t *testing.T) {
	c := New(func(ctx context.Context, key string) ([]int, error) {
		return nil, errors.New("upstream down")
	})
	ctx := context.Background()
	v, err := c.Get(ctx, "a")
	assert.Error(t, err)
	assert.Nil(t, v)
	assert.Nil(t, c.GetSoft(ctx, "a"), "fail-soft yields the zero value")
}

func TestCache_Invalidate(t *testing.T) {
	calls := 0
	c := New(func(ctx context.Context, key string) (int, error) {
		calls++
		return calls, nil
	}, WithTTL[string, int](time.Hour))
	ctx := context.Background()
	_, _ = c.Get(ctx, "a")
	c.Invalidate("a")
	_, _ = c.Get(ctx, "a")
	assert.Equal(t, 2, calls)
}

func TestSingle(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	calls := 0
	s := NewSingle(func(ctx context.Context) (string, error) {
		calls++
		return "value", nil
	}, WithTTL[struct{}, string](time.Minute), WithClock[struct{}, string](clock.Now))

	ctx := context.Background()
	v, err := s.Get(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "value", v)
	assert.Equal(t, "value", s.GetSoft(ctx))
	assert.Equal(t, 1, calls)

	s.Invalidate()
	_, _ = s.Get(ctx)
	assert.Equal(t, 2, calls)
}
