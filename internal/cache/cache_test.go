package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSetGet(t *testing.T) {
	c := New[int](time.Minute)
	defer c.Close()

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, c.Size())

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestExpiry(t *testing.T) {
	c := New[string](20 * time.Millisecond)
	defer c.Close()

	c.Set("k", "v")
	time.Sleep(30 * time.Millisecond)
	_, ok := c.Get("k")
	assert.False(t, ok)

	assert.Eventually(t, func() bool { return c.Size() == 0 }, time.Second, 10*time.Millisecond)
}

func TestGetOrLoad(t *testing.T) {
	c := New[int](time.Minute)
	defer c.Close()

	calls := 0
	load := func() (int, error) {
		calls++
		return 42, nil
	}

	v, hit, err := c.GetOrLoad("k", load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 42, v)

	v, hit, err = c.GetOrLoad("k", load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)

	_, _, err = c.GetOrLoad("bad", func() (int, error) { return 0, errors.New("boom") })
	assert.Error(t, err)
	_, ok := c.Get("bad")
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	c := New[int](0)
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()
	assert.Zero(t, c.Size())
}

func TestCloseTwice(t *testing.T) {
	c := New[int](time.Minute)
	c.Close()
	assert.NotPanics(t, c.Close)
}
