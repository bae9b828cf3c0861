package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCache(t *testing.T) {
	c := New[string, int]()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", 1)
	c.Set("b", 2)
	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, got)
	assert.Equal(t, 2, c.Size())

	c.Set("a", 3)
	got, _ = c.Get("a")
	assert.Equal(t, 3, got)
	assert.Equal(t, 2, c.Size())

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Size())
}
