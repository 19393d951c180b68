package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/idlecoins/internal/model"
)

func TestGetSetRemove(t *testing.T) {
	c := New()
	p := model.NewPlayer("p1", time.Now())

	_, ok := c.Get("p1")
	assert.False(t, ok)

	c.Set("p1", p)
	got, ok := c.Get("p1")
	require.True(t, ok)
	assert.Same(t, p, got)
	assert.Equal(t, 1, c.Len())

	c.Remove("p1")
	_, ok = c.Get("p1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestEntriesIsSnapshot(t *testing.T) {
	c := New()
	c.Set("b", model.NewPlayer("b", time.Now()))
	c.Set("a", model.NewPlayer("a", time.Now()))

	entries := c.Entries()
	c.Remove("a")
	c.Set("c", model.NewPlayer("c", time.Now()))

	require.Len(t, entries, 2)
	assert.Equal(t, model.PlayerID("a"), entries[0].ID)
	assert.Equal(t, model.PlayerID("b"), entries[1].ID)
}
