package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucket_RefillsAndPrunesIdleClients(t *testing.T) {
	clock := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	l := newTokenBucket(2)
	l.now = func() time.Time { return clock }

	assert.True(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.2"))
	assert.Len(t, l.state, 2)

	clock = clock.Add(30 * time.Second)
	assert.True(t, l.allow("10.0.0.1"), "half a minute refills one token")
	assert.Len(t, l.state, 2)

	clock = clock.Add(2 * time.Minute)
	assert.True(t, l.allow("10.0.0.3"))
	assert.Len(t, l.state, 1, "idle clients must be dropped")
	assert.Contains(t, l.state, "10.0.0.3")
}
