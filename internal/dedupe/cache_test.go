package dedupe_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lawgpt-ru/lawsearch/backend/internal/dedupe"
)

func TestCacheRemembersKeys(t *testing.T) {
	cache := dedupe.New(10, time.Hour)

	require.False(t, cache.Seen("chunk-1"))
	cache.Remember("chunk-1")
	require.True(t, cache.Seen("chunk-1"))
	require.False(t, cache.Seen("chunk-2"))
}

func TestCacheEvictsOldestOverCapacity(t *testing.T) {
	cache := dedupe.New(2, time.Hour)

	cache.Remember("a")
	cache.Remember("b")
	cache.Remember("c")

	require.False(t, cache.Seen("a"))
	require.True(t, cache.Seen("b"))
	require.True(t, cache.Seen("c"))
}

func TestCacheExpiresByTTL(t *testing.T) {
	cache := dedupe.New(10, time.Millisecond)

	cache.Remember("a")
	time.Sleep(5 * time.Millisecond)
	require.False(t, cache.Seen("a"))
}
