package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTriggerID(t *testing.T) {
	id, err := parseTriggerID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"abc", "0", "-3", ""} {
		_, err := parseTriggerID(raw)
		assert.Error(t, err, raw)
	}
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "exactly10!", clip("exactly10!", 10))

	clipped := clip("a very long title that does not fit", 10)
	assert.Len(t, []rune(clipped), 10)
	assert.Equal(t, "…", string([]rune(clipped)[9]))
}
