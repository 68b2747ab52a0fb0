package semantic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitWindows_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, SplitWindows("", 100))
}

func TestSplitWindows_ExactAndRemainder(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("a", 250)
	windows := SplitWindows(text, 100)

	require.Len(t, windows, 3)
	assert.Equal(t, 0, windows[0].Start)
	assert.Equal(t, 100, windows[1].Start)
	assert.Equal(t, 200, windows[2].Start)
	assert.Len(t, windows[2].Text, 50)

	// Windows reassemble to the original text.
	var b strings.Builder
	for _, w := range windows {
		b.WriteString(w.Text)
	}
	assert.Equal(t, text, b.String())
}

func TestSplitWindows_RuneSafe(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("世", 7)
	windows := SplitWindows(text, 3)

	require.Len(t, windows, 3)
	for _, w := range windows {
		assert.True(t, strings.HasPrefix(w.Text, "世"), "window split mid-rune")
	}
	assert.Equal(t, 6, windows[2].Start)
}
