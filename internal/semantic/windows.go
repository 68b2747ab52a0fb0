// Package semantic maintains the vector index over chunk content and
// answers natural-language similarity queries against it.
package semantic

// Window is one fixed-size slice of a chunk's source text, measured in
// runes so multi-byte source never splits mid-character.
type Window struct {
	// Start is the rune offset of the window within the chunk text.
	Start int
	Text  string
}

// SplitWindows cuts text into consecutive windows of at most size runes.
// Every rune lands in exactly one window; empty text yields no windows.
func SplitWindows(text string, size int) []Window {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	windows := make([]Window, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		windows = append(windows, Window{
			Start: start,
			Text:  string(runes[start:end]),
		})
	}
	return windows
}
