package search

import "unicode"

// Snippet is a display window of a best-match prompt: the text clipped
// around the matched span, with the match offsets rebased into the
// clipped text as rune positions.
type Snippet struct {
	Text    string
	Indices []int
}

// Snippet clips the best-match prompt to a window of roughly
// windowSize runes on either side of the matched span, extended
// outward to whitespace so words are not cut, with "..." marking
// clipped edges. Without a match the prompt head is returned instead.
func (r Result) Snippet(windowSize int) Snippet {
	runes := []rune(r.BestMatchPrompt)

	if len(r.BestMatchIndices) == 0 {
		if len(runes) > windowSize*2 {
			return Snippet{Text: string(runes[:windowSize*2]) + "..."}
		}
		return Snippet{Text: r.BestMatchPrompt}
	}

	// Offsets can overshoot the prompt when lowercasing changed rune
	// counts; clamp rather than panic.
	runeStart := r.BestMatchIndices[0]
	runeEnd := r.BestMatchIndices[len(r.BestMatchIndices)-1] + 1
	if runeStart > len(runes) {
		runeStart = len(runes)
	}
	if runeEnd > len(runes) {
		runeEnd = len(runes)
	}

	start := runeStart - windowSize
	if start < 0 {
		start = 0
	}
	end := runeEnd + windowSize
	if end > len(runes) {
		end = len(runes)
	}

	for start > 0 && runes[start-1] != ' ' && runes[start-1] != '\n' {
		start--
	}
	for end < len(runes) && runes[end] != ' ' && runes[end] != '\n' {
		end++
	}

	window := runes[start:end]
	lead := 0
	for lead < len(window) && unicode.IsSpace(window[lead]) {
		lead++
	}
	tail := len(window)
	for tail > lead && unicode.IsSpace(window[tail-1]) {
		tail--
	}
	window = window[lead:tail]

	prefix, suffix := "", ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	prefixLen := len(prefix)

	indices := make([]int, 0, len(r.BestMatchIndices))
	for _, idx := range r.BestMatchIndices {
		rebased := idx - start - lead + prefixLen
		if rebased >= prefixLen && rebased < prefixLen+len(window) {
			indices = append(indices, rebased)
		}
	}

	return Snippet{Text: prefix + string(window) + suffix, Indices: indices}
}
