package search

import (
	"strings"
	"unicode/utf8"

	"github.com/ewhitmore/sessiondex/internal/indexdb"
)

// Result is one cross-project search hit. BestMatchPrompt and
// BestMatchIndices are query-dependent: recomputed by Global on every
// call, empty on freshly loaded results.
type Result struct {
	SessionID        string   `json:"session_id"`
	ProjectPath      string   `json:"project_path"`
	DirName          string   `json:"dir_name"`
	GitBranch        string   `json:"git_branch,omitempty"`
	CreatedAt        string   `json:"created_at,omitempty"`
	Prompts          []string `json:"-"`
	BestMatchPrompt  string   `json:"best_match_prompt,omitempty"`
	BestMatchIndices []int    `json:"-"`
}

// ResumeCommand returns the shell command that reopens this session in
// the assistant.
func (r Result) ResumeCommand() string {
	return "claude --resume " + r.SessionID
}

// LoadResults pulls every indexed session from the store as results
// with empty match state, newest first.
func LoadResults(store *indexdb.Store) ([]Result, error) {
	sessions, err := store.SearchAll()
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(sessions))
	for _, s := range sessions {
		results = append(results, Result{
			SessionID:   s.SessionID,
			ProjectPath: s.ProjectPath,
			DirName:     s.DirName,
			GitBranch:   s.GitBranch,
			CreatedAt:   s.CreatedAt,
			Prompts:     s.Prompts,
		})
	}
	return results, nil
}

// Global filters results by a case-insensitive substring query. The
// first prompt containing the query becomes BestMatchPrompt, with the
// matched span recorded as rune offsets in BestMatchIndices. Sessions
// that match only via project path or git branch fall back to their
// first prompt with no highlight. An empty query returns a copy of
// every result.
func Global(results []Result, query string) []Result {
	if query == "" {
		return append([]Result(nil), results...)
	}

	q := strings.ToLower(query)
	queryLen := utf8.RuneCountInString(q)

	var filtered []Result
	for _, r := range results {
		if match, ok := matchResult(r, q, queryLen); ok {
			filtered = append(filtered, match)
		}
	}
	return filtered
}

func matchResult(r Result, q string, queryLen int) (Result, bool) {
	for _, prompt := range r.Prompts {
		lower := strings.ToLower(prompt)
		bytePos := strings.Index(lower, q)
		if bytePos < 0 {
			continue
		}

		charStart := byteIndexToRuneIndex(lower, bytePos)
		indices := make([]int, queryLen)
		for i := range indices {
			indices[i] = charStart + i
		}

		r.BestMatchPrompt = prompt
		r.BestMatchIndices = indices
		return r, true
	}

	if strings.Contains(strings.ToLower(r.ProjectPath), q) ||
		strings.Contains(strings.ToLower(r.GitBranch), q) {
		if len(r.Prompts) > 0 {
			r.BestMatchPrompt = r.Prompts[0]
		} else {
			r.BestMatchPrompt = ""
		}
		r.BestMatchIndices = nil
		return r, true
	}

	return Result{}, false
}

// byteIndexToRuneIndex converts a byte index to a rune index efficiently.
// This avoids creating substring copies which would cost O(n) allocations.
func byteIndexToRuneIndex(s string, byteIdx int) int {
	if byteIdx <= 0 {
		return 0
	}
	if byteIdx >= len(s) {
		return len([]rune(s))
	}
	// Count runes up to the byte index without creating a substring
	runeCount := 0
	for i := range s {
		if i >= byteIdx {
			break
		}
		runeCount++
	}
	return runeCount
}
