package search

import (
	"github.com/sahilm/fuzzy"

	"github.com/ewhitmore/sessiondex/internal/project"
)

// projectSource adapts a project listing to fuzzy matching on the
// original path.
type projectSource []project.ProjectInfo

func (s projectSource) String(i int) string { return s[i].OriginalPath }
func (s projectSource) Len() int            { return len(s) }

// FilterProjects keeps projects whose original path fuzzy-matches the
// query, preserving the input order. An empty query returns the input
// unchanged.
func FilterProjects(projects []project.ProjectInfo, query string) []project.ProjectInfo {
	if query == "" {
		return projects
	}

	matched := make(map[int]struct{})
	for _, m := range fuzzy.FindFrom(query, projectSource(projects)) {
		matched[m.Index] = struct{}{}
	}

	out := make([]project.ProjectInfo, 0, len(matched))
	for i, p := range projects {
		if _, ok := matched[i]; ok {
			out = append(out, p)
		}
	}
	return out
}

// FilterSessions keeps sessions whose preview, summary, or git branch
// fuzzy-matches the query, preserving the input order. A match in any
// one field is enough; the fields are matched independently so a query
// never matches across field boundaries.
func FilterSessions(sessions []project.SessionInfo, query string) []project.SessionInfo {
	if query == "" {
		return sessions
	}

	previews := make([]string, len(sessions))
	summaries := make([]string, len(sessions))
	branches := make([]string, len(sessions))
	for i, s := range sessions {
		previews[i], summaries[i], branches[i] = s.Preview, s.Summary, s.GitBranch
	}

	matched := make(map[int]struct{})
	for _, texts := range [][]string{previews, summaries, branches} {
		for _, m := range fuzzy.Find(query, texts) {
			matched[m.Index] = struct{}{}
		}
	}

	out := make([]project.SessionInfo, 0, len(matched))
	for i, s := range sessions {
		if _, ok := matched[i]; ok {
			out = append(out, s)
		}
	}
	return out
}
