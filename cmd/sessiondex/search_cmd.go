package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/ewhitmore/sessiondex/internal/config"
	"github.com/ewhitmore/sessiondex/internal/indexdb"
	"github.com/ewhitmore/sessiondex/internal/search"
	"github.com/ewhitmore/sessiondex/internal/transcript"
)

// handleSearch runs a cross-project prompt search against the index.
func handleSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	dbPath := fs.String("db", "", "Index database path")
	limit := fs.Int("limit", 20, "Maximum results to print (0 = all)")
	jsonOutput := fs.Bool("json", false, "Output as JSON")

	fs.Usage = func() {
		fmt.Println("Usage: sessiondex search <query> [options]")
		fmt.Println()
		fmt.Println("Search user prompts across every indexed project. Matching is a")
		fmt.Println("case-insensitive substring scan; project paths and git branches")
		fmt.Println("match too. Run 'sessiondex index' first to build the index.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  sessiondex search deploy")
		fmt.Println("  sessiondex search \"database migration\" --limit 5")
		fmt.Println("  sessiondex search deploy --json")
	}

	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		os.Exit(1)
	}

	query := strings.Join(fs.Args(), " ")
	if query == "" {
		fmt.Fprintln(os.Stderr, "Error: search query is required")
		fs.Usage()
		os.Exit(1)
	}

	db, err := resolveIndexPath(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve index path: %v\n", err)
		os.Exit(1)
	}

	store, err := indexdb.Open(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open index: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	results, err := search.LoadResults(store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load index: %v\n", err)
		os.Exit(1)
	}

	matches := search.Global(results, query)
	if *limit > 0 && len(matches) > *limit {
		matches = matches[:*limit]
	}

	windowSize := snippetWindowSize()

	if *jsonOutput {
		type searchJSON struct {
			SessionID   string `json:"session_id"`
			ProjectPath string `json:"project_path"`
			GitBranch   string `json:"git_branch,omitempty"`
			CreatedAt   string `json:"created_at,omitempty"`
			Snippet     string `json:"snippet"`
			Resume      string `json:"resume"`
		}
		rows := make([]searchJSON, len(matches))
		for i, r := range matches {
			rows[i] = searchJSON{
				SessionID:   r.SessionID,
				ProjectPath: r.ProjectPath,
				GitBranch:   r.GitBranch,
				CreatedAt:   r.CreatedAt,
				Snippet:     r.Snippet(windowSize).Text,
				Resume:      r.ResumeCommand(),
			}
		}
		output, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to format JSON output: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(output))
		return
	}

	if len(matches) == 0 {
		fmt.Println("No matches found.")
		return
	}

	for i, r := range matches {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(formatResultHeader(r))
		if snippet := r.Snippet(windowSize); snippet.Text != "" {
			fmt.Printf("  %s\n", HighlightRunes(snippet.Text, snippet.Indices))
		}
		fmt.Printf("  %s\n", DimStyle.Render(bulletSymbol+" "+r.ResumeCommand()))
	}
	fmt.Printf("\nFound %d sessions\n", len(matches))
}

// formatResultHeader renders the project line for one search hit.
func formatResultHeader(r search.Result) string {
	header := PathStyle.Render(FormatPath(r.ProjectPath))
	if r.GitBranch != "" {
		header += " " + BranchStyle.Render("["+r.GitBranch+"]")
	}
	if ts := transcript.ParseTimestamp(r.CreatedAt); !ts.IsZero() {
		header += " " + TimestampStyle.Render(formatSessionTime(ts))
	}
	return header
}

// snippetWindowSize derives the snippet context window from the
// configured snippet width, shrinking to fit a narrow terminal.
func snippetWindowSize() int {
	width := config.GetSearchSettings().SnippetWidth
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 30 && w-10 < width {
			width = w - 10
		}
	}
	return width / 2
}
