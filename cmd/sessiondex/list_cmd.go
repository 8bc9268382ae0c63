package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/ewhitmore/sessiondex/internal/project"
	"github.com/ewhitmore/sessiondex/internal/search"
)

// handleProjects lists project directories under the transcripts root.
func handleProjects(args []string) {
	fs := flag.NewFlagSet("projects", flag.ExitOnError)
	root := fs.String("root", "", "Transcripts root directory")
	jsonOutput := fs.Bool("json", false, "Output as JSON")

	fs.Usage = func() {
		fmt.Println("Usage: sessiondex projects [query] [options]")
		fmt.Println()
		fmt.Println("List projects that have recorded sessions. An optional query")
		fmt.Println("fuzzy-filters the list by original path.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  sessiondex projects              # All projects")
		fmt.Println("  sessiondex projects website      # Projects matching 'website'")
		fmt.Println("  sessiondex projects --json")
	}

	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		os.Exit(1)
	}

	rootDir, err := resolveProjectsRoot(*root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve transcripts root: %v\n", err)
		os.Exit(1)
	}

	projects, err := project.ListProjects(rootDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to list projects: %v\n", err)
		os.Exit(1)
	}

	if query := strings.Join(fs.Args(), " "); query != "" {
		projects = search.FilterProjects(projects, query)
	}

	if *jsonOutput {
		type projectJSON struct {
			Path     string `json:"path"`
			DirName  string `json:"dir_name"`
			Sessions int    `json:"sessions"`
		}
		rows := make([]projectJSON, len(projects))
		for i, p := range projects {
			rows[i] = projectJSON{
				Path:     p.OriginalPath,
				DirName:  p.DirName,
				Sessions: p.SessionCount,
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

	if len(projects) == 0 {
		fmt.Println("No projects found.")
		return
	}

	fmt.Printf("%s %s\n", padCell("PATH", tableColPath), "SESSIONS")
	fmt.Println(strings.Repeat("-", tableColPath+9))
	for _, p := range projects {
		fmt.Printf("%s %d\n", padCell(FormatPath(p.OriginalPath), tableColPath), p.SessionCount)
	}
	fmt.Printf("\nTotal: %d projects\n", len(projects))
}

// handleSessions lists the sessions of one project, newest first.
func handleSessions(args []string) {
	fs := flag.NewFlagSet("sessions", flag.ExitOnError)
	root := fs.String("root", "", "Transcripts root directory")
	since := fs.String("since", "", "Time filter: yesterday, week, month, all")
	jsonOutput := fs.Bool("json", false, "Output as JSON")

	fs.Usage = func() {
		fmt.Println("Usage: sessiondex sessions <project> [query] [options]")
		fmt.Println()
		fmt.Println("List sessions of a project. The project can be given as the")
		fmt.Println("encoded directory name or as a filesystem path. An optional")
		fmt.Println("query fuzzy-filters by prompt preview, summary, and branch.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  sessiondex sessions -home-bob-website")
		fmt.Println("  sessiondex sessions ~/website              # Same project, by path")
		fmt.Println("  sessiondex sessions ~/website login        # Filter by 'login'")
		fmt.Println("  sessiondex sessions ~/website --since week")
	}

	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: project name or path is required")
		fs.Usage()
		os.Exit(1)
	}
	projectArg := fs.Arg(0)
	query := strings.Join(fs.Args()[1:], " ")

	timeFilter, err := search.ParseTimeFilter(*since)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rootDir, err := resolveProjectsRoot(*root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve transcripts root: %v\n", err)
		os.Exit(1)
	}

	projectName := resolveProjectName(projectArg)

	sessions, err := project.ListSessions(rootDir, projectName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to list sessions: %v\n", err)
		os.Exit(1)
	}

	sessions = search.FilterByTime(sessions, timeFilter, time.Now())
	if query != "" {
		sessions = search.FilterSessions(sessions, query)
	}

	if *jsonOutput {
		if sessions == nil {
			sessions = []project.SessionInfo{}
		}
		output, err := json.MarshalIndent(sessions, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to format JSON output: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(output))
		return
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions found.")
		return
	}

	fmt.Printf("%s %s %s %s\n",
		padCell("ID", tableColID),
		padCell("CREATED", tableColTime),
		padCell("BRANCH", tableColBranch),
		"PREVIEW")
	fmt.Println(strings.Repeat("-", tableColID+tableColTime+tableColBranch+tableColPreview+3))
	for _, s := range sessions {
		preview := strings.ReplaceAll(s.Preview, "\n", " ")
		fmt.Printf("%s %s %s %s\n",
			padCell(TruncateID(s.SessionID), tableColID),
			padCell(formatSessionTime(s.Timestamp), tableColTime),
			padCell(s.GitBranch, tableColBranch),
			runewidth.Truncate(preview, tableColPreview, "..."))
	}
	fmt.Printf("\nTotal: %d sessions\n", len(sessions))
}

// resolveProjectName maps a user-supplied project argument to the encoded
// directory name. Arguments that look like filesystem paths are encoded;
// anything else is assumed to already be a directory name.
func resolveProjectName(arg string) string {
	if arg == "~" || strings.HasPrefix(arg, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			arg = filepath.Join(home, strings.TrimPrefix(arg, "~"))
		}
	}
	if strings.HasPrefix(arg, "/") {
		return project.EncodeDirPath(arg)
	}
	return arg
}
