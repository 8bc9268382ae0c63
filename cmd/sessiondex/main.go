package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/ewhitmore/sessiondex/internal/config"
	"github.com/ewhitmore/sessiondex/internal/indexer"
	"github.com/ewhitmore/sessiondex/internal/logging"
	"github.com/ewhitmore/sessiondex/internal/project"
)

const Version = "0.3.0"

// Table column widths for listing command output
const (
	tableColID      = 12
	tableColTime    = 16
	tableColBranch  = 20
	tableColPreview = 48
	tableColPath    = 48
)

// init sets up color profile for consistent terminal colors across environments
func init() {
	initColorProfile()
}

// initColorProfile configures lipgloss color profile based on terminal capabilities.
// Prefers TrueColor for best visuals, falls back to ANSI256 for compatibility.
func initColorProfile() {
	// Allow user override via environment variable
	// SESSIONDEX_COLOR: truecolor, 256, 16, none
	if colorEnv := os.Getenv("SESSIONDEX_COLOR"); colorEnv != "" {
		switch strings.ToLower(colorEnv) {
		case "truecolor", "true", "24bit":
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		case "256", "ansi256":
			lipgloss.SetColorProfile(termenv.ANSI256)
			return
		case "16", "ansi", "basic":
			lipgloss.SetColorProfile(termenv.ANSI)
			return
		case "none", "off", "ascii":
			lipgloss.SetColorProfile(termenv.Ascii)
			return
		}
	}

	// Auto-detect with TrueColor preference
	// Most modern terminals support TrueColor even if not advertised

	// Explicit TrueColor support
	colorTerm := os.Getenv("COLORTERM")
	if colorTerm == "truecolor" || colorTerm == "24bit" {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}

	// Check TERM for capability hints
	term := os.Getenv("TERM")

	// Known TrueColor-capable terminals
	trueColorTerms := []string{
		"xterm-256color",
		"screen-256color",
		"tmux-256color",
		"xterm-direct",
		"alacritty",
		"kitty",
		"wezterm",
	}
	for _, t := range trueColorTerms {
		if strings.Contains(term, t) || term == t {
			// These terminals typically support TrueColor
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		}
	}

	// Check for common terminal emulators via env vars
	// Windows Terminal, iTerm2, etc. set these
	if os.Getenv("WT_SESSION") != "" || // Windows Terminal
		os.Getenv("ITERM_SESSION_ID") != "" || // iTerm2
		os.Getenv("TERMINAL_EMULATOR") != "" || // JetBrains terminals
		os.Getenv("KONSOLE_VERSION") != "" { // Konsole
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}

	// Fallback: Use ANSI256 for maximum compatibility
	// Works in SSH, basic terminals, and older emulators
	lipgloss.SetColorProfile(termenv.ANSI256)
}

// initLogging sets up structured logging (JSONL format with rotation).
// When SESSIONDEX_DEBUG is set, logs go to ~/.sessiondex/sessiondex.log.
// When not set, logs are discarded so command output stays clean.
func initLogging() {
	debugMode := os.Getenv("SESSIONDEX_DEBUG") != ""

	ls := config.GetLogSettings()
	logCfg := logging.Config{
		Debug:      debugMode,
		Level:      ls.Level,
		Format:     ls.Format,
		MaxSizeMB:  ls.MaxSizeMB,
		MaxBackups: ls.MaxBackups,
		MaxAgeDays: ls.MaxAgeDays,
		Compress:   true,
	}

	if debugMode {
		logCfg.Level = "debug"
		if baseDir, err := config.Dir(); err == nil {
			logCfg.LogDir = baseDir
		}
	}

	logging.Init(logCfg)
}

func main() {
	// A malformed config falls back to defaults; surface the parse error
	// once so the user knows their settings are not being applied.
	if _, err := config.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	InitTheme(config.ResolveTheme())

	initLogging()
	defer logging.Shutdown()

	args := os.Args[1:]
	if len(args) == 0 {
		printHelp()
		return
	}

	switch args[0] {
	case "version", "--version", "-v":
		fmt.Printf("sessiondex v%s\n", Version)
	case "help", "--help", "-h":
		printHelp()
	case "index":
		handleIndex(args[1:])
	case "projects":
		handleProjects(args[1:])
	case "sessions":
		handleSessions(args[1:])
	case "show":
		handleShow(args[1:])
	case "search":
		handleSearch(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		printHelp()
		os.Exit(1)
	}
}

// resolveProjectsRoot picks the transcripts root: explicit flag first,
// then config, then the default Claude projects directory.
func resolveProjectsRoot(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	cfg, _ := config.Load()
	if dir := cfg.ResolvedProjectsDir(); dir != "" {
		return dir, nil
	}
	return project.DefaultRoot()
}

// resolveIndexPath picks the index database path: explicit flag first,
// then config, then the default location under the user cache dir.
func resolveIndexPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	cfg, _ := config.Load()
	if p := cfg.ResolvedIndexPath(); p != "" {
		return p, nil
	}
	return indexer.DefaultDBPath()
}

func printHelp() {
	fmt.Printf("sessiondex v%s\n", Version)
	fmt.Println("Index and search Claude Code conversation logs")
	fmt.Println()
	fmt.Println("Usage: sessiondex <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  index             Build or refresh the session index")
	fmt.Println("  index --watch     Keep the index fresh as logs change")
	fmt.Println("  projects [query]  List projects with recorded sessions")
	fmt.Println("  sessions <proj>   List sessions of a project")
	fmt.Println("  show <proj> <id>  Print a session transcript")
	fmt.Println("  search <query>    Search prompts across all projects")
	fmt.Println("  version           Show version")
	fmt.Println("  help              Show this help")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --root <dir>      Transcripts root (default: ~/.claude/projects)")
	fmt.Println("  --db <file>       Index database path (default: ~/.cache/sessiondex/index.db)")
	fmt.Println("  --json            Machine-readable output")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  sessiondex index                      # Index all sessions")
	fmt.Println("  sessiondex index --watch              # Re-index on log changes")
	fmt.Println("  sessiondex projects web               # Projects matching 'web'")
	fmt.Println("  sessiondex sessions my-app --since week")
	fmt.Println("  sessiondex show my-app 3f2a9c01-...   # Full transcript")
	fmt.Println("  sessiondex search \"database migration\" --json")
}
