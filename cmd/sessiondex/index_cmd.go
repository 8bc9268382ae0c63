package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ewhitmore/sessiondex/internal/config"
	"github.com/ewhitmore/sessiondex/internal/indexdb"
	"github.com/ewhitmore/sessiondex/internal/indexer"
	"github.com/ewhitmore/sessiondex/internal/watch"
)

// handleIndex builds the session index, optionally staying resident to
// rebuild whenever the logs change.
func handleIndex(args []string) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	root := fs.String("root", "", "Transcripts root directory")
	dbPath := fs.String("db", "", "Index database path")
	watchMode := fs.Bool("watch", false, "Stay resident and re-index on changes")
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	quiet := fs.Bool("quiet", false, "Suppress output")

	fs.Usage = func() {
		fmt.Println("Usage: sessiondex index [options]")
		fmt.Println()
		fmt.Println("Scan the transcripts root and refresh the search index.")
		fmt.Println("Sessions whose log file is unchanged since the last run are skipped.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  sessiondex index                 # One-shot incremental build")
		fmt.Println("  sessiondex index --watch         # Rebuild as logs change")
		fmt.Println("  sessiondex index --root /logs --db /tmp/index.db")
	}

	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		os.Exit(1)
	}

	out := NewCLIOutput(*jsonOutput, *quiet)

	rootDir, err := resolveProjectsRoot(*root)
	if err != nil {
		out.Error(fmt.Sprintf("failed to resolve transcripts root: %v", err), ErrCodeInvalidInput)
		os.Exit(1)
	}

	db, err := resolveIndexPath(*dbPath)
	if err != nil {
		out.Error(fmt.Sprintf("failed to resolve index path: %v", err), ErrCodeInvalidInput)
		os.Exit(1)
	}

	store, err := indexdb.Open(db)
	if err != nil {
		out.Error(fmt.Sprintf("failed to open index: %v", err), ErrCodeStorage)
		os.Exit(1)
	}
	defer store.Close()

	if *watchMode {
		// Ctrl+C or SIGTERM cancels the context and Run returns cleanly
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		w, err := watch.New(store, rootDir, config.GetWatchSettings().MinInterval())
		if err != nil {
			out.Error(fmt.Sprintf("failed to start watcher: %v", err), ErrCodeIndexFailed)
			os.Exit(1)
		}

		if !*jsonOutput && !*quiet {
			fmt.Printf("Watching %s (Ctrl+C to stop)\n", FormatPath(rootDir))
		}
		if err := w.Run(ctx); err != nil {
			out.Error(fmt.Sprintf("watch failed: %v", err), ErrCodeIndexFailed)
			os.Exit(1)
		}
		return
	}

	stats, err := indexer.Build(store, rootDir)
	if err != nil {
		out.Error(fmt.Sprintf("index build failed: %v", err), ErrCodeIndexFailed)
		os.Exit(1)
	}

	out.Success(
		fmt.Sprintf("Indexed %d sessions (%d unchanged) in %s",
			stats.Indexed, stats.Skipped, stats.Elapsed.Round(time.Millisecond)),
		map[string]interface{}{
			"success":    true,
			"indexed":    stats.Indexed,
			"unchanged":  stats.Skipped,
			"elapsed_ms": stats.Elapsed.Milliseconds(),
			"db_path":    db,
		})
}
