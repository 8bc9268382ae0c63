package indexer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ewhitmore/sessiondex/internal/indexdb"
	"github.com/ewhitmore/sessiondex/internal/logging"
	"github.com/ewhitmore/sessiondex/internal/project"
	"github.com/ewhitmore/sessiondex/internal/transcript"
)

var indexLog = logging.ForComponent(logging.CompIndexer)

// maxLineBytes bounds a single JSONL line when extracting prompts.
const maxLineBytes = 10 * 1024 * 1024

// DefaultDBPath returns the index location under the user cache dir.
func DefaultDBPath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("indexer: resolve cache dir: %w", err)
	}
	return filepath.Join(cacheDir, "sessiondex", "index.db"), nil
}

// Stats summarizes one build pass.
type Stats struct {
	Indexed int
	Skipped int
	Elapsed time.Duration
}

// Build incrementally refreshes the index from the projects root. A
// missing root is a no-op, not an error. A session file whose mtime
// equals the stored value is skipped entirely; any other file is
// re-parsed, its session row upserted, and its prompt rows replaced.
// Store errors abort the build.
func Build(store *indexdb.Store, projectsRoot string) (Stats, error) {
	start := time.Now()

	entries, err := os.ReadDir(projectsRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return Stats{}, nil
		}
		return Stats{}, fmt.Errorf("indexer: read projects dir: %w", err)
	}

	indexed, skipped := 0, 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dirName := entry.Name()
		projectDir := filepath.Join(projectsRoot, dirName)

		meta := project.ReadSidecar(projectDir).EntryMap()

		files, err := os.ReadDir(projectDir)
		if err != nil {
			continue
		}
		for _, file := range files {
			name := file.Name()
			if file.IsDir() || !strings.HasSuffix(name, ".jsonl") {
				continue
			}
			sessionID := strings.TrimSuffix(name, ".jsonl")
			path := filepath.Join(projectDir, name)

			fileMtime := mtimeMillis(path)

			stored, known, err := store.GetFileMtime(sessionID)
			if err != nil {
				return Stats{}, fmt.Errorf("indexer: mtime lookup for %s: %w", sessionID, err)
			}
			if known && stored == fileMtime {
				skipped++
				continue
			}

			rec, prompts := buildRecord(sessionID, dirName, path, fileMtime, meta[sessionID])
			if err := store.UpsertSession(rec); err != nil {
				return Stats{}, fmt.Errorf("indexer: upsert %s: %w", sessionID, err)
			}
			if err := store.ReplacePrompts(sessionID, prompts); err != nil {
				return Stats{}, fmt.Errorf("indexer: prompts for %s: %w", sessionID, err)
			}
			indexed++
			indexLog.Debug("session indexed",
				"session_id", sessionID, "dir", dirName, "prompts", len(prompts))
		}
	}

	if err := store.SetMeta("last_build", strconv.FormatInt(time.Now().Unix(), 10)); err != nil {
		return Stats{}, fmt.Errorf("indexer: record last build: %w", err)
	}

	stats := Stats{Indexed: indexed, Skipped: skipped, Elapsed: time.Since(start)}
	indexLog.Info("build complete",
		"indexed", stats.Indexed, "skipped", stats.Skipped,
		"elapsed", stats.Elapsed.Round(time.Millisecond).String())
	return stats, nil
}

// BuildDefault resolves the default index and projects locations, runs
// a build, and returns the index path.
func BuildDefault() (string, Stats, error) {
	dbPath, err := DefaultDBPath()
	if err != nil {
		return "", Stats{}, err
	}
	projectsRoot, err := project.DefaultRoot()
	if err != nil {
		return "", Stats{}, err
	}

	store, err := indexdb.Open(dbPath)
	if err != nil {
		return "", Stats{}, err
	}
	defer store.Close()

	stats, err := Build(store, projectsRoot)
	if err != nil {
		return "", Stats{}, err
	}
	return dbPath, stats, nil
}

// buildRecord assembles one session's row and prompt list. Sidecar
// metadata wins where present; the project path falls back to decoding
// the directory name and the first prompt to the first extracted one.
func buildRecord(sessionID, dirName, path string, fileMtime int64, meta project.SidecarEntry) (*indexdb.SessionRecord, []indexdb.PromptRecord) {
	projectPath := meta.ProjectPath
	if projectPath == "" {
		projectPath = project.DecodeDirName(dirName)
	}

	prompts := extractUserPrompts(path)

	firstPrompt := meta.FirstPrompt
	if firstPrompt == "" && len(prompts) > 0 {
		firstPrompt = prompts[0].Prompt
	}

	return &indexdb.SessionRecord{
		SessionID:    sessionID,
		ProjectPath:  projectPath,
		DirName:      dirName,
		GitBranch:    meta.GitBranch,
		Summary:      meta.Summary,
		FirstPrompt:  firstPrompt,
		MessageCount: meta.MessageCount,
		CreatedAt:    meta.Created,
		ModifiedAt:   meta.Modified,
		FileMtime:    fileMtime,
	}, prompts
}

// extractUserPrompts collects the text of every user turn in log
// order, skipping lines that are malformed or yield no text.
func extractUserPrompts(path string) []indexdb.PromptRecord {
	f, err := os.Open(path)
	if err != nil {
		indexLog.Debug("session unreadable", "path", path, "error", err.Error())
		return nil
	}
	defer f.Close()

	var prompts []indexdb.PromptRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec struct {
			Type      string `json:"type"`
			Timestamp string `json:"timestamp"`
			Message   struct {
				Content json.RawMessage `json:"content"`
			} `json:"message"`
		}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}
		if rec.Type != "user" {
			continue
		}

		text := transcript.ExtractText(rec.Message.Content)
		if text == "" {
			continue
		}
		prompts = append(prompts, indexdb.PromptRecord{Prompt: text, Timestamp: rec.Timestamp})
	}
	return prompts
}

// mtimeMillis returns the file's modification time in milliseconds
// since the epoch, 0 when the file cannot be stat'ed.
func mtimeMillis(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.ModTime().UnixMilli()
}
