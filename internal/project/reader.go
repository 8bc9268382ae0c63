package project

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ewhitmore/sessiondex/internal/transcript"
)

// previewLimit caps the stored first-prompt preview at 200 characters.
const previewLimit = 200

// maxLineBytes bounds a single JSONL line. Tool results with large
// file dumps can get big, so the scanner buffer allows up to 10MB.
const maxLineBytes = 10 * 1024 * 1024

// ProjectInfo describes one project directory under the logs root.
type ProjectInfo struct {
	DirName      string `json:"dir_name"`
	OriginalPath string `json:"original_path"`
	SessionCount int    `json:"session_count"`
}

// SessionInfo is the listing row for one session. Timestamp is the
// zero time when neither the sidecar nor the log carried one.
type SessionInfo struct {
	SessionID    string    `json:"session_id"`
	ProjectName  string    `json:"project_name"`
	Preview      string    `json:"preview"`
	Timestamp    time.Time `json:"timestamp"`
	MessageCount int       `json:"message_count"`
	GitBranch    string    `json:"git_branch,omitempty"`
	Summary      string    `json:"summary,omitempty"`
}

// ListProjects enumerates project directories under root, resolving
// each one's original path from the sidecar when available and from
// the encoded directory name otherwise. A missing root is an empty
// listing, not an error.
func ListProjects(root string) ([]ProjectInfo, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("project: read projects dir: %w", err)
	}

	var projects []ProjectInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dirName := entry.Name()
		projectDir := filepath.Join(root, dirName)

		originalPath := ReadSidecar(projectDir).OriginalPathHint()
		if originalPath == "" {
			originalPath = DecodeDirName(dirName)
		}

		projects = append(projects, ProjectInfo{
			DirName:      dirName,
			OriginalPath: originalPath,
			SessionCount: countSessionFiles(projectDir),
		})
	}
	return projects, nil
}

// ListSessions lists the sessions of one project, newest first. The
// sidecar is the preferred source; when it is absent or empty the
// session logs themselves are scanned. Sessions without a timestamp
// sort last.
func ListSessions(root, projectName string) ([]SessionInfo, error) {
	projectDir := filepath.Join(root, projectName)
	if _, err := os.Stat(projectDir); os.IsNotExist(err) {
		return nil, nil
	}

	if sc := ReadSidecar(projectDir); sc != nil && len(sc.Entries) > 0 {
		sessions := sessionsFromSidecar(projectName, sc.Entries)
		sortSessionsByTime(sessions)
		return sessions, nil
	}

	sessions, err := sessionsFromFiles(projectName, projectDir)
	if err != nil {
		return nil, err
	}
	sortSessionsByTime(sessions)
	return sessions, nil
}

// LoadSession parses a full session log into ordered messages. A
// missing log returns an empty transcript and no error.
func LoadSession(root, projectName, sessionID string) ([]transcript.Message, error) {
	path := filepath.Join(root, projectName, sessionID+".jsonl")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("project: open session log: %w", err)
	}
	defer f.Close()

	var msgs []transcript.Message
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256*1024), maxLineBytes)
	for scanner.Scan() {
		msgs = append(msgs, transcript.ParseLine(scanner.Text())...)
	}
	if err := scanner.Err(); err != nil {
		return msgs, fmt.Errorf("project: read session log: %w", err)
	}
	return msgs, nil
}

func sessionsFromSidecar(projectName string, entries []SidecarEntry) []SessionInfo {
	sessions := make([]SessionInfo, 0, len(entries))
	for _, e := range entries {
		sessions = append(sessions, SessionInfo{
			SessionID:    e.SessionID,
			ProjectName:  projectName,
			Preview:      transcript.Truncate(e.FirstPrompt, previewLimit),
			Timestamp:    transcript.ParseTimestamp(e.Created),
			MessageCount: int(e.MessageCount),
			GitBranch:    e.GitBranch,
			Summary:      e.Summary,
		})
	}
	return sessions
}

func sessionsFromFiles(projectName, projectDir string) ([]SessionInfo, error) {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return nil, nil
	}

	var sessions []SessionInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		sessions = append(sessions, scanSessionFile(projectName, filepath.Join(projectDir, name)))
	}
	return sessions, nil
}

// scanSessionFile derives listing metadata from the log itself: every
// user and assistant line bumps the message count, and the first user
// line with extractable text supplies preview, timestamp, and branch.
func scanSessionFile(projectName, path string) SessionInfo {
	info := SessionInfo{
		SessionID:   strings.TrimSuffix(filepath.Base(path), ".jsonl"),
		ProjectName: projectName,
	}

	f, err := os.Open(path)
	if err != nil {
		return info
	}
	defer f.Close()

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
			GitBranch string `json:"gitBranch"`
			Message   struct {
				Content json.RawMessage `json:"content"`
			} `json:"message"`
		}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}

		if rec.Type == "user" || rec.Type == "assistant" {
			info.MessageCount++
		}
		if rec.Type == "user" && info.Preview == "" {
			info.Preview = transcript.Truncate(transcript.ExtractText(rec.Message.Content), previewLimit)
			info.Timestamp = transcript.ParseTimestamp(rec.Timestamp)
			info.GitBranch = rec.GitBranch
		}
	}
	return info
}

func countSessionFiles(projectDir string) int {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jsonl") {
			n++
		}
	}
	return n
}

func sortSessionsByTime(sessions []SessionInfo) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Timestamp.After(sessions[j].Timestamp)
	})
}
