package project

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// SidecarFileName is the optional per-project metadata file the
// assistant maintains alongside the session logs.
const SidecarFileName = "sessions-index.json"

// SidecarEntry is one session's metadata as recorded in the sidecar.
// Timestamps stay as RFC 3339 strings until a consumer needs them
// parsed.
type SidecarEntry struct {
	SessionID    string `json:"sessionId"`
	ProjectPath  string `json:"projectPath"`
	GitBranch    string `json:"gitBranch"`
	Summary      string `json:"summary"`
	FirstPrompt  string `json:"firstPrompt"`
	MessageCount int64  `json:"messageCount"`
	Created      string `json:"created"`
	Modified     string `json:"modified"`
}

// Sidecar is the top-level shape of sessions-index.json.
type Sidecar struct {
	OriginalPath string         `json:"originalPath"`
	Entries      []SidecarEntry `json:"entries"`
}

// ReadSidecar loads a project directory's sidecar file. The sidecar is
// advisory: absence and malformed JSON both degrade to nil so callers
// fall back to scanning the logs themselves.
func ReadSidecar(projectDir string) *Sidecar {
	data, err := os.ReadFile(filepath.Join(projectDir, SidecarFileName))
	if err != nil {
		return nil
	}
	var sc Sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil
	}
	return &sc
}

// OriginalPathHint returns the best available original project path:
// the top-level originalPath field, else the first entry's projectPath,
// else "".
func (s *Sidecar) OriginalPathHint() string {
	if s == nil {
		return ""
	}
	if s.OriginalPath != "" {
		return s.OriginalPath
	}
	if len(s.Entries) > 0 {
		return s.Entries[0].ProjectPath
	}
	return ""
}

// EntryMap keys the entries by session ID for random access. Entries
// without an ID are dropped.
func (s *Sidecar) EntryMap() map[string]SidecarEntry {
	if s == nil {
		return nil
	}
	m := make(map[string]SidecarEntry, len(s.Entries))
	for _, e := range s.Entries {
		if e.SessionID == "" {
			continue
		}
		m[e.SessionID] = e
	}
	return m
}
