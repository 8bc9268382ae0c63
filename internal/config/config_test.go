package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// setTestHome points HOME at a temp dir so Load reads an isolated
// ~/.sessiondex, and resets the cache around the test.
func setTestHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	ClearCache()
	t.Cleanup(ClearCache)
	return home
}

func writeTestConfig(t *testing.T, home, content string) string {
	t.Helper()
	dir := filepath.Join(home, ".sessiondex")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	setTestHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for missing file", err)
	}
	if cfg.ProjectsDir != "" || cfg.IndexPath != "" || cfg.Theme != "" {
		t.Errorf("Load() = %+v, want zero config", cfg)
	}

	if got := GetTheme(); got != "dark" {
		t.Errorf("GetTheme() = %q, want dark", got)
	}
	if got := GetSearchSettings().SnippetWidth; got != 80 {
		t.Errorf("SnippetWidth = %d, want 80", got)
	}
	if got := GetWatchSettings().MinInterval(); got != 2*time.Second {
		t.Errorf("MinInterval() = %v, want 2s", got)
	}
	logs := GetLogSettings()
	if logs.Level != "info" || logs.Format != "json" {
		t.Errorf("GetLogSettings() = %+v, want info/json defaults", logs)
	}
	if logs.MaxSizeMB != 10 || logs.MaxBackups != 5 || logs.MaxAgeDays != 10 {
		t.Errorf("GetLogSettings() rotation = %+v, want 10/5/10", logs)
	}
}

func TestLoadParsesFile(t *testing.T) {
	home := setTestHome(t)
	writeTestConfig(t, home, `
projects_dir = "/srv/transcripts"
index_path = "/srv/index.db"
theme = "light"

[search]
snippet_width = 40

[watch]
min_interval_seconds = 5

[logs]
level = "debug"
format = "text"
max_size_mb = 20
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ProjectsDir != "/srv/transcripts" {
		t.Errorf("ProjectsDir = %q", cfg.ProjectsDir)
	}
	if cfg.IndexPath != "/srv/index.db" {
		t.Errorf("IndexPath = %q", cfg.IndexPath)
	}
	if got := GetTheme(); got != "light" {
		t.Errorf("GetTheme() = %q, want light", got)
	}
	if got := GetSearchSettings().SnippetWidth; got != 40 {
		t.Errorf("SnippetWidth = %d, want 40", got)
	}
	if got := GetWatchSettings().MinInterval(); got != 5*time.Second {
		t.Errorf("MinInterval() = %v, want 5s", got)
	}
	logs := GetLogSettings()
	if logs.Level != "debug" || logs.Format != "text" || logs.MaxSizeMB != 20 {
		t.Errorf("GetLogSettings() = %+v", logs)
	}
	if logs.MaxBackups != 5 {
		t.Errorf("MaxBackups = %d, want default 5", logs.MaxBackups)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	home := setTestHome(t)
	writeTestConfig(t, home, "theme = [not valid toml")

	cfg, err := Load()
	if err == nil {
		t.Fatal("Load() error = nil, want parse error")
	}
	if !strings.Contains(err.Error(), "parse error") {
		t.Errorf("Load() error = %v, want parse error", err)
	}
	if cfg == nil || cfg.Theme != "" {
		t.Errorf("Load() = %+v, want defaults on parse error", cfg)
	}

	// The defaults are cached so the error is not reported twice
	if _, err := Load(); err != nil {
		t.Errorf("second Load() error = %v, want cached defaults", err)
	}
}

func TestLoadCachesUntilReload(t *testing.T) {
	home := setTestHome(t)
	writeTestConfig(t, home, `theme = "light"`)

	if got := GetTheme(); got != "light" {
		t.Fatalf("GetTheme() = %q, want light", got)
	}

	writeTestConfig(t, home, `theme = "dark"`)
	if got := GetTheme(); got != "light" {
		t.Errorf("GetTheme() after rewrite = %q, want cached light", got)
	}

	if _, err := Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if got := GetTheme(); got != "dark" {
		t.Errorf("GetTheme() after Reload = %q, want dark", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	home := setTestHome(t)

	cfg := &Config{
		ProjectsDir: "/srv/transcripts",
		Theme:       "light",
		Search:      SearchSettings{SnippetWidth: 60},
	}
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	path := filepath.Join(home, ".sessiondex", FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# sessiondex configuration") {
		t.Errorf("saved config missing header: %q", string(data)[:40])
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after save")
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() after Save error = %v", err)
	}
	if loaded.ProjectsDir != cfg.ProjectsDir || loaded.Theme != cfg.Theme {
		t.Errorf("Load() = %+v, want %+v", loaded, cfg)
	}
	if loaded.Search.SnippetWidth != 60 {
		t.Errorf("SnippetWidth = %d, want 60", loaded.Search.SnippetWidth)
	}
}

func TestWatchSettingsMinInterval(t *testing.T) {
	cases := []struct {
		seconds int
		want    time.Duration
	}{
		{0, 2 * time.Second},
		{-1, 2 * time.Second},
		{1, time.Second},
		{5, 5 * time.Second},
	}
	for _, tc := range cases {
		w := WatchSettings{MinIntervalSeconds: tc.seconds}
		if got := w.MinInterval(); got != tc.want {
			t.Errorf("MinInterval(%d) = %v, want %v", tc.seconds, got, tc.want)
		}
	}
}

func TestGetThemeValidation(t *testing.T) {
	home := setTestHome(t)

	cases := []struct {
		value string
		want  string
	}{
		{"dark", "dark"},
		{"light", "light"},
		{"system", "system"},
		{"", "dark"},
		{"solarized", "dark"},
	}
	for _, tc := range cases {
		writeTestConfig(t, home, `theme = "`+tc.value+`"`)
		ClearCache()
		if got := GetTheme(); got != tc.want {
			t.Errorf("GetTheme() with %q = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestResolvedPathsExpandHome(t *testing.T) {
	home := setTestHome(t)
	writeTestConfig(t, home, `
projects_dir = "~/transcripts"
index_path = "/var/cache/index.db"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, want := cfg.ResolvedProjectsDir(), filepath.Join(home, "transcripts"); got != want {
		t.Errorf("ResolvedProjectsDir() = %q, want %q", got, want)
	}
	if got := cfg.ResolvedIndexPath(); got != "/var/cache/index.db" {
		t.Errorf("ResolvedIndexPath() = %q, want unchanged absolute path", got)
	}

	empty := &Config{}
	if got := empty.ResolvedProjectsDir(); got != "" {
		t.Errorf("ResolvedProjectsDir() on empty config = %q, want empty", got)
	}
}
