package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// dirNameReplacer flattens a filesystem path into the encoded directory
// name used under the projects root: both "/" and "." become "-".
var dirNameReplacer = strings.NewReplacer("/", "-", ".", "-")

// domainInfixes restores well-known host names that the encoding
// flattened. Checked in order; longer hosts come first so their
// substrings never shadow them.
var domainInfixes = [][2]string{
	{"-tech-pepabo-com-", "/tech.pepabo.com/"},
	{"-git-pepabo-com-", "/git.pepabo.com/"},
	{"-github-com-", "/github.com/"},
	{"-gitlab-com-", "/gitlab.com/"},
	{"-bitbucket-org-", "/bitbucket.org/"},
}

// domainSuffixes handles the same hosts when they terminate the name
// (a checkout directly under the host directory). First hit wins.
var domainSuffixes = [][2]string{
	{"-tech-pepabo-com", "/tech.pepabo.com"},
	{"-git-pepabo-com", "/git.pepabo.com"},
	{"-github-com", "/github.com"},
	{"-gitlab-com", "/gitlab.com"},
	{"-bitbucket-org", "/bitbucket.org"},
}

// DefaultRoot returns the directory the assistant writes project logs
// under. CLAUDE_CONFIG_DIR overrides the usual ~/.claude location.
func DefaultRoot() (string, error) {
	if envDir := os.Getenv("CLAUDE_CONFIG_DIR"); envDir != "" {
		return filepath.Join(envDir, "projects"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("project: resolve home dir: %w", err)
	}
	return filepath.Join(home, ".claude", "projects"), nil
}

// EncodeDirPath converts an absolute path to its encoded directory
// name. The encoding is lossy: dashes already present in the path are
// indistinguishable from encoded separators afterwards.
func EncodeDirPath(path string) string {
	return dirNameReplacer.Replace(path)
}

// DecodeDirName best-effort reverses EncodeDirPath. Known host names
// are restored to dotted form before remaining dashes become path
// separators, so "-Users-foo-src-github-com-org-repo" decodes to
// "/Users/foo/src/github.com/org/repo". Project names containing
// literal dashes decode wrong; the sidecar metadata is authoritative
// when present, and this result is a display aid only.
func DecodeDirName(dirName string) string {
	if dirName == "" {
		return ""
	}

	encoded := strings.TrimLeft(dirName, "-")

	for _, r := range domainInfixes {
		encoded = strings.ReplaceAll(encoded, r[0], r[1])
	}
	for _, r := range domainSuffixes {
		if strings.HasSuffix(encoded, r[0]) {
			encoded = strings.TrimSuffix(encoded, r[0]) + r[1]
			break
		}
	}

	return "/" + strings.ReplaceAll(encoded, "-", "/")
}
