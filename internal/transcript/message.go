package transcript

import (
	"strings"
	"time"
)

// Role identifies who (or what) produced a normalized message.
type Role string

const (
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleSystem     Role = "system"
	RoleToolUse    Role = "tool_use"
	RoleToolResult Role = "tool_result"
)

// Message is one normalized conversation turn extracted from a log line.
// A single JSONL record can expand into zero or more messages.
type Message struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	// ToolName is set for RoleToolUse messages only.
	ToolName string `json:"tool_name,omitempty"`
}

// RoleLabel returns the short uppercase label used when rendering a transcript.
func (m Message) RoleLabel() string {
	switch m.Role {
	case RoleUser:
		return "USER"
	case RoleAssistant:
		return "ASSISTANT"
	case RoleSystem:
		return "SYSTEM"
	case RoleToolUse:
		return "TOOL"
	case RoleToolResult:
		return "RESULT"
	default:
		return strings.ToUpper(string(m.Role))
	}
}

// FormatTimestamp renders the timestamp as "2006-01-02 15:04:05" in UTC,
// or "" when the message carries no timestamp.
func (m Message) FormatTimestamp() string {
	if m.Timestamp.IsZero() {
		return ""
	}
	return m.Timestamp.UTC().Format("2006-01-02 15:04:05")
}

// ParseTimestamp parses an RFC 3339 timestamp (e.g. "2026-01-30T03:17:44.781Z").
// Empty or unparsable input yields the zero time.
func ParseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// Truncate shortens s to at most max characters, appending "..." when
// anything was cut. Counts runes, not bytes.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
