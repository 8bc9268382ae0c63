package transcript

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLineUserString(t *testing.T) {
	line := `{"type":"user","timestamp":"2026-01-15T10:00:00Z","message":{"content":"Hello world"}}`
	msgs := ParseLine(line)

	require.Len(t, msgs, 1)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "Hello world", msgs[0].Text)
	assert.Equal(t, time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC), msgs[0].Timestamp)
}

func TestParseLineSkipsUnparseable(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"blank", ""},
		{"whitespace only", "   \t"},
		{"malformed json", `{"type":"user", garbage`},
		{"json scalar", `"just a string"`},
		{"json array", `[1,2,3]`},
		{"no type field", `{"message":{"content":"hi"}}`},
		{"progress record", `{"type":"progress","message":{"content":"50%"}}`},
		{"file history snapshot", `{"type":"file-history-snapshot","snapshot":{}}`},
		{"summary record", `{"type":"summary","summary":"short recap"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, ParseLine(tt.line))
		})
	}
}

func TestParseLineExcludesThinkingBlocks(t *testing.T) {
	line := `{"type":"user","message":{"content":[
		{"type":"thinking","text":"internal reasoning"},
		{"type":"text","text":"a"},
		{"type":"text","text":"b"}
	]}}`
	msgs := ParseLine(line)

	require.Len(t, msgs, 1)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "a\nb", msgs[0].Text)
}

func TestParseLineUserEmptyText(t *testing.T) {
	// Empty string content and thinking-only arrays both produce nothing.
	assert.Empty(t, ParseLine(`{"type":"user","message":{"content":""}}`))
	assert.Empty(t, ParseLine(`{"type":"user","message":{"content":[{"type":"thinking","text":"x"}]}}`))
	assert.Empty(t, ParseLine(`{"type":"user","message":{}}`))
}

func TestParseLineUserToolResults(t *testing.T) {
	line := `{"type":"user","message":{"content":[
		{"type":"tool_result","content":"plain output"},
		{"type":"tool_result","content":[{"type":"text","text":"line1"},{"type":"text","text":"line2"}]},
		{"type":"tool_result","content":{"stdout":"x"}},
		{"type":"text","text":"ignored because tool blocks are present"}
	]}}`
	msgs := ParseLine(line)

	require.Len(t, msgs, 3)
	for _, m := range msgs {
		assert.Equal(t, RoleToolResult, m.Role)
	}
	assert.Equal(t, "plain output", msgs[0].Text)
	assert.Equal(t, "line1\nline2", msgs[1].Text)
	assert.Equal(t, `{"stdout":"x"}`, msgs[2].Text)
}

func TestParseLineUserToolUseIgnored(t *testing.T) {
	// tool_use inside a user record is unexpected: it suppresses the
	// text path but emits nothing itself.
	line := `{"type":"user","message":{"content":[
		{"type":"tool_use","name":"Bash","input":{"command":"ls"}},
		{"type":"text","text":"hello"}
	]}}`
	assert.Empty(t, ParseLine(line))
}

func TestParseLineToolResultMissingContent(t *testing.T) {
	line := `{"type":"user","message":{"content":[{"type":"tool_result"}]}}`
	msgs := ParseLine(line)

	require.Len(t, msgs, 1)
	assert.Equal(t, RoleToolResult, msgs[0].Role)
	assert.Equal(t, "", msgs[0].Text)
}

func TestParseLineAssistant(t *testing.T) {
	line := `{"type":"assistant","timestamp":"2026-01-15T10:01:00Z","message":{"content":[
		{"type":"text","text":"Let me check."},
		{"type":"tool_use","name":"Read","input":{"file_path":"/tmp/main.go"}},
		{"type":"tool_use","name":"Bash","input":{"command":"go vet ./..."}}
	]}}`
	msgs := ParseLine(line)

	require.Len(t, msgs, 3)
	assert.Equal(t, RoleAssistant, msgs[0].Role)
	assert.Equal(t, "Let me check.", msgs[0].Text)

	assert.Equal(t, RoleToolUse, msgs[1].Role)
	assert.Equal(t, "Read", msgs[1].ToolName)
	assert.Equal(t, "[Read] /tmp/main.go", msgs[1].Text)

	assert.Equal(t, RoleToolUse, msgs[2].Role)
	assert.Equal(t, "Bash", msgs[2].ToolName)
	assert.Equal(t, "[Bash] go vet ./...", msgs[2].Text)
}

func TestParseLineAssistantStringContent(t *testing.T) {
	line := `{"type":"assistant","message":{"content":"Hi there"}}`
	msgs := ParseLine(line)

	require.Len(t, msgs, 1)
	assert.Equal(t, RoleAssistant, msgs[0].Role)
	assert.Equal(t, "Hi there", msgs[0].Text)
}

func TestParseLineAssistantToolUseOnly(t *testing.T) {
	line := `{"type":"assistant","message":{"content":[
		{"type":"tool_use","name":"Glob","input":{"pattern":"**/*.go"}}
	]}}`
	msgs := ParseLine(line)

	require.Len(t, msgs, 1)
	assert.Equal(t, RoleToolUse, msgs[0].Role)
	assert.Equal(t, "[Glob] **/*.go", msgs[0].Text)
}

func TestParseLineSystem(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{
			name: "string content",
			line: `{"type":"system","message":{"content":"System started"}}`,
			want: "System started",
		},
		{
			name: "block content",
			line: `{"type":"system","message":{"content":[{"type":"text","text":"hook ran"}]}}`,
			want: "hook ran",
		},
		{
			name: "empty with subtype",
			line: `{"type":"system","subtype":"init","message":{}}`,
			want: "[system: init]",
		},
		{
			name: "empty without subtype",
			line: `{"type":"system","message":{"content":""}}`,
			want: "[system]",
		},
		{
			name: "no message at all",
			line: `{"type":"system"}`,
			want: "[system]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := ParseLine(tt.line)
			require.Len(t, msgs, 1)
			assert.Equal(t, RoleSystem, msgs[0].Role)
			assert.Equal(t, tt.want, msgs[0].Text)
		})
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain string", `"hello"`, "hello"},
		{"empty string", `""`, ""},
		{"text blocks", `[{"type":"text","text":"a"},{"type":"text","text":"b"}]`, "a\nb"},
		{"thinking excluded", `[{"type":"thinking","text":"t"},{"type":"text","text":"a"}]`, "a"},
		{"tool blocks excluded", `[{"type":"tool_use","name":"Bash"},{"type":"text","text":"x"}]`, "x"},
		{"empty array", `[]`, ""},
		{"number", `42`, ""},
		{"object", `{"k":"v"}`, ""},
		{"null", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractText([]byte(tt.content)))
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	assert.Equal(t, time.Date(2026, 1, 30, 3, 17, 44, 781000000, time.UTC),
		ParseTimestamp("2026-01-30T03:17:44.781Z"))
	assert.True(t, ParseTimestamp("").IsZero())
	assert.True(t, ParseTimestamp("not a time").IsZero())
	assert.True(t, ParseTimestamp("2026-01-30").IsZero())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exact", Truncate("exact", 5))
	assert.Equal(t, "abcde...", Truncate("abcdefgh", 5))
	// Runes, not bytes.
	assert.Equal(t, "日本語...", Truncate("日本語のテキスト", 3))
}

func TestRoleLabel(t *testing.T) {
	assert.Equal(t, "USER", Message{Role: RoleUser}.RoleLabel())
	assert.Equal(t, "ASSISTANT", Message{Role: RoleAssistant}.RoleLabel())
	assert.Equal(t, "SYSTEM", Message{Role: RoleSystem}.RoleLabel())
	assert.Equal(t, "TOOL", Message{Role: RoleToolUse}.RoleLabel())
	assert.Equal(t, "RESULT", Message{Role: RoleToolResult}.RoleLabel())
}

func TestFormatTimestamp(t *testing.T) {
	m := Message{Timestamp: time.Date(2026, 1, 15, 10, 2, 3, 0, time.UTC)}
	assert.Equal(t, "2026-01-15 10:02:03", m.FormatTimestamp())
	assert.Equal(t, "", Message{}.FormatTimestamp())
}
