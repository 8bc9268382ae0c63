package transcript

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// logLine is the envelope shared by every record type. Unrecognized
// fields are ignored; the content payload stays raw because its shape
// (string vs. block array) varies per record.
type logLine struct {
	Type      string `json:"type"`
	Subtype   string `json:"subtype"`
	Timestamp string `json:"timestamp"`
	GitBranch string `json:"gitBranch"`
	Message   struct {
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

// contentBlock is one element of a structured content array. Type
// discriminates: "text" and "thinking" carry Text, "tool_use" carries
// Name/Input, "tool_result" carries Content.
type contentBlock struct {
	Type    string          `json:"type"`
	Text    string          `json:"text"`
	Name    string          `json:"name"`
	Input   json.RawMessage `json:"input"`
	Content json.RawMessage `json:"content"`
}

// ParseLine converts one raw JSONL line into zero or more messages.
// It never fails: blank lines, malformed JSON, and unknown record
// types (progress, file-history-snapshot, ...) all yield nil.
func ParseLine(raw string) []Message {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var line logLine
	if err := json.Unmarshal([]byte(raw), &line); err != nil {
		return nil
	}

	ts := ParseTimestamp(line.Timestamp)

	switch line.Type {
	case "user":
		return parseUser(line.Message.Content, ts)
	case "assistant":
		return parseAssistant(line.Message.Content, ts)
	case "system":
		return []Message{parseSystem(line.Message.Content, line.Subtype, ts)}
	default:
		return nil
	}
}

// parseUser handles user records. Array content holding tool blocks
// expands into one ToolResult message per tool_result block (tool_use
// blocks inside a user record are ignored); otherwise the joined text
// becomes a single User message when non-empty.
func parseUser(content json.RawMessage, ts time.Time) []Message {
	blocks, isArray := decodeBlocks(content)
	if isArray {
		tools := toolBlocks(blocks)
		if len(tools) > 0 {
			var msgs []Message
			for _, b := range tools {
				if b.Type != "tool_result" {
					continue
				}
				msgs = append(msgs, Message{
					Role:      RoleToolResult,
					Text:      toolResultText(b.Content),
					Timestamp: ts,
				})
			}
			return msgs
		}
		if text := joinTextBlocks(blocks); text != "" {
			return []Message{{Role: RoleUser, Text: text, Timestamp: ts}}
		}
		return nil
	}

	if text := ExtractText(content); text != "" {
		return []Message{{Role: RoleUser, Text: text, Timestamp: ts}}
	}
	return nil
}

// parseAssistant emits the joined text as one Assistant message, then
// one ToolUse message per tool_use block in array order.
func parseAssistant(content json.RawMessage, ts time.Time) []Message {
	var msgs []Message

	if text := ExtractText(content); text != "" {
		msgs = append(msgs, Message{Role: RoleAssistant, Text: text, Timestamp: ts})
	}

	blocks, _ := decodeBlocks(content)
	for _, b := range blocks {
		if b.Type != "tool_use" {
			continue
		}
		msgs = append(msgs, Message{
			Role:      RoleToolUse,
			Text:      SummarizeToolUse(b.Name, b.Input),
			Timestamp: ts,
			ToolName:  b.Name,
		})
	}
	return msgs
}

// parseSystem always produces exactly one message. When the record
// carries no usable text it falls back to "[system]" or
// "[system: <subtype>]".
func parseSystem(content json.RawMessage, subtype string, ts time.Time) Message {
	text := ExtractText(content)
	if text == "" {
		if subtype != "" {
			text = "[system: " + subtype + "]"
		} else {
			text = "[system]"
		}
	}
	return Message{Role: RoleSystem, Text: text, Timestamp: ts}
}

// ExtractText flattens a content value that is either a plain string
// or an array of typed blocks. Only "text" blocks contribute, joined
// with newlines; thinking blocks are dropped. Any other shape yields "".
func ExtractText(content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(content, &s); err == nil {
		return s
	}

	var blocks []contentBlock
	if err := json.Unmarshal(content, &blocks); err != nil {
		return ""
	}
	return joinTextBlocks(blocks)
}

func joinTextBlocks(blocks []contentBlock) string {
	var parts []string
	for _, b := range blocks {
		if b.Type != "text" {
			continue
		}
		parts = append(parts, b.Text)
	}
	return strings.Join(parts, "\n")
}

// decodeBlocks reports whether content is a block array. A bare JSON
// null also decodes to an empty array, which downstream treats the
// same as "no text, no tools".
func decodeBlocks(content json.RawMessage) ([]contentBlock, bool) {
	if len(content) == 0 {
		return nil, false
	}
	var blocks []contentBlock
	if err := json.Unmarshal(content, &blocks); err != nil {
		return nil, false
	}
	return blocks, true
}

func toolBlocks(blocks []contentBlock) []contentBlock {
	var tools []contentBlock
	for _, b := range blocks {
		if b.Type == "tool_use" || b.Type == "tool_result" {
			tools = append(tools, b)
		}
	}
	return tools
}

// toolResultText renders a tool_result payload: block arrays go through
// the text-join rule, strings pass through verbatim, and anything else
// (numbers, objects, null) is kept as its compact JSON form.
func toolResultText(content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}
	switch firstJSONByte(content) {
	case '[':
		return ExtractText(content)
	case '"':
		var s string
		if err := json.Unmarshal(content, &s); err != nil {
			return ""
		}
		return s
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, content); err != nil {
			return ""
		}
		return buf.String()
	}
}

func firstJSONByte(raw json.RawMessage) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}
