package transcript

import "encoding/json"

// bashCommandLimit caps how much of a raw command line makes it into a
// tool summary when the invocation has no description.
const bashCommandLimit = 100

// summarizer formats the body of a tool-use summary from the decoded
// input object. The body may be empty; the bracketed tool name is
// prepended by SummarizeToolUse.
type summarizer func(input map[string]any) string

// summarizers maps tool names to their body formatters. Tools without
// an entry render as "[name]" with no body; add a row here rather than
// special-casing call sites.
var summarizers = map[string]summarizer{
	"Bash": func(in map[string]any) string {
		if desc := stringField(in, "description"); desc != "" {
			return desc
		}
		return Truncate(stringField(in, "command"), bashCommandLimit)
	},
	"Read":  filePathBody,
	"Write": filePathBody,
	"Edit":  filePathBody,
	"Grep": func(in map[string]any) string {
		path := stringField(in, "path")
		if path == "" {
			path = "."
		}
		return stringField(in, "pattern") + " in " + path
	},
	"Glob": func(in map[string]any) string {
		return stringField(in, "pattern")
	},
	"WebFetch": func(in map[string]any) string {
		return stringField(in, "url")
	},
}

func filePathBody(in map[string]any) string {
	return stringField(in, "file_path")
}

func stringField(in map[string]any, key string) string {
	s, _ := in[key].(string)
	return s
}

// SummarizeToolUse renders a one-line human-readable summary of a tool
// invocation, e.g. "[Bash] git status" or "[Read] /tmp/x.go". Unknown
// tools produce just the bracketed name.
func SummarizeToolUse(name string, input json.RawMessage) string {
	fn, ok := summarizers[name]
	if !ok {
		return "[" + name + "]"
	}

	var params map[string]any
	if len(input) > 0 {
		// Decode failures leave params nil; the formatters then see
		// only missing fields and fall back to empty bodies.
		_ = json.Unmarshal(input, &params)
	}
	return "[" + name + "] " + fn(params)
}
