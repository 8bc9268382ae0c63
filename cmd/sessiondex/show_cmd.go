package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ewhitmore/sessiondex/internal/project"
	"github.com/ewhitmore/sessiondex/internal/transcript"
)

// handleShow prints a full session transcript.
func handleShow(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	root := fs.String("root", "", "Transcripts root directory")
	jsonOutput := fs.Bool("json", false, "Output as JSON")

	fs.Usage = func() {
		fmt.Println("Usage: sessiondex show <project> <session-id> [options]")
		fmt.Println()
		fmt.Println("Print the transcript of one session, message by message.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  sessiondex show ~/website 3f2a9c01-77aa-4b5e-9d01-aaceff401f22")
		fmt.Println("  sessiondex show -home-bob-website 3f2a9c01-77aa-4b5e-9d01-aaceff401f22 --json")
	}

	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Error: project and session ID are required")
		fs.Usage()
		os.Exit(1)
	}
	projectName := resolveProjectName(fs.Arg(0))
	sessionID := fs.Arg(1)

	rootDir, err := resolveProjectsRoot(*root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve transcripts root: %v\n", err)
		os.Exit(1)
	}

	msgs, err := project.LoadSession(rootDir, projectName, sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read session log: %v\n", err)
		os.Exit(1)
	}
	if msgs == nil {
		out := NewCLIOutput(*jsonOutput, false)
		out.Error(fmt.Sprintf("session '%s' not found in project '%s'", sessionID, projectName), ErrCodeNotFound)
		os.Exit(1)
	}

	if *jsonOutput {
		output, err := json.MarshalIndent(msgs, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to format JSON output: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(output))
		return
	}

	for i, msg := range msgs {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(formatMessageHeader(msg))
		if msg.Text != "" {
			// Indent continuation lines so messages read as blocks
			fmt.Printf("  %s\n", strings.ReplaceAll(msg.Text, "\n", "\n  "))
		}
	}
}

// formatMessageHeader renders the role banner for one transcript message,
// with the tool name for tool calls and the timestamp when known.
func formatMessageHeader(msg transcript.Message) string {
	label := msg.RoleLabel()
	if msg.ToolName != "" {
		label = fmt.Sprintf("%s(%s)", label, msg.ToolName)
	}

	header := roleStyle(msg.Role).Render(label)
	if ts := msg.FormatTimestamp(); ts != "" {
		header += " " + TimestampStyle.Render(ts)
	}
	return header
}

func roleStyle(role transcript.Role) lipgloss.Style {
	switch role {
	case transcript.RoleUser:
		return RoleUserStyle
	case transcript.RoleAssistant:
		return RoleAssistantStyle
	case transcript.RoleToolUse, transcript.RoleToolResult:
		return RoleToolStyle
	default:
		return RoleSystemStyle
	}
}
