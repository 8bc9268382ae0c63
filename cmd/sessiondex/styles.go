package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme represents the current color scheme
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// currentTheme holds the active theme (set at init)
var currentTheme Theme = ThemeDark

// Dark Theme - Tokyo Night
var darkColors = struct {
	Bg, Text, TextDim                   lipgloss.Color
	Accent, Purple, Cyan, Green, Yellow lipgloss.Color
	Red, Comment                        lipgloss.Color
}{
	Bg:      lipgloss.Color("#1a1b26"),
	Text:    lipgloss.Color("#c0caf5"),
	TextDim: lipgloss.Color("#787fa0"),
	Accent:  lipgloss.Color("#7aa2f7"),
	Purple:  lipgloss.Color("#bb9af7"),
	Cyan:    lipgloss.Color("#7dcfff"),
	Green:   lipgloss.Color("#9ece6a"),
	Yellow:  lipgloss.Color("#e0af68"),
	Red:     lipgloss.Color("#f7768e"),
	Comment: lipgloss.Color("#787fa0"),
}

// Light Theme - Tokyo Night Light variant
var lightColors = struct {
	Bg, Text, TextDim                   lipgloss.Color
	Accent, Purple, Cyan, Green, Yellow lipgloss.Color
	Red, Comment                        lipgloss.Color
}{
	Bg:      lipgloss.Color("#d5d6db"),
	Text:    lipgloss.Color("#343b58"),
	TextDim: lipgloss.Color("#6a6d7c"),
	Accent:  lipgloss.Color("#34548a"),
	Purple:  lipgloss.Color("#7847bd"),
	Cyan:    lipgloss.Color("#166775"),
	Green:   lipgloss.Color("#485e30"),
	Yellow:  lipgloss.Color("#8f5e15"),
	Red:     lipgloss.Color("#8c4351"),
	Comment: lipgloss.Color("#6a6d7c"),
}

// Active color variables (set by InitTheme)
var (
	ColorBg      lipgloss.Color
	ColorText    lipgloss.Color
	ColorTextDim lipgloss.Color
	ColorAccent  lipgloss.Color
	ColorPurple  lipgloss.Color
	ColorCyan    lipgloss.Color
	ColorGreen   lipgloss.Color
	ColorYellow  lipgloss.Color
	ColorRed     lipgloss.Color
	ColorComment lipgloss.Color
)

// InitTheme sets the active color palette based on theme name.
// The theme is resolved once at startup; there are no live switches.
func InitTheme(theme string) {
	if theme == "light" {
		currentTheme = ThemeLight
		ColorBg = lightColors.Bg
		ColorText = lightColors.Text
		ColorTextDim = lightColors.TextDim
		ColorAccent = lightColors.Accent
		ColorPurple = lightColors.Purple
		ColorCyan = lightColors.Cyan
		ColorGreen = lightColors.Green
		ColorYellow = lightColors.Yellow
		ColorRed = lightColors.Red
		ColorComment = lightColors.Comment
	} else {
		currentTheme = ThemeDark
		ColorBg = darkColors.Bg
		ColorText = darkColors.Text
		ColorTextDim = darkColors.TextDim
		ColorAccent = darkColors.Accent
		ColorPurple = darkColors.Purple
		ColorCyan = darkColors.Cyan
		ColorGreen = darkColors.Green
		ColorYellow = darkColors.Yellow
		ColorRed = darkColors.Red
		ColorComment = darkColors.Comment
	}
	// Reinitialize styles with new colors
	initStyles()
}

// GetCurrentTheme returns the active theme
func GetCurrentTheme() Theme {
	return currentTheme
}

func init() {
	// Default to dark theme at package init
	InitTheme("dark")
}

// Output Styles
var (
	DimStyle       lipgloss.Style
	PathStyle      lipgloss.Style
	BranchStyle    lipgloss.Style
	TimestampStyle lipgloss.Style
)

// Transcript Role Styles
var (
	RoleUserStyle      lipgloss.Style
	RoleAssistantStyle lipgloss.Style
	RoleToolStyle      lipgloss.Style
	RoleSystemStyle    lipgloss.Style
)

// Search Styles
var SearchMatchStyle lipgloss.Style

func initStyles() {
	DimStyle = lipgloss.NewStyle().
		Foreground(ColorComment)

	PathStyle = lipgloss.NewStyle().
		Foreground(ColorCyan)

	BranchStyle = lipgloss.NewStyle().
		Foreground(ColorPurple)

	TimestampStyle = lipgloss.NewStyle().
		Foreground(ColorTextDim)

	RoleUserStyle = lipgloss.NewStyle().
		Foreground(ColorGreen).
		Bold(true)

	RoleAssistantStyle = lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true)

	RoleToolStyle = lipgloss.NewStyle().
		Foreground(ColorYellow)

	RoleSystemStyle = lipgloss.NewStyle().
		Foreground(ColorComment)

	SearchMatchStyle = lipgloss.NewStyle().
		Background(ColorYellow).
		Foreground(ColorBg).
		Bold(true)
}

// HighlightRunes renders text with the runes at the given indices wrapped
// in SearchMatchStyle. Indices are rune offsets into text; out-of-range
// entries are ignored. Contiguous highlighted runs are styled as a single
// segment so the escape-sequence overhead stays proportional to the number
// of matches, not the number of characters.
func HighlightRunes(text string, indices []int) string {
	if len(indices) == 0 {
		return text
	}

	runes := []rune(text)
	marked := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(runes) {
			marked[idx] = true
		}
	}
	if len(marked) == 0 {
		return text
	}

	var b strings.Builder
	var segment []rune
	inMatch := false

	flush := func() {
		if len(segment) == 0 {
			return
		}
		if inMatch {
			b.WriteString(SearchMatchStyle.Render(string(segment)))
		} else {
			b.WriteString(string(segment))
		}
		segment = segment[:0]
	}

	for i, r := range runes {
		if marked[i] != inMatch {
			flush()
			inMatch = marked[i]
		}
		segment = append(segment, r)
	}
	flush()
	return b.String()
}
