// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"gallery/internal/service"
	"gallery/internal/tags"
)

const (
	// Separator is the separator line around section headers.
	Separator = "------------"
)

// FormatHeader formats a section header, e.g. the active filter summary.
func FormatHeader(w io.Writer, title string) {
	fmt.Fprintln(w, Separator)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, Separator)
}

// FormatImage formats an image line.
// Format: "{N:>4}  {ID}  {TITLE}" followed by "  #tag" for every distinct tag.
func FormatImage(w io.Writer, num int, img service.Image) {
	var b strings.Builder
	fmt.Fprintf(&b, "%4d  %s  %s", num, img.ID, normalizeTitle(img.Title))
	seen := make(map[string]bool, len(img.Tags))
	for _, t := range img.Tags {
		if seen[t] {
			continue
		}
		seen[t] = true
		b.WriteString("  #")
		b.WriteString(t)
	}
	fmt.Fprintln(w, b.String())
}

// FormatTag formats a ranked tag line. Selected tags are marked with "*",
// tags with a known color carry the color name in brackets.
// Format: "{MARK} {COUNT:>4}  {NAME}[ [color]]"
func FormatTag(w io.Writer, tag tags.Tag) {
	mark := " "
	if tag.Selected {
		mark = "*"
	}
	line := fmt.Sprintf("%s %4d  %s", mark, tag.Count, tag.Name)
	if tag.Color != nil {
		line += " [" + tag.Color.Background + "]"
	}
	fmt.Fprintln(w, line)
}

// FormatMore formats the hint printed when compact tag output was truncated.
func FormatMore(w io.Writer, hidden int) {
	fmt.Fprintf(w, "  (%d more, use --all)\n", hidden)
}

// FormatListName formats a list name with its image count.
func FormatListName(w io.Writer, list service.List) {
	fmt.Fprintf(w, "%s (%d)\n", normalizeListName(list.Name), list.ImageCount())
}

// normalizeTitle normalizes an image title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// normalizeListName normalizes a list name for display.
// Empty or whitespace-only names become "(unnamed)".
func normalizeListName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "(unnamed)"
	}
	return name
}
