package browse

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gallery/internal/fetch"
	"gallery/internal/filter"
	"gallery/internal/tags"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	paneStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	focusStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#60a5fa"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	selectedMark = "●"
)

// maxImages caps the rows rendered in the image pane.
const maxImages = 20

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(filter.Summary(m.snap.Result.Lists, m.listIDs)))
	b.WriteString("  ")
	b.WriteString(m.stateLine())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	b.WriteString(m.tagsView())
	b.WriteString("\n")
	b.WriteString(m.listsView())
	b.WriteString("\n")
	b.WriteString(m.imagesView())
	if m.pick.open() {
		b.WriteString("\n")
		b.WriteString(m.pickerView())
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
	}
	b.WriteString("\n")
	if m.pick.open() {
		b.WriteString(helpStyle.Render("enter toggle · n new list · esc close"))
	} else {
		b.WriteString(helpStyle.Render("tab focus · enter toggle · m more · e rename · d delete · a add to list · ctrl+t add tags · esc clear · q quit"))
	}
	return b.String()
}

func (m Model) stateLine() string {
	switch {
	case m.snap.State == fetch.StateError:
		return errorStyle.Render(m.snap.Message) + helpStyle.Render("  (r to retry)")
	case m.snap.Loading:
		return m.spinner.View() + " loading"
	}
	return ""
}

func (m Model) title(p pane, text string) string {
	if m.focus == p {
		return focusStyle.Render(text)
	}
	return paneStyle.Render(text)
}

func (m Model) marker(p pane, i int) string {
	if m.focus == p && m.cursor[p] == i {
		return ">"
	}
	return " "
}

func (m Model) tagsView() string {
	shown, toggle := m.Tags()
	var b strings.Builder
	b.WriteString(m.title(paneTags, "Tags"))
	b.WriteString("\n")
	if len(shown) == 0 {
		b.WriteString(dimStyle.Render("  no tags"))
		b.WriteString("\n")
	}
	for i, t := range shown {
		fmt.Fprintf(&b, "%s %s %d\n", m.marker(paneTags, i), badge(t), t.Count)
	}
	if toggle {
		label := "more"
		if m.allTags {
			label = "less"
		}
		b.WriteString(helpStyle.Render("  m: " + label))
		b.WriteString("\n")
	}
	return b.String()
}

func badge(t tags.Tag) string {
	style := lipgloss.NewStyle().Padding(0, 1)
	if t.Color != nil {
		style = style.
			Background(lipgloss.Color(t.Color.Background)).
			Foreground(lipgloss.Color(t.Color.Foreground))
	}
	name := t.Name
	if t.Selected {
		style = style.Bold(true)
		name = selectedMark + " " + name
	}
	return style.Render(name)
}

func (m Model) listsView() string {
	entries := m.Lists()
	var b strings.Builder
	b.WriteString(m.title(paneLists, "Lists"))
	if m.manager.Loading() {
		b.WriteString(" " + m.spinner.View())
	}
	b.WriteString("\n")
	if err := m.manager.Err(); err != nil {
		b.WriteString(errorStyle.Render("  " + err.Error()))
		b.WriteString("\n")
	}
	if len(entries) == 0 {
		b.WriteString(dimStyle.Render("  no lists"))
		b.WriteString("\n")
	}
	for i, l := range entries {
		mark := " "
		if slices.Contains(m.listIDs, l.ID) {
			mark = selectedMark
		}
		line := fmt.Sprintf("%s %s %s (%d)", m.marker(paneLists, i), mark, l.Name, l.ImageCount())
		switch {
		case m.edit.Editing(l.ID):
			line = m.marker(paneLists, i) + " " + m.rename.View()
		case m.edit.OtherEditing(l.ID):
			line = dimStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) imagesView() string {
	items := m.Images()
	var b strings.Builder
	b.WriteString(m.title(paneImages, fmt.Sprintf("Images (%d)", len(items))))
	b.WriteString("\n")

	var body strings.Builder
	if len(items) == 0 && m.snap.State == fetch.StateStable {
		body.WriteString("  no images\n")
	}
	for i, img := range items {
		if i == maxImages {
			fmt.Fprintf(&body, "  … %d more\n", len(items)-maxImages)
			break
		}
		title := img.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(&body, "%s %s  %s\n", m.marker(paneImages, i), title, strings.Join(img.Tags, " "))
	}
	if m.snap.Dimmed {
		b.WriteString(dimStyle.Render(body.String()))
	} else {
		b.WriteString(body.String())
	}
	return b.String()
}

// pendingMark flags a list whose membership change is still in flight.
const pendingMark = "…"

func (m Model) pickerView() string {
	member := m.pick.member
	title := m.pick.image.Title
	if title == "" {
		title = "(untitled)"
	}

	var b strings.Builder
	b.WriteString(focusStyle.Render(fmt.Sprintf("Add %q to lists (in %d)", title, len(member.SelectedIDs()))))
	b.WriteString("\n")
	entries := m.Lists()
	if len(entries) == 0 {
		b.WriteString(dimStyle.Render("  no lists yet, n to create one"))
		b.WriteString("\n")
	}
	for i, l := range entries {
		cursor := " "
		if m.pick.cursor == i {
			cursor = ">"
		}
		box := "[ ]"
		if member.Selected(l.ID) {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s %s", cursor, box, l.Name)
		if member.Pending(l.ID) {
			line += " " + pendingMark
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.pick.naming {
		b.WriteString("  " + m.newList.View())
		b.WriteString("\n")
	}
	return b.String()
}
