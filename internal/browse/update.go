package browse

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"gallery/internal/fetch"
	"gallery/internal/lists"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case snapshotMsg:
		m.snap = fetch.Snapshot(msg)
		if m.snap.State == fetch.StateStable {
			m.status = ""
		}
		if m.pick.open() {
			m.pick.member.Sync(m.snap.Result.Lists)
			m.pick.cursor = clamp(m.pick.cursor, len(m.snap.Result.Lists))
		}
		return m, waitForSnapshot(m.ctrl)

	case closedMsg:
		return m, nil

	case mutationMsg:
		return m.handleMutation(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.focus == paneSearch {
		return m.updateInput(msg)
	}
	return m, nil
}

func (m Model) handleMutation(msg mutationMsg) (tea.Model, tea.Cmd) {
	if msg.membership {
		if msg.err != nil {
			m.status = msg.op + " failed: " + msg.err.Error()
			if msg.listID != "" {
				// the list was created before the add failed
				m.ctrl.Trigger()
			}
			return m, nil
		}
		m.status = ""
		return m, nil
	}

	if msg.op == "rename" {
		m.edit = m.edit.End()
		m.rename.Blur()
	}
	if msg.err != nil {
		// the lists pane renders the manager's error
		m.log.Warn("list mutation failed", zap.String("op", msg.op), zap.String("list", msg.listID), zap.Error(msg.err))
		m.status = ""
		return m, nil
	}
	if msg.deleted {
		m.listIDs = lists.Deselect(m.listIDs, msg.listID)
	}
	m.status = ""
	m.ctrl.Trigger()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.edit.EditingID != "" {
		return m.handleRenameKey(msg)
	}
	if m.pick.open() {
		return m.handlePickerKey(msg)
	}

	switch msg.String() {
	case "tab":
		return m.setFocus((m.focus + 1) % paneCount), nil
	case "shift+tab":
		return m.setFocus((m.focus + paneCount - 1) % paneCount), nil
	case "ctrl+r":
		m.retry()
		return m, nil
	case "ctrl+t":
		m.quickAdd()
		return m, nil
	case "esc":
		m.clearSelection()
		return m, nil
	}

	if m.focus == paneSearch {
		if msg.Type == tea.KeyEnter {
			m.ctrl.Search(strings.TrimSpace(m.input.Value()))
			return m, nil
		}
		return m.updateInput(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "r":
		m.retry()
		return m, nil
	case "up", "k":
		m.moveCursor(-1)
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		return m, nil
	}

	switch m.focus {
	case paneTags:
		return m.handleTagsKey(msg)
	case paneLists:
		return m.handleListsKey(msg)
	case paneImages:
		return m.handleImagesKey(msg)
	}
	return m, nil
}

func (m Model) handleImagesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.Images()
	i := m.cursor[paneImages]
	if msg.String() == "a" && i < len(items) {
		return m.openPicker(items[i]), nil
	}
	return m, nil
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pick.naming {
		switch msg.Type {
		case tea.KeyEsc:
			m.pick.naming = false
			m.newList.Reset()
			m.newList.Blur()
			return m, nil
		case tea.KeyEnter:
			name := strings.TrimSpace(m.newList.Value())
			m.pick.naming = false
			m.newList.Reset()
			m.newList.Blur()
			if name == "" {
				m.status = lists.ErrEmptyName.Error()
				return m, nil
			}
			return m, createAndAdd(m.pick.member, m.snap.Result.Lists, name)
		}
		var cmd tea.Cmd
		m.newList, cmd = m.newList.Update(msg)
		return m, cmd
	}

	entries := m.Lists()
	switch msg.String() {
	case "esc", "a", "q":
		return m.closePicker(), nil
	case "up", "k":
		m.pick.cursor = clamp(m.pick.cursor-1, len(entries))
	case "down", "j":
		m.pick.cursor = clamp(m.pick.cursor+1, len(entries))
	case "n":
		m.pick.naming = true
		m.newList.Focus()
	case "enter", " ":
		if m.pick.cursor < len(entries) {
			id := entries[m.pick.cursor].ID
			return m, toggleMembership(m.pick.member, id, !m.pick.member.Selected(id))
		}
	}
	return m, nil
}

func (m Model) handleTagsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", " ":
		shown, _ := m.Tags()
		if i := m.cursor[paneTags]; i < len(shown) {
			m.sel = m.sel.Toggle(shown[i].Name, m.now())
			m.ctrl.Trigger()
		}
	case "m":
		m.allTags = !m.allTags
		m.clampCursor(paneTags)
	}
	return m, nil
}

func (m Model) handleListsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.Lists()
	i := m.cursor[paneLists]
	if i >= len(entries) {
		return m, nil
	}
	l := entries[i]

	switch msg.String() {
	case "enter", " ":
		if slices.Contains(m.listIDs, l.ID) {
			m.listIDs = lists.Deselect(m.listIDs, l.ID)
		} else {
			m.listIDs = append(slices.Clone(m.listIDs), l.ID)
		}
		m.ctrl.Trigger()
	case "d":
		m.status = "deleting " + l.Name
		return m, m.deleteList(l.ID)
	case "e":
		m.edit = m.edit.Begin(l.ID)
		m.rename.SetValue(l.Name)
		m.rename.CursorEnd()
		m.rename.Focus()
	}
	return m, nil
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.edit = m.edit.End()
		m.rename.Blur()
		return m, nil
	case tea.KeyEnter:
		for _, l := range m.snap.Result.Lists {
			if m.edit.Editing(l.ID) {
				if _, changed, err := lists.ValidateRename(l.Name, m.rename.Value()); err != nil || !changed {
					m.edit = m.edit.End()
					m.rename.Blur()
					if err != nil {
						m.status = err.Error()
					}
					return m, nil
				}
				m.status = "renaming " + l.Name
				return m, m.renameList(l, m.rename.Value())
			}
		}
		m.edit = m.edit.End()
		m.rename.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.rename, cmd = m.rename.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.ctrl.SetQuery(strings.TrimSpace(v))
	}
	return m, cmd
}

func (m Model) setFocus(p pane) Model {
	m.focus = p
	if p == paneSearch {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	m.clampCursor(p)
	return m
}

func (m *Model) retry() {
	if m.snap.State == fetch.StateError {
		m.ctrl.Retry()
	}
}

// quickAdd selects every comma-separated fragment of the search box as a
// tag and clears the box.
func (m *Model) quickAdd() {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return
	}
	m.sel = m.sel.QuickAdd(text, m.now())
	m.input.SetValue("")
	m.ctrl.Search("")
}

func (m *Model) clearSelection() {
	if m.sel.Len() == 0 && len(m.listIDs) == 0 {
		return
	}
	m.sel = m.sel.Clear()
	m.listIDs = nil
	m.ctrl.Trigger()
}

func (m *Model) moveCursor(delta int) {
	m.cursor[m.focus] += delta
	m.clampCursor(m.focus)
}

func (m *Model) clampCursor(p pane) {
	m.cursor[p] = clamp(m.cursor[p], m.paneLen(p))
}

// clamp keeps a cursor inside [0, n).
func clamp(c, n int) int {
	if c >= n {
		c = n - 1
	}
	if c < 0 {
		c = 0
	}
	return c
}

func (m Model) paneLen(p pane) int {
	switch p {
	case paneTags:
		shown, _ := m.Tags()
		return len(shown)
	case paneLists:
		return len(m.snap.Result.Lists)
	case paneImages:
		return len(m.Images())
	}
	return 0
}
