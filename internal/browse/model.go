// Package browse is the interactive terminal browser: a search box, the
// ranked tag list, the list picker and the filtered images, all driven by a
// fetch.Controller.
package browse

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"gallery/internal/fetch"
	"gallery/internal/filter"
	"gallery/internal/lists"
	"gallery/internal/service"
	"gallery/internal/tags"
)

// compactTags is the number of tags shown before "more".
const compactTags = 9

type pane int

const (
	paneSearch pane = iota
	paneTags
	paneLists
	paneImages
	paneCount
)

// snapshotMsg carries a controller transition into the update loop.
type snapshotMsg fetch.Snapshot

// closedMsg reports that the controller's update channel was closed.
type closedMsg struct{}

// mutationMsg reports the outcome of a list mutation started from the UI.
type mutationMsg struct {
	op      string
	listID  string
	deleted bool
	// membership marks toggles made through the picker. Their refetch is
	// started by the Membership itself.
	membership bool
	err        error
}

// picker is the list membership overlay of one image. A nil member means
// the picker is closed.
type picker struct {
	image  service.Image
	member *lists.Membership
	cursor int
	naming bool
}

func (p picker) open() bool { return p.member != nil }

// Model is the bubbletea model of the browser.
type Model struct {
	ctrl    *fetch.Controller
	svc     service.Service
	manager *lists.Manager
	log     *zap.Logger
	now     func() time.Time

	input   textinput.Model
	spinner spinner.Model

	snap    fetch.Snapshot
	sel     tags.Selection
	listIDs []string
	allTags bool
	edit    lists.EditState
	rename  textinput.Model
	pick    picker
	newList textinput.Model

	focus  pane
	cursor [paneCount]int
	status string

	width, height int
}

// New creates the model. ctrl must have been created by the caller, who
// also closes it once the program exits.
func New(ctrl *fetch.Controller, svc service.Service, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	in := textinput.New()
	in.Placeholder = "Search titles and tags"
	in.Prompt = "/ "
	in.Focus()

	rn := textinput.New()
	rn.Prompt = "rename: "

	nl := textinput.New()
	nl.Prompt = "new list: "
	nl.Placeholder = "name"

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctrl:    ctrl,
		svc:     svc,
		manager: lists.NewManager(svc, log),
		log:     log.Named("browse"),
		now:     time.Now,
		input:   in,
		spinner: sp,
		rename:  rn,
		newList: nl,
		snap:    ctrl.Snapshot(),
	}
}

// Init starts the first fetch and the snapshot listener.
func (m Model) Init() tea.Cmd {
	m.ctrl.Trigger()
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForSnapshot(m.ctrl))
}

// waitForSnapshot blocks until the controller publishes a transition.
func waitForSnapshot(ctrl *fetch.Controller) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ctrl.Updates()
		if !ok {
			return closedMsg{}
		}
		return snapshotMsg(snap)
	}
}

// Images returns the images passing the current list and tag selection.
func (m Model) Images() []service.Image {
	return filter.Apply(m.snap.Result.Images, m.snap.Result.Lists, m.listIDs, m.sel.Names())
}

// Tags returns the ranked tags of the filtered images, compacted unless
// the full list was requested. The bool reports whether a toggle is shown.
func (m Model) Tags() ([]tags.Tag, bool) {
	all := tags.Aggregate(m.Images(), m.sel)
	shown, toggle := tags.Compact(all, compactTags)
	if m.allTags {
		return all, toggle
	}
	return shown, toggle
}

// Lists returns the list picker entries, most recently updated first.
func (m Model) Lists() []service.List {
	return lists.SortByUpdated(m.snap.Result.Lists)
}

// Selection returns the tag selection.
func (m Model) Selection() tags.Selection { return m.sel }

// ListIDs returns the selected list IDs.
func (m Model) ListIDs() []string { return m.listIDs }

// Snapshot returns the last controller snapshot seen.
func (m Model) Snapshot() fetch.Snapshot { return m.snap }

// Editing returns the rename state of the list picker.
func (m Model) Editing() lists.EditState { return m.edit }

// Membership returns the membership of the image whose picker is open, or
// nil when no picker is open.
func (m Model) Membership() *lists.Membership { return m.pick.member }

func (m Model) deleteList(listID string) tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		err := mgr.Delete(context.Background(), listID)
		return mutationMsg{op: "delete", listID: listID, deleted: err == nil, err: err}
	}
}

func (m Model) renameList(l service.List, name string) tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		_, err := mgr.Rename(context.Background(), l, name)
		return mutationMsg{op: "rename", listID: l.ID, err: err}
	}
}

// openPicker opens the membership picker for img, seeded from the lists of
// the current snapshot. Successful toggles refetch through the controller.
func (m Model) openPicker(img service.Image) Model {
	member := lists.NewMembership(m.svc, img.ID, m.snap.Result.Lists, m.log)
	member.OnChange = m.ctrl.Trigger
	m.pick = picker{image: img, member: member}
	return m
}

func (m Model) closePicker() Model {
	m.pick = picker{}
	m.newList.Reset()
	m.newList.Blur()
	return m
}

func toggleMembership(member *lists.Membership, listID string, checked bool) tea.Cmd {
	op := "remove image"
	if checked {
		op = "add image"
	}
	return func() tea.Msg {
		err := member.Toggle(context.Background(), listID, checked)
		return mutationMsg{op: op, listID: listID, membership: true, err: err}
	}
}

func createAndAdd(member *lists.Membership, existing []service.List, name string) tea.Cmd {
	return func() tea.Msg {
		l, err := member.CreateAndAdd(context.Background(), existing, name)
		return mutationMsg{op: "add to new list", listID: l.ID, membership: true, err: err}
	}
}
