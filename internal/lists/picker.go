package lists

import (
	"slices"
	"strings"

	"gallery/internal/service"
)

// SortByUpdated returns a copy of lists, most recently updated first.
func SortByUpdated(lists []service.List) []service.List {
	out := slices.Clone(lists)
	slices.SortStableFunc(out, func(a, b service.List) int {
		return b.Updated.Compare(a.Updated)
	})
	return out
}

// Search keeps the lists whose name contains q, ignoring case.
func Search(lists []service.List, q string) []service.List {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return lists
	}
	var out []service.List
	for _, l := range lists {
		if strings.Contains(strings.ToLower(l.Name), q) {
			out = append(out, l)
		}
	}
	return out
}

// Deselect drops a deleted list from a list selection.
func Deselect(selected []string, deletedID string) []string {
	return slices.DeleteFunc(slices.Clone(selected), func(id string) bool { return id == deletedID })
}

// EditState records which list, if any, is being renamed. Only one list is
// edited at a time.
type EditState struct {
	EditingID string
}

// Begin starts editing id, ending any other edit.
func (e EditState) Begin(id string) EditState { return EditState{EditingID: id} }

// End stops editing.
func (e EditState) End() EditState { return EditState{} }

// Editing reports whether id is being edited.
func (e EditState) Editing(id string) bool { return id != "" && e.EditingID == id }

// OtherEditing reports whether a list other than id is being edited.
func (e EditState) OtherEditing(id string) bool { return e.EditingID != "" && e.EditingID != id }
