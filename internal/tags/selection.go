package tags

import (
	"sort"
	"strings"
	"time"
)

// Selection records which tags are selected and when each was selected.
// It is a value type: every transition returns a new Selection and leaves
// the receiver untouched. The zero value is an empty selection.
type Selection struct {
	order map[string]time.Time
	seq   map[string]int
	next  int
}

// NewSelection returns a selection with names selected at now, in order.
func NewSelection(now time.Time, names ...string) Selection {
	var s Selection
	for _, n := range names {
		s = s.add(n, now)
	}
	return s
}

// Toggle deselects name if it is selected, otherwise selects it at now.
func (s Selection) Toggle(name string, now time.Time) Selection {
	if s.Has(name) {
		return s.remove(name)
	}
	return s.add(name, now)
}

// QuickAdd selects every comma-separated fragment of text at now.
// Fragments are trimmed; empty fragments and names already selected are ignored.
func (s Selection) QuickAdd(text string, now time.Time) Selection {
	for _, part := range strings.Split(text, ",") {
		name := strings.TrimSpace(part)
		if name == "" || s.Has(name) {
			continue
		}
		s = s.add(name, now)
	}
	return s
}

// Clear returns an empty selection.
func (s Selection) Clear() Selection {
	return Selection{}
}

// Has reports whether name is selected.
func (s Selection) Has(name string) bool {
	_, ok := s.order[name]
	return ok
}

// Len returns the number of selected names.
func (s Selection) Len() int {
	return len(s.order)
}

// Names returns the selected names, most recently selected first.
func (s Selection) Names() []string {
	names := make([]string, 0, len(s.order))
	for n := range s.order {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		return s.newer(names[i], names[j])
	})
	return names
}

// newer orders a before b when a was selected later. Equal timestamps fall
// back to insertion order so the result is deterministic.
func (s Selection) newer(a, b string) bool {
	ta, tb := s.order[a], s.order[b]
	if !ta.Equal(tb) {
		return ta.After(tb)
	}
	return s.seq[a] > s.seq[b]
}

func (s Selection) add(name string, now time.Time) Selection {
	out := s.clone()
	out.order[name] = now
	out.seq[name] = out.next
	out.next++
	return out
}

func (s Selection) remove(name string) Selection {
	out := s.clone()
	delete(out.order, name)
	delete(out.seq, name)
	return out
}

func (s Selection) clone() Selection {
	out := Selection{
		order: make(map[string]time.Time, len(s.order)+1),
		seq:   make(map[string]int, len(s.seq)+1),
		next:  s.next,
	}
	for k, v := range s.order {
		out.order[k] = v
	}
	for k, v := range s.seq {
		out.seq[k] = v
	}
	return out
}
