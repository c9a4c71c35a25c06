package tags

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"gallery/internal/service"
)

// Tag is a derived, display-only tag entry.
type Tag struct {
	Name     string
	Count    int
	Color    *Color
	Selected bool
}

// Aggregate derives the ranked tag list for items under the given selection.
//
// Every selected name is present even when no item carries it (count 0), so
// it can always be deselected. Ordering: selected tags first, most recently
// selected first; then by count descending, colored before uncolored, and
// name ascending in locale order.
func Aggregate(items []service.Image, sel Selection) []Tag {
	counts := make(map[string]int, sel.Len())
	for name := range sel.order {
		counts[name] = 0
	}

	for _, item := range items {
		seen := make(map[string]struct{}, len(item.Tags))
		for _, name := range item.Tags {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			counts[name]++
		}
	}

	out := make([]Tag, 0, len(counts))
	for name, n := range counts {
		t := Tag{Name: name, Count: n, Selected: sel.Has(name)}
		if c, ok := Classify(name); ok {
			t.Color = &c
		}
		out = append(out, t)
	}

	col := collate.New(language.Und)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Selected != b.Selected {
			return a.Selected
		}
		if a.Selected {
			return sel.newer(a.Name, b.Name)
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if (a.Color != nil) != (b.Color != nil) {
			return a.Color != nil
		}
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c < 0
		}
		return a.Name < b.Name
	})
	return out
}

// Compact returns the tags shown in collapsed mode: the first limit tags plus
// any selected tag beyond that point. The second result reports whether a
// More/Less toggle is needed.
func Compact(all []Tag, limit int) ([]Tag, bool) {
	if len(all) <= limit+1 {
		return all, false
	}
	out := make([]Tag, 0, limit)
	for i, t := range all {
		if i < limit || t.Selected {
			out = append(out, t)
		}
	}
	return out, true
}
