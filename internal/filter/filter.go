// Package filter narrows an image set by list membership and tags.
package filter

import (
	"fmt"

	"gallery/internal/service"
)

// Apply keeps the images that belong to at least one selected list and carry
// every selected tag. An empty selection at either stage passes everything
// through. The list stage runs first so tag counts computed afterwards
// reflect the list-filtered set.
func Apply(items []service.Image, lists []service.List, listIDs, tagNames []string) []service.Image {
	return ByTags(ByLists(items, lists, listIDs), tagNames)
}

// ByLists keeps images that are members of any of the selected lists.
// Selected IDs that name no known list contribute no members.
func ByLists(items []service.Image, lists []service.List, listIDs []string) []service.Image {
	if len(listIDs) == 0 {
		return items
	}

	wanted := make(map[string]struct{}, len(listIDs))
	for _, id := range listIDs {
		wanted[id] = struct{}{}
	}
	members := make(map[string]struct{})
	for _, l := range lists {
		if _, ok := wanted[l.ID]; !ok {
			continue
		}
		for _, imageID := range l.ImageIDs {
			members[imageID] = struct{}{}
		}
	}

	out := make([]service.Image, 0, len(items))
	for _, item := range items {
		if _, ok := members[item.ID]; ok {
			out = append(out, item)
		}
	}
	return out
}

// ByTags keeps images whose tag set contains every selected tag.
func ByTags(items []service.Image, tagNames []string) []service.Image {
	if len(tagNames) == 0 {
		return items
	}

	out := make([]service.Image, 0, len(items))
	for _, item := range items {
		have := make(map[string]struct{}, len(item.Tags))
		for _, t := range item.Tags {
			have[t] = struct{}{}
		}
		ok := true
		for _, t := range tagNames {
			if _, found := have[t]; !found {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, item)
		}
	}
	return out
}

// Summary describes the active list selection the way the filter picker
// labels it: "All images", the single list's name, or "N lists".
func Summary(lists []service.List, listIDs []string) string {
	switch len(listIDs) {
	case 0:
		return "All images"
	case 1:
		for _, l := range lists {
			if l.ID == listIDs[0] {
				return l.Name
			}
		}
		return "All images"
	default:
		return fmt.Sprintf("%d lists", len(listIDs))
	}
}
