// Package tags derives the ranked tag list shown next to a set of images:
// color classification, selection tracking and aggregation.
package tags

import "strings"

// Color is a display style for a tag badge.
type Color struct {
	Background string
	Foreground string
}

const (
	light = "#ffffff"
	dark  = "#111827"
)

type colorEntry struct {
	key   string
	color Color
}

// colorTable is scanned in order for substring matches, so more specific keys
// must come before keys they contain.
var colorTable = []colorEntry{
	{"blue", Color{"#3b82f6", light}},
	{"navy", Color{"#1e3a8a", light}},
	{"denim", Color{"#2563eb", light}},
	{"red", Color{"#ef4444", light}},
	{"maroon", Color{"#7f1d1d", light}},
	{"cold", Color{"#06b6d4", light}},
	{"cyan", Color{"#06b6d4", light}},
	{"black", Color{"#000000", light}},
	{"gold", Color{"#ca8a04", light}},
	{"amber", Color{"#d97706", light}},
	{"yellow", Color{"#facc15", dark}},
	{"orange", Color{"#f97316", dark}},
	{"green", Color{"#22c55e", dark}},
	{"pink", Color{"#f472b6", dark}},
	{"purple", Color{"#a855f7", light}},
	{"brown", Color{"#92400e", light}},
	{"beige", Color{"#f5f5dc", dark}},
	{"white", Color{"#f9fafb", dark}},
	{"grey", Color{"#9ca3af", dark}},
	{"gray", Color{"#9ca3af", dark}},
}

// colorIndex serves exact lookups.
var colorIndex = func() map[string]Color {
	m := make(map[string]Color, len(colorTable))
	for _, e := range colorTable {
		m[e.key] = e.color
	}
	return m
}()

// Classify maps a tag to its display color.
// An exact (case-insensitive) key match wins; otherwise the first table entry
// whose key is a substring of the tag. Returns false when nothing matches.
func Classify(tag string) (Color, bool) {
	lower := strings.ToLower(tag)
	if c, ok := colorIndex[lower]; ok {
		return c, true
	}
	for _, e := range colorTable {
		if strings.Contains(lower, e.key) {
			return e.color, true
		}
	}
	return Color{}, false
}
