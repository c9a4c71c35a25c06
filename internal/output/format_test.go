package output

import (
	"bytes"
	"testing"

	"gallery/internal/service"
	"gallery/internal/tags"
	"gallery/internal/testutil"
)

func TestFormatSearchPage(t *testing.T) {
	var buf bytes.Buffer
	FormatHeader(&buf, "All images")
	FormatImage(&buf, 1, service.Image{ID: "a1", Title: "Red dress", Tags: []string{"red", "dress", "red"}})
	FormatImage(&buf, 2, service.Image{ID: "b2", Title: "line\nbreak"})
	FormatImage(&buf, 10, service.Image{ID: "c3", Title: "  "})

	testutil.Golden(t, "search", buf.String())
}

func TestFormatTags(t *testing.T) {
	blue, _ := tags.Classify("blue")
	var buf bytes.Buffer
	FormatTag(&buf, tags.Tag{Name: "dress", Count: 0, Selected: true})
	FormatTag(&buf, tags.Tag{Name: "blue", Count: 12, Color: &blue})
	FormatTag(&buf, tags.Tag{Name: "casual", Count: 3})
	FormatMore(&buf, 4)

	testutil.Golden(t, "tags", buf.String())
}

func TestFormatListName(t *testing.T) {
	var buf bytes.Buffer
	FormatListName(&buf, service.List{Name: "Summer", ImageIDs: []string{"a", "b", "a"}})
	FormatListName(&buf, service.List{Name: " "})

	want := "Summer (2)\n(unnamed) (0)\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}
