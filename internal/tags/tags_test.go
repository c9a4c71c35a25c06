package tags

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gallery/internal/service"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func names(ts []Tag) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Name
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		tag    string
		want   string
		wantOK bool
	}{
		{"Blue", "#3b82f6", true},
		{"DENIM", "#2563eb", true},
		{"blue denim", "#3b82f6", true}, // substring scan follows table order
		{"dark-red", "#ef4444", true},
		{"Casual", "", false},
		{"Dress", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			c, ok := Classify(tt.tag)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, c.Background)
		})
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	upper, ok := Classify("GOLD")
	require.True(t, ok)
	lower, _ := Classify("gold")
	assert.Equal(t, lower, upper)
}

func TestAggregate_CountColorName(t *testing.T) {
	items := []service.Image{
		{ID: "1", Tags: []string{"Blue", "Dress"}},
		{ID: "2", Tags: []string{"Blue", "Casual"}},
	}

	got := Aggregate(items, Selection{})

	require.Len(t, got, 3)
	assert.Equal(t, []string{"Blue", "Casual", "Dress"}, names(got))
	assert.Equal(t, 2, got[0].Count)
	assert.NotNil(t, got[0].Color)
	assert.Equal(t, 1, got[1].Count)
	assert.Nil(t, got[1].Color)
	assert.Equal(t, 1, got[2].Count)
}

func TestAggregate_RecentSelectionFirst(t *testing.T) {
	items := []service.Image{
		{ID: "1", Tags: []string{"Blue", "Dress"}},
		{ID: "2", Tags: []string{"Blue", "Casual"}},
	}
	sel := Selection{}.
		Toggle("Blue", t0).
		Toggle("Dress", t0.Add(time.Second))

	got := Aggregate(items, sel)

	assert.Equal(t, []string{"Dress", "Blue", "Casual"}, names(got))
	assert.True(t, got[0].Selected)
	assert.True(t, got[1].Selected)
	assert.False(t, got[2].Selected)
}

func TestAggregate_SameInstantSelectionUsesOrder(t *testing.T) {
	sel := Selection{}.Toggle("a", t0).Toggle("b", t0)
	got := Aggregate(nil, sel)
	assert.Equal(t, []string{"b", "a"}, names(got))
}

func TestAggregate_SelectedMissingTagKept(t *testing.T) {
	items := []service.Image{{ID: "1", Tags: []string{"Beach"}}}
	sel := NewSelection(t0, "Winter")

	got := Aggregate(items, sel)

	require.Len(t, got, 2)
	assert.Equal(t, Tag{Name: "Winter", Count: 0, Selected: true}, got[0])
	assert.Equal(t, "Beach", got[1].Name)
}

func TestAggregate_DuplicateTagsCountedOncePerItem(t *testing.T) {
	items := []service.Image{
		{ID: "1", Tags: []string{"Happy", "Happy", "Happy"}},
		{ID: "2", Tags: []string{"Happy"}},
	}
	got := Aggregate(items, Selection{})
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Count)
}

func TestAggregate_LocaleOrder(t *testing.T) {
	items := []service.Image{
		{ID: "1", Tags: []string{"banana", "Apple", "cherry"}},
	}
	got := Aggregate(items, Selection{})
	assert.Equal(t, []string{"Apple", "banana", "cherry"}, names(got))
}

func TestAggregate_Deterministic(t *testing.T) {
	items := []service.Image{
		{ID: "1", Tags: []string{"Jeans", "Indie", "Holiday", "Red"}},
		{ID: "2", Tags: []string{"jeans", "Long", "Child", "Gold"}},
		{ID: "3", Tags: []string{"Lifestyle", "Jacket", "Blonde"}},
	}
	sel := NewSelection(t0, "Indie", "Zebra")

	first := Aggregate(items, sel)
	for i := 0; i < 20; i++ {
		if diff := cmp.Diff(first, Aggregate(items, sel)); diff != "" {
			t.Fatalf("aggregate not deterministic (-first +again):\n%s", diff)
		}
	}
}

func TestAggregate_SelectedNamesAppearOnce(t *testing.T) {
	items := []service.Image{
		{ID: "1", Tags: []string{"Red", "Casual"}},
		{ID: "2", Tags: []string{"Red"}},
	}
	sel := Selection{}.QuickAdd("Red, Casual, Missing", t0)

	got := Aggregate(items, sel)

	seen := map[string]int{}
	for _, tg := range got {
		seen[tg.Name]++
	}
	for _, n := range sel.Names() {
		assert.Equal(t, 1, seen[n], "selected tag %q", n)
	}
	assert.Len(t, got, 3)
}

func TestSelection_Toggle(t *testing.T) {
	s := Selection{}
	s1 := s.Toggle("Blue", t0)

	assert.False(t, s.Has("Blue"), "original must not change")
	assert.True(t, s1.Has("Blue"))
	assert.Equal(t, []string{"Blue"}, s1.Names())

	s2 := s1.Toggle("Blue", t0.Add(time.Minute))
	assert.False(t, s2.Has("Blue"))
	assert.Empty(t, s2.Names())
	assert.Equal(t, 0, s2.Len())
}

func TestSelection_QuickAdd(t *testing.T) {
	s := Selection{}.Toggle("Blue", t0)
	s = s.QuickAdd(" Blue , Dress,, Casual ,", t0.Add(time.Second))

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"Casual", "Dress", "Blue"}, s.Names())

	// Blue kept its first timestamp, so a later selection sorts ahead of it.
	s = s.Toggle("Red", t0.Add(500*time.Millisecond))
	assert.Equal(t, []string{"Casual", "Dress", "Red", "Blue"}, s.Names())
}

func TestCompact(t *testing.T) {
	var all []Tag
	for _, n := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"} {
		all = append(all, Tag{Name: n})
	}
	all[10].Selected = true

	shown, more := Compact(all, 9)
	assert.True(t, more)
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "k"}, names(shown))

	shown, more = Compact(all[:10], 9)
	assert.False(t, more)
	assert.Len(t, shown, 10)
}
