package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gallery/internal/service"
)

var (
	images = []service.Image{
		{ID: "1", Tags: []string{"red", "casual", "dress"}},
		{ID: "2", Tags: []string{"red"}},
		{ID: "3", Tags: []string{"casual", "red", "red"}},
		{ID: "4", Tags: []string{"blue", "casual"}},
	}
	lists = []service.List{
		{ID: "summer", Name: "Summer", ImageIDs: []string{"1", "2"}},
		{ID: "work", Name: "Work", ImageIDs: []string{"2", "4"}},
		{ID: "empty", Name: "Empty"},
	}
)

func ids(items []service.Image) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestApply_Identity(t *testing.T) {
	got := Apply(images, lists, nil, nil)
	assert.Equal(t, images, got)
}

func TestApply_TagConjunction(t *testing.T) {
	want := []string{"red", "casual"}
	got := Apply(images, lists, nil, want)

	assert.Equal(t, []string{"1", "3"}, ids(got))
	for _, img := range got {
		for _, tg := range want {
			assert.True(t, img.HasTag(tg), "image %s missing %s", img.ID, tg)
		}
	}
}

func TestApply_ListUnion(t *testing.T) {
	got := Apply(images, lists, []string{"summer", "work"}, nil)
	assert.Equal(t, []string{"1", "2", "4"}, ids(got))
}

func TestApply_ListThenTags(t *testing.T) {
	got := Apply(images, lists, []string{"work"}, []string{"casual"})
	assert.Equal(t, []string{"4"}, ids(got))
}

func TestApply_UnknownOrEmptyListExcludesAll(t *testing.T) {
	assert.Empty(t, Apply(images, lists, []string{"missing"}, nil))
	assert.Empty(t, Apply(images, lists, []string{"empty"}, nil))
}

func TestApply_OrderPreserved(t *testing.T) {
	got := Apply(images, lists, []string{"work", "summer"}, []string{"red"})
	assert.Equal(t, []string{"1", "2"}, ids(got))
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "All images", Summary(lists, nil))
	assert.Equal(t, "Work", Summary(lists, []string{"work"}))
	assert.Equal(t, "2 lists", Summary(lists, []string{"work", "summer"}))
}
