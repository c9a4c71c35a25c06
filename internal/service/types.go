// Package service defines the backend-agnostic interface for gallery store operations.
package service

import (
	"slices"
	"time"
)

// Image represents a single image record.
type Image struct {
	ID           string
	Title        string
	Tags         []string // may contain duplicates; treated as a set downstream
	File         string   // opaque file reference inside the record
	CollectionID string
	Created      time.Time
}

// HasTag reports whether the image carries the tag (exact match).
func (i Image) HasTag(tag string) bool {
	return slices.Contains(i.Tags, tag)
}

// List represents a user-curated list of image IDs.
type List struct {
	ID          string
	Name        string
	Description string
	ImageIDs    []string
	Updated     time.Time
}

// Contains reports whether the list references the image.
func (l List) Contains(imageID string) bool {
	return slices.Contains(l.ImageIDs, imageID)
}

// ImageCount returns the number of distinct images referenced by the list.
func (l List) ImageCount() int {
	seen := make(map[string]struct{}, len(l.ImageIDs))
	for _, id := range l.ImageIDs {
		seen[id] = struct{}{}
	}
	return len(seen)
}

// NewImage describes an image to upload.
type NewImage struct {
	Title    string
	Tags     []string
	FileName string
	Data     []byte
}

// ListFields holds the mutable fields of a list.
type ListFields struct {
	Name        string
	Description string
}
