// Package service defines the backend-agnostic interface for gallery store operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// PageSize is the fixed number of images returned by a search.
const PageSize = 50

var (
	// ErrNotFound is returned when a record or list name does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous is returned when a list name matches more than one list.
	ErrAmbiguous = errors.New("ambiguous")

	// ErrMalformedResponse is returned when the store answers with a body
	// that does not have the expected shape.
	ErrMalformedResponse = errors.New("malformed response")
)

// Service defines the interface for gallery store operations.
// Commands and controllers never talk HTTP directly.
type Service interface {
	// ListImages returns the newest images whose title or tags contain query.
	// An empty query matches everything. At most PageSize images are returned.
	ListImages(ctx context.Context, query string) ([]Image, error)

	// GetImage returns a single image by ID.
	GetImage(ctx context.Context, imageID string) (Image, error)

	// UploadImage creates a new image record.
	UploadImage(ctx context.Context, img NewImage) (Image, error)

	// ListLists returns all lists in store order.
	ListLists(ctx context.Context) ([]List, error)

	// CreateList creates a new, empty list.
	CreateList(ctx context.Context, fields ListFields) (List, error)

	// UpdateList changes the name and description of a list.
	UpdateList(ctx context.Context, listID string, fields ListFields) (List, error)

	// DeleteList deletes a list by ID.
	DeleteList(ctx context.Context, listID string) error

	// AddImageToList adds imageID to the list's members.
	// Implemented as read-modify-write; concurrent writers may lose updates.
	AddImageToList(ctx context.Context, listID, imageID string) error

	// RemoveImageFromList removes imageID from the list's members.
	RemoveImageFromList(ctx context.Context, listID, imageID string) error

	// FileURL returns the URL of the image's file.
	FileURL(img Image) string
}

// FindList finds a list by name (case-insensitive, trimmed).
// Returns ErrNotFound or ErrAmbiguous wrapped with the name.
func FindList(lists []List, name string) (List, error) {
	name = strings.TrimSpace(name)
	nameLower := strings.ToLower(name)

	var matches []List
	for _, l := range lists {
		if strings.ToLower(strings.TrimSpace(l.Name)) == nameLower {
			matches = append(matches, l)
		}
	}

	switch len(matches) {
	case 0:
		return List{}, fmt.Errorf("list %w: %s", ErrNotFound, name)
	case 1:
		return matches[0], nil
	default:
		return List{}, fmt.Errorf("%w list name: %s", ErrAmbiguous, name)
	}
}

// ResolveList fetches all lists and finds one by name.
func ResolveList(ctx context.Context, svc Service, name string) (List, error) {
	lists, err := svc.ListLists(ctx)
	if err != nil {
		return List{}, err
	}
	return FindList(lists, name)
}
