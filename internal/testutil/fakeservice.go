// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gallery/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.RWMutex
	images []service.Image // newest first
	lists  []service.List
	now    time.Time

	// Error injection for testing
	ListImagesErr   error
	UploadImageErr  error
	ListListsErr    error
	CreateListErr   error
	UpdateListErr   error
	DeleteListErr   error
	AddImageErr     error
	RemoveImageErr  error
	ListImagesQueue []error // consumed one per ListImages call before ListImagesErr

	// Call counters
	ListImagesCalls int
	UpdateListCalls int
	MembershipCalls int
	LastImagesQuery string

	// MembershipHook runs before a membership change is applied.
	MembershipHook func(listID, imageID string)
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *FakeService) tick() time.Time {
	f.now = f.now.Add(time.Minute)
	return f.now
}

// AddImage adds an image as the newest record.
func (f *FakeService) AddImage(id, title string, tags ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images = slices.Insert(f.images, 0, service.Image{
		ID:           id,
		Title:        title,
		Tags:         tags,
		File:         id + ".jpg",
		CollectionID: "images",
		Created:      f.tick(),
	})
}

// AddList adds a list containing the given images.
func (f *FakeService) AddList(id, name string, imageIDs ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, service.List{ID: id, Name: name, ImageIDs: imageIDs, Updated: f.tick()})
}

// List returns a copy of the stored list with the given ID.
func (f *FakeService) List(id string) (service.List, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, l := range f.lists {
		if l.ID == id {
			l.ImageIDs = slices.Clone(l.ImageIDs)
			return l, true
		}
	}
	return service.List{}, false
}

// ListImages implements service.Service.
func (f *FakeService) ListImages(ctx context.Context, query string) ([]service.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListImagesCalls++
	f.LastImagesQuery = query
	if len(f.ListImagesQueue) > 0 {
		err := f.ListImagesQueue[0]
		f.ListImagesQueue = f.ListImagesQueue[1:]
		if err != nil {
			return nil, err
		}
	} else if f.ListImagesErr != nil {
		return nil, f.ListImagesErr
	}

	q := strings.ToLower(query)
	var out []service.Image
	for _, img := range f.images {
		if q == "" || strings.Contains(strings.ToLower(img.Title), q) ||
			strings.Contains(strings.ToLower(strings.Join(img.Tags, ",")), q) {
			out = append(out, img)
		}
		if len(out) == service.PageSize {
			break
		}
	}
	return out, nil
}

// GetImage implements service.Service.
func (f *FakeService) GetImage(ctx context.Context, imageID string) (service.Image, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, img := range f.images {
		if img.ID == imageID {
			return img, nil
		}
	}
	return service.Image{}, fmt.Errorf("image %w: %s", service.ErrNotFound, imageID)
}

// UploadImage implements service.Service.
func (f *FakeService) UploadImage(ctx context.Context, img service.NewImage) (service.Image, error) {
	if f.UploadImageErr != nil {
		return service.Image{}, f.UploadImageErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rec := service.Image{
		ID:           uuid.NewString(),
		Title:        img.Title,
		Tags:         img.Tags,
		File:         img.FileName,
		CollectionID: "images",
		Created:      f.tick(),
	}
	f.images = slices.Insert(f.images, 0, rec)
	return rec, nil
}

// ListLists implements service.Service.
func (f *FakeService) ListLists(ctx context.Context) ([]service.List, error) {
	if f.ListListsErr != nil {
		return nil, f.ListListsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]service.List, len(f.lists))
	for i, l := range f.lists {
		l.ImageIDs = slices.Clone(l.ImageIDs)
		result[i] = l
	}
	return result, nil
}

// CreateList implements service.Service.
func (f *FakeService) CreateList(ctx context.Context, fields service.ListFields) (service.List, error) {
	if f.CreateListErr != nil {
		return service.List{}, f.CreateListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	l := service.List{
		ID:          uuid.NewString(),
		Name:        fields.Name,
		Description: fields.Description,
		Updated:     f.tick(),
	}
	f.lists = append(f.lists, l)
	return l, nil
}

// UpdateList implements service.Service.
func (f *FakeService) UpdateList(ctx context.Context, listID string, fields service.ListFields) (service.List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateListCalls++
	if f.UpdateListErr != nil {
		return service.List{}, f.UpdateListErr
	}
	i := f.indexLocked(listID)
	if i < 0 {
		return service.List{}, fmt.Errorf("list %w: %s", service.ErrNotFound, listID)
	}
	f.lists[i].Name = fields.Name
	f.lists[i].Description = fields.Description
	f.lists[i].Updated = f.tick()
	return f.lists[i], nil
}

// DeleteList implements service.Service.
func (f *FakeService) DeleteList(ctx context.Context, listID string) error {
	if f.DeleteListErr != nil {
		return f.DeleteListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexLocked(listID)
	if i < 0 {
		return fmt.Errorf("list %w: %s", service.ErrNotFound, listID)
	}
	f.lists = slices.Delete(f.lists, i, i+1)
	return nil
}

// AddImageToList implements service.Service.
func (f *FakeService) AddImageToList(ctx context.Context, listID, imageID string) error {
	return f.membership(listID, imageID, f.AddImageErr, func(ids []string) []string {
		if slices.Contains(ids, imageID) {
			return ids
		}
		return append(ids, imageID)
	})
}

// RemoveImageFromList implements service.Service.
func (f *FakeService) RemoveImageFromList(ctx context.Context, listID, imageID string) error {
	return f.membership(listID, imageID, f.RemoveImageErr, func(ids []string) []string {
		return slices.DeleteFunc(ids, func(id string) bool { return id == imageID })
	})
}

func (f *FakeService) membership(listID, imageID string, injected error, apply func([]string) []string) error {
	f.mu.Lock()
	f.MembershipCalls++
	hook := f.MembershipHook
	f.mu.Unlock()
	if hook != nil {
		hook(listID, imageID)
	}
	if injected != nil {
		return injected
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexLocked(listID)
	if i < 0 {
		return fmt.Errorf("list %w: %s", service.ErrNotFound, listID)
	}
	f.lists[i].ImageIDs = apply(slices.Clone(f.lists[i].ImageIDs))
	f.lists[i].Updated = f.tick()
	return nil
}

// FileURL implements service.Service.
func (f *FakeService) FileURL(img service.Image) string {
	return "http://store.test/api/files/" + img.CollectionID + "/" + img.ID + "/" + img.File
}

func (f *FakeService) indexLocked(listID string) int {
	return slices.IndexFunc(f.lists, func(l service.List) bool { return l.ID == listID })
}
