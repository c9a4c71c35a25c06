package lists

import (
	"context"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"gallery/internal/service"
)

// Membership tracks which lists contain one image and applies toggles
// optimistically: the local state flips at once and is rolled back if the
// store call fails. Toggles on the same list run one at a time.
type Membership struct {
	svc     service.Service
	imageID string
	log     *zap.Logger

	// OnChange, if set, runs after every successful store mutation.
	OnChange func()

	mu       sync.Mutex
	selected map[string]bool
	pending  map[string]chan struct{}
}

// NewMembership seeds the selection from the lists that already contain imageID.
func NewMembership(svc service.Service, imageID string, lists []service.List, log *zap.Logger) *Membership {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Membership{
		svc:      svc,
		imageID:  imageID,
		log:      log.Named("membership").With(zap.String("image", imageID)),
		selected: make(map[string]bool),
		pending:  make(map[string]chan struct{}),
	}
	m.Sync(lists)
	return m
}

// Sync resets the selection from fresh lists. Lists with a toggle in flight
// keep their optimistic state.
func (m *Membership) Sync(lists []service.List) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := make(map[string]bool, len(lists))
	for _, l := range lists {
		if _, busy := m.pending[l.ID]; busy {
			next[l.ID] = m.selected[l.ID]
			continue
		}
		if l.Contains(m.imageID) {
			next[l.ID] = true
		}
	}
	m.selected = next
}

// Selected reports whether the image is (optimistically) in the list.
func (m *Membership) Selected(listID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected[listID]
}

// SelectedIDs returns the IDs of the lists containing the image, sorted.
func (m *Membership) SelectedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, ok := range m.selected {
		if ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Pending reports whether a toggle on the list is in flight.
func (m *Membership) Pending(listID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.pending[listID]
	return ok
}

// Toggle sets the membership of the image in listID to checked. If a toggle
// on the same list is in flight it waits for it first; a toggle that asks for
// the current state is a no-op. On failure the local state is restored and
// the error returned.
func (m *Membership) Toggle(ctx context.Context, listID string, checked bool) error {
	m.mu.Lock()
	for {
		ch, busy := m.pending[listID]
		if !busy {
			break
		}
		m.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
		m.mu.Lock()
	}

	was := m.selected[listID]
	if was == checked {
		m.mu.Unlock()
		return nil
	}
	m.selected[listID] = checked
	done := make(chan struct{})
	m.pending[listID] = done
	m.mu.Unlock()

	var err error
	op := "add image"
	if checked {
		err = m.svc.AddImageToList(ctx, listID, m.imageID)
	} else {
		op = "remove image"
		err = m.svc.RemoveImageFromList(ctx, listID, m.imageID)
	}
	record(ctx, op, err)

	m.mu.Lock()
	if err != nil {
		m.selected[listID] = was
	}
	delete(m.pending, listID)
	close(done)
	m.mu.Unlock()

	if err != nil {
		m.log.Error("toggle failed, reverted",
			zap.String("list", listID),
			zap.Bool("checked", checked),
			zap.Error(err))
		return err
	}
	if m.OnChange != nil {
		m.OnChange()
	}
	return nil
}

// CreateAndAdd adds the image to the list called name, creating the list
// when no list of that name (case-insensitive) exists yet.
func (m *Membership) CreateAndAdd(ctx context.Context, lists []service.List, name string) (service.List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return service.List{}, ErrEmptyName
	}
	for _, l := range lists {
		if strings.EqualFold(l.Name, name) {
			return l, m.Toggle(ctx, l.ID, true)
		}
	}

	created, err := m.svc.CreateList(ctx, service.ListFields{Name: name})
	record(ctx, "create list", err)
	if err != nil {
		m.log.Error("creating list", zap.String("name", name), zap.Error(err))
		return service.List{}, err
	}
	return created, m.Toggle(ctx, created.ID, true)
}
