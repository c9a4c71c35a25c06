// Package lists manages user-curated image lists: CRUD with refetch after
// every mutation, optimistic per-image membership toggles, and the small
// pure helpers the list picker needs.
package lists

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"gallery/internal/service"
	"gallery/internal/telemetry"
)

// ErrEmptyName is returned when a list name is blank after trimming.
var ErrEmptyName = errors.New("list name is empty")

// Manager keeps the current set of lists in sync with the store.
// It is safe for concurrent use.
type Manager struct {
	svc service.Service
	log *zap.Logger

	mu      sync.Mutex
	lists   []service.List
	loading int
	err     error
}

// NewManager returns a manager with no lists loaded. Call Refresh to load.
func NewManager(svc service.Service, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{svc: svc, log: log.Named("lists")}
}

// Lists returns the last fetched lists in store order.
func (m *Manager) Lists() []service.List {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lists
}

// Err returns the error of the last operation, or nil.
func (m *Manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Loading reports whether any operation is in flight.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading > 0
}

func (m *Manager) begin() {
	m.mu.Lock()
	m.loading++
	m.err = nil
	m.mu.Unlock()
}

func (m *Manager) end(err error) {
	m.mu.Lock()
	m.loading--
	if err != nil {
		m.err = err
	}
	m.mu.Unlock()
}

// Refresh refetches all lists.
func (m *Manager) Refresh(ctx context.Context) ([]service.List, error) {
	m.begin()
	lists, err := m.refresh(ctx)
	m.end(err)
	return lists, err
}

func (m *Manager) refresh(ctx context.Context) ([]service.List, error) {
	lists, err := m.svc.ListLists(ctx)
	if err != nil {
		m.log.Error("fetching lists", zap.Error(err))
		return nil, fmt.Errorf("fetch lists: %w", err)
	}
	m.mu.Lock()
	m.lists = lists
	m.mu.Unlock()
	return lists, nil
}

// mutate runs op, then refetches. A failed op skips the refetch.
func (m *Manager) mutate(ctx context.Context, name string, op func() error) error {
	m.begin()
	err := op()
	record(ctx, name, err)
	if err != nil {
		m.log.Error("list mutation failed", zap.String("op", name), zap.Error(err))
		err = fmt.Errorf("%s: %w", name, err)
	} else {
		_, err = m.refresh(ctx)
	}
	m.end(err)
	return err
}

// Create creates a list named name (trimmed).
func (m *Manager) Create(ctx context.Context, name, description string) (service.List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return service.List{}, ErrEmptyName
	}
	var created service.List
	err := m.mutate(ctx, "create list", func() error {
		var err error
		created, err = m.svc.CreateList(ctx, service.ListFields{Name: name, Description: description})
		return err
	})
	return created, err
}

// Rename changes the name of l. A blank name is rejected and an unchanged
// name returns l without contacting the store.
func (m *Manager) Rename(ctx context.Context, l service.List, newName string) (service.List, error) {
	name, changed, err := ValidateRename(l.Name, newName)
	if err != nil || !changed {
		return l, err
	}
	updated := l
	err = m.mutate(ctx, "rename list", func() error {
		var err error
		updated, err = m.svc.UpdateList(ctx, l.ID, service.ListFields{Name: name, Description: l.Description})
		return err
	})
	if err != nil {
		return l, err
	}
	return updated, nil
}

// Delete deletes the list with the given ID.
func (m *Manager) Delete(ctx context.Context, listID string) error {
	return m.mutate(ctx, "delete list", func() error {
		return m.svc.DeleteList(ctx, listID)
	})
}

// ValidateRename trims newName and reports whether it differs from current.
func ValidateRename(current, newName string) (name string, changed bool, err error) {
	name = strings.TrimSpace(newName)
	if name == "" {
		return "", false, ErrEmptyName
	}
	return name, name != current, nil
}

func record(ctx context.Context, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	telemetry.ListMutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
}
