package lists

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gallery/internal/service"
	"gallery/internal/testutil"
)

var errStore = errors.New("store rejected request")

func TestManager_CreateRefetches(t *testing.T) {
	svc := testutil.NewFakeService()
	m := NewManager(svc, zaptest.NewLogger(t))
	ctx := context.Background()

	created, err := m.Create(ctx, "  Summer  ", "")
	require.NoError(t, err)
	assert.Equal(t, "Summer", created.Name)

	require.Len(t, m.Lists(), 1)
	assert.Equal(t, created.ID, m.Lists()[0].ID)
	assert.NoError(t, m.Err())
	assert.False(t, m.Loading())
}

func TestManager_CreateEmptyName(t *testing.T) {
	m := NewManager(testutil.NewFakeService(), nil)
	_, err := m.Create(context.Background(), "   ", "")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestManager_FailureKeepsLastError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddList("l1", "Work")
	m := NewManager(svc, zaptest.NewLogger(t))
	ctx := context.Background()
	_, err := m.Refresh(ctx)
	require.NoError(t, err)

	svc.DeleteListErr = errStore
	err = m.Delete(ctx, "l1")
	require.ErrorIs(t, err, errStore)
	assert.ErrorIs(t, m.Err(), errStore)
	assert.Len(t, m.Lists(), 1)

	// next operation clears the error
	svc.DeleteListErr = nil
	require.NoError(t, m.Delete(ctx, "l1"))
	assert.NoError(t, m.Err())
	assert.Empty(t, m.Lists())
}

func TestManager_RefreshError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListListsErr = errStore
	m := NewManager(svc, nil)

	lists, err := m.Refresh(context.Background())
	assert.Nil(t, lists)
	assert.ErrorIs(t, err, errStore)
	assert.ErrorIs(t, m.Err(), errStore)
}

func TestManager_Rename(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddList("l1", "Work")
	m := NewManager(svc, nil)
	ctx := context.Background()
	work, _ := svc.List("l1")

	t.Run("unchanged makes no call", func(t *testing.T) {
		got, err := m.Rename(ctx, work, " Work ")
		require.NoError(t, err)
		assert.Equal(t, "Work", got.Name)
		assert.Equal(t, 0, svc.UpdateListCalls)
	})

	t.Run("empty rejected", func(t *testing.T) {
		_, err := m.Rename(ctx, work, "  ")
		assert.ErrorIs(t, err, ErrEmptyName)
		assert.Equal(t, 0, svc.UpdateListCalls)
	})

	t.Run("failure keeps old name", func(t *testing.T) {
		svc.UpdateListErr = errStore
		got, err := m.Rename(ctx, work, "Office")
		svc.UpdateListErr = nil
		require.Error(t, err)
		assert.Equal(t, "Work", got.Name)
	})

	t.Run("renamed", func(t *testing.T) {
		got, err := m.Rename(ctx, work, " Office ")
		require.NoError(t, err)
		assert.Equal(t, "Office", got.Name)
		stored, _ := svc.List("l1")
		assert.Equal(t, "Office", stored.Name)
	})
}

func TestMembership_OptimisticToggle(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddList("l1", "Work")
	svc.AddList("l2", "Summer", "img1")
	lists, _ := svc.ListLists(context.Background())

	m := NewMembership(svc, "img1", lists, zaptest.NewLogger(t))
	assert.Equal(t, []string{"l2"}, m.SelectedIDs())

	entered := make(chan struct{})
	release := make(chan struct{})
	svc.MembershipHook = func(listID, imageID string) {
		close(entered)
		<-release
	}

	done := make(chan error, 1)
	go func() { done <- m.Toggle(context.Background(), "l1", true) }()

	<-entered
	assert.True(t, m.Selected("l1"), "selected before the store answers")
	assert.True(t, m.Pending("l1"))

	close(release)
	require.NoError(t, <-done)
	assert.False(t, m.Pending("l1"))
	stored, _ := svc.List("l1")
	assert.Equal(t, []string{"img1"}, stored.ImageIDs)
}

func TestMembership_RollbackOnError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddList("l1", "Work", "img1")
	lists, _ := svc.ListLists(context.Background())
	m := NewMembership(svc, "img1", lists, zaptest.NewLogger(t))

	changed := 0
	m.OnChange = func() { changed++ }
	svc.RemoveImageErr = errStore

	err := m.Toggle(context.Background(), "l1", false)
	require.ErrorIs(t, err, errStore)
	assert.True(t, m.Selected("l1"))
	assert.False(t, m.Pending("l1"))
	assert.Equal(t, 0, changed)
}

func TestMembership_NoOpWhenAlreadySatisfied(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddList("l1", "Work", "img1")
	lists, _ := svc.ListLists(context.Background())
	m := NewMembership(svc, "img1", lists, nil)

	require.NoError(t, m.Toggle(context.Background(), "l1", true))
	assert.Equal(t, 0, svc.MembershipCalls)
}

func TestMembership_SameListSerialized(t *testing.T) {
	tests := []struct {
		name      string
		toggles   []bool
		wantCalls int
		want      bool
	}{
		{"add then remove", []bool{true, false}, 2, false},
		{"duplicate add re-evaluated", []bool{true, true}, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := testutil.NewFakeService()
			svc.AddList("l1", "Work")
			lists, _ := svc.ListLists(context.Background())
			m := NewMembership(svc, "img1", lists, nil)

			var mu sync.Mutex
			inFlight, maxInFlight := 0, 0
			svc.MembershipHook = func(listID, imageID string) {
				mu.Lock()
				inFlight++
				maxInFlight = max(maxInFlight, inFlight)
				mu.Unlock()
				time.Sleep(20 * time.Millisecond)
				mu.Lock()
				inFlight--
				mu.Unlock()
			}

			var wg sync.WaitGroup
			for _, checked := range tt.toggles {
				wg.Add(1)
				go func() {
					defer wg.Done()
					assert.NoError(t, m.Toggle(context.Background(), "l1", checked))
				}()
				time.Sleep(5 * time.Millisecond)
			}
			wg.Wait()

			assert.Equal(t, 1, maxInFlight)
			assert.Equal(t, tt.wantCalls, svc.MembershipCalls)
			assert.Equal(t, tt.want, m.Selected("l1"))
		})
	}
}

func TestMembership_WaitHonoursContext(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddList("l1", "Work")
	lists, _ := svc.ListLists(context.Background())
	m := NewMembership(svc, "img1", lists, nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	svc.MembershipHook = func(string, string) {
		close(entered)
		<-release
	}
	done := make(chan error, 1)
	go func() { done <- m.Toggle(context.Background(), "l1", true) }()
	<-entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Toggle(ctx, "l1", false), context.Canceled)

	close(release)
	require.NoError(t, <-done)
}

func TestMembership_CreateAndAdd(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddList("l1", "Work")
	ctx := context.Background()
	lists, _ := svc.ListLists(ctx)
	m := NewMembership(svc, "img1", lists, nil)

	t.Run("empty ignored", func(t *testing.T) {
		_, err := m.CreateAndAdd(ctx, lists, "  ")
		assert.ErrorIs(t, err, ErrEmptyName)
	})

	t.Run("existing name selected", func(t *testing.T) {
		got, err := m.CreateAndAdd(ctx, lists, " work ")
		require.NoError(t, err)
		assert.Equal(t, "l1", got.ID)
		assert.True(t, m.Selected("l1"))
		all, _ := svc.ListLists(ctx)
		assert.Len(t, all, 1)
	})

	t.Run("new list created", func(t *testing.T) {
		got, err := m.CreateAndAdd(ctx, lists, "Holiday")
		require.NoError(t, err)
		assert.Equal(t, "Holiday", got.Name)
		assert.True(t, m.Selected(got.ID))
		stored, ok := svc.List(got.ID)
		require.True(t, ok)
		assert.Equal(t, []string{"img1"}, stored.ImageIDs)
	})

	t.Run("create failure", func(t *testing.T) {
		svc.CreateListErr = errStore
		_, err := m.CreateAndAdd(ctx, lists, "Other")
		assert.ErrorIs(t, err, errStore)
	})
}

func TestMembership_SyncKeepsPending(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddList("l1", "Work")
	svc.AddList("l2", "Summer")
	lists, _ := svc.ListLists(context.Background())
	m := NewMembership(svc, "img1", lists, nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	svc.MembershipHook = func(string, string) {
		close(entered)
		<-release
	}
	done := make(chan error, 1)
	go func() { done <- m.Toggle(context.Background(), "l1", true) }()
	<-entered

	m.Sync([]service.List{{ID: "l1"}, {ID: "l2", ImageIDs: []string{"img1"}}})
	assert.Equal(t, []string{"l1", "l2"}, m.SelectedIDs())

	close(release)
	require.NoError(t, <-done)
}

func TestSortByUpdated(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	in := []service.List{
		{ID: "a", Updated: base},
		{ID: "b", Updated: base.Add(2 * time.Hour)},
		{ID: "c", Updated: base.Add(time.Hour)},
	}
	got := SortByUpdated(in)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
	assert.Equal(t, "a", got[2].ID)
	assert.Equal(t, "a", in[0].ID, "input untouched")
}

func TestSearch(t *testing.T) {
	in := []service.List{{Name: "Summer Looks"}, {Name: "Work"}, {Name: "summertime"}}
	assert.Len(t, Search(in, "SUMMER"), 2)
	assert.Len(t, Search(in, ""), 3)
	assert.Empty(t, Search(in, "winter"))
}

func TestDeselect(t *testing.T) {
	sel := []string{"a", "b", "c"}
	assert.Equal(t, []string{"a", "c"}, Deselect(sel, "b"))
	assert.Equal(t, []string{"a", "b", "c"}, sel)
	assert.Equal(t, []string{"a", "b", "c"}, Deselect(sel, "zzz"))
}

func TestEditState(t *testing.T) {
	var e EditState
	assert.False(t, e.OtherEditing("a"))

	e = e.Begin("a")
	assert.True(t, e.Editing("a"))
	assert.True(t, e.OtherEditing("b"))
	assert.False(t, e.OtherEditing("a"))

	e = e.Begin("b")
	assert.False(t, e.Editing("a"))

	e = e.End()
	assert.False(t, e.OtherEditing("a"))
	assert.False(t, e.Editing(""))
}

func TestValidateRename(t *testing.T) {
	name, changed, err := ValidateRename("Work", " Office ")
	require.NoError(t, err)
	assert.Equal(t, "Office", name)
	assert.True(t, changed)

	_, changed, err = ValidateRename("Work", "Work ")
	require.NoError(t, err)
	assert.False(t, changed)
}
