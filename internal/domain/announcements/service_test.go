package announcements

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hackpoint/server/internal/domain/refs"
)

type fakeStore struct {
	nextID int
	docs   map[string]Announcement
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, docs: map[string]Announcement{}}
}

func (f *fakeStore) Index(_ context.Context, ann Announcement) (string, error) {
	id := fmt.Sprintf("ann-%d", f.nextID)
	f.nextID++
	ann.ID = id
	f.docs[id] = ann
	return id, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (Announcement, error) {
	ann, ok := f.docs[id]
	if !ok {
		return Announcement{}, ErrNotFound
	}
	return ann, nil
}

func (f *fakeStore) ListByEvent(_ context.Context, eventID int64) ([]Announcement, error) {
	var out []Announcement
	for _, ann := range f.docs {
		if ann.EventID == eventID {
			out = append(out, ann)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Important != out[j].Important {
			return out[i].Important
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, ann Announcement) error {
	if _, ok := f.docs[ann.ID]; !ok {
		return ErrNotFound
	}
	f.docs[ann.ID] = ann
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	if _, ok := f.docs[id]; !ok {
		return ErrNotFound
	}
	delete(f.docs, id)
	return nil
}

type fakeEvents struct {
	organizers map[int64]int64
}

func (f *fakeEvents) EventOrganizer(_ context.Context, eventID int64) (int64, error) {
	return f.organizers[eventID], nil
}

type allValidDirectory struct{}

func (allValidDirectory) EventExists(context.Context, int64) (bool, error) { return true, nil }
func (allValidDirectory) UserExists(context.Context, int64) (bool, error)  { return true, nil }
func (allValidDirectory) TeamExists(context.Context, int64) (bool, error)  { return true, nil }

func newTestService(store Store) *Service {
	events := &fakeEvents{organizers: map[int64]int64{1: 100}}
	return NewService(store, events, refs.NewValidator(allValidDirectory{}), zerolog.Nop())
}

func TestCreateRequiresOrganizer(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.Create(context.Background(), 7, 1, Input{Title: "Kickoff", Body: "Doors open at 9."})
	require.ErrorIs(t, err, ErrNotOrganizer)
}

func TestCreateByOrganizer(t *testing.T) {
	svc := newTestService(newFakeStore())

	ann, err := svc.Create(context.Background(), 100, 1, Input{Title: "Kickoff", Body: "Doors open at 9.", Important: true})
	require.NoError(t, err)
	require.NotEmpty(t, ann.ID)
	require.True(t, ann.Important)
	require.Equal(t, int64(100), ann.AuthorID)
}

func TestListImportantFirst(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	_, err := svc.Create(context.Background(), 100, 1, Input{Title: "Lunch menu", Body: "Pizza."})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 100, 1, Input{Title: "Deadline moved", Body: "Now 6pm.", Important: true})
	require.NoError(t, err)

	list, err := svc.ListByEvent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Deadline moved", list[0].Title)
}

func TestUpdateAndDeleteEnforceOwnership(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	ann, err := svc.Create(context.Background(), 100, 1, Input{Title: "Kickoff", Body: "Doors open at 9."})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), 7, ann.ID, Input{Title: "Hijacked", Body: "nope"})
	require.ErrorIs(t, err, ErrNotOrganizer)

	err = svc.Delete(context.Background(), 7, ann.ID)
	require.ErrorIs(t, err, ErrNotOrganizer)

	require.NoError(t, svc.Delete(context.Background(), 100, ann.ID))
	_, err = store.Get(context.Background(), ann.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
