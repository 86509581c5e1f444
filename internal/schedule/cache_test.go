package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/schedule/internal/domain"
)

type stubListStore struct {
	mu        sync.Mutex
	sessions  map[string][]domain.Session
	listCalls int
	listErr   error
	gate      chan struct{}
}

func newStubListStore() *stubListStore {
	return &stubListStore{sessions: make(map[string][]domain.Session)}
}

func (s *stubListStore) set(ownerID string, sessions []domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[ownerID] = sessions
}

func (s *stubListStore) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
}

func (s *stubListStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

func (s *stubListStore) ListSessions(ctx context.Context, ownerID string) ([]domain.Session, error) {
	s.mu.Lock()
	s.listCalls++
	gate := s.gate
	err := s.listErr
	sessions := append([]domain.Session(nil), s.sessions[ownerID]...)
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *stubListStore) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	return nil, errors.New("not implemented")
}

func (s *stubListStore) CreateSession(ctx context.Context, fields domain.SessionFields) (*domain.Session, error) {
	return nil, errors.New("not implemented")
}

func (s *stubListStore) UpdateSession(ctx context.Context, id string, patch domain.SessionPatch) (*domain.Session, error) {
	return nil, errors.New("not implemented")
}

func (s *stubListStore) DeleteSession(ctx context.Context, id string) error {
	return errors.New("not implemented")
}

func (s *stubListStore) GetProfile(ctx context.Context, ownerID string) (*domain.Profile, error) {
	return nil, errors.New("not implemented")
}

func (s *stubListStore) ListProfiles(ctx context.Context, excludingOwnerID string) ([]domain.Profile, error) {
	return nil, errors.New("not implemented")
}

func TestCacheFirstGetLoadsFromStore(t *testing.T) {
	store := newStubListStore()
	store.set("user-1", []domain.Session{{ID: "tr-1", OwnerID: "user-1", Title: "Push day"}})

	cache := NewCache(store, time.Second, nil)

	sessions, err := cache.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "tr-1", sessions[0].ID)
	require.Equal(t, 1, store.calls())
	require.Equal(t, FreshnessFresh, cache.State("user-1"))
}

func TestCacheFreshReadsDoNotRefetch(t *testing.T) {
	store := newStubListStore()
	store.set("user-1", []domain.Session{{ID: "tr-1", OwnerID: "user-1"}})

	cache := NewCache(store, time.Second, nil)

	_, err := cache.Get(context.Background(), "user-1")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := cache.Get(context.Background(), "user-1")
		require.NoError(t, err)
	}
	require.Equal(t, 1, store.calls())
}

func TestCacheInvalidateSchedulesRefetch(t *testing.T) {
	store := newStubListStore()
	store.set("user-1", []domain.Session{{ID: "tr-1", OwnerID: "user-1"}})

	cache := NewCache(store, time.Second, nil)
	_, err := cache.Get(context.Background(), "user-1")
	require.NoError(t, err)

	store.set("user-1", []domain.Session{
		{ID: "tr-1", OwnerID: "user-1"},
		{ID: "tr-2", OwnerID: "user-1"},
	})
	cache.Invalidate("user-1")

	require.Eventually(t, func() bool {
		sessions, err := cache.Get(context.Background(), "user-1")
		return err == nil && len(sessions) == 2
	}, 2*time.Second, 10*time.Millisecond, "mutated data must become visible after invalidation")
}

func TestCacheCoalescesInvalidationsDuringFetch(t *testing.T) {
	store := newStubListStore()
	store.set("user-1", []domain.Session{{ID: "tr-1", OwnerID: "user-1"}})

	cache := NewCache(store, 5*time.Second, nil)
	_, err := cache.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, 1, store.calls())

	gate := make(chan struct{})
	store.mu.Lock()
	store.gate = gate
	store.mu.Unlock()

	cache.Invalidate("user-1")
	require.Eventually(t, func() bool { return cache.Loading("user-1") }, time.Second, time.Millisecond)

	// These arrive while the fetch is parked on the gate; they must fold into
	// a single follow-up fetch, not spawn concurrent duplicates.
	cache.Invalidate("user-1")
	cache.Invalidate("user-1")
	cache.Invalidate("user-1")

	store.mu.Lock()
	store.gate = nil
	store.mu.Unlock()
	close(gate)

	require.Eventually(t, func() bool { return !cache.Loading("user-1") }, 2*time.Second, time.Millisecond)
	require.Equal(t, 3, store.calls(), "one warm-up, one invalidation fetch, one coalesced follow-up")
}

func TestCacheReadsAreCopies(t *testing.T) {
	store := newStubListStore()
	store.set("user-1", []domain.Session{{ID: "tr-1", OwnerID: "user-1", Title: "Push day"}})

	cache := NewCache(store, time.Second, nil)
	first, err := cache.Get(context.Background(), "user-1")
	require.NoError(t, err)

	first[0].Title = "scribbled"

	second, err := cache.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, "Push day", second[0].Title)
}

func TestCacheFirstLoadErrorSurfacesAndRetries(t *testing.T) {
	store := newStubListStore()
	boom := &domain.StoreError{Message: "Trainings could not be loaded", Err: errors.New("connection refused")}
	store.fail(boom)

	cache := NewCache(store, time.Second, nil)

	_, err := cache.Get(context.Background(), "user-1")
	require.Error(t, err)
	var storeErr *domain.StoreError
	require.True(t, errors.As(err, &storeErr))

	store.fail(nil)
	store.set("user-1", []domain.Session{{ID: "tr-1", OwnerID: "user-1"}})

	require.Eventually(t, func() bool {
		sessions, err := cache.Get(context.Background(), "user-1")
		return err == nil && len(sessions) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCacheKeepsLastKnownGoodOnRefreshError(t *testing.T) {
	store := newStubListStore()
	store.set("user-1", []domain.Session{{ID: "tr-1", OwnerID: "user-1"}})

	cache := NewCache(store, time.Second, nil)
	_, err := cache.Get(context.Background(), "user-1")
	require.NoError(t, err)

	store.fail(errors.New("store down"))
	cache.Invalidate("user-1")
	require.Eventually(t, func() bool { return !cache.Loading("user-1") }, 2*time.Second, time.Millisecond)

	sessions, err := cache.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, sessions, 1, "failed refresh must not discard the last-known-good list")
}

func TestCacheGetHonoursCallerContext(t *testing.T) {
	store := newStubListStore()
	gate := make(chan struct{})
	store.gate = gate
	defer close(gate)

	cache := NewCache(store, 5*time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cache.Get(ctx, "user-1")
	require.ErrorIs(t, err, context.Canceled)
}
