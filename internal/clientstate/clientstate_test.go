package clientstate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apiStub serves canned JSON per path, so refreshes can be pointed at
// different payloads between calls.
type apiStub struct {
	mu        sync.Mutex
	responses map[string]interface{}
}

func newAPIStub() (*apiStub, *httptest.Server) {
	stub := &apiStub{responses: map[string]interface{}{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		body, ok := stub.responses[r.URL.Path]
		stub.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}))
	return stub, srv
}

func (s *apiStub) set(path string, body interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[path] = body
}

func TestRefreshFreets_ReplacesNotAppends(t *testing.T) {
	stub, srv := newAPIStub()
	defer srv.Close()

	store := New(srv.URL, "")
	ctx := context.Background()

	stub.set("/api/freets", []Freet{
		{ID: "f1", Author: "alice", Content: "one"},
		{ID: "f2", Author: "bob", Content: "two"},
	})
	require.NoError(t, store.RefreshFreets(ctx))
	assert.Len(t, store.Snapshot().Freets, 2)

	// a second refresh with fewer freets shrinks the feed
	stub.set("/api/freets", []Freet{{ID: "f2", Author: "bob", Content: "two"}})
	require.NoError(t, store.RefreshFreets(ctx))

	freets := store.Snapshot().Freets
	require.Len(t, freets, 1)
	assert.Equal(t, "f2", freets[0].ID)
}

func TestRefreshFreets_HonorsFilter(t *testing.T) {
	stub, srv := newAPIStub()
	defer srv.Close()

	stub.set("/api/freets", []Freet{{ID: "f1"}, {ID: "f2"}})
	stub.set("/api/users/bob/freets", []Freet{{ID: "f2", Author: "bob"}})

	store := New(srv.URL, "")
	store.SetFilter("bob")
	require.NoError(t, store.RefreshFreets(context.Background()))

	freets := store.Snapshot().Freets
	require.Len(t, freets, 1)
	assert.Equal(t, "bob", freets[0].Author)
}

func TestRefreshFollowees_SkipsWhenLoggedOut(t *testing.T) {
	_, srv := newAPIStub()
	defer srv.Close()

	store := New(srv.URL, "")
	require.NoError(t, store.RefreshFollowees(context.Background()))
	assert.Empty(t, store.Snapshot().Followees)
}

func TestRefreshWordMasks_ClearsWhenLoggedOut(t *testing.T) {
	_, srv := newAPIStub()
	defer srv.Close()

	store := New(srv.URL, "")
	stateStore(store, State{
		Username:  "",
		WordMasks: []WordMask{{ID: "m1", CensoredWord: "heck", ReplacementWord: "h*ck"}},
	})

	require.NoError(t, store.RefreshWordMasks(context.Background()))
	assert.Empty(t, store.Snapshot().WordMasks)
}

func TestAlertExpiry(t *testing.T) {
	store := New("http://unused", "")

	store.Alert("Saved.", "success")
	assert.Equal(t, map[string]string{"Saved.": "success"}, store.Alerts())

	assert.Eventually(t, func() bool {
		return len(store.Alerts()) == 0
	}, 5*time.Second, 50*time.Millisecond)
}

func TestAlert_RepeatResetsInsteadOfStacking(t *testing.T) {
	store := New("http://unused", "")

	store.Alert("Saved.", "success")
	store.Alert("Saved.", "error")

	alerts := store.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, "error", alerts["Saved."])
}

func TestDerivedViews(t *testing.T) {
	store := New("http://unused", "")
	store.SetUsername("alice")

	stateStore(store, State{
		Username: "alice",
		Freets: []Freet{
			{ID: "f1", Author: "bob", Content: "what the heck"},
			{ID: "f2", Author: "carol", Content: "all clear"},
		},
		Followees:      []Follow{{ID: "e1", Follower: "alice", Followee: "bob"}},
		EndorsedFreets: []Endorsement{{ID: "n1", Endorser: "alice", Freet: "f2"}},
		WordMasks:      []WordMask{{ID: "m1", CensoredWord: "heck", ReplacementWord: "h*ck"}},
	})

	ids := store.EndorsedFreetIDs()
	assert.True(t, ids["f2"])
	assert.False(t, ids["f1"])

	followed := store.FolloweesFreets()
	require.Len(t, followed, 1)
	assert.Equal(t, "bob", followed[0].Author)

	masked := store.MaskedFreets()
	require.Len(t, masked, 2)
	assert.Equal(t, "what the h*ck", masked[0].Content)
	assert.Equal(t, "all clear", masked[1].Content)

	// the underlying feed is untouched
	assert.Equal(t, "what the heck", store.Snapshot().Freets[0].Content)
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	store := New("http://unused", path)
	stateStore(store, State{
		Username: "alice",
		Filter:   "bob",
		Freets:   []Freet{{ID: "f1", Author: "bob", Content: "hello"}},
	})
	store.Alert("Transient.", "success")
	require.NoError(t, store.Save())

	restored := New("http://unused", path)
	require.NoError(t, restored.Load())

	state := restored.Snapshot()
	assert.Equal(t, "alice", state.Username)
	assert.Equal(t, "bob", state.Filter)
	require.Len(t, state.Freets, 1)

	// alerts never survive a restart
	assert.Empty(t, restored.Alerts())
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	store := New("http://unused", filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, store.Load())
	assert.Empty(t, store.Snapshot().Username)
}

// stateStore swaps in a full state under the lock, bypassing HTTP.
func stateStore(s *Store, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}
