// Package clientstate is a client-side mirror of the API state: the
// logged-in user's freet feed, followees, endorsements, and word masks,
// refreshed wholesale from the server after each mutation. Views read
// from it instead of hitting the API directly.
package clientstate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/lam-kelly/fritter/internal/wordmask"
)

// alertTTL is how long a transient alert stays visible.
const alertTTL = 3 * time.Second

// Freet is the wire shape of a freet.
type Freet struct {
	ID          string `json:"id"`
	Author      string `json:"author"`
	Content     string `json:"content"`
	DateCreated string `json:"dateCreated"`
}

// Follow is the wire shape of a follow edge.
type Follow struct {
	ID       string `json:"id"`
	Follower string `json:"follower"`
	Followee string `json:"followee"`
}

// Endorsement is the wire shape of an endorsement.
type Endorsement struct {
	ID       string `json:"id"`
	Endorser string `json:"endorser"`
	Freet    string `json:"freet"`
}

// WordMask is the wire shape of a word-mask rule.
type WordMask struct {
	ID              string `json:"id"`
	UserID          string `json:"userId"`
	CensoredWord    string `json:"censoredWord"`
	ReplacementWord string `json:"replacementWord"`
}

// UserSummary is the wire shape of a user search result.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// State is the snapshot-serializable part of the store. Alerts are
// transient and kept outside it.
type State struct {
	Username       string        `json:"username"`
	Filter         string        `json:"filter"`
	Freets         []Freet       `json:"freets"`
	Followees      []Follow      `json:"followees"`
	EndorsedFreets []Endorsement `json:"endorsedFreets"`
	WordMasks      []WordMask    `json:"wordMasks"`
	SearchResults  []UserSummary `json:"searchResults"`
	SearchedUser   string        `json:"searchedUser"`
}

// Store holds the mirrored state. All methods are safe for concurrent
// use.
type Store struct {
	mu sync.Mutex

	client       *http.Client
	baseURL      string
	snapshotPath string

	state  State
	alerts map[string]string
	timers map[string]*time.Timer
}

// New creates a store talking to the API at baseURL. The HTTP client
// carries a cookie jar so the session cookie set at login flows into
// the authenticated refreshes. snapshotPath may be empty to disable
// persistence.
func New(baseURL, snapshotPath string) *Store {
	jar, _ := cookiejar.New(nil)

	s := &Store{
		client:       &http.Client{Jar: jar, Timeout: 10 * time.Second},
		baseURL:      baseURL,
		snapshotPath: snapshotPath,
		alerts:       map[string]string{},
		timers:       map[string]*time.Timer{},
	}
	// A stale or missing snapshot is not fatal; the store starts empty.
	_ = s.Load()
	return s
}

// SetUsername records the logged-in user. An empty username clears it.
func (s *Store) SetUsername(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Username = username
}

// Username returns the logged-in user, or empty when logged out.
func (s *Store) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Username
}

// SetFilter sets the author the feed is filtered to. Empty shows all
// freets.
func (s *Store) SetFilter(author string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Filter = author
}

// ClearFollowees empties the followee list, used at logout before the
// username is cleared.
func (s *Store) ClearFollowees() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Followees = []Follow{}
}

// UpdateSearchedUser records the username the search view is showing.
func (s *Store) UpdateSearchedUser(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SearchedUser = username
}

// UpdateSearchResults replaces the search results outright.
func (s *Store) UpdateSearchResults(results []UserSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SearchResults = results
}

// Alert records a transient alert keyed by message. A repeated message
// resets its timer instead of stacking. After the TTL the alert removes
// itself.
func (s *Store) Alert(message, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alerts[message] = status
	if t, ok := s.timers[message]; ok {
		t.Stop()
	}
	s.timers[message] = time.AfterFunc(alertTTL, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.alerts, message)
		delete(s.timers, message)
	})
}

// Alerts returns a copy of the live alerts, message to status.
func (s *Store) Alerts() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.alerts))
	for msg, status := range s.alerts {
		out[msg] = status
	}
	return out
}

// RefreshFreets replaces the feed from the server, honoring the current
// author filter.
func (s *Store) RefreshFreets(ctx context.Context) error {
	s.mu.Lock()
	filter := s.state.Filter
	s.mu.Unlock()

	path := "/api/freets"
	if filter != "" {
		path = "/api/users/" + url.PathEscape(filter) + "/freets"
	}

	var freets []Freet
	if err := s.getJSON(ctx, path, &freets); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Freets = freets
	return nil
}

// RefreshFollowees replaces the followee list for the logged-in user.
func (s *Store) RefreshFollowees(ctx context.Context) error {
	username := s.Username()
	if username == "" {
		return nil
	}

	var edges []Follow
	err := s.getJSON(ctx, "/api/follows?follower="+url.QueryEscape(username), &edges)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Followees = edges
	return nil
}

// RefreshEndorsedFreets replaces the logged-in user's endorsements.
func (s *Store) RefreshEndorsedFreets(ctx context.Context) error {
	username := s.Username()
	if username == "" {
		return nil
	}

	var endorsements []Endorsement
	err := s.getJSON(ctx, "/api/endorse?endorser="+url.QueryEscape(username), &endorsements)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.EndorsedFreets = endorsements
	return nil
}

// RefreshWordMasks replaces the logged-in user's word-mask rules.
// Requires the session cookie from login; logged out it clears the rules.
func (s *Store) RefreshWordMasks(ctx context.Context) error {
	if s.Username() == "" {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.state.WordMasks = []WordMask{}
		return nil
	}

	var rules []WordMask
	if err := s.getJSON(ctx, "/api/word-mask", &rules); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.WordMasks = rules
	return nil
}

// Search looks up a user by exact username and records both the query
// and the results.
func (s *Store) Search(ctx context.Context, username string) error {
	var results []UserSummary
	err := s.getJSON(ctx, "/api/users?username="+url.QueryEscape(username), &results)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SearchedUser = username
	s.state.SearchResults = results
	return nil
}

// RefreshAll refreshes everything the logged-in user sees. The first
// failure aborts the refresh.
func (s *Store) RefreshAll(ctx context.Context) error {
	if err := s.RefreshFreets(ctx); err != nil {
		return err
	}
	if err := s.RefreshFollowees(ctx); err != nil {
		return err
	}
	if err := s.RefreshEndorsedFreets(ctx); err != nil {
		return err
	}
	if s.Username() == "" {
		return nil
	}
	return s.RefreshWordMasks(ctx)
}

// EndorsedFreetIDs returns the ids of freets the logged-in user has
// endorsed.
func (s *Store) EndorsedFreetIDs() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make(map[string]bool, len(s.state.EndorsedFreets))
	for _, e := range s.state.EndorsedFreets {
		ids[e.Freet] = true
	}
	return ids
}

// FolloweesFreets returns the freets in the current feed authored by
// someone the logged-in user follows.
func (s *Store) FolloweesFreets() []Freet {
	s.mu.Lock()
	defer s.mu.Unlock()

	followed := make(map[string]bool, len(s.state.Followees))
	for _, f := range s.state.Followees {
		followed[f.Followee] = true
	}

	out := []Freet{}
	for _, f := range s.state.Freets {
		if followed[f.Author] {
			out = append(out, f)
		}
	}
	return out
}

// MaskedFreets returns the current feed with the logged-in user's
// word-mask rules applied to every freet's content.
func (s *Store) MaskedFreets() []Freet {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules := make([]wordmask.Rule, 0, len(s.state.WordMasks))
	for _, m := range s.state.WordMasks {
		rules = append(rules, wordmask.Rule{
			CensoredWord:    m.CensoredWord,
			ReplacementWord: m.ReplacementWord,
		})
	}

	out := make([]Freet, len(s.state.Freets))
	for i, f := range s.state.Freets {
		f.Content = wordmask.Apply(rules, f.Content)
		out[i] = f
	}
	return out
}

// Snapshot returns a copy of the serializable state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Save writes the state to the snapshot file. Alerts are transient and
// never persisted.
func (s *Store) Save() error {
	if s.snapshotPath == "" {
		return nil
	}

	s.mu.Lock()
	data, err := json.MarshalIndent(s.state, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	if err := os.WriteFile(s.snapshotPath, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Load restores state from the snapshot file. A missing file is not an
// error; the store just starts empty.
func (s *Store) Load() error {
	if s.snapshotPath == "" {
		return nil
	}

	data, err := os.ReadFile(s.snapshotPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read snapshot: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("unmarshal snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	return nil
}

func (s *Store) getJSON(ctx context.Context, path string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
