package endorse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lam-kelly/fritter/internal/events"
	"github.com/lam-kelly/fritter/internal/freets"
	"github.com/lam-kelly/fritter/internal/users"
)

type fakeRepo struct {
	endorsements []Endorsement
	names        map[string]string // user id -> username
}

func (r *fakeRepo) Insert(ctx context.Context, e Endorsement) error {
	r.endorsements = append(r.endorsements, e)
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, endorserID, freetID string) (int64, error) {
	for i, e := range r.endorsements {
		if e.EndorserID == endorserID && e.FreetID == freetID {
			r.endorsements = append(r.endorsements[:i], r.endorsements[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (r *fakeRepo) Exists(ctx context.Context, endorserID, freetID string) (bool, error) {
	for _, e := range r.endorsements {
		if e.EndorserID == endorserID && e.FreetID == freetID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) ListByFreet(ctx context.Context, freetID string) ([]PopulatedEndorsement, error) {
	out := []PopulatedEndorsement{}
	for _, e := range r.endorsements {
		if e.FreetID == freetID {
			out = append(out, r.populate(e))
		}
	}
	return out, nil
}

func (r *fakeRepo) ListByEndorser(ctx context.Context, endorserID string) ([]PopulatedEndorsement, error) {
	out := []PopulatedEndorsement{}
	for _, e := range r.endorsements {
		if e.EndorserID == endorserID {
			out = append(out, r.populate(e))
		}
	}
	return out, nil
}

func (r *fakeRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	kept := r.endorsements[:0]
	for _, e := range r.endorsements {
		if e.EndorserID != userID {
			kept = append(kept, e)
		}
	}
	r.endorsements = kept
	return nil
}

func (r *fakeRepo) populate(e Endorsement) PopulatedEndorsement {
	return PopulatedEndorsement{Endorsement: e, EndorserUsername: r.names[e.EndorserID]}
}

type fakeUserDirectory struct {
	byID map[string]*users.User
}

func (d *fakeUserDirectory) GetByID(ctx context.Context, id string) (*users.User, error) {
	if u, ok := d.byID[id]; ok {
		return u, nil
	}
	return nil, users.ErrUserNotFound
}

func (d *fakeUserDirectory) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	for _, u := range d.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, users.ErrUserNotFound
}

type fakeFreetDirectory struct {
	freets map[string]*freets.Response
}

func (d *fakeFreetDirectory) GetByID(ctx context.Context, id string) (*freets.Response, error) {
	if f, ok := d.freets[id]; ok {
		return f, nil
	}
	return nil, freets.ErrFreetNotFound
}

type capturingPublisher struct {
	published []events.Event
}

func (p *capturingPublisher) Publish(e events.Event) error {
	p.published = append(p.published, e)
	return nil
}

func newTestService() (Service, *fakeRepo, *capturingPublisher) {
	repo := &fakeRepo{names: map[string]string{"u1": "alice", "u2": "bob"}}
	udir := &fakeUserDirectory{byID: map[string]*users.User{
		"u1": {ID: "u1", Username: "alice"},
		"u2": {ID: "u2", Username: "bob"},
	}}
	fdir := &fakeFreetDirectory{freets: map[string]*freets.Response{
		"f1": {ID: "f1", Author: "bob", Content: "hello"},
		"f2": {ID: "f2", Author: "alice", Content: "hi"},
	}}
	pub := &capturingPublisher{}
	return NewService(repo, udir, fdir, pub), repo, pub
}

func TestEndorse(t *testing.T) {
	svc, repo, pub := newTestService()

	resp, err := svc.Endorse(context.Background(), "u1", "f1")
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Endorser)
	assert.Equal(t, "f1", resp.Freet)
	assert.Len(t, repo.endorsements, 1)

	require.Len(t, pub.published, 1)
	assert.Equal(t, events.TypeEndorse, pub.published[0].Type)
}

func TestEndorse_UnknownFreet(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.Endorse(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, ErrFreetNotFound)
	assert.Empty(t, repo.endorsements)
}

func TestEndorse_Duplicate(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Endorse(ctx, "u1", "f1")
	require.NoError(t, err)

	_, err = svc.Endorse(ctx, "u1", "f1")
	assert.ErrorIs(t, err, ErrAlreadyEndorsed)
	assert.Len(t, repo.endorsements, 1)
}

func TestEndorse_SameFreetDifferentUsers(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Endorse(ctx, "u1", "f1")
	require.NoError(t, err)
	_, err = svc.Endorse(ctx, "u2", "f1")
	require.NoError(t, err)
	assert.Len(t, repo.endorsements, 2)
}

func TestUnendorse(t *testing.T) {
	svc, repo, pub := newTestService()
	ctx := context.Background()

	_, err := svc.Endorse(ctx, "u1", "f1")
	require.NoError(t, err)

	require.NoError(t, svc.Unendorse(ctx, "u1", "f1"))
	assert.Empty(t, repo.endorsements)

	require.Len(t, pub.published, 2)
	assert.Equal(t, events.TypeUnendorse, pub.published[1].Type)
}

func TestUnendorse_NotEndorsed(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Unendorse(context.Background(), "u1", "f1")
	assert.ErrorIs(t, err, ErrNotEndorsed)
}

func TestUnendorse_UnknownFreet(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Unendorse(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, ErrFreetNotFound)
}

func TestListViewsAreConsistent(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Endorse(ctx, "u1", "f1")
	require.NoError(t, err)

	// the freet view and the endorser view describe the same pair
	byFreet, err := svc.ListEndorsersOfFreet(ctx, "f1")
	require.NoError(t, err)
	require.Len(t, byFreet, 1)

	byUser, err := svc.ListFreetsEndorsedByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, byUser, 1)

	assert.Equal(t, byFreet[0].ID, byUser[0].ID)
	assert.Equal(t, "alice", byFreet[0].Endorser)
	assert.Equal(t, "f1", byUser[0].Freet)
}

func TestListEndorsersOfFreet_UnknownFreet(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.ListEndorsersOfFreet(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrFreetNotFound)
}

func TestListFreetsEndorsedByUsername_EmptyUsername(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.ListFreetsEndorsedByUsername(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyUsername)
}

func TestListFreetsEndorsedByUsername_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.ListFreetsEndorsedByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCascadeDeleteForUser(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Endorse(ctx, "u1", "f1")
	require.NoError(t, err)
	_, err = svc.Endorse(ctx, "u2", "f1")
	require.NoError(t, err)

	require.NoError(t, svc.CascadeDeleteForUser(ctx, "u1"))
	require.Len(t, repo.endorsements, 1)
	assert.Equal(t, "u2", repo.endorsements[0].EndorserID)
}
