package follows

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lam-kelly/fritter/internal/events"
	"github.com/lam-kelly/fritter/internal/users"
)

// In-memory fakes. The repository keys edges by (follower, followee)
// and preserves insertion order for the list reads.

type fakeRepo struct {
	edges []Edge
	names map[string]string // user id -> username
}

func newFakeRepo(names map[string]string) *fakeRepo {
	return &fakeRepo{names: names}
}

func (r *fakeRepo) Insert(ctx context.Context, e Edge) error {
	r.edges = append(r.edges, e)
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, followerID, followeeID string) (int64, error) {
	for i, e := range r.edges {
		if e.FollowerID == followerID && e.FolloweeID == followeeID {
			r.edges = append(r.edges[:i], r.edges[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (r *fakeRepo) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	for _, e := range r.edges {
		if e.FollowerID == followerID && e.FolloweeID == followeeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) ListByFollower(ctx context.Context, followerID string) ([]PopulatedEdge, error) {
	out := []PopulatedEdge{}
	for _, e := range r.edges {
		if e.FollowerID == followerID {
			out = append(out, r.populate(e))
		}
	}
	return out, nil
}

func (r *fakeRepo) ListByFollowee(ctx context.Context, followeeID string) ([]PopulatedEdge, error) {
	out := []PopulatedEdge{}
	for _, e := range r.edges {
		if e.FolloweeID == followeeID {
			out = append(out, r.populate(e))
		}
	}
	return out, nil
}

func (r *fakeRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	kept := r.edges[:0]
	for _, e := range r.edges {
		if e.FollowerID != userID && e.FolloweeID != userID {
			kept = append(kept, e)
		}
	}
	r.edges = kept
	return nil
}

func (r *fakeRepo) populate(e Edge) PopulatedEdge {
	return PopulatedEdge{
		Edge:             e,
		FollowerUsername: r.names[e.FollowerID],
		FolloweeUsername: r.names[e.FolloweeID],
	}
}

type fakeDirectory struct {
	byID map[string]*users.User
}

func newFakeDirectory(us ...*users.User) *fakeDirectory {
	d := &fakeDirectory{byID: map[string]*users.User{}}
	for _, u := range us {
		d.byID[u.ID] = u
	}
	return d
}

func (d *fakeDirectory) GetByID(ctx context.Context, id string) (*users.User, error) {
	if u, ok := d.byID[id]; ok {
		return u, nil
	}
	return nil, users.ErrUserNotFound
}

func (d *fakeDirectory) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	for _, u := range d.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, users.ErrUserNotFound
}

type capturingPublisher struct {
	published []events.Event
}

func (p *capturingPublisher) Publish(e events.Event) error {
	p.published = append(p.published, e)
	return nil
}

func newTestService() (Service, *fakeRepo, *capturingPublisher) {
	alice := &users.User{ID: "u1", Username: "alice"}
	bob := &users.User{ID: "u2", Username: "bob"}
	carol := &users.User{ID: "u3", Username: "carol"}

	repo := newFakeRepo(map[string]string{"u1": "alice", "u2": "bob", "u3": "carol"})
	pub := &capturingPublisher{}
	return NewService(repo, newFakeDirectory(alice, bob, carol), pub), repo, pub
}

func TestFollow(t *testing.T) {
	svc, _, pub := newTestService()
	ctx := context.Background()

	resp, err := svc.Follow(ctx, "u1", "bob")
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Follower)
	assert.Equal(t, "bob", resp.Followee)
	assert.NotEmpty(t, resp.ID)

	require.Len(t, pub.published, 1)
	assert.Equal(t, events.TypeFollow, pub.published[0].Type)
	assert.Equal(t, "u1", pub.published[0].Actor)
}

func TestFollow_EmptyUsername(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Follow(context.Background(), "u1", "")
	assert.ErrorIs(t, err, ErrEmptyUsername)
}

func TestFollow_UnknownFollowee(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Follow(context.Background(), "u1", "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFollow_Self(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.Follow(context.Background(), "u1", "alice")
	assert.ErrorIs(t, err, ErrSelfFollow)
	assert.Empty(t, repo.edges)
}

func TestFollow_Duplicate(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Follow(ctx, "u1", "bob")
	require.NoError(t, err)

	_, err = svc.Follow(ctx, "u1", "bob")
	assert.ErrorIs(t, err, ErrAlreadyFollowing)
	assert.Len(t, repo.edges, 1)
}

func TestFollow_OppositeDirectionIsIndependent(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Follow(ctx, "u1", "bob")
	require.NoError(t, err)

	// bob following alice back is a distinct edge
	_, err = svc.Follow(ctx, "u2", "alice")
	require.NoError(t, err)
	assert.Len(t, repo.edges, 2)
}

func TestUnfollow(t *testing.T) {
	svc, repo, pub := newTestService()
	ctx := context.Background()

	_, err := svc.Follow(ctx, "u1", "bob")
	require.NoError(t, err)

	require.NoError(t, svc.Unfollow(ctx, "u1", "bob"))
	assert.Empty(t, repo.edges)

	require.Len(t, pub.published, 2)
	assert.Equal(t, events.TypeUnfollow, pub.published[1].Type)
}

func TestUnfollow_NotFollowing(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Unfollow(context.Background(), "u1", "bob")
	assert.ErrorIs(t, err, ErrNotFollowing)
}

func TestUnfollow_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Unfollow(context.Background(), "u1", "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListViewsAreConsistent(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Follow(ctx, "u1", "bob")
	require.NoError(t, err)
	_, err = svc.Follow(ctx, "u3", "bob")
	require.NoError(t, err)

	// alice's followees and bob's followers describe the same edge
	followees, err := svc.ListFollowees(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, followees, 1)
	assert.Equal(t, "bob", followees[0].Followee)

	followers, err := svc.ListFollowers(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, followees[0].ID, followers[0].ID)
}

func TestListFollowees_Empty(t *testing.T) {
	svc, _, _ := newTestService()

	followees, err := svc.ListFollowees(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotNil(t, followees)
	assert.Empty(t, followees)
}

func TestListFollowees_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.ListFollowees(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCascadeDeleteForUser(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Follow(ctx, "u1", "bob")
	require.NoError(t, err)
	_, err = svc.Follow(ctx, "u2", "carol")
	require.NoError(t, err)
	_, err = svc.Follow(ctx, "u3", "bob")
	require.NoError(t, err)

	// every edge touches bob, so all of them go
	require.NoError(t, svc.CascadeDeleteForUser(ctx, "u2"))
	require.Len(t, repo.edges, 0)
}

func TestCascadeDeleteForUser_KeepsUnrelatedEdges(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Follow(ctx, "u1", "bob")
	require.NoError(t, err)
	_, err = svc.Follow(ctx, "u1", "carol")
	require.NoError(t, err)

	require.NoError(t, svc.CascadeDeleteForUser(ctx, "u2"))
	require.Len(t, repo.edges, 1)
	assert.Equal(t, "u3", repo.edges[0].FolloweeID)
}
