package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Shagunjha0111/community-section/internal/model"
	"github.com/Shagunjha0111/community-section/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "community.db")
	s, err := New(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUsers(t *testing.T, s store.Store, refs ...model.UserRef) {
	t.Helper()
	for _, ref := range refs {
		require.NoError(t, s.Users().Put(context.Background(), ref))
	}
}

func TestUsersGetByIDAndName(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s,
		model.UserRef{ID: "1", DisplayName: "Alice"},
		model.UserRef{ID: "2", DisplayName: "Bob"},
	)

	byID, err := s.Users().Get(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "Alice", byID.DisplayName)

	byName, err := s.Users().Get(ctx, "Bob")
	require.NoError(t, err)
	require.Equal(t, "2", byName.ID)

	_, err = s.Users().Get(ctx, "nobody")
	require.ErrorIs(t, err, model.ErrUnknownUser)
}

func TestSubmitIsIdempotentWhilePending(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.Requests().Submit(ctx, "u1", "u2")
	require.NoError(t, err)
	require.True(t, created)

	created, err = s.Requests().Submit(ctx, "u1", "u2")
	require.NoError(t, err)
	require.False(t, created, "second submit while pending must be a no-op")

	// one pending row in each participant's view, nothing more
	mine, err := s.Requests().ListFor(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, model.DirectionOutgoing, mine[0].Direction)
	require.Equal(t, model.StatusPending, mine[0].Status)

	theirs, err := s.Requests().ListFor(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	require.Equal(t, model.DirectionIncoming, theirs[0].Direction)
}

func TestSubmitOppositeDirectionIsDistinct(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.Requests().Submit(ctx, "u1", "u2")
	require.NoError(t, err)
	require.True(t, created)

	// direction matters for ledger bookkeeping: (u2,u1) is its own pair
	created, err = s.Requests().Submit(ctx, "u2", "u1")
	require.NoError(t, err)
	require.True(t, created)

	mine, err := s.Requests().ListFor(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
}

func TestAcceptFlipsOnceThenNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Requests().Submit(ctx, "u1", "u2")
	require.NoError(t, err)

	accepted, err := s.Requests().Accept(ctx, "u1", "u2")
	require.NoError(t, err)
	require.True(t, accepted)

	accepted, err = s.Requests().Accept(ctx, "u1", "u2")
	require.NoError(t, err)
	require.False(t, accepted, "second accept must not observe a pending row")

	// both views now show accepted
	for _, participant := range []string{"u1", "u2"} {
		reqs, err := s.Requests().ListFor(ctx, participant)
		require.NoError(t, err)
		require.Len(t, reqs, 1)
		require.Equal(t, model.StatusAccepted, reqs[0].Status)
	}
}

func TestAcceptMissingPairNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	accepted, err := s.Requests().Accept(ctx, "u1", "u2")
	require.NoError(t, err)
	require.False(t, accepted)
}

func TestClearIsAsymmetric(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Requests().Submit(ctx, "u1", "u2")
	require.NoError(t, err)

	require.NoError(t, s.Requests().Clear(ctx, "u1"))

	mine, err := s.Requests().ListFor(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, mine)

	// the counterpart still sees the exchange
	theirs, err := s.Requests().ListFor(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	require.Equal(t, model.StatusPending, theirs[0].Status)
}

func TestMaterializeDeduplicatesUnorderedPair(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := model.UserRef{ID: "1", DisplayName: "Alice"}
	bob := model.UserRef{ID: "2", DisplayName: "Bob"}

	created, err := s.Connections().Materialize(ctx, alice, bob)
	require.NoError(t, err)
	require.True(t, created)

	// same pair, both orientations
	created, err = s.Connections().Materialize(ctx, alice, bob)
	require.NoError(t, err)
	require.False(t, created)
	created, err = s.Connections().Materialize(ctx, bob, alice)
	require.NoError(t, err)
	require.False(t, created)

	conns, err := s.Connections().List(ctx)
	require.NoError(t, err)
	require.Len(t, conns, 1)
	require.True(t, conns[0].Links("1", "2"))
	require.Equal(t, "Alice", conns[0].UserA.DisplayName)
}

func TestRemoveMatchesEitherOrientation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Connections().Materialize(ctx,
		model.UserRef{ID: "1", DisplayName: "Alice"},
		model.UserRef{ID: "2", DisplayName: "Bob"})
	require.NoError(t, err)

	removed, err := s.Connections().Remove(ctx, "2", "1")
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = s.Connections().Remove(ctx, "1", "2")
	require.NoError(t, err)
	require.False(t, removed, "remove succeeds at most once")
}

func TestMessageIDsIncreaseAndHistoryIsSymmetric(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := model.UserRef{ID: "1", DisplayName: "Alice"}
	bob := model.UserRef{ID: "2", DisplayName: "Bob"}

	m1, err := s.Messages().Append(ctx, alice, "2", "hi")
	require.NoError(t, err)
	m2, err := s.Messages().Append(ctx, bob, "1", "hello")
	require.NoError(t, err)
	m3, err := s.Messages().Append(ctx, alice, "2", "how are you")
	require.NoError(t, err)
	require.Greater(t, m2.ID, m1.ID)
	require.Greater(t, m3.ID, m2.ID)

	// unrelated traffic must not leak into the pair's history
	_, err = s.Messages().Append(ctx, alice, "3", "other thread")
	require.NoError(t, err)

	hist, err := s.Messages().History(ctx, "1", "2")
	require.NoError(t, err)
	require.Len(t, hist, 3)
	require.Equal(t, "hi", hist[0].Body)
	require.Equal(t, "hello", hist[1].Body)
	require.Equal(t, "how are you", hist[2].Body)

	reversed, err := s.Messages().History(ctx, "2", "1")
	require.NoError(t, err)
	require.Equal(t, hist, reversed)
}

func TestConversationsNewestPerPeer(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s,
		model.UserRef{ID: "1", DisplayName: "Alice"},
		model.UserRef{ID: "2", DisplayName: "Bob"},
		model.UserRef{ID: "3", DisplayName: "Carol"},
	)
	alice := model.UserRef{ID: "1", DisplayName: "Alice"}
	bob := model.UserRef{ID: "2", DisplayName: "Bob"}

	_, err := s.Messages().Append(ctx, alice, "2", "first to bob")
	require.NoError(t, err)
	_, err = s.Messages().Append(ctx, alice, "3", "to carol")
	require.NoError(t, err)
	_, err = s.Messages().Append(ctx, bob, "1", "bob replies")
	require.NoError(t, err)

	convs, err := s.Messages().Conversations(ctx, "1")
	require.NoError(t, err)
	require.Len(t, convs, 2)

	// newest exchange first, one entry per peer
	require.Equal(t, "2", convs[0].Peer.ID)
	require.Equal(t, "Bob", convs[0].Peer.DisplayName)
	require.Equal(t, "bob replies", convs[0].LastMessage)
	require.Equal(t, "3", convs[1].Peer.ID)
	require.Equal(t, "Carol", convs[1].Peer.DisplayName)
	require.Equal(t, "to carol", convs[1].LastMessage)
}
