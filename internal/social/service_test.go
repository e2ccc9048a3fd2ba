package social

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"ripple/internal/graphstore"
	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type graphStub struct {
	readRowsFn   func(ctx context.Context, operation, cypher string, params map[string]any) ([]map[string]any, error)
	readSingleFn func(ctx context.Context, operation, cypher string, params map[string]any) (map[string]any, error)
	writeFn      func(ctx context.Context, operation, cypher string, params map[string]any) (graphstore.WriteSummary, error)
}

func (s *graphStub) ReadRows(ctx context.Context, operation, cypher string, params map[string]any) ([]map[string]any, error) {
	return s.readRowsFn(ctx, operation, cypher, params)
}
func (s *graphStub) ReadSingle(ctx context.Context, operation, cypher string, params map[string]any) (map[string]any, error) {
	return s.readSingleFn(ctx, operation, cypher, params)
}
func (s *graphStub) Write(ctx context.Context, operation, cypher string, params map[string]any) (graphstore.WriteSummary, error) {
	return s.writeFn(ctx, operation, cypher, params)
}

func noopGraph() *graphStub {
	return &graphStub{
		readRowsFn: func(context.Context, string, string, map[string]any) ([]map[string]any, error) {
			return nil, nil
		},
		readSingleFn: func(context.Context, string, string, map[string]any) (map[string]any, error) {
			return nil, nil
		},
		writeFn: func(context.Context, string, string, map[string]any) (graphstore.WriteSummary, error) {
			return graphstore.WriteSummary{}, nil
		},
	}
}

func testService(graph Querier) *Service {
	svc := NewService(graph, slog.Default())
	svc.clock = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestFollowRejectsSelfFollow(t *testing.T) {
	graph := noopGraph()
	writes := 0
	graph.writeFn = func(context.Context, string, string, map[string]any) (graphstore.WriteSummary, error) {
		writes++
		return graphstore.WriteSummary{}, nil
	}

	svc := testService(graph)
	invalidated := 0
	svc.Events().Subscribe(func(string) { invalidated++ })

	_, err := svc.Follow(context.Background(), "alice", "alice")
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Zero(t, writes)
	assert.Zero(t, invalidated)
}

func TestFollowCreatesEdgeAndInvalidatesBothUsers(t *testing.T) {
	graph := noopGraph()
	graph.writeFn = func(_ context.Context, operation, _ string, params map[string]any) (graphstore.WriteSummary, error) {
		assert.Equal(t, "follow", operation)
		assert.Equal(t, "alice", params["follower"])
		assert.Equal(t, "bob", params["followee"])
		return graphstore.WriteSummary{RelationshipsCreated: 1}, nil
	}

	svc := testService(graph)
	var notified []string
	svc.Events().Subscribe(func(userID string) { notified = append(notified, userID) })

	created, err := svc.Follow(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.True(t, created)
	assert.ElementsMatch(t, []string{"alice", "bob"}, notified)
}

func TestFollowIdempotentRepeatStillInvalidates(t *testing.T) {
	graph := noopGraph()
	// MERGE on an existing edge creates nothing.
	graph.writeFn = func(context.Context, string, string, map[string]any) (graphstore.WriteSummary, error) {
		return graphstore.WriteSummary{RelationshipsCreated: 0}, nil
	}

	svc := testService(graph)
	notified := 0
	svc.Events().Subscribe(func(string) { notified++ })

	created, err := svc.Follow(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 2, notified)
}

func TestFollowPropagatesStoreErrorWithoutInvalidation(t *testing.T) {
	graph := noopGraph()
	graph.writeFn = func(context.Context, string, string, map[string]any) (graphstore.WriteSummary, error) {
		return graphstore.WriteSummary{}, errors.New("connection reset")
	}

	svc := testService(graph)
	notified := 0
	svc.Events().Subscribe(func(string) { notified++ })

	_, err := svc.Follow(context.Background(), "alice", "bob")
	require.Error(t, err)
	assert.Zero(t, notified)
}

func TestUnfollowMissingEdgeReturnsFalseAndInvalidates(t *testing.T) {
	graph := noopGraph()
	graph.writeFn = func(context.Context, string, string, map[string]any) (graphstore.WriteSummary, error) {
		return graphstore.WriteSummary{RelationshipsDeleted: 0}, nil
	}

	svc := testService(graph)
	var notified []string
	svc.Events().Subscribe(func(userID string) { notified = append(notified, userID) })

	removed, err := svc.Unfollow(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.ElementsMatch(t, []string{"alice", "bob"}, notified)
}

func TestUnfollowRemovesEdge(t *testing.T) {
	graph := noopGraph()
	graph.writeFn = func(context.Context, string, string, map[string]any) (graphstore.WriteSummary, error) {
		return graphstore.WriteSummary{RelationshipsDeleted: 1}, nil
	}

	svc := testService(graph)
	removed, err := svc.Unfollow(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestFollowersCount(t *testing.T) {
	graph := noopGraph()
	graph.readSingleFn = func(_ context.Context, operation, _ string, params map[string]any) (map[string]any, error) {
		assert.Equal(t, "followers_count", operation)
		assert.Equal(t, "alice", params["id"])
		return map[string]any{"count": int64(42)}, nil
	}

	svc := testService(graph)
	n, err := svc.FollowersCount(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

func TestListFollowersMapsRecords(t *testing.T) {
	followedAt := time.Date(2025, 5, 30, 9, 0, 0, 0, time.UTC)
	graph := noopGraph()
	graph.readRowsFn = func(_ context.Context, _, _ string, params map[string]any) ([]map[string]any, error) {
		assert.Equal(t, 0, params["offset"])
		assert.Equal(t, 20, params["limit"], "limit defaults when non-positive")
		return []map[string]any{
			{"id": "bob", "displayName": "Bob", "followedAt": followedAt},
		}, nil
	}

	svc := testService(graph)
	followers, err := svc.ListFollowers(context.Background(), "alice", -5, 0)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, models.FollowerInfo{ID: "bob", DisplayName: "Bob", FollowedAt: followedAt}, followers[0])
}

func TestIsMutualFollowRequiresBothDirections(t *testing.T) {
	edges := map[[2]string]bool{
		{"alice", "bob"}: true,
		{"bob", "alice"}: false,
		{"bob", "carol"}: true,
		{"carol", "bob"}: true,
	}
	graph := noopGraph()
	graph.readSingleFn = func(_ context.Context, _, _ string, params map[string]any) (map[string]any, error) {
		key := [2]string{params["a"].(string), params["b"].(string)}
		return map[string]any{"following": edges[key]}, nil
	}

	svc := testService(graph)

	mutual, err := svc.IsMutualFollow(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.False(t, mutual, "one direction only")

	mutual, err = svc.IsMutualFollow(context.Background(), "bob", "carol")
	require.NoError(t, err)
	assert.True(t, mutual)
}

func TestSocialDistanceIdenticalUsersSkipsQuery(t *testing.T) {
	graph := noopGraph()
	queried := false
	graph.readSingleFn = func(context.Context, string, string, map[string]any) (map[string]any, error) {
		queried = true
		return nil, nil
	}

	svc := testService(graph)
	d, err := svc.SocialDistance(context.Background(), "alice", "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, d)
	assert.False(t, queried)
}

func TestSocialDistanceDirectFollow(t *testing.T) {
	graph := noopGraph()
	graph.readSingleFn = func(context.Context, string, string, map[string]any) (map[string]any, error) {
		return map[string]any{"distance": int64(1)}, nil
	}

	svc := testService(graph)
	d, err := svc.SocialDistance(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, d)
}

func TestSocialDistanceUnreachableWithinBound(t *testing.T) {
	graph := noopGraph()
	graph.readSingleFn = func(context.Context, string, string, map[string]any) (map[string]any, error) {
		return nil, nil
	}

	svc := testService(graph)
	d, err := svc.SocialDistance(context.Background(), "alice", "zed")
	require.NoError(t, err)
	assert.Equal(t, models.SocialDistanceUnreachable, d)
}

func TestFriendsOfFriendsMapsAndTags(t *testing.T) {
	graph := noopGraph()
	graph.readRowsFn = func(_ context.Context, operation, _ string, params map[string]any) ([]map[string]any, error) {
		assert.Equal(t, "friends_of_friends", operation)
		assert.Equal(t, FriendsOfFriendsLimit, params["limit"])
		return []map[string]any{
			{"id": "carol", "displayName": "Carol", "connectors": int64(3)},
			{"id": "dave", "displayName": "Dave", "connectors": int64(1)},
		}, nil
	}

	svc := testService(graph)
	fof, err := svc.FriendsOfFriends(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, fof, 2)
	assert.Equal(t, "carol", fof[0].ID)
	assert.Equal(t, 3.0, fof[0].Score)
	assert.Equal(t, models.ReasonFollowedByFriends, fof[0].Reason)
}

func TestRecommendedContentCreatorsMergesSignals(t *testing.T) {
	graph := noopGraph()
	graph.readRowsFn = func(_ context.Context, operation, _ string, _ map[string]any) ([]map[string]any, error) {
		switch operation {
		case "creators_followed_by_friends":
			return []map[string]any{
				{"id": "carol", "score": int64(3)},
				{"id": "dave", "score": int64(2)},
			}, nil
		case "creators_popular_in_network":
			return []map[string]any{
				{"id": "dave", "score": int64(5)}, // beats the friend signal
				{"id": "erin", "score": int64(2)},
			}, nil
		}
		t.Fatalf("unexpected operation %q", operation)
		return nil, nil
	}

	svc := testService(graph)
	creators, err := svc.RecommendedContentCreators(context.Background(), "alice", 10)
	require.NoError(t, err)
	require.Len(t, creators, 3)

	assert.Equal(t, "dave", creators[0].ID)
	assert.Equal(t, 5.0, creators[0].Score)
	assert.Equal(t, models.ReasonPopularInNetwork, creators[0].Reason, "higher-scoring signal wins on duplicates")

	assert.Equal(t, "carol", creators[1].ID)
	assert.Equal(t, models.ReasonFollowedByFriends, creators[1].Reason)

	assert.Equal(t, "erin", creators[2].ID)
}

func TestRecommendedContentCreatorsDeterministicTieBreak(t *testing.T) {
	graph := noopGraph()
	graph.readRowsFn = func(_ context.Context, operation, _ string, _ map[string]any) ([]map[string]any, error) {
		if operation == "creators_followed_by_friends" {
			return []map[string]any{
				{"id": "zoe", "score": int64(2)},
				{"id": "amy", "score": int64(2)},
			}, nil
		}
		return nil, nil
	}

	svc := testService(graph)
	creators, err := svc.RecommendedContentCreators(context.Background(), "alice", 10)
	require.NoError(t, err)
	require.Len(t, creators, 2)
	assert.Equal(t, "amy", creators[0].ID)
	assert.Equal(t, "zoe", creators[1].ID)
}

func TestRecommendedContentCreatorsTruncatesToLimit(t *testing.T) {
	graph := noopGraph()
	graph.readRowsFn = func(_ context.Context, operation, _ string, _ map[string]any) ([]map[string]any, error) {
		if operation == "creators_followed_by_friends" {
			return []map[string]any{
				{"id": "a", "score": int64(5)},
				{"id": "b", "score": int64(4)},
				{"id": "c", "score": int64(3)},
			}, nil
		}
		return nil, nil
	}

	svc := testService(graph)
	creators, err := svc.RecommendedContentCreators(context.Background(), "alice", 2)
	require.NoError(t, err)
	require.Len(t, creators, 2)
	assert.Equal(t, "a", creators[0].ID)
	assert.Equal(t, "b", creators[1].ID)
}
