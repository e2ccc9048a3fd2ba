// Package social implements domain operations over the directed follow
// graph, with invalidation events published on every mutation.
package social

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"ripple/internal/graphstore"
	"ripple/internal/models"
)

// FriendsOfFriendsLimit caps two-hop suggestion results.
const FriendsOfFriendsLimit = 10

// socialDistanceMaxHops bounds the shortest-path search.
const socialDistanceMaxHops = 3

// Querier is the graph-store access the service needs. Satisfied by
// *graphstore.Client; stubbed in tests.
type Querier interface {
	ReadRows(ctx context.Context, operation, cypher string, params map[string]any) ([]map[string]any, error)
	ReadSingle(ctx context.Context, operation, cypher string, params map[string]any) (map[string]any, error)
	Write(ctx context.Context, operation, cypher string, params map[string]any) (graphstore.WriteSummary, error)
}

// Service provides follow-graph operations. Store errors propagate to the
// caller: follow/unfollow are user-initiated actions whose failure must be
// visible.
type Service struct {
	graph  Querier
	events *EventBus
	logger *slog.Logger
	clock  func() time.Time
}

// NewService returns a Service publishing invalidations on its own bus.
func NewService(graph Querier, logger *slog.Logger) *Service {
	return &Service{
		graph:  graph,
		events: NewEventBus(),
		logger: logger,
		clock:  time.Now,
	}
}

// Events exposes the invalidation bus for subscribers.
func (s *Service) Events() *EventBus {
	return s.events
}

// CreateOrUpdateUser idempotently upserts a user node. Last write wins on
// display name.
func (s *Service) CreateOrUpdateUser(ctx context.Context, id, displayName string) error {
	if id == "" {
		return models.NewValidationError("user id is required")
	}
	_, err := s.graph.Write(ctx, "upsert_user", upsertUserQuery, map[string]any{
		"id":          id,
		"displayName": displayName,
	})
	return err
}

// Follow merges both user nodes and the FOLLOWS edge. The follow timestamp
// is set only when the edge is first created, so re-following keeps the
// original follow time. Returns whether a new edge was created. Both users'
// subscribers are notified on success: the follower's following list and
// the followee's reachability in friends-of-friends both changed.
func (s *Service) Follow(ctx context.Context, followerID, followeeID string) (bool, error) {
	if followerID == "" || followeeID == "" {
		return false, models.NewValidationError("follower and followee ids are required")
	}
	if followerID == followeeID {
		return false, models.NewValidationError("users cannot follow themselves")
	}

	summary, err := s.graph.Write(ctx, "follow", followQuery, map[string]any{
		"follower": followerID,
		"followee": followeeID,
		"now":      s.clock().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return false, err
	}

	s.events.Publish(followerID)
	s.events.Publish(followeeID)

	return summary.RelationshipsCreated > 0, nil
}

// Unfollow deletes the edge if present and reports whether one was removed.
// Invalidation fires either way; the caller cannot tell missing edges and
// removed edges apart by side effects, which keeps the operation idempotent.
func (s *Service) Unfollow(ctx context.Context, followerID, followeeID string) (bool, error) {
	if followerID == "" || followeeID == "" {
		return false, models.NewValidationError("follower and followee ids are required")
	}

	summary, err := s.graph.Write(ctx, "unfollow", unfollowQuery, map[string]any{
		"follower": followerID,
		"followee": followeeID,
	})
	if err != nil {
		return false, err
	}

	s.events.Publish(followerID)
	s.events.Publish(followeeID)

	return summary.RelationshipsDeleted > 0, nil
}

// FollowersCount returns the exact number of followers of id.
func (s *Service) FollowersCount(ctx context.Context, id string) (int64, error) {
	return s.count(ctx, "followers_count", followersCountQuery, id)
}

// FollowingCount returns the exact number of users id follows.
func (s *Service) FollowingCount(ctx context.Context, id string) (int64, error) {
	return s.count(ctx, "following_count", followingCountQuery, id)
}

func (s *Service) count(ctx context.Context, operation, query, id string) (int64, error) {
	row, err := s.graph.ReadSingle(ctx, operation, query, map[string]any{"id": id})
	if err != nil {
		return 0, err
	}
	if row == nil {
		return 0, nil
	}
	return graphstore.AsInt64(row, "count", 0), nil
}

// ListFollowers returns a page of followers, most recent relationship first.
func (s *Service) ListFollowers(ctx context.Context, id string, offset, limit int) ([]models.FollowerInfo, error) {
	return s.listRelated(ctx, "list_followers", listFollowersQuery, id, offset, limit)
}

// ListFollowing returns a page of followed users, most recent first.
func (s *Service) ListFollowing(ctx context.Context, id string, offset, limit int) ([]models.FollowerInfo, error) {
	return s.listRelated(ctx, "list_following", listFollowingQuery, id, offset, limit)
}

func (s *Service) listRelated(ctx context.Context, operation, query, id string, offset, limit int) ([]models.FollowerInfo, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.graph.ReadRows(ctx, operation, query, map[string]any{
		"id":     id,
		"offset": offset,
		"limit":  limit,
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.FollowerInfo, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.FollowerInfo{
			ID:          graphstore.AsString(row, "id", ""),
			DisplayName: graphstore.AsString(row, "displayName", ""),
			FollowedAt:  graphstore.AsTime(row, "followedAt", time.Time{}),
		})
	}
	return out, nil
}

// IsFollowing reports whether a directed FOLLOWS edge a->b exists.
func (s *Service) IsFollowing(ctx context.Context, a, b string) (bool, error) {
	row, err := s.graph.ReadSingle(ctx, "is_following", isFollowingQuery, map[string]any{
		"a": a,
		"b": b,
	})
	if err != nil {
		return false, err
	}
	if row == nil {
		return false, nil
	}
	following, _ := row["following"].(bool)
	return following, nil
}

// IsMutualFollow reports whether both directed edges exist.
func (s *Service) IsMutualFollow(ctx context.Context, a, b string) (bool, error) {
	ab, err := s.IsFollowing(ctx, a, b)
	if err != nil || !ab {
		return false, err
	}
	return s.IsFollowing(ctx, b, a)
}

// FriendsOfFriends returns up to FriendsOfFriendsLimit users followed by
// users id follows, excluding id and anyone id already follows, ranked by
// the number of distinct connectors with id as the deterministic tie-break.
func (s *Service) FriendsOfFriends(ctx context.Context, id string) ([]models.RecommendedCreator, error) {
	rows, err := s.graph.ReadRows(ctx, "friends_of_friends", friendsOfFriendsQuery, map[string]any{
		"id":    id,
		"limit": FriendsOfFriendsLimit,
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.RecommendedCreator, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.RecommendedCreator{
			ID:     graphstore.AsString(row, "id", ""),
			Score:  graphstore.AsFloat64(row, "connectors", 0),
			Reason: models.ReasonFollowedByFriends,
		})
	}
	return out, nil
}

// SocialDistance returns 0 for identical users, the shortest directed path
// length up to 3 hops, or models.SocialDistanceUnreachable.
func (s *Service) SocialDistance(ctx context.Context, a, b string) (int, error) {
	if a == b {
		return 0, nil
	}
	row, err := s.graph.ReadSingle(ctx, "social_distance", socialDistanceQuery, map[string]any{
		"a": a,
		"b": b,
	})
	if err != nil {
		return 0, err
	}
	if row == nil {
		return models.SocialDistanceUnreachable, nil
	}
	distance := int(graphstore.AsInt64(row, "distance", int64(models.SocialDistanceUnreachable)))
	if distance <= 0 || distance > socialDistanceMaxHops {
		return models.SocialDistanceUnreachable, nil
	}
	return distance, nil
}

// RecommendedContentCreators combines two independent signals: creators
// endorsed by direct follows and creators popular among second-degree
// peers. The two result sets are merged and de-duplicated here rather than
// with a query-language union, keeping each query portable and simple. When
// a creator appears in both, the higher-scoring signal wins.
func (s *Service) RecommendedContentCreators(ctx context.Context, userID string, limit int) ([]models.RecommendedCreator, error) {
	if limit <= 0 {
		limit = 10
	}
	params := map[string]any{
		"id":    userID,
		"limit": limit,
	}

	byFriends, err := s.graph.ReadRows(ctx, "creators_followed_by_friends", creatorsFollowedByFriendsQuery, params)
	if err != nil {
		return nil, err
	}
	inNetwork, err := s.graph.ReadRows(ctx, "creators_popular_in_network", creatorsPopularInNetworkQuery, params)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]models.RecommendedCreator, len(byFriends)+len(inNetwork))
	collect := func(rows []map[string]any, reason string) {
		for _, row := range rows {
			id := graphstore.AsString(row, "id", "")
			if id == "" {
				continue
			}
			candidate := models.RecommendedCreator{
				ID:     id,
				Score:  graphstore.AsFloat64(row, "score", 0),
				Reason: reason,
			}
			if existing, ok := merged[id]; ok && existing.Score >= candidate.Score {
				continue
			}
			merged[id] = candidate
		}
	}
	collect(byFriends, models.ReasonFollowedByFriends)
	collect(inNetwork, models.ReasonPopularInNetwork)

	out := make([]models.RecommendedCreator, 0, len(merged))
	for _, c := range merged {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
