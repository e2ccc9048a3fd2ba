package models

import "time"

// Recommendation reasons surfaced to the UI alongside scores.
const (
	ReasonFollowedByFriends = "followed_by_friends"
	ReasonPopularInNetwork  = "popular_in_network"
	ReasonHighEngagement    = "high_engagement"
	ReasonTrending          = "trending"
	ReasonDefault           = "default"
)

// SocialDistanceUnreachable is returned when no directed path exists
// within the bounded search depth.
const SocialDistanceUnreachable = -1

// FollowerInfo describes one end of a FOLLOWS edge in paginated listings.
type FollowerInfo struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	FollowedAt  time.Time `json:"followed_at"`
}

// RecommendedCreator is a content creator surfaced by the graph queries,
// scored by the number of distinct connecting followers.
type RecommendedCreator struct {
	ID     string  `json:"id"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// ScoredPost is a post augmented with a recommendation score and reason.
// It is ephemeral: computed per feed request, cached in memory, never persisted.
type ScoredPost struct {
	Post   *Post   `json:"post"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}
