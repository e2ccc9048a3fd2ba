// Package recommend produces ranked personalized and trending post feeds
// backed by a short-TTL in-memory cache with graph-driven invalidation.
package recommend

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/social"
)

const (
	// FeedTTL bounds how long a computed feed may be served from cache. An
	// entry aged exactly FeedTTL is already expired.
	FeedTTL = 15 * time.Minute

	// maxCreatorBatch caps the author set passed to the content store in a
	// single membership query.
	maxCreatorBatch = 10

	// candidateFetchSize is how many recent posts the scorer gets to pick
	// from; large enough that ranking has real candidates to reorder.
	candidateFetchSize = 100

	// cacheCap bounds the number of scored posts kept per cache entry.
	cacheCap = 50

	sourceSocialNetwork = "social_network"
	sourceTrending      = "trending"

	// trendingOwner is the sentinel owner for the non-personalized feed.
	trendingOwner = "trending"

	defaultFeedCount = 10
)

// CreatorSource yields ranked content creators for a user. Satisfied by
// *social.Service.
type CreatorSource interface {
	RecommendedContentCreators(ctx context.Context, userID string, limit int) ([]models.RecommendedCreator, error)
}

// ContentSource yields candidate posts. Satisfied by
// repository.ContentRepository.
type ContentSource interface {
	Recent(ctx context.Context, limit int) ([]*models.Post, error)
	RecentByAuthors(ctx context.Context, authorIDs []string, limit int) ([]*models.Post, error)
}

type feedKey struct {
	owner  string
	source string
	count  int
}

type feedEntry struct {
	posts      []models.ScoredPost
	owner      string
	source     string
	capturedAt time.Time
}

// Engine computes recommendation feeds and owns their cache. All public
// methods degrade to a best-effort post list; they never return an error.
type Engine struct {
	graph   CreatorSource
	content ContentSource
	logger  *slog.Logger
	clock   func() time.Time

	mu    sync.Mutex
	cache map[feedKey]feedEntry

	sub *social.Subscription
}

// NewEngine builds an engine subscribed to the invalidation bus. Callers
// must Close the engine to release the subscription.
func NewEngine(graph CreatorSource, content ContentSource, bus *social.EventBus, logger *slog.Logger) *Engine {
	e := &Engine{
		graph:   graph,
		content: content,
		logger:  logger,
		clock:   time.Now,
		cache:   make(map[feedKey]feedEntry),
	}
	if bus != nil {
		e.sub = bus.Subscribe(e.invalidateUser)
	}
	return e
}

// Close releases the invalidation subscription.
func (e *Engine) Close() {
	e.sub.Unsubscribe()
}

// GetRecommendedPosts returns up to count scored posts for userID, excluding
// any post whose ID appears in excludeIDs. An empty userID serves the
// trending feed. Failures along the personalized path fall back to trending
// content; the result may be empty but the call never fails.
func (e *Engine) GetRecommendedPosts(ctx context.Context, userID string, count int, excludeIDs []string) []models.ScoredPost {
	if count <= 0 {
		count = defaultFeedCount
	}
	if userID == "" {
		return e.GetTrendingPosts(ctx, count)
	}

	key := feedKey{owner: userID, source: sourceSocialNetwork, count: count}
	if cached, ok := e.lookup(key); ok {
		if len(excludeIDs) == 0 {
			observability.FeedCacheEvents.WithLabelValues("hit").Inc()
			return top(cached, count)
		}
		filtered := excludePosts(cached, excludeIDs)
		// Serve the filtered slice only while it can still cover at least
		// half the requested count; below that, recompute.
		if len(filtered)*2 >= count {
			observability.FeedCacheEvents.WithLabelValues("hit_filtered").Inc()
			return top(filtered, count)
		}
	}
	observability.FeedCacheEvents.WithLabelValues("miss").Inc()

	creators, err := e.graph.RecommendedContentCreators(ctx, userID, maxCreatorBatch)
	if err != nil {
		return e.fallbackToTrending(ctx, key, "creator_query_failed", err)
	}
	if len(creators) == 0 {
		return e.fallbackToTrending(ctx, key, "no_creators", nil)
	}

	authorIDs := make([]string, 0, len(creators))
	creatorByID := make(map[string]models.RecommendedCreator, len(creators))
	for _, c := range creators {
		authorIDs = append(authorIDs, c.ID)
		creatorByID[c.ID] = c
	}

	posts, err := e.content.RecentByAuthors(ctx, authorIDs, candidateFetchSize)
	if err != nil {
		return e.fallbackToTrending(ctx, key, "content_query_failed", err)
	}

	ranked := rankPosts(posts, creatorByID, e.clock())
	ranked = excludePosts(ranked, excludeIDs)
	ranked = e.store(key, ranked)
	return top(ranked, count)
}

// GetTrendingPosts returns up to count posts ranked purely by
// engagement-over-time decay. Errors are logged and yield an empty list.
func (e *Engine) GetTrendingPosts(ctx context.Context, count int) []models.ScoredPost {
	if count <= 0 {
		count = defaultFeedCount
	}

	key := feedKey{owner: trendingOwner, source: sourceTrending, count: count}
	if cached, ok := e.lookup(key); ok {
		observability.FeedCacheEvents.WithLabelValues("hit").Inc()
		return top(cached, count)
	}
	observability.FeedCacheEvents.WithLabelValues("miss").Inc()

	posts, err := e.content.Recent(ctx, candidateFetchSize)
	if err != nil {
		e.logger.Error("trending feed fetch failed", "error", err)
		observability.FeedFallbacks.WithLabelValues("trending_unavailable").Inc()
		return []models.ScoredPost{}
	}

	ranked := e.store(key, rankTrending(posts, e.clock()))
	return top(ranked, count)
}

// Preload warms both the trending feed and the user's personalized feed so
// the first interactive request hits cache.
func (e *Engine) Preload(ctx context.Context, userID string) {
	e.GetTrendingPosts(ctx, defaultFeedCount)
	if userID != "" {
		e.GetRecommendedPosts(ctx, userID, defaultFeedCount, nil)
	}
}

// fallbackToTrending serves the trending feed in place of a personalized one
// and caches it under the personalized key, so repeated calls for a user
// without usable graph data stay cache hits instead of recomputing.
func (e *Engine) fallbackToTrending(ctx context.Context, key feedKey, cause string, err error) []models.ScoredPost {
	if err != nil {
		e.logger.Error("personalized feed degraded to trending",
			"user_id", key.owner, "cause", cause, "error", err)
	} else {
		e.logger.Debug("personalized feed degraded to trending",
			"user_id", key.owner, "cause", cause)
	}
	observability.FeedFallbacks.WithLabelValues(cause).Inc()

	posts := e.GetTrendingPosts(ctx, key.count)
	e.store(key, posts)
	return posts
}

// lookup returns a copy-safe view of a live cache entry. Expiry is lazy:
// stale entries are dropped here on read.
func (e *Engine) lookup(key feedKey) ([]models.ScoredPost, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.cache[key]
	if !ok {
		return nil, false
	}
	if e.clock().Sub(entry.capturedAt) >= FeedTTL {
		delete(e.cache, key)
		observability.FeedCacheEvents.WithLabelValues("expired").Inc()
		return nil, false
	}
	return entry.posts, true
}

// store caps the list at cacheCap, caches it, and returns the capped list
// so fresh computes serve exactly what later cache hits will.
func (e *Engine) store(key feedKey, posts []models.ScoredPost) []models.ScoredPost {
	if len(posts) > cacheCap {
		posts = posts[:cacheCap]
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache[key] = feedEntry{
		posts:      posts,
		owner:      key.owner,
		source:     key.source,
		capturedAt: e.clock(),
	}
	return posts
}

// invalidateUser evicts every cache entry owned by userID. The cache is
// small and bounded, so a linear scan is fine.
func (e *Engine) invalidateUser(userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for key, entry := range e.cache {
		if entry.owner == userID {
			delete(e.cache, key)
			observability.FeedCacheEvents.WithLabelValues("invalidated").Inc()
		}
	}
}

func excludePosts(posts []models.ScoredPost, excludeIDs []string) []models.ScoredPost {
	if len(excludeIDs) == 0 {
		return posts
	}
	excluded := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}
	out := make([]models.ScoredPost, 0, len(posts))
	for _, p := range posts {
		if _, skip := excluded[p.Post.ID]; skip {
			continue
		}
		out = append(out, p)
	}
	return out
}

func top(posts []models.ScoredPost, count int) []models.ScoredPost {
	if len(posts) > count {
		posts = posts[:count]
	}
	return posts
}
