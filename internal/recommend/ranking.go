package recommend

import (
	"math"
	"sort"
	"time"

	"ripple/internal/models"
)

// engagementWeightComments weights a comment heavier than a like: writing
// one costs more effort than tapping a heart.
const engagementWeightComments = 1.5

// rankPosts scores creator-sourced candidate posts. The final score is the
// creator's graph score plus an engagement term plus a logarithmic recency
// term. Sorting is stable so equal scores keep their input order, making
// the ranking deterministic for a fixed clock.
func rankPosts(posts []*models.Post, creators map[string]models.RecommendedCreator, now time.Time) []models.ScoredPost {
	scored := make([]models.ScoredPost, 0, len(posts))
	for _, post := range posts {
		score := 0.0
		reason := models.ReasonDefault
		if creator, ok := creators[post.AuthorID]; ok {
			score = creator.Score
			reason = creator.Reason
		}

		engagement := engagementScore(post)
		score += engagement
		score += recencyScore(post, now)

		// Posts that earn their place through engagement alone get a
		// reason the UI can show instead of the placeholder.
		if engagement > 10 && reason == models.ReasonDefault {
			reason = models.ReasonHighEngagement
		}

		scored = append(scored, models.ScoredPost{Post: post, Score: score, Reason: reason})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// rankTrending scores posts by engagement-over-time decay alone, with no
// social-graph term: the trending feed serves anonymous and fallback users.
func rankTrending(posts []*models.Post, now time.Time) []models.ScoredPost {
	scored := make([]models.ScoredPost, 0, len(posts))
	for _, post := range posts {
		scored = append(scored, models.ScoredPost{
			Post:   post,
			Score:  trendingScore(post, now),
			Reason: models.ReasonTrending,
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

func engagementScore(post *models.Post) float64 {
	return float64(post.LikesCount) + float64(post.CommentsCount)*engagementWeightComments
}

// recencyScore decays logarithmically: a fresh post scores near 10 and a
// week-old post still scores around 2.
func recencyScore(post *models.Post, now time.Time) float64 {
	hours := hoursSince(post.CreatedAt, now)
	return 10 / (1 + math.Log(1+hours))
}

// trendingScore divides engagement by sub-linear elapsed hours. Brand-new
// posts have no elapsed time to divide by and keep their raw engagement.
func trendingScore(post *models.Post, now time.Time) float64 {
	engagement := engagementScore(post)
	hours := hoursSince(post.CreatedAt, now)
	if hours == 0 {
		return engagement
	}
	return engagement / math.Pow(hours, 0.8)
}

func hoursSince(t, now time.Time) float64 {
	hours := now.Sub(t).Hours()
	if hours < 0 {
		return 0
	}
	return hours
}
