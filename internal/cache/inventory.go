package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	PostKeyPrefix        = "post:%s"
	RecentPostsKeyPrefix = "posts:recent:%d"
	AuthorPostsKeyPrefix = "posts:author:%s"
)

const (
	PostTTL        = 10 * time.Minute
	RecentPostsTTL = 2 * time.Minute
)

func PostKey(postID string) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func RecentPostsKey(limit int) string {
	return fmt.Sprintf(RecentPostsKeyPrefix, limit)
}

func AuthorPostsKey(authorID string) string {
	return fmt.Sprintf(AuthorPostsKeyPrefix, authorID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateRecentPosts drops every cached recent-posts page. The key space
// is tiny (one key per requested page size) so a scan is fine.
func InvalidateRecentPosts(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, "posts:recent:*", 0).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}
