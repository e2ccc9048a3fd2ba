package server

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

type MockSocialGraph struct {
	mock.Mock
}

func (m *MockSocialGraph) CreateOrUpdateUser(ctx context.Context, id, displayName string) error {
	args := m.Called(ctx, id, displayName)
	return args.Error(0)
}

func (m *MockSocialGraph) Follow(ctx context.Context, followerID, followeeID string) (bool, error) {
	args := m.Called(ctx, followerID, followeeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSocialGraph) Unfollow(ctx context.Context, followerID, followeeID string) (bool, error) {
	args := m.Called(ctx, followerID, followeeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSocialGraph) FollowersCount(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSocialGraph) FollowingCount(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSocialGraph) ListFollowers(ctx context.Context, id string, offset, limit int) ([]models.FollowerInfo, error) {
	args := m.Called(ctx, id, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FollowerInfo), args.Error(1)
}

func (m *MockSocialGraph) ListFollowing(ctx context.Context, id string, offset, limit int) ([]models.FollowerInfo, error) {
	args := m.Called(ctx, id, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FollowerInfo), args.Error(1)
}

func (m *MockSocialGraph) IsFollowing(ctx context.Context, a, b string) (bool, error) {
	args := m.Called(ctx, a, b)
	return args.Bool(0), args.Error(1)
}

func (m *MockSocialGraph) IsMutualFollow(ctx context.Context, a, b string) (bool, error) {
	args := m.Called(ctx, a, b)
	return args.Bool(0), args.Error(1)
}

func (m *MockSocialGraph) FriendsOfFriends(ctx context.Context, id string) ([]models.RecommendedCreator, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RecommendedCreator), args.Error(1)
}

func (m *MockSocialGraph) SocialDistance(ctx context.Context, a, b string) (int, error) {
	args := m.Called(ctx, a, b)
	return args.Int(0), args.Error(1)
}

func (m *MockSocialGraph) RecommendedContentCreators(ctx context.Context, userID string, limit int) ([]models.RecommendedCreator, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RecommendedCreator), args.Error(1)
}

type MockFeedProvider struct {
	mock.Mock
}

func (m *MockFeedProvider) GetRecommendedPosts(ctx context.Context, userID string, count int, excludeIDs []string) []models.ScoredPost {
	args := m.Called(ctx, userID, count, excludeIDs)
	return args.Get(0).([]models.ScoredPost)
}

func (m *MockFeedProvider) GetTrendingPosts(ctx context.Context, count int) []models.ScoredPost {
	args := m.Called(ctx, count)
	return args.Get(0).([]models.ScoredPost)
}

func (m *MockFeedProvider) Preload(ctx context.Context, userID string) {
	m.Called(ctx, userID)
}

type MockContentRepository struct {
	mock.Mock
}

func (m *MockContentRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockContentRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockContentRepository) Recent(ctx context.Context, limit int) ([]*models.Post, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockContentRepository) RecentByAuthors(ctx context.Context, authorIDs []string, limit int) ([]*models.Post, error) {
	args := m.Called(ctx, authorIDs, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockContentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockContentRepository) Like(ctx context.Context, userID, postID string) error {
	args := m.Called(ctx, userID, postID)
	return args.Error(0)
}

func (m *MockContentRepository) Unlike(ctx context.Context, userID, postID string) error {
	args := m.Called(ctx, userID, postID)
	return args.Error(0)
}
