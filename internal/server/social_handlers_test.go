package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSocialTestApp(graph SocialGraph) *fiber.App {
	app := fiber.New()
	s := &Server{socialGraph: graph}
	s.SetupRoutes(app)
	return app
}

func TestFollowHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		mockSetup      func(m *MockSocialGraph)
		expectedStatus int
	}{
		{
			name: "New Edge",
			url:  "/api/users/alice/follow/bob",
			mockSetup: func(m *MockSocialGraph) {
				m.On("Follow", mock.Anything, "alice", "bob").Return(true, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Repeat Follow",
			url:  "/api/users/alice/follow/bob",
			mockSetup: func(m *MockSocialGraph) {
				m.On("Follow", mock.Anything, "alice", "bob").Return(false, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Self Follow",
			url:  "/api/users/alice/follow/alice",
			mockSetup: func(m *MockSocialGraph) {
				m.On("Follow", mock.Anything, "alice", "alice").
					Return(false, models.NewValidationError("users cannot follow themselves"))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Store Unavailable",
			url:  "/api/users/alice/follow/bob",
			mockSetup: func(m *MockSocialGraph) {
				m.On("Follow", mock.Anything, "alice", "bob").
					Return(false, models.NewUnavailableError("graph store unreachable", nil))
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockGraph := new(MockSocialGraph)
			tt.mockSetup(mockGraph)
			app := newSocialTestApp(mockGraph)

			req := httptest.NewRequest(http.MethodPost, tt.url, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			mockGraph.AssertExpectations(t)
		})
	}
}

func TestUnfollowHandler(t *testing.T) {
	mockGraph := new(MockSocialGraph)
	mockGraph.On("Unfollow", mock.Anything, "alice", "bob").Return(false, nil)
	app := newSocialTestApp(mockGraph)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/alice/follow/bob", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body["removed"])
}

func TestGetFollowersPassesPagination(t *testing.T) {
	mockGraph := new(MockSocialGraph)
	mockGraph.On("ListFollowers", mock.Anything, "alice", 5, 2).Return([]models.FollowerInfo{
		{ID: "bob", DisplayName: "Bob", FollowedAt: time.Now()},
	}, nil)
	app := newSocialTestApp(mockGraph)

	req := httptest.NewRequest(http.MethodGet, "/api/users/alice/followers?offset=5&limit=2", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockGraph.AssertExpectations(t)
}

func TestGetRelationshipHandler(t *testing.T) {
	mockGraph := new(MockSocialGraph)
	mockGraph.On("IsFollowing", mock.Anything, "alice", "bob").Return(true, nil)
	mockGraph.On("IsFollowing", mock.Anything, "bob", "alice").Return(true, nil)
	app := newSocialTestApp(mockGraph)

	req := httptest.NewRequest(http.MethodGet, "/api/users/alice/relationship/bob", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body["following"])
	assert.True(t, body["followed_by"])
	assert.True(t, body["mutual"])
}

func TestGetMutualFollowHandler(t *testing.T) {
	mockGraph := new(MockSocialGraph)
	mockGraph.On("IsMutualFollow", mock.Anything, "alice", "bob").Return(true, nil)
	app := newSocialTestApp(mockGraph)

	req := httptest.NewRequest(http.MethodGet, "/api/users/alice/mutual/bob", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body["mutual"])
}

func TestGetSocialDistanceHandler(t *testing.T) {
	tests := []struct {
		name      string
		distance  int
		reachable bool
	}{
		{"Direct Follow", 1, true},
		{"Unreachable", models.SocialDistanceUnreachable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockGraph := new(MockSocialGraph)
			mockGraph.On("SocialDistance", mock.Anything, "alice", "zed").Return(tt.distance, nil)
			app := newSocialTestApp(mockGraph)

			req := httptest.NewRequest(http.MethodGet, "/api/users/alice/distance/zed", nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			var body struct {
				Distance  int  `json:"distance"`
				Reachable bool `json:"reachable"`
			}
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.Equal(t, tt.distance, body.Distance)
			assert.Equal(t, tt.reachable, body.Reachable)
		})
	}
}

func TestGetFriendsOfFriendsHandler(t *testing.T) {
	mockGraph := new(MockSocialGraph)
	mockGraph.On("FriendsOfFriends", mock.Anything, "alice").Return([]models.RecommendedCreator{
		{ID: "carol", Score: 3, Reason: models.ReasonFollowedByFriends},
	}, nil)
	app := newSocialTestApp(mockGraph)

	req := httptest.NewRequest(http.MethodGet, "/api/users/alice/friends-of-friends", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockGraph.AssertExpectations(t)
}

func TestGetRecommendedCreatorsHandler(t *testing.T) {
	mockGraph := new(MockSocialGraph)
	mockGraph.On("RecommendedContentCreators", mock.Anything, "alice", 5).Return([]models.RecommendedCreator{
		{ID: "carol", Score: 4, Reason: models.ReasonPopularInNetwork},
	}, nil)
	app := newSocialTestApp(mockGraph)

	req := httptest.NewRequest(http.MethodGet, "/api/users/alice/recommended-creators?limit=5", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockGraph.AssertExpectations(t)
}

func TestUpsertUserHandler(t *testing.T) {
	mockGraph := new(MockSocialGraph)
	mockGraph.On("CreateOrUpdateUser", mock.Anything, "alice", "Alice A").Return(nil)
	app := newSocialTestApp(mockGraph)

	req := httptest.NewRequest(http.MethodPut, "/api/users/alice",
		jsonBody(t, map[string]string{"display_name": "Alice A"}))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockGraph.AssertExpectations(t)
}
