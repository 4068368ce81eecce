package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/propuestas-api/internal/config"
	"github.com/propuestas-api/internal/handler"
	"github.com/propuestas-api/internal/middleware"
	"github.com/propuestas-api/internal/repository"
	"github.com/propuestas-api/internal/service"
	"github.com/propuestas-api/internal/testutil"
	"github.com/propuestas-api/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	db := testutil.NewTestDB(t)

	userRepo := repository.NewUserRepository(db)
	proposalRepo := repository.NewProposalRepository(db)
	voteRepo := repository.NewVoteRepository(db)

	jwtCfg := config.JWTConfig{Secret: "test-secret", ExpireHours: 1}
	authService := service.NewAuthService(userRepo, jwtCfg, 10)
	proposalService := service.NewProposalService(proposalRepo)
	voteService := service.NewVoteService(voteRepo, proposalRepo)
	userService := service.NewUserService(userRepo, proposalRepo, voteRepo)

	noCache := cache.New(nil, 0)

	router := gin.New()
	api := router.Group("/api")

	handler.NewAuthHandler(authService).RegisterRoutes(api)

	authMW := middleware.AuthMiddleware(authService)
	optionalAuthMW := middleware.OptionalAuthMiddleware(authService)

	handler.NewProposalHandler(proposalService, voteService, noCache).RegisterRoutes(api, authMW, optionalAuthMW)
	handler.NewVoteHandler(voteService, noCache).RegisterRoutes(api, authMW)
	handler.NewUserHandler(userService, proposalService, noCache).RegisterRoutes(api, authMW)

	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func registerUser(t *testing.T, router *gin.Engine, username, email string) string {
	t.Helper()

	w, resp := doRequest(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    email,
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, "register failed: %v", resp)
	token, _ := resp["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func createProposal(t *testing.T, router *gin.Engine, token string) uint {
	t.Helper()

	w, resp := doRequest(t, router, http.MethodPost, "/api/proposals", token, gin.H{
		"title":       "Plant more trees in the city",
		"description": "More green areas would improve air quality for everyone.",
		"category":    "Medio Ambiente",
	})
	require.Equal(t, http.StatusCreated, w.Code, "create failed: %v", resp)
	proposal := resp["proposal"].(map[string]any)
	return uint(proposal["id"].(float64))
}

func TestEndToEndVoteFlow(t *testing.T) {
	router := newTestRouter(t)

	token := registerUser(t, router, "alice", "a@x.com")

	// Create a proposal; it starts with zero votes.
	w, resp := doRequest(t, router, http.MethodPost, "/api/proposals", token, gin.H{
		"title":       "Plant more trees in the city",
		"description": "More green areas would improve air quality for everyone.",
		"category":    "Medio Ambiente",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, resp["success"])
	proposal := resp["proposal"].(map[string]any)
	assert.Equal(t, float64(0), proposal["voteCount"])
	id := uint(proposal["id"].(float64))

	votePath := fmt.Sprintf("/api/proposals/%d/vote", id)

	// First vote succeeds.
	w, resp = doRequest(t, router, http.MethodPost, votePath, token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(1), resp["voteCount"])

	// Voting again is rejected without touching the count.
	w, resp = doRequest(t, router, http.MethodPost, votePath, token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, resp["success"])

	// Retracting returns the count to zero.
	w, resp = doRequest(t, router, http.MethodDelete, votePath, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), resp["voteCount"])
}

func TestProposalMutationRequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	w, resp := doRequest(t, router, http.MethodPost, "/api/proposals", "", gin.H{
		"title":       "Plant more trees in the city",
		"description": "More green areas would improve air quality for everyone.",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, resp["success"])
}

func TestForeignProposalForbidden(t *testing.T) {
	router := newTestRouter(t)

	aliceToken := registerUser(t, router, "alice", "a@x.com")
	bobToken := registerUser(t, router, "bob", "b@x.com")
	id := createProposal(t, router, aliceToken)

	path := fmt.Sprintf("/api/proposals/%d", id)

	w, _ := doRequest(t, router, http.MethodPut, path, bobToken, gin.H{"title": "Hijacked by another user"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = doRequest(t, router, http.MethodDelete, path, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProposalNotFound(t *testing.T) {
	router := newTestRouter(t)

	w, _ := doRequest(t, router, http.MethodGet, "/api/proposals/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// A malformed ID behaves like a missing resource.
	w, _ = doRequest(t, router, http.MethodGet, "/api/proposals/not-a-number", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProposalDetailReportsHasVoted(t *testing.T) {
	router := newTestRouter(t)

	token := registerUser(t, router, "alice", "a@x.com")
	id := createProposal(t, router, token)
	path := fmt.Sprintf("/api/proposals/%d", id)

	// Anonymous read: no hasVoted field.
	w, resp := doRequest(t, router, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, present := resp["hasVoted"]
	assert.False(t, present)

	// Authenticated read before and after voting.
	w, resp = doRequest(t, router, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, resp["hasVoted"])

	doRequest(t, router, http.MethodPost, path+"/vote", token, nil)

	w, resp = doRequest(t, router, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["hasVoted"])

	w, resp = doRequest(t, router, http.MethodGet, path+"/votes", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["hasVoted"])
}

func TestLoginFailures(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "alice", "a@x.com")

	w, resp := doRequest(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "a@x.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, resp["success"])

	w, _ = doRequest(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "a@x.com",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterDuplicate(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "alice", "a@x.com")

	w, resp := doRequest(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice2",
		"email":    "a@x.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, resp["success"])
}

func TestRegisterNeverReturnsPassword(t *testing.T) {
	router := newTestRouter(t)

	w, resp := doRequest(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice",
		"email":    "a@x.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	user := resp["user"].(map[string]any)
	_, hasPassword := user["password"]
	_, hasHash := user["passwordHash"]
	assert.False(t, hasPassword)
	assert.False(t, hasHash)
	assert.NotContains(t, w.Body.String(), "secret1")
}

func TestListEnvelope(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "alice", "a@x.com")
	createProposal(t, router, token)

	w, resp := doRequest(t, router, http.MethodGet, "/api/proposals?page=1&limit=10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(1), resp["total"])
	assert.Equal(t, float64(1), resp["totalPages"])
	assert.Equal(t, float64(1), resp["currentPage"])
	proposals := resp["proposals"].([]any)
	assert.Len(t, proposals, 1)
}

func TestProfileLifecycle(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "alice", "a@x.com")
	id := createProposal(t, router, token)

	w, resp := doRequest(t, router, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := resp["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])

	w, resp = doRequest(t, router, http.MethodPut, "/api/users/me", token, gin.H{"username": "alicia"})
	require.Equal(t, http.StatusOK, w.Code)
	user = resp["user"].(map[string]any)
	assert.Equal(t, "alicia", user["username"])

	w, resp = doRequest(t, router, http.MethodGet, "/api/users/me/proposals", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	proposals := resp["proposals"].([]any)
	require.Len(t, proposals, 1)
	assert.Equal(t, "alicia", proposals[0].(map[string]any)["authorUsername"])

	doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/proposals/%d/vote", id), token, nil)
	w, resp = doRequest(t, router, http.MethodGet, "/api/users/me/votes", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["proposals"].([]any), 1)

	// Account deletion invalidates the session: the user behind the
	// token no longer exists.
	w, _ = doRequest(t, router, http.MethodDelete, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doRequest(t, router, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
