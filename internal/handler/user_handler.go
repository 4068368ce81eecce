package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/propuestas-api/internal/middleware"
	"github.com/propuestas-api/internal/service"
	"github.com/propuestas-api/internal/validation"
	"github.com/propuestas-api/pkg/cache"
	"github.com/propuestas-api/pkg/response"
)

// UserHandler handles profile API requests
type UserHandler struct {
	userService     *service.UserService
	proposalService *service.ProposalService
	cache           *cache.Cache
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *service.UserService, proposalService *service.ProposalService, cache *cache.Cache) *UserHandler {
	return &UserHandler{
		userService:     userService,
		proposalService: proposalService,
		cache:           cache,
	}
}

// Me returns the authenticated user's profile
// GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	response.OK(c, gin.H{"user": user.Public()})
}

// UpdateMe updates the authenticated user's profile
// PUT /api/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(middleware.CurrentUser(c).ID, &req)
	if err != nil {
		var verrs validation.Errors
		switch {
		case errors.As(err, &verrs):
			response.ValidationFailed(c, verrs.Error(), verrs)
		case errors.Is(err, service.ErrUsernameTaken):
			response.BadRequest(c, "username already in use")
		case errors.Is(err, service.ErrEmailTaken):
			response.BadRequest(c, "email already in use")
		default:
			response.InternalError(c, "failed to update profile")
		}
		return
	}

	// A rename changes the denormalized author name on proposals.
	_ = h.cache.DeleteByPrefix(c.Request.Context(), proposalCachePrefix)
	response.OK(c, gin.H{
		"message": "profile updated successfully",
		"user":    user.Public(),
	})
}

// DeleteMe deletes the authenticated user's account with all its
// proposals and votes
// DELETE /api/users/me
func (h *UserHandler) DeleteMe(c *gin.Context) {
	if err := h.userService.DeleteAccount(middleware.CurrentUser(c).ID); err != nil {
		response.InternalError(c, "failed to delete account")
		return
	}

	_ = h.cache.DeleteByPrefix(c.Request.Context(), proposalCachePrefix)
	response.OK(c, gin.H{"message": "account deleted successfully"})
}

// MyProposals lists the authenticated user's proposals
// GET /api/users/me/proposals
func (h *UserHandler) MyProposals(c *gin.Context) {
	proposals, err := h.proposalService.ListByAuthor(middleware.CurrentUser(c).ID)
	if err != nil {
		response.InternalError(c, "failed to list proposals")
		return
	}

	response.OK(c, gin.H{
		"count":     len(proposals),
		"proposals": proposals,
	})
}

// MyVotes lists the proposals the authenticated user voted for
// GET /api/users/me/votes
func (h *UserHandler) MyVotes(c *gin.Context) {
	proposals, err := h.proposalService.ListVotedBy(middleware.CurrentUser(c).ID)
	if err != nil {
		response.InternalError(c, "failed to list voted proposals")
		return
	}

	response.OK(c, gin.H{
		"count":     len(proposals),
		"proposals": proposals,
	})
}

// RegisterRoutes registers user profile routes
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	users := rg.Group("/users", auth)
	{
		users.GET("/me", h.Me)
		users.PUT("/me", h.UpdateMe)
		users.DELETE("/me", h.DeleteMe)
		users.GET("/me/proposals", h.MyProposals)
		users.GET("/me/votes", h.MyVotes)
	}
}
