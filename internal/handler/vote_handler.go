package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/propuestas-api/internal/middleware"
	"github.com/propuestas-api/internal/repository"
	"github.com/propuestas-api/internal/service"
	"github.com/propuestas-api/pkg/cache"
	"github.com/propuestas-api/pkg/response"
)

// VoteHandler handles the vote ledger API requests
type VoteHandler struct {
	voteService *service.VoteService
	cache       *cache.Cache
}

// NewVoteHandler creates a new VoteHandler
func NewVoteHandler(voteService *service.VoteService, cache *cache.Cache) *VoteHandler {
	return &VoteHandler{
		voteService: voteService,
		cache:       cache,
	}
}

// Cast handles voting for a proposal
// POST /api/proposals/:id/vote
func (h *VoteHandler) Cast(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.NotFound(c, "proposal not found")
		return
	}

	count, err := h.voteService.Cast(middleware.CurrentUser(c).ID, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProposalNotFound):
			response.NotFound(c, "proposal not found")
		case errors.Is(err, service.ErrAlreadyVoted):
			response.BadRequest(c, "you have already voted for this proposal")
		default:
			response.InternalError(c, "failed to register vote")
		}
		return
	}

	_ = h.cache.DeleteByPrefix(c.Request.Context(), proposalCachePrefix)
	response.Created(c, gin.H{
		"message":   "vote registered successfully",
		"voteCount": count,
	})
}

// Retract handles removing a vote from a proposal
// DELETE /api/proposals/:id/vote
func (h *VoteHandler) Retract(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.NotFound(c, "proposal not found")
		return
	}

	count, err := h.voteService.Retract(middleware.CurrentUser(c).ID, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProposalNotFound):
			response.NotFound(c, "proposal not found")
		case errors.Is(err, service.ErrNotVoted):
			response.BadRequest(c, "you have not voted for this proposal")
		default:
			response.InternalError(c, "failed to remove vote")
		}
		return
	}

	_ = h.cache.DeleteByPrefix(c.Request.Context(), proposalCachePrefix)
	response.OK(c, gin.H{
		"message":   "vote removed successfully",
		"voteCount": count,
	})
}

// HasVoted reports whether the caller has voted for a proposal
// GET /api/proposals/:id/votes
func (h *VoteHandler) HasVoted(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.NotFound(c, "proposal not found")
		return
	}

	hasVoted, err := h.voteService.HasVoted(middleware.CurrentUser(c).ID, id)
	if err != nil {
		response.InternalError(c, "failed to check vote")
		return
	}

	response.OK(c, gin.H{"hasVoted": hasVoted})
}

// RegisterRoutes registers vote routes under the proposals group
func (h *VoteHandler) RegisterRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	proposals := rg.Group("/proposals", auth)
	{
		proposals.POST("/:id/vote", h.Cast)
		proposals.DELETE("/:id/vote", h.Retract)
		proposals.GET("/:id/votes", h.HasVoted)
	}
}
