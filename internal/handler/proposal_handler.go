package handler

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/propuestas-api/internal/middleware"
	"github.com/propuestas-api/internal/models"
	"github.com/propuestas-api/internal/repository"
	"github.com/propuestas-api/internal/service"
	"github.com/propuestas-api/internal/validation"
	"github.com/propuestas-api/pkg/cache"
	"github.com/propuestas-api/pkg/response"
)

const proposalCachePrefix = "proposals:"

// parseID parses a numeric path parameter. A malformed ID behaves
// like a missing resource, matching the 404 contract.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// ProposalHandler handles proposal API requests
type ProposalHandler struct {
	proposalService *service.ProposalService
	voteService     *service.VoteService
	cache           *cache.Cache
}

// NewProposalHandler creates a new ProposalHandler
func NewProposalHandler(proposalService *service.ProposalService, voteService *service.VoteService, cache *cache.Cache) *ProposalHandler {
	return &ProposalHandler{
		proposalService: proposalService,
		voteService:     voteService,
		cache:           cache,
	}
}

// listCacheKey escapes the user-supplied fields so values containing
// the separator cannot collide with a different query's key.
func listCacheKey(params service.ListParams) string {
	return fmt.Sprintf("%slist:%d:%d:%s:%s:%s",
		proposalCachePrefix, params.Page, params.Limit,
		url.QueryEscape(params.Search), url.QueryEscape(params.Category), url.QueryEscape(params.Sort))
}

type proposalListPayload struct {
	Proposals   []models.Proposal `json:"proposals"`
	Count       int               `json:"count"`
	Total       int64             `json:"total"`
	TotalPages  int               `json:"totalPages"`
	CurrentPage int               `json:"currentPage"`
}

// List handles the public proposal listing
// GET /api/proposals?page=&limit=&search=&category=&sort=
func (h *ProposalHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	params := service.ListParams{
		Page:     page,
		Limit:    limit,
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Sort:     c.DefaultQuery("sort", repository.SortNewest),
	}

	cacheKey := listCacheKey(params)

	var payload proposalListPayload
	if hit, err := h.cache.Get(c.Request.Context(), cacheKey, &payload); err == nil && hit {
		response.OK(c, gin.H{
			"proposals":   payload.Proposals,
			"count":       payload.Count,
			"total":       payload.Total,
			"totalPages":  payload.TotalPages,
			"currentPage": payload.CurrentPage,
		})
		return
	}

	result, err := h.proposalService.List(params)
	if err != nil {
		response.InternalError(c, "failed to list proposals")
		return
	}

	payload = proposalListPayload{
		Proposals:   result.Proposals,
		Count:       len(result.Proposals),
		Total:       result.Total,
		TotalPages:  result.TotalPages,
		CurrentPage: result.CurrentPage,
	}
	_ = h.cache.Set(c.Request.Context(), cacheKey, payload)

	response.OK(c, gin.H{
		"proposals":   payload.Proposals,
		"count":       payload.Count,
		"total":       payload.Total,
		"totalPages":  payload.TotalPages,
		"currentPage": payload.CurrentPage,
	})
}

// Get handles a single proposal read. When the caller is
// authenticated the response also reports whether they voted for it.
// GET /api/proposals/:id
func (h *ProposalHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.NotFound(c, "proposal not found")
		return
	}

	cacheKey := fmt.Sprintf("%sdetail:%d", proposalCachePrefix, id)

	var proposal *models.Proposal
	var cached models.Proposal
	if hit, err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil && hit {
		proposal = &cached
	} else {
		p, err := h.proposalService.Get(id)
		if err != nil {
			if errors.Is(err, repository.ErrProposalNotFound) {
				response.NotFound(c, "proposal not found")
				return
			}
			response.InternalError(c, "failed to load proposal")
			return
		}
		proposal = p
		_ = h.cache.Set(c.Request.Context(), cacheKey, proposal)
	}

	data := gin.H{"proposal": proposal}
	if user := middleware.CurrentUser(c); user != nil {
		hasVoted, err := h.voteService.HasVoted(user.ID, id)
		if err == nil {
			data["hasVoted"] = hasVoted
		}
	}

	response.OK(c, data)
}

// Create handles proposal creation
// POST /api/proposals
func (h *ProposalHandler) Create(c *gin.Context) {
	var req service.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "please provide title, description and category")
		return
	}

	proposal, err := h.proposalService.Create(middleware.CurrentUser(c), &req)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			response.ValidationFailed(c, verrs.Error(), verrs)
			return
		}
		response.InternalError(c, "failed to create proposal")
		return
	}

	h.invalidate(c)
	response.Created(c, gin.H{
		"message":  "proposal created successfully",
		"proposal": proposal,
	})
}

// Update handles proposal mutation by its owner
// PUT /api/proposals/:id
func (h *ProposalHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.NotFound(c, "proposal not found")
		return
	}

	var req service.UpdateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	proposal, err := h.proposalService.Update(id, middleware.CurrentUser(c).ID, &req)
	if err != nil {
		var verrs validation.Errors
		switch {
		case errors.Is(err, repository.ErrProposalNotFound):
			response.NotFound(c, "proposal not found")
		case errors.Is(err, service.ErrNotOwner):
			response.Forbidden(c, "not allowed to edit this proposal")
		case errors.As(err, &verrs):
			response.ValidationFailed(c, verrs.Error(), verrs)
		default:
			response.InternalError(c, "failed to update proposal")
		}
		return
	}

	h.invalidate(c)
	response.OK(c, gin.H{
		"message":  "proposal updated successfully",
		"proposal": proposal,
	})
}

// Delete handles proposal deletion by its owner, cascading to its
// votes
// DELETE /api/proposals/:id
func (h *ProposalHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.NotFound(c, "proposal not found")
		return
	}

	if err := h.proposalService.Delete(id, middleware.CurrentUser(c).ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrProposalNotFound):
			response.NotFound(c, "proposal not found")
		case errors.Is(err, service.ErrNotOwner):
			response.Forbidden(c, "not allowed to delete this proposal")
		default:
			response.InternalError(c, "failed to delete proposal")
		}
		return
	}

	h.invalidate(c)
	response.OK(c, gin.H{"message": "proposal deleted successfully"})
}

func (h *ProposalHandler) invalidate(c *gin.Context) {
	_ = h.cache.DeleteByPrefix(c.Request.Context(), proposalCachePrefix)
}

// RegisterRoutes registers proposal routes
func (h *ProposalHandler) RegisterRoutes(rg *gin.RouterGroup, auth, optionalAuth gin.HandlerFunc) {
	proposals := rg.Group("/proposals")
	{
		proposals.GET("", h.List)
		proposals.GET("/:id", optionalAuth, h.Get)
		proposals.POST("", auth, h.Create)
		proposals.PUT("/:id", auth, h.Update)
		proposals.DELETE("/:id", auth, h.Delete)
	}
}
