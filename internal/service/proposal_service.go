package service

import (
	"errors"
	"strings"

	"github.com/propuestas-api/internal/models"
	"github.com/propuestas-api/internal/repository"
	"github.com/propuestas-api/internal/validation"
)

var (
	// ErrNotOwner is returned when a caller tries to mutate a
	// proposal they did not create.
	ErrNotOwner = errors.New("caller is not the proposal owner")
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ProposalService handles proposal CRUD with ownership enforcement
type ProposalService struct {
	proposalRepo *repository.ProposalRepository
}

// NewProposalService creates a new ProposalService
func NewProposalService(proposalRepo *repository.ProposalRepository) *ProposalService {
	return &ProposalService{proposalRepo: proposalRepo}
}

// CreateProposalRequest represents the proposal creation request
type CreateProposalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Image       string `json:"image"`
}

// UpdateProposalRequest carries the mutable proposal fields; nil
// means "leave unchanged"
type UpdateProposalRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Image       *string `json:"image"`
}

// ListParams narrows and pages the proposal listing
type ListParams struct {
	Page     int
	Limit    int
	Search   string
	Category string
	Sort     string
}

// ListResult is a page of proposals plus pagination totals
type ListResult struct {
	Proposals   []models.Proposal
	Total       int64
	TotalPages  int
	CurrentPage int
}

// List returns a page of proposals matching the params
func (s *ProposalService) List(params ListParams) (*ListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = defaultPageSize
	}
	if params.Limit > maxPageSize {
		params.Limit = maxPageSize
	}

	proposals, total, err := s.proposalRepo.List(repository.ProposalListParams{
		Page:     params.Page,
		PageSize: params.Limit,
		Search:   strings.TrimSpace(params.Search),
		Category: params.Category,
		Sort:     params.Sort,
	})
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / params.Limit
	if int(total)%params.Limit > 0 {
		totalPages++
	}

	return &ListResult{
		Proposals:   proposals,
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: params.Page,
	}, nil
}

// Get retrieves a proposal by ID
func (s *ProposalService) Get(id uint) (*models.Proposal, error) {
	return s.proposalRepo.GetByID(id)
}

// Create validates and persists a new proposal owned by the author
func (s *ProposalService) Create(author *models.User, req *CreateProposalRequest) (*models.Proposal, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)

	category := req.Category
	if category == "" {
		category = models.DefaultCategory
	}
	image := req.Image
	if image == "" {
		image = models.DefaultProposalImage
	}

	if err := validation.Proposal(title, description, category, image).ErrorsOrNil(); err != nil {
		return nil, err
	}

	proposal := &models.Proposal{
		Title:          title,
		Description:    description,
		Category:       category,
		Image:          image,
		AuthorID:       author.ID,
		AuthorUsername: author.Username,
	}

	if err := s.proposalRepo.Create(proposal); err != nil {
		return nil, err
	}

	return proposal, nil
}

// Update applies the given fields to a proposal after re-validating
// them. Only the owner may update.
func (s *ProposalService) Update(id, callerID uint, req *UpdateProposalRequest) (*models.Proposal, error) {
	proposal, err := s.proposalRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if proposal.AuthorID != callerID {
		return nil, ErrNotOwner
	}

	if req.Title != nil {
		proposal.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		proposal.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		proposal.Category = *req.Category
	}
	if req.Image != nil {
		proposal.Image = *req.Image
	}

	if err := validation.Proposal(proposal.Title, proposal.Description, proposal.Category, proposal.Image).ErrorsOrNil(); err != nil {
		return nil, err
	}

	// Save refreshes UpdatedAt
	if err := s.proposalRepo.Update(proposal); err != nil {
		return nil, err
	}

	return proposal, nil
}

// Delete removes a proposal and its votes. Only the owner may delete.
func (s *ProposalService) Delete(id, callerID uint) error {
	proposal, err := s.proposalRepo.GetByID(id)
	if err != nil {
		return err
	}

	if proposal.AuthorID != callerID {
		return ErrNotOwner
	}

	return s.proposalRepo.Delete(id)
}

// ListByAuthor returns all proposals created by a user
func (s *ProposalService) ListByAuthor(userID uint) ([]models.Proposal, error) {
	return s.proposalRepo.ListByAuthor(userID)
}

// ListVotedBy returns the proposals a user has voted for
func (s *ProposalService) ListVotedBy(userID uint) ([]models.Proposal, error) {
	return s.proposalRepo.ListVotedBy(userID)
}
