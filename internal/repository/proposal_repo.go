package repository

import (
	"errors"
	"strings"

	"github.com/propuestas-api/internal/models"
	"gorm.io/gorm"
)

var (
	ErrProposalNotFound = errors.New("proposal not found")
)

// Sort keys accepted by List. Unknown keys fall back to SortNewest.
const (
	SortNewest    = "-createdAt"
	SortOldest    = "createdAt"
	SortMostVoted = "-voteCount"
)

// ProposalListParams narrows and pages the proposal listing
type ProposalListParams struct {
	Page     int
	PageSize int
	Search   string
	Category string
	Sort     string
}

// ProposalRepository handles proposal data access
type ProposalRepository struct {
	db *gorm.DB
}

// NewProposalRepository creates a new ProposalRepository
func NewProposalRepository(db *gorm.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// Create creates a new proposal
func (r *ProposalRepository) Create(proposal *models.Proposal) error {
	return r.db.Create(proposal).Error
}

// GetByID retrieves a proposal by ID
func (r *ProposalRepository) GetByID(id uint) (*models.Proposal, error) {
	var proposal models.Proposal
	result := r.db.First(&proposal, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, result.Error
	}
	return &proposal, nil
}

// List retrieves proposals matching the params plus the total count
// before pagination
func (r *ProposalRepository) List(params ProposalListParams) ([]models.Proposal, int64, error) {
	filtered := func() *gorm.DB {
		query := r.db.Model(&models.Proposal{})
		if params.Search != "" {
			pattern := "%" + strings.ToLower(params.Search) + "%"
			query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
		}
		if params.Category != "" {
			query = query.Where("category = ?", params.Category)
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := filtered()
	switch params.Sort {
	case SortOldest:
		query = query.Order("created_at ASC")
	case SortMostVoted:
		query = query.Order("vote_count DESC, created_at DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var proposals []models.Proposal
	offset := (params.Page - 1) * params.PageSize
	result := query.Offset(offset).Limit(params.PageSize).Find(&proposals)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return proposals, total, nil
}

// ListByAuthor retrieves all proposals created by a user, newest first
func (r *ProposalRepository) ListByAuthor(authorID uint) ([]models.Proposal, error) {
	var proposals []models.Proposal
	result := r.db.Where("author_id = ?", authorID).Order("created_at DESC").Find(&proposals)
	return proposals, result.Error
}

// ListVotedBy retrieves the proposals a user has voted for, most
// recent vote first
func (r *ProposalRepository) ListVotedBy(userID uint) ([]models.Proposal, error) {
	var proposals []models.Proposal
	result := r.db.
		Joins("JOIN votes ON votes.proposal_id = proposals.id").
		Where("votes.user_id = ?", userID).
		Order("votes.created_at DESC").
		Find(&proposals)
	return proposals, result.Error
}

// Update persists changes to a proposal
func (r *ProposalRepository) Update(proposal *models.Proposal) error {
	return r.db.Save(proposal).Error
}

// Delete removes a proposal and all votes referencing it in one
// transaction
func (r *ProposalRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("proposal_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Proposal{}, id).Error
	})
}

// DeleteByAuthor removes all proposals created by a user together
// with the votes cast on them
func (r *ProposalRepository) DeleteByAuthor(authorID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&models.Proposal{}).Where("author_id = ?", authorID).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("proposal_id IN ?", ids).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		return tx.Where("author_id = ?", authorID).Delete(&models.Proposal{}).Error
	})
}

// UpdateAuthorUsername refreshes the denormalized author name on all
// of a user's proposals after a profile rename
func (r *ProposalRepository) UpdateAuthorUsername(authorID uint, username string) error {
	return r.db.Model(&models.Proposal{}).
		Where("author_id = ?", authorID).
		Update("author_username", username).Error
}
