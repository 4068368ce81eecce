package repository

import (
	"errors"

	"github.com/propuestas-api/internal/models"
	"gorm.io/gorm"
)

var (
	ErrVoteNotFound = errors.New("vote not found")
	// ErrDuplicateVote is returned when the (user, proposal) pair
	// already exists in the ledger. Under racing requests this comes
	// from the unique index, not the application pre-check.
	ErrDuplicateVote = errors.New("duplicate vote")
)

// VoteRepository owns the vote ledger and the cached vote_count on
// proposals. Ledger writes and counter updates always happen in the
// same transaction; the composite unique index on votes is the sole
// arbiter of the one-vote-per-user invariant.
type VoteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new VoteRepository
func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Cast inserts a ledger entry and increments the proposal counter.
// Returns the new vote count.
func (r *VoteRepository) Cast(userID, proposalID uint) (int64, error) {
	var count int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		vote := &models.Vote{UserID: userID, ProposalID: proposalID}
		if err := tx.Create(vote).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrDuplicateVote
			}
			return err
		}
		if err := tx.Model(&models.Proposal{}).
			Where("id = ?", proposalID).
			UpdateColumn("vote_count", gorm.Expr("vote_count + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.Proposal{}).
			Where("id = ?", proposalID).
			Pluck("vote_count", &count).Error
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Retract deletes the ledger entry and decrements the proposal
// counter, never below zero. Returns the new vote count.
func (r *VoteRepository) Retract(userID, proposalID uint) (int64, error) {
	var count int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND proposal_id = ?", userID, proposalID).
			Delete(&models.Vote{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrVoteNotFound
		}
		if err := tx.Model(&models.Proposal{}).
			Where("id = ? AND vote_count > 0", proposalID).
			UpdateColumn("vote_count", gorm.Expr("vote_count - 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.Proposal{}).
			Where("id = ?", proposalID).
			Pluck("vote_count", &count).Error
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists reports ledger membership for the (user, proposal) pair
func (r *VoteRepository) Exists(userID, proposalID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Vote{}).
		Where("user_id = ? AND proposal_id = ?", userID, proposalID).
		Count(&count).Error
	return count > 0, err
}

// CountByProposal counts ledger entries for a proposal
func (r *VoteRepository) CountByProposal(proposalID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Vote{}).
		Where("proposal_id = ?", proposalID).
		Count(&count).Error
	return count, err
}

// ProposalIDsByUser lists the proposals a user has voted for
func (r *VoteRepository) ProposalIDsByUser(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Vote{}).
		Where("user_id = ?", userID).
		Pluck("proposal_id", &ids).Error
	return ids, err
}

// DeleteByUser removes all of a user's ledger entries
func (r *VoteRepository) DeleteByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.Vote{}).Error
}

// Recount rebuilds the cached vote_count from the ledger. Repair path
// for counter drift; also used by the account-deletion cascade.
func (r *VoteRepository) Recount(proposalID uint) (int64, error) {
	var count int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Vote{}).
			Where("proposal_id = ?", proposalID).
			Count(&count).Error; err != nil {
			return err
		}
		return tx.Model(&models.Proposal{}).
			Where("id = ?", proposalID).
			UpdateColumn("vote_count", count).Error
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
