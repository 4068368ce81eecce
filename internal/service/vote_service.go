package service

import (
	"errors"

	"github.com/propuestas-api/internal/repository"
)

var (
	ErrAlreadyVoted = errors.New("already voted for this proposal")
	ErrNotVoted     = errors.New("no vote for this proposal")
)

// VoteService maintains the vote ledger: at most one vote per
// (user, proposal), with the proposal's cached vote count kept in
// step with ledger membership.
type VoteService struct {
	voteRepo     *repository.VoteRepository
	proposalRepo *repository.ProposalRepository
}

// NewVoteService creates a new VoteService
func NewVoteService(voteRepo *repository.VoteRepository, proposalRepo *repository.ProposalRepository) *VoteService {
	return &VoteService{
		voteRepo:     voteRepo,
		proposalRepo: proposalRepo,
	}
}

// Cast records a vote and returns the proposal's new vote count.
// The membership pre-check gives the friendly error in the common
// case; a racing duplicate is caught by the unique index inside
// the repository and reported the same way.
func (s *VoteService) Cast(userID, proposalID uint) (int64, error) {
	if _, err := s.proposalRepo.GetByID(proposalID); err != nil {
		return 0, err
	}

	voted, err := s.voteRepo.Exists(userID, proposalID)
	if err != nil {
		return 0, err
	}
	if voted {
		return 0, ErrAlreadyVoted
	}

	count, err := s.voteRepo.Cast(userID, proposalID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateVote) {
			return 0, ErrAlreadyVoted
		}
		return 0, err
	}

	return count, nil
}

// Retract removes a vote and returns the proposal's new vote count
func (s *VoteService) Retract(userID, proposalID uint) (int64, error) {
	if _, err := s.proposalRepo.GetByID(proposalID); err != nil {
		return 0, err
	}

	count, err := s.voteRepo.Retract(userID, proposalID)
	if err != nil {
		if errors.Is(err, repository.ErrVoteNotFound) {
			return 0, ErrNotVoted
		}
		return 0, err
	}

	return count, nil
}

// HasVoted reports whether the user has voted for the proposal
func (s *VoteService) HasVoted(userID, proposalID uint) (bool, error) {
	return s.voteRepo.Exists(userID, proposalID)
}

// RecountVotes rebuilds a proposal's cached vote count from the
// ledger and returns it
func (s *VoteService) RecountVotes(proposalID uint) (int64, error) {
	return s.voteRepo.Recount(proposalID)
}
