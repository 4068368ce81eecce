package service

import (
	"errors"

	"github.com/propuestas-api/internal/models"
	"github.com/propuestas-api/internal/repository"
	"github.com/propuestas-api/internal/validation"
)

// UserService handles profile reads/updates and account deletion
type UserService struct {
	userRepo     *repository.UserRepository
	proposalRepo *repository.ProposalRepository
	voteRepo     *repository.VoteRepository
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo *repository.UserRepository,
	proposalRepo *repository.ProposalRepository,
	voteRepo *repository.VoteRepository,
) *UserService {
	return &UserService{
		userRepo:     userRepo,
		proposalRepo: proposalRepo,
		voteRepo:     voteRepo,
	}
}

// UpdateProfileRequest carries the updatable profile fields; empty
// strings mean "leave unchanged"
type UpdateProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Get retrieves a user by ID
func (s *UserService) Get(id uint) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

// UpdateProfile changes username and/or email, re-checking uniqueness
// against everyone but the caller. A rename is propagated to the
// denormalized author name on the user's proposals.
func (s *UserService) UpdateProfile(id uint, req *UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	renamed := false

	if req.Username != "" && req.Username != user.Username {
		if err := validation.Username(req.Username).ErrorsOrNil(); err != nil {
			return nil, err
		}
		taken, err := s.userRepo.ExistsByUsername(req.Username, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUsernameTaken
		}
		user.Username = req.Username
		renamed = true
	}

	if req.Email != "" {
		email := validation.NormalizeEmail(req.Email)
		if email != user.Email {
			if err := validation.Email(email).ErrorsOrNil(); err != nil {
				return nil, err
			}
			taken, err := s.userRepo.ExistsByEmail(email, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrEmailTaken
			}
			user.Email = email
		}
	}

	// A concurrent write can take the name or email between the
	// pre-check and the save; the unique indexes report it as the same
	// conflict.
	if err := s.userRepo.Update(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			if taken, checkErr := s.userRepo.ExistsByUsername(user.Username, id); checkErr == nil && taken {
				return nil, ErrUsernameTaken
			}
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if renamed {
		if err := s.proposalRepo.UpdateAuthorUsername(id, user.Username); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// DeleteAccount removes the user, their proposals (with all votes on
// them) and their own votes. Proposals the user voted for are
// recounted from the ledger afterwards, so their cached counts do
// not stay inflated.
func (s *UserService) DeleteAccount(id uint) error {
	if _, err := s.userRepo.GetByID(id); err != nil {
		return err
	}

	// Proposals the user voted for, minus the user's own (those are
	// about to be deleted anyway).
	votedIDs, err := s.voteRepo.ProposalIDsByUser(id)
	if err != nil {
		return err
	}
	own, err := s.proposalRepo.ListByAuthor(id)
	if err != nil {
		return err
	}
	ownSet := make(map[uint]bool, len(own))
	for _, p := range own {
		ownSet[p.ID] = true
	}

	if err := s.proposalRepo.DeleteByAuthor(id); err != nil {
		return err
	}
	if err := s.voteRepo.DeleteByUser(id); err != nil {
		return err
	}
	if err := s.userRepo.Delete(id); err != nil {
		return err
	}

	for _, pid := range votedIDs {
		if ownSet[pid] {
			continue
		}
		if _, err := s.voteRepo.Recount(pid); err != nil {
			return err
		}
	}

	return nil
}
