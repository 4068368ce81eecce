package service_test

import (
	"fmt"
	"testing"

	"github.com/propuestas-api/internal/config"
	"github.com/propuestas-api/internal/models"
	"github.com/propuestas-api/internal/repository"
	"github.com/propuestas-api/internal/service"
	"github.com/propuestas-api/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type env struct {
	db *gorm.DB

	users     *repository.UserRepository
	proposals *repository.ProposalRepository
	votes     *repository.VoteRepository

	auth        *service.AuthService
	proposalSvc *service.ProposalService
	voteSvc     *service.VoteService
	userSvc     *service.UserService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := testutil.NewTestDB(t)

	users := repository.NewUserRepository(db)
	proposals := repository.NewProposalRepository(db)
	votes := repository.NewVoteRepository(db)

	jwtCfg := config.JWTConfig{Secret: "test-secret", ExpireHours: 1}

	return &env{
		db:          db,
		users:       users,
		proposals:   proposals,
		votes:       votes,
		auth:        service.NewAuthService(users, jwtCfg, 10),
		proposalSvc: service.NewProposalService(proposals),
		voteSvc:     service.NewVoteService(votes, proposals),
		userSvc:     service.NewUserService(users, proposals, votes),
	}
}

func (e *env) registerUser(t *testing.T, username string) *models.User {
	t.Helper()
	_, user, err := e.auth.Register(&service.RegisterRequest{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "secret1",
	})
	require.NoError(t, err)
	return user
}

func (e *env) createProposal(t *testing.T, author *models.User, title string) *models.Proposal {
	t.Helper()
	proposal, err := e.proposalSvc.Create(author, &service.CreateProposalRequest{
		Title:       title,
		Description: "A sufficiently long description for the proposal.",
		Category:    "Medio Ambiente",
	})
	require.NoError(t, err)
	return proposal
}

func (e *env) reloadProposal(t *testing.T, id uint) *models.Proposal {
	t.Helper()
	proposal, err := e.proposals.GetByID(id)
	require.NoError(t, err)
	return proposal
}
