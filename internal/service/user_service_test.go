package service_test

import (
	"testing"

	"github.com/propuestas-api/internal/repository"
	"github.com/propuestas-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProfile(t *testing.T) {
	e := newEnv(t)
	alice := e.registerUser(t, "alice")

	user, err := e.userSvc.UpdateProfile(alice.ID, &service.UpdateProfileRequest{
		Username: "alicia",
		Email:    "Alicia@Example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "alicia", user.Username)
	assert.Equal(t, "alicia@example.com", user.Email)
}

func TestUpdateProfileConflict(t *testing.T) {
	e := newEnv(t)
	alice := e.registerUser(t, "alice")
	e.registerUser(t, "bob")

	_, err := e.userSvc.UpdateProfile(alice.ID, &service.UpdateProfileRequest{Username: "bob"})
	assert.ErrorIs(t, err, service.ErrUsernameTaken)

	_, err = e.userSvc.UpdateProfile(alice.ID, &service.UpdateProfileRequest{Email: "bob@example.com"})
	assert.ErrorIs(t, err, service.ErrEmailTaken)
}

func TestUpdateProfileIndexConflict(t *testing.T) {
	e := newEnv(t)
	alice := e.registerUser(t, "alice")
	e.registerUser(t, "bob")

	// Bypass the service pre-check the way a racing rename would: the
	// unique index rejects the save and the service reports a conflict.
	user, err := e.users.GetByID(alice.ID)
	require.NoError(t, err)
	user.Username = "bob"
	assert.ErrorIs(t, e.users.Update(user), repository.ErrDuplicateUser)
}

func TestUpdateProfileRenamePropagatesToProposals(t *testing.T) {
	e := newEnv(t)
	alice := e.registerUser(t, "alice")
	proposal := e.createProposal(t, alice, "Plant more trees in the city")

	_, err := e.userSvc.UpdateProfile(alice.ID, &service.UpdateProfileRequest{Username: "alicia"})
	require.NoError(t, err)

	assert.Equal(t, "alicia", e.reloadProposal(t, proposal.ID).AuthorUsername)
}

func TestDeleteAccountRecountsVotedProposals(t *testing.T) {
	e := newEnv(t)
	alice := e.registerUser(t, "alice")
	bob := e.registerUser(t, "bob")
	proposal := e.createProposal(t, alice, "Plant more trees in the city")

	_, err := e.voteSvc.Cast(bob.ID, proposal.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), e.reloadProposal(t, proposal.ID).VoteCount)

	require.NoError(t, e.userSvc.DeleteAccount(bob.ID))

	// The proposal survives its voter; the cached count follows the
	// ledger back down.
	p := e.reloadProposal(t, proposal.ID)
	assert.Equal(t, int64(0), p.VoteCount)

	ledger, err := e.votes.CountByProposal(proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), ledger)

	_, err = e.userSvc.Get(bob.ID)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestDeleteAccountRemovesOwnProposalsAndVotes(t *testing.T) {
	e := newEnv(t)
	alice := e.registerUser(t, "alice")
	bob := e.registerUser(t, "bob")
	proposal := e.createProposal(t, alice, "Plant more trees in the city")

	_, err := e.voteSvc.Cast(bob.ID, proposal.ID)
	require.NoError(t, err)

	require.NoError(t, e.userSvc.DeleteAccount(alice.ID))

	_, err = e.proposalSvc.Get(proposal.ID)
	assert.ErrorIs(t, err, repository.ErrProposalNotFound)

	// Bob's vote went away with the proposal.
	hasVoted, err := e.voteSvc.HasVoted(bob.ID, proposal.ID)
	require.NoError(t, err)
	assert.False(t, hasVoted)
}
