package models

import (
	"time"
)

// Vote is one ledger entry: a single user's endorsement of a single
// proposal. The composite unique index on (user_id, proposal_id) is
// the storage-level guarantee that a user votes at most once per
// proposal, regardless of racing requests.
type Vote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_votes_user_proposal" json:"userId"`
	ProposalID uint      `gorm:"not null;uniqueIndex:idx_votes_user_proposal;index" json:"proposalId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName specifies the table name for Vote model
func (Vote) TableName() string {
	return "votes"
}
