package models

import (
	"time"
)

// DefaultProposalImage is used when a proposal is created without an image URL
const DefaultProposalImage = "https://images.unsplash.com/photo-1557804506-669a67965ba0?w=500"

// DefaultCategory is assigned when no category is provided
const DefaultCategory = "Otros"

// Categories is the fixed set of proposal categories
var Categories = []string{
	"Tecnología",
	"Educación",
	"Salud",
	"Medio Ambiente",
	"Transporte",
	"Gastronomía",
	"Entretenimiento",
	"Deportes",
	"Social",
	"Otros",
}

// IsValidCategory reports whether c is one of the fixed categories
func IsValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Proposal represents a citizen proposal users can vote on.
// VoteCount is a cached aggregate of the vote ledger; the ledger is
// the source of truth and the counter can be rebuilt from it.
type Proposal struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Title          string    `gorm:"size:100;not null" json:"title"`
	Description    string    `gorm:"size:1000;not null" json:"description"`
	Category       string    `gorm:"size:50;not null;default:Otros;index" json:"category"`
	Image          string    `gorm:"size:500" json:"image"`
	AuthorID       uint      `gorm:"not null;index" json:"authorId"`
	AuthorUsername string    `gorm:"size:50;not null" json:"authorUsername"`
	VoteCount      int64     `gorm:"not null;default:0;index" json:"voteCount"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	// Relations
	Votes []Vote `gorm:"foreignKey:ProposalID" json:"-"`
}

// TableName specifies the table name for Proposal model
func (Proposal) TableName() string {
	return "proposals"
}
