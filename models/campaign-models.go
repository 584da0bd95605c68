package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Piece review statuses. Anything else must be rejected on write.
const (
	StatusPending         = "pending"
	StatusApproved        = "approved"
	StatusNeedsAdjustment = "needs_adjustment"
	StatusRejected        = "rejected"
)

type Campaign struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"not null" json:"name"`
	Client       string     `gorm:"not null" json:"client"`
	CreativeLine string     `json:"creativeLine,omitempty"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`

	// ApprovalHash is the unguessable capability for the public approval
	// link. Generated once at creation, never updated.
	ApprovalHash string `gorm:"uniqueIndex;not null" json:"approvalHash"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Pieces []Piece `gorm:"foreignKey:CampaignID" json:"pieces,omitempty"`
}

type Piece struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Filename   string    `gorm:"not null" json:"filename"`
	Mimetype   string    `json:"mimetype"`
	Status     string    `gorm:"not null;default:'pending'" json:"status"`
	Comment    string    `json:"comment"`
	CampaignID uint      `gorm:"index;not null" json:"campaignId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewApprovalHash returns a fresh 16-byte random token, hex encoded. It is
// called explicitly by the campaign create path rather than hanging off an
// ORM lifecycle hook.
func NewApprovalHash() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusApproved, StatusNeedsAdjustment, StatusRejected:
		return true
	}
	return false
}
