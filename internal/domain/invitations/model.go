package invitations

import "time"

const StatusPending = "pending"

type Invitation struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	InvitedUserID string    `gorm:"type:uuid;not null;uniqueIndex"`
	InvitedBy     string    `gorm:"type:uuid;not null"`
	StableID      string    `gorm:"type:uuid;not null;index"`
	StableName    string    `gorm:"not null"`
	Status        string    `gorm:"type:varchar(16);not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}
