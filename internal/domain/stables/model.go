package stables

import (
	"slices"
	"time"

	"github.com/lib/pq"
)

type Stable struct {
	ID        string         `gorm:"type:uuid;primaryKey"`
	Name      string         `gorm:"not null"`
	Phone     string         `gorm:"not null;default:''"`
	Email     string         `gorm:"not null;default:''"`
	AdminID   string         `gorm:"type:uuid;not null;index"`
	Members   pq.StringArray `gorm:"type:text[];not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

// NumOfMembers is always derived from Members and never stored.
func (s *Stable) NumOfMembers() int {
	return len(s.Members)
}

func (s *Stable) HasMember(userID string) bool {
	return slices.Contains(s.Members, userID)
}

func (s *Stable) MemberIDs() []string {
	return slices.Clone([]string(s.Members))
}

type Role struct {
	IsAdmin  bool
	IsMember bool
}

func DeriveRole(stable *Stable, userID string) Role {
	if stable == nil || userID == "" {
		return Role{}
	}
	return Role{
		IsAdmin:  stable.AdminID == userID,
		IsMember: stable.HasMember(userID),
	}
}

type CreateStableInput struct {
	Name  string
	Phone string
	Email string
}
