package user

import "time"

type User struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	Email     string    `gorm:"not null;uniqueIndex"`
	Phone     string    `gorm:"not null;default:''"`
	StableID  *string   `gorm:"type:uuid;index"`
	PushToken *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// HasStable treats an empty stable id the same as no stable.
func (u *User) HasStable() bool {
	return u.StableID != nil && *u.StableID != ""
}

func (u *User) StableRef() string {
	if u.StableID == nil {
		return ""
	}
	return *u.StableID
}
