package events

import (
	"time"
)

const (
	TitleIn  = "Ind"
	TitleOut = "Ud"

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Event struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	StableID    string    `gorm:"type:uuid;not null;index"`
	Date        time.Time `gorm:"type:date;not null"`
	Time        string    `gorm:"not null;default:''"`
	Title       string    `gorm:"not null"`
	Description string    `gorm:"not null;default:''"`
	UserID      *string   `gorm:"type:uuid"`
	UserName    *string   `gorm:"type:text"`
	CreatedBy   string    `gorm:"type:uuid;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (e *Event) IsClaimed() bool {
	return e.UserID != nil && *e.UserID != ""
}

func (e *Event) ClaimedBy(userID string) bool {
	return e.IsClaimed() && *e.UserID == userID
}

type EventInput struct {
	Date        time.Time
	Time        string
	Title       string
	Description string
}

type EventPatch struct {
	Date        *time.Time
	Time        *string
	Title       *string
	Description *string
}

type ListFilter struct {
	From *time.Time
	To   *time.Time
}

type RecurringInput struct {
	Start   time.Time
	Days    int
	InTime  string
	OutTime string
}

// SlotKey identifies a generated event within a stable.
type SlotKey struct {
	Date  string
	Title string
}
