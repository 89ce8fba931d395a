package announcements

import "time"

const (
	DisplayDateLayout    = "02-01-2006 15:04"
	MaxTextLength        = 2000
	DefaultRetentionDays = 7
)

type Announcement struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	StableID    string    `gorm:"type:uuid;not null;index"`
	AuthorID    string    `gorm:"type:uuid;not null"`
	Text        string    `gorm:"not null"`
	DisplayDate string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null;index"`
}
