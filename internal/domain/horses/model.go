package horses

import (
	"time"

	"gorm.io/datatypes"
)

type Feeding struct {
	Food        string `json:"food"`
	Quantity    string `json:"quantity"`
	Measurement string `json:"measurement,omitempty"`
}

type Horse struct {
	ID        string                       `gorm:"type:uuid;primaryKey"`
	OwnerID   string                       `gorm:"type:uuid;not null;index"`
	Name      string                       `gorm:"not null"`
	Breed     string                       `gorm:"not null"`
	Age       int                          `gorm:"not null"`
	Color     string                       `gorm:"not null"`
	Feedings  datatypes.JSONSlice[Feeding] `gorm:"type:jsonb;not null"`
	CreatedAt time.Time                    `gorm:"autoCreateTime"`
	UpdatedAt time.Time                    `gorm:"autoUpdateTime"`
}

// HorseInput carries every mutable field. An empty ID creates a new horse; otherwise the
// stored horse is replaced as a whole, feedings included.
type HorseInput struct {
	ID       string
	Name     string
	Breed    string
	Age      int
	Color    string
	Feedings []Feeding
}
