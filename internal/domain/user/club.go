package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Club is one club in a golfer's bag with its typical carry distance.
type Club struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_club_user_name,priority:1;column:user_id" json:"user_id"`
	Name          string    `gorm:"not null;uniqueIndex:ux_club_user_name,priority:2;column:name" json:"name"`
	DistanceMeter int       `gorm:"not null;column:distance_meter" json:"distance_meter"`
	Preferred     bool      `gorm:"not null;default:false;column:preferred" json:"preferred"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Club) TableName() string { return "club" }

func (c *Club) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
