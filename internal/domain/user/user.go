package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewGolferHandicap is the index assigned to golfers without a history.
const NewGolferHandicap = 54.0

const (
	TeeGenderMale   = "male"
	TeeGenderFemale = "female"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	FirstName string    `gorm:"not null;column:first_name" json:"first_name"`
	LastName  string    `gorm:"not null;column:last_name" json:"last_name"`
	// Selects which rating/slope pair of a tee applies to this golfer.
	TeeGender string `gorm:"not null;default:'male';column:tee_gender" json:"tee_gender"`

	HandicapProfile `gorm:"embedded"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.TeeGender == "" {
		u.TeeGender = TeeGenderMale
	}
	if u.HandicapIndex == 0 && u.InitialHandicap == 0 {
		u.HandicapIndex = NewGolferHandicap
		u.InitialHandicap = NewGolferHandicap
	}
	return nil
}

// HandicapProfile is written only by the handicap updater (and by the
// golfer declaring a starting index before any round counts).
type HandicapProfile struct {
	HandicapIndex      float64    `gorm:"not null;default:54;column:handicap_index" json:"handicap_index"`
	InitialHandicap    float64    `gorm:"not null;default:54;column:initial_handicap" json:"initial_handicap"`
	LastHandicapUpdate *time.Time `gorm:"column:last_handicap_update" json:"last_handicap_update,omitempty"`
	// Reference index the caps were applied against for RoundSetKey.
	HandicapBaseline *float64 `gorm:"column:handicap_baseline" json:"-"`
	RoundSetKey      string   `gorm:"column:handicap_round_set_key" json:"-"`
}

// IsNewGolfer reports whether the current index is still the sentinel.
func (p HandicapProfile) IsNewGolfer() bool {
	return IsNewGolferIndex(p.HandicapIndex)
}

// IsNewGolferIndex reports whether index is the new-golfer sentinel.
func IsNewGolferIndex(index float64) bool {
	return index >= NewGolferHandicap
}
