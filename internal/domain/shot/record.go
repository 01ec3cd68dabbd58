package shot

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TimestampLayout is the wire form of a shot's correlation timestamp.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// FormatTimestamp renders t at microsecond precision in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Truncate(time.Microsecond).Format(TimestampLayout)
}

// Feedback is the golfer's verdict after playing a recommendation.
type Feedback struct {
	Liked    *bool  `json:"liked,omitempty" gorm:"column:liked"`
	ClubUsed string `json:"club_used,omitempty" gorm:"column:club_used"`
	Outcome  string `json:"outcome,omitempty" gorm:"column:outcome"`
}

// Record is the relational ledger entry for one recommendation. Its ID is the
// shot id shared by both vector namespaces; TimestampKey is the external
// correlation key used by feedback.
type Record struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"shot_id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index:idx_shot_record_user_ts,priority:1;column:user_id" json:"user_id"`
	TimestampKey string    `gorm:"not null;index:idx_shot_record_user_ts,priority:2;column:timestamp_key" json:"timestamp"`

	Situation      `gorm:"embedded"`
	Recommendation string `gorm:"type:text;not null;column:recommendation" json:"recommendation"`
	Feedback       `gorm:"embedded"`

	ConditionsText string         `gorm:"type:text;column:conditions_text" json:"-"`
	FullText       string         `gorm:"type:text;column:full_text" json:"-"`
	AgentSteps     datatypes.JSON `gorm:"column:agent_steps" json:"agent_steps,omitempty"`
	SimilarShotIDs datatypes.JSON `gorm:"column:similar_shot_ids" json:"similar_shot_ids,omitempty"`

	CreatedAt time.Time `gorm:"not null;column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at" json:"updated_at"`
}

func (Record) TableName() string { return "shot_record" }

func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
