package golf

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Round is one played round. A user has at most one round with
// IsCompleted=false; a partial unique index enforces it.
type Round struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_golf_round_user_end,priority:1;column:user_id" json:"user_id"`
	CourseID   *uuid.UUID `gorm:"type:uuid;column:course_id" json:"course_id,omitempty"`
	TeeID      *uuid.UUID `gorm:"type:uuid;column:tee_id" json:"tee_id,omitempty"`
	CourseName string     `gorm:"not null;column:course_name" json:"course_name"`
	TeeName    string     `gorm:"column:tee_name" json:"tee_name,omitempty"`
	TotalHoles int        `gorm:"not null;column:total_holes" json:"total_holes"`

	// Rating/slope snapshot taken when the round starts.
	CourseRating *float64 `gorm:"column:course_rating" json:"course_rating,omitempty"`
	SlopeRating  *float64 `gorm:"column:slope_rating" json:"slope_rating,omitempty"`

	StartTime time.Time  `gorm:"not null;column:start_time" json:"start_time"`
	EndTime   *time.Time `gorm:"index:idx_golf_round_user_end,priority:2;column:end_time" json:"end_time,omitempty"`

	TotalShots         int      `gorm:"not null;default:0;column:total_shots" json:"total_shots"`
	TotalPar           int      `gorm:"not null;default:0;column:total_par" json:"total_par"`
	ScoreDifferential  *float64 `gorm:"column:score_differential" json:"score_differential,omitempty"`
	IncludedInHandicap bool     `gorm:"not null;default:false;column:included_in_handicap" json:"included_in_handicap"`
	IsCompleted        bool     `gorm:"not null;default:false;column:is_completed" json:"is_completed"`
	Notes              string   `gorm:"column:notes" json:"notes,omitempty"`

	HoleScores []HoleScore `gorm:"foreignKey:RoundID;constraint:OnDelete:CASCADE" json:"hole_scores,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Round) TableName() string { return "golf_round" }

func (r *Round) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ScoreToPar is the running total relative to par of the holes played.
func (r Round) ScoreToPar() int {
	total := 0
	for _, h := range r.HoleScores {
		if h.Strokes > 0 {
			total += h.ScoreToPar
		}
	}
	return total
}

// HoleScore is unique per (round, hole number).
type HoleScore struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RoundID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:ux_hole_score_round_hole,priority:1;column:round_id" json:"round_id"`
	HoleNumber  int        `gorm:"not null;uniqueIndex:ux_hole_score_round_hole,priority:2;column:hole_number" json:"hole_number"`
	Par         int        `gorm:"not null;column:par" json:"par"`
	Yards       int        `gorm:"not null;default:0;column:yards" json:"yards"`
	Handicap    int        `gorm:"not null;default:0;column:handicap" json:"handicap"`
	Strokes     int        `gorm:"not null;default:0;column:strokes" json:"strokes"`
	ScoreToPar  int        `gorm:"not null;default:0;column:score_to_par" json:"score_to_par"`
	Notes       string     `gorm:"column:notes" json:"notes,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (HoleScore) TableName() string { return "hole_score" }

func (h *HoleScore) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
