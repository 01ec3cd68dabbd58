package golf

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MetersPerYard converts persisted yardages for metric clients.
const MetersPerYard = 0.9144

// YardsToMeters rounds to the nearest whole meter.
func YardsToMeters(yards int) int {
	return int(math.Round(float64(yards) * MetersPerYard))
}

type Course struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"not null;uniqueIndex;column:name" json:"name"`
	ClubName string    `gorm:"column:club_name" json:"club_name,omitempty"`
	City     string    `gorm:"column:city" json:"city,omitempty"`
	Country  string    `gorm:"column:country" json:"country,omitempty"`

	Tees []CourseTee `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"tees,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Course) TableName() string { return "golf_course" }

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CourseTee carries gender-specific rating/slope pairs; women's values are
// optional because many scorecards only publish the men's pair.
type CourseTee struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID          uuid.UUID `gorm:"type:uuid;not null;index;column:course_id" json:"course_id"`
	TeeName           string    `gorm:"not null;column:tee_name" json:"tee_name"`
	TeeColor          string    `gorm:"column:tee_color" json:"tee_color,omitempty"`
	CourseRatingMen   float64   `gorm:"not null;column:course_rating_men" json:"course_rating_men"`
	SlopeRatingMen    float64   `gorm:"not null;column:slope_rating_men" json:"slope_rating_men"`
	CourseRatingWomen *float64  `gorm:"column:course_rating_women" json:"course_rating_women,omitempty"`
	SlopeRatingWomen  *float64  `gorm:"column:slope_rating_women" json:"slope_rating_women,omitempty"`
	ParTotal          int       `gorm:"not null;column:par_total" json:"par_total"`
	TotalYards        int       `gorm:"not null;column:total_yards" json:"total_yards"`
	NumberOfHoles     int       `gorm:"not null;column:number_of_holes" json:"number_of_holes"`

	Holes []CourseHole `gorm:"foreignKey:TeeID;constraint:OnDelete:CASCADE" json:"holes,omitempty"`
}

func (CourseTee) TableName() string { return "course_tee" }

func (t *CourseTee) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Rating returns the rating/slope pair for the golfer's tee gender, falling
// back to the men's pair when the women's pair is not published.
func (t CourseTee) Rating(teeGender string) (rating, slope float64) {
	if teeGender == "female" && t.CourseRatingWomen != nil && t.SlopeRatingWomen != nil {
		return *t.CourseRatingWomen, *t.SlopeRatingWomen
	}
	return t.CourseRatingMen, t.SlopeRatingMen
}

type CourseHole struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TeeID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_course_hole_tee_number,priority:1;column:tee_id" json:"tee_id"`
	HoleNumber int       `gorm:"not null;uniqueIndex:ux_course_hole_tee_number,priority:2;column:hole_number" json:"hole_number"`
	Yards      int       `gorm:"not null;column:yards" json:"yards"`
	Par        int       `gorm:"not null;column:par" json:"par"`
	// Stroke allocation index (1 = hardest).
	Handicap int `gorm:"column:handicap" json:"handicap"`
}

func (CourseHole) TableName() string { return "course_hole" }

func (h *CourseHole) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
