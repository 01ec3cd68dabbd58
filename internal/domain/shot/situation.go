package shot

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSituation marks a shot description that cannot be reasoned about.
var ErrInvalidSituation = errors.New("invalid shot situation")

const (
	WindNone           = "none"
	WindHeadwind       = "headwind"
	WindTailwind       = "tailwind"
	WindCrosswindLeft  = "crosswind-left"
	WindCrosswindRight = "crosswind-right"
)

const (
	SurfaceFairway    = "fairway"
	SurfaceLightRough = "light_rough"
	SurfaceHeavyRough = "heavy_rough"
	SurfaceHardpan    = "hardpan"
	SurfaceDivot      = "divot"
	SurfaceBunker     = "bunker"

	SlopeUphill        = "uphill"
	SlopeDownhill      = "downhill"
	SlopeBallAboveFeet = "ball_above_feet"
	SlopeBallBelowFeet = "ball_below_feet"
)

// Lie holds the surface flags (at most one set) and slope flags.
type Lie struct {
	Fairway       bool `json:"fairway" gorm:"column:fairway"`
	LightRough    bool `json:"light_rough" gorm:"column:light_rough"`
	HeavyRough    bool `json:"heavy_rough" gorm:"column:heavy_rough"`
	Hardpan       bool `json:"hardpan" gorm:"column:hardpan"`
	Divot         bool `json:"divot" gorm:"column:divot"`
	Bunker        bool `json:"bunker" gorm:"column:bunker"`
	Uphill        bool `json:"uphill" gorm:"column:uphill"`
	Downhill      bool `json:"downhill" gorm:"column:downhill"`
	BallAboveFeet bool `json:"ball_above_feet" gorm:"column:ball_above_feet"`
	BallBelowFeet bool `json:"ball_below_feet" gorm:"column:ball_below_feet"`
}

type Ground struct {
	WetGround  bool `json:"wet_ground" gorm:"column:wet_ground"`
	FirmGround bool `json:"firm_ground" gorm:"column:firm_ground"`
}

// Situation is what the golfer reports before a shot. Distances are meters,
// wind speed is m/s.
type Situation struct {
	DistanceToFlag float64 `json:"distance_to_flag" gorm:"not null;column:distance_to_flag"`
	WindSpeed      float64 `json:"wind_speed" gorm:"not null;column:wind_speed"`
	WindDirection  string  `json:"wind_direction" gorm:"column:wind_direction"`
	Lie
	Ground
}

func (l Lie) surfaces() []string {
	var out []string
	for _, s := range []struct {
		on   bool
		name string
	}{
		{l.Fairway, SurfaceFairway},
		{l.LightRough, SurfaceLightRough},
		{l.HeavyRough, SurfaceHeavyRough},
		{l.Hardpan, SurfaceHardpan},
		{l.Divot, SurfaceDivot},
		{l.Bunker, SurfaceBunker},
	} {
		if s.on {
			out = append(out, s.name)
		}
	}
	return out
}

// SurfaceCount is the number of surface flags set.
func (l Lie) SurfaceCount() int { return len(l.surfaces()) }

// Surface returns the single selected surface, defaulting to fairway.
func (l Lie) Surface() string {
	if s := l.surfaces(); len(s) > 0 {
		return s[0]
	}
	return SurfaceFairway
}

// Slopes lists the active slope flags in a fixed order.
func (l Lie) Slopes() []string {
	var out []string
	if l.Uphill {
		out = append(out, SlopeUphill)
	}
	if l.Downhill {
		out = append(out, SlopeDownhill)
	}
	if l.BallAboveFeet {
		out = append(out, SlopeBallAboveFeet)
	}
	if l.BallBelowFeet {
		out = append(out, SlopeBallBelowFeet)
	}
	return out
}

// Condition is "wet", "firm" or "normal".
func (g Ground) Condition() string {
	switch {
	case g.WetGround:
		return "wet"
	case g.FirmGround:
		return "firm"
	default:
		return "normal"
	}
}

// NormalizedWind maps an empty direction or calm air to WindNone.
func (s Situation) NormalizedWind() string {
	dir := strings.ToLower(strings.TrimSpace(s.WindDirection))
	if dir == "" || s.WindSpeed == 0 {
		return WindNone
	}
	return dir
}

func (s Situation) Validate() error {
	if s.DistanceToFlag <= 0 {
		return fmt.Errorf("%w: distance_to_flag must be positive", ErrInvalidSituation)
	}
	if s.WindSpeed < 0 {
		return fmt.Errorf("%w: wind_speed cannot be negative", ErrInvalidSituation)
	}
	switch strings.ToLower(strings.TrimSpace(s.WindDirection)) {
	case "", WindNone, WindHeadwind, WindTailwind, WindCrosswindLeft, WindCrosswindRight:
	default:
		return fmt.Errorf("%w: unknown wind_direction %q", ErrInvalidSituation, s.WindDirection)
	}
	if n := s.SurfaceCount(); n > 1 {
		return fmt.Errorf("%w: only one lie surface may be selected, got %d", ErrInvalidSituation, n)
	}
	if s.Uphill && s.Downhill {
		return fmt.Errorf("%w: uphill and downhill are exclusive", ErrInvalidSituation)
	}
	if s.BallAboveFeet && s.BallBelowFeet {
		return fmt.Errorf("%w: ball above and below feet are exclusive", ErrInvalidSituation)
	}
	if s.WetGround && s.FirmGround {
		return fmt.Errorf("%w: wet and firm ground are exclusive", ErrInvalidSituation)
	}
	return nil
}
