package shotmemory

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yungbote/caddie-backend/internal/domain/shot"
)

// Metadata keys shared by both namespaces.
const (
	MetaText           = "text"
	MetaUserID         = "user_id"
	MetaShotID         = "shot_id"
	MetaTimestamp      = "timestamp"
	MetaDistance       = "distance_to_flag"
	MetaWindSpeed      = "wind_speed"
	MetaWindDirection  = "wind_direction"
	MetaSurface        = "lie_surface"
	MetaSlopes         = "lie_slopes"
	MetaGround         = "ground"
	MetaLiked          = "liked"
	MetaClubUsed       = "club_used"
	MetaOutcome        = "outcome"
	MetaRecommendation = "recommendation"
)

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func lieText(s shot.Situation) string {
	parts := []string{strings.ReplaceAll(s.Surface(), "_", " ")}
	for _, sl := range s.Slopes() {
		parts = append(parts, strings.ReplaceAll(sl, "_", " "))
	}
	return strings.Join(parts, ", ")
}

// ConditionsText describes only what the golfer faced. Similarity search runs
// on this text so that past advice does not skew the match.
func ConditionsText(s shot.Situation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Distance to flag: %s meters. ", formatNum(s.DistanceToFlag))
	if wind := s.NormalizedWind(); wind == shot.WindNone {
		b.WriteString("Wind: calm. ")
	} else {
		fmt.Fprintf(&b, "Wind: %s m/s %s. ", formatNum(s.WindSpeed), wind)
	}
	fmt.Fprintf(&b, "Lie: %s. ", lieText(s))
	fmt.Fprintf(&b, "Ground: %s.", s.Condition())
	return b.String()
}

// FullText is the conditions plus the advice given and any feedback.
func FullText(s shot.Situation, recommendation string, fb shot.Feedback) string {
	var b strings.Builder
	b.WriteString(ConditionsText(s))
	b.WriteString("\nRecommendation: ")
	b.WriteString(strings.TrimSpace(recommendation))
	if fb.Liked != nil {
		if *fb.Liked {
			b.WriteString("\nFeedback: the golfer liked this recommendation.")
		} else {
			b.WriteString("\nFeedback: the golfer disliked this recommendation.")
		}
	}
	if club := strings.TrimSpace(fb.ClubUsed); club != "" {
		b.WriteString("\nClub used: ")
		b.WriteString(club)
	}
	if outcome := strings.TrimSpace(fb.Outcome); outcome != "" {
		b.WriteString("\nShot result: ")
		b.WriteString(outcome)
	}
	return b.String()
}

// Metadata is the payload stored with both vectors of a shot. Absent
// feedback fields are omitted because some providers reject null values.
func Metadata(rec *shot.Record) map[string]any {
	meta := map[string]any{
		MetaUserID:        rec.UserID.String(),
		MetaShotID:        rec.ID.String(),
		MetaTimestamp:     rec.TimestampKey,
		MetaDistance:      rec.DistanceToFlag,
		MetaWindSpeed:     rec.WindSpeed,
		MetaWindDirection: rec.NormalizedWind(),
		MetaSurface:       rec.Surface(),
		MetaSlopes:        strings.Join(rec.Slopes(), ","),
		MetaGround:        rec.Condition(),
	}
	if rec.Liked != nil {
		meta[MetaLiked] = *rec.Liked
	}
	if rec.ClubUsed != "" {
		meta[MetaClubUsed] = rec.ClubUsed
	}
	if rec.Outcome != "" {
		meta[MetaOutcome] = rec.Outcome
	}
	return meta
}

func withText(meta map[string]any, text string) map[string]any {
	out := make(map[string]any, len(meta)+1)
	for k, v := range meta {
		out[k] = v
	}
	out[MetaText] = text
	return out
}
