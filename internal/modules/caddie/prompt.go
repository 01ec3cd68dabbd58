package caddie

import (
	"fmt"
	"strings"

	types "github.com/yungbote/caddie-backend/internal/domain"
	"github.com/yungbote/caddie-backend/internal/domain/shot"
	"github.com/yungbote/caddie-backend/internal/modules/shotmemory"
)

// FinalAnswerMarker prefixes the model's recommendation.
const FinalAnswerMarker = "Final Answer:"

const SystemPrompt = `You are a professional golf caddie. Use the tools to look up the golfer's clubs
and to compute how wind, lie and ground change the shot before you recommend anything.
Do not guess numbers a tool can compute.
Address the golfer directly in plain text without Markdown, bullets, bold or italics.
When you are done, reply with "Final Answer:" followed by your complete recommendation.`

// BuildPrompt renders the situation, the golfer and any precedent shots.
func BuildPrompt(u *types.User, s shot.Situation, precedents []shotmemory.Candidate) string {
	var b strings.Builder
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = "the golfer"
	}
	fmt.Fprintf(&b, "You are caddying for %s (handicap index %.1f).\n\n", name, u.HandicapIndex)

	b.WriteString("Current situation:\n")
	fmt.Fprintf(&b, "Distance to flag: %s meters\n", num(s.DistanceToFlag))
	if wind := s.NormalizedWind(); wind == shot.WindNone {
		b.WriteString("Wind: calm\n")
	} else {
		fmt.Fprintf(&b, "Wind speed: %s m/s\nWind direction: %s\n", num(s.WindSpeed), wind)
	}
	surface := strings.ReplaceAll(s.Surface(), "_", " ")
	if slopes := s.Slopes(); len(slopes) > 0 {
		fmt.Fprintf(&b, "Lie: %s, %s\n", surface, strings.ReplaceAll(strings.Join(slopes, ", "), "_", " "))
	} else {
		fmt.Fprintf(&b, "Lie: %s\n", surface)
	}
	fmt.Fprintf(&b, "Ground: %s\n", s.Condition())

	if len(precedents) > 0 {
		b.WriteString("\nSimilar shots this golfer played before:\n")
		for i, p := range precedents {
			fmt.Fprintf(&b, "\nShot %d (%s):\n%s\n", i+1, precedentLabel(p), p.FullText)
		}
		b.WriteString("\nRepeat what worked. Avoid what the golfer disliked.\n")
	}

	b.WriteString(`
Instructions:
1. Look up the golfer's clubs.
2. Work out how the wind, lie and ground change the distance the shot plays.
3. State the effective distance.
4. Recommend exactly two different shot options.
5. For each option give the club, the expected distance and how it handles the conditions.
Begin your reply with "Final Answer:".`)
	return b.String()
}

func precedentLabel(c shotmemory.Candidate) string {
	switch {
	case c.Liked == nil:
		return "no feedback"
	case *c.Liked:
		return "liked"
	default:
		return "disliked"
	}
}

// ParseFinalAnswer returns the text after the last marker. Without a marker
// the whole reply is the answer. It reports false for an empty answer.
func ParseFinalAnswer(text string) (string, bool) {
	if i := lastIndexFold(text, FinalAnswerMarker); i >= 0 {
		text = text[i+len(FinalAnswerMarker):]
	}
	answer := strings.TrimSpace(strings.Trim(strings.TrimSpace(text), "*"))
	return answer, answer != ""
}

// lastIndexFold is a case-insensitive strings.LastIndex for an ASCII needle.
// Offsets refer to s itself, so slicing s with the result is always valid.
func lastIndexFold(s, needle string) int {
	for i := len(s) - len(needle); i >= 0; i-- {
		if strings.EqualFold(s[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}
