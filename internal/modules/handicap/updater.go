package handicap

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/caddie-backend/internal/data/repos"
	"github.com/yungbote/caddie-backend/internal/domain/user"
	"github.com/yungbote/caddie-backend/internal/observability"
	"github.com/yungbote/caddie-backend/internal/platform/dbctx"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

const (
	softCapThreshold = 3.0
	softCapFactor    = 0.5
	hardCapIncrease  = 5.0
	maxIndex         = user.NewGolferHandicap
)

// ScoredRound is one completed round with a differential.
type ScoredRound struct {
	RoundID      uuid.UUID
	Differential float64
	EndTime      time.Time
}

const (
	OutcomeUpdated = "updated"
	OutcomeGated   = "gated"
)

// Result describes one recompute. When Outcome is OutcomeGated nothing
// changed and Profile equals the input profile.
type Result struct {
	Outcome    string
	Rounds     int
	NumUsed    int
	Raw        float64
	Reference  float64
	SoftCapped bool
	HardCapped bool
	Counted    []uuid.UUID
	Profile    user.HandicapProfile
}

// Compute derives the next handicap profile from the recent scored rounds.
// Caps and the new-golfer gate are measured against a reference index: the
// current index, or the stored baseline when the round set is identical to
// the last recompute. This keeps repeated recomputes over an unchanged set
// idempotent.
func Compute(profile user.HandicapProfile, rounds []ScoredRound, now time.Time) Result {
	res := Result{Outcome: OutcomeGated, Rounds: len(rounds), Profile: profile}

	key := RoundSetKey(rounds)
	ref := profile.HandicapIndex
	if key == profile.RoundSetKey && profile.HandicapBaseline != nil {
		ref = *profile.HandicapBaseline
	}

	newGolfer := user.IsNewGolferIndex(ref)
	numToUse := NumToUse(len(rounds))
	if !newGolfer {
		numToUse = numToUseExperienced(len(rounds))
	}
	if newGolfer && len(rounds) < MinRoundsNewGolfer {
		return res
	}
	if numToUse == 0 {
		return res
	}

	ordered := orderForSelection(rounds)
	best := ordered[:numToUse]
	diffs := make([]float64, 0, len(best))
	counted := make([]uuid.UUID, 0, len(best))
	for _, r := range best {
		diffs = append(diffs, r.Differential)
		counted = append(counted, r.RoundID)
	}

	raw := Round1(mean(diffs) * Multiplier)
	next, soft, hard := applyCaps(ref, raw)
	if next > maxIndex {
		next = maxIndex
	}

	updatedAt := now.UTC()
	baseline := ref
	out := profile
	out.HandicapIndex = next
	out.LastHandicapUpdate = &updatedAt
	out.HandicapBaseline = &baseline
	out.RoundSetKey = key

	res.Outcome = OutcomeUpdated
	res.NumUsed = numToUse
	res.Raw = raw
	res.Reference = ref
	res.SoftCapped = soft
	res.HardCapped = hard
	res.Counted = counted
	res.Profile = out
	return res
}

// applyCaps limits increases only. The soft cap halves the part of the
// increase above 3.0; an increase above 5.0 is held to exactly +5.0.
// The capped value is rounded to one decimal like every stored index, so a
// 3.3 increase on 10.0 yields 13.2 rather than the unrounded 13.15.
func applyCaps(ref, raw float64) (float64, bool, bool) {
	increase := raw - ref
	next := raw
	soft, hard := false, false
	if increase > softCapThreshold {
		next = ref + softCapThreshold + (increase-softCapThreshold)*softCapFactor
		soft = true
	}
	if increase > hardCapIncrease {
		next = ref + hardCapIncrease
		hard = true
	}
	return Round1(next), soft, hard
}

// orderForSelection sorts by differential ascending, then newest first, then
// round id, so ties select the same rounds every time.
func orderForSelection(rounds []ScoredRound) []ScoredRound {
	out := append([]ScoredRound(nil), rounds...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Differential != b.Differential {
			return a.Differential < b.Differential
		}
		if !a.EndTime.Equal(b.EndTime) {
			return a.EndTime.After(b.EndTime)
		}
		return a.RoundID.String() < b.RoundID.String()
	})
	return out
}

// RoundSetKey fingerprints the (round id, differential) pairs independent
// of their order.
func RoundSetKey(rounds []ScoredRound) string {
	parts := make([]string, 0, len(rounds))
	for _, r := range rounds {
		parts = append(parts, r.RoundID.String()+"="+strconv.FormatFloat(r.Differential, 'f', 1, 64))
	}
	sort.Strings(parts)
	sum := sha256.Sum256([]byte(strings.Join(parts, ";")))
	return hex.EncodeToString(sum[:16])
}

// Updater recomputes a golfer's index from stored rounds. Callers pass the
// transaction that completed the round so both commit together.
type Updater struct {
	users  repos.UserRepo
	rounds repos.RoundRepo
	log    *logger.Logger
	now    func() time.Time
}

func NewUpdater(users repos.UserRepo, rounds repos.RoundRepo, baseLog *logger.Logger) *Updater {
	return &Updater{
		users:  users,
		rounds: rounds,
		log:    baseLog.With("module", "HandicapUpdater"),
		now:    time.Now,
	}
}

func (u *Updater) Update(dbc dbctx.Context, userID uuid.UUID) (Result, error) {
	ctx, span := observability.StartSpan(dbc.Ctx, "handicap.update")
	defer span.End()
	dbc.Ctx = ctx

	usr, err := u.users.GetByID(dbc, userID)
	if err != nil {
		return Result{}, fmt.Errorf("load user: %w", err)
	}
	if usr == nil {
		return Result{}, fmt.Errorf("%w: user %s not found", ErrInvalidInput, userID)
	}

	window, err := u.rounds.ListHandicapWindow(dbc, userID, repos.HandicapWindow)
	if err != nil {
		return Result{}, fmt.Errorf("load handicap window: %w", err)
	}
	scored := make([]ScoredRound, 0, len(window))
	for _, r := range window {
		if r.ScoreDifferential == nil {
			continue
		}
		sr := ScoredRound{RoundID: r.ID, Differential: *r.ScoreDifferential}
		if r.EndTime != nil {
			sr.EndTime = *r.EndTime
		}
		scored = append(scored, sr)
	}

	res := Compute(usr.HandicapProfile, scored, u.now())
	span.SetAttributes(
		attribute.String("handicap.outcome", res.Outcome),
		attribute.Int("handicap.rounds", res.Rounds),
		attribute.Int("handicap.num_used", res.NumUsed),
	)
	observability.Current().IncHandicapUpdate(res.Outcome)

	if res.Outcome != OutcomeUpdated {
		u.log.Debug("Handicap recompute gated", "user_id", userID, "rounds", res.Rounds, "new_golfer", usr.IsNewGolfer())
		return res, nil
	}

	if err := u.users.UpdateHandicapProfile(dbc, userID, res.Profile); err != nil {
		return Result{}, fmt.Errorf("store handicap profile: %w", err)
	}
	if err := u.rounds.SetInclusion(dbc, userID, res.Counted); err != nil {
		return Result{}, fmt.Errorf("mark counted rounds: %w", err)
	}
	u.log.Info("Handicap updated",
		"user_id", userID,
		"index", res.Profile.HandicapIndex,
		"raw", res.Raw,
		"reference", res.Reference,
		"num_used", res.NumUsed,
		"soft_capped", res.SoftCapped,
		"hard_capped", res.HardCapped,
	)
	return res, nil
}
