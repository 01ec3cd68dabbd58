package caddie

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/caddie-backend/internal/domain"
	"github.com/yungbote/caddie-backend/internal/domain/shot"
	"github.com/yungbote/caddie-backend/internal/platform/dbctx"
	"github.com/yungbote/caddie-backend/internal/platform/openai"
)

// ErrToolInput marks arguments that do not match a tool's schema.
var ErrToolInput = errors.New("invalid tool input")

// Tool is a deterministic function the agent may call.
type Tool interface {
	Spec() openai.ToolSpec
	Run(ctx context.Context, userID uuid.UUID, args json.RawMessage) (any, error)
}

// Toolbox dispatches model tool calls by name.
type Toolbox struct {
	tools map[string]Tool
	specs []openai.ToolSpec
}

func NewToolbox(tools ...Tool) *Toolbox {
	tb := &Toolbox{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		spec := t.Spec()
		tb.tools[spec.Name] = t
		tb.specs = append(tb.specs, spec)
	}
	return tb
}

// DefaultToolbox holds the four caddie tools.
func DefaultToolbox(clubs ClubLister) *Toolbox {
	return NewToolbox(UserClubsTool{Clubs: clubs}, WindEffectTool{}, LieEffectTool{}, GroundEffectTool{})
}

func (tb *Toolbox) Specs() []openai.ToolSpec {
	return append([]openai.ToolSpec(nil), tb.specs...)
}

// Execute runs one call and renders the observation returned to the model.
// Unknown tools and bad input become error observations, never a failed loop.
func (tb *Toolbox) Execute(ctx context.Context, userID uuid.UUID, call openai.ToolCall) string {
	t, ok := tb.tools[call.Name]
	if !ok {
		return fmt.Sprintf(`{"error":"tool %q not found"}`, call.Name)
	}
	out, err := t.Run(ctx, userID, call.Arguments)
	if err != nil {
		return errorObservation(err)
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return errorObservation(err)
	}
	return string(raw)
}

func errorObservation(err error) string {
	raw, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(raw)
}

// decodeArgs rejects unknown fields and trailing data.
func decodeArgs(args json.RawMessage, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(args))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrToolInput, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", ErrToolInput)
	}
	return nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func objectSchema(props map[string]any) map[string]any {
	required := make([]string, 0, len(props))
	for k := range props {
		required = append(required, k)
	}
	sort.Strings(required)
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

// ---------------------------------------------------------------------------
// get_user_clubs

type ClubLister interface {
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Club, error)
}

type UserClubsTool struct {
	Clubs ClubLister
}

type clubView struct {
	Club          string  `json:"club"`
	DistanceMeter float64 `json:"distance_meter"`
	Preferred     bool    `json:"preferred_club"`
}

func (UserClubsTool) Spec() openai.ToolSpec {
	return openai.ToolSpec{
		Name:        "get_user_clubs",
		Description: "Lists the golfer's clubs with typical carry distance in meters and whether the club is a preferred one.",
		Parameters:  objectSchema(map[string]any{}),
	}
}

func (t UserClubsTool) Run(ctx context.Context, userID uuid.UUID, args json.RawMessage) (any, error) {
	var in struct{}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	clubs, err := t.Clubs.ListByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, fmt.Errorf("load clubs: %w", err)
	}
	if len(clubs) == 0 {
		return map[string]string{"message": "The golfer has no clubs registered"}, nil
	}
	out := make([]clubView, 0, len(clubs))
	for _, c := range clubs {
		out = append(out, clubView{Club: c.Name, DistanceMeter: float64(c.DistanceMeter), Preferred: c.Preferred})
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// calculate_wind_effect

const (
	headwindFactor      = 0.006
	tailwindFactor      = 0.004
	crosswindDriftPerMS = 0.9
	crosswindHeadShare  = 0.2
)

type WindEffectTool struct{}

type WindInput struct {
	WindSpeed      float64 `json:"wind_speed"`
	WindDirection  string  `json:"wind_direction"`
	DistanceToFlag float64 `json:"distance_to_flag"`
}

type WindEffect struct {
	ActualDistance    float64 `json:"actual_distance_to_flag_meters"`
	EffectiveDistance float64 `json:"effective_distance_needed_meters"`
	Adjustment        float64 `json:"adjustment_needed_meters"`
	LateralDrift      float64 `json:"lateral_drift_meters"`
	WindType          string  `json:"wind_type"`
	WindSpeed         float64 `json:"wind_speed_mps"`
	Explanation       string  `json:"explanation"`
}

func (WindEffectTool) Spec() openai.ToolSpec {
	return openai.ToolSpec{
		Name:        "calculate_wind_effect",
		Description: "Computes how wind changes the distance a shot plays and its lateral drift.",
		Parameters: objectSchema(map[string]any{
			"wind_speed":       map[string]any{"type": "number", "description": "Wind speed in m/s"},
			"wind_direction":   map[string]any{"type": "string", "enum": []string{shot.WindHeadwind, shot.WindTailwind, shot.WindCrosswindLeft, shot.WindCrosswindRight}},
			"distance_to_flag": map[string]any{"type": "number", "description": "Distance to the flag in meters"},
		}),
	}
}

func (WindEffectTool) Run(_ context.Context, _ uuid.UUID, args json.RawMessage) (any, error) {
	var in WindInput
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	return WindEffectFor(in)
}

// WindEffectFor is positive when the shot plays longer.
func WindEffectFor(in WindInput) (WindEffect, error) {
	if in.DistanceToFlag <= 0 {
		return WindEffect{}, fmt.Errorf("%w: distance_to_flag must be positive", ErrToolInput)
	}
	if in.WindSpeed < 0 {
		return WindEffect{}, fmt.Errorf("%w: wind_speed must not be negative", ErrToolInput)
	}
	var windType string
	var distance, lateral float64
	switch strings.ToLower(strings.TrimSpace(in.WindDirection)) {
	case shot.WindHeadwind:
		windType = "headwind"
		distance = in.DistanceToFlag * headwindFactor * in.WindSpeed
	case shot.WindTailwind:
		windType = "tailwind"
		distance = -in.DistanceToFlag * tailwindFactor * in.WindSpeed
	case shot.WindCrosswindLeft, shot.WindCrosswindRight:
		windType = "crosswind"
		lateral = in.WindSpeed * crosswindDriftPerMS
		distance = in.DistanceToFlag * headwindFactor * in.WindSpeed * crosswindHeadShare
	default:
		return WindEffect{}, fmt.Errorf("%w: wind_direction must be one of headwind, tailwind, crosswind-left, crosswind-right", ErrToolInput)
	}

	effective := in.DistanceToFlag + distance
	explanation := fmt.Sprintf("With %s m/s %s, the flag is %s meters away but the shot plays like %s meters (an adjustment of %s meters).",
		num(in.WindSpeed), windType, num(in.DistanceToFlag), num(round1(effective)), num(round1(distance)))
	if lateral != 0 {
		explanation += fmt.Sprintf(" Account for %s meters of lateral drift.", num(round1(lateral)))
	}
	return WindEffect{
		ActualDistance:    in.DistanceToFlag,
		EffectiveDistance: round1(effective),
		Adjustment:        round1(distance),
		LateralDrift:      round1(lateral),
		WindType:          windType,
		WindSpeed:         in.WindSpeed,
		Explanation:       explanation,
	}, nil
}

// ---------------------------------------------------------------------------
// calculate_lie_effect

type lieFactor struct {
	distance    float64
	dispersion  float64
	description string
}

var surfaceFactors = map[string]lieFactor{
	shot.SurfaceFairway:    {1.0, 1.0, "Normal distance and control from the fairway"},
	shot.SurfaceLightRough: {0.97, 1.07, "Slightly reduced distance and marginally less control"},
	shot.SurfaceHeavyRough: {0.90, 1.2, "Reduced distance with less predictable ball flight"},
	shot.SurfaceHardpan:    {0.95, 1.05, "Clean contact is harder, expect a minor distance loss"},
	shot.SurfaceDivot:      {0.93, 1.15, "Clean contact is harder from a divot, expect a slightly shorter shot"},
	shot.SurfaceBunker:     {0.90, 1.2, "Clean contact is hard from a fairway bunker, expect a shorter shot"},
}

var slopeFactors = map[string]lieFactor{
	shot.SlopeUphill:        {0.95, 1.1, "Ball flies higher with slightly reduced distance"},
	shot.SlopeDownhill:      {0.97, 1.12, "Ball flies lower with slightly reduced carry and more roll"},
	shot.SlopeBallAboveFeet: {0.96, 1.15, "Ball tends to draw with a slight risk of a fat shot"},
	shot.SlopeBallBelowFeet: {0.95, 1.15, "Ball tends to fade with a slight risk of a thin shot"},
}

type LieEffectTool struct{}

type LieInput struct {
	BaseDistance float64 `json:"base_distance"`
	shot.Lie
}

type LieEffect struct {
	TargetDistance       float64  `json:"target_distance_meters"`
	RequiredClubDistance float64  `json:"required_club_distance_meters"`
	DistanceFactor       float64  `json:"distance_factor"`
	DispersionFactor     float64  `json:"dispersion_factor"`
	Conditions           []string `json:"conditions"`
	Description          string   `json:"description"`
	Explanation          string   `json:"explanation"`
}

func (LieEffectTool) Spec() openai.ToolSpec {
	props := map[string]any{
		"base_distance": map[string]any{"type": "number", "description": "Target distance in meters"},
	}
	for _, k := range []string{"fairway", "light_rough", "heavy_rough", "hardpan", "divot", "bunker"} {
		props[k] = map[string]any{"type": "boolean", "description": "Surface; at most one may be true"}
	}
	for _, k := range []string{"uphill", "downhill", "ball_above_feet", "ball_below_feet"} {
		props[k] = map[string]any{"type": "boolean", "description": "Slope; may combine"}
	}
	return openai.ToolSpec{
		Name:        "calculate_lie_effect",
		Description: "Computes how the lie (one surface plus any slopes) changes the carry a club must have to reach the target.",
		Parameters:  objectSchema(props),
	}
}

func (LieEffectTool) Run(_ context.Context, _ uuid.UUID, args json.RawMessage) (any, error) {
	var in LieInput
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	return LieEffectFor(in)
}

func LieEffectFor(in LieInput) (LieEffect, error) {
	if in.BaseDistance <= 0 {
		return LieEffect{}, fmt.Errorf("%w: base_distance must be positive", ErrToolInput)
	}
	if n := in.SurfaceCount(); n > 1 {
		return LieEffect{}, fmt.Errorf("%w: only one surface may be set, got %d", ErrToolInput, n)
	}

	surface := in.Surface()
	f := surfaceFactors[surface]
	distFactor, dispFactor := f.distance, f.dispersion
	conditions := []string{surface}
	descriptions := []string{f.description}
	for _, s := range in.Slopes() {
		sf := slopeFactors[s]
		distFactor *= sf.distance
		dispFactor *= sf.dispersion
		conditions = append(conditions, s)
		descriptions = append(descriptions, sf.description)
	}

	required := in.BaseDistance / distFactor
	description := descriptions[0]
	if len(descriptions) > 1 {
		description = "Combined effects: " + strings.Join(descriptions, "; ")
	}
	readable := make([]string, len(conditions))
	for i, c := range conditions {
		readable[i] = strings.ReplaceAll(c, "_", " ")
	}
	return LieEffect{
		TargetDistance:       in.BaseDistance,
		RequiredClubDistance: round1(required),
		DistanceFactor:       math.Round(distFactor*10000) / 10000,
		DispersionFactor:     math.Round(dispFactor*10000) / 10000,
		Conditions:           conditions,
		Description:          description,
		Explanation: fmt.Sprintf("To reach a %s meter target from this %s lie, select a club that normally carries %s meters.",
			num(in.BaseDistance), strings.Join(readable, " + "), num(round1(required))),
	}, nil
}

// ---------------------------------------------------------------------------
// calculate_ground_effect

const (
	normalCarryShare = 0.8
	normalRollShare  = 0.2
)

type groundFactor struct {
	roll           float64
	clubAdjustment float64
	strategy       string
	explanation    string
}

var groundFactors = map[string]groundFactor{
	"wet": {0.92, 0.5,
		"Focus on carry distance and aim closer to the target",
		"On wet ground expect reduced roll and quicker stopping. Consider a half-club longer."},
	"firm": {1.12, -0.5,
		"Account for extra roll and consider landing the ball short of the target",
		"On firm ground expect more roll and forward bounce. Consider a half-club shorter."},
	"normal": {1.0, 0,
		"Standard shot strategy and normal target selection",
		"Under normal ground conditions expect typical bounce and roll."},
}

type GroundEffectTool struct{}

type GroundInput struct {
	GroundCondition string  `json:"ground_condition"`
	BaseDistance    float64 `json:"base_distance"`
}

type GroundEffect struct {
	GroundCondition    string  `json:"ground_condition"`
	BaseDistance       float64 `json:"base_distance_meters"`
	TotalDistance      float64 `json:"estimated_total_distance_meters"`
	CarryDistance      float64 `json:"carry_distance_meters"`
	RollDistance       float64 `json:"roll_distance_meters"`
	RollAdjustment     string  `json:"roll_adjustment_percentage"`
	ClubRecommendation string  `json:"club_recommendation"`
	Strategy           string  `json:"strategy"`
	Explanation        string  `json:"explanation"`
}

func (GroundEffectTool) Spec() openai.ToolSpec {
	return openai.ToolSpec{
		Name:        "calculate_ground_effect",
		Description: "Computes how wet, firm or normal ground changes roll and total distance.",
		Parameters: objectSchema(map[string]any{
			"ground_condition": map[string]any{"type": "string", "enum": []string{"wet", "firm", "normal"}},
			"base_distance":    map[string]any{"type": "number", "description": "Normal total distance in meters"},
		}),
	}
}

func (GroundEffectTool) Run(_ context.Context, _ uuid.UUID, args json.RawMessage) (any, error) {
	var in GroundInput
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	return GroundEffectFor(in)
}

func GroundEffectFor(in GroundInput) (GroundEffect, error) {
	if in.BaseDistance <= 0 {
		return GroundEffect{}, fmt.Errorf("%w: base_distance must be positive", ErrToolInput)
	}
	cond := strings.ToLower(strings.TrimSpace(in.GroundCondition))
	f, ok := groundFactors[cond]
	if !ok {
		return GroundEffect{}, fmt.Errorf("%w: ground_condition must be wet, firm or normal", ErrToolInput)
	}

	carry := in.BaseDistance * normalCarryShare
	roll := in.BaseDistance * normalRollShare * f.roll
	club := "Use your normal club selection"
	switch {
	case f.clubAdjustment > 0:
		club = "Consider a half-club longer than normal"
	case f.clubAdjustment < 0:
		club = "Consider a half-club shorter than normal"
	}
	return GroundEffect{
		GroundCondition:    cond,
		BaseDistance:       in.BaseDistance,
		TotalDistance:      round1(carry + roll),
		CarryDistance:      round1(carry),
		RollDistance:       round1(roll),
		RollAdjustment:     num(round1((f.roll-1)*100)) + "%",
		ClubRecommendation: club,
		Strategy:           f.strategy,
		Explanation:        f.explanation,
	}, nil
}

func num(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}
