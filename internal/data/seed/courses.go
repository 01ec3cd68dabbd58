package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/caddie-backend/internal/data/repos"
	types "github.com/yungbote/caddie-backend/internal/domain"
	"github.com/yungbote/caddie-backend/internal/platform/dbctx"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

//go:embed courses.yaml
var defaultCourses []byte

// DefaultCourses is the reference data shipped with the binary.
func DefaultCourses() []byte { return defaultCourses }

type yamlCourseFile struct {
	Courses []yamlCourse `yaml:"courses"`
}

type yamlCourse struct {
	Name     string    `yaml:"name"`
	ClubName string    `yaml:"club_name"`
	City     string    `yaml:"city"`
	Country  string    `yaml:"country"`
	Tees     []yamlTee `yaml:"tees"`
}

type yamlTee struct {
	Name        string     `yaml:"name"`
	Color       string     `yaml:"color"`
	RatingMen   float64    `yaml:"rating_men"`
	SlopeMen    float64    `yaml:"slope_men"`
	RatingWomen *float64   `yaml:"rating_women"`
	SlopeWomen  *float64   `yaml:"slope_women"`
	Holes       []yamlHole `yaml:"holes"`
}

type yamlHole struct {
	Number   int `yaml:"number"`
	Yards    int `yaml:"yards"`
	Par      int `yaml:"par"`
	Handicap int `yaml:"handicap"`
}

// ParseCourses decodes and validates a course file. Tee totals (par, yards,
// hole count) are derived from the holes.
func ParseCourses(raw []byte) ([]*types.Course, error) {
	var file yamlCourseFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode course yaml: %w", err)
	}
	if len(file.Courses) == 0 {
		return nil, errors.New("course yaml has no courses")
	}
	seen := map[string]bool{}
	out := make([]*types.Course, 0, len(file.Courses))
	for i, yc := range file.Courses {
		c, err := yc.toCourse()
		if err != nil {
			return nil, fmt.Errorf("course %d (%q): %w", i, yc.Name, err)
		}
		key := strings.ToLower(c.Name)
		if seen[key] {
			return nil, fmt.Errorf("duplicate course %q", c.Name)
		}
		seen[key] = true
		out = append(out, c)
	}
	return out, nil
}

func (yc yamlCourse) toCourse() (*types.Course, error) {
	name := strings.TrimSpace(yc.Name)
	if name == "" {
		return nil, errors.New("missing name")
	}
	if len(yc.Tees) == 0 {
		return nil, errors.New("no tees")
	}
	c := &types.Course{
		Name:     name,
		ClubName: strings.TrimSpace(yc.ClubName),
		City:     strings.TrimSpace(yc.City),
		Country:  strings.TrimSpace(yc.Country),
	}
	for _, yt := range yc.Tees {
		tee, err := yt.toTee()
		if err != nil {
			return nil, fmt.Errorf("tee %q: %w", yt.Name, err)
		}
		c.Tees = append(c.Tees, *tee)
	}
	return c, nil
}

func (yt yamlTee) toTee() (*types.CourseTee, error) {
	if strings.TrimSpace(yt.Name) == "" {
		return nil, errors.New("missing name")
	}
	if yt.RatingMen <= 0 || yt.SlopeMen <= 0 {
		return nil, errors.New("rating_men and slope_men are required")
	}
	if (yt.RatingWomen == nil) != (yt.SlopeWomen == nil) {
		return nil, errors.New("rating_women and slope_women must be given together")
	}
	n := len(yt.Holes)
	if n != 9 && n != 18 {
		return nil, fmt.Errorf("expected 9 or 18 holes, got %d", n)
	}
	tee := &types.CourseTee{
		TeeName:           strings.TrimSpace(yt.Name),
		TeeColor:          strings.TrimSpace(yt.Color),
		CourseRatingMen:   yt.RatingMen,
		SlopeRatingMen:    yt.SlopeMen,
		CourseRatingWomen: yt.RatingWomen,
		SlopeRatingWomen:  yt.SlopeWomen,
		NumberOfHoles:     n,
	}
	numbers := make(map[int]bool, n)
	for _, yh := range yt.Holes {
		if yh.Number < 1 || yh.Number > n || numbers[yh.Number] {
			return nil, fmt.Errorf("hole numbers must be unique in 1..%d, got %d", n, yh.Number)
		}
		numbers[yh.Number] = true
		if yh.Par < 3 || yh.Par > 6 {
			return nil, fmt.Errorf("hole %d: par %d out of range", yh.Number, yh.Par)
		}
		if yh.Yards <= 0 {
			return nil, fmt.Errorf("hole %d: yards must be positive", yh.Number)
		}
		tee.ParTotal += yh.Par
		tee.TotalYards += yh.Yards
		tee.Holes = append(tee.Holes, types.CourseHole{
			HoleNumber: yh.Number,
			Yards:      yh.Yards,
			Par:        yh.Par,
			Handicap:   yh.Handicap,
		})
	}
	return tee, nil
}

type Result struct {
	Created []string
	Skipped []string
}

// Courses inserts every course whose name is not already stored. Existing
// courses are left untouched.
func Courses(dbc dbctx.Context, repo repos.CourseRepo, courses []*types.Course, log *logger.Logger) (Result, error) {
	var res Result
	for _, c := range courses {
		existing, err := repo.GetByName(dbc, c.Name)
		if err != nil {
			return res, fmt.Errorf("lookup %q: %w", c.Name, err)
		}
		if existing != nil {
			log.Info("course exists; skipping", "course", c.Name)
			res.Skipped = append(res.Skipped, c.Name)
			continue
		}
		if _, err := repo.Create(dbc, c); err != nil {
			return res, fmt.Errorf("create %q: %w", c.Name, err)
		}
		log.Info("course created", "course", c.Name, "tees", len(c.Tees))
		res.Created = append(res.Created, c.Name)
	}
	return res, nil
}
