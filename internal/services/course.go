package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/caddie-backend/internal/clients/redis"
	"github.com/yungbote/caddie-backend/internal/data/repos"
	types "github.com/yungbote/caddie-backend/internal/domain"
	"github.com/yungbote/caddie-backend/internal/domain/golf"
	"github.com/yungbote/caddie-backend/internal/platform/apierr"
	"github.com/yungbote/caddie-backend/internal/platform/dbctx"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

const courseSearchTTL = 10 * time.Minute

type CourseQuery struct {
	Name    string
	TeeName string
	Meters  bool
	Limit   int
}

// HoleView is a course hole as returned to clients. Meters is set only
// when the caller asked for a metric projection.
type HoleView struct {
	HoleNumber int  `json:"hole_number"`
	Par        int  `json:"par"`
	Handicap   int  `json:"handicap"`
	Yards      int  `json:"yards"`
	Meters     *int `json:"meters,omitempty"`
}

type TeeView struct {
	ID                uuid.UUID  `json:"id"`
	TeeName           string     `json:"tee_name"`
	TeeColor          string     `json:"tee_color,omitempty"`
	CourseRatingMen   float64    `json:"course_rating_men"`
	SlopeRatingMen    float64    `json:"slope_rating_men"`
	CourseRatingWomen *float64   `json:"course_rating_women,omitempty"`
	SlopeRatingWomen  *float64   `json:"slope_rating_women,omitempty"`
	ParTotal          int        `json:"par_total"`
	TotalYards        int        `json:"total_yards"`
	TotalMeters       *int       `json:"total_meters,omitempty"`
	NumberOfHoles     int        `json:"number_of_holes"`
	Holes             []HoleView `json:"holes"`
}

type CourseView struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	ClubName string    `json:"club_name,omitempty"`
	City     string    `json:"city,omitempty"`
	Country  string    `json:"country,omitempty"`
	Tees     []TeeView `json:"tees"`
}

type CourseService interface {
	Search(ctx context.Context, q CourseQuery) ([]CourseView, error)
	Get(ctx context.Context, courseID uuid.UUID, meters bool) (*CourseView, error)
}

type courseService struct {
	log        *logger.Logger
	courseRepo repos.CourseRepo
	cache      redis.Cache
}

func NewCourseService(log *logger.Logger, courseRepo repos.CourseRepo, cache redis.Cache) CourseService {
	if cache == nil {
		cache = redis.Noop{}
	}
	return &courseService{log: log.With("service", "CourseService"), courseRepo: courseRepo, cache: cache}
}

func courseSearchKey(name string, limit int) string {
	return fmt.Sprintf("course_search:%d:%s", limit, strings.ToLower(strings.TrimSpace(name)))
}

func (cs *courseService) Search(ctx context.Context, q CourseQuery) ([]CourseView, error) {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	key := courseSearchKey(q.Name, q.Limit)

	var courses []*types.Course
	hit, err := cs.cache.GetJSON(ctx, key, &courses)
	if err != nil {
		cs.log.Warn("Course cache read failed", "error", err)
	}
	if !hit {
		courses, err = cs.courseRepo.SearchByName(dbctx.Context{Ctx: ctx}, q.Name, q.Limit)
		if err != nil {
			return nil, storeErr("course.search", err)
		}
		if err := cs.cache.SetJSON(ctx, key, courses, courseSearchTTL); err != nil {
			cs.log.Warn("Course cache write failed", "error", err)
		}
	}

	out := make([]CourseView, 0, len(courses))
	for _, c := range courses {
		v := projectCourse(c, q.TeeName, q.Meters)
		if q.TeeName != "" && len(v.Tees) == 0 {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (cs *courseService) Get(ctx context.Context, courseID uuid.UUID, meters bool) (*CourseView, error) {
	c, err := cs.courseRepo.GetByID(dbctx.Context{Ctx: ctx}, courseID, true)
	if err != nil {
		return nil, storeErr("course.get", err)
	}
	if c == nil {
		return nil, apierr.NotFound("course_not_found", fmt.Errorf("course %s not found", courseID))
	}
	v := projectCourse(c, "", meters)
	return &v, nil
}

// projectCourse keeps tees matching teeName (all when empty) and adds
// meter values when meters is set. Stored data stays in yards.
func projectCourse(c *types.Course, teeName string, meters bool) CourseView {
	v := CourseView{ID: c.ID, Name: c.Name, ClubName: c.ClubName, City: c.City, Country: c.Country, Tees: []TeeView{}}
	for _, t := range c.Tees {
		if teeName != "" && !strings.EqualFold(strings.TrimSpace(teeName), t.TeeName) {
			continue
		}
		tv := TeeView{
			ID:                t.ID,
			TeeName:           t.TeeName,
			TeeColor:          t.TeeColor,
			CourseRatingMen:   t.CourseRatingMen,
			SlopeRatingMen:    t.SlopeRatingMen,
			CourseRatingWomen: t.CourseRatingWomen,
			SlopeRatingWomen:  t.SlopeRatingWomen,
			ParTotal:          t.ParTotal,
			TotalYards:        t.TotalYards,
			NumberOfHoles:     t.NumberOfHoles,
			Holes:             make([]HoleView, 0, len(t.Holes)),
		}
		if meters {
			m := golf.YardsToMeters(t.TotalYards)
			tv.TotalMeters = &m
		}
		for _, h := range t.Holes {
			hv := HoleView{HoleNumber: h.HoleNumber, Par: h.Par, Handicap: h.Handicap, Yards: h.Yards}
			if meters {
				m := golf.YardsToMeters(h.Yards)
				hv.Meters = &m
			}
			tv.Holes = append(tv.Holes, hv)
		}
		v.Tees = append(v.Tees, tv)
	}
	return v
}
