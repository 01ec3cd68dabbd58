package golf

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/caddie-backend/internal/domain"
	"github.com/yungbote/caddie-backend/internal/platform/dbctx"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

type CourseRepo interface {
	// Create persists the course with its tees and holes.
	Create(dbc dbctx.Context, course *types.Course) (*types.Course, error)
	GetByID(dbc dbctx.Context, courseID uuid.UUID, withHoles bool) (*types.Course, error)
	GetByName(dbc dbctx.Context, name string) (*types.Course, error)
	// SearchByName matches case-insensitively on a name fragment.
	SearchByName(dbc dbctx.Context, query string, limit int) ([]*types.Course, error)
	GetTee(dbc dbctx.Context, teeID uuid.UUID) (*types.CourseTee, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

func (r *courseRepo) Create(dbc dbctx.Context, course *types.Course) (*types.Course, error) {
	if course == nil {
		return nil, nil
	}
	course.Name = strings.TrimSpace(course.Name)
	if err := dbc.DB(r.db).Create(course).Error; err != nil {
		return nil, err
	}
	return course, nil
}

func orderedHoles(db *gorm.DB) *gorm.DB {
	return db.Order("hole_number ASC")
}

func (r *courseRepo) GetByID(dbc dbctx.Context, courseID uuid.UUID, withHoles bool) (*types.Course, error) {
	if courseID == uuid.Nil {
		return nil, nil
	}
	q := dbc.DB(r.db).Preload("Tees", func(db *gorm.DB) *gorm.DB { return db.Order("tee_name ASC") })
	if withHoles {
		q = q.Preload("Tees.Holes", orderedHoles)
	}
	var row types.Course
	if err := q.Where("id = ?", courseID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *courseRepo) GetByName(dbc dbctx.Context, name string) (*types.Course, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	var row types.Course
	err := dbc.DB(r.db).Where("LOWER(name) = LOWER(?)", name).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *courseRepo) SearchByName(dbc dbctx.Context, query string, limit int) ([]*types.Course, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []*types.Course
	q := dbc.DB(r.db).
		Preload("Tees", func(db *gorm.DB) *gorm.DB { return db.Order("tee_name ASC") }).
		Preload("Tees.Holes", orderedHoles).
		Order("name ASC").
		Limit(limit)
	if query = strings.TrimSpace(query); query != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(query)+"%")
	}
	err := q.Find(&out).Error
	return out, err
}

func (r *courseRepo) GetTee(dbc dbctx.Context, teeID uuid.UUID) (*types.CourseTee, error) {
	if teeID == uuid.Nil {
		return nil, nil
	}
	var row types.CourseTee
	err := dbc.DB(r.db).
		Preload("Holes", orderedHoles).
		Where("id = ?", teeID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}
