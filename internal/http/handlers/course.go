package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/caddie-backend/internal/http/response"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
	"github.com/yungbote/caddie-backend/internal/services"
)

type CourseHandler struct {
	log           *logger.Logger
	courseService services.CourseService
}

func NewCourseHandler(log *logger.Logger, courseService services.CourseService) *CourseHandler {
	return &CourseHandler{
		log:           log.With("handler", "CourseHandler"),
		courseService: courseService,
	}
}

// GET /courses?name=&tee=&meters=true&limit=
func (h *CourseHandler) Search(c *gin.Context) {
	courses, err := h.courseService.Search(c.Request.Context(), services.CourseQuery{
		Name:    c.Query("name"),
		TeeName: c.Query("tee"),
		Meters:  boolQuery(c, "meters"),
		Limit:   intQuery(c, "limit", 20),
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"courses": courses})
}

// GET /courses/:id?meters=true
func (h *CourseHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	course, err := h.courseService.Get(c.Request.Context(), id, boolQuery(c, "meters"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}
