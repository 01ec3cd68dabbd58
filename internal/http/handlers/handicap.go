package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/caddie-backend/internal/http/response"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
	"github.com/yungbote/caddie-backend/internal/services"
)

type HandicapHandler struct {
	log             *logger.Logger
	handicapService services.HandicapService
}

func NewHandicapHandler(log *logger.Logger, handicapService services.HandicapService) *HandicapHandler {
	return &HandicapHandler{log: log.With("handler", "HandicapHandler"), handicapService: handicapService}
}

// POST /handicap/calculate
// body: { "differentials": [22.0, 24.5, 20.1] }
func (h *HandicapHandler) Calculate(c *gin.Context) {
	var req struct {
		Differentials []float64 `json:"differentials"`
	}
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.handicapService.Calculate(c.Request.Context(), req.Differentials)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /handicap/differential
func (h *HandicapHandler) Differential(c *gin.Context) {
	var req struct {
		Score        int     `json:"score"`
		CourseRating float64 `json:"course_rating"`
		SlopeRating  float64 `json:"slope_rating"`
		TotalHoles   int     `json:"total_holes"`
		TotalPar     int     `json:"total_par"`
	}
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.handicapService.Differential(c.Request.Context(), services.DifferentialInput{
		Score:        req.Score,
		CourseRating: req.CourseRating,
		SlopeRating:  req.SlopeRating,
		TotalHoles:   req.TotalHoles,
		TotalPar:     req.TotalPar,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"score_differential": d})
}

// POST /handicap/recompute
func (h *HandicapHandler) Recompute(c *gin.Context) {
	out, err := h.handicapService.Recompute(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}
