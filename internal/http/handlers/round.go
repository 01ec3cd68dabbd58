package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/caddie-backend/internal/http/response"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
	"github.com/yungbote/caddie-backend/internal/services"
)

type RoundHandler struct {
	log          *logger.Logger
	roundService services.RoundService
}

func NewRoundHandler(log *logger.Logger, roundService services.RoundService) *RoundHandler {
	return &RoundHandler{log: log.With("handler", "RoundHandler"), roundService: roundService}
}

type holeConfigRequest struct {
	HoleNumber int `json:"hole_number"`
	Par        int `json:"par"`
	Yards      int `json:"yards"`
	Handicap   int `json:"handicap"`
}

// POST /rounds
// body: { "tee_id": "..." } or
// { "course_name": "...", "total_holes": 9, "holes": [...], "course_rating": 35.1, "slope_rating": 121 }
func (h *RoundHandler) Start(c *gin.Context) {
	var req struct {
		CourseID     *uuid.UUID          `json:"course_id"`
		TeeID        *uuid.UUID          `json:"tee_id"`
		CourseName   string              `json:"course_name"`
		TotalHoles   int                 `json:"total_holes"`
		Holes        []holeConfigRequest `json:"holes"`
		CourseRating *float64            `json:"course_rating"`
		SlopeRating  *float64            `json:"slope_rating"`
	}
	if !bindJSON(c, &req) {
		return
	}
	in := services.StartRoundInput{
		CourseID:     req.CourseID,
		TeeID:        req.TeeID,
		CourseName:   req.CourseName,
		TotalHoles:   req.TotalHoles,
		CourseRating: req.CourseRating,
		SlopeRating:  req.SlopeRating,
	}
	for _, hc := range req.Holes {
		in.Holes = append(in.Holes, services.HoleConfig{HoleNumber: hc.HoleNumber, Par: hc.Par, Yards: hc.Yards, Handicap: hc.Handicap})
	}
	round, err := h.roundService.Start(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"round": round})
}

// GET /rounds/active
func (h *RoundHandler) Active(c *gin.Context) {
	round, err := h.roundService.Active(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"round": round, "score_to_par": round.ScoreToPar()})
}

// PUT /rounds/:id/holes/:hole
// body: { "strokes": 5, "par": 4, "notes": "..." }
func (h *RoundHandler) UpdateHole(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	hole, ok := intParam(c, "hole")
	if !ok {
		return
	}
	var req struct {
		Strokes int     `json:"strokes"`
		Par     *int    `json:"par"`
		Notes   *string `json:"notes"`
	}
	if !bindJSON(c, &req) {
		return
	}
	round, err := h.roundService.UpdateHole(c.Request.Context(), id, hole, services.HoleUpdate{
		Strokes: req.Strokes,
		Par:     req.Par,
		Notes:   req.Notes,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"round": round, "score_to_par": round.ScoreToPar()})
}

// POST /rounds/:id/complete
// body: { "notes": "..." } (optional)
func (h *RoundHandler) Complete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	out, err := h.roundService.Complete(c.Request.Context(), id, req.Notes)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /rounds?limit=&offset=
func (h *RoundHandler) History(c *gin.Context) {
	page, err := h.roundService.History(c.Request.Context(), intQuery(c, "limit", 10), intQuery(c, "offset", 0))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, page)
}

// GET /rounds/:id
func (h *RoundHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	round, err := h.roundService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"round": round, "score_to_par": round.ScoreToPar()})
}

// DELETE /rounds/:id
func (h *RoundHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.roundService.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondNoContent(c)
}
