package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/caddie-backend/internal/domain/shot"
	"github.com/yungbote/caddie-backend/internal/http/response"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
	"github.com/yungbote/caddie-backend/internal/services"
)

type CaddieHandler struct {
	log           *logger.Logger
	caddieService services.CaddieService
}

func NewCaddieHandler(log *logger.Logger, caddieService services.CaddieService) *CaddieHandler {
	return &CaddieHandler{log: log.With("handler", "CaddieHandler"), caddieService: caddieService}
}

// POST /caddie/recommend
// body: { "distance_to_flag": 145, "wind_speed": 4, "wind_direction": "headwind", "light_rough": true, ... }
func (h *CaddieHandler) Recommend(c *gin.Context) {
	var req shot.Situation
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.caddieService.Recommend(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, rec)
}

// POST /caddie/feedback
// body: { "timestamp": "...", "liked": true, "club_used": "8 iron", "shot_result": "on the green" }
func (h *CaddieHandler) Feedback(c *gin.Context) {
	var req struct {
		Timestamp  string  `json:"timestamp"`
		Liked      *bool   `json:"liked"`
		ClubUsed   *string `json:"club_used"`
		ShotResult *string `json:"shot_result"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.Liked == nil {
		response.RespondError(c, http.StatusBadRequest, "missing_liked", errors.New("liked is required"))
		return
	}
	out, err := h.caddieService.Feedback(c.Request.Context(), services.FeedbackRequest{
		Timestamp: req.Timestamp,
		Liked:     *req.Liked,
		ClubUsed:  req.ClubUsed,
		Outcome:   req.ShotResult,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /caddie/shots?limit=
func (h *CaddieHandler) ListShots(c *gin.Context) {
	shots, err := h.caddieService.ListShots(c.Request.Context(), intQuery(c, "limit", 20))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"shots": shots})
}
