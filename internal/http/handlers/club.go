package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/caddie-backend/internal/http/response"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
	"github.com/yungbote/caddie-backend/internal/services"
)

type ClubHandler struct {
	log         *logger.Logger
	clubService services.ClubService
}

func NewClubHandler(log *logger.Logger, clubService services.ClubService) *ClubHandler {
	return &ClubHandler{log: log.With("handler", "ClubHandler"), clubService: clubService}
}

type clubRequest struct {
	Name          string `json:"name"`
	DistanceMeter int    `json:"distance_meter"`
	Preferred     bool   `json:"preferred"`
}

// GET /clubs
func (h *ClubHandler) List(c *gin.Context) {
	clubs, err := h.clubService.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"clubs": clubs})
}

// POST /clubs
// body: { "clubs": [ { "name": "7 Iron", "distance_meter": 140, "preferred": false } ] }
func (h *ClubHandler) Add(c *gin.Context) {
	var req struct {
		Clubs []clubRequest `json:"clubs"`
	}
	if !bindJSON(c, &req) {
		return
	}
	in := make([]services.ClubInput, 0, len(req.Clubs))
	for _, cl := range req.Clubs {
		in = append(in, services.ClubInput{Name: cl.Name, DistanceMeter: cl.DistanceMeter, Preferred: cl.Preferred})
	}
	clubs, err := h.clubService.AddMany(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"clubs": clubs})
}

// PATCH /clubs/:name
func (h *ClubHandler) Update(c *gin.Context) {
	var req struct {
		Name          *string `json:"name"`
		DistanceMeter *int    `json:"distance_meter"`
		Preferred     *bool   `json:"preferred"`
	}
	if !bindJSON(c, &req) {
		return
	}
	clubs, err := h.clubService.UpdateByName(c.Request.Context(), c.Param("name"), services.ClubPatch{
		Name:          req.Name,
		DistanceMeter: req.DistanceMeter,
		Preferred:     req.Preferred,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"clubs": clubs})
}

// DELETE /clubs/:name
func (h *ClubHandler) Delete(c *gin.Context) {
	if err := h.clubService.DeleteByName(c.Request.Context(), c.Param("name")); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondNoContent(c)
}
