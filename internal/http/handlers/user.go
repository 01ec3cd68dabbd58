package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/caddie-backend/internal/http/response"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
	"github.com/yungbote/caddie-backend/internal/services"
)

type UserHandler struct {
	log         *logger.Logger
	userService services.UserService
}

func NewUserHandler(log *logger.Logger, userService services.UserService) *UserHandler {
	return &UserHandler{log: log.With("handler", "UserHandler"), userService: userService}
}

// GET /me
func (h *UserHandler) GetMe(c *gin.Context) {
	me, err := h.userService.GetMe(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// POST /me
// body: { "email": "...", "first_name": "...", "last_name": "...", "tee_gender": "male" | "female" }
func (h *UserHandler) Provision(c *gin.Context) {
	var req struct {
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		TeeGender string `json:"tee_gender"`
	}
	if !bindJSON(c, &req) {
		return
	}
	me, created, err := h.userService.Provision(c.Request.Context(), services.ProvisionInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		TeeGender: req.TeeGender,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"me": me, "created": created})
}

// PATCH /me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		TeeGender *string `json:"tee_gender"`
	}
	if !bindJSON(c, &req) {
		return
	}
	me, err := h.userService.UpdateProfile(c.Request.Context(), services.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		TeeGender: req.TeeGender,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// PUT /me/handicap
// body: { "handicap_index": 12.4 }
func (h *UserHandler) SetStartingHandicap(c *gin.Context) {
	var req struct {
		HandicapIndex *float64 `json:"handicap_index"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.HandicapIndex == nil {
		response.RespondError(c, http.StatusBadRequest, "missing_handicap", errors.New("handicap_index is required"))
		return
	}
	me, err := h.userService.SetStartingHandicap(c.Request.Context(), *req.HandicapIndex)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}
