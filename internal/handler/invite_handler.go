package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"projecthub/internal/model"
	"projecthub/internal/response"
	"projecthub/internal/service"
)

type InviteHandler struct {
	invites *service.InviteService
}

func NewInviteHandler(invites *service.InviteService) *InviteHandler {
	return &InviteHandler{invites: invites}
}

type InviteListResponse struct {
	Invites []InviteResponse `json:"invites"`
}

// List godoc
// @Summary      Pending invites addressed to the caller
// @Tags         Invites
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  InviteListResponse
// @Router       /api/invites [get]
func (h *InviteHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	invites, err := h.invites.ListPending(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]InviteResponse, 0, len(invites))
	for _, i := range invites {
		out = append(out, toInviteResponse(i))
	}
	response.JSON(c, http.StatusOK, InviteListResponse{Invites: out})
}

// Respond godoc
// @Summary      Accept or decline an invite
// @Tags         Invites
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Invite ID"
// @Param        body  body      service.RespondInput  true  "accept or decline"
// @Success      200   {object}  response.MessageBody
// @Failure      400   {object}  response.ErrorBody
// @Failure      404   {object}  response.ErrorBody
// @Router       /api/invites/{id}/respond [post]
func (h *InviteHandler) Respond(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	inviteID, ok := pathID(c, "id", "invite")
	if !ok {
		return
	}

	var req service.RespondInput
	if !bindJSON(c, &req) {
		return
	}

	invite, err := h.invites.Respond(c.Request.Context(), userID, inviteID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Invite declined"
	if invite.Status == model.InviteAccepted {
		message = "Invite accepted"
	}
	response.Message(c, http.StatusOK, message)
}
