package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classferreiracode/track-my-task/internal/domain"
	"github.com/classferreiracode/track-my-task/internal/service"
)

type workspaceRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateWorkspace(c *gin.Context) {
	var req workspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload."})
		return
	}

	workspace, err := s.workspaces.Create(c.Request.Context(), actorID(c), req.Name)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": workspaceResponse(workspace)})
}

func (s *Server) handleListWorkspaces(c *gin.Context) {
	workspaces, err := s.workspaces.List(c.Request.Context(), actorID(c))
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	out := make([]gin.H, 0, len(workspaces))
	for _, w := range workspaces {
		out = append(out, workspaceResponse(w))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (s *Server) handleListMembers(c *gin.Context) {
	members, err := s.workspaces.Members(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	out := make([]gin.H, 0, len(members))
	for _, m := range members {
		out = append(out, gin.H{
			"user_id":                 m.UserID,
			"name":                    m.Name,
			"email":                   m.Email,
			"role":                    string(m.Role),
			"weekly_capacity_minutes": m.WeeklyCapacityMinutes,
			"is_active":               m.IsActive,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

type memberUpdateRequest struct {
	Role                  *string `json:"role"`
	WeeklyCapacityMinutes *int    `json:"weekly_capacity_minutes"`
	IsActive              *bool   `json:"is_active"`
}

func (s *Server) handleUpdateMember(c *gin.Context) {
	var req memberUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload."})
		return
	}

	upd := service.MemberUpdate{
		WeeklyCapacityMinutes: req.WeeklyCapacityMinutes,
		IsActive:              req.IsActive,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		upd.Role = &role
	}

	err := s.workspaces.UpdateMember(c.Request.Context(), actorID(c), c.Param("id"), c.Param("userId"), upd)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member updated."})
}

func (s *Server) handleRemoveMember(c *gin.Context) {
	err := s.workspaces.RemoveMember(c.Request.Context(), actorID(c), c.Param("id"), c.Param("userId"))
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member removed."})
}

func (s *Server) handleLeaveWorkspace(c *gin.Context) {
	if err := s.workspaces.Leave(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Left workspace."})
}

type invitationRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (s *Server) handleCreateInvitation(c *gin.Context) {
	var req invitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload."})
		return
	}

	invitation, err := s.invitations.Invite(c.Request.Context(), actorID(c), c.Param("id"), req.Email, domain.Role(req.Role))
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": invitationResponse(invitation, domain.InvitationValid)})
}

func (s *Server) handleShowInvitation(c *gin.Context) {
	invitation, status, err := s.invitations.Show(c.Request.Context(), c.Param("token"), c.Query("email"))
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": invitationResponse(invitation, status)})
}

func (s *Server) handleAcceptInvitation(c *gin.Context) {
	if err := s.invitations.Accept(c.Request.Context(), actorID(c), c.Param("token")); err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invitation accepted."})
}

type channelAuthRequest struct {
	ChannelName string `json:"channel_name"`
}

func (s *Server) handleChannelAuth(c *gin.Context) {
	var req channelAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload."})
		return
	}

	allowed, err := s.access.CanJoinChannel(c.Request.Context(), actorID(c), req.ChannelName)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"channel": req.ChannelName})
}

func workspaceResponse(w *domain.Workspace) gin.H {
	return gin.H{
		"id":            w.ID,
		"owner_user_id": w.OwnerUserID,
		"name":          w.Name,
		"slug":          w.Slug,
		"plan":          w.Plan,
		"created_at":    w.CreatedAt.Format(time.RFC3339),
	}
}

func invitationResponse(i *domain.Invitation, status domain.InvitationStatus) gin.H {
	out := gin.H{
		"id":           i.ID,
		"workspace_id": i.WorkspaceID,
		"email":        i.Email,
		"role":         string(i.Role),
		"token":        i.Token,
		"status":       string(status),
	}
	if i.ExpiresAt != nil {
		out["expires_at"] = i.ExpiresAt.Format(time.RFC3339)
	}
	return out
}
