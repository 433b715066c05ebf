package delivery

import (
	"net/http"

	authdelivery "taskup-backend/internal/auth/delivery"
	"taskup-backend/internal/board/dto"
	"taskup-backend/internal/board/usecase"

	"github.com/gin-gonic/gin"
)

type MemberHandler struct {
	memberUsecase usecase.MemberUsecase
}

func NewMemberHandler(memberUsecase usecase.MemberUsecase) *MemberHandler {
	return &MemberHandler{
		memberUsecase: memberUsecase,
	}
}

// GET /api/boards/:id/members
func (h *MemberHandler) ListMembers(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	boardID := c.Param("id")

	members, err := h.memberUsecase.ListMembers(c.Request.Context(), boardID, userID)
	if err != nil {
		respondError(c, err, "list members of board "+boardID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

// GET /api/boards/:id/bans
func (h *MemberHandler) ListBans(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	boardID := c.Param("id")

	bans, err := h.memberUsecase.ListBans(c.Request.Context(), boardID, userID)
	if err != nil {
		respondError(c, err, "list bans of board "+boardID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bans": bans})
}

// Invite accepts {"email": ...} or {"emails": [...]} and reports per address
// POST /api/boards/:id/invitations
func (h *MemberHandler) Invite(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	boardID := c.Param("id")

	var req dto.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.memberUsecase.Invite(c.Request.Context(), boardID, userID, req.All())
	if err != nil {
		respondError(c, err, "invite to board "+boardID)
		return
	}
	c.JSON(http.StatusOK, dto.InviteResponse{Results: results})
}

// POST /api/invitations/:token/accept
func (h *MemberHandler) AcceptInvitation(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)

	board, err := h.memberUsecase.AcceptInvitation(c.Request.Context(), c.Param("token"), userID)
	if err != nil {
		respondError(c, err, "accept invitation for user "+userID)
		return
	}
	c.JSON(http.StatusOK, board)
}

// RemoveMember removes a member, or lets a member leave when userId is themselves
// DELETE /api/boards/:id/members/:userId
func (h *MemberHandler) RemoveMember(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	boardID := c.Param("id")

	if err := h.memberUsecase.RemoveMember(c.Request.Context(), boardID, userID, c.Param("userId")); err != nil {
		respondError(c, err, "remove member from board "+boardID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "member removed"})
}

// POST /api/boards/:id/members/:userId/kick
func (h *MemberHandler) KickMember(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	boardID := c.Param("id")

	if err := h.memberUsecase.KickMember(c.Request.Context(), boardID, userID, c.Param("userId")); err != nil {
		respondError(c, err, "kick member from board "+boardID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "member kicked"})
}

// BanMember removes the member if present and blocks them from rejoining
// POST /api/boards/:id/members/:userId/ban
func (h *MemberHandler) BanMember(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	boardID := c.Param("id")

	if err := h.memberUsecase.BanMember(c.Request.Context(), boardID, userID, c.Param("userId")); err != nil {
		respondError(c, err, "ban user on board "+boardID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user banned"})
}

// DELETE /api/boards/:id/bans/:userId
func (h *MemberHandler) UnbanMember(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	boardID := c.Param("id")

	if err := h.memberUsecase.UnbanMember(c.Request.Context(), boardID, userID, c.Param("userId")); err != nil {
		respondError(c, err, "unban user on board "+boardID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user unbanned"})
}

// PUT /api/boards/:id/members/:userId/role
func (h *MemberHandler) UpdateRole(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	boardID := c.Param("id")

	var req dto.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.memberUsecase.UpdateRole(c.Request.Context(), boardID, userID, c.Param("userId"), req.Role)
	if err != nil {
		respondError(c, err, "update member role on board "+boardID)
		return
	}
	c.JSON(http.StatusOK, member)
}
