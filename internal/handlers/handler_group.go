package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/shared_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/shared_ledger_app/internal/dto"
	"github.com/SscSPs/shared_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// groupHandler handles HTTP requests related to groups and their members.
type groupHandler struct {
	groupService portssvc.GroupSvcFacade
}

func newGroupHandler(gs portssvc.GroupSvcFacade) *groupHandler {
	return &groupHandler{groupService: gs}
}

// registerGroupRoutes registers the group routes and nests the ledger routes under /groups/:group_id.
func registerGroupRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newGroupHandler(services.Group)

	groups := rg.Group("/groups")
	{
		groups.POST("", h.createGroup)
		groups.GET("", h.listUserGroups)
	}

	groupSpecific := rg.Group("/groups/:group_id")
	{
		groupSpecific.GET("", h.getGroup)

		members := groupSpecific.Group("/members")
		{
			members.GET("", h.listMembers)
			members.POST("", h.addMember)
		}

		registerAccountRoutes(groupSpecific, services.Account)
		registerTransactionRoutes(groupSpecific, services.Transaction, services.File)
		registerFileRoutes(groupSpecific, services.File)
	}
}

// createGroup godoc
// @Summary Create a new group
// @Description Creates a group and makes the caller its owner.
// @Tags groups
// @Accept  json
// @Produce  json
// @Param   group body dto.CreateGroupRequest true "Group details"
// @Success 201 {object} dto.GroupResponse
// @Router /groups [post]
func (h *groupHandler) createGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateGroup", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger.Info("Received request to create group", slog.String("group_name", req.Name))
	group, err := h.groupService.CreateGroup(c.Request.Context(), req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create group")
		return
	}

	logger.Info("Group created successfully", slog.Int64("group_id", group.GroupID))
	c.JSON(http.StatusCreated, dto.ToGroupResponse(group))
}

func (h *groupHandler) listUserGroups(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	groups, err := h.groupService.ListUserGroups(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list groups")
		return
	}
	c.JSON(http.StatusOK, dto.ToListGroupsResponse(groups))
}

func (h *groupHandler) getGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID, ok := int64Param(c, "group_id")
	if !ok {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	group, err := h.groupService.GetGroup(c.Request.Context(), groupID, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve group")
		return
	}
	c.JSON(http.StatusOK, dto.ToGroupResponse(group))
}

func (h *groupHandler) listMembers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID, ok := int64Param(c, "group_id")
	if !ok {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	members, err := h.groupService.ListMembers(c.Request.Context(), groupID, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list members")
		return
	}
	c.JSON(http.StatusOK, dto.ToListGroupMembersResponse(members))
}

// addMember godoc
// @Summary Add a user to a group
// @Description Adds a user with the given role, or changes the role of an existing member. Owners only.
// @Tags groups
// @Accept  json
// @Produce  json
// @Param   group_id path int true "Group ID"
// @Param   member body dto.AddGroupMemberRequest true "User ID and role"
// @Success 200 {object} dto.GroupMemberResponse
// @Router /groups/{group_id}/members [post]
func (h *groupHandler) addMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID, ok := int64Param(c, "group_id")
	if !ok {
		return
	}
	var req dto.AddGroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddMember", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.Int64("group_id", groupID), slog.String("target_user_id", req.UserID))
	logger.Info("Received request to add group member", slog.String("role", string(req.Role)))

	membership, err := h.groupService.AddMember(c.Request.Context(), groupID, req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to add member")
		return
	}
	c.JSON(http.StatusOK, dto.ToGroupMemberResponse(membership))
}
