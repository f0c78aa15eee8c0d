package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/assessment-api/internal/access"
	"github.com/yukikurage/assessment-api/internal/dto"
	apierrors "github.com/yukikurage/assessment-api/internal/errors"
	"github.com/yukikurage/assessment-api/internal/services"
	"go.uber.org/zap"
)

type OrganizationHandler struct {
	orgService *services.OrganizationService
	log        *zap.Logger
}

func NewOrganizationHandler(orgService *services.OrganizationService, log *zap.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		orgService: orgService,
		log:        log,
	}
}

// CreateOrganization creates a new organization owned by the caller
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.CreateOrganizationRequest
	if !bindJSON(c, &req) {
		return
	}

	org, err := h.orgService.CreateOrganization(c.Request.Context(), actor, req.Name)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToOrganizationDTO(*org, true))
}

// ListOrganizations returns all organizations the user is a member of
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	memberships, err := h.orgService.ListOrganizationsForUser(c.Request.Context(), actor)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	orgs := make([]dto.OrganizationWithRolesDTO, len(memberships))
	for i, m := range memberships {
		orgs[i] = dto.ToOrganizationWithRolesDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{
		"organizations": orgs,
	})
}

// GetOrganization returns organization details
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orgID, ok := currentOrganization(c)
	if !ok {
		return
	}

	org, members, err := h.orgService.GetOrganizationWithMembers(c.Request.Context(), actor, orgID)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	roles, _ := actor.RolesIn(orgID)
	c.JSON(http.StatusOK, dto.ToOrganizationDetailDTO(*org, members, roles, access.IsManager(actor, orgID)))
}

// UpdateOrganization updates organization name
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orgID, ok := currentOrganization(c)
	if !ok {
		return
	}

	var req dto.UpdateOrganizationRequest
	if !bindJSON(c, &req) {
		return
	}

	org, err := h.orgService.UpdateOrganizationName(c.Request.Context(), actor, orgID, req.Name)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*org, true))
}

// JoinOrganization allows a user to join via invite code
func (h *OrganizationHandler) JoinOrganization(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.JoinOrganizationRequest
	if !bindJSON(c, &req) {
		return
	}

	org, err := h.orgService.JoinOrganizationByInvite(c.Request.Context(), actor, req.InviteCode)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Successfully joined organization",
		"organization": dto.ToOrganizationDTO(*org, false),
	})
}

// RegenerateInviteCode generates a new invite code for the organization
func (h *OrganizationHandler) RegenerateInviteCode(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orgID, ok := currentOrganization(c)
	if !ok {
		return
	}

	org, err := h.orgService.RegenerateInviteCode(c.Request.Context(), actor, orgID)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*org, true))
}

// AddMember adds an existing user with a role set
func (h *OrganizationHandler) AddMember(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orgID, ok := currentOrganization(c)
	if !ok {
		return
	}

	var req dto.AddMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.orgService.AddMember(c.Request.Context(), actor, orgID, req.UserID, req.Roles)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, member)
}

// UpdateMemberRoles replaces the role set of a member
func (h *OrganizationHandler) UpdateMemberRoles(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orgID, ok := currentOrganization(c)
	if !ok {
		return
	}
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}

	var req dto.UpdateMemberRolesRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.orgService.UpdateMemberRoles(c.Request.Context(), actor, orgID, userID, req.Roles)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, member)
}

// RemoveMember removes a member from the organization
func (h *OrganizationHandler) RemoveMember(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orgID, ok := currentOrganization(c)
	if !ok {
		return
	}
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}

	if err := h.orgService.RemoveMember(c.Request.Context(), actor, orgID, userID); err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

// CreateTeam creates a team inside the organization
func (h *OrganizationHandler) CreateTeam(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orgID, ok := currentOrganization(c)
	if !ok {
		return
	}

	var req dto.CreateTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.orgService.CreateTeam(c.Request.Context(), actor, orgID, req.Name)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, team)
}
