package services

import (
	"github.com/yukikurage/assessment-api/internal/access"
	apierrors "github.com/yukikurage/assessment-api/internal/errors"
	"github.com/yukikurage/assessment-api/internal/models"
)

func (suite *ServiceTestSuite) TestCreateOrganization_OwnerMembership() {
	org, err := suite.orgs.CreateOrganization(suite.ctx, suite.memberActor, "  Side project ")
	suite.Require().NoError(err)
	suite.Equal("Side project", org.Name)
	suite.Regexp(`^[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}$`, org.InviteCode)

	memberships, err := suite.orgs.ListOrganizationsForUser(suite.ctx, suite.memberActor)
	suite.Require().NoError(err)
	suite.Len(memberships, 2)

	actor := suite.actor(suite.member.ID)
	suite.True(access.IsManager(actor, org.ID))

	_, err = suite.orgs.CreateOrganization(suite.ctx, suite.memberActor, " ")
	suite.ErrorIs(err, ErrInvalidOrganizationName)
}

func (suite *ServiceTestSuite) TestJoinOrganizationByInvite() {
	org, err := suite.orgs.CreateOrganization(suite.ctx, suite.ownerActor, "Guild")
	suite.Require().NoError(err)

	joined, err := suite.orgs.JoinOrganizationByInvite(suite.ctx, suite.memberActor, org.InviteCode)
	suite.Require().NoError(err)
	suite.Equal(org.ID, joined.ID)

	_, err = suite.orgs.JoinOrganizationByInvite(suite.ctx, suite.memberActor, org.InviteCode)
	suite.ErrorIs(err, ErrAlreadyOrganizationMember)

	_, err = suite.orgs.JoinOrganizationByInvite(suite.ctx, suite.memberActor, "FFFF-FFFF-FFFF")
	suite.ErrorIs(err, ErrInvalidInviteCode)
}

func (suite *ServiceTestSuite) TestRoleGrants() {
	manager := suite.createUser("manager@example.com")
	newcomer := suite.createUser("newcomer@example.com")

	_, err := suite.orgs.AddMember(suite.ctx, suite.ownerActor, suite.org.ID, manager.ID, []models.OrganizationRole{models.RoleManager})
	suite.Require().NoError(err)
	managerActor := suite.actor(manager.ID)

	_, err = suite.orgs.AddMember(suite.ctx, managerActor, suite.org.ID, newcomer.ID, []models.OrganizationRole{models.RoleOwner})
	suite.ErrorIs(err, ErrOwnerRoleRequired)

	_, err = suite.orgs.AddMember(suite.ctx, managerActor, suite.org.ID, newcomer.ID, []models.OrganizationRole{"ADMIN"})
	suite.ErrorIs(err, ErrInvalidRoles)

	_, err = suite.orgs.AddMember(suite.ctx, managerActor, suite.org.ID, newcomer.ID, []models.OrganizationRole{models.RoleMember})
	suite.Require().NoError(err)

	_, err = suite.orgs.AddMember(suite.ctx, managerActor, suite.org.ID, newcomer.ID, []models.OrganizationRole{models.RoleMember})
	suite.ErrorIs(err, ErrAlreadyOrganizationMember)

	_, err = suite.orgs.UpdateMemberRoles(suite.ctx, suite.memberActor, suite.org.ID, newcomer.ID, []models.OrganizationRole{models.RoleManager})
	suite.Equal(apierrors.ErrCodeInsufficientPermissions, apierrors.CodeOf(err))

	_, err = suite.orgs.UpdateMemberRoles(suite.ctx, managerActor, suite.org.ID, suite.owner.ID, []models.OrganizationRole{models.RoleMember})
	suite.ErrorIs(err, ErrOwnerRoleRequired)

	updated, err := suite.orgs.UpdateMemberRoles(suite.ctx, suite.ownerActor, suite.org.ID, newcomer.ID, []models.OrganizationRole{models.RoleManager, models.RoleMember})
	suite.Require().NoError(err)
	suite.True(updated.HasRole(models.RoleManager))
}

func (suite *ServiceTestSuite) TestRemoveMember() {
	manager := suite.createUser("manager@example.com")
	_, err := suite.orgs.AddMember(suite.ctx, suite.ownerActor, suite.org.ID, manager.ID, []models.OrganizationRole{models.RoleManager})
	suite.Require().NoError(err)
	managerActor := suite.actor(manager.ID)

	suite.ErrorIs(suite.orgs.RemoveMember(suite.ctx, managerActor, suite.org.ID, manager.ID), ErrCannotRemoveYourself)
	suite.ErrorIs(suite.orgs.RemoveMember(suite.ctx, managerActor, suite.org.ID, suite.owner.ID), ErrOwnerRoleRequired)
	suite.Equal(apierrors.ErrCodeInsufficientPermissions, apierrors.CodeOf(suite.orgs.RemoveMember(suite.ctx, suite.memberActor, suite.org.ID, manager.ID)))

	suite.Require().NoError(suite.orgs.RemoveMember(suite.ctx, managerActor, suite.org.ID, suite.member.ID))
	_, members, err := suite.orgs.GetOrganizationWithMembers(suite.ctx, suite.ownerActor, suite.org.ID)
	suite.Require().NoError(err)
	suite.Len(members, 2)

	suite.ErrorIs(suite.orgs.RemoveMember(suite.ctx, managerActor, suite.org.ID, suite.member.ID), ErrOrganizationMemberNotFound)
}

func (suite *ServiceTestSuite) TestCreateTeam() {
	team, err := suite.orgs.CreateTeam(suite.ctx, suite.ownerActor, suite.org.ID, "Platform")
	suite.Require().NoError(err)
	suite.Equal(suite.org.ID, team.OrganizationID)

	_, err = suite.orgs.CreateTeam(suite.ctx, suite.ownerActor, suite.org.ID, "")
	suite.ErrorIs(err, ErrInvalidTeamName)

	_, err = suite.orgs.CreateTeam(suite.ctx, suite.memberActor, suite.org.ID, "Shadow")
	suite.Error(err)
}
