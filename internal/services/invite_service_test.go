package services

import (
	"strings"

	"github.com/yukikurage/assessment-api/internal/models"
)

func (suite *ServiceTestSuite) TestRedeemInvite_JoinsAndAssignsOnce() {
	template, _ := suite.buildActiveTemplate("Pulse", 1)
	session := suite.scheduleSession(template.ID)
	guest := suite.createUser("guest@example.com")

	code := "  " + strings.ToLower(session.InviteCode) + " "
	first, err := suite.invites.RedeemInvite(suite.ctx, suite.actor(guest.ID), code)
	suite.Require().NoError(err)
	suite.True(first.JoinedOrganization)
	suite.True(first.AssignmentCreated)
	suite.Equal(models.PerspectiveSelf, first.Assignment.Perspective)
	suite.Equal(guest.ID, first.Assignment.SubjectUserID)

	second, err := suite.invites.RedeemInvite(suite.ctx, suite.actor(guest.ID), session.InviteCode)
	suite.Require().NoError(err)
	suite.False(second.JoinedOrganization)
	suite.False(second.AssignmentCreated)
	suite.Equal(first.Assignment.ID, second.Assignment.ID)

	var count int64
	suite.Require().NoError(suite.db.Model(&models.Assignment{}).Where("session_id = ?", session.ID).Count(&count).Error)
	suite.Equal(int64(1), count)
}

func (suite *ServiceTestSuite) TestRedeemInvite_Rejections() {
	_, err := suite.invites.RedeemInvite(suite.ctx, suite.memberActor, "0000-0000-0000")
	suite.ErrorIs(err, ErrInvalidInviteCode)

	template, _ := suite.buildActiveTemplate("Pulse", 1)
	session := suite.scheduleSession(template.ID)
	suite.Require().NoError(suite.sessions.DeleteSession(suite.ctx, suite.ownerActor, session.ID))

	_, err = suite.invites.RedeemInvite(suite.ctx, suite.memberActor, session.InviteCode)
	suite.ErrorIs(err, ErrSessionClosed)
}
