package services

import (
	"github.com/yukikurage/assessment-api/internal/access"
)

func (suite *ServiceTestSuite) TestBuildSessionProjection() {
	template, links := suite.buildActiveTemplate("Pulse", 2)
	session := suite.scheduleSession(template.ID)
	assignment := suite.selfAssign(session.ID, suite.member.ID)
	_, _, err := suite.responses.UpsertResponse(suite.ctx, suite.memberActor, UpsertResponseInput{
		SessionID:          session.ID,
		AssignmentID:       assignment.ID,
		TemplateQuestionID: links[1].ID,
		Value:              scale(5),
	})
	suite.Require().NoError(err)

	projection, err := suite.projections.BuildSessionProjection(suite.ctx, suite.memberActor, session.ID, &assignment.ID)
	suite.Require().NoError(err)
	suite.Equal(session.ID, projection.Session.ID)
	suite.Require().Len(projection.Template.Sections, 1)
	suite.Require().Len(projection.Template.Sections[0].Questions, 2)
	suite.Equal(links[0].ID, projection.Template.Sections[0].Questions[0].ID)
	suite.Require().Len(projection.Responses, 1)
	suite.Equal(links[1].ID, projection.Responses[0].TemplateQuestionID)

	overview, err := suite.projections.BuildSessionProjection(suite.ctx, suite.ownerActor, session.ID, nil)
	suite.Require().NoError(err)
	suite.Nil(overview.Assignment)
	suite.NotNil(overview.Template)

	_, err = suite.projections.BuildSessionProjection(suite.ctx, suite.memberActor, session.ID, nil)
	suite.ErrorIs(err, access.ErrMissingOrganizationRole)

	otherSession := suite.scheduleSession(template.ID)
	_, err = suite.projections.BuildSessionProjection(suite.ctx, suite.ownerActor, otherSession.ID, &assignment.ID)
	suite.ErrorIs(err, ErrSessionMismatch)
}
