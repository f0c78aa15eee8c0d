package services

import (
	"errors"

	apierrors "github.com/yukikurage/assessment-api/internal/errors"
	"github.com/yukikurage/assessment-api/internal/models"
)

func (suite *ServiceTestSuite) TestUpsertResponse_ScaleBounds() {
	template, links := suite.buildActiveTemplate("Pulse", 1)
	session := suite.scheduleSession(template.ID)
	assignment := suite.selfAssign(session.ID, suite.member.ID)

	response, created, err := suite.responses.UpsertResponse(suite.ctx, suite.memberActor, UpsertResponseInput{
		SessionID:          session.ID,
		AssignmentID:       assignment.ID,
		TemplateQuestionID: links[0].ID,
		Value:              scale(3),
	})
	suite.Require().NoError(err)
	suite.True(created)
	suite.Require().NotNil(response.ScaleValue)
	suite.Equal(3.0, *response.ScaleValue)

	_, _, err = suite.responses.UpsertResponse(suite.ctx, suite.memberActor, UpsertResponseInput{
		SessionID:          session.ID,
		AssignmentID:       assignment.ID,
		TemplateQuestionID: links[0].ID,
		Value:              scale(9),
	})
	suite.ErrorIs(err, ErrScaleValueOutOfRange)
	suite.Equal(apierrors.ErrCodeInvalidInput, apierrors.CodeOf(err))
}

func (suite *ServiceTestSuite) TestUpsertResponse_ReplacesInsteadOfDuplicating() {
	template, links := suite.buildActiveTemplate("Pulse", 1)
	session := suite.scheduleSession(template.ID)
	assignment := suite.selfAssign(session.ID, suite.member.ID)

	input := UpsertResponseInput{
		SessionID:          session.ID,
		AssignmentID:       assignment.ID,
		TemplateQuestionID: links[0].ID,
		Value:              scale(2),
	}
	first, created, err := suite.responses.UpsertResponse(suite.ctx, suite.memberActor, input)
	suite.Require().NoError(err)
	suite.True(created)

	input.Value = scale(4)
	second, created, err := suite.responses.UpsertResponse(suite.ctx, suite.memberActor, input)
	suite.Require().NoError(err)
	suite.False(created)
	suite.Equal(first.ID, second.ID)

	stored, err := suite.responses.ListResponses(suite.ctx, suite.memberActor, assignment.ID)
	suite.Require().NoError(err)
	suite.Require().Len(stored, 1)
	suite.Require().NotNil(stored[0].ScaleValue)
	suite.Equal(4.0, *stored[0].ScaleValue)
}

func (suite *ServiceTestSuite) TestUpsertResponse_FollowsSessionState() {
	template, links := suite.buildActiveTemplate("Pulse", 1)
	session := suite.scheduleSession(template.ID)
	assignment := suite.selfAssign(session.ID, suite.member.ID)
	input := UpsertResponseInput{
		SessionID:          session.ID,
		AssignmentID:       assignment.ID,
		TemplateQuestionID: links[0].ID,
		Value:              scale(5),
	}

	suite.moveSession(session.ID, models.SessionStateInProgress)
	_, _, err := suite.responses.UpsertResponse(suite.ctx, suite.memberActor, input)
	suite.Require().NoError(err)

	suite.moveSession(session.ID, models.SessionStateCompleted)
	_, _, err = suite.responses.UpsertResponse(suite.ctx, suite.memberActor, input)
	suite.ErrorIs(err, ErrSessionNotAcceptingAnswer)
	suite.Equal(apierrors.ErrCodeInvalidOperation, apierrors.CodeOf(err))
}

func (suite *ServiceTestSuite) TestUpsertResponse_Preconditions() {
	template, links := suite.buildActiveTemplate("Pulse", 2)
	session := suite.scheduleSession(template.ID)
	assignment := suite.selfAssign(session.ID, suite.member.ID)

	otherSession := suite.scheduleSession(template.ID)
	_, _, err := suite.responses.UpsertResponse(suite.ctx, suite.memberActor, UpsertResponseInput{
		SessionID:          otherSession.ID,
		AssignmentID:       assignment.ID,
		TemplateQuestionID: links[0].ID,
		Value:              scale(3),
	})
	suite.ErrorIs(err, ErrSessionMismatch)

	_, foreignLinks := suite.buildActiveTemplate("Other", 1)
	_, _, err = suite.responses.UpsertResponse(suite.ctx, suite.memberActor, UpsertResponseInput{
		SessionID:          session.ID,
		AssignmentID:       assignment.ID,
		TemplateQuestionID: foreignLinks[0].ID,
		Value:              scale(3),
	})
	suite.ErrorIs(err, ErrTemplateMismatch)

	peerOnly := []string{"PEER"}
	_, err = suite.templates.UpdateTemplateQuestion(suite.ctx, suite.ownerActor, suite.org.ID, links[1].ID, UpdateTemplateQuestionInput{Perspectives: &peerOnly})
	suite.Require().NoError(err)
	_, _, err = suite.responses.UpsertResponse(suite.ctx, suite.memberActor, UpsertResponseInput{
		SessionID:          session.ID,
		AssignmentID:       assignment.ID,
		TemplateQuestionID: links[1].ID,
		Value:              scale(3),
	})
	suite.ErrorIs(err, ErrPerspectiveNotAllowed)

	bystander := suite.createUser("bystander@example.com")
	suite.Require().NoError(suite.db.Create(&models.OrganizationMember{
		OrganizationID: suite.org.ID,
		UserID:         bystander.ID,
		Roles:          []models.OrganizationRole{models.RoleMember},
	}).Error)
	_, _, err = suite.responses.UpsertResponse(suite.ctx, suite.actor(bystander.ID), UpsertResponseInput{
		SessionID:          session.ID,
		AssignmentID:       assignment.ID,
		TemplateQuestionID: links[0].ID,
		Value:              scale(3),
	})
	suite.ErrorIs(err, ErrResponseForbidden)

	_, _, err = suite.responses.UpsertResponse(suite.ctx, suite.ownerActor, UpsertResponseInput{
		SessionID:          session.ID,
		AssignmentID:       assignment.ID,
		TemplateQuestionID: links[0].ID,
		Value:              scale(3),
	})
	suite.NoError(err)
}

func (suite *ServiceTestSuite) TestBulkUpsertResponses_StopsAtFailingItem() {
	template, links := suite.buildActiveTemplate("Pulse", 3)
	session := suite.scheduleSession(template.ID)
	assignment := suite.selfAssign(session.ID, suite.member.ID)

	item := func(linkIndex int, v float64) UpsertResponseInput {
		return UpsertResponseInput{
			SessionID:          session.ID,
			AssignmentID:       assignment.ID,
			TemplateQuestionID: links[linkIndex].ID,
			Value:              scale(v),
		}
	}

	result, err := suite.responses.BulkUpsertResponses(suite.ctx, suite.memberActor, []UpsertResponseInput{
		item(0, 1), item(1, 7), item(2, 2),
	})
	suite.Require().Error(err)

	var itemErr *apierrors.BulkItemError
	suite.Require().True(errors.As(err, &itemErr))
	suite.Equal(1, itemErr.Index)
	suite.ErrorIs(err, ErrScaleValueOutOfRange)
	suite.Equal(1, result.Created)

	stored, err := suite.responses.ListResponses(suite.ctx, suite.memberActor, assignment.ID)
	suite.Require().NoError(err)
	suite.Len(stored, 1)
}

func (suite *ServiceTestSuite) TestDeleteResponse() {
	template, links := suite.buildActiveTemplate("Pulse", 1)
	session := suite.scheduleSession(template.ID)
	assignment := suite.selfAssign(session.ID, suite.member.ID)

	response, _, err := suite.responses.UpsertResponse(suite.ctx, suite.memberActor, UpsertResponseInput{
		SessionID:          session.ID,
		AssignmentID:       assignment.ID,
		TemplateQuestionID: links[0].ID,
		Value:              scale(3),
	})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.responses.DeleteResponse(suite.ctx, suite.memberActor, response.ID))
	suite.ErrorIs(suite.responses.DeleteResponse(suite.ctx, suite.memberActor, response.ID), ErrResponseNotFound)
}
