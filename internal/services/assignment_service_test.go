package services

import (
	apierrors "github.com/yukikurage/assessment-api/internal/errors"
	"github.com/yukikurage/assessment-api/internal/models"
)

func (suite *ServiceTestSuite) TestAddAssignment_SelfDefaultsSubjectToRespondent() {
	template, _ := suite.buildActiveTemplate("Pulse", 1)
	session := suite.scheduleSession(template.ID)

	assignment := suite.selfAssign(session.ID, suite.member.ID)
	suite.Equal(models.PerspectiveSelf, assignment.Perspective)
	suite.Equal(suite.member.ID, assignment.SubjectUserID)

	_, err := suite.assignments.AddAssignment(suite.ctx, suite.ownerActor, AddAssignmentInput{
		SessionID:        session.ID,
		RespondentUserID: suite.member.ID,
	})
	suite.ErrorIs(err, ErrAlreadyAssigned)

	_, err = suite.assignments.AddAssignment(suite.ctx, suite.ownerActor, AddAssignmentInput{
		SessionID:        session.ID,
		RespondentUserID: suite.member.ID,
		Perspective:      "PEER",
	})
	suite.ErrorIs(err, ErrSubjectRequired)

	_, err = suite.assignments.AddAssignment(suite.ctx, suite.ownerActor, AddAssignmentInput{
		SessionID:        session.ID,
		RespondentUserID: suite.member.ID,
		Perspective:      "COACH",
	})
	suite.ErrorIs(err, ErrInvalidPerspective)

	missing := uint64(9999)
	_, err = suite.assignments.AddAssignment(suite.ctx, suite.ownerActor, AddAssignmentInput{
		SessionID:        session.ID,
		RespondentUserID: suite.member.ID,
		SubjectUserID:    &missing,
		Perspective:      "PEER",
	})
	suite.ErrorIs(err, ErrUserNotFound)

	_, err = suite.assignments.AddAssignment(suite.ctx, suite.memberActor, AddAssignmentInput{
		SessionID:        session.ID,
		RespondentUserID: suite.owner.ID,
	})
	suite.Equal(apierrors.ErrCodeInsufficientPermissions, apierrors.CodeOf(err))
}

func (suite *ServiceTestSuite) TestBulkAssign_FanOutDeduplicatesAndIsIdempotent() {
	template, _ := suite.buildActiveTemplate("Pulse", 1)
	session := suite.scheduleSession(template.ID)
	peerA := suite.createUser("a@example.com")
	peerB := suite.createUser("b@example.com")

	input := BulkAssignInput{
		SessionID:        session.ID,
		RespondentUserID: &suite.member.ID,
		SubjectUserIDs:   []uint64{peerA.ID, peerB.ID, peerB.ID},
		Perspective:      "PEER",
	}

	created, err := suite.assignments.BulkAssign(suite.ctx, suite.ownerActor, input)
	suite.Require().NoError(err)
	suite.Equal(2, created)

	created, err = suite.assignments.BulkAssign(suite.ctx, suite.ownerActor, input)
	suite.Require().NoError(err)
	suite.Equal(0, created)

	assignments, err := suite.assignments.ListAssignments(suite.ctx, suite.ownerActor, session.ID)
	suite.Require().NoError(err)
	suite.Require().Len(assignments, 2)
	for _, a := range assignments {
		suite.Equal(suite.member.ID, a.RespondentUserID)
		suite.Equal(models.PerspectivePeer, a.Perspective)
		suite.Require().NotNil(a.Respondent)
		suite.Equal(suite.member.Email, a.Respondent.Email)
	}
}

func (suite *ServiceTestSuite) TestBulkAssign_SelfAssignMode() {
	template, _ := suite.buildActiveTemplate("Pulse", 1)
	session := suite.scheduleSession(template.ID)
	suite.selfAssign(session.ID, suite.member.ID)

	input := BulkAssignInput{
		SessionID:         session.ID,
		RespondentUserIDs: []uint64{suite.owner.ID, suite.member.ID, suite.owner.ID},
	}
	created, err := suite.assignments.BulkAssign(suite.ctx, suite.ownerActor, input)
	suite.Require().NoError(err)
	suite.Equal(1, created)

	created, err = suite.assignments.BulkAssign(suite.ctx, suite.ownerActor, input)
	suite.Require().NoError(err)
	suite.Equal(0, created)
}

func (suite *ServiceTestSuite) TestBulkAssign_RejectsAmbiguousOrSelfFanOut() {
	template, _ := suite.buildActiveTemplate("Pulse", 1)
	session := suite.scheduleSession(template.ID)

	_, err := suite.assignments.BulkAssign(suite.ctx, suite.ownerActor, BulkAssignInput{SessionID: session.ID})
	suite.ErrorIs(err, ErrInvalidBulkMode)

	_, err = suite.assignments.BulkAssign(suite.ctx, suite.ownerActor, BulkAssignInput{
		SessionID:        session.ID,
		RespondentUserID: &suite.member.ID,
		SubjectUserIDs:   []uint64{suite.owner.ID},
	})
	suite.ErrorIs(err, ErrSelfFanOut)
}

func (suite *ServiceTestSuite) TestListAssignments_MembersSeeOnlyTheirOwn() {
	template, _ := suite.buildActiveTemplate("Pulse", 1)
	session := suite.scheduleSession(template.ID)
	suite.selfAssign(session.ID, suite.member.ID)
	suite.selfAssign(session.ID, suite.owner.ID)

	own, err := suite.assignments.ListAssignments(suite.ctx, suite.memberActor, session.ID)
	suite.Require().NoError(err)
	suite.Require().Len(own, 1)
	suite.Equal(suite.member.ID, own[0].RespondentUserID)

	all, err := suite.assignments.ListAssignments(suite.ctx, suite.ownerActor, session.ID)
	suite.Require().NoError(err)
	suite.Len(all, 2)
}

func (suite *ServiceTestSuite) TestRemoveAndRestoreAssignment() {
	template, _ := suite.buildActiveTemplate("Pulse", 1)
	session := suite.scheduleSession(template.ID)
	first := suite.selfAssign(session.ID, suite.member.ID)

	suite.Require().NoError(suite.assignments.RemoveAssignment(suite.ctx, suite.ownerActor, first.ID, false))
	_, err := suite.assignments.GetAssignment(suite.ctx, suite.ownerActor, first.ID)
	suite.ErrorIs(err, ErrAssignmentNotFound)

	second := suite.selfAssign(session.ID, suite.member.ID)
	_, err = suite.assignments.RestoreAssignment(suite.ctx, suite.ownerActor, first.ID)
	suite.ErrorIs(err, ErrAlreadyAssigned)

	suite.Require().NoError(suite.assignments.RemoveAssignment(suite.ctx, suite.ownerActor, second.ID, true))
	var count int64
	suite.Require().NoError(suite.db.Unscoped().Model(&models.Assignment{}).Where("id = ?", second.ID).Count(&count).Error)
	suite.Zero(count)

	restored, err := suite.assignments.RestoreAssignment(suite.ctx, suite.ownerActor, first.ID)
	suite.Require().NoError(err)
	suite.Equal(first.ID, restored.ID)
}

func (suite *ServiceTestSuite) TestUpdateAssignment_DuplicateTupleHitsStoreConstraint() {
	template, _ := suite.buildActiveTemplate("Pulse", 1)
	session := suite.scheduleSession(template.ID)
	suite.selfAssign(session.ID, suite.member.ID)

	peer, err := suite.assignments.AddAssignment(suite.ctx, suite.ownerActor, AddAssignmentInput{
		SessionID:        session.ID,
		RespondentUserID: suite.member.ID,
		SubjectUserID:    &suite.member.ID,
		Perspective:      "PEER",
	})
	suite.Require().NoError(err)

	self := "SELF"
	_, err = suite.assignments.UpdateAssignment(suite.ctx, suite.ownerActor, peer.ID, UpdateAssignmentInput{Perspective: &self})
	suite.ErrorIs(err, ErrAlreadyAssigned)

	manager := "MANAGER"
	updated, err := suite.assignments.UpdateAssignment(suite.ctx, suite.ownerActor, peer.ID, UpdateAssignmentInput{
		Perspective:   &manager,
		SubjectUserID: &suite.owner.ID,
	})
	suite.Require().NoError(err)
	suite.Equal(models.PerspectiveManager, updated.Perspective)
	suite.Equal(suite.owner.ID, updated.SubjectUserID)
}

func (suite *ServiceTestSuite) TestEnsureSelfAssignment_IsIdempotent() {
	template, _ := suite.buildActiveTemplate("Pulse", 1)
	session := suite.scheduleSession(template.ID)

	first, created, err := suite.assignments.EnsureSelfAssignment(suite.ctx, session.ID, suite.member.ID)
	suite.Require().NoError(err)
	suite.True(created)

	second, created, err := suite.assignments.EnsureSelfAssignment(suite.ctx, session.ID, suite.member.ID)
	suite.Require().NoError(err)
	suite.False(created)
	suite.Equal(first.ID, second.ID)
}
