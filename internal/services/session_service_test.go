package services

import (
	"time"

	"github.com/yukikurage/assessment-api/internal/access"
	apierrors "github.com/yukikurage/assessment-api/internal/errors"
	"github.com/yukikurage/assessment-api/internal/models"
	"github.com/yukikurage/assessment-api/internal/repository"
	"github.com/yukikurage/assessment-api/internal/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func (suite *ServiceTestSuite) TestCreateSession_Scheduled() {
	template, _ := suite.buildActiveTemplate("Pulse", 1)
	session := suite.scheduleSession(template.ID)

	suite.Equal(models.SessionStateScheduled, session.State)
	suite.Equal(sessionStart, session.StartAt)
	suite.Regexp(`^[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}$`, session.InviteCode)
}

func (suite *ServiceTestSuite) TestCreateSession_Validation() {
	template, _ := suite.buildActiveTemplate("Pulse", 1)

	_, err := suite.sessions.CreateSession(suite.ctx, suite.ownerActor, CreateSessionInput{
		OrganizationID: suite.org.ID,
		TemplateID:     template.ID,
		Name:           "Backwards",
		StartAt:        sessionEnd,
		EndAt:          sessionStart,
	})
	suite.ErrorIs(err, ErrInvalidSessionWindow)

	draft, err := suite.templates.CreateTemplate(suite.ctx, suite.ownerActor, CreateTemplateInput{
		OrganizationID: suite.org.ID,
		Name:           "Draft",
	})
	suite.Require().NoError(err)
	_, err = suite.sessions.CreateSession(suite.ctx, suite.ownerActor, CreateSessionInput{
		OrganizationID: suite.org.ID,
		TemplateID:     draft.ID,
		Name:           "Too early",
		StartAt:        sessionStart,
		EndAt:          sessionEnd,
	})
	suite.ErrorIs(err, ErrTemplateNotActive)

	otherOrg := suite.createOrganization("Other", nil)
	team := &models.Team{OrganizationID: otherOrg.ID, Name: "Platform"}
	suite.Require().NoError(suite.db.Create(team).Error)
	_, err = suite.sessions.CreateSession(suite.ctx, suite.ownerActor, CreateSessionInput{
		OrganizationID: suite.org.ID,
		TemplateID:     template.ID,
		TeamID:         &team.ID,
		Name:           "Wrong team",
		StartAt:        sessionStart,
		EndAt:          sessionEnd,
	})
	suite.ErrorIs(err, ErrTeamNotInOrganization)

	_, err = suite.sessions.CreateSession(suite.ctx, suite.memberActor, CreateSessionInput{
		OrganizationID: suite.org.ID,
		TemplateID:     template.ID,
		Name:           "Not a manager",
		StartAt:        sessionStart,
		EndAt:          sessionEnd,
	})
	suite.Equal(apierrors.ErrCodeInsufficientPermissions, apierrors.CodeOf(err))
}

func (suite *ServiceTestSuite) TestUpdateSession_TransitionTable() {
	template, _ := suite.buildActiveTemplate("Pulse", 1)
	session := suite.scheduleSession(template.ID)

	suite.moveSession(session.ID, models.SessionStateInProgress)
	suite.moveSession(session.ID, models.SessionStateCompleted)

	scheduled := models.SessionStateScheduled
	_, err := suite.sessions.UpdateSession(suite.ctx, suite.ownerActor, session.ID, UpdateSessionInput{State: &scheduled})
	suite.ErrorIs(err, ErrIllegalSessionTransition)
	suite.Equal(apierrors.ErrCodeInvalidOperation, apierrors.CodeOf(err))

	forced, err := suite.sessions.UpdateSession(suite.ctx, suite.ownerActor, session.ID, UpdateSessionInput{State: &scheduled, Force: true})
	suite.Require().NoError(err)
	suite.Equal(models.SessionStateScheduled, forced.State)
}

func (suite *ServiceTestSuite) TestUpdateSession_ValidatesEffectiveWindow() {
	template, _ := suite.buildActiveTemplate("Pulse", 1)
	session := suite.scheduleSession(template.ID)

	early := sessionStart.Add(-time.Hour)
	_, err := suite.sessions.UpdateSession(suite.ctx, suite.ownerActor, session.ID, UpdateSessionInput{EndAt: &early})
	suite.ErrorIs(err, ErrInvalidSessionWindow)

	later := sessionEnd.Add(24 * time.Hour)
	name := "Extended"
	updated, err := suite.sessions.UpdateSession(suite.ctx, suite.ownerActor, session.ID, UpdateSessionInput{EndAt: &later, Name: &name})
	suite.Require().NoError(err)
	suite.Equal("Extended", updated.Name)
	suite.True(updated.EndAt.Equal(later))
}

func (suite *ServiceTestSuite) TestSessionRepositoryUpdate_IsConditional() {
	template, _ := suite.buildActiveTemplate("Pulse", 1)
	session := suite.scheduleSession(template.ID)
	repo := repository.NewSessionRepository(suite.db)

	renamed := "Renamed"
	moved, err := repo.Update(suite.ctx, session.ID, repository.SessionUpdate{Name: &renamed}, &repository.SessionTransition{
		From: models.SessionStateInProgress,
		To:   models.SessionStateCompleted,
	})
	suite.Require().NoError(err)
	suite.False(moved)

	var stored models.Session
	suite.Require().NoError(suite.db.First(&stored, session.ID).Error)
	suite.Equal(session.Name, stored.Name)
	suite.Equal(models.SessionStateScheduled, stored.State)

	moved, err = repo.Update(suite.ctx, session.ID, repository.SessionUpdate{Name: &renamed}, &repository.SessionTransition{
		From: models.SessionStateScheduled,
		To:   models.SessionStateInProgress,
	})
	suite.Require().NoError(err)
	suite.True(moved)

	suite.Require().NoError(suite.db.First(&stored, session.ID).Error)
	suite.Equal("Renamed", stored.Name)
	suite.Equal(models.SessionStateInProgress, stored.State)
}

func (suite *ServiceTestSuite) TestUpdateSession_ForcedTransitionLogsWarning() {
	template, _ := suite.buildActiveTemplate("Pulse", 1)
	session := suite.scheduleSession(template.ID)
	suite.moveSession(session.ID, models.SessionStateInProgress)
	suite.moveSession(session.ID, models.SessionStateCompleted)

	core, logs := observer.New(zap.InfoLevel)
	checker := access.NewChecker(repository.NewAccessLinkStore(suite.db))
	sessions := NewSessionService(
		repository.NewSessionRepository(suite.db),
		repository.NewTemplateRepository(suite.db),
		repository.NewOrganizationRepository(suite.db),
		checker,
		zap.New(core),
	)

	scheduled := models.SessionStateScheduled
	_, err := sessions.UpdateSession(suite.ctx, suite.ownerActor, session.ID, UpdateSessionInput{State: &scheduled, Force: true})
	suite.Require().NoError(err)

	entries := logs.FilterMessage("forced session state change").All()
	suite.Require().Len(entries, 1)
	suite.Equal(zapcore.WarnLevel, entries[0].Level)
	suite.Equal(string(models.SessionStateCompleted), entries[0].ContextMap()["from"])
}

func (suite *ServiceTestSuite) TestDeleteSession_CancelsAndHides() {
	template, _ := suite.buildActiveTemplate("Pulse", 1)
	session := suite.scheduleSession(template.ID)

	suite.Require().NoError(suite.sessions.DeleteSession(suite.ctx, suite.ownerActor, session.ID))

	_, err := suite.sessions.GetSession(suite.ctx, suite.ownerActor, session.ID)
	suite.ErrorIs(err, ErrSessionNotFound)

	var stored models.Session
	suite.Require().NoError(suite.db.Unscoped().First(&stored, session.ID).Error)
	suite.Equal(models.SessionStateCancelled, stored.State)
	suite.True(stored.DeletedAt.Valid)
}

func (suite *ServiceTestSuite) TestListSessions_FiltersByState() {
	template, _ := suite.buildActiveTemplate("Pulse", 1)
	first := suite.scheduleSession(template.ID)
	suite.scheduleSession(template.ID)
	suite.moveSession(first.ID, models.SessionStateInProgress)

	inProgress := models.SessionStateInProgress
	sessions, total, err := suite.sessions.ListSessions(suite.ctx, suite.memberActor, suite.org.ID, &inProgress, utils.NewPaginationParams(1, 10))
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Require().Len(sessions, 1)
	suite.Equal(first.ID, sessions[0].ID)
}
