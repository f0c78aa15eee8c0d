package services

import (
	"strings"

	"github.com/yukikurage/assessment-api/internal/access"
	apierrors "github.com/yukikurage/assessment-api/internal/errors"
	"github.com/yukikurage/assessment-api/internal/models"
)

func (suite *ServiceTestSuite) TestCreateTemplate_GeneratesSlugAndStartsAsDraft() {
	template, err := suite.templates.CreateTemplate(suite.ctx, suite.ownerActor, CreateTemplateInput{
		OrganizationID: suite.org.ID,
		Name:           "Annual Review",
		Meta:           map[string]interface{}{"audience": "engineering"},
	})
	suite.Require().NoError(err)

	suite.True(strings.HasPrefix(template.Slug, "annual-review-"))
	suite.Equal(models.TemplateStateDraft, template.State)
	suite.Equal(1, template.Version)

	var link models.TemplateLink
	suite.Require().NoError(suite.db.Where("template_id = ? AND organization_id = ?", template.ID, suite.org.ID).First(&link).Error)
	suite.Equal(models.AccessAdmin, link.AccessLevel)
}

func (suite *ServiceTestSuite) TestCreateTemplate_RejectsTakenSlug() {
	first, err := suite.templates.CreateTemplate(suite.ctx, suite.ownerActor, CreateTemplateInput{
		OrganizationID: suite.org.ID,
		Name:           "First",
		Slug:           "Team Pulse",
	})
	suite.Require().NoError(err)
	suite.Equal("team-pulse", first.Slug)

	_, err = suite.templates.CreateTemplate(suite.ctx, suite.ownerActor, CreateTemplateInput{
		OrganizationID: suite.org.ID,
		Name:           "Second",
		Slug:           "team-pulse",
	})
	suite.ErrorIs(err, ErrSlugTaken)
}

func (suite *ServiceTestSuite) TestUpdateTemplate_NeverReturnsToDraft() {
	template, _ := suite.buildActiveTemplate("Pulse", 1)

	draft := models.TemplateStateDraft
	_, err := suite.templates.UpdateTemplate(suite.ctx, suite.ownerActor, suite.org.ID, template.ID, UpdateTemplateInput{State: &draft})
	suite.ErrorIs(err, ErrTemplateBackToDraft)

	closed := models.TemplateStateClosed
	updated, err := suite.templates.UpdateTemplate(suite.ctx, suite.ownerActor, suite.org.ID, template.ID, UpdateTemplateInput{State: &closed})
	suite.Require().NoError(err)
	suite.Equal(models.TemplateStateClosed, updated.State)
}

func (suite *ServiceTestSuite) TestReorderSections() {
	template, err := suite.templates.CreateTemplate(suite.ctx, suite.ownerActor, CreateTemplateInput{
		OrganizationID: suite.org.ID,
		Name:           "Ordered",
	})
	suite.Require().NoError(err)

	var ids []uint64
	for _, title := range []string{"A", "B", "C"} {
		section, err := suite.templates.CreateSection(suite.ctx, suite.ownerActor, suite.org.ID, CreateSectionInput{
			TemplateID: template.ID,
			Title:      title,
		})
		suite.Require().NoError(err)
		suite.Equal(len(ids), section.Order)
		ids = append(ids, section.ID)
	}

	_, err = suite.templates.ReorderSections(suite.ctx, suite.ownerActor, suite.org.ID, template.ID, []uint64{ids[0], ids[1]})
	suite.ErrorIs(err, ErrNotAPermutation)

	_, err = suite.templates.ReorderSections(suite.ctx, suite.ownerActor, suite.org.ID, template.ID, []uint64{ids[0], ids[1], ids[1]})
	suite.ErrorIs(err, ErrNotAPermutation)

	sections, err := suite.templates.ReorderSections(suite.ctx, suite.ownerActor, suite.org.ID, template.ID, []uint64{ids[2], ids[0], ids[1]})
	suite.Require().NoError(err)
	suite.Require().Len(sections, 3)
	suite.Equal([]uint64{ids[2], ids[0], ids[1]}, sectionIDs(sections))
	for i, section := range sections {
		suite.Equal(i, section.Order)
	}
}

func (suite *ServiceTestSuite) TestDeleteTemplateQuestion_CompactsOrder() {
	_, links := suite.buildActiveTemplate("Compact", 3)

	err := suite.templates.DeleteTemplateQuestion(suite.ctx, suite.ownerActor, suite.org.ID, links[1].ID)
	suite.Require().NoError(err)

	remaining, err := suite.templates.ReorderSectionQuestions(suite.ctx, suite.ownerActor, suite.org.ID, links[0].SectionID, []uint64{links[0].ID, links[2].ID})
	suite.Require().NoError(err)
	suite.Require().Len(remaining, 2)
	suite.Equal(0, remaining[0].Order)
	suite.Equal(1, remaining[1].Order)
	suite.Equal(links[2].ID, remaining[1].ID)
}

func (suite *ServiceTestSuite) TestSetSectionQuestions_ReplacesLinks() {
	built, links := suite.buildActiveTemplate("Replace", 2)
	sectionID := links[0].SectionID

	replaced, err := suite.templates.SetSectionQuestions(suite.ctx, suite.ownerActor, suite.org.ID, sectionID, []TemplateQuestionInput{
		{QuestionID: links[1].QuestionID, Perspectives: []string{"PEER", "PEER", "MANAGER"}},
	})
	suite.Require().NoError(err)
	suite.Require().Len(replaced, 1)
	suite.Len(replaced[0].Perspectives, 2)

	_, err = suite.templates.SetSectionQuestions(suite.ctx, suite.ownerActor, suite.org.ID, sectionID, []TemplateQuestionInput{
		{QuestionID: links[0].QuestionID, Perspectives: []string{"BOSS"}},
	})
	suite.ErrorIs(err, ErrInvalidPerspective)

	template, err := suite.templates.GetTemplate(suite.ctx, suite.ownerActor, suite.org.ID, built.ID)
	suite.Require().NoError(err)
	suite.Require().Len(template.Sections, 1)
	suite.Require().Len(template.Sections[0].Questions, 1)
	suite.Equal(replaced[0].ID, template.Sections[0].Questions[0].ID)
}

func (suite *ServiceTestSuite) TestTemplateAccess_NonMemberGetsPermissionError() {
	outsider := suite.createUser("outsider@example.com")
	outsiderOrg := suite.createOrganization("Outsiders", map[uint64][]models.OrganizationRole{
		outsider.ID: {models.RoleOwner},
	})
	outsiderActor := suite.actor(outsider.ID)

	template, _ := suite.buildActiveTemplate("Private", 1)

	_, err := suite.templates.GetTemplate(suite.ctx, outsiderActor, suite.org.ID, template.ID)
	suite.ErrorIs(err, access.ErrNotOrganizationMember)
	suite.Equal(apierrors.ErrCodeForbidden, apierrors.CodeOf(err))

	_, err = suite.templates.GetTemplate(suite.ctx, outsiderActor, outsiderOrg.ID, template.ID)
	suite.ErrorIs(err, access.ErrNoResourceLink)
	suite.Equal(apierrors.ErrCodeForbidden, apierrors.CodeOf(err))

	_, err = suite.templates.LinkTemplate(suite.ctx, suite.ownerActor, suite.org.ID, LinkTemplateInput{
		TemplateID:           template.ID,
		TargetOrganizationID: outsiderOrg.ID,
		Level:                models.AccessUse,
	})
	suite.Require().NoError(err)

	shared, err := suite.templates.GetTemplate(suite.ctx, outsiderActor, outsiderOrg.ID, template.ID)
	suite.Require().NoError(err)
	suite.Equal(template.ID, shared.ID)

	name := "Renamed"
	_, err = suite.templates.UpdateTemplate(suite.ctx, outsiderActor, outsiderOrg.ID, template.ID, UpdateTemplateInput{Name: &name})
	suite.ErrorIs(err, access.ErrInsufficientAccessLevel)
	suite.Equal(apierrors.ErrCodeInsufficientPermissions, apierrors.CodeOf(err))

	listed, err := suite.templates.ListTemplates(suite.ctx, outsiderActor, outsiderOrg.ID)
	suite.Require().NoError(err)
	suite.Len(listed, 1)
}

func (suite *ServiceTestSuite) TestGetTemplate_UnknownTemplate() {
	_, err := suite.templates.GetTemplate(suite.ctx, suite.ownerActor, suite.org.ID, 9999)
	suite.ErrorIs(err, ErrTemplateNotFound)
}

func (suite *ServiceTestSuite) TestUpdateSection_UnknownSection() {
	title := "x"
	_, err := suite.templates.UpdateSection(suite.ctx, suite.ownerActor, suite.org.ID, 9999, UpdateSectionInput{Title: &title})
	suite.ErrorIs(err, ErrSectionNotFound)
}
