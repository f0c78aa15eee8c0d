package services

import (
	apierrors "github.com/yukikurage/assessment-api/internal/errors"
	"github.com/yukikurage/assessment-api/internal/models"
)

func (suite *ServiceTestSuite) TestCreateQuestion_ShapeRules() {
	bank, err := suite.questions.CreateQuestionBank(suite.ctx, suite.ownerActor, suite.org.ID, "Core", "")
	suite.Require().NoError(err)

	lo, hi := 5.0, 1.0
	_, err = suite.questions.CreateQuestion(suite.ctx, suite.ownerActor, suite.org.ID, CreateQuestionInput{
		BankID: bank.ID, Text: "Rate", Type: models.QuestionTypeScale, MinScale: &lo, MaxScale: &hi,
	})
	suite.ErrorIs(err, ErrInvalidScaleRange)

	_, err = suite.questions.CreateQuestion(suite.ctx, suite.ownerActor, suite.org.ID, CreateQuestionInput{
		BankID: bank.ID, Text: "Pick", Type: models.QuestionTypeSingleChoice,
	})
	suite.ErrorIs(err, ErrOptionsRequired)

	_, err = suite.questions.CreateQuestion(suite.ctx, suite.ownerActor, suite.org.ID, CreateQuestionInput{
		BankID: bank.ID, Text: "Say", Type: models.QuestionTypeText, Options: []OptionInput{{Value: "a"}},
	})
	suite.ErrorIs(err, ErrOptionsNotAllowed)

	_, err = suite.questions.CreateQuestion(suite.ctx, suite.ownerActor, suite.org.ID, CreateQuestionInput{
		BankID: bank.ID, Text: "Pick", Type: models.QuestionTypeMultiChoice, Options: []OptionInput{{Value: "a"}, {Value: " a "}},
	})
	suite.ErrorIs(err, ErrDuplicateOptionValue)

	_, err = suite.questions.CreateQuestion(suite.ctx, suite.ownerActor, suite.org.ID, CreateQuestionInput{
		BankID: bank.ID, Text: "Pick", Type: "RANKING",
	})
	suite.ErrorIs(err, ErrInvalidQuestionType)

	question, err := suite.questions.CreateQuestion(suite.ctx, suite.ownerActor, suite.org.ID, CreateQuestionInput{
		BankID: bank.ID, Text: "Pick", Type: models.QuestionTypeSingleChoice,
		Options: []OptionInput{{Value: "red"}, {Value: "blue", Label: "Blue"}},
	})
	suite.Require().NoError(err)
	suite.Equal([]string{"red", "blue"}, question.OptionValues())
	suite.Equal("red", question.Options[0].Label)
}

func (suite *ServiceTestSuite) TestOptionSets() {
	bank, err := suite.questions.CreateQuestionBank(suite.ctx, suite.ownerActor, suite.org.ID, "Core", "")
	suite.Require().NoError(err)
	otherBank, err := suite.questions.CreateQuestionBank(suite.ctx, suite.ownerActor, suite.org.ID, "Other", "")
	suite.Require().NoError(err)

	set, err := suite.questions.CreateOptionSet(suite.ctx, suite.ownerActor, suite.org.ID, bank.ID, "Agreement", []OptionInput{
		{Value: "agree"}, {Value: "disagree"},
	})
	suite.Require().NoError(err)

	_, err = suite.questions.CreateQuestion(suite.ctx, suite.ownerActor, suite.org.ID, CreateQuestionInput{
		BankID: otherBank.ID, Text: "Pick", Type: models.QuestionTypeSingleChoice, OptionSetID: &set.ID,
	})
	suite.ErrorIs(err, ErrOptionSetForeignBank)

	_, err = suite.questions.CreateQuestion(suite.ctx, suite.ownerActor, suite.org.ID, CreateQuestionInput{
		BankID: bank.ID, Text: "Pick", Type: models.QuestionTypeSingleChoice, OptionSetID: &set.ID, Options: []OptionInput{{Value: "x"}},
	})
	suite.ErrorIs(err, ErrOptionSourceConflict)

	question, err := suite.questions.CreateQuestion(suite.ctx, suite.ownerActor, suite.org.ID, CreateQuestionInput{
		BankID: bank.ID, Text: "Pick", Type: models.QuestionTypeSingleChoice, OptionSetID: &set.ID,
	})
	suite.Require().NoError(err)
	suite.Equal([]string{"agree", "disagree"}, question.OptionValues())

	_, err = suite.questions.ReplaceOptions(suite.ctx, suite.ownerActor, suite.org.ID, set.ID, []OptionInput{
		{Value: "yes"}, {Value: "no"}, {Value: "maybe"},
	})
	suite.Require().NoError(err)

	reloaded, err := suite.questions.GetQuestion(suite.ctx, suite.ownerActor, suite.org.ID, question.ID)
	suite.Require().NoError(err)
	suite.Equal([]string{"yes", "no", "maybe"}, reloaded.OptionValues())

	_, err = suite.questions.ReplaceOptions(suite.ctx, suite.ownerActor, suite.org.ID, set.ID, nil)
	suite.ErrorIs(err, ErrOptionsRequired)
}

func (suite *ServiceTestSuite) TestUpdateQuestion_ScaleOnly() {
	bank, err := suite.questions.CreateQuestionBank(suite.ctx, suite.ownerActor, suite.org.ID, "Core", "")
	suite.Require().NoError(err)
	lo, hi := 1.0, 5.0
	question, err := suite.questions.CreateQuestion(suite.ctx, suite.ownerActor, suite.org.ID, CreateQuestionInput{
		BankID: bank.ID, Text: "Rate", Type: models.QuestionTypeScale, MinScale: &lo, MaxScale: &hi,
	})
	suite.Require().NoError(err)

	wider := 10.0
	updated, err := suite.questions.UpdateQuestion(suite.ctx, suite.ownerActor, suite.org.ID, question.ID, UpdateQuestionInput{MaxScale: &wider})
	suite.Require().NoError(err)
	suite.Equal(1.0, *updated.MinScale)
	suite.Equal(10.0, *updated.MaxScale)

	tooLow := 0.5
	_, err = suite.questions.UpdateQuestion(suite.ctx, suite.ownerActor, suite.org.ID, question.ID, UpdateQuestionInput{MaxScale: &tooLow})
	suite.ErrorIs(err, ErrInvalidScaleRange)
}

func (suite *ServiceTestSuite) TestQuestionBankLinks() {
	bank, err := suite.questions.CreateQuestionBank(suite.ctx, suite.ownerActor, suite.org.ID, "Core", "")
	suite.Require().NoError(err)

	outsider := suite.createUser("outsider@example.com")
	partner := suite.createOrganization("Partner", map[uint64][]models.OrganizationRole{outsider.ID: {models.RoleOwner}})
	partnerActor := suite.actor(outsider.ID)

	_, err = suite.questions.ListQuestions(suite.ctx, partnerActor, partner.ID, bank.ID)
	suite.Equal(apierrors.ErrCodeForbidden, apierrors.CodeOf(err))

	_, err = suite.questions.LinkQuestionBank(suite.ctx, suite.ownerActor, suite.org.ID, bank.ID, suite.org.ID, models.AccessUse)
	suite.ErrorIs(err, ErrCannotLinkToOwner)

	_, err = suite.questions.LinkQuestionBank(suite.ctx, suite.ownerActor, suite.org.ID, bank.ID, partner.ID, models.AccessUse)
	suite.Require().NoError(err)

	_, err = suite.questions.ListQuestions(suite.ctx, partnerActor, partner.ID, bank.ID)
	suite.NoError(err)

	_, err = suite.questions.CreateQuestion(suite.ctx, partnerActor, partner.ID, CreateQuestionInput{
		BankID: bank.ID, Text: "Sneaky", Type: models.QuestionTypeText,
	})
	suite.Equal(apierrors.ErrCodeInsufficientPermissions, apierrors.CodeOf(err))

	banks, err := suite.questions.ListQuestionBanks(suite.ctx, partnerActor, partner.ID)
	suite.Require().NoError(err)
	suite.Len(banks, 1)
}
