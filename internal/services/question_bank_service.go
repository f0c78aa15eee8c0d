package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yukikurage/assessment-api/internal/access"
	"github.com/yukikurage/assessment-api/internal/models"
	"github.com/yukikurage/assessment-api/internal/repository"
	"go.uber.org/zap"
)

// QuestionService manages question banks, option sets and questions.
type QuestionService struct {
	banks   repository.QuestionBankRepository
	orgs    repository.OrganizationRepository
	checker *access.Checker
	log     *zap.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(
	banks repository.QuestionBankRepository,
	orgs repository.OrganizationRepository,
	checker *access.Checker,
	log *zap.Logger,
) *QuestionService {
	return &QuestionService{
		banks:   banks,
		orgs:    orgs,
		checker: checker,
		log:     log,
	}
}

// OptionInput is one selectable value of a choice question.
type OptionInput struct {
	Value string
	Label string
}

// CreateQuestionBank creates a bank owned by the organization.
func (s *QuestionService) CreateQuestionBank(ctx context.Context, actor access.Actor, orgID uint64, name, description string) (*models.QuestionBank, error) {
	if err := access.Authorize(actor, orgID, nil, access.MatchAny); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidBankName
	}

	bank := &models.QuestionBank{
		OrganizationID: orgID,
		Name:           name,
		Description:    description,
	}
	if err := s.banks.CreateWithOwnerLink(ctx, bank); err != nil {
		return nil, fmt.Errorf("failed to create question bank: %w", err)
	}
	return bank, nil
}

// ListQuestionBanks lists banks owned by or shared with the organization.
func (s *QuestionService) ListQuestionBanks(ctx context.Context, actor access.Actor, orgID uint64) ([]models.QuestionBank, error) {
	if err := access.Authorize(actor, orgID, nil, access.MatchAny); err != nil {
		return nil, err
	}

	banks, err := s.banks.ListForOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list question banks: %w", err)
	}
	return banks, nil
}

// LinkQuestionBank grants or changes another organization's access level to a bank.
func (s *QuestionService) LinkQuestionBank(ctx context.Context, actor access.Actor, orgID, bankID, targetOrgID uint64, level models.AccessLevel) (*models.QuestionBankLink, error) {
	if err := access.Authorize(actor, orgID, models.ManagerRoles, access.MatchAny); err != nil {
		return nil, err
	}
	if !level.IsValid() {
		return nil, ErrInvalidAccessLevel
	}
	if err := s.require(ctx, actor, bankID, orgID, models.AccessAdmin); err != nil {
		return nil, err
	}

	bank, err := s.banks.FindByID(ctx, bankID)
	if err != nil {
		return nil, lookupError(err, ErrQuestionBankNotFound, "question bank")
	}
	if bank.OrganizationID == targetOrgID {
		return nil, ErrCannotLinkToOwner
	}
	if _, err := s.orgs.FindByID(ctx, targetOrgID); err != nil {
		return nil, lookupError(err, ErrOrganizationNotFound, "organization")
	}

	link := &models.QuestionBankLink{
		QuestionBankID: bankID,
		OrganizationID: targetOrgID,
		AccessLevel:    level,
	}
	if err := s.banks.UpsertLink(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to link question bank: %w", err)
	}
	return link, nil
}

// CreateOptionSet creates a reusable, ordered option list inside a bank.
func (s *QuestionService) CreateOptionSet(ctx context.Context, actor access.Actor, orgID, bankID uint64, name string, options []OptionInput) (*models.OptionSet, error) {
	if err := s.require(ctx, actor, bankID, orgID, models.AccessEdit); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidOptionSetName
	}
	built, err := buildOptions(options)
	if err != nil {
		return nil, err
	}
	if len(built) == 0 {
		return nil, ErrOptionsRequired
	}

	set := &models.OptionSet{
		QuestionBankID: bankID,
		Name:           name,
		Options:        built,
	}
	if err := s.banks.CreateOptionSet(ctx, set); err != nil {
		return nil, fmt.Errorf("failed to create option set: %w", err)
	}
	return set, nil
}

// ReplaceOptions swaps every option of a set in one transaction.
func (s *QuestionService) ReplaceOptions(ctx context.Context, actor access.Actor, orgID, setID uint64, options []OptionInput) (*models.OptionSet, error) {
	set, err := s.banks.FindOptionSet(ctx, setID)
	if err != nil {
		return nil, lookupError(err, ErrOptionSetNotFound, "option set")
	}
	if err := s.require(ctx, actor, set.QuestionBankID, orgID, models.AccessEdit); err != nil {
		return nil, err
	}

	built, err := buildOptions(options)
	if err != nil {
		return nil, err
	}
	if len(built) == 0 {
		return nil, ErrOptionsRequired
	}

	if err := s.banks.ReplaceOptions(ctx, setID, built); err != nil {
		return nil, fmt.Errorf("failed to replace options: %w", err)
	}

	set, err = s.banks.FindOptionSet(ctx, setID)
	if err != nil {
		return nil, lookupError(err, ErrOptionSetNotFound, "option set")
	}
	return set, nil
}

// CreateQuestionInput represents parameters to create a question.
type CreateQuestionInput struct {
	BankID      uint64
	Text        string
	Type        models.QuestionType
	MinScale    *float64
	MaxScale    *float64
	OptionSetID *uint64
	Options     []OptionInput
}

// CreateQuestion validates the question shape against its type and stores it.
func (s *QuestionService) CreateQuestion(ctx context.Context, actor access.Actor, orgID uint64, input CreateQuestionInput) (*models.Question, error) {
	if err := s.require(ctx, actor, input.BankID, orgID, models.AccessEdit); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, ErrInvalidQuestionText
	}
	if !input.Type.IsValid() {
		return nil, ErrInvalidQuestionType.WithDetails(map[string]string{"type": string(input.Type)})
	}

	question := &models.Question{
		QuestionBankID: input.BankID,
		Text:           text,
		Type:           input.Type,
	}
	if err := applyScale(question, input.MinScale, input.MaxScale); err != nil {
		return nil, err
	}
	options, err := s.applyOptions(ctx, question, input.OptionSetID, input.Options)
	if err != nil {
		return nil, err
	}
	question.Options = options

	if err := s.banks.CreateQuestion(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	created, err := s.banks.FindQuestion(ctx, question.ID)
	if err != nil {
		return nil, lookupError(err, ErrQuestionNotFound, "question")
	}
	return created, nil
}

// UpdateQuestionInput carries question changes. The type is immutable and a given
// option source replaces the current one.
type UpdateQuestionInput struct {
	Text        *string
	MinScale    *float64
	MaxScale    *float64
	OptionSetID *uint64
	Options     []OptionInput
}

// UpdateQuestion edits a question in place.
func (s *QuestionService) UpdateQuestion(ctx context.Context, actor access.Actor, orgID, questionID uint64, input UpdateQuestionInput) (*models.Question, error) {
	question, err := s.banks.FindQuestion(ctx, questionID)
	if err != nil {
		return nil, lookupError(err, ErrQuestionNotFound, "question")
	}
	if err := s.require(ctx, actor, question.QuestionBankID, orgID, models.AccessEdit); err != nil {
		return nil, err
	}

	if input.Text != nil {
		text := strings.TrimSpace(*input.Text)
		if text == "" {
			return nil, ErrInvalidQuestionText
		}
		question.Text = text
	}

	if input.MinScale != nil || input.MaxScale != nil {
		minScale, maxScale := question.MinScale, question.MaxScale
		if input.MinScale != nil {
			minScale = input.MinScale
		}
		if input.MaxScale != nil {
			maxScale = input.MaxScale
		}
		if err := applyScale(question, minScale, maxScale); err != nil {
			return nil, err
		}
	}

	var replacement []models.Option
	if input.OptionSetID != nil || input.Options != nil {
		options, err := s.applyOptions(ctx, question, input.OptionSetID, input.Options)
		if err != nil {
			return nil, err
		}
		replacement = options
		if replacement == nil {
			replacement = []models.Option{}
		}
	}

	question.OptionSet = nil
	if err := s.banks.UpdateQuestion(ctx, question, replacement); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	updated, err := s.banks.FindQuestion(ctx, question.ID)
	if err != nil {
		return nil, lookupError(err, ErrQuestionNotFound, "question")
	}
	return updated, nil
}

// DeleteQuestion soft deletes a question. Template links keep pointing at it.
func (s *QuestionService) DeleteQuestion(ctx context.Context, actor access.Actor, orgID, questionID uint64) error {
	question, err := s.banks.FindQuestion(ctx, questionID)
	if err != nil {
		return lookupError(err, ErrQuestionNotFound, "question")
	}
	if err := s.require(ctx, actor, question.QuestionBankID, orgID, models.AccessAdmin); err != nil {
		return err
	}

	if err := s.banks.DeleteQuestion(ctx, questionID); err != nil {
		return lookupError(err, ErrQuestionNotFound, "question")
	}
	return nil
}

// GetQuestion returns a question with its options.
func (s *QuestionService) GetQuestion(ctx context.Context, actor access.Actor, orgID, questionID uint64) (*models.Question, error) {
	question, err := s.banks.FindQuestion(ctx, questionID)
	if err != nil {
		return nil, lookupError(err, ErrQuestionNotFound, "question")
	}
	if err := s.require(ctx, actor, question.QuestionBankID, orgID, models.AccessUse); err != nil {
		return nil, err
	}
	return question, nil
}

// ListQuestions lists the live questions of a bank.
func (s *QuestionService) ListQuestions(ctx context.Context, actor access.Actor, orgID, bankID uint64) ([]models.Question, error) {
	if err := s.require(ctx, actor, bankID, orgID, models.AccessUse); err != nil {
		return nil, err
	}

	questions, err := s.banks.ListQuestions(ctx, bankID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

func (s *QuestionService) require(ctx context.Context, actor access.Actor, bankID, orgID uint64, level models.AccessLevel) error {
	if _, err := s.checker.Require(ctx, actor, access.ResourceQuestionBank, bankID, orgID, level); err != nil {
		return accessError(err, ErrQuestionBankNotFound)
	}
	return nil
}

// applyScale sets the bounds of a SCALE question; other types carry none.
func applyScale(question *models.Question, minScale, maxScale *float64) error {
	question.MinScale, question.MaxScale = nil, nil
	if question.Type != models.QuestionTypeScale {
		return nil
	}
	if minScale != nil && maxScale != nil && *minScale > *maxScale {
		return ErrInvalidScaleRange
	}
	question.MinScale, question.MaxScale = minScale, maxScale
	return nil
}

// applyOptions sets the option source for the question type and returns the inline options to store.
func (s *QuestionService) applyOptions(ctx context.Context, question *models.Question, optionSetID *uint64, inline []OptionInput) ([]models.Option, error) {
	if !question.Type.IsChoice() {
		if optionSetID != nil || len(inline) > 0 {
			return nil, ErrOptionsNotAllowed
		}
		question.OptionSetID = nil
		return nil, nil
	}

	switch {
	case optionSetID != nil && len(inline) > 0:
		return nil, ErrOptionSourceConflict
	case optionSetID != nil:
		set, err := s.banks.FindOptionSet(ctx, *optionSetID)
		if err != nil {
			return nil, lookupError(err, ErrOptionSetNotFound, "option set")
		}
		if set.QuestionBankID != question.QuestionBankID {
			return nil, ErrOptionSetForeignBank
		}
		question.OptionSetID = optionSetID
		return nil, nil
	case len(inline) > 0:
		question.OptionSetID = nil
		return buildOptions(inline)
	}
	return nil, ErrOptionsRequired
}

// buildOptions validates option values and assigns their order.
func buildOptions(inputs []OptionInput) ([]models.Option, error) {
	options := make([]models.Option, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for i, in := range inputs {
		value := strings.TrimSpace(in.Value)
		if value == "" {
			return nil, ErrInvalidOptionValue
		}
		if seen[value] {
			return nil, ErrDuplicateOptionValue.WithDetails(map[string]string{"value": value})
		}
		seen[value] = true

		label := in.Label
		if label == "" {
			label = value
		}
		options = append(options, models.Option{Value: value, Label: label, Order: i})
	}
	return options, nil
}
