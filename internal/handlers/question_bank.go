package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/assessment-api/internal/dto"
	apierrors "github.com/yukikurage/assessment-api/internal/errors"
	"github.com/yukikurage/assessment-api/internal/services"
	"go.uber.org/zap"
)

type QuestionBankHandler struct {
	questionService *services.QuestionService
	log             *zap.Logger
}

func NewQuestionBankHandler(questionService *services.QuestionService, log *zap.Logger) *QuestionBankHandler {
	return &QuestionBankHandler{
		questionService: questionService,
		log:             log,
	}
}

func (h *QuestionBankHandler) CreateQuestionBank(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}

	var req dto.CreateQuestionBankRequest
	if !bindJSON(c, &req) {
		return
	}

	bank, err := h.questionService.CreateQuestionBank(c.Request.Context(), s.actor, s.orgID, req.Name, req.Description)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, bank)
}

func (h *QuestionBankHandler) ListQuestionBanks(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}

	banks, err := h.questionService.ListQuestionBanks(c.Request.Context(), s.actor, s.orgID)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"question_banks": banks,
	})
}

func (h *QuestionBankHandler) LinkQuestionBank(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	bankID, ok := parseID(c, "bankId")
	if !ok {
		return
	}

	var req dto.LinkRequest
	if !bindJSON(c, &req) {
		return
	}

	link, err := h.questionService.LinkQuestionBank(c.Request.Context(), s.actor, s.orgID, bankID, req.TargetOrganizationID, req.Level)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, link)
}

func (h *QuestionBankHandler) CreateOptionSet(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	bankID, ok := parseID(c, "bankId")
	if !ok {
		return
	}

	var req dto.CreateOptionSetRequest
	if !bindJSON(c, &req) {
		return
	}

	set, err := h.questionService.CreateOptionSet(c.Request.Context(), s.actor, s.orgID, bankID, req.Name, dto.ToOptionInputs(req.Options))
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, set)
}

func (h *QuestionBankHandler) ReplaceOptions(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	setID, ok := parseID(c, "setId")
	if !ok {
		return
	}

	var req dto.ReplaceOptionsRequest
	if !bindJSON(c, &req) {
		return
	}

	set, err := h.questionService.ReplaceOptions(c.Request.Context(), s.actor, s.orgID, setID, dto.ToOptionInputs(req.Options))
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, set)
}

func (h *QuestionBankHandler) CreateQuestion(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	bankID, ok := parseID(c, "bankId")
	if !ok {
		return
	}

	var req dto.CreateQuestionRequest
	if !bindJSON(c, &req) {
		return
	}

	question, err := h.questionService.CreateQuestion(c.Request.Context(), s.actor, s.orgID, req.ToInput(bankID))
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

func (h *QuestionBankHandler) ListQuestions(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	bankID, ok := parseID(c, "bankId")
	if !ok {
		return
	}

	questions, err := h.questionService.ListQuestions(c.Request.Context(), s.actor, s.orgID, bankID)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"questions": questions,
	})
}

func (h *QuestionBankHandler) GetQuestion(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	questionID, ok := parseID(c, "questionId")
	if !ok {
		return
	}

	question, err := h.questionService.GetQuestion(c.Request.Context(), s.actor, s.orgID, questionID)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

func (h *QuestionBankHandler) UpdateQuestion(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	questionID, ok := parseID(c, "questionId")
	if !ok {
		return
	}

	var req dto.UpdateQuestionRequest
	if !bindJSON(c, &req) {
		return
	}

	question, err := h.questionService.UpdateQuestion(c.Request.Context(), s.actor, s.orgID, questionID, req.ToInput())
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

func (h *QuestionBankHandler) DeleteQuestion(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	questionID, ok := parseID(c, "questionId")
	if !ok {
		return
	}

	if err := h.questionService.DeleteQuestion(c.Request.Context(), s.actor, s.orgID, questionID); err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Question deleted successfully",
	})
}
