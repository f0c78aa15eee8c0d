package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/assessment-api/internal/dto"
	apierrors "github.com/yukikurage/assessment-api/internal/errors"
	"github.com/yukikurage/assessment-api/internal/services"
	"go.uber.org/zap"
)

// TemplateHandler serves the template graph: templates, sections and question links.
// Every route runs behind ResolveOrganization; the resolved organization is the acting one.
type TemplateHandler struct {
	templateService *services.TemplateService
	log             *zap.Logger
}

func NewTemplateHandler(templateService *services.TemplateService, log *zap.Logger) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
		log:             log,
	}
}

func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}

	var req dto.CreateTemplateRequest
	if !bindJSON(c, &req) {
		return
	}

	template, err := h.templateService.CreateTemplate(c.Request.Context(), s.actor, req.ToInput(s.orgID))
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, template)
}

func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}

	templates, err := h.templateService.ListTemplates(c.Request.Context(), s.actor, s.orgID)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"templates": templates,
	})
}

// GetTemplate returns the full ordered graph of a template.
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	templateID, ok := parseID(c, "templateId")
	if !ok {
		return
	}

	template, err := h.templateService.GetTemplate(c.Request.Context(), s.actor, s.orgID, templateID)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, template)
}

func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	templateID, ok := parseID(c, "templateId")
	if !ok {
		return
	}

	var req dto.UpdateTemplateRequest
	if !bindJSON(c, &req) {
		return
	}

	template, err := h.templateService.UpdateTemplate(c.Request.Context(), s.actor, s.orgID, templateID, req.ToInput())
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, template)
}

func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	templateID, ok := parseID(c, "templateId")
	if !ok {
		return
	}

	if err := h.templateService.DeleteTemplate(c.Request.Context(), s.actor, s.orgID, templateID); err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Template deleted successfully",
	})
}

// LinkTemplate shares the template with another organization.
func (h *TemplateHandler) LinkTemplate(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	templateID, ok := parseID(c, "templateId")
	if !ok {
		return
	}

	var req dto.LinkRequest
	if !bindJSON(c, &req) {
		return
	}

	link, err := h.templateService.LinkTemplate(c.Request.Context(), s.actor, s.orgID, services.LinkTemplateInput{
		TemplateID:           templateID,
		TargetOrganizationID: req.TargetOrganizationID,
		Level:                req.Level,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, link)
}

func (h *TemplateHandler) CreateSection(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	templateID, ok := parseID(c, "templateId")
	if !ok {
		return
	}

	var req dto.CreateSectionRequest
	if !bindJSON(c, &req) {
		return
	}

	section, err := h.templateService.CreateSection(c.Request.Context(), s.actor, s.orgID, services.CreateSectionInput{
		TemplateID:  templateID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, section)
}

func (h *TemplateHandler) ReorderSections(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	templateID, ok := parseID(c, "templateId")
	if !ok {
		return
	}

	var req dto.ReorderRequest
	if !bindJSON(c, &req) {
		return
	}

	sections, err := h.templateService.ReorderSections(c.Request.Context(), s.actor, s.orgID, templateID, req.IDs)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sections": sections,
	})
}

func (h *TemplateHandler) UpdateSection(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	sectionID, ok := parseID(c, "sectionId")
	if !ok {
		return
	}

	var req dto.UpdateSectionRequest
	if !bindJSON(c, &req) {
		return
	}

	section, err := h.templateService.UpdateSection(c.Request.Context(), s.actor, s.orgID, sectionID, services.UpdateSectionInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, section)
}

func (h *TemplateHandler) DeleteSection(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	sectionID, ok := parseID(c, "sectionId")
	if !ok {
		return
	}

	if err := h.templateService.DeleteSection(c.Request.Context(), s.actor, s.orgID, sectionID); err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Section deleted successfully",
	})
}

func (h *TemplateHandler) AddTemplateQuestion(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	sectionID, ok := parseID(c, "sectionId")
	if !ok {
		return
	}

	var req dto.TemplateQuestionRequest
	if !bindJSON(c, &req) {
		return
	}

	link, err := h.templateService.AddTemplateQuestion(c.Request.Context(), s.actor, s.orgID, sectionID, req.ToInput())
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, link)
}

// SetSectionQuestions replaces the whole question list of a section.
func (h *TemplateHandler) SetSectionQuestions(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	sectionID, ok := parseID(c, "sectionId")
	if !ok {
		return
	}

	var req dto.SetSectionQuestionsRequest
	if !bindJSON(c, &req) {
		return
	}

	links, err := h.templateService.SetSectionQuestions(c.Request.Context(), s.actor, s.orgID, sectionID, req.ToInputs())
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"questions": links,
	})
}

func (h *TemplateHandler) ReorderSectionQuestions(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	sectionID, ok := parseID(c, "sectionId")
	if !ok {
		return
	}

	var req dto.ReorderRequest
	if !bindJSON(c, &req) {
		return
	}

	links, err := h.templateService.ReorderSectionQuestions(c.Request.Context(), s.actor, s.orgID, sectionID, req.IDs)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"questions": links,
	})
}

func (h *TemplateHandler) UpdateTemplateQuestion(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	linkID, ok := parseID(c, "linkId")
	if !ok {
		return
	}

	var req dto.UpdateTemplateQuestionRequest
	if !bindJSON(c, &req) {
		return
	}

	link, err := h.templateService.UpdateTemplateQuestion(c.Request.Context(), s.actor, s.orgID, linkID, services.UpdateTemplateQuestionInput{
		Required:     req.Required,
		Perspectives: req.Perspectives,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, link)
}

func (h *TemplateHandler) DeleteTemplateQuestion(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	linkID, ok := parseID(c, "linkId")
	if !ok {
		return
	}

	if err := h.templateService.DeleteTemplateQuestion(c.Request.Context(), s.actor, s.orgID, linkID); err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Question removed from section",
	})
}
