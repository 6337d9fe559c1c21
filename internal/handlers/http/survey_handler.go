package http

import (
	"io"
	"net/http"
	"time"

	"shipshape/internal/core/domain"
	"shipshape/internal/core/ports"
	"shipshape/internal/infrastructure/pipeline"
	apperrors "shipshape/pkg/errors"

	"github.com/gin-gonic/gin"
)

type SurveyHandler struct {
	surveys  ports.SurveyService
	analyzer ports.Analyzer
}

func NewSurveyHandler(surveys ports.SurveyService, analyzer ports.Analyzer) *SurveyHandler {
	return &SurveyHandler{
		surveys:  surveys,
		analyzer: analyzer,
	}
}

// SetupRoutes registers the survey CRUD and analysis endpoints on an
// already-gated route group.
func (h *SurveyHandler) SetupRoutes(api *gin.RouterGroup) {
	api.GET("/surveys", h.ListSurveys)
	api.POST("/surveys", h.CreateSurvey)
	api.GET("/surveys/:id", h.GetSurvey)
	api.PATCH("/surveys/:id/status", h.UpdateSurveyStatus)
	api.POST("/ai/analyze", h.Analyze)
}

type createSurveyRequest struct {
	Title       string `json:"title"`
	VesselName  string `json:"vessel_name"`
	SurveyType  string `json:"survey_type"`
	ScheduledAt string `json:"scheduled_at"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

func (h *SurveyHandler) CreateSurvey(c *gin.Context) {
	userID, ok := pipeline.CurrentUser(c)
	if !ok {
		c.Error(apperrors.NewUnauthenticated("authentication required"))
		return
	}

	var req createSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidation("body", "must be a valid JSON object"))
		return
	}

	// A malformed date stays the zero value; the service reports it in
	// field order with the rest of the constraints.
	scheduledAt, _ := time.Parse(time.RFC3339, req.ScheduledAt)

	survey, err := h.surveys.Create(c.Request.Context(), userID, ports.CreateSurveyInput{
		Title:       req.Title,
		VesselName:  req.VesselName,
		Type:        domain.SurveyType(req.SurveyType),
		ScheduledAt: scheduledAt,
		Location:    req.Location,
		Description: req.Description,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"survey": survey})
}

func (h *SurveyHandler) ListSurveys(c *gin.Context) {
	userID, ok := pipeline.CurrentUser(c)
	if !ok {
		c.Error(apperrors.NewUnauthenticated("authentication required"))
		return
	}

	surveys, err := h.surveys.List(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	if surveys == nil {
		surveys = []*domain.Survey{}
	}

	c.JSON(http.StatusOK, gin.H{"surveys": surveys})
}

func (h *SurveyHandler) GetSurvey(c *gin.Context) {
	userID, ok := pipeline.CurrentUser(c)
	if !ok {
		c.Error(apperrors.NewUnauthenticated("authentication required"))
		return
	}

	survey, err := h.surveys.Get(c.Request.Context(), userID, domain.SurveyID(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"survey": survey})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *SurveyHandler) UpdateSurveyStatus(c *gin.Context) {
	userID, ok := pipeline.CurrentUser(c)
	if !ok {
		c.Error(apperrors.NewUnauthenticated("authentication required"))
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidation("status", "is required"))
		return
	}

	survey, err := h.surveys.UpdateStatus(c.Request.Context(), userID, domain.SurveyID(c.Param("id")), domain.SurveyStatus(req.Status))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"survey": survey})
}

// Analyze forwards the request body to the downstream AI service and
// returns its response untouched.
func (h *SurveyHandler) Analyze(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Error(apperrors.NewValidation("body", "could not be read"))
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), payload)
	if err != nil {
		c.Error(apperrors.Wrap(err, apperrors.ErrCodeInternal, "analysis unavailable", http.StatusInternalServerError))
		return
	}

	c.Data(http.StatusOK, "application/json", result)
}
