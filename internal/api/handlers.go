package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/imaging-appropriateness-mcp-server/internal/domain"
	"github.com/imaging-appropriateness-mcp-server/internal/feedback"
	"github.com/imaging-appropriateness-mcp-server/internal/knowledge"
	"github.com/imaging-appropriateness-mcp-server/internal/service"
)

const maxPatientAge = 120

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"dataset_version": s.base.Version(),
		"timestamp":       time.Now().UTC(),
	})
}

// handleEvaluate runs one appropriateness evaluation
func (s *Server) handleEvaluate(c *gin.Context) {
	var req domain.ClinicalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "Malformed request body", err.Error())
		return
	}

	if errs := validateRequest(&req); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":           domain.ErrValidation,
			"message":        "Request validation failed",
			"errors":         errs,
			"correlation_id": c.GetString("correlation_id"),
		})
		return
	}

	result := s.evaluator.Load().Evaluate(&req)
	c.JSON(http.StatusOK, result)
}

// validateRequest checks the request fields the engine cannot tolerate
func validateRequest(req *domain.ClinicalRequest) []*domain.ValidationError {
	var errs []*domain.ValidationError

	if req.Topic == "" {
		errs = append(errs, domain.NewValidationError("topic", "topic is required", req.Topic))
	}
	if req.Procedure == "" {
		errs = append(errs, domain.NewValidationError("procedure", "procedure is required", req.Procedure))
	}
	if req.Scenario.Age < 0 || req.Scenario.Age > maxPatientAge {
		errs = append(errs, domain.NewValidationError("scenario.age", "age must be between 0 and 120", req.Scenario.Age))
	}
	if req.Scenario.DurationDays != nil && *req.Scenario.DurationDays < 0 {
		errs = append(errs, domain.NewValidationError("scenario.duration_days", "duration must not be negative", *req.Scenario.DurationDays))
	}
	if req.Scenario.EGFR != nil && *req.Scenario.EGFR <= 0 {
		errs = append(errs, domain.NewValidationError("scenario.egfr", "egfr must be positive", *req.Scenario.EGFR))
	}
	for i, prior := range req.Scenario.PriorImaging {
		if prior.DaysAgo < 0 {
			errs = append(errs, domain.NewValidationError("scenario.prior_imaging", "days_ago must not be negative", prior.DaysAgo))
		}
		if prior.Region == "" {
			errs = append(errs, domain.NewValidationError("scenario.prior_imaging", "region is required", i))
		}
	}
	return errs
}

// handleListTopics returns the distinct topics of the current dataset
func (s *Server) handleListTopics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"dataset_version": s.base.Version(),
		"topics":          s.base.Topics(),
	})
}

// handleListCriteria returns criteria facts, optionally filtered by topic
func (s *Server) handleListCriteria(c *gin.Context) {
	var facts []domain.CriteriaFact
	if topic := c.Query("topic"); topic != "" {
		facts = s.base.FindByTopic(topic)
	} else {
		facts = s.base.All()
	}

	c.JSON(http.StatusOK, gin.H{
		"dataset_version": s.base.Version(),
		"count":           len(facts),
		"criteria":        facts,
	})
}

// handleGetCriteria returns a single fact by id
func (s *Server) handleGetCriteria(c *gin.Context) {
	id := c.Param("id")
	fact, ok := s.base.Get(id)
	if !ok {
		s.respondError(c, http.StatusNotFound, domain.ErrKnowledgeBase, "Criteria fact not found", id)
		return
	}
	c.JSON(http.StatusOK, fact)
}

// handleReload replaces the knowledge base and the scoring rules with a fresh
// parse of the configured dataset. In-flight evaluations finish against the
// snapshot they started with.
func (s *Server) handleReload(c *gin.Context) {
	path := s.configManager.GetKnowledgeConfig().DatasetPath

	ds, err := knowledge.LoadDataset(path)
	if err != nil {
		s.respondError(c, http.StatusUnprocessableEntity, domain.ErrKnowledgeBase, "Dataset failed to load", err.Error())
		return
	}
	if err := s.base.Reload(ds); err != nil {
		s.respondError(c, http.StatusUnprocessableEntity, domain.ErrKnowledgeBase, "Dataset rejected", err.Error())
		return
	}

	// Factor rules may have changed with the dataset
	evaluator, err := service.NewEvaluatorService(s.logger, s.base, ds.FactorRules)
	if err != nil {
		s.respondError(c, http.StatusUnprocessableEntity, domain.ErrKnowledgeBase, "Factor rules rejected", err.Error())
		return
	}
	s.evaluator.Store(evaluator)

	c.JSON(http.StatusOK, gin.H{
		"dataset_version": s.base.Version(),
		"fact_count":      len(ds.Facts),
		"reloaded_at":     time.Now().UTC(),
	})
}

// handleSaveFeedback records clinician feedback on an evaluation
func (s *Server) handleSaveFeedback(c *gin.Context) {
	if s.feedbackStore == nil {
		s.respondError(c, http.StatusServiceUnavailable, domain.ErrFeedbackStore, "Feedback capture is disabled", "")
		return
	}

	var fb feedback.Feedback
	if err := c.ShouldBindJSON(&fb); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "Malformed feedback body", err.Error())
		return
	}
	if fb.Topic == "" || fb.Procedure == "" {
		s.respondError(c, http.StatusBadRequest, domain.ErrValidation, "topic and procedure are required", "")
		return
	}

	if err := s.feedbackStore.Save(c.Request.Context(), &fb); err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrFeedbackStore, "Failed to save feedback", err.Error())
		return
	}
	c.JSON(http.StatusCreated, fb)
}

// handleListFeedback returns stored feedback with pagination
func (s *Server) handleListFeedback(c *gin.Context) {
	if s.feedbackStore == nil {
		s.respondError(c, http.StatusServiceUnavailable, domain.ErrFeedbackStore, "Feedback capture is disabled", "")
		return
	}

	limit := parseIntQuery(c, "limit", 50)
	offset := parseIntQuery(c, "offset", 0)

	entries, err := s.feedbackStore.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrFeedbackStore, "Failed to list feedback", err.Error())
		return
	}
	count, err := s.feedbackStore.Count(c.Request.Context())
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrFeedbackStore, "Failed to count feedback", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":    count,
		"limit":    limit,
		"offset":   offset,
		"feedback": entries,
	})
}

// handleFeedbackStats returns agreement aggregates for dataset curators
func (s *Server) handleFeedbackStats(c *gin.Context) {
	if s.feedbackStore == nil {
		s.respondError(c, http.StatusServiceUnavailable, domain.ErrFeedbackStore, "Feedback capture is disabled", "")
		return
	}

	stats, err := s.feedbackStore.Stats(c.Request.Context())
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrFeedbackStore, "Failed to aggregate feedback", err.Error())
		return
	}
	c.JSON(http.StatusOK, stats)
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func (s *Server) respondError(c *gin.Context, status int, code, message, details string) {
	c.JSON(status, domain.NewEngineError(code, message, details, c.GetString("correlation_id")))
}
