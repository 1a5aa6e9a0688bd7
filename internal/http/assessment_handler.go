package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Dkbhardwaj07/personality-assessment-system/internal/domain"
	"github.com/Dkbhardwaj07/personality-assessment-system/internal/service"
)

// AssessmentHandler atiende los envios de respuestas de candidatos.
type AssessmentHandler struct {
	logger        *zap.Logger
	submissions   *service.SubmissionService
	submitTimeout time.Duration
}

func NewAssessmentHandler(logger *zap.Logger, submissions *service.SubmissionService, submitTimeout time.Duration) *AssessmentHandler {
	if submitTimeout <= 0 {
		submitTimeout = 30 * time.Second
	}
	return &AssessmentHandler{
		logger:        logger,
		submissions:   submissions,
		submitTimeout: submitTimeout,
	}
}

// SubmitResponse maneja POST /submit_response.
func (h *AssessmentHandler) SubmitResponse(c *gin.Context) {
	var req domain.CandidateResponse
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid submit request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.submitTimeout)
	defer cancel()

	profile, err := h.submissions.Submit(ctx, req)
	if err != nil {
		status, detail := submissionErrorResponse(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("submit response failed", zap.Int("status", status), zap.Error(err))
		} else {
			h.logger.Info("submit response rejected", zap.Int("status", status), zap.Error(err))
		}
		c.JSON(status, gin.H{"detail": detail})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":            "Response submitted successfully",
		"personality_traits": profile.TraitScores,
	})
}

func submissionErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidSubmission):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrDuplicateEmail):
		return http.StatusBadRequest, "Email already exists. Please use a different email."
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests, "too many submissions, try again later"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "submission timed out"
	case errors.Is(err, service.ErrScoringFailed):
		return http.StatusBadGateway, "personality scoring unavailable"
	case errors.Is(err, service.ErrProfileWrite):
		return http.StatusInternalServerError, "could not store profile"
	}
	return http.StatusInternalServerError, "could not process submission"
}
