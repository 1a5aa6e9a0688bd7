package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Dkbhardwaj07/personality-assessment-system/internal/domain"
	"github.com/Dkbhardwaj07/personality-assessment-system/internal/repository"
	"github.com/Dkbhardwaj07/personality-assessment-system/internal/service"
)

const defaultDashboardPageSize = 10

// RecruiterHandler expone perfiles, agregados y el dashboard paginado.
type RecruiterHandler struct {
	logger    *zap.Logger
	profiles  repository.ProfileRepository
	engine    *service.AggregationEngine
	dashboard *service.DashboardViewModel
	ping      func(ctx context.Context) error
}

func NewRecruiterHandler(
	logger *zap.Logger,
	profiles repository.ProfileRepository,
	engine *service.AggregationEngine,
	dashboard *service.DashboardViewModel,
	ping func(ctx context.Context) error,
) *RecruiterHandler {
	return &RecruiterHandler{
		logger:    logger,
		profiles:  profiles,
		engine:    engine,
		dashboard: dashboard,
		ping:      ping,
	}
}

// Root maneja GET /.
func (h *RecruiterHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Personality Assessment API is running"})
}

// Healthz maneja GET /healthz verificando el store.
func (h *RecruiterHandler) Healthz(c *gin.Context) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetProfile maneja GET /personality-profile. Sin email devuelve todos los perfiles.
func (h *RecruiterHandler) GetProfile(c *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(c.Query("email")))
	if email == "" {
		profiles, err := h.profiles.List(c.Request.Context())
		if err != nil {
			h.logger.Error("list profiles failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not list profiles"})
			return
		}
		if profiles == nil {
			profiles = []domain.PersonalityProfile{}
		}
		c.JSON(http.StatusOK, profiles)
		return
	}

	profile, err := h.profiles.GetByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Candidate not found"})
			return
		}
		h.logger.Error("get profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not get profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Analytics maneja GET /analytics: promedio por rasgo.
func (h *RecruiterHandler) Analytics(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Snapshot().TraitAverages)
}

// AnalyticsSnapshot maneja GET /analytics/snapshot.
func (h *RecruiterHandler) AnalyticsSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Snapshot())
}

// Dashboard maneja GET /dashboard?filter=&page=&page_size=.
func (h *RecruiterHandler) Dashboard(c *gin.Context) {
	page, err := intQuery(c, "page", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "page must be an integer"})
		return
	}
	pageSize, err := intQuery(c, "page_size", defaultDashboardPageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "page_size must be an integer"})
		return
	}
	c.JSON(http.StatusOK, h.dashboard.View(c.Query("filter"), page, pageSize))
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
