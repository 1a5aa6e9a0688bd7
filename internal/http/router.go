package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Dkbhardwaj07/personality-assessment-system/internal/service"
)

// RouterOptions agrupa lo opcional del router.
type RouterOptions struct {
	// JWT protege las rutas de reclutador; nil las deja abiertas.
	JWT          *service.JWTService
	AllowOrigins []string
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	assessmentH *AssessmentHandler,
	recruiterH *RecruiterHandler,
	live http.Handler,
	opts RouterOptions,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), corsMiddleware(opts.AllowOrigins))

	r.GET("/", recruiterH.Root)
	r.GET("/healthz", recruiterH.Healthz)

	var recruiterAuth []gin.HandlerFunc
	if opts.JWT != nil {
		recruiterAuth = append(recruiterAuth, JWTAuthMiddleware(opts.JWT))
	}

	api := r.Group("", jsonContentTypeMiddleware())
	api.POST("/submit_response", assessmentH.SubmitResponse)

	recruiter := r.Group("", append([]gin.HandlerFunc{jsonContentTypeMiddleware()}, recruiterAuth...)...)
	recruiter.GET("/personality-profile", recruiterH.GetProfile)
	recruiter.GET("/analytics", recruiterH.Analytics)
	recruiter.GET("/analytics/snapshot", recruiterH.AnalyticsSnapshot)
	recruiter.GET("/dashboard", recruiterH.Dashboard)

	// El handshake websocket no lleva Content-Type JSON.
	ws := r.Group("", recruiterAuth...)
	ws.GET("/ws", gin.WrapH(live))
	ws.GET("/ws/recruiter", gin.WrapH(live))

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap. Incluye el reclutador autenticado.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}
		if claims, ok := GetAuthClaims(c); ok {
			fields = append(fields, zap.String("recruiter", claims.Recruiter))
		}
		logger.Info("request", fields...)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}

// corsMiddleware permite los origenes configurados; "*" abre a cualquiera.
func corsMiddleware(origins []string) gin.HandlerFunc {
	allowAll := len(origins) == 0
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
		}
		if o != "" {
			allowed[o] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		h := c.Writer.Header()
		switch {
		case allowAll:
			h.Set("Access-Control-Allow-Origin", "*")
		case origin != "":
			if _, ok := allowed[origin]; ok {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
		}
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
