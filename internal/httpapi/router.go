// Package httpapi exposes records, form sessions, analysis and the
// formatter over HTTP.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muhammadolammi/interviewmate/internal/analysis"
	"github.com/muhammadolammi/interviewmate/internal/events"
	"github.com/muhammadolammi/interviewmate/internal/formatter"
	"github.com/muhammadolammi/interviewmate/internal/logger"
	"github.com/muhammadolammi/interviewmate/internal/schema"
	"github.com/muhammadolammi/interviewmate/internal/search"
	"github.com/muhammadolammi/interviewmate/internal/store"
)

type Deps struct {
	Log       *logger.Logger
	Store     store.Store
	Auth      Authenticator
	Catalog   *schema.Catalog
	Analysis  *analysis.Service
	Formatter *formatter.Cache
	// Jobs is nil when no broker is configured; async analysis is then
	// unavailable.
	Jobs    events.Enqueuer
	Forms   *FormRegistry
	Matcher *search.Matcher
}

type Handler struct {
	Deps
	log *logger.Logger
}

func NewHandler(d Deps) *Handler {
	if d.Matcher == nil {
		d.Matcher = search.NewMatcher()
	}
	if d.Formatter == nil {
		// size is a positive constant
		d.Formatter, _ = formatter.NewCache(128)
	}
	return &Handler{Deps: d, log: d.Log.With("component", "httpapi")}
}

func HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// NewRouter wires every route. origins feeds the CORS allow list.
func NewRouter(h *Handler, origins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(h.log), CORS(origins))

	router.GET("/healthcheck", HealthCheck)

	api := router.Group("/api")
	api.POST("/format", h.Format)

	protected := api.Group("")
	protected.Use(NewAuthMiddleware(h.log, h.Auth).RequireAuth())

	protected.GET("/me", h.Me)
	protected.POST("/logout", h.Logout)
	protected.GET("/schemas/:type", h.GetSchema)

	// Records
	protected.GET("/records", h.ListRecords)
	protected.GET("/records/:id", h.GetRecord)
	protected.PUT("/records/:id", h.PutRecord)
	protected.DELETE("/records/:id", h.DeleteRecord)
	protected.POST("/records/:id/analyze", h.AnalyzeRecord)

	// Form sessions
	protected.POST("/forms", h.CreateForm)
	forms := protected.Group("/forms/:sid")
	forms.GET("", h.GetForm)
	forms.PATCH("/basic-info", h.PatchBasicInfo)
	forms.PUT("/answers/:qid", h.PutAnswer)
	forms.POST("/notices", h.SetNotice)
	forms.POST("/consent", h.SetConsent)
	forms.POST("/next", h.NextStage)
	forms.POST("/prev", h.PrevStage)
	forms.POST("/stages/:stage", h.JumpToStage)
	forms.POST("/questions/:qid/toggle", h.ToggleQuestion)
	forms.POST("/questions/:qid/focus", h.FocusQuestion)
	forms.POST("/resume", h.AttachResume)
	forms.DELETE("/resume", h.ClearResume)
	forms.POST("/save", h.SaveForm)
	forms.POST("/analyze", h.AnalyzeForm)

	return router
}
