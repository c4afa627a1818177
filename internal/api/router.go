// Package api exposes the learner's state and the AI helpers over HTTP
// for the browser front end.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/vuequest/internal/app"
	"github.com/abhisek/vuequest/internal/metrics"
)

type handler struct {
	app *app.App
	log *zap.Logger
}

// NewRouter builds the gin engine serving a.
func NewRouter(a *app.App) *gin.Engine {
	log := a.Log.Named("api")
	h := &handler{app: a, log: log}

	r := gin.New()
	r.Use(recovery(log), requestLogger(log), metrics.Middleware())
	if origins := a.Config.Server.AllowedOrigins; len(origins) > 0 {
		r.Use(corsMiddleware(origins))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")

	p := api.Group("/progress")
	p.GET("", h.getProgress)
	p.POST("/sections/:id/complete", h.completeSection)
	p.DELETE("/sections/:id", h.uncompleteSection)
	p.POST("/achievements/:id", h.unlockAchievement)
	p.POST("/time", h.addProgressTime)
	p.POST("/reset", h.resetProgress)

	pr := api.Group("/preferences")
	pr.GET("", h.getPreferences)
	pr.PUT("", h.replacePreferences)
	pr.PATCH("", h.setPreference)
	pr.POST("/toggle-theme", h.toggleTheme)
	pr.POST("/reset", h.resetPreferences)

	s := api.Group("/session")
	s.GET("", h.getSession)
	s.PUT("/current", h.setCurrentSection)
	s.POST("/time", h.addSessionTime)
	s.POST("/exercises/:id", h.completeExercise)
	s.POST("/bookmarks", h.addBookmark)
	s.DELETE("/bookmarks/:id", h.removeBookmark)
	s.PUT("/notes/:section", h.putNote)
	s.POST("/reset", h.resetSession)

	n := api.Group("/notifications")
	n.GET("", h.listNotifications)
	n.DELETE("/:id", h.removeNotification)
	n.DELETE("", h.clearNotifications)

	ch := api.Group("/challenges")
	ch.POST("", h.generateChallenge)
	ch.POST("/batch", h.generateBatch)
	ch.POST("/evaluate", h.evaluate)
	ch.POST("/hint", h.hint)
	api.POST("/learning-path", h.learningPath)
	api.GET("/profile", h.getProfile)
	api.POST("/profile/reset", h.resetProfile)

	t := api.Group("/tutor")
	t.POST("/chat", h.chat)
	t.GET("/history", h.chatHistory)
	t.POST("/review", h.review)
	t.POST("/quiz", h.quiz)
	t.POST("/explain", h.explain)

	api.GET("/export", h.export)
	api.POST("/import", h.importBackup)
	api.DELETE("/data", h.clearData)
	api.GET("/storage", h.storageUsage)
	api.GET("/llm/usage", h.llmUsage)

	return r
}
