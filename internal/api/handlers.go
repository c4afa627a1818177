package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/vuequest/internal/challenge"
	"github.com/abhisek/vuequest/internal/notify"
	"github.com/abhisek/vuequest/internal/prefs"
	"github.com/abhisek/vuequest/internal/progress"
	"github.com/abhisek/vuequest/internal/store"
	"github.com/abhisek/vuequest/internal/tutor"
)

type progressResponse struct {
	progress.View
	Stats     progress.Stats         `json:"stats"`
	Next      *progress.Section      `json:"next,omitempty"`
	Recent    []progress.Section     `json:"recent"`
	Earned    []progress.Achievement `json:"earnedAchievements"`
	Available []progress.Achievement `json:"availableAchievements"`
}

func (h *handler) progressState() progressResponse {
	p := h.app.Progress
	resp := progressResponse{
		View:      p.Snapshot(),
		Stats:     p.Stats(),
		Recent:    p.RecentlyCompleted(),
		Earned:    p.EarnedAchievements(),
		Available: p.AvailableAchievements(),
	}
	if next, ok := p.NextItem(); ok {
		resp.Next = &next
	}
	return resp
}

func (h *handler) getProgress(c *gin.Context) {
	success(c, h.progressState())
}

func (h *handler) completeSection(c *gin.Context) {
	id := c.Param("id")
	if !h.app.CompleteSection(c.Request.Context(), id) && !h.app.Progress.IsItemComplete(id) {
		notFound(c, "unknown section: "+id)
		return
	}
	success(c, h.progressState())
}

func (h *handler) uncompleteSection(c *gin.Context) {
	h.app.Progress.MarkItemIncomplete(c.Request.Context(), c.Param("id"))
	success(c, h.progressState())
}

func (h *handler) unlockAchievement(c *gin.Context) {
	id := c.Param("id")
	if h.app.Progress.IsAchievementUnlocked(id) {
		success(c, h.progressState())
		return
	}
	if !h.app.Progress.UnlockAchievement(c.Request.Context(), id) {
		notFound(c, "unknown achievement: "+id)
		return
	}
	success(c, h.progressState())
}

type minutesRequest struct {
	Minutes int `json:"minutes" binding:"required"`
}

func (h *handler) addProgressTime(c *gin.Context) {
	var req minutesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.app.Progress.AddTimeSpent(c.Request.Context(), req.Minutes)
	success(c, h.progressState())
}

func (h *handler) resetProgress(c *gin.Context) {
	h.app.Progress.ResetAll(c.Request.Context())
	success(c, h.progressState())
}

func (h *handler) getPreferences(c *gin.Context) {
	success(c, h.app.Prefs.Get())
}

func (h *handler) replacePreferences(c *gin.Context) {
	p := prefs.Defaults()
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err.Error())
		return
	}
	success(c, h.app.Prefs.Replace(c.Request.Context(), p))
}

type preferenceRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

func (h *handler) setPreference(c *gin.Context) {
	var req preferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.app.Prefs.Set(c.Request.Context(), req.Field, req.Value); err != nil {
		badRequest(c, err.Error())
		return
	}
	success(c, h.app.Prefs.Get())
}

func (h *handler) toggleTheme(c *gin.Context) {
	h.app.Prefs.ToggleTheme(c.Request.Context())
	success(c, h.app.Prefs.Get())
}

func (h *handler) resetPreferences(c *gin.Context) {
	success(c, h.app.Prefs.ResetToDefaults(c.Request.Context()))
}

func (h *handler) getSession(c *gin.Context) {
	success(c, gin.H{"session": h.app.Session.Get(), "stats": h.app.Session.Stats()})
}

type sectionRequest struct {
	SectionID string `json:"sectionId" binding:"required"`
	Note      string `json:"note"`
}

func (h *handler) setCurrentSection(c *gin.Context) {
	var req sectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.app.Session.UpdateCurrentSection(c.Request.Context(), req.SectionID)
	success(c, h.app.Session.Get())
}

func (h *handler) addSessionTime(c *gin.Context) {
	var req minutesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.app.Session.AddTimeSpent(c.Request.Context(), req.Minutes)
	success(c, h.app.Session.Get())
}

func (h *handler) completeExercise(c *gin.Context) {
	h.app.Session.MarkExerciseComplete(c.Request.Context(), c.Param("id"))
	success(c, h.app.Session.Get())
}

func (h *handler) addBookmark(c *gin.Context) {
	var req sectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	id := h.app.Session.AddBookmark(c.Request.Context(), req.SectionID, req.Note)
	created(c, gin.H{"id": id})
}

func (h *handler) removeBookmark(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid bookmark id")
		return
	}
	h.app.Session.RemoveBookmark(c.Request.Context(), id)
	success(c, h.app.Session.Get())
}

type noteRequest struct {
	Note string `json:"note"`
}

func (h *handler) putNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.app.Session.AddNote(c.Request.Context(), c.Param("section"), req.Note)
	success(c, h.app.Session.Get())
}

func (h *handler) resetSession(c *gin.Context) {
	h.app.Session.Reset(c.Request.Context())
	success(c, h.app.Session.Get())
}

func (h *handler) listNotifications(c *gin.Context) {
	limit := notify.RecentLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			badRequest(c, "invalid limit")
			return
		}
		limit = n
	}
	success(c, gin.H{
		"notifications": h.app.Notify.RecentDescending(limit),
		"total":         h.app.Notify.Len(),
	})
}

func (h *handler) removeNotification(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid notification id")
		return
	}
	h.app.Notify.Remove(id)
	success(c, nil)
}

func (h *handler) clearNotifications(c *gin.Context) {
	h.app.Notify.Clear()
	success(c, nil)
}

type challengeRequest struct {
	Topic      string `json:"topic" binding:"required"`
	Difficulty string `json:"difficulty"`
}

func (h *handler) generateChallenge(c *gin.Context) {
	var req challengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	success(c, h.app.Challenges.Generate(c.Request.Context(), req.Topic, difficultyOrAdaptive(req.Difficulty)))
}

type batchRequest struct {
	Requests   []challenge.BatchEntry `json:"requests" binding:"required"`
	Difficulty string                 `json:"difficulty"`
}

func (h *handler) generateBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	success(c, h.app.Challenges.GenerateBatch(c.Request.Context(), req.Requests, difficultyOrAdaptive(req.Difficulty)))
}

// difficultyOrAdaptive applies the same default as the CLI flag.
func difficultyOrAdaptive(d string) string {
	if d == "" {
		return challenge.Adaptive
	}
	return d
}

type evaluateRequest struct {
	Code      string              `json:"code" binding:"required"`
	Challenge challenge.Challenge `json:"challenge"`
	TimeSpent float64             `json:"timeSpent"`
}

func (h *handler) evaluate(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ev := h.app.Challenges.Evaluate(c.Request.Context(), req.Code, req.Challenge, req.TimeSpent)
	success(c, gin.H{"evaluation": ev, "profile": h.app.Profile.Profile()})
}

type hintRequest struct {
	Code          string              `json:"code"`
	Challenge     challenge.Challenge `json:"challenge"`
	PreviousHints []string            `json:"previousHints"`
}

func (h *handler) hint(c *gin.Context) {
	var req hintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	success(c, h.app.Challenges.Hint(c.Request.Context(), req.Challenge, req.Code, req.PreviousHints))
}

type learningPathRequest struct {
	Goals   []string `json:"goals"`
	Minutes int      `json:"timeAvailable"`
}

func (h *handler) learningPath(c *gin.Context) {
	var req learningPathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	success(c, h.app.Challenges.LearningPath(c.Request.Context(), req.Goals, req.Minutes))
}

func (h *handler) getProfile(c *gin.Context) {
	p, gs, rate := h.app.Profile.Snapshot()
	success(c, gin.H{"profile": p, "gameState": gs, "recentSuccessRate": rate})
}

func (h *handler) resetProfile(c *gin.Context) {
	h.app.Profile.Reset(c.Request.Context())
	h.getProfile(c)
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *handler) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	success(c, gin.H{"reply": h.app.Chat(c.Request.Context(), req.Message)})
}

func (h *handler) chatHistory(c *gin.Context) {
	success(c, h.app.Tutor.History())
}

type reviewRequest struct {
	Code string `json:"code" binding:"required"`
	Kind string `json:"type"`
}

func (h *handler) review(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	success(c, h.app.Reviewer.Review(c.Request.Context(), req.Code, req.Kind))
}

type quizRequest struct {
	Topic      string `json:"topic"`
	Difficulty int    `json:"difficulty"`
}

func (h *handler) quiz(c *gin.Context) {
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err.Error())
		return
	}
	p := h.app.Profile.Profile()
	success(c, h.app.Quiz.Generate(c.Request.Context(), tutor.QuizRequest{
		Topic:           req.Topic,
		Difficulty:      req.Difficulty,
		CompletedTopics: h.app.Progress.CompletedItems(),
		StrugglingAreas: p.GrowthAreas,
	}))
}

type explainRequest struct {
	Concept string `json:"concept" binding:"required"`
	Style   string `json:"learningStyle"`
	Level   string `json:"level"`
}

func (h *handler) explain(c *gin.Context) {
	var req explainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Style == "" {
		req.Style = h.app.Profile.Profile().LearningStyle
	}
	success(c, h.app.Explainer.Explain(c.Request.Context(), req.Concept, req.Style, req.Level))
}

func (h *handler) export(c *gin.Context) {
	b, err := h.app.Export(c.Request.Context())
	if err != nil {
		h.log.Error("export failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "export failed")
		return
	}
	success(c, b)
}

func (h *handler) importBackup(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	b, err := store.ParseBackup(raw)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.app.Import(c.Request.Context(), b); err != nil {
		h.log.Error("import failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "import failed")
		return
	}
	success(c, gin.H{"imported": len(b.Data)})
}

func (h *handler) clearData(c *gin.Context) {
	n, err := h.app.ClearAll(c.Request.Context())
	if err != nil {
		h.log.Error("clear failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "clear failed")
		return
	}
	success(c, gin.H{"removed": n})
}

func (h *handler) storageUsage(c *gin.Context) {
	ctx := c.Request.Context()
	u, err := store.Usage(ctx, h.app.Gateway)
	if err != nil {
		fail(c, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	success(c, gin.H{"usage": u, "available": store.IsAvailable(ctx, h.app.Gateway)})
}

// llmUsage reports token spend by purpose since the server started.
func (h *handler) llmUsage(c *gin.Context) {
	var model string
	if h.app.Provider != nil {
		model = h.app.Provider.ModelID()
	}
	success(c, gin.H{
		"model":     model,
		"byPurpose": h.app.Usage.Snapshot(),
		"total":     h.app.Usage.Total(),
	})
}
