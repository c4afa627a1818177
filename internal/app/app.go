// Package app assembles vuequest: it opens the persistence gateway, loads
// every store, connects the LLM provider and keeps the stores in step with
// writes made by other processes.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/vuequest/internal/challenge"
	"github.com/abhisek/vuequest/internal/config"
	"github.com/abhisek/vuequest/internal/llm"
	"github.com/abhisek/vuequest/internal/notify"
	"github.com/abhisek/vuequest/internal/prefs"
	"github.com/abhisek/vuequest/internal/profile"
	"github.com/abhisek/vuequest/internal/progress"
	"github.com/abhisek/vuequest/internal/session"
	"github.com/abhisek/vuequest/internal/store"
	"github.com/abhisek/vuequest/internal/tutor"
)

// App holds every long-lived component.
type App struct {
	Config *config.Config
	Log    *zap.Logger

	Gateway store.Gateway
	// Events is the LLM request log. It is nil unless the gateway is SQLite.
	Events store.EventRepo

	Progress *progress.Store
	Prefs    *prefs.Store
	Session  *session.Store
	Profile  *profile.Aggregator
	Notify   *notify.Queue

	// Provider is nil when no LLM is configured; every generator then
	// serves its static fallback.
	Provider   llm.Provider
	Usage      *llm.UsageLedger
	Challenges *challenge.Service
	Tutor      *tutor.Tutor
	Reviewer   *tutor.Reviewer
	Quiz       *tutor.QuizMaker
	Explainer  *tutor.Explainer

	stopWatch context.CancelFunc
	closers   []func() error
}

type options struct {
	gateway   store.Gateway
	provider  llm.Provider
	now       func() time.Time
	scheduler notify.Scheduler
}

type Option func(*options)

// WithGateway uses gw instead of opening the configured backend. The app
// does not close it.
func WithGateway(gw store.Gateway) Option {
	return func(o *options) { o.gateway = gw }
}

// WithProvider uses p instead of building one from configuration.
func WithProvider(p llm.Provider) Option {
	return func(o *options) { o.provider = p }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithScheduler sets the timer source for notification expiry.
func WithScheduler(s notify.Scheduler) Option {
	return func(o *options) { o.scheduler = s }
}

// New builds the application. The returned App must be closed.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, opts ...Option) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg, Log: log}

	if o.gateway != nil {
		a.Gateway = o.gateway
	} else if err := a.openGateway(ctx); err != nil {
		return nil, err
	}

	queueOpts := []notify.Option{notify.WithClock(o.now), notify.WithLogger(log)}
	if o.scheduler != nil {
		queueOpts = append(queueOpts, notify.WithScheduler(o.scheduler))
	}
	a.Notify = notify.NewQueue(queueOpts...)

	a.Progress = progress.New(ctx, a.Gateway, log,
		progress.WithClock(o.now),
		progress.WithUnlockHook(func(ach progress.Achievement) {
			a.Notify.AchievementUnlocked(ach.Title, ach.Description)
		}),
	)
	a.Prefs = prefs.New(ctx, a.Gateway, log)
	a.Session = session.New(ctx, a.Gateway, log, o.now)
	a.Profile = profile.New(ctx, a.Gateway, log, o.now)

	a.Usage = llm.NewUsageLedger()
	if o.provider != nil {
		a.Provider = llm.WithUsage(o.provider, a.Usage)
	} else {
		a.Provider = a.buildProvider(ctx)
	}

	challengeCfg := challenge.DefaultConfig()
	challengeCfg.BatchConcurrency = cfg.Batch.Concurrency
	a.Challenges = challenge.NewService(a.Provider, a.Profile, log,
		challenge.WithConfig(challengeCfg), challenge.WithClock(o.now))
	a.Tutor = tutor.NewTutor(a.Provider, log)
	a.Reviewer = tutor.NewReviewer(a.Provider, log)
	a.Quiz = tutor.NewQuizMaker(a.Provider, log)
	a.Explainer = tutor.NewExplainer(a.Provider, log)

	return a, nil
}

func (a *App) openGateway(ctx context.Context) error {
	switch a.Config.Storage.Backend {
	case "memory":
		a.Gateway = store.NewMemory(a.Log)

	case "redis":
		rc := a.Config.Redis
		rdb, err := store.DialRedis(ctx, rc.Addr, rc.Password, rc.DB)
		if err != nil {
			return fmt.Errorf("open redis: %w", err)
		}
		r := store.NewRedis(rdb, rc.Namespace, rc.Channel)
		a.Gateway = r
		a.closers = append(a.closers, r.Close)

	default:
		path := a.Config.DB
		var err error
		if path == "" {
			path, err = store.DefaultDBPath()
		} else {
			err = store.EnsureDir(path)
		}
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		db, err := store.Open(path)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		a.Gateway = db
		a.Events = db.EventRepo()
		a.closers = append(a.closers, db.Close)
	}
	a.Log.Debug("gateway opened", zap.String("backend", a.Config.Storage.Backend))
	return nil
}

func (a *App) buildProvider(ctx context.Context) llm.Provider {
	pc, ok := a.Config.ProviderConfig()
	if !ok {
		a.Log.Info("no LLM provider configured, AI features will serve fallbacks")
		return nil
	}
	if err := pc.Validate(); err != nil {
		a.Log.Warn("LLM provider not usable", zap.Error(err))
		return nil
	}
	p, err := llm.NewProvider(ctx, pc, a.Events, a.Usage, a.Log)
	if err != nil {
		a.Log.Warn("LLM provider not usable", zap.Error(err))
		return nil
	}
	return p
}

// Watch starts applying writes made by other handles on the same storage.
// It is a no-op for gateways that cannot signal changes.
func (a *App) Watch(ctx context.Context) error {
	w, ok := a.Gateway.(store.Watcher)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	if err := w.Watch(ctx, func(c store.Change) { a.Dispatch(c) }); err != nil {
		cancel()
		return fmt.Errorf("watch gateway: %w", err)
	}
	a.stopWatch = cancel
	return nil
}

// Dispatch routes a change to the store owning its key and reports
// whether any state changed.
func (a *App) Dispatch(c store.Change) bool {
	var changed bool
	switch c.Key {
	case progress.StorageKey:
		changed = a.Progress.ApplyChange(c)
	case prefs.StorageKey:
		changed = a.Prefs.ApplyChange(c)
	case session.StorageKey:
		changed = a.Session.ApplyChange(c)
	case profile.ProfileKey, profile.StateKey:
		changed = a.Profile.ApplyChange(c)
	default:
		return false
	}
	if changed {
		a.Log.Debug("applied external change", zap.String("key", c.Key))
	}
	return changed
}

// CompleteSection marks a tutorial section complete and queues the
// matching notifications.
func (a *App) CompleteSection(ctx context.Context, id string) bool {
	sec, ok := a.sectionTitle(id)
	if !ok {
		return false
	}
	isNew := a.Progress.MarkItemComplete(ctx, id)
	a.Notify.SectionComplete(sec, isNew)
	if isNew {
		stats := a.Progress.Stats()
		a.Notify.ProgressUpdate(stats.CompletionPercentage, stats.CompletedSections, stats.TotalSections)
	}
	return isNew
}

func (a *App) sectionTitle(id string) (string, bool) {
	for _, s := range a.Progress.Catalog().Sections {
		if s.ID == id {
			return s.Title, true
		}
	}
	return "", false
}

// Chat asks the tutor a question, keeping its learner record in step with
// the stored profile and progress.
func (a *App) Chat(ctx context.Context, message string) string {
	p := a.Profile.Profile()
	completed := a.Progress.CompletedItems()
	a.Tutor.UpdateLearner(func(l *tutor.Learner) {
		l.Level = levelName(p.CurrentLevel)
		l.CompletedTopics = completed
		l.StrugglingAreas = p.GrowthAreas
		if p.LearningStyle != "" {
			l.LearningStyle = p.LearningStyle
		}
	})

	cc := tutor.ChatContext{}
	if cur := a.Session.Get().CurrentSection; cur != nil {
		cc.CurrentSection = *cur
	}
	return a.Tutor.Chat(ctx, message, cc)
}

func levelName(level int) string {
	switch {
	case level >= 7:
		return "advanced"
	case level >= 4:
		return "intermediate"
	default:
		return "beginner"
	}
}

// Export copies every application key.
func (a *App) Export(ctx context.Context) (store.Backup, error) {
	return store.ExportAll(ctx, a.Gateway)
}

// Import writes a backup and reloads the stores from it.
func (a *App) Import(ctx context.Context, b store.Backup) error {
	if err := store.ImportAll(ctx, a.Gateway, b); err != nil {
		return err
	}
	for k, v := range b.Data {
		a.Dispatch(store.Change{Key: k, NewValue: &v})
	}
	a.Notify.Success("Your progress was restored from the backup.", "Import complete")
	return nil
}

// ClearAll removes every application key and resets the stores.
func (a *App) ClearAll(ctx context.Context) (int, error) {
	n, err := store.ClearAppData(ctx, a.Gateway)
	for _, k := range []string{progress.StorageKey, prefs.StorageKey, session.StorageKey, profile.ProfileKey, profile.StateKey} {
		a.Dispatch(store.Change{Key: k})
	}
	return n, err
}

// Close stops watching and releases the gateway.
func (a *App) Close() error {
	if a.stopWatch != nil {
		a.stopWatch()
	}
	var firstErr error
	for _, c := range a.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
