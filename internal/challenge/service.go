package challenge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/vuequest/internal/llm"
	"github.com/abhisek/vuequest/internal/metrics"
	"github.com/abhisek/vuequest/internal/normalize"
	"github.com/abhisek/vuequest/internal/profile"
)

// Service generates and evaluates challenges for one learner. Model
// failures never reach the caller: each operation substitutes static
// content and logs why.
type Service struct {
	provider llm.Provider
	learner  *profile.Aggregator
	norm     *normalize.Normalizer
	config   Config
	log      *zap.Logger
	now      func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithConfig replaces DefaultConfig.
func WithConfig(cfg Config) ServiceOption {
	return func(s *Service) { s.config = cfg }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service. provider may be nil, in which case every
// operation serves its fallback.
func NewService(provider llm.Provider, learner *profile.Aggregator, log *zap.Logger, opts ...ServiceOption) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("challenge")
	s := &Service{
		provider: provider,
		learner:  learner,
		norm:     normalize.New(log),
		config:   DefaultConfig(),
		log:      log,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) fallback(kind llm.Purpose, msg string, err error) {
	reason := llm.Reason(err)
	metrics.Fallbacks.WithLabelValues(string(kind), reason).Inc()
	s.log.Warn("serving fallback",
		zap.String("kind", string(kind)),
		zap.String("reason", reason),
		zap.String("detail", msg),
		zap.Error(err))
}

func (s *Service) generate(ctx context.Context, purpose llm.Purpose, req llm.Request) (string, error) {
	if s.provider == nil {
		return "", llm.ErrNoProvider
	}
	resp, err := s.provider.Generate(llm.WithPurpose(ctx, purpose), req)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Inputs resolves the adaptive inputs and enrich context for topic from
// the learner's current profile.
func (s *Service) Inputs(topic string) (AdaptiveInputs, EnrichContext, profile.Profile) {
	p, st, rate := s.learner.Snapshot()
	in := AdaptiveInputs{
		TopicSkill:        p.SkillAreas[topic],
		OverallLevel:      p.CurrentLevel,
		RecentSuccessRate: rate,
		Streak:            st.CurrentStreak,
	}
	ec := EnrichContext{
		Level:               p.CurrentLevel,
		ChallengesCompleted: st.ChallengesCompleted,
		Streak:              st.CurrentStreak,
		Now:                 s.now(),
		IsAIGenerated:       true,
	}
	return in, ec, p
}

// Generate produces a challenge on topic. requested is a difficulty label,
// a number, or "adaptive".
func (s *Service) Generate(ctx context.Context, topic, requested string) Challenge {
	in, ec, p := s.Inputs(topic)
	difficulty := ResolveDifficulty(requested, in)

	cc := challengeContext{
		UserLevel:         p.CurrentLevel,
		TopicExperience:   in.TopicSkill,
		RecentPerformance: in.RecentSuccessRate,
		LearningStyle:     p.LearningStyle,
		CompletedCount:    len(p.CompletedChallenges),
		CurrentStreak:     in.Streak,
	}
	req := s.config.Challenge.Request(
		challengeSystemPrompt(topic, difficulty, p),
		challengeUserMessage(topic, cc),
	)

	text, err := s.generate(ctx, llm.PurposeChallenge, req)
	if err != nil {
		s.fallback(llm.PurposeChallenge, "generation failed", err)
		return Fallback(topic, difficulty, ec)
	}

	obj, ok := s.norm.ParseObject(text)
	if !ok || len(obj) == 0 {
		s.log.Warn("model returned no challenge data", zap.String("topic", topic))
	} else {
		s.log.Info("challenge generated", zap.String("topic", topic), zap.Any("title", obj["title"]))
	}
	return Enrich(obj, topic, difficulty, ec)
}

// GenerateBatch generates one challenge per entry concurrently. The result
// has exactly one element per entry, in input order; an entry whose
// generation fails carries its fallback.
func (s *Service) GenerateBatch(ctx context.Context, entries []BatchEntry, requested string) []BatchResult {
	results := make([]BatchResult, len(entries))

	var g errgroup.Group
	if s.config.BatchConcurrency > 0 {
		g.SetLimit(s.config.BatchConcurrency)
	}
	for i, e := range entries {
		g.Go(func() error {
			results[i] = BatchResult{Challenge: s.generateIsolated(ctx, e.Topic, requested), Meta: e}
			return nil
		})
	}
	_ = g.Wait()

	s.log.Info("batch generated", zap.Int("count", len(results)))
	return results
}

// generateIsolated is Generate with a panic in one item contained to that
// item.
func (s *Service) generateIsolated(ctx context.Context, topic, requested string) (c Challenge) {
	defer func() {
		if r := recover(); r != nil {
			s.fallback(llm.PurposeChallenge, "batch item panicked", fmt.Errorf("%v", r))
			in, ec, _ := s.Inputs(topic)
			c = Fallback(topic, ResolveDifficulty(requested, in), ec)
		}
	}()
	return s.Generate(ctx, topic, requested)
}

// Evaluate reviews code against c. A model review updates the learner
// profile; when the model is unavailable or its review is unusable, a
// structural fallback score is returned and the profile is left alone.
func (s *Service) Evaluate(ctx context.Context, code string, c Challenge, timeSpent float64) Evaluation {
	req := s.config.Evaluation.Request(
		evaluationSystemPrompt(code, c, timeSpent),
		"Please evaluate this code solution.",
	)
	req.Schema = EvaluationSchema

	text, err := s.generate(ctx, llm.PurposeEvaluation, req)
	if err != nil {
		s.fallback(llm.PurposeEvaluation, "generation failed", err)
		return FallbackEvaluation(code)
	}

	ev, err := s.decodeEvaluation(text)
	if err != nil {
		s.fallback(llm.PurposeEvaluation, "unusable review", err)
		return FallbackEvaluation(code)
	}

	s.learner.ApplyEvaluation(ctx, profile.Outcome{
		Score:        ev.Score,
		Passed:       ev.Passed,
		PointsEarned: ev.PointsEarned,
	}, c.ID, c.Concepts, timeSpent)
	return ev
}

func (s *Service) decodeEvaluation(text string) (Evaluation, error) {
	obj, ok := s.norm.ParseObject(text)
	if !ok {
		return Evaluation{}, &llm.ErrInvalidResponse{Err: errors.New("no JSON object in review")}
	}
	if err := llm.Validate(EvaluationSchema, obj); err != nil {
		return Evaluation{}, &llm.ErrInvalidResponse{Err: err}
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return Evaluation{}, err
	}
	var ev Evaluation
	if err := json.Unmarshal(b, &ev); err != nil {
		return Evaluation{}, err
	}
	ev.IsAIGenerated = true
	return ev, nil
}

// Hint asks for a nudge on c given the learner's current code.
func (s *Service) Hint(ctx context.Context, c Challenge, code string, previous []string) Hint {
	req := s.config.Hint.Request(
		hintSystemPrompt(c, code, previous),
		"I need a hint for this challenge.",
	)

	text, err := s.generate(ctx, llm.PurposeHint, req)
	if err == nil && strings.TrimSpace(text) == "" {
		err = &llm.ErrInvalidResponse{Err: errors.New("empty hint")}
	}
	if err != nil {
		s.fallback(llm.PurposeHint, "generation failed", err)
		return FallbackHint(len(previous))
	}

	s.learner.RecordHint(ctx)
	return Hint{Text: text, Number: len(previous) + 1, Encouragement: Encouragement()}
}

// LearningPath recommends a sequence of challenges toward goals within
// the given number of minutes.
func (s *Service) LearningPath(ctx context.Context, goals []string, minutes int) LearningPath {
	if minutes <= 0 {
		minutes = 60
	}
	p := s.learner.Profile()
	req := s.config.LearningPath.Request(
		learningPathSystemPrompt(p, goals, minutes),
		"Generate my personalized learning path.",
	)

	text, err := s.generate(ctx, llm.PurposeLearningPath, req)
	if err != nil {
		s.fallback(llm.PurposeLearningPath, "generation failed", err)
		return FallbackLearningPath()
	}

	obj, ok := s.norm.ParseObject(text)
	if !ok {
		s.fallback(llm.PurposeLearningPath, "unparseable path", &llm.ErrInvalidResponse{Err: errors.New("no JSON object")})
		return FallbackLearningPath()
	}
	var path LearningPath
	b, _ := json.Marshal(obj)
	if err := json.Unmarshal(b, &path); err != nil || path.PathName == "" {
		if err == nil {
			err = errors.New("missing pathName")
		}
		s.fallback(llm.PurposeLearningPath, "incomplete path", &llm.ErrInvalidResponse{Err: err})
		return FallbackLearningPath()
	}
	return path
}
