// Package tutor provides the conversational learning helpers: tutor chat,
// code review, quizzes and concept explanations. Like the challenge
// service, none of them returns a model error to the learner; each falls
// back to static content.
package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/vuequest/internal/llm"
	"github.com/abhisek/vuequest/internal/metrics"
	"github.com/abhisek/vuequest/internal/normalize"
)

// HistoryWindow is how many past turns are replayed to the model.
const HistoryWindow = 10

// base holds what every helper shares.
type base struct {
	provider llm.Provider
	norm     *normalize.Normalizer
	log      *zap.Logger
}

func newBase(p llm.Provider, log *zap.Logger, name string) base {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named(name)
	return base{provider: p, norm: normalize.New(log), log: log}
}

// generate sends req, filling in the purpose's budget where req leaves
// it unset.
func (b base) generate(ctx context.Context, purpose llm.Purpose, req llm.Request) (string, error) {
	if b.provider == nil {
		return "", llm.ErrNoProvider
	}
	resp, err := b.provider.Generate(llm.WithPurpose(ctx, purpose), purpose.Budget().Apply(req))
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", &llm.ErrInvalidResponse{Err: errors.New("empty response")}
	}
	return text, nil
}

// decode recovers a JSON object from text, checks it against schema and
// decodes it into out.
func (b base) decode(text string, schema *llm.Schema, out any) error {
	obj, ok := b.norm.ParseObject(text)
	if !ok {
		return &llm.ErrInvalidResponse{Err: errors.New("no JSON object in response")}
	}
	if err := llm.Validate(schema, obj); err != nil {
		return &llm.ErrInvalidResponse{Err: err}
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (b base) fallback(kind llm.Purpose, err error) {
	reason := llm.Reason(err)
	metrics.Fallbacks.WithLabelValues(string(kind), reason).Inc()
	b.log.Warn("serving fallback", zap.String("kind", string(kind)), zap.String("reason", reason), zap.Error(err))
}

// Turn is one message in a tutor conversation.
type Turn struct {
	Role      llm.Role  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Learner is what the tutor knows about the person it is helping.
type Learner struct {
	Level           string   `json:"currentLevel"`
	CompletedTopics []string `json:"completedTopics"`
	StrugglingAreas []string `json:"strugglingAreas"`
	LearningStyle   string   `json:"learningStyle"`
}

// ChatContext is where the learner is when they ask.
type ChatContext struct {
	CurrentSection string `json:"currentSection"`
}

var tutorFallbacks = []string{
	"🤖 Oops! My AI brain is taking a coffee break ☕. Try asking me about Vue components, reactivity, or the Composition API - I love talking about those dancing LEGO blocks! 🧩",
	"🔧 My neural networks are doing some maintenance! But here's a quick tip: Remember that Vue components are like magical LEGO blocks that can dance together to build amazing apps! 💃",
	"⚡ AI services are temporarily unavailable, but don't let that stop your learning momentum! Try exploring the interactive tutorials or test your knowledge in the Concept Arena! 🏟️",
}

// Tutor is a conversational assistant that remembers the conversation.
type Tutor struct {
	base

	mu      sync.Mutex
	history []Turn
	learner Learner
	now     func() time.Time
}

// NewTutor creates a Tutor for a beginner visual learner.
func NewTutor(p llm.Provider, log *zap.Logger) *Tutor {
	return &Tutor{
		base:    newBase(p, log, "tutor"),
		learner: Learner{Level: "beginner", LearningStyle: "visual"},
		now:     time.Now,
	}
}

// UpdateLearner applies fn to the tutor's learner record.
func (t *Tutor) UpdateLearner(fn func(*Learner)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.learner)
}

// History returns a copy of the conversation so far.
func (t *Tutor) History() []Turn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Turn(nil), t.history...)
}

// Chat answers message in the context of the conversation so far.
func (t *Tutor) Chat(ctx context.Context, message string, cc ChatContext) string {
	t.mu.Lock()
	t.history = append(t.history, Turn{Role: llm.RoleUser, Content: message, Timestamp: t.now()})
	window := t.history[max(0, len(t.history)-HistoryWindow):]
	msgs := make([]llm.Message, len(window))
	for i, turn := range window {
		msgs[i] = llm.Message{Role: turn.Role, Content: turn.Content}
	}
	system := tutorSystemPrompt(t.learner, cc)
	t.mu.Unlock()

	text, err := t.generate(ctx, llm.PurposeTutorChat, llm.Request{System: system, Messages: msgs})
	if err != nil {
		t.fallback(llm.PurposeTutorChat, err)
		return tutorFallbacks[rand.IntN(len(tutorFallbacks))]
	}

	t.mu.Lock()
	t.history = append(t.history, Turn{Role: llm.RoleAssistant, Content: text, Timestamp: t.now()})
	t.mu.Unlock()
	return text
}

func tutorSystemPrompt(l Learner, cc ChatContext) string {
	section := cc.CurrentSection
	if section == "" {
		section = "general"
	}
	completed := "none yet"
	if len(l.CompletedTopics) > 0 {
		completed = strings.Join(l.CompletedTopics, ", ")
	}
	return fmt.Sprintf(`You are an expert Vue.js tutor with a fun, encouraging personality. You're helping someone learn Vue 3 through a unique memory palace system with funny mnemonics.

TEACHING STYLE:
- Use the same fun, quirky style as the app (dancing LEGO blocks, psychic mirrors, mad scientists)
- Be encouraging and patient, like the best mentor ever
- Explain concepts using analogies and visual metaphors
- Break down complex topics into digestible pieces
- Always provide practical, actionable examples

CURRENT CONTEXT:
- User's level: %s
- Current section: %s
- Learning style: %s
- Completed topics: %s

RESPONSE GUIDELINES:
- Keep responses under 400 words
- Use emojis to make it engaging 🎉
- Reference the memory palace mnemonics when relevant
- Suggest next learning steps when appropriate
- If user seems stuck, offer multiple explanation approaches
- Always end with encouragement or a question to keep engagement

Remember: You're not just teaching Vue - you're making it memorable and fun!`,
		l.Level, section, l.LearningStyle, completed)
}
