// Package notify is an in-memory queue of short-lived learner messages.
package notify

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Kind selects a notification's style and default lifetime.
type Kind string

const (
	KindSuccess     Kind = "success"
	KindError       Kind = "error"
	KindWarning     Kind = "warning"
	KindInfo        Kind = "info"
	KindAchievement Kind = "achievement"
)

// Profile is the presentation attached to a kind.
type Profile struct {
	Color           string        `json:"color"`
	BackgroundColor string        `json:"backgroundColor"`
	BorderColor     string        `json:"borderColor"`
	Icon            string        `json:"icon"`
	Duration        time.Duration `json:"-"`
}

var profiles = map[Kind]Profile{
	KindSuccess:     {Color: "#10B981", BackgroundColor: "#ECFDF5", BorderColor: "#A7F3D0", Icon: "mdi-check-circle", Duration: 4000 * time.Millisecond},
	KindError:       {Color: "#EF4444", BackgroundColor: "#FEF2F2", BorderColor: "#FECACA", Icon: "mdi-alert-circle", Duration: 6000 * time.Millisecond},
	KindWarning:     {Color: "#F59E0B", BackgroundColor: "#FFFBEB", BorderColor: "#FDE68A", Icon: "mdi-alert", Duration: 5000 * time.Millisecond},
	KindInfo:        {Color: "#3B82F6", BackgroundColor: "#EFF6FF", BorderColor: "#BFDBFE", Icon: "mdi-information", Duration: 4000 * time.Millisecond},
	KindAchievement: {Color: "#8B5CF6", BackgroundColor: "#F5F3FF", BorderColor: "#DDD6FE", Icon: "mdi-trophy", Duration: 6000 * time.Millisecond},
}

// ProfileFor returns the profile for k, or the info profile for an
// unknown kind.
func ProfileFor(k Kind) Profile {
	if p, ok := profiles[k]; ok {
		return p
	}
	return profiles[KindInfo]
}

// Action is a button attached to a notification.
type Action struct {
	Label string `json:"label"`
	Do    func() `json:"-"`
}

// Request describes a notification to enqueue. Zero Duration uses the
// kind's default; an empty Kind means info.
type Request struct {
	Message    string
	Title      string
	Kind       Kind
	Duration   time.Duration
	Persistent bool
	Actions    []Action
}

// Notification is a queued message.
type Notification struct {
	ID         int64         `json:"id"`
	Title      string        `json:"title"`
	Message    string        `json:"message"`
	Kind       Kind          `json:"type"`
	CreatedAt  time.Time     `json:"timestamp"`
	Duration   time.Duration `json:"-"`
	DurationMs int64         `json:"duration"`
	Persistent bool          `json:"persistent"`
	Actions    []Action      `json:"actions,omitempty"`
	Profile
}

// Timer is a pending scheduled call.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Queue holds active notifications in insertion order. Safe for concurrent
// use.
type Queue struct {
	mu     sync.Mutex
	items  []Notification
	timers map[int64]Timer
	nextID int64

	sched Scheduler
	now   func() time.Time
	log   *zap.Logger
}

// Option configures a Queue.
type Option func(*Queue)

// WithScheduler replaces the time.AfterFunc scheduler.
func WithScheduler(s Scheduler) Option {
	return func(q *Queue) { q.sched = s }
}

// WithClock overrides time.Now for CreatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(q *Queue) { q.log = log }
}

// NewQueue returns an empty queue.
func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		timers: make(map[int64]Timer),
		sched:  realScheduler{},
		now:    time.Now,
		log:    zap.NewNop(),
	}
	for _, o := range opts {
		o(q)
	}
	q.log = q.log.Named("notify")
	return q
}

// Enqueue adds a notification and returns its id. Unless persistent, it is
// removed automatically once its duration elapses.
func (q *Queue) Enqueue(r Request) int64 {
	kind := r.Kind
	if kind == "" {
		kind = KindInfo
	}
	prof := ProfileFor(kind)
	d := r.Duration
	if d <= 0 {
		d = prof.Duration
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.nextID++
	n := Notification{
		ID:         q.nextID,
		Title:      r.Title,
		Message:    r.Message,
		Kind:       kind,
		CreatedAt:  q.now(),
		Duration:   d,
		DurationMs: d.Milliseconds(),
		Persistent: r.Persistent,
		Actions:    r.Actions,
		Profile:    prof,
	}
	q.items = append(q.items, n)

	if !n.Persistent {
		id := n.ID
		q.timers[id] = q.sched.AfterFunc(d, func() { q.expire(id) })
	}
	q.log.Debug("notification queued", zap.Int64("id", n.ID), zap.String("kind", string(kind)))
	return n.ID
}

func (q *Queue) expire(id int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.timers, id)
	q.removeLocked(id)
}

// Remove deletes a notification. Unknown ids are ignored.
func (q *Queue) Remove(id int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}
	q.removeLocked(id)
}

func (q *Queue) removeLocked(id int64) {
	q.items = slices.DeleteFunc(q.items, func(n Notification) bool { return n.ID == id })
}

// Clear empties the queue. Pending expiry timers are left to fire
// harmlessly.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
	clear(q.timers)
}

// Get returns the notification with id.
func (q *Queue) Get(id int64) (Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, n := range q.items {
		if n.ID == id {
			return n, true
		}
	}
	return Notification{}, false
}

// Len is the number of active notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// All returns the active notifications in insertion order.
func (q *Queue) All() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.items)
}

// ByKind returns the active notifications of kind k.
func (q *Queue) ByKind(k Kind) []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []Notification
	for _, n := range q.items {
		if n.Kind == k {
			out = append(out, n)
		}
	}
	return out
}

// RecentDescending returns up to limit notifications, newest first.
func (q *Queue) RecentDescending(limit int) []Notification {
	out := q.All()
	slices.SortStableFunc(out, func(a, b Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
