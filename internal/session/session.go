// Package session keeps the learner's in-progress study session: where
// they are, bookmarks and per-section notes.
package session

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/vuequest/internal/store"
)

// StorageKey is where the session is persisted.
const StorageKey = "learning-session"

// Bookmark marks a section with an optional note. ID and Timestamp are
// Unix milliseconds.
type Bookmark struct {
	ID        int64  `json:"id"`
	SectionID string `json:"sectionId"`
	Note      string `json:"note"`
	Timestamp int64  `json:"timestamp"`
}

// Session is the persisted record.
type Session struct {
	CurrentSection     *string           `json:"currentSection"`
	TimeSpent          int               `json:"timeSpent"`
	LastVisited        int64             `json:"lastVisited"`
	CompletedExercises []string          `json:"completedExercises"`
	Bookmarks          []Bookmark        `json:"bookmarks"`
	Notes              map[string]string `json:"notes"`
}

// Stats summarizes a session.
type Stats struct {
	TimeSpent          int   `json:"timeSpent"`
	LastVisited        int64 `json:"lastVisited"`
	ExercisesCompleted int   `json:"exercisesCompleted"`
	BookmarksCount     int   `json:"bookmarksCount"`
	NotesCount         int   `json:"notesCount"`
}

// Store owns the session record.
type Store struct {
	mu  sync.Mutex
	doc *store.Document[Session]
	cur Session
	now func() time.Time
}

// New loads the session from gw. now may be nil.
func New(ctx context.Context, gw store.Gateway, log *zap.Logger, now func() time.Time) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	s := &Store{now: now}
	fresh := func() Session {
		return Session{
			LastVisited:        now().UnixMilli(),
			CompletedExercises: []string{},
			Bookmarks:          []Bookmark{},
			Notes:              map[string]string{},
		}
	}
	s.doc = store.NewDocument[Session](gw, StorageKey, store.MergeCodec[Session]{Defaults: fresh}, fresh, log.Named("session"))
	s.cur = normalize(s.doc.Load(ctx))
	return s
}

func normalize(v Session) Session {
	if v.CompletedExercises == nil {
		v.CompletedExercises = []string{}
	}
	if v.Bookmarks == nil {
		v.Bookmarks = []Bookmark{}
	}
	if v.Notes == nil {
		v.Notes = map[string]string{}
	}
	return v
}

func (s *Store) mutate(ctx context.Context, fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.cur)
	s.doc.Save(ctx, s.cur)
}

// Get returns a deep copy of the session.
func (s *Store) Get() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.cur
	if s.cur.CurrentSection != nil {
		id := *s.cur.CurrentSection
		out.CurrentSection = &id
	}
	out.CompletedExercises = slices.Clone(s.cur.CompletedExercises)
	out.Bookmarks = slices.Clone(s.cur.Bookmarks)
	out.Notes = maps.Clone(s.cur.Notes)
	return out
}

// UpdateCurrentSection records the section being studied.
func (s *Store) UpdateCurrentSection(ctx context.Context, sectionID string) {
	s.mutate(ctx, func(v *Session) {
		v.CurrentSection = &sectionID
		v.LastVisited = s.now().UnixMilli()
	})
}

// AddTimeSpent adds study minutes.
func (s *Store) AddTimeSpent(ctx context.Context, minutes int) {
	s.mutate(ctx, func(v *Session) {
		v.TimeSpent += minutes
		v.LastVisited = s.now().UnixMilli()
	})
}

// MarkExerciseComplete records an exercise once.
func (s *Store) MarkExerciseComplete(ctx context.Context, exerciseID string) {
	s.mutate(ctx, func(v *Session) {
		if !slices.Contains(v.CompletedExercises, exerciseID) {
			v.CompletedExercises = append(v.CompletedExercises, exerciseID)
		}
	})
}

// AddBookmark bookmarks a section and returns the bookmark id.
func (s *Store) AddBookmark(ctx context.Context, sectionID, note string) int64 {
	var id int64
	s.mutate(ctx, func(v *Session) {
		ts := s.now().UnixMilli()
		id = ts
		for _, b := range v.Bookmarks {
			if b.ID >= id {
				id = b.ID + 1
			}
		}
		v.Bookmarks = append(v.Bookmarks, Bookmark{ID: id, SectionID: sectionID, Note: note, Timestamp: ts})
	})
	return id
}

// RemoveBookmark deletes a bookmark by id.
func (s *Store) RemoveBookmark(ctx context.Context, id int64) {
	s.mutate(ctx, func(v *Session) {
		v.Bookmarks = slices.DeleteFunc(v.Bookmarks, func(b Bookmark) bool { return b.ID == id })
	})
}

// AddNote sets the note for a section, replacing any previous one.
func (s *Store) AddNote(ctx context.Context, sectionID, note string) {
	s.mutate(ctx, func(v *Session) { v.Notes[sectionID] = note })
}

// Note returns the note for a section, or "".
func (s *Store) Note(sectionID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur.Notes[sectionID]
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		TimeSpent:          s.cur.TimeSpent,
		LastVisited:        s.cur.LastVisited,
		ExercisesCompleted: len(s.cur.CompletedExercises),
		BookmarksCount:     len(s.cur.Bookmarks),
		NotesCount:         len(s.cur.Notes),
	}
}

// Reset starts a fresh session.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = normalize(s.doc.Reset(ctx))
}

// Remove deletes the stored session.
func (s *Store) Remove(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Remove(ctx)
	s.cur = normalize(s.doc.Default())
}

// ApplyChange adopts a session written by another process.
func (s *Store) ApplyChange(c store.Change) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.doc.ApplyChange(c)
	if ok {
		s.cur = normalize(v)
	}
	return ok
}
