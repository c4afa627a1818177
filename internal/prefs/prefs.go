// Package prefs holds the learner's display and behavior settings.
package prefs

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/vuequest/internal/store"
)

// StorageKey is where preferences are persisted.
const StorageKey = "user-preferences"

const (
	MinFontSize     = 12
	MaxFontSize     = 24
	DefaultFontSize = 16
)

// Theme is the color theme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Preferences is the persisted settings record.
type Preferences struct {
	Theme             Theme  `json:"theme"`
	FontSize          int    `json:"fontSize"`
	Language          string `json:"language"`
	SoundEnabled      bool   `json:"soundEnabled"`
	AnimationsEnabled bool   `json:"animationsEnabled"`
	AutoSave          bool   `json:"autoSave"`
	ShowHints         bool   `json:"showHints"`
}

// Defaults returns the settings used before anything is stored.
func Defaults() Preferences {
	return Preferences{
		Theme:             ThemeLight,
		FontSize:          DefaultFontSize,
		Language:          "en",
		SoundEnabled:      true,
		AnimationsEnabled: true,
		AutoSave:          true,
		ShowHints:         true,
	}
}

// ClampFontSize bounds size to [MinFontSize, MaxFontSize].
func ClampFontSize(size int) int {
	return min(max(size, MinFontSize), MaxFontSize)
}

// Store owns the preference record.
//
// Values are clamped when set, not when loaded: a stored font size outside
// the bounds is reported as-is until the next SetFontSize.
type Store struct {
	mu  sync.Mutex
	doc *store.Document[Preferences]
	cur Preferences
	log *zap.Logger
}

// New loads preferences from gw, merging the stored record over the
// defaults so fields added later keep their default value.
func New(ctx context.Context, gw store.Gateway, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("prefs")
	s := &Store{
		doc: store.NewDocument[Preferences](gw, StorageKey, store.MergeCodec[Preferences]{Defaults: Defaults}, Defaults, log),
		log: log,
	}
	s.cur = s.doc.Load(ctx)
	return s
}

// Get returns a copy of the current preferences.
func (s *Store) Get() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

func (s *Store) update(ctx context.Context, fn func(*Preferences)) Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.cur)
	s.doc.Save(ctx, s.cur)
	return s.cur
}

// Theme returns the current theme.
func (s *Store) Theme() Theme { return s.Get().Theme }

// SetTheme sets the theme. Values are not validated.
func (s *Store) SetTheme(ctx context.Context, t Theme) {
	s.update(ctx, func(p *Preferences) { p.Theme = t })
}

// IsDarkTheme reports whether the dark theme is active.
func (s *Store) IsDarkTheme() bool { return s.Theme() == ThemeDark }

// ToggleTheme flips between light and dark and returns the new theme.
func (s *Store) ToggleTheme(ctx context.Context) Theme {
	return s.update(ctx, func(p *Preferences) {
		if p.Theme == ThemeDark {
			p.Theme = ThemeLight
		} else {
			p.Theme = ThemeDark
		}
	}).Theme
}

// FontSize returns the stored font size.
func (s *Store) FontSize() int { return s.Get().FontSize }

// SetFontSize stores size clamped to the allowed range and returns the
// stored value.
func (s *Store) SetFontSize(ctx context.Context, size int) int {
	return s.update(ctx, func(p *Preferences) { p.FontSize = ClampFontSize(size) }).FontSize
}

// IncreaseFontSize grows the font by one step.
func (s *Store) IncreaseFontSize(ctx context.Context) int {
	return s.update(ctx, func(p *Preferences) { p.FontSize = ClampFontSize(p.FontSize + 1) }).FontSize
}

// DecreaseFontSize shrinks the font by one step.
func (s *Store) DecreaseFontSize(ctx context.Context) int {
	return s.update(ctx, func(p *Preferences) { p.FontSize = ClampFontSize(p.FontSize - 1) }).FontSize
}

func (s *Store) Language() string { return s.Get().Language }

func (s *Store) SetLanguage(ctx context.Context, lang string) {
	s.update(ctx, func(p *Preferences) { p.Language = lang })
}

func (s *Store) SoundEnabled() bool { return s.Get().SoundEnabled }

func (s *Store) SetSoundEnabled(ctx context.Context, on bool) {
	s.update(ctx, func(p *Preferences) { p.SoundEnabled = on })
}

func (s *Store) AnimationsEnabled() bool { return s.Get().AnimationsEnabled }

func (s *Store) SetAnimationsEnabled(ctx context.Context, on bool) {
	s.update(ctx, func(p *Preferences) { p.AnimationsEnabled = on })
}

func (s *Store) AutoSave() bool { return s.Get().AutoSave }

func (s *Store) SetAutoSave(ctx context.Context, on bool) {
	s.update(ctx, func(p *Preferences) { p.AutoSave = on })
}

func (s *Store) ShowHints() bool { return s.Get().ShowHints }

func (s *Store) SetShowHints(ctx context.Context, on bool) {
	s.update(ctx, func(p *Preferences) { p.ShowHints = on })
}

// Set assigns one field by its JSON name from a string value, as typed on
// the command line. Booleans accept strconv.ParseBool forms.
func (s *Store) Set(ctx context.Context, field, value string) error {
	switch field {
	case "theme":
		s.SetTheme(ctx, Theme(value))
	case "language":
		s.SetLanguage(ctx, value)
	case "fontSize":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("fontSize: %w", err)
		}
		s.SetFontSize(ctx, n)
	case "soundEnabled", "animationsEnabled", "autoSave", "showHints":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		s.update(ctx, func(p *Preferences) {
			switch field {
			case "soundEnabled":
				p.SoundEnabled = b
			case "animationsEnabled":
				p.AnimationsEnabled = b
			case "autoSave":
				p.AutoSave = b
			case "showHints":
				p.ShowHints = b
			}
		})
	default:
		return fmt.Errorf("unknown preference %q", field)
	}
	return nil
}

// Replace stores p wholesale, clamping the font size.
func (s *Store) Replace(ctx context.Context, p Preferences) Preferences {
	return s.update(ctx, func(cur *Preferences) {
		*cur = p
		cur.FontSize = ClampFontSize(p.FontSize)
	})
}

// ResetToDefaults replaces the whole record with the defaults.
func (s *Store) ResetToDefaults(ctx context.Context) Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = s.doc.Reset(ctx)
	s.log.Info("preferences reset")
	return s.cur
}

// Remove deletes the stored record and falls back to the defaults.
func (s *Store) Remove(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Remove(ctx)
	s.cur = Defaults()
}

// ApplyChange adopts preferences written by another process.
func (s *Store) ApplyChange(c store.Change) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.doc.ApplyChange(c)
	if ok {
		s.cur = p
	}
	return ok
}
