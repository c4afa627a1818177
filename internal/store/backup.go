package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrInvalidBackup is returned when a backup has no data section.
var ErrInvalidBackup = errors.New("invalid backup: missing data")

// AppPrefixes are the key prefixes owned by the application. Only keys
// starting with one of them are exported or cleared.
var AppPrefixes = []string{"vue-learning-", "user-preferences", "learning-session", "vue-game-"}

// Backup is a point-in-time copy of the application's stored values.
type Backup struct {
	ExportDate time.Time         `json:"exportDate"`
	Data       map[string]string `json:"data"`
}

// UsageInfo summarizes how much the gateway holds.
type UsageInfo struct {
	TotalKeys       int     `json:"totalKeys"`
	EstimatedSize   int     `json:"estimatedSize"`
	EstimatedSizeKB float64 `json:"estimatedSizeKB"`
}

func hasAppPrefix(key string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

func prefixesOrDefault(prefixes []string) []string {
	if len(prefixes) == 0 {
		return AppPrefixes
	}
	return prefixes
}

// ExportAll copies every application key verbatim. With no prefixes the
// AppPrefixes whitelist applies.
func ExportAll(ctx context.Context, gw Gateway, prefixes ...string) (Backup, error) {
	prefixes = prefixesOrDefault(prefixes)

	keys, err := gw.Keys(ctx)
	if err != nil {
		return Backup{}, fmt.Errorf("list keys: %w", err)
	}

	b := Backup{ExportDate: time.Now().UTC(), Data: make(map[string]string)}
	for _, k := range keys {
		if !hasAppPrefix(k, prefixes) {
			continue
		}
		v, ok, err := gw.Get(ctx, k)
		if err != nil {
			return Backup{}, fmt.Errorf("read %q: %w", k, err)
		}
		if ok {
			b.Data[k] = v
		}
	}
	return b, nil
}

// ImportAll writes every entry of b back verbatim. A backup without a data
// section is rejected before anything is written.
func ImportAll(ctx context.Context, gw Gateway, b Backup) error {
	if b.Data == nil {
		return ErrInvalidBackup
	}
	for k, v := range b.Data {
		if err := gw.Set(ctx, k, v); err != nil {
			return fmt.Errorf("write %q: %w", k, err)
		}
	}
	return nil
}

// ParseBackup decodes an exported backup document.
func ParseBackup(raw []byte) (Backup, error) {
	var b Backup
	if err := json.Unmarshal(raw, &b); err != nil {
		return Backup{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if b.Data == nil {
		return Backup{}, ErrInvalidBackup
	}
	return b, nil
}

// ClearAppData removes every application key and returns how many were
// removed.
func ClearAppData(ctx context.Context, gw Gateway, prefixes ...string) (int, error) {
	prefixes = prefixesOrDefault(prefixes)

	keys, err := gw.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("list keys: %w", err)
	}

	n := 0
	for _, k := range keys {
		if !hasAppPrefix(k, prefixes) {
			continue
		}
		if err := gw.Remove(ctx, k); err != nil {
			return n, fmt.Errorf("remove %q: %w", k, err)
		}
		n++
	}
	return n, nil
}

// Usage estimates the size of everything in the gateway as the summed
// length of keys and values.
func Usage(ctx context.Context, gw Gateway) (UsageInfo, error) {
	keys, err := gw.Keys(ctx)
	if err != nil {
		return UsageInfo{}, fmt.Errorf("list keys: %w", err)
	}

	info := UsageInfo{TotalKeys: len(keys)}
	for _, k := range keys {
		v, _, err := gw.Get(ctx, k)
		if err != nil {
			return UsageInfo{}, fmt.Errorf("read %q: %w", k, err)
		}
		info.EstimatedSize += len(k) + len(v)
	}
	info.EstimatedSizeKB = math.Round(float64(info.EstimatedSize)/1024*100) / 100
	return info, nil
}

const availabilityKey = "__storage_test__"

// IsAvailable reports whether the gateway accepts a write and a removal.
func IsAvailable(ctx context.Context, gw Gateway) bool {
	if err := gw.Set(ctx, availabilityKey, "test"); err != nil {
		return false
	}
	return gw.Remove(ctx, availabilityKey) == nil
}
