// Package normalize recovers structured data from model output that is
// supposed to be JSON but often is not quite: wrapped in prose or code
// fences, carrying trailing commas or JavaScript-only tokens.
package normalize

import (
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/vuequest/internal/metrics"
)

var (
	nanToken       = regexp.MustCompile(`:\s*NaN\s*([,}])`)
	undefinedToken = regexp.MustCompile(`:\s*undefined\s*([,}])`)
	trailingComma  = regexp.MustCompile(`,(\s*[}\]])`)
	fenceToEnd     = regexp.MustCompile("```[\\s\\S]*$")
	fencedBlock    = regexp.MustCompile("(?i)```(?:json)?[\\r\\n]+([\\s\\S]*?)```")
	braceSpan      = regexp.MustCompile(`\{[\s\S]*\}`)
)

// Clean repairs the token-level damage models commonly produce. Bare NaN
// becomes 5, bare undefined becomes null, trailing commas go, and
// everything from the first code fence onward is dropped.
func Clean(s string) string {
	s = nanToken.ReplaceAllString(s, ": 5$1")
	s = undefinedToken.ReplaceAllString(s, ": null$1")
	s = trailingComma.ReplaceAllString(s, "$1")
	s = fenceToEnd.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Strategy attempts to recover a JSON value from raw model output. It
// never panics; ok is false when the strategy does not apply.
type Strategy struct {
	Name  string
	Apply func(raw string) (v any, ok bool)
}

func decode(s string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(Clean(s)), &v); err != nil {
		return nil, false
	}
	return v, true
}

// Direct parses the whole input.
func Direct(raw string) (any, bool) {
	return decode(raw)
}

// Fenced parses the body of the first ``` or ```json block.
func Fenced(raw string) (any, bool) {
	m := fencedBlock.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	return decode(m[1])
}

// Unfenced removes every ``` marker and parses what remains.
func Unfenced(raw string) (any, bool) {
	if !strings.Contains(raw, "```") {
		return nil, false
	}
	return decode(strings.TrimSpace(strings.ReplaceAll(raw, "```", "")))
}

// Braces parses the span from the first { to the last }. It is the most
// permissive strategy and can swallow unrelated trailing braces.
func Braces(raw string) (any, bool) {
	span := braceSpan.FindString(raw)
	if span == "" {
		return nil, false
	}
	return decode(span)
}

// DefaultStrategies is the order strategies are tried in, cheapest and
// strictest first.
var DefaultStrategies = []Strategy{
	{Name: "direct", Apply: Direct},
	{Name: "fenced", Apply: Fenced},
	{Name: "unfenced", Apply: Unfenced},
	{Name: "braces", Apply: Braces},
}

// Normalizer runs a chain of strategies over model output and stops at
// the first that succeeds.
type Normalizer struct {
	strategies []Strategy
	log        *zap.Logger
}

// New returns a Normalizer using DefaultStrategies.
func New(log *zap.Logger) *Normalizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Normalizer{strategies: DefaultStrategies, log: log}
}

// Parse returns the first value any strategy recovers. Empty input and
// total failure both report false; total failure is logged with the raw
// input.
func (n *Normalizer) Parse(raw string) (any, bool) {
	if strings.TrimSpace(raw) == "" {
		metrics.NormalizeOutcomes.WithLabelValues("empty").Inc()
		return nil, false
	}

	for _, s := range n.strategies {
		if v, ok := s.Apply(raw); ok {
			metrics.NormalizeOutcomes.WithLabelValues(s.Name).Inc()
			return v, true
		}
	}

	metrics.NormalizeOutcomes.WithLabelValues("none").Inc()
	n.log.Warn("could not recover JSON from model output", zap.String("raw", raw))
	return nil, false
}

// ParseObject is Parse restricted to JSON objects.
func (n *Normalizer) ParseObject(raw string) (map[string]any, bool) {
	v, ok := n.Parse(raw)
	if !ok {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	return obj, ok
}

// ParseArray is Parse restricted to JSON arrays. A single object wrapping
// the array under key is accepted too, since models often add one.
func (n *Normalizer) ParseArray(raw, key string) ([]any, bool) {
	v, ok := n.Parse(raw)
	if !ok {
		return nil, false
	}
	switch t := v.(type) {
	case []any:
		return t, true
	case map[string]any:
		if arr, ok := t[key].([]any); ok {
			return arr, true
		}
	}
	return nil, false
}
