package llm

import (
	"context"
	"maps"
	"strings"
	"sync"

	"github.com/abhisek/vuequest/internal/metrics"
)

// ModelCost is USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost prices one request.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// modelCosts covers the models the friendly names in config resolve to,
// plus the neighbours users most often set directly. Reviewed 2026-10.
var modelCosts = map[string]ModelCost{
	"claude-haiku-4-5":  {1, 5},
	"claude-sonnet-4":   {3, 15},
	"claude-sonnet-4-5": {3, 15},
	"claude-3-5-haiku":  {0.8, 4},

	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1-nano": {0.1, 0.4},

	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.0-flash-lite": {0.075, 0.3},
	"gemini-2.0-pro":        {1.25, 10},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-pro":        {1.25, 10},
}

// LookupCost prices a model ID as the providers report it. OpenRouter's
// vendor prefix and dated snapshot suffixes are ignored. Free and
// experimental OpenRouter routes cost nothing. Unknown models return nil.
func LookupCost(modelID string) *ModelCost {
	id := modelID
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		if strings.HasSuffix(id, ":free") || strings.HasSuffix(id, "-exp") {
			return &ModelCost{}
		}
		id = id[i+1:]
	}
	for id != "" {
		if c, ok := modelCosts[id]; ok {
			return &c
		}
		// claude-haiku-4-5-20251001, gpt-4o-2024-08-06, gemini-2.0-flash-001
		i := strings.LastIndexByte(id, '-')
		if i < 0 {
			break
		}
		id = id[:i]
	}
	return nil
}

// PurposeUsage is the running total for one Purpose.
type PurposeUsage struct {
	Requests     int     `json:"requests"`
	Failures     int     `json:"failures"`
	InputTokens  int     `json:"inputTokens"`
	OutputTokens int     `json:"outputTokens"`
	CostUSD      float64 `json:"estimatedCostUsd"`

	// Unpriced counts requests whose model is missing from the price table.
	Unpriced int `json:"unpriced,omitempty"`
}

// UsageLedger accumulates token spend per Purpose for the life of the
// process. Safe for concurrent use.
type UsageLedger struct {
	mu   sync.Mutex
	byID map[Purpose]PurposeUsage
}

func NewUsageLedger() *UsageLedger {
	return &UsageLedger{byID: make(map[Purpose]PurposeUsage)}
}

// Record adds one request to the ledger. resp is nil on failure.
func (l *UsageLedger) Record(p Purpose, resp *Response, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	u := l.byID[p]
	u.Requests++
	if err != nil || resp == nil {
		u.Failures++
		l.byID[p] = u
		return
	}

	u.InputTokens += resp.Usage.InputTokens
	u.OutputTokens += resp.Usage.OutputTokens
	if c := LookupCost(resp.Model); c != nil {
		u.CostUSD += c.Cost(resp.Usage.InputTokens, resp.Usage.OutputTokens)
	} else {
		u.Unpriced++
	}
	l.byID[p] = u
}

// Snapshot copies the totals.
func (l *UsageLedger) Snapshot() map[Purpose]PurposeUsage {
	l.mu.Lock()
	defer l.mu.Unlock()
	return maps.Clone(l.byID)
}

// Total sums every purpose.
func (l *UsageLedger) Total() PurposeUsage {
	var t PurposeUsage
	for _, u := range l.Snapshot() {
		t.Requests += u.Requests
		t.Failures += u.Failures
		t.InputTokens += u.InputTokens
		t.OutputTokens += u.OutputTokens
		t.CostUSD += u.CostUSD
		t.Unpriced += u.Unpriced
	}
	return t
}

// UsageProvider charges every call to the Purpose on its context.
type UsageProvider struct {
	inner  Provider
	ledger *UsageLedger
}

// WithUsage wraps p so its calls land in ledger. A nil ledger returns p.
func WithUsage(p Provider, ledger *UsageLedger) Provider {
	if ledger == nil {
		return p
	}
	return &UsageProvider{inner: p, ledger: ledger}
}

func (u *UsageProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := u.inner.Generate(ctx, req)
	purpose := PurposeFrom(ctx)
	u.ledger.Record(purpose, resp, err)
	if err == nil && resp != nil {
		metrics.ObserveLLMTokens(string(purpose), resp.Usage.InputTokens, resp.Usage.OutputTokens)
	}
	return resp, err
}

func (u *UsageProvider) ModelID() string {
	return u.inner.ModelID()
}
