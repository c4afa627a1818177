package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// ErrUnavailable is returned by a Memory gateway that has been switched
// off with SetFailing, mimicking disabled or full browser storage.
var ErrUnavailable = errors.New("storage unavailable")

// Memory is an in-process Gateway. Handles created with Peer share the
// same data and see each other's writes as change signals, which is how
// several tabs over one storage area behave.
type Memory struct {
	shared *memoryData
	id     int
}

type memoryData struct {
	mu      sync.Mutex
	values  map[string]string
	failing bool
	nextID  int
	subs    map[int][]chan Change
	log     *zap.Logger
}

// watchQueueSize bounds the changes buffered for one slow watcher.
const watchQueueSize = 64

// NewMemory returns an empty in-memory gateway. log may be nil.
func NewMemory(log ...*zap.Logger) *Memory {
	d := &memoryData{
		values: make(map[string]string),
		subs:   make(map[int][]chan Change),
		nextID: 1,
		log:    zap.NewNop(),
	}
	if len(log) > 0 && log[0] != nil {
		d.log = log[0]
	}
	return &Memory{shared: d}
}

// Peer returns another handle over the same data.
func (m *Memory) Peer() *Memory {
	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()
	id := m.shared.nextID
	m.shared.nextID++
	return &Memory{shared: m.shared, id: id}
}

// SetFailing makes every subsequent operation fail with ErrUnavailable
// until called again with false.
func (m *Memory) SetFailing(failing bool) {
	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()
	m.shared.failing = failing
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()
	if m.shared.failing {
		return "", false, ErrUnavailable
	}
	v, ok := m.shared.values[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()
	if m.shared.failing {
		return ErrUnavailable
	}
	m.shared.values[key] = value
	m.broadcast(Change{Key: key, NewValue: strPtr(value)})
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()
	if m.shared.failing {
		return ErrUnavailable
	}
	if _, ok := m.shared.values[key]; !ok {
		return nil
	}
	delete(m.shared.values, key)
	m.broadcast(Change{Key: key})
	return nil
}

func (m *Memory) Keys(_ context.Context) ([]string, error) {
	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()
	if m.shared.failing {
		return nil, ErrUnavailable
	}
	keys := make([]string, 0, len(m.shared.values))
	for k := range m.shared.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Watch delivers writes made through other handles. Changes are queued
// per watcher and handed to fn in write order on a dedicated goroutine.
func (m *Memory) Watch(ctx context.Context, fn func(Change)) error {
	ch := make(chan Change, watchQueueSize)

	m.shared.mu.Lock()
	m.shared.subs[m.id] = append(m.shared.subs[m.id], ch)
	m.shared.mu.Unlock()

	go func() {
		defer m.unsubscribe(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case c := <-ch:
				fn(c)
			}
		}
	}()
	return nil
}

// broadcast must be called with the lock held. A watcher whose queue is
// full drops the signal rather than stalling the writer; the drop is
// logged so a missed reload can be traced.
func (m *Memory) broadcast(c Change) {
	for id, chans := range m.shared.subs {
		if id == m.id {
			continue
		}
		for _, ch := range chans {
			select {
			case ch <- c:
			default:
				m.shared.log.Warn("change signal dropped, watcher queue full",
					zap.String("key", c.Key),
					zap.Int("watcher", id),
					zap.Int("queue", watchQueueSize))
			}
		}
	}
}

func (m *Memory) unsubscribe(ch chan Change) {
	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()
	chans := m.shared.subs[m.id]
	for i, c := range chans {
		if c == ch {
			m.shared.subs[m.id] = append(chans[:i], chans[i+1:]...)
			break
		}
	}
}
