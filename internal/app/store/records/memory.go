// internal/app/store/records/memory.go
package records

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Memory is an in-process Store. It applies the same equality semantics as
// the Mongo backend and notifies watchers synchronously with each write, so a
// change is queued on every affected subscription before the write returns.
type Memory struct {
	log *zap.Logger

	mu       sync.Mutex
	colls    map[string]map[string]Record
	watchers map[string]map[*memWatcher]struct{}
	down     error

	now   func() time.Time
	newID func() string
}

type memWatcher struct {
	filter Filter
	sub    *Subscription
}

// NewMemory returns an empty in-memory store.
func NewMemory(logger *zap.Logger) *Memory {
	return &Memory{
		log:      logger,
		colls:    make(map[string]map[string]Record),
		watchers: make(map[string]map[*memWatcher]struct{}),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// SetUnavailable makes every later call fail with err, as an unreachable
// backend would. Open subscriptions end with a *SubscriptionError. Pass nil
// to bring the store back.
func (m *Memory) SetUnavailable(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.down = err
	if err == nil {
		return
	}
	for coll, set := range m.watchers {
		for w := range set {
			w.sub.fail(err)
		}
		delete(m.watchers, coll)
	}
}

func (m *Memory) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.down
}

func (m *Memory) Find(ctx context.Context, collection string, f Filter) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down != nil {
		return nil, m.down
	}
	return m.matching(collection, f), nil
}

func (m *Memory) Watch(ctx context.Context, collection string, f Filter) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down != nil {
		return nil, &SubscriptionError{Collection: collection, Err: m.down}
	}

	w := &memWatcher{filter: Clone(Record(f)).asFilter()}
	w.sub = newSubscription(collection, func() { m.unwatch(collection, w) })
	if m.watchers[collection] == nil {
		m.watchers[collection] = make(map[*memWatcher]struct{})
	}
	m.watchers[collection][w] = struct{}{}
	w.sub.push(m.matching(collection, w.filter))

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				w.sub.Cancel()
			case <-w.sub.Done():
			}
		}()
	}
	return w.sub, nil
}

func (m *Memory) Get(ctx context.Context, collection, id string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down != nil {
		return nil, m.down
	}
	rec, ok := m.colls[collection][id]
	if !ok {
		return nil, &NotFoundError{Collection: collection, ID: id}
	}
	return Clone(rec), nil
}

func (m *Memory) Add(ctx context.Context, collection string, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, &WriteError{Op: "add", Collection: collection, Err: err}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down != nil {
		return nil, &WriteError{Op: "add", Collection: collection, Err: m.down}
	}

	stored := stamp(rec, m.newID, m.now())
	if m.colls[collection] == nil {
		m.colls[collection] = make(map[string]Record)
	}
	if _, taken := m.colls[collection][stored.ID()]; taken {
		return nil, &ConflictError{Collection: collection, ID: stored.ID()}
	}
	m.colls[collection][stored.ID()] = stored
	m.notify(collection, nil, stored)
	return Clone(stored), nil
}

func (m *Memory) Update(ctx context.Context, collection, id string, fields Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, &WriteError{Op: "update", Collection: collection, Err: err}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down != nil {
		return nil, &WriteError{Op: "update", Collection: collection, Err: m.down}
	}

	old, ok := m.colls[collection][id]
	if !ok {
		return nil, &NotFoundError{Collection: collection, ID: id}
	}
	next := Merge(old, fields)
	m.colls[collection][id] = next
	m.notify(collection, old, next)
	return Clone(next), nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return &WriteError{Op: "delete", Collection: collection, Err: err}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down != nil {
		return &WriteError{Op: "delete", Collection: collection, Err: m.down}
	}

	old, ok := m.colls[collection][id]
	if !ok {
		return nil
	}
	delete(m.colls[collection], id)
	m.notify(collection, old, nil)
	return nil
}

// notify pushes a fresh snapshot to every watcher whose filter matched the
// record before or after the change. Caller holds m.mu.
func (m *Memory) notify(collection string, before, after Record) {
	for w := range m.watchers[collection] {
		hit := (before != nil && Matches(before, w.filter)) || (after != nil && Matches(after, w.filter))
		if !hit {
			continue
		}
		if !w.sub.push(m.matching(collection, w.filter)) {
			delete(m.watchers[collection], w)
		}
	}
}

// matching returns copies of the records matching f, ordered by id for
// stable output. Caller holds m.mu.
func (m *Memory) matching(collection string, f Filter) []Record {
	out := []Record{}
	for _, rec := range m.colls[collection] {
		if Matches(rec, f) {
			out = append(out, Clone(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (m *Memory) unwatch(collection string, w *memWatcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.watchers[collection], w)
	m.log.Debug("memory subscription released",
		zap.String("collection", collection),
		zap.String("subscription", w.sub.ID()))
}

func (r Record) asFilter() Filter { return Filter(r) }
