// internal/app/store/records/subscription.go
package records

import (
	"sync"

	"github.com/google/uuid"
)

// Snapshot is one emission of a live query: the full matching set at the time
// the backend observed a change. Seq starts at 1 for the initial snapshot.
type Snapshot struct {
	Seq     uint64
	Records []Record
}

// Subscription delivers snapshots in the order the backend produced them.
// Producers never block on a slow reader; snapshots queue until read.
//
// C is closed when the subscription ends. After that, Err returns the
// terminal *SubscriptionError, or ErrSubscriptionClosed after Cancel.
type Subscription struct {
	id         string
	collection string

	out    chan Snapshot
	notify chan struct{}
	done   chan struct{}

	mu      sync.Mutex
	pending []Snapshot
	seq     uint64
	err     error
	ending  bool

	once    sync.Once
	release func()
}

func newSubscription(collection string, release func()) *Subscription {
	s := &Subscription{
		id:         uuid.NewString(),
		collection: collection,
		out:        make(chan Snapshot),
		notify:     make(chan struct{}, 1),
		done:       make(chan struct{}),
		release:    release,
	}
	go s.run()
	return s
}

// ID identifies the subscription in logs.
func (s *Subscription) ID() string { return s.id }

// Collection is the collection being watched.
func (s *Subscription) Collection() string { return s.collection }

// C returns the snapshot channel.
func (s *Subscription) C() <-chan Snapshot { return s.out }

// Done is closed once the subscription has been cancelled or has failed.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Err returns why the subscription ended. Read it after C is closed.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Cancel stops delivery and releases backend resources. Snapshots still
// queued are dropped. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.mu.Lock()
		if s.err == nil {
			s.err = ErrSubscriptionClosed
		}
		s.pending = nil
		s.mu.Unlock()
		close(s.done)
		if s.release != nil {
			s.release()
		}
	})
}

// push queues a snapshot. It reports false once the subscription has ended.
func (s *Subscription) push(recs []Record) bool {
	s.mu.Lock()
	if s.ending || s.err != nil {
		s.mu.Unlock()
		return false
	}
	s.seq++
	s.pending = append(s.pending, Snapshot{Seq: s.seq, Records: recs})
	s.mu.Unlock()
	s.wake()
	return true
}

// fail ends the subscription with a terminal error once the snapshots already
// queued have been delivered.
func (s *Subscription) fail(err error) {
	s.mu.Lock()
	if s.ending || s.err != nil {
		s.mu.Unlock()
		return
	}
	s.ending = true
	s.err = &SubscriptionError{Collection: s.collection, Err: err}
	s.mu.Unlock()
	s.wake()
}

func (s *Subscription) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Subscription) run() {
	defer close(s.out)
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			ending := s.ending
			s.mu.Unlock()
			if ending {
				s.once.Do(func() {
					close(s.done)
					if s.release != nil {
						s.release()
					}
				})
				return
			}
			select {
			case <-s.notify:
				continue
			case <-s.done:
				return
			}
		}
		next := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		select {
		case s.out <- next:
		case <-s.done:
			return
		}
	}
}
