package moderation

import (
	"container/heap"
	"context"
	"log"
	"sync"
	"time"
)

// Expirer is the callback the scheduler fires when a deadline arrives.
type Expirer interface {
	ExpireReprimand(ctx context.Context, reprimandID string) error
}

type expiryEntry struct {
	id string
	at time.Time
}

type expiryHeap []expiryEntry

func (h expiryHeap) Len() int            { return len(h) }
func (h expiryHeap) Less(i, j int) bool  { return h[i].at.Before(h[j].at) }
func (h expiryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *expiryHeap) Push(x interface{}) { *h = append(*h, x.(expiryEntry)) }
func (h *expiryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	entry := old[n-1]
	*h = old[:n-1]
	return entry
}

// Scheduler keeps every pending expiry in a deadline-ordered heap and runs a
// single loop that sleeps until the next one is due. Duplicate registrations
// are harmless, the expiry callback is idempotent.
type Scheduler struct {
	store   Store
	expirer Expirer

	mu      sync.Mutex
	pending expiryHeap

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

func NewScheduler(store Store) *Scheduler {
	return &Scheduler{
		store: store,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Register queues a reprimand for expiry at the given time. Safe to call
// from any goroutine, before or after Start.
func (s *Scheduler) Register(reprimandID string, at time.Time) {
	s.mu.Lock()
	heap.Push(&s.pending, expiryEntry{id: reprimandID, at: at})
	first := s.pending[0].id == reprimandID
	s.mu.Unlock()

	if first {
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}
}

// Start reloads every persisted active expirable reprimand, then runs the
// loop. Deadlines already past fire on the first iteration.
func (s *Scheduler) Start(ctx context.Context, expirer Expirer) error {
	s.expirer = expirer

	active, err := s.store.ActiveExpirable(ctx)
	if err != nil {
		return err
	}
	for _, r := range active {
		if r.ExpiresAt != nil {
			s.Register(r.ID, *r.ExpiresAt)
		}
	}
	log.Printf("moderation: expiry scheduler started with %d pending", len(active))

	s.wg.Add(1)
	go s.run(ctx)
	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		if len(s.pending) > 0 && !time.Now().Before(s.pending[0].at) {
			entry := heap.Pop(&s.pending).(expiryEntry)
			s.mu.Unlock()
			if err := s.expirer.ExpireReprimand(ctx, entry.id); err != nil {
				log.Printf("moderation: expiring reprimand %s: %v", entry.id, err)
			}
			continue
		}
		var next <-chan time.Time
		var timer *time.Timer
		if len(s.pending) > 0 {
			timer = time.NewTimer(time.Until(s.pending[0].at))
			next = timer.C
		}
		s.mu.Unlock()

		select {
		case <-next:
		case <-s.wake:
			if timer != nil {
				timer.Stop()
			}
		case <-s.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// Stop shuts the loop down and waits for it to finish.
func (s *Scheduler) Stop() {
	close(s.done)
	s.wg.Wait()
}

var _ ExpiryRegistry = (*Scheduler)(nil)
