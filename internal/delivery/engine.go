package delivery

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/storage"
)

// PermissionSetting is the settings key the engine consults for the
// persisted permission grant. Absent means granted.
const PermissionSetting = "permission.granted"

type queueItem struct {
	trigger Trigger
}

type triggerQueue []queueItem

func (q triggerQueue) Len() int { return len(q) }

func (q triggerQueue) Less(i, j int) bool {
	return q[i].trigger.At.Before(q[j].trigger.At)
}

func (q triggerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
}

func (q *triggerQueue) Push(x any) {
	*q = append(*q, x.(queueItem))
}

func (q *triggerQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[0 : n-1]
	return item
}

// Fired is emitted on the engine's channel when a trigger's instant
// arrives. Missed marks triggers whose instant had already passed when the
// engine replayed its persisted queue after a restart.
type Fired struct {
	Trigger Trigger
	FiredAt time.Time
	Missed  bool
}

// Engine is an in-process delivery mechanism: a min-heap of triggers
// drained by a single timer goroutine. When a store is attached, every
// registration is persisted before it is queued so the set of registered
// triggers survives a restart.
type Engine struct {
	store storage.TriggerStore

	mu      sync.Mutex
	queue   triggerQueue
	out     chan Fired
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

// NewEngine creates an engine. store may be nil for a purely in-memory
// engine (tests, ephemeral runs).
func NewEngine(store storage.TriggerStore, bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		store:  store,
		queue:  make(triggerQueue, 0),
		out:    make(chan Fired, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (e *Engine) C() <-chan Fired {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

// RegisterTrigger persists and queues a trigger. An identifier already in
// the queue is replaced, never duplicated.
func (e *Engine) RegisterTrigger(ctx context.Context, t Trigger) error {
	if t.ID == "" {
		return ErrMissingTriggerID
	}
	if t.At.IsZero() {
		return ErrInvalidFireTime
	}
	if e.store != nil {
		if err := e.store.PutTrigger(ctx, toRecord(t)); err != nil {
			return err
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return errors.New("delivery: engine stopped")
	}
	e.removeQueuedLocked(t.ID)
	heap.Push(&e.queue, queueItem{trigger: t})
	e.signalWakeup()
	return nil
}

// CancelTrigger removes exactly the trigger with the given identifier.
// Cancelling an unknown identifier is not an error.
func (e *Engine) CancelTrigger(ctx context.Context, id string) error {
	if e.store != nil {
		if err := e.store.DeleteTrigger(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
	}
	e.mu.Lock()
	e.removeQueuedLocked(id)
	e.mu.Unlock()
	return nil
}

func (e *Engine) ListTriggerIDs(ctx context.Context) ([]string, error) {
	if e.store != nil {
		return e.store.ListTriggerIDs(ctx)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.queue))
	for i := range e.queue {
		out = append(out, e.queue[i].trigger.ID)
	}
	return out, nil
}

// RequestPermission reads the persisted grant. A store-less engine and an
// unset setting both report granted.
func (e *Engine) RequestPermission(ctx context.Context) (bool, error) {
	if e.store == nil {
		return true, nil
	}
	value, err := e.store.GetSetting(ctx, PermissionSetting)
	if errors.Is(err, storage.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return value == "granted", nil
}

func (e *Engine) Healthy(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	return e.store.Ping(ctx)
}

// Replay rebuilds the queue from the store after a restart. Triggers whose
// instant already passed are emitted immediately as missed and removed;
// future ones are re-queued.
func (e *Engine) Replay(ctx context.Context, now time.Time) (missed, queued int, err error) {
	if e.store == nil {
		return 0, 0, nil
	}
	items, err := e.store.ListTriggers(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, item := range items {
		t := fromRecord(item)
		if !t.At.After(now) {
			if delErr := e.store.DeleteTrigger(ctx, t.ID); delErr != nil && !errors.Is(delErr, storage.ErrNotFound) {
				return missed, queued, delErr
			}
			e.emit(Fired{Trigger: t, FiredAt: now, Missed: true})
			missed++
			continue
		}
		e.mu.Lock()
		e.removeQueuedLocked(t.ID)
		heap.Push(&e.queue, queueItem{trigger: t})
		e.signalWakeup()
		e.mu.Unlock()
		queued++
	}
	return missed, queued, nil
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := time.Until(next.At)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			now := time.Now().UTC()
			for _, t := range e.popDue(now) {
				if e.store != nil {
					_ = e.store.DeleteTrigger(context.Background(), t.ID)
				}
				e.emit(Fired{Trigger: t, FiredAt: now})
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (e *Engine) emit(f Fired) {
	select {
	case e.out <- f:
	default:
		atomic.AddUint64(&e.dropped, 1)
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (Trigger, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return Trigger{}, false
	}
	return e.queue[0].trigger, true
}

func (e *Engine) popDue(now time.Time) []Trigger {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Trigger, 0)
	for len(e.queue) > 0 {
		next := e.queue[0].trigger
		if next.At.After(now) {
			break
		}
		item := heap.Pop(&e.queue).(queueItem)
		out = append(out, item.trigger)
	}
	return out
}

func (e *Engine) removeQueuedLocked(id string) {
	for i := range e.queue {
		if e.queue[i].trigger.ID == id {
			heap.Remove(&e.queue, i)
			return
		}
	}
}

func toRecord(t Trigger) storage.Trigger {
	return storage.Trigger{
		ID:     t.ID,
		FireAt: t.At,
		Title:  t.Payload.Title,
		Body:   t.Payload.Body,
		Kind:   string(t.Payload.Kind),
		Meta:   t.Payload.Meta,
	}
}

func fromRecord(r storage.Trigger) Trigger {
	return Trigger{
		ID: r.ID,
		At: r.FireAt,
		Payload: Payload{
			Title: r.Title,
			Body:  r.Body,
			Kind:  model.TriggerKind(r.Kind),
			Meta:  r.Meta,
		},
	}
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
