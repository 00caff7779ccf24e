package telegram

import (
	"context"
	"errors"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var (
	ErrDispatcherClosed = errors.New("dispatcher closed")
	ErrUserQueueFull    = errors.New("user queue full")
)

// defaultUserQueue bounds the backlog of one user.
const defaultUserQueue = 32

type updateFunc func(ctx context.Context, update tgbotapi.Update)

// Dispatcher runs updates of one user strictly in arrival order while
// different users are served concurrently. A worker goroutine exists only
// while its user has queued updates.
type Dispatcher struct {
	handle   updateFunc
	maxQueue int

	mu     sync.Mutex
	queues map[int64][]tgbotapi.Update
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher calling handle for every update.
func NewDispatcher(handle updateFunc, maxQueue int) *Dispatcher {
	if maxQueue <= 0 {
		maxQueue = defaultUserQueue
	}
	return &Dispatcher{
		handle:   handle,
		maxQueue: maxQueue,
		queues:   make(map[int64][]tgbotapi.Update),
	}
}

// Dispatch queues update for key and starts a worker when the key is idle.
func (d *Dispatcher) Dispatch(ctx context.Context, key int64, update tgbotapi.Update) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	q, busy := d.queues[key]
	if len(q) >= d.maxQueue {
		return ErrUserQueueFull
	}
	d.queues[key] = append(q, update)

	if !busy {
		d.wg.Add(1)
		go d.worker(ctx, key)
	}
	return nil
}

func (d *Dispatcher) worker(ctx context.Context, key int64) {
	defer d.wg.Done()

	for {
		d.mu.Lock()
		q := d.queues[key]
		if len(q) == 0 {
			delete(d.queues, key)
			d.mu.Unlock()
			return
		}
		next := q[0]
		d.queues[key] = q[1:]
		d.mu.Unlock()

		d.handle(ctx, next)
	}
}

// Active returns the number of users with queued or running updates.
func (d *Dispatcher) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queues)
}

// Close rejects new updates and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()
}
