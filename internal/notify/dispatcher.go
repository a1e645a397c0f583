// Package notify delivers order notifications in the background, after the
// order has been committed.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/order"

	"go.uber.org/zap"
)

// Sink delivers one notification. Send may block on network I/O.
type Sink interface {
	Name() string
	Send(ctx context.Context, o order.Order) error
}

const defaultSendTimeout = 30 * time.Second

type job struct {
	ctx   context.Context
	order order.Order
}

// Dispatcher queues orders and hands them to every sink from a single
// worker goroutine. Failures are logged and dropped; nothing is retried.
type Dispatcher struct {
	sinks       []Sink
	queue       chan job
	sendTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}

	stats metrics.Outcomes
}

func NewDispatcher(queueSize int, sinks ...Sink) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	d := &Dispatcher{
		sinks:       sinks,
		queue:       make(chan job, queueSize),
		sendTimeout: defaultSendTimeout,
		done:        make(chan struct{}),
	}
	go d.run()
	return d
}

// OrderCreated enqueues o without blocking. When the queue is full or the
// dispatcher is closed the notification is dropped.
func (d *Dispatcher) OrderCreated(ctx context.Context, o order.Order) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "notify"),
		zap.String("order_id", o.ID.String()),
	)

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.stats.Dropped.Inc()
		log.Warn("notification dropped: dispatcher closed")
		return
	}

	select {
	case d.queue <- job{ctx: context.WithoutCancel(ctx), order: o}:
		d.stats.Enqueued.Inc()
	default:
		d.stats.Dropped.Inc()
		log.Warn("notification dropped: queue full", zap.Int("capacity", cap(d.queue)))
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for j := range d.queue {
		d.deliver(j)
	}
}

func (d *Dispatcher) deliver(j job) {
	log := logger.FromCtx(j.ctx).With(
		zap.String("layer", "notify"),
		zap.String("order_id", j.order.ID.String()),
	)

	failed := false
	for _, sink := range d.sinks {
		ctx, cancel := context.WithTimeout(j.ctx, d.sendTimeout)
		timer := metrics.StartTimer()
		err := sink.Send(ctx, j.order)
		cancel()

		if err != nil {
			failed = true
			log.Error("notification failed",
				zap.String("sink", sink.Name()),
				zap.Duration("duration", timer.Elapsed()),
				zap.Error(err),
			)
			continue
		}
		log.Info("notification sent",
			zap.String("sink", sink.Name()),
			zap.Duration("duration", timer.Elapsed()),
		)
	}

	if failed {
		d.stats.Failed.Inc()
	} else {
		d.stats.Delivered.Inc()
	}
}

// Close stops accepting notifications and waits for the queue to drain or
// ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("notification queue not drained"), ctx.Err())
	}
}

func (d *Dispatcher) Stats() metrics.OutcomeSnapshot {
	return d.stats.Snapshot()
}
