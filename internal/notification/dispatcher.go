package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultDeliveryTimeout = 15 * time.Second

// Dispatcher hands messages to a Sink on background workers. Notify never
// blocks; delivery is at most once and failures are only logged.
type Dispatcher struct {
	sink    Sink
	logger  logrus.FieldLogger
	queue   chan Message
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

type DispatcherOptions struct {
	Workers         int
	QueueSize       int
	DeliveryTimeout time.Duration
}

func NewDispatcher(sink Sink, logger logrus.FieldLogger, opts DispatcherOptions) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1
	}
	if opts.DeliveryTimeout <= 0 {
		opts.DeliveryTimeout = defaultDeliveryTimeout
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	d := &Dispatcher{
		sink:    sink,
		logger:  logger,
		queue:   make(chan Message, opts.QueueSize),
		timeout: opts.DeliveryTimeout,
	}
	d.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go d.work()
	}
	return d
}

func (d *Dispatcher) Notify(_ context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	select {
	case d.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting messages and waits for queued ones to be delivered or
// for ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	entry := d.logger.WithFields(logrus.Fields{"type": msg.Type, "email": msg.Email})
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			entry.WithError(fmt.Errorf("panic: %v", r)).Error("notification delivery failed")
		}
	}()
	if err := d.sink.Deliver(ctx, msg); err != nil {
		entry.WithError(err).Error("notification delivery failed")
		return
	}
	entry.Info("notification delivered")
}
