package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"taskfollowup/internal/config"
)

var (
	ErrQueueFull         = errors.New("mail queue is full")
	ErrDispatcherStopped = errors.New("mail dispatcher is stopped")
)

// Dispatcher delivers messages in the background with a bounded queue.
// Delivery is best effort: a message still failing after the retries is logged and dropped.
type Dispatcher struct {
	sender     MailSender
	queue      chan Message
	workers    int
	maxRetries int
	interval   time.Duration
	log        logrus.FieldLogger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewDispatcher(sender MailSender, cfg config.MailConfig, log logrus.FieldLogger) *Dispatcher {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	queueSize := cfg.QueueSize
	if queueSize < 0 {
		queueSize = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		sender:     sender,
		queue:      make(chan Message, queueSize),
		workers:    workers,
		maxRetries: maxRetries,
		interval:   cfg.RetryInterval,
		log:        log.WithField("component", "mail_dispatcher"),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start launches the workers
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	d.log.Infof("Mail dispatcher started with %d workers", d.workers)
}

// Submit queues msg without blocking
func (d *Dispatcher) Submit(msg Message) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrDispatcherStopped
	}

	select {
	case d.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop refuses new messages and waits for queued ones. When ctx ends first, pending retries are abandoned.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	b := backoff.NewExponentialBackOff()
	if d.interval > 0 {
		b.InitialInterval = d.interval
	}
	b.MaxElapsedTime = 0

	attempt := 0
	operation := func() error {
		attempt++
		err := d.sender.Send(d.ctx, msg)
		if err != nil {
			d.log.WithFields(logrus.Fields{
				"reference": msg.Reference,
				"to":        msg.ToEmail,
				"attempt":   attempt,
			}).Warnf("Mail delivery failed: %v", err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(d.maxRetries)), d.ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		d.log.WithFields(logrus.Fields{
			"reference": msg.Reference,
			"to":        msg.ToEmail,
			"attempts":  attempt,
		}).Errorf("Dropping mail after retries: %v", err)
		return
	}

	d.log.WithFields(logrus.Fields{"reference": msg.Reference, "to": msg.ToEmail}).Info("Mail sent")
}
