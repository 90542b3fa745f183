package mail

import (
	"context"
	"sync"
	"time"

	"github.com/expreshop/expreshop/internal/logging"
)

const sendTimeout = 30 * time.Second

type recoveryRequest struct {
	email string
	token string
}

// Dispatcher performs fire-and-forget delivery of recovery emails through a
// bounded queue consumed by a single background worker. Send failures are
// logged and dropped: the request that enqueued the email never observes
// them, and nothing is retried.
type Dispatcher struct {
	mailer Mailer
	logger logging.Logger
	queue  chan recoveryRequest
	wg     sync.WaitGroup

	closeOnce sync.Once
}

// NewDispatcher creates a Dispatcher holding at most buffer pending emails.
func NewDispatcher(m Mailer, l logging.Logger, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	return &Dispatcher{
		mailer: m,
		logger: l.With("module", "mail_dispatcher"),
		queue:  make(chan recoveryRequest, buffer),
	}
}

// Start launches the worker goroutine. It runs until Close is called and the
// queue has drained.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for req := range d.queue {
			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			if err := d.mailer.SendRecoveryEmail(ctx, req.email, req.token); err != nil {
				// The originating request has already returned 200.
				d.logger.Error(ctx, "recovery email send failed", "error", err)
			}
			cancel()
		}
	}()
}

// Enqueue hands an email off to the background worker without blocking.
// When the queue is full the request is dropped, consistent with delivery
// failures being unobservable.
func (d *Dispatcher) Enqueue(email, token string) {
	select {
	case d.queue <- recoveryRequest{email: email, token: token}:
	default:
		d.logger.Warn(context.Background(), "recovery email queue full, dropping", "email", email)
	}
}

// Close stops accepting new emails and waits for the worker to drain the
// queue. Safe to call more than once.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}
