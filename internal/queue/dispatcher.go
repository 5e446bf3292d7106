package queue

import (
	"context"
	"sync/atomic"
	"time"

	"fee-desk/internal/logger"
	"fee-desk/internal/model"
	"fee-desk/pkg/errors"

	"github.com/rs/zerolog"
)

// FallbackMessage is recorded when the endpoint cannot be reached or its
// reply cannot be read.
const FallbackMessage = "Failed to submit payment."

type Submitter interface {
	Submit(ctx context.Context, item model.SubmissionItem) (*model.SubmitResponse, error)
}

// Notifier is told about every item that reaches a terminal state.
type Notifier interface {
	Notify(ctx context.Context, item model.SubmissionItem)
}

type DispatcherOption func(*Dispatcher)

// WithTimeout bounds each remote call. A call that runs out ends in error
// and the queue moves on.
func WithTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

func WithNotifier(n Notifier) DispatcherOption {
	return func(d *Dispatcher) {
		d.notifier = n
	}
}

// Dispatcher drains the queue one item at a time in FIFO order.
type Dispatcher struct {
	queue     *Queue
	submitter Submitter
	notifier  Notifier
	timeout   time.Duration
	inFlight  atomic.Bool
	log       zerolog.Logger
}

func NewDispatcher(q *Queue, submitter Submitter, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		queue:     q,
		submitter: submitter,
		log:       logger.Component("dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run blocks until ctx is cancelled. It wakes on every enqueue and, after
// each completed dispatch, checks again at once for the next pending item.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.log.Info().Dur("timeout", d.timeout).Msg("Starting dispatcher")

	for {
		for d.DispatchOnce(ctx) {
		}

		select {
		case <-ctx.Done():
			d.log.Info().Msg("Dispatcher stopping due to context cancellation")
			return ctx.Err()
		case <-d.queue.Wake():
		}
	}
}

// InFlight reports whether a remote call is outstanding.
func (d *Dispatcher) InFlight() bool {
	return d.inFlight.Load()
}

// DispatchOnce sends the oldest pending item, if any, and returns whether it
// did. It returns false immediately when another dispatch is in flight.
func (d *Dispatcher) DispatchOnce(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if !d.inFlight.CompareAndSwap(false, true) {
		return false
	}
	defer d.inFlight.Store(false)

	item, ok := d.queue.NextPending()
	if !ok {
		return false
	}

	log := d.log.With().
		Str("item_id", item.ID).
		Str("admission_no", item.AdmissionNo).
		Str("amount", item.Amount).
		Logger()

	if err := d.queue.UpdateStatus(item.ID, model.SubmissionStatusLoading, ""); err != nil {
		log.Error().Err(err).Msg("Failed to mark submission as loading")
		return true
	}

	log.Debug().Msg("Dispatching submission")
	status, message := d.deliver(ctx, item, log)

	if err := d.queue.UpdateStatus(item.ID, status, message); err != nil {
		log.Error().Err(err).Msg("Failed to record submission outcome")
		return true
	}

	if d.notifier != nil {
		if final, ok := d.queue.Get(item.ID); ok {
			d.notifier.Notify(ctx, final)
		}
	}
	return true
}

func (d *Dispatcher) deliver(ctx context.Context, item model.SubmissionItem, log zerolog.Logger) (model.SubmissionStatus, string) {
	callCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := d.submitter.Submit(callCtx, item)
	if err == nil && resp == nil {
		err = errors.ErrInvalidResponse
	}
	if err != nil {
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("Submission failed")
		return model.SubmissionStatusError, FallbackMessage
	}

	if resp.Succeeded() {
		log.Info().Str("message", resp.Message).Dur("duration", time.Since(start)).Msg("Submission recorded")
		return model.SubmissionStatusSuccess, resp.Message
	}

	log.Warn().Str("remote_status", resp.Status).Str("message", resp.Message).Msg("Submission rejected by endpoint")
	return model.SubmissionStatusError, resp.Message
}
