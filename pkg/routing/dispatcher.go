package routing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/providers"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/providers/deepseek"
)

const (
	// DefaultClientErrorDelay is the wait before retrying after an
	// upstream 4xx.
	DefaultClientErrorDelay = 1 * time.Second

	// DefaultTransportErrorDelay is the wait before retrying after a
	// network failure, timeout or 5xx. Deliberately longer than the
	// client-error delay.
	DefaultTransportErrorDelay = 2 * time.Second
)

// Attempt outcome labels used for logging and metrics.
const (
	OutcomeSuccess   = "success"
	OutcomeClient    = "client_error"
	OutcomeTransport = "transport_error"
)

// Completer is the upstream capability the dispatcher drives. Satisfied by
// *deepseek.Client.
type Completer interface {
	CreateCompletion(ctx context.Context, req *providers.CompletionRequest) (*deepseek.ChatResponse, error)
	CreateCompletionStream(ctx context.Context, req *providers.CompletionRequest) (io.ReadCloser, error)
}

// Observer receives attempt-level events. Implemented by the metrics
// collector; a nil Observer disables observation.
type Observer interface {
	ObserveAttempt(model, outcome string)
	ObservePromotion(from, to string)
	ObserveFailureCount(n int)
}

// Result is a successful non-streaming dispatch.
type Result struct {
	Response *deepseek.ChatResponse

	// Model is the model that actually served the request.
	Model string

	// Attempts is how many models were tried, including the winner.
	Attempts int
}

// StreamResult is a successful streaming dispatch. The caller owns Body.
type StreamResult struct {
	Body io.ReadCloser

	Model    string
	Attempts int
}

// Dispatcher walks the model chain for each request. Safe for concurrent
// use; shared mutable state lives in ModelState.
type Dispatcher struct {
	state  *ModelState
	client Completer

	clientErrorDelay    time.Duration
	transportErrorDelay time.Duration

	observer Observer
	logger   *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithDelays overrides the fixed inter-attempt delays. Used by tests and
// by config; never adjustable per request.
func WithDelays(clientErr, transportErr time.Duration) Option {
	return func(d *Dispatcher) {
		d.clientErrorDelay = clientErr
		d.transportErrorDelay = transportErr
	}
}

// WithObserver attaches an attempt observer.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		d.observer = o
	}
}

// NewDispatcher creates a dispatcher over the given state and upstream
// client.
func NewDispatcher(state *ModelState, client Completer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		state:               state,
		client:              client,
		clientErrorDelay:    DefaultClientErrorDelay,
		transportErrorDelay: DefaultTransportErrorDelay,
		logger:              slog.Default().With("component", "routing"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the shared model state.
func (d *Dispatcher) State() *ModelState {
	return d.state
}

// Dispatch runs the attempt chain for a non-streaming request.
func (d *Dispatcher) Dispatch(ctx context.Context, req *providers.CompletionRequest) (*Result, error) {
	var resp *deepseek.ChatResponse

	model, attempts, err := d.run(ctx, func(ctx context.Context, model string) error {
		attemptReq := *req
		attemptReq.Model = model

		r, err := d.client.CreateCompletion(ctx, &attemptReq)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Result{Response: resp, Model: model, Attempts: attempts}, nil
}

// DispatchStream runs the attempt chain for a streaming request. The
// stream is considered successful once the upstream returns 200 and hands
// over the SSE body; mid-stream failures after that point are not retried.
func (d *Dispatcher) DispatchStream(ctx context.Context, req *providers.CompletionRequest) (*StreamResult, error) {
	var body io.ReadCloser

	model, attempts, err := d.run(ctx, func(ctx context.Context, model string) error {
		attemptReq := *req
		attemptReq.Model = model

		b, err := d.client.CreateCompletionStream(ctx, &attemptReq)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &StreamResult{Body: body, Model: model, Attempts: attempts}, nil
}

// run is the attempt loop shared by both dispatch paths. Iterative on
// purpose: the chain length is caller-controlled and must not grow the
// stack.
func (d *Dispatcher) run(ctx context.Context, attempt func(ctx context.Context, model string) error) (string, int, error) {
	fallbacks := d.state.Fallbacks()
	maxAttempts := 1 + len(fallbacks)

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		model := d.state.Current()
		if i > 0 {
			model = fallbacks[i-1]
		}

		err := attempt(ctx, model)
		if err == nil {
			d.state.ResetFailures()
			d.observeAttempt(model, OutcomeSuccess)
			d.observeFailures()

			if current := d.state.Current(); model != current {
				d.state.Promote(model)
				d.observePromotion(current, model)
				d.logger.Info("fallback model promoted",
					"from", current,
					"to", model,
					"attempt", i,
				)
			}
			return model, i + 1, nil
		}

		lastErr = err
		failures := d.state.RecordFailure()
		outcome, delay := d.classify(err)
		d.observeAttempt(model, outcome)
		d.observeFailures()

		d.logger.Warn("model attempt failed",
			"model", model,
			"attempt", i,
			"outcome", outcome,
			"consecutive_failures", failures,
			"error", err,
		)

		// No delay after the final attempt; the chain is done.
		if i == maxAttempts-1 {
			break
		}
		if err := d.wait(ctx, delay); err != nil {
			return "", i + 1, err
		}
	}

	return "", maxAttempts, &ExhaustedError{Attempts: maxAttempts, LastErr: lastErr}
}

// classify maps an attempt error to an outcome label and its retry delay.
// 4xx statuses (including 429) take the shorter client-error delay; any
// transport failure, timeout or 5xx takes the longer one.
func (d *Dispatcher) classify(err error) (string, time.Duration) {
	var rateErr *providers.RateLimitError
	if errors.As(err, &rateErr) {
		return OutcomeClient, d.clientErrorDelay
	}

	var provErr *providers.ProviderError
	if errors.As(err, &provErr) && provErr.IsClientError() {
		return OutcomeClient, d.clientErrorDelay
	}

	return OutcomeTransport, d.transportErrorDelay
}

// wait sleeps for the fixed delay, honoring cancellation.
func (d *Dispatcher) wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

func (d *Dispatcher) observeAttempt(model, outcome string) {
	if d.observer != nil {
		d.observer.ObserveAttempt(model, outcome)
	}
}

func (d *Dispatcher) observePromotion(from, to string) {
	if d.observer != nil {
		d.observer.ObservePromotion(from, to)
	}
}

func (d *Dispatcher) observeFailures() {
	if d.observer != nil {
		d.observer.ObserveFailureCount(d.state.Failures())
	}
}
