package routing

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/providers"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/providers/deepseek"
)

// scriptedCompleter returns one scripted outcome per attempt, in order,
// and records which model each attempt used.
type scriptedCompleter struct {
	outcomes []error
	models   []string
}

func (c *scriptedCompleter) next(model string) error {
	c.models = append(c.models, model)
	if len(c.outcomes) == 0 {
		return nil
	}
	out := c.outcomes[0]
	c.outcomes = c.outcomes[1:]
	return out
}

func (c *scriptedCompleter) CreateCompletion(_ context.Context, req *providers.CompletionRequest) (*deepseek.ChatResponse, error) {
	if err := c.next(req.Model); err != nil {
		return nil, err
	}
	return &deepseek.ChatResponse{
		Model: req.Model,
		Choices: []deepseek.Choice{
			{Message: deepseek.ResponseMessage{Role: "assistant", Content: "ok from " + req.Model}},
		},
	}, nil
}

func (c *scriptedCompleter) CreateCompletionStream(_ context.Context, req *providers.CompletionRequest) (io.ReadCloser, error) {
	if err := c.next(req.Model); err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader("data: [DONE]\n\n")), nil
}

func clientErr(model string, status int) error {
	return &providers.ProviderError{Provider: "deepseek", Model: model, StatusCode: status, Body: `{"error":"bad request"}`}
}

func serverErr(model string) error {
	return &providers.ProviderError{Provider: "deepseek", Model: model, StatusCode: 502, Body: "bad gateway"}
}

func newTestDispatcher(client Completer, primary string, fallbacks []string) (*Dispatcher, *ModelState) {
	state := NewModelState(primary, fallbacks)
	d := NewDispatcher(state, client, WithDelays(0, 0))
	return d, state
}

func basicRequest() *providers.CompletionRequest {
	return &providers.CompletionRequest{
		Messages:    []providers.Message{{Role: providers.RoleUser, Content: "hi"}},
		Temperature: 0.7,
		MaxTokens:   1000,
	}
}

func TestDispatchFirstAttemptSuccess(t *testing.T) {
	client := &scriptedCompleter{}
	d, state := newTestDispatcher(client, "deepseek-chat", []string{"deepseek-coder"})

	res, err := d.Dispatch(context.Background(), basicRequest())
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if res.Model != "deepseek-chat" {
		t.Errorf("Model = %q, want %q", res.Model, "deepseek-chat")
	}
	if res.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", res.Attempts)
	}
	if state.Current() != "deepseek-chat" {
		t.Errorf("Current() = %q, want unchanged primary", state.Current())
	}
	if state.Failures() != 0 {
		t.Errorf("Failures() = %d, want 0", state.Failures())
	}
}

func TestDispatchFallbackOrderOnSustainedClientErrors(t *testing.T) {
	client := &scriptedCompleter{outcomes: []error{
		clientErr("a", 400),
		clientErr("b", 400),
		clientErr("c", 400),
	}}
	d, state := newTestDispatcher(client, "a", []string{"b", "c"})

	_, err := d.Dispatch(context.Background(), basicRequest())

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("Dispatch() error = %v, want *ExhaustedError", err)
	}
	if exhausted.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", exhausted.Attempts)
	}

	want := []string{"a", "b", "c"}
	if len(client.models) != len(want) {
		t.Fatalf("attempted models = %v, want %v", client.models, want)
	}
	for i, m := range want {
		if client.models[i] != m {
			t.Errorf("attempt %d used %q, want %q", i, client.models[i], m)
		}
	}

	// Exhaustion never poisons the sticky state.
	if state.Current() != "a" {
		t.Errorf("Current() = %q, want %q", state.Current(), "a")
	}
	if state.Failures() != 3 {
		t.Errorf("Failures() = %d, want 3", state.Failures())
	}
}

func TestDispatchStickyPromotionOnFallbackSuccess(t *testing.T) {
	client := &scriptedCompleter{outcomes: []error{
		&providers.RateLimitError{Provider: "deepseek", Model: "primary"},
	}}
	d, state := newTestDispatcher(client, "primary", []string{"backup"})

	res, err := d.Dispatch(context.Background(), basicRequest())
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if res.Model != "backup" {
		t.Errorf("Model = %q, want %q", res.Model, "backup")
	}
	if state.Current() != "backup" {
		t.Errorf("Current() = %q, want promoted %q", state.Current(), "backup")
	}
	if state.Failures() != 0 {
		t.Errorf("Failures() = %d, want reset to 0", state.Failures())
	}

	// The next request starts from the promoted model.
	client.outcomes = nil
	client.models = nil
	if _, err := d.Dispatch(context.Background(), basicRequest()); err != nil {
		t.Fatalf("second Dispatch() error = %v", err)
	}
	if client.models[0] != "backup" {
		t.Errorf("second request first attempt used %q, want %q", client.models[0], "backup")
	}
}

func TestDispatchLastErrorSurfacedOnExhaustion(t *testing.T) {
	client := &scriptedCompleter{outcomes: []error{
		serverErr("a"),
		serverErr("b"),
	}}
	d, _ := newTestDispatcher(client, "a", []string{"b"})

	_, err := d.Dispatch(context.Background(), basicRequest())

	var provErr *providers.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("exhaustion error does not unwrap to *ProviderError: %v", err)
	}
	if provErr.Model != "b" {
		t.Errorf("surfaced error is from model %q, want last attempt %q", provErr.Model, "b")
	}
}

func TestDispatchEmptyFallbackList(t *testing.T) {
	client := &scriptedCompleter{outcomes: []error{serverErr("only")}}
	d, _ := newTestDispatcher(client, "only", nil)

	_, err := d.Dispatch(context.Background(), basicRequest())

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("Dispatch() error = %v, want *ExhaustedError", err)
	}
	if exhausted.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", exhausted.Attempts)
	}
}

func TestDispatchContextCancelledDuringDelay(t *testing.T) {
	client := &scriptedCompleter{outcomes: []error{serverErr("a"), serverErr("b")}}
	state := NewModelState("a", []string{"b"})
	d := NewDispatcher(state, client, WithDelays(time.Minute, time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := d.Dispatch(ctx, basicRequest())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Dispatch() error = %v, want context.Canceled", err)
	}
	if len(client.models) != 1 {
		t.Errorf("attempts before cancel = %d, want 1", len(client.models))
	}
}

func TestDispatchStreamFallback(t *testing.T) {
	client := &scriptedCompleter{outcomes: []error{serverErr("a")}}
	d, state := newTestDispatcher(client, "a", []string{"b"})

	res, err := d.DispatchStream(context.Background(), basicRequest())
	if err != nil {
		t.Fatalf("DispatchStream() error = %v", err)
	}
	defer res.Body.Close()

	if res.Model != "b" {
		t.Errorf("Model = %q, want %q", res.Model, "b")
	}
	if state.Current() != "b" {
		t.Errorf("Current() = %q, want promoted %q", state.Current(), "b")
	}
}

func TestClassifyDelays(t *testing.T) {
	d := NewDispatcher(NewModelState("m", nil), &scriptedCompleter{},
		WithDelays(100*time.Millisecond, 200*time.Millisecond))

	tests := []struct {
		name      string
		err       error
		outcome   string
		wantDelay time.Duration
	}{
		{"rate limit", &providers.RateLimitError{Model: "m"}, OutcomeClient, 100 * time.Millisecond},
		{"bad request", clientErr("m", 400), OutcomeClient, 100 * time.Millisecond},
		{"server error", serverErr("m"), OutcomeTransport, 200 * time.Millisecond},
		{"timeout", &providers.TimeoutError{Model: "m"}, OutcomeTransport, 200 * time.Millisecond},
		{"network", &providers.ProviderError{Model: "m", Cause: errors.New("connection refused")}, OutcomeTransport, 200 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, delay := d.classify(tt.err)
			if outcome != tt.outcome {
				t.Errorf("classify() outcome = %q, want %q", outcome, tt.outcome)
			}
			if delay != tt.wantDelay {
				t.Errorf("classify() delay = %v, want %v", delay, tt.wantDelay)
			}
		})
	}
}

func TestSetFallbacksHotReload(t *testing.T) {
	client := &scriptedCompleter{outcomes: []error{serverErr("a"), nil}}
	d, state := newTestDispatcher(client, "a", []string{"old"})

	state.SetFallbacks([]string{"new"})

	res, err := d.Dispatch(context.Background(), basicRequest())
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if res.Model != "new" {
		t.Errorf("Model = %q, want reloaded fallback %q", res.Model, "new")
	}
}
