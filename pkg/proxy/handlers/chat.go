package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/audit"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/providers"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/proxy"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/proxy/middleware"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/proxy/types"
)

// ChatOptions carries the feature switches the chat handler honors.
type ChatOptions struct {
	// ShowReasoning fuses upstream reasoning_content into the visible
	// content between <think> markers. Off means reasoning is stripped.
	ShowReasoning bool

	// StreamingEnabled allows SSE responses. A stream:true request while
	// disabled is answered as a buffered completion.
	StreamingEnabled bool

	// TruncationEnabled applies the tiered history truncation.
	TruncationEnabled bool
}

// ChatHandler handles POST /v1/chat/completions and its path aliases.
type ChatHandler struct {
	dispatcher Dispatcher
	truncator  Truncator
	creds      CredentialChecker
	opts       ChatOptions
	metrics    MetricsRecorder
	auditor    Auditor
}

// NewChatHandler creates the chat completion handler. metrics and auditor
// may be nil.
func NewChatHandler(dispatcher Dispatcher, truncator Truncator, creds CredentialChecker, opts ChatOptions, metrics MetricsRecorder, auditor Auditor) *ChatHandler {
	return &ChatHandler{
		dispatcher: dispatcher,
		truncator:  truncator,
		creds:      creds,
		opts:       opts,
		metrics:    metrics,
		auditor:    auditor,
	}
}

// ServeHTTP implements http.Handler.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	startTime := time.Now()

	if r.Method != http.MethodPost {
		errResp := types.NewInvalidRequestError(
			fmt.Sprintf("Method %s not allowed. Use POST instead.", r.Method),
			"method",
			"method_not_allowed",
		)
		writeError(ctx, w, errResp.Error.HTTPStatusCode(), errResp)
		return
	}

	// Missing credential is terminal; nothing is dispatched.
	if !h.creds.HasAPIKey() {
		slog.ErrorContext(ctx, "rejecting request, upstream api key not configured",
			"request_id", requestID,
		)
		status, body := proxy.MapError(&providers.ConfigError{
			Provider: "deepseek",
			Field:    "api_key",
			Message:  "api key is not configured",
		})
		writeRaw(ctx, w, status, body)
		return
	}

	chatReq, err := proxy.ParseChatCompletionRequest(r)
	if err != nil {
		slog.WarnContext(ctx, "failed to parse request",
			"request_id", requestID,
			"error", err,
		)
		status, body := proxy.MapError(err)
		writeRaw(ctx, w, status, body)
		return
	}

	upstreamReq := proxy.ShapeRequest(chatReq)

	if h.opts.TruncationEnabled {
		before := len(upstreamReq.Messages)
		upstreamReq.Messages = h.truncator.Truncate(upstreamReq.Messages)
		if dropped := before - len(upstreamReq.Messages); dropped > 0 {
			slog.InfoContext(ctx, "conversation truncated",
				"request_id", requestID,
				"before", before,
				"after", len(upstreamReq.Messages),
				"dropped", dropped,
			)
		}
	}

	if chatReq.Stream && h.opts.StreamingEnabled {
		h.serveStream(w, r, chatReq, upstreamReq, startTime)
		return
	}
	upstreamReq.Stream = false

	slog.InfoContext(ctx, "processing chat completion",
		"request_id", requestID,
		"requested_model", chatReq.Model,
		"messages", len(upstreamReq.Messages),
	)

	result, err := h.dispatcher.Dispatch(ctx, upstreamReq)
	if err != nil {
		slog.ErrorContext(ctx, "chat completion failed",
			"request_id", requestID,
			"error", err,
			"latency_ms", time.Since(startTime).Milliseconds(),
		)
		status, body := proxy.MapError(err)
		writeRaw(ctx, w, status, body)
		h.observe(ctx, chatReq, "", 0, status, nil, startTime)
		return
	}

	modelLabel := chatReq.Model
	if modelLabel == "" {
		modelLabel = result.Model
	}

	resp := proxy.NormalizeResponse(result.Response, modelLabel, h.opts.ShowReasoning)

	slog.InfoContext(ctx, "chat completion successful",
		"request_id", requestID,
		"model", result.Model,
		"attempts", result.Attempts,
		"total_tokens", resp.Usage.TotalTokens,
		"latency_ms", time.Since(startTime).Milliseconds(),
	)

	if err := proxy.WriteJSONResponse(w, http.StatusOK, resp); err != nil {
		slog.ErrorContext(ctx, "failed to write response",
			"request_id", requestID,
			"error", err,
		)
	}
	h.observe(ctx, chatReq, result.Model, result.Attempts, http.StatusOK, &resp.Usage, startTime)
}

// serveStream pipes the upstream SSE body through the stream transformer.
// Headers are only committed once the dispatch succeeded, so terminal chain
// errors still produce a regular JSON error response.
func (h *ChatHandler) serveStream(w http.ResponseWriter, r *http.Request, chatReq *types.ChatCompletionRequest, upstreamReq *providers.CompletionRequest, startTime time.Time) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	slog.InfoContext(ctx, "processing streaming chat completion",
		"request_id", requestID,
		"requested_model", chatReq.Model,
		"messages", len(upstreamReq.Messages),
	)

	result, err := h.dispatcher.DispatchStream(ctx, upstreamReq)
	if err != nil {
		slog.ErrorContext(ctx, "streaming chat completion failed",
			"request_id", requestID,
			"error", err,
		)
		status, body := proxy.MapError(err)
		writeRaw(ctx, w, status, body)
		h.observe(ctx, chatReq, "", 0, status, nil, startTime)
		return
	}
	defer result.Body.Close()

	proxy.SetSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	transformer := proxy.NewStreamTransformer(h.opts.ShowReasoning)

	buf := make([]byte, 4096)
	for {
		n, readErr := result.Body.Read(buf)
		if n > 0 {
			if out := transformer.Feed(buf[:n]); len(out) > 0 {
				if _, writeErr := w.Write(out); writeErr != nil {
					// Client went away; stop without noise.
					slog.WarnContext(ctx, "client disconnected during streaming",
						"request_id", requestID,
						"error", writeErr,
					)
					h.observe(ctx, chatReq, result.Model, result.Attempts, http.StatusOK, nil, startTime)
					return
				}
				if flusher != nil {
					flusher.Flush()
				}
			}
		}
		if readErr != nil {
			if readErr != io.EOF {
				slog.WarnContext(ctx, "upstream stream ended abnormally",
					"request_id", requestID,
					"error", readErr,
				)
			}
			break
		}
	}

	if out := transformer.Flush(); len(out) > 0 {
		if _, err := w.Write(out); err == nil && flusher != nil {
			flusher.Flush()
		}
	}

	slog.InfoContext(ctx, "streaming chat completion finished",
		"request_id", requestID,
		"model", result.Model,
		"attempts", result.Attempts,
		"latency_ms", time.Since(startTime).Milliseconds(),
	)
	h.observe(ctx, chatReq, result.Model, result.Attempts, http.StatusOK, nil, startTime)
}

// observe fans the request outcome out to metrics and the audit ledger.
func (h *ChatHandler) observe(ctx context.Context, chatReq *types.ChatCompletionRequest, modelUsed string, attempts, status int, usage *types.Usage, startTime time.Time) {
	elapsed := time.Since(startTime)

	if h.metrics != nil {
		h.metrics.ObserveRequest(modelUsed, strconv.Itoa(status), elapsed.Seconds())
		if usage != nil {
			h.metrics.ObserveTokens(modelUsed, usage.PromptTokens, usage.CompletionTokens)
		}
	}

	if h.auditor != nil {
		rec := &audit.Record{
			ID:             uuid.NewString(),
			CreatedAt:      time.Now().UTC(),
			SessionID:      chatReq.SessionID,
			ModelRequested: chatReq.Model,
			ModelUsed:      modelUsed,
			Attempts:       attempts,
			Status:         status,
			LatencyMS:      elapsed.Milliseconds(),
		}
		if usage != nil {
			rec.PromptTokens = usage.PromptTokens
			rec.CompletionTokens = usage.CompletionTokens
			rec.TotalTokens = usage.TotalTokens
		}
		// The request context may already be canceled when a streaming
		// client disconnects; the ledger write must still land.
		h.auditor.Record(context.WithoutCancel(ctx), rec)
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, errResp *types.ErrorResponse) {
	if err := proxy.WriteJSONResponse(w, status, errResp); err != nil {
		slog.ErrorContext(ctx, "failed to write error response", "error", err)
	}
}

func writeRaw(ctx context.Context, w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.ErrorContext(ctx, "failed to write error response", "error", err)
	}
}
