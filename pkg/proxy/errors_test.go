package proxy

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/providers"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/proxy/types"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/routing"
)

func decodeErrorBody(t *testing.T, body []byte) *types.ErrorResponse {
	t.Helper()
	var resp types.ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("error body is not valid JSON: %v\n%s", err, body)
	}
	return &resp
}

func TestMapErrorValidation(t *testing.T) {
	status, body := MapError(&RequestError{
		Message: "messages must contain at least one message",
		Code:    types.CodeInvalidValue,
		Param:   "messages",
	})

	if status != 400 {
		t.Errorf("status = %d, want 400", status)
	}
	resp := decodeErrorBody(t, body)
	if resp.Error.Type != types.ErrorTypeInvalidRequest {
		t.Errorf("Type = %q, want invalid_request_error", resp.Error.Type)
	}
	if resp.Error.Param != "messages" {
		t.Errorf("Param = %q, want messages", resp.Error.Param)
	}
}

func TestMapErrorMissingAPIKey(t *testing.T) {
	status, body := MapError(&providers.ConfigError{
		Provider: "deepseek",
		Field:    "api_key",
		Message:  "api_key is required",
	})

	if status != 500 {
		t.Errorf("status = %d, want 500", status)
	}
	resp := decodeErrorBody(t, body)
	if resp.Error.Type != types.ErrorTypeServerError {
		t.Errorf("Type = %q, want server_error", resp.Error.Type)
	}
	if strings.Contains(resp.Error.Message, "api_key is required") {
		t.Error("internal config detail leaked into error body")
	}
}

func TestMapErrorExhaustedRateLimit(t *testing.T) {
	status, body := MapError(&routing.ExhaustedError{
		Attempts: 3,
		LastErr:  &providers.RateLimitError{Provider: "deepseek", Model: "m"},
	})

	if status != 429 {
		t.Errorf("status = %d, want 429", status)
	}
	resp := decodeErrorBody(t, body)
	if resp.Error.Type != types.ErrorTypeRateLimitExceeded {
		t.Errorf("Type = %q, want rate_limit_exceeded", resp.Error.Type)
	}
	if !strings.Contains(strings.ToLower(resp.Error.Message), "wait") {
		t.Errorf("Message = %q, want a wait-and-retry hint", resp.Error.Message)
	}
}

func TestMapErrorExhaustedClientErrorPassThrough(t *testing.T) {
	upstreamBody := `{"error":{"message":"model overloaded","type":"invalid_request_error"}}`
	status, body := MapError(&routing.ExhaustedError{
		Attempts: 2,
		LastErr: &providers.ProviderError{
			Provider:   "deepseek",
			Model:      "m",
			StatusCode: 422,
			Body:       upstreamBody,
		},
	})

	if status != 422 {
		t.Errorf("status = %d, want upstream 422 passed through", status)
	}
	if string(body) != upstreamBody {
		t.Errorf("body = %s, want upstream body passed through unchanged", body)
	}
}

func TestMapErrorExhaustedTransport(t *testing.T) {
	tests := []struct {
		name string
		last error
	}{
		{"timeout", &providers.TimeoutError{Provider: "deepseek", Model: "m"}},
		{"network", &providers.ProviderError{Provider: "deepseek", Model: "m", Cause: errors.New("connection refused")}},
		{"5xx without body", &providers.ProviderError{Provider: "deepseek", Model: "m", StatusCode: 502}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := MapError(&routing.ExhaustedError{Attempts: 2, LastErr: tt.last})

			if status != 503 {
				t.Errorf("status = %d, want 503", status)
			}
			resp := decodeErrorBody(t, body)
			if resp.Error.Type != types.ErrorTypeServiceUnavailable {
				t.Errorf("Type = %q, want service_unavailable", resp.Error.Type)
			}
		})
	}
}

func TestMapErrorExhausted5xxWithBodyPassThrough(t *testing.T) {
	upstreamBody := `{"error":"internal"}`
	status, body := MapError(&routing.ExhaustedError{
		Attempts: 1,
		LastErr: &providers.ProviderError{
			Provider:   "deepseek",
			Model:      "m",
			StatusCode: 500,
			Body:       upstreamBody,
		},
	})

	if status != 500 {
		t.Errorf("status = %d, want upstream 500 passed through", status)
	}
	if string(body) != upstreamBody {
		t.Errorf("body = %s, want upstream body passed through", body)
	}
}

func TestMapErrorUnknown(t *testing.T) {
	status, body := MapError(errors.New("something odd"))

	if status != 500 {
		t.Errorf("status = %d, want 500", status)
	}
	resp := decodeErrorBody(t, body)
	if strings.Contains(resp.Error.Message, "something odd") {
		t.Error("internal error detail leaked into error body")
	}
}
