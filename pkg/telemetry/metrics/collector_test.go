package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewCollector(registry)

	if collector == nil {
		t.Fatal("expected non-nil collector")
	}
	if collector.Registry() != registry {
		t.Error("collector registry not set correctly")
	}
}

func TestNewCollector_NilRegistry(t *testing.T) {
	collector := NewCollector(nil)
	if collector.Registry() == nil {
		t.Fatal("expected a fresh registry")
	}
}

func TestCollector_ObserveRequest(t *testing.T) {
	collector := NewCollector(nil)

	collector.ObserveRequest("deepseek-chat", "200", 1.2)
	collector.ObserveRequest("deepseek-chat", "200", 0.4)
	collector.ObserveRequest("deepseek-chat", "503", 0.1)

	ok := testutil.ToFloat64(collector.requestsTotal.WithLabelValues("deepseek-chat", "200"))
	if ok != 2 {
		t.Errorf("requests_total{200} = %v, want 2", ok)
	}
	failed := testutil.ToFloat64(collector.requestsTotal.WithLabelValues("deepseek-chat", "503"))
	if failed != 1 {
		t.Errorf("requests_total{503} = %v, want 1", failed)
	}
}

func TestCollector_ObserveTokens(t *testing.T) {
	collector := NewCollector(nil)

	collector.ObserveTokens("deepseek-chat", 100, 40)
	collector.ObserveTokens("deepseek-chat", 50, 0)

	prompt := testutil.ToFloat64(collector.tokensTotal.WithLabelValues("deepseek-chat", "prompt"))
	if prompt != 150 {
		t.Errorf("tokens_total{prompt} = %v, want 150", prompt)
	}
	completion := testutil.ToFloat64(collector.tokensTotal.WithLabelValues("deepseek-chat", "completion"))
	if completion != 40 {
		t.Errorf("tokens_total{completion} = %v, want 40", completion)
	}
}

func TestCollector_ObserveAttemptAndPromotion(t *testing.T) {
	collector := NewCollector(nil)

	collector.ObserveAttempt("deepseek-chat", "retryable")
	collector.ObserveAttempt("deepseek-chat", "retryable")
	collector.ObserveAttempt("deepseek-reasoner", "success")
	collector.ObservePromotion("deepseek-chat", "deepseek-reasoner")

	retryable := testutil.ToFloat64(collector.attemptsTotal.WithLabelValues("deepseek-chat", "retryable"))
	if retryable != 2 {
		t.Errorf("attempts_total{retryable} = %v, want 2", retryable)
	}
	promoted := testutil.ToFloat64(collector.promotionsTotal.WithLabelValues("deepseek-chat", "deepseek-reasoner"))
	if promoted != 1 {
		t.Errorf("fallback_promotions_total = %v, want 1", promoted)
	}
}

func TestCollector_ObserveFailureCount(t *testing.T) {
	collector := NewCollector(nil)

	collector.ObserveFailureCount(3)
	if got := testutil.ToFloat64(collector.consecutiveFailures); got != 3 {
		t.Errorf("consecutive_failures = %v, want 3", got)
	}

	collector.ObserveFailureCount(0)
	if got := testutil.ToFloat64(collector.consecutiveFailures); got != 0 {
		t.Errorf("consecutive_failures = %v, want 0", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(nil)
	collector.ObserveRequest("deepseek-chat", "200", 0.5)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	collector.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("scrape status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "deepseek_proxy_requests_total") {
		t.Error("scrape output missing deepseek_proxy_requests_total")
	}
	if !strings.Contains(body, `model="deepseek-chat"`) {
		t.Error("scrape output missing model label")
	}
}
