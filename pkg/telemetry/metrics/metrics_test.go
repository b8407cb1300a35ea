package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCollectorRecordsProxyRequests(t *testing.T) {
	c := NewCollector(Config{})

	c.RecordProxyRequest("ep-1", "200", 150*time.Millisecond)
	c.RecordProxyRequest("ep-1", "200", 50*time.Millisecond)
	c.RecordProxyRequest("ep-2", "error", time.Second)

	body := scrape(t, c)

	if !strings.Contains(body, `mentat_proxy_requests_total{endpoint="ep-1",status="200"} 2`) {
		t.Error("missing ep-1 success counter")
	}
	if !strings.Contains(body, `mentat_proxy_requests_total{endpoint="ep-2",status="error"} 1`) {
		t.Error("missing ep-2 error counter")
	}
	if !strings.Contains(body, "mentat_proxy_request_duration_seconds") {
		t.Error("missing duration histogram")
	}
}

func TestCollectorRecordsProbesAndGauge(t *testing.T) {
	c := NewCollector(Config{Namespace: "test"})

	c.RecordProbe("ok")
	c.RecordProbe("unreachable")
	c.RecordProbe("unreachable")
	c.SetRegisteredEndpoints(3)

	body := scrape(t, c)

	if !strings.Contains(body, `test_probes_total{outcome="unreachable"} 2`) {
		t.Error("missing probe counter")
	}
	if !strings.Contains(body, "test_registered_endpoints 3") {
		t.Error("missing endpoint gauge")
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector

	// Must not panic.
	c.RecordProxyRequest("ep", "200", time.Second)
	c.RecordProbe("ok")
	c.SetRegisteredEndpoints(1)

	if c.Registry() != nil {
		t.Error("nil collector should have nil registry")
	}
}

func scrape(t *testing.T, c *Collector) string {
	t.Helper()

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("scrape status = %d", w.Code)
	}
	return w.Body.String()
}
