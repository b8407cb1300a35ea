package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/monadicus/mentat/pkg/endpoint"
	"github.com/monadicus/mentat/pkg/registry"
	"github.com/monadicus/mentat/pkg/registry/storage"
	"github.com/monadicus/mentat/pkg/rosetta"
)

func mustRecord(name, url string) endpoint.Record {
	return endpoint.Record{Name: name, URL: url}
}

type fakeProber struct {
	err    error
	probed []string
}

func (p *fakeProber) Scan(ctx context.Context, origin string) ([]rosetta.NetworkIdentifier, error) {
	p.probed = append(p.probed, origin)
	if p.err != nil {
		return nil, p.err
	}
	return []rosetta.NetworkIdentifier{{Blockchain: "bitcoin", Network: "mainnet"}}, nil
}

// newTestMux wires the handlers onto the same route patterns the server
// uses.
func newTestMux(t *testing.T, prober Prober) (*http.ServeMux, *registry.Registry) {
	t.Helper()

	reg := registry.New(storage.NewMemoryBackend())
	if err := reg.Load(context.Background()); err != nil {
		t.Fatalf("load registry: %v", err)
	}

	status := NewStatusHandler(reg, "test")
	servers := NewServersHandler(reg, prober, status, nil)
	proxy := NewProxyHandler(reg, ProxyConfig{}, nil)

	mux := http.NewServeMux()
	mux.Handle("GET /api/v1/mentat", status)
	mux.HandleFunc("POST /api/v1/servers", servers.Register)
	mux.HandleFunc("POST /api/v1/servers/{id}", servers.Register)
	mux.HandleFunc("DELETE /api/v1/servers/{id}", servers.Remove)
	mux.Handle("POST /api/v1/scan", NewScanHandler(prober, nil))
	mux.Handle("/api/rosetta/{id}", proxy)
	mux.Handle("/api/rosetta/{id}/{path...}", proxy)

	return mux, reg
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	var payload map[string]interface{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
			t.Fatalf("%s %s: response is not JSON: %v\n%s", method, path, err, w.Body.String())
		}
	}
	return w, payload
}

func TestRegisterWithSuppliedID(t *testing.T) {
	prober := &fakeProber{}
	mux, reg := newTestMux(t, prober)

	w, payload := doJSON(t, mux, http.MethodPost, "/api/v1/servers/chain-a",
		`{"url":"http://chain-a.example:8080","name":"chain a"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(prober.probed) != 1 {
		t.Fatalf("probe count = %d, want 1", len(prober.probed))
	}

	rec, ok := reg.Get("chain-a")
	if !ok {
		t.Fatal("endpoint not registered")
	}
	if rec.URL != "http://chain-a.example:8080" {
		t.Errorf("stored origin = %q", rec.URL)
	}

	servers := payload["servers"].(map[string]interface{})
	if _, ok := servers["chain-a"]; !ok {
		t.Error("status payload missing new endpoint")
	}
}

func TestRegisterWithGeneratedID(t *testing.T) {
	mux, reg := newTestMux(t, &fakeProber{})

	w, _ := doJSON(t, mux, http.MethodPost, "/api/v1/servers",
		`{"url":"https://node.example","name":"node"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if reg.Len() != 1 {
		t.Fatalf("registered endpoints = %d, want 1", reg.Len())
	}
	for id := range reg.List() {
		if id == "" {
			t.Error("generated id is empty")
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing url", `{"name":"x"}`},
		{"missing name", `{"url":"http://x.example"}`},
		{"not json", `not json at all`},
		{"url with query", `{"url":"http://x.example/?a=1","name":"x"}`},
		{"unsupported scheme", `{"url":"ftp://x.example","name":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, reg := newTestMux(t, &fakeProber{})

			w, payload := doJSON(t, mux, http.MethodPost, "/api/v1/servers", tt.body)

			if w.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", w.Code)
			}
			if payload["code"].(float64) != -1 {
				t.Errorf("code = %v, want -1", payload["code"])
			}
			if reg.Len() != 0 {
				t.Error("invalid request mutated the registry")
			}
		})
	}
}

func TestRegisterConflict(t *testing.T) {
	prober := &fakeProber{}
	mux, _ := newTestMux(t, prober)

	doJSON(t, mux, http.MethodPost, "/api/v1/servers/dup", `{"url":"http://a.example","name":"a"}`)
	w, _ := doJSON(t, mux, http.MethodPost, "/api/v1/servers/dup", `{"url":"http://b.example","name":"b"}`)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
	// The conflicting request must not have probed the candidate.
	if len(prober.probed) != 1 {
		t.Errorf("probe count = %d, want 1", len(prober.probed))
	}
}

func TestRegisterProbeOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		err        *rosetta.Error
		wantStatus int
	}{
		{"unreachable", rosetta.NewUnreachableError("http://x.example", fmt.Errorf("connection refused")), http.StatusInternalServerError},
		{"malformed", rosetta.NewMalformedError("http://x.example"), http.StatusUnprocessableEntity},
		{"non conformant", rosetta.NewNonConformantError("http://x.example"), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, reg := newTestMux(t, &fakeProber{err: tt.err})

			w, _ := doJSON(t, mux, http.MethodPost, "/api/v1/servers",
				`{"url":"http://x.example","name":"x"}`)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if reg.Len() != 0 {
				t.Error("failed probe still registered the endpoint")
			}
		})
	}
}

func TestRegisterForceSkipsProbe(t *testing.T) {
	prober := &fakeProber{err: rosetta.NewUnreachableError("http://down.example", fmt.Errorf("refused"))}
	mux, reg := newTestMux(t, prober)

	w, _ := doJSON(t, mux, http.MethodPost, "/api/v1/servers/down",
		`{"url":"http://down.example","name":"down","force":true}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(prober.probed) != 0 {
		t.Error("force registration still probed")
	}
	if _, ok := reg.Get("down"); !ok {
		t.Error("forced endpoint not registered")
	}
}

func TestRemove(t *testing.T) {
	mux, reg := newTestMux(t, &fakeProber{})
	doJSON(t, mux, http.MethodPost, "/api/v1/servers/gone", `{"url":"http://gone.example","name":"gone"}`)

	w, payload := doJSON(t, mux, http.MethodDelete, "/api/v1/servers/gone", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(payload["servers"].(map[string]interface{})) != 0 {
		t.Error("status payload still lists removed endpoint")
	}
	if reg.Len() != 0 {
		t.Error("endpoint still registered")
	}

	w, _ = doJSON(t, mux, http.MethodDelete, "/api/v1/servers/gone", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestScan(t *testing.T) {
	t.Run("returns the discovered networks", func(t *testing.T) {
		mux, reg := newTestMux(t, &fakeProber{})

		w, payload := doJSON(t, mux, http.MethodPost, "/api/v1/scan", `{"url":"http://probe.example"}`)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		ids := payload["network_identifiers"].([]interface{})
		if len(ids) != 1 {
			t.Fatalf("identifiers = %d, want 1", len(ids))
		}
		if reg.Len() != 0 {
			t.Error("scan mutated the registry")
		}
	})

	t.Run("maps probe failure to the envelope", func(t *testing.T) {
		mux, _ := newTestMux(t, &fakeProber{err: rosetta.NewNonConformantError("http://probe.example")})

		w, payload := doJSON(t, mux, http.MethodPost, "/api/v1/scan", `{"url":"http://probe.example"}`)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", w.Code)
		}
		if payload["retriable"] != false {
			t.Error("non-conformant should not be retriable")
		}
	})
}

func TestStatusEmptyRegistry(t *testing.T) {
	mux, _ := newTestMux(t, &fakeProber{})

	w, payload := doJSON(t, mux, http.MethodGet, "/api/v1/mentat", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if payload["version"] != "test" {
		t.Errorf("version = %v", payload["version"])
	}
	if len(payload["servers"].(map[string]interface{})) != 0 {
		t.Error("empty registry should serve an empty servers object")
	}
}

func TestProxyForwardsRequest(t *testing.T) {
	var got struct {
		method, path, query, body, contentType string
	}
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.query = r.URL.RawQuery
		got.contentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		got.body = string(b)

		w.Header().Set("X-Backend", "yes")
		w.WriteHeader(http.StatusAccepted)
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer backend.Close()

	mux, reg := newTestMux(t, &fakeProber{})
	if err := reg.Put(context.Background(), "node", mustRecord("node", backend.URL)); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/rosetta/node/block/transaction?verbose=1", strings.NewReader(`{"index":5}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got.method != http.MethodPost || got.path != "/block/transaction" {
		t.Errorf("backend saw %s %s", got.method, got.path)
	}
	if got.query != "verbose=1" {
		t.Errorf("query = %q", got.query)
	}
	if got.body != `{"index":5}` {
		t.Errorf("body = %q", got.body)
	}
	if got.contentType != "application/json" {
		t.Errorf("content type = %q", got.contentType)
	}
	if w.Header().Get("X-Backend") != "yes" {
		t.Error("backend response header not forwarded")
	}
	if w.Body.String() != `{"ok":true}` {
		t.Errorf("response body = %q", w.Body.String())
	}
}

func TestProxyEmptyRestHitsRoot(t *testing.T) {
	var path string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
	}))
	defer backend.Close()

	mux, reg := newTestMux(t, &fakeProber{})
	if err := reg.Put(context.Background(), "node", mustRecord("node", backend.URL)); err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rosetta/node", nil))

	if path != "/" {
		t.Errorf("backend path = %q, want /", path)
	}
}

func TestProxyUnknownEndpoint(t *testing.T) {
	mux, _ := newTestMux(t, &fakeProber{})

	w, payload := doJSON(t, mux, http.MethodPost, "/api/rosetta/nope/network/status", `{}`)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if payload["code"].(float64) != -1 {
		t.Errorf("code = %v, want -1", payload["code"])
	}
	if !strings.Contains(payload["message"].(string), "nope") {
		t.Error("message should name the unknown id")
	}
}

func TestProxyBackendDown(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	origin := backend.URL
	backend.Close()

	mux, reg := newTestMux(t, &fakeProber{})
	if err := reg.Put(context.Background(), "dead", mustRecord("dead", origin)); err != nil {
		t.Fatal(err)
	}

	w, payload := doJSON(t, mux, http.MethodPost, "/api/rosetta/dead/network/status", `{}`)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if payload["retriable"] != true {
		t.Error("proxy failure should be retriable")
	}
}

func TestProxyStripsHopByHopHeaders(t *testing.T) {
	var sawConnection string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawConnection = r.Header.Get("Keep-Alive")
	}))
	defer backend.Close()

	mux, reg := newTestMux(t, &fakeProber{})
	if err := reg.Put(context.Background(), "node", mustRecord("node", backend.URL)); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/rosetta/node/network/list", nil)
	req.Header.Set("Keep-Alive", "timeout=5")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if sawConnection != "" {
		t.Error("hop-by-hop header forwarded to backend")
	}
}

// TestRegistrationLifecycle walks the whole surface: force-register, status,
// proxy, unknown id, delete, gone.
func TestRegistrationLifecycle(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"network_identifiers":[{"blockchain":"chainA","network":"main"}]}`)
	}))
	defer backend.Close()

	mux, _ := newTestMux(t, &fakeProber{})

	w, _ := doJSON(t, mux, http.MethodPost, "/api/v1/servers/chainA",
		fmt.Sprintf(`{"url":%q,"name":"chain A","force":true}`, backend.URL))
	if w.Code != http.StatusOK {
		t.Fatalf("register: status = %d", w.Code)
	}

	_, payload := doJSON(t, mux, http.MethodGet, "/api/v1/mentat", "")
	if _, ok := payload["servers"].(map[string]interface{})["chainA"]; !ok {
		t.Fatal("status does not list chainA")
	}

	w, _ = doJSON(t, mux, http.MethodPost, "/api/rosetta/chainA/network/list", `{}`)
	if w.Code != http.StatusOK {
		t.Fatalf("proxy: status = %d", w.Code)
	}

	w, _ = doJSON(t, mux, http.MethodPost, "/api/rosetta/other/network/list", `{}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown id: status = %d, want 404", w.Code)
	}

	w, _ = doJSON(t, mux, http.MethodDelete, "/api/v1/servers/chainA", "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status = %d", w.Code)
	}

	w, _ = doJSON(t, mux, http.MethodPost, "/api/rosetta/chainA/network/list", `{}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("after delete: status = %d, want 404", w.Code)
	}
}
