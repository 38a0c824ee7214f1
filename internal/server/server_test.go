package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/vgmarket-cli/internal/dataset"
	"github.com/KaramelBytes/vgmarket-cli/internal/engine"
	"github.com/KaramelBytes/vgmarket-cli/internal/metrics"
)

var fixture = []string{
	"title,console,genre,publisher,release_year,critic_score,na_sales,pal_sales,jp_sales,other_sales,total_sales",
	"A,PS4,Action,Sony,2014,8.5,5,3,1,1,10",
	"B,XOne,Shooter,Microsoft,2015,,2,1,0,0,3",
	"C,PS4,Sports,EA,2016,6.5,2,2,0,1,5",
	"D,Wii,Sports,Nintendo,2007,7.0,20,10,5,5,40",
}

func buildTestServer(t *testing.T, path string) *Server {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	eng := engine.New(engine.Source{Path: path, Options: dataset.DefaultOptions()}, logger)
	return New(Options{Addr: ":0"}, eng, logger)
}

func writeFixture(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "games.csv")
	if err := os.WriteFile(p, []byte(strings.Join(fixture, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return p
}

func do(t *testing.T, srv *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealthz(t *testing.T) {
	srv := buildTestServer(t, writeFixture(t))
	rec := do(t, srv, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("healthz = %d %s", rec.Code, rec.Body.String())
	}
}

func TestDatasetEndpoint(t *testing.T) {
	srv := buildTestServer(t, writeFixture(t))
	rec := do(t, srv, http.MethodGet, "/api/v1/dataset")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp datasetResponse
	decode(t, rec, &resp)
	if resp.Records != 3 || resp.Excluded != 1 || resp.YearMin != 2010 || resp.YearMax != 2019 {
		t.Fatalf("unexpected dataset response %+v", resp)
	}
}

func TestAggregateEndpoint(t *testing.T) {
	srv := buildTestServer(t, writeFixture(t))

	tests := []struct {
		name   string
		target string
		status int
		first  metrics.Entry
		count  int
	}{
		{"sum by console", "/api/v1/aggregate?fn=sum&group=console&value=total_sales", http.StatusOK, metrics.Entry{Key: "PS4", Value: 15}, 2},
		{"default fn is sum", "/api/v1/aggregate?group=genre&value=na_sales", http.StatusOK, metrics.Entry{Key: "Action", Value: 5}, 3},
		{"top limits", "/api/v1/aggregate?fn=sum&group=genre&value=total_sales&top=2", http.StatusOK, metrics.Entry{Key: "Action", Value: 10}, 2},
		{"count without value", "/api/v1/aggregate?fn=count&group=console", http.StatusOK, metrics.Entry{Key: "PS4", Value: 2}, 2},
		{"unknown fn", "/api/v1/aggregate?fn=mode&group=console&value=total_sales", http.StatusBadRequest, metrics.Entry{}, 0},
		{"unknown field", "/api/v1/aggregate?group=price&value=total_sales", http.StatusBadRequest, metrics.Entry{}, 0},
		{"value used as group", "/api/v1/aggregate?group=total_sales&value=total_sales", http.StatusBadRequest, metrics.Entry{}, 0},
		{"bad top", "/api/v1/aggregate?group=console&value=total_sales&top=-1", http.StatusBadRequest, metrics.Entry{}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, tc.target)
			if rec.Code != tc.status {
				t.Fatalf("status %d, want %d: %s", rec.Code, tc.status, rec.Body.String())
			}
			if tc.status != http.StatusOK {
				var e errorResponse
				decode(t, rec, &e)
				if e.Code != "BAD_REQUEST" || e.Message == "" {
					t.Fatalf("unexpected error body %+v", e)
				}
				return
			}
			var resp aggregateResponse
			decode(t, rec, &resp)
			if len(resp.Entries) != tc.count || resp.Entries[0] != tc.first {
				t.Fatalf("entries = %+v", resp.Entries)
			}
		})
	}
}

func TestViewEndpoint(t *testing.T) {
	srv := buildTestServer(t, writeFixture(t))
	rec := do(t, srv, http.MethodGet, "/api/v1/views/overview")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var o struct {
		TotalGames int     `json:"total_games"`
		TotalSales float64 `json:"total_sales"`
	}
	decode(t, rec, &o)
	if o.TotalGames != 3 || o.TotalSales != 18 {
		t.Fatalf("overview = %+v", o)
	}

	rec = do(t, srv, http.MethodGet, "/api/v1/views/charts")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown view status %d", rec.Code)
	}
}

func TestBinsEndpoint(t *testing.T) {
	srv := buildTestServer(t, writeFixture(t))
	rec := do(t, srv, http.MethodGet, "/api/v1/bins")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Value string          `json:"value"`
		Bins  []binResponse   `json:"bins"`
		Means []metrics.Entry `json:"means"`
	}
	decode(t, rec, &resp)
	if len(resp.Bins) != 6 || resp.Bins[4].Label != "8-9" || resp.Bins[4].Count != 1 {
		t.Fatalf("bins = %+v", resp.Bins)
	}
	if len(resp.Means) != 2 || resp.Means[0].Key != "6-7" || resp.Means[0].Value != 5 {
		t.Fatalf("means = %+v", resp.Means)
	}
	if rec := do(t, srv, http.MethodGet, "/api/v1/bins?value=console"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric value, got %d", rec.Code)
	}
}

func TestReloadAndCache(t *testing.T) {
	p := writeFixture(t)
	srv := buildTestServer(t, p)
	first := do(t, srv, http.MethodGet, "/api/v1/dataset")
	var before datasetResponse
	decode(t, first, &before)

	do(t, srv, http.MethodGet, "/api/v1/dataset")
	var st engine.Stats
	decode(t, do(t, srv, http.MethodGet, "/api/v1/cache"), &st)
	if st.Hits < 1 || st.Datasets != 1 {
		t.Fatalf("cache stats = %+v", st)
	}

	if err := os.WriteFile(p, []byte(fixture[0]+"\n"+fixture[1]+"\n"), 0o644); err != nil {
		t.Fatalf("rewrite fixture: %v", err)
	}
	rec := do(t, srv, http.MethodPost, "/api/v1/reload")
	if rec.Code != http.StatusOK {
		t.Fatalf("reload status %d: %s", rec.Code, rec.Body.String())
	}
	var after datasetResponse
	decode(t, rec, &after)
	if after.ID == before.ID || after.Records != 1 {
		t.Fatalf("reload did not re-read: before %+v after %+v", before, after)
	}
}

func TestLoadFailureIs500(t *testing.T) {
	srv := buildTestServer(t, filepath.Join(t.TempDir(), "missing.csv"))
	rec := do(t, srv, http.MethodGet, "/api/v1/views/genres")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", rec.Code)
	}
	var e errorResponse
	decode(t, rec, &e)
	if e.Code != "LOAD_ERROR" {
		t.Fatalf("unexpected error body %+v", e)
	}
}

func TestRequestLogUsesServerLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "[vgmarket] ", 0)
	eng := engine.New(engine.Source{Path: writeFixture(t), Options: dataset.DefaultOptions()}, logger)
	srv := New(Options{Addr: ":0"}, eng, logger)

	if rec := do(t, srv, http.MethodGet, "/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "[vgmarket] ") || !strings.Contains(out, "GET") || !strings.Contains(out, "/healthz") {
		t.Fatalf("request line not written to the server logger: %q", out)
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	srv := buildTestServer(t, writeFixture(t))
	srv.opts.Addr = "127.0.0.1:0"
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown before Start: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Start returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Start did not return after cancel")
	}
}
