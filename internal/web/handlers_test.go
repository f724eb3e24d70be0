package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/btaeng/trivia-map/internal/geo"
	"github.com/btaeng/trivia-map/internal/model"
	"github.com/btaeng/trivia-map/internal/trivia"
)

type stubGenerator struct {
	mu    sync.Mutex
	calls []model.TriviaRequest
	q     *model.TriviaQuestion
	err   error
}

func (g *stubGenerator) Generate(_ context.Context, location, category string) (*model.TriviaQuestion, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, model.TriviaRequest{Location: location, Category: category})
	if g.err != nil {
		return nil, g.err
	}
	return g.q, nil
}

func testServer(t *testing.T, gen *stubGenerator) *Server {
	t.Helper()
	ds, err := geo.LoadEmbedded()
	if err != nil {
		t.Fatalf("loading dataset: %v", err)
	}
	return &Server{
		Dataset:    ds,
		Relay:      gen,
		Exclusions: trivia.NewMemoryExclusions(),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Addr:       "localhost:0",
	}
}

func sampleQuestion() *model.TriviaQuestion {
	return &model.TriviaQuestion{
		Question:    "Which lake borders Kenya?",
		Choices:     []string{"Victoria", "Superior", "Baikal", "Titicaca"},
		AnswerIndex: 0,
	}
}

func TestHandleTrivia(t *testing.T) {
	gen := &stubGenerator{q: sampleQuestion()}
	srv := testServer(t, gen)

	req := httptest.NewRequest("POST", "/api/trivia", strings.NewReader(`{"location":"Kenya","category":"culture"}`))
	w := httptest.NewRecorder()
	srv.handleTrivia(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got model.TriviaQuestion
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.Question != "Which lake borders Kenya?" || len(got.Choices) != 4 || got.AnswerIndex != 0 {
		t.Errorf("unexpected question %+v", got)
	}
	if len(gen.calls) != 1 || gen.calls[0] != (model.TriviaRequest{Location: "Kenya", Category: "culture"}) {
		t.Errorf("unexpected relay calls %+v", gen.calls)
	}
}

func TestHandleTriviaFailures(t *testing.T) {
	cases := []struct {
		name string
		body string
		err  error
	}{
		{"relay error", `{"location":"Egypt","category":"history"}`, errors.New("oracle down")},
		{"malformed body", `{"location":`, nil},
		{"empty body", ``, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := testServer(t, &stubGenerator{q: sampleQuestion(), err: tc.err})

			req := httptest.NewRequest("POST", "/api/trivia", strings.NewReader(tc.body))
			w := httptest.NewRecorder()
			srv.handleTrivia(w, req)

			if w.Code != http.StatusInternalServerError {
				t.Fatalf("expected 500, got %d", w.Code)
			}
			var body map[string]string
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if body["error"] != "Failed to fetch trivia question." {
				t.Errorf("unexpected error body %v", body)
			}
		})
	}
}

func decodeFeatures(t *testing.T, w *httptest.ResponseRecorder) []struct {
	Properties map[string]string `json:"properties"`
} {
	t.Helper()
	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Properties map[string]string `json:"properties"`
		} `json:"features"`
	}
	if err := json.NewDecoder(w.Body).Decode(&fc); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if fc.Type != "FeatureCollection" {
		t.Fatalf("expected FeatureCollection, got %q", fc.Type)
	}
	return fc.Features
}

func TestHandleFeaturesRegionGate(t *testing.T) {
	srv := testServer(t, &stubGenerator{})

	w := httptest.NewRecorder()
	srv.handleFeatures(w, httptest.NewRequest("GET", "/api/features", nil))
	if n := len(decodeFeatures(t, w)); n != 0 {
		t.Errorf("expected no features without a region, got %d", n)
	}

	w = httptest.NewRecorder()
	srv.handleFeatures(w, httptest.NewRequest("GET", "/api/features?region=Eastern+Africa", nil))
	features := decodeFeatures(t, w)
	if len(features) == 0 {
		t.Fatal("expected Eastern Africa features")
	}
	for _, f := range features {
		if f.Properties["region"] != "Eastern Africa" {
			t.Errorf("feature %q leaked from region %q", f.Properties["name"], f.Properties["region"])
		}
	}

	w = httptest.NewRecorder()
	srv.handleFeatures(w, httptest.NewRequest("GET", "/api/features?region=*", nil))
	if n := len(decodeFeatures(t, w)); n != srv.Dataset.Len() {
		t.Errorf("expected all %d features, got %d", srv.Dataset.Len(), n)
	}
}

func TestHandleRegionsAndCategories(t *testing.T) {
	srv := testServer(t, &stubGenerator{})

	w := httptest.NewRecorder()
	srv.handleRegions(w, httptest.NewRequest("GET", "/api/regions", nil))
	var regions []string
	if err := json.NewDecoder(w.Body).Decode(&regions); err != nil {
		t.Fatalf("decoding regions: %v", err)
	}
	if len(regions) == 0 || regions[0] != "Eastern Africa" {
		t.Errorf("unexpected regions %v", regions)
	}

	w = httptest.NewRecorder()
	srv.handleCategories(w, httptest.NewRequest("GET", "/api/categories", nil))
	var cats []string
	if err := json.NewDecoder(w.Body).Decode(&cats); err != nil {
		t.Fatalf("decoding categories: %v", err)
	}
	if len(cats) != 7 || cats[0] != "history" {
		t.Errorf("unexpected categories %v", cats)
	}
}

func TestHandleLocate(t *testing.T) {
	srv := testServer(t, &stubGenerator{})

	cases := []struct {
		query string
		code  int
		name  string
	}{
		{"lat=48.85&lon=2.35", http.StatusOK, "France"},
		{"lat=-40&lon=-30", http.StatusNotFound, ""},
		{"lat=abc&lon=2", http.StatusBadRequest, ""},
		{"lat=95&lon=2", http.StatusBadRequest, ""},
		{"", http.StatusBadRequest, ""},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		srv.handleLocate(w, httptest.NewRequest("GET", "/api/locate?"+tc.query, nil))
		if w.Code != tc.code {
			t.Errorf("%q: expected %d, got %d", tc.query, tc.code, w.Code)
			continue
		}
		if tc.name == "" {
			continue
		}
		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if body["name"] != tc.name {
			t.Errorf("%q: expected %q, got %q", tc.query, tc.name, body["name"])
		}
	}
}

func TestHandleStats(t *testing.T) {
	srv := testServer(t, &stubGenerator{})
	ctx := context.Background()
	key := model.ExclusionKey{Location: "Kenya", Category: "culture"}
	if err := srv.Exclusions.Add(ctx, key, "Q1"); err != nil {
		t.Fatalf("adding: %v", err)
	}

	w := httptest.NewRecorder()
	srv.handleStats(w, httptest.NewRequest("GET", "/api/stats", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var stats []model.ExclusionStat
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(stats) != 1 || stats[0].Count != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestRoutes(t *testing.T) {
	srv := testServer(t, &stubGenerator{q: sampleQuestion()})
	h, err := srv.Routes()
	if err != nil {
		t.Fatalf("building routes: %v", err)
	}

	ts := httptest.NewServer(h)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "leaflet") {
		t.Errorf("expected index page, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/trivia")
	if err != nil {
		t.Fatalf("GET /api/trivia: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for GET /api/trivia, got %d", resp.StatusCode)
	}

	resp, err = http.Post(ts.URL+"/api/trivia", "application/json", strings.NewReader(`{"location":"Kenya","category":"history"}`))
	if err != nil {
		t.Fatalf("POST /api/trivia: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 from /metrics, got %d", resp.StatusCode)
	}
}

func TestWriteJSONNil(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, http.StatusOK, nil)

	if w.Body.String() != "[]" {
		t.Errorf("expected '[]' for nil, got %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
}

func TestStaticAppDropsSupersededRegionResponses(t *testing.T) {
	srv := testServer(t, &stubGenerator{})
	h, err := srv.Routes()
	if err != nil {
		t.Fatalf("building routes: %v", err)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/app.js", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	js := w.Body.String()
	for _, want := range []string{
		"const token = ++state.regionSeq;",
		"if (token !== state.regionSeq) return;",
		"Error fetching features:",
	} {
		if !strings.Contains(js, want) {
			t.Errorf("app.js missing %q", want)
		}
	}
	// The old layer must go before a new one is added.
	show := js[strings.Index(js, "async function showRegion"):]
	if !strings.Contains(show, "clearRegionLayer();\n  state.layer = L.geoJSON") {
		t.Error("showRegion adds a layer without clearing the previous one")
	}
}
