// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/voodoo-quality/internal/cache"
	"github.com/tomtom215/voodoo-quality/internal/config"
	"github.com/tomtom215/voodoo-quality/internal/dashboard"
	"github.com/tomtom215/voodoo-quality/internal/models"
	"github.com/tomtom215/voodoo-quality/internal/transfer"
	ws "github.com/tomtom215/voodoo-quality/internal/websocket"
)

// fakeCatalog stands in for the catalog client.
type fakeCatalog struct {
	mu sync.Mutex

	stats    *models.DataQualityStats
	statsErr error
	fetches  []cache.Key

	houses    []models.HouseRecord
	housesErr error

	importResp *models.ImportResponse
	importErr  error
	uploaded   []byte
	token      string
	uploads    int
}

func (f *fakeCatalog) FetchStats(_ context.Context, tf models.Timeframe, force bool) (*models.DataQualityStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, cache.Key{Timeframe: tf, Forced: force})
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	s := *f.stats
	return &s, nil
}

func (f *fakeCatalog) FetchHouses(context.Context) ([]models.HouseRecord, error) {
	return f.houses, f.housesErr
}

func (f *fakeCatalog) UpdateHouseInfo(_ context.Context, csv []byte, token string) (*models.ImportResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	f.uploaded = append([]byte(nil), csv...)
	f.token = token
	if f.importErr != nil {
		return nil, f.importErr
	}
	return f.importResp, nil
}

func (f *fakeCatalog) fetchCalls() []cache.Key {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]cache.Key(nil), f.fetches...)
}

type staticBreaker string

func (s staticBreaker) State() string { return string(s) }

type testEnv struct {
	catalog *fakeCatalog
	cache   *cache.StatsCache
	dash    *dashboard.Dashboard
	hub     *ws.Hub
	cfg     *config.Config
	handler http.Handler
}

func testConfig() *config.Config {
	return &config.Config{
		Upstream: config.UpstreamConfig{CSRFCookie: "_csrf"},
		Security: config.SecurityConfig{
			CORSOrigins:     []string{"http://console.test"},
			RateLimitReqs:   1000,
			RateLimitWindow: time.Minute,
		},
	}
}

// newTestEnv builds the full handler stack over a fake catalog. mutate may
// adjust the config before the router is built.
func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()

	fc := &fakeCatalog{
		stats: &models.DataQualityStats{
			TotalMissing:   2,
			MissingByBrand: models.BrandCounts{{Name: "Dior", Count: 2}},
			LastUpdated:    "2026-10-18T03:00:00.000Z",
		},
		importResp: &models.ImportResponse{Results: []models.ImportResult{
			{Name: "Dior", Status: models.ImportStatusUpdated},
			{Name: "Guerlain", Status: models.ImportStatusCreated},
		}},
	}
	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}

	c := cache.New(fc, cache.Options{StaleAfter: 30 * time.Second, GCAfter: 5 * time.Minute, FetchTimeout: 5 * time.Second})
	t.Cleanup(c.Close)

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = hub.RunWithContext(ctx) }()
	t.Cleanup(cancel)

	dash := dashboard.New(c, hub, models.TimeframeMonth)
	handler := NewHandler(Deps{
		Config:    cfg,
		Dashboard: dash,
		Exporter:  transfer.NewExporter(fc),
		Importer:  transfer.NewImporter(fc, dash, hub),
		Hub:       hub,
		Breaker:   staticBreaker("closed"),
		Cache:     c,
		Version:   "test",
	})

	return &testEnv{
		catalog: fc,
		cache:   c,
		dash:    dash,
		hub:     hub,
		cfg:     cfg,
		handler: NewRouter(handler).Setup(),
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	body, _ := io.ReadAll(rec.Body)
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, body)
	}
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v any) envelope {
	t.Helper()
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("status %d: unexpected error %+v", rec.Code, env.Error)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	return env
}

// expectError asserts an error envelope with status, code and message.
func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code, message string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Success || env.Error == nil {
		t.Fatalf("expected error envelope, got %+v", env)
	}
	if env.Error.Code != code {
		t.Errorf("code = %q, want %q", env.Error.Code, code)
	}
	if message != "" && env.Error.Message != message {
		t.Errorf("message = %q, want %q", env.Error.Message, message)
	}
}
