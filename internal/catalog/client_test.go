// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package catalog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/voodoo-quality/internal/config"
	"github.com/tomtom215/voodoo-quality/internal/models"
)

// newTestClient starts an httptest server for handler and points a client at it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(&config.UpstreamConfig{
		BaseURL:        srv.URL + "/",
		Timeout:        5 * time.Second,
		CSRFCookie:     DefaultCSRFCookie,
		MaxRetries:     3,
		RetryBaseDelay: time.Millisecond,
	})
	c.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return c
}

func TestFetchStats_RequestShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != StatsPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("timeframe") != "week" || q.Get("force") != "1" || q.Get("_") != "1700000000123" {
			t.Errorf("query = %v", q)
		}
		if r.Header.Get("Cache-Control") != "no-cache" || r.Header.Get("Pragma") != "no-cache" {
			t.Errorf("missing no-cache headers: %v", r.Header)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"totalMissing":4,"totalDuplicates":0,"missingByBrand":{"Dior":3,"Chanel":1},"duplicatesByBrand":{},"lastUpdated":"2026-10-01T00:00:00.000Z"}`)
	})

	stats, err := c.FetchStats(context.Background(), models.TimeframeWeek, true)
	if err != nil {
		t.Fatalf("FetchStats: %v", err)
	}
	if got := strings.Join(stats.MissingByBrand.Names(), ","); got != "Dior,Chanel" {
		t.Errorf("brands = %q, want insertion order Dior,Chanel", got)
	}
	if stats.TotalMissing != 4 || stats.LastUpdated != "2026-10-01T00:00:00.000Z" {
		t.Errorf("stats = %+v", stats)
	}
}

func TestFetchStats_ForceZero(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("force"); got != "0" {
			t.Errorf("force = %q, want 0", got)
		}
		_, _ = io.WriteString(w, `{"missingByBrand":{},"duplicatesByBrand":{},"lastUpdated":""}`)
	})
	if _, err := c.FetchStats(context.Background(), models.TimeframeAll, false); err != nil {
		t.Fatalf("FetchStats: %v", err)
	}
}

func TestFetchStats_Non2xx(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
	})

	_, err := c.FetchStats(context.Background(), models.TimeframeMonth, false)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "HTTP error! Status: 503" {
		t.Errorf("err = %q", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || !strings.Contains(se.Body, "database unavailable") {
		t.Errorf("expected *StatusError with body, got %#v", err)
	}
}

func TestFetchStats_DecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html>login</html>`)
	})
	_, err := c.FetchStats(context.Background(), models.TimeframeMonth, false)
	if err == nil || !strings.HasPrefix(err.Error(), "decode stats") {
		t.Errorf("err = %v", err)
	}
}

func TestFetchStats_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = io.WriteString(w, `{"missingByBrand":{"A":1},"duplicatesByBrand":{},"lastUpdated":"x"}`)
	})

	stats, err := c.FetchStats(context.Background(), models.TimeframeMonth, false)
	if err != nil {
		t.Fatalf("FetchStats: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
	if stats.MissingByBrand.Len() != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestFetchStats_RateLimitExhausted(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.FetchStats(context.Background(), models.TimeframeMonth, false)
	if err == nil || !strings.Contains(err.Error(), "rate limit exceeded after 3 retries") {
		t.Errorf("err = %v", err)
	}
	if calls.Load() != 4 {
		t.Errorf("calls = %d, want 4", calls.Load())
	}
}

func TestFetchStats_ContextCancelledDuringBackoff(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.FetchStats(ctx, models.TimeframeMonth, false)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestFetchHouses(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"id":"1","name":"Dior"},{"id":"2","name":"Chanel"}]`, 2},
		{"wrapped", `{"houses":[{"id":"1","name":"Dior"}]}`, 1},
		{"wrapped empty", `{"houses":[]}`, 0},
		{"no houses key", `{}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != HousesPath {
					t.Errorf("path = %s", r.URL.Path)
				}
				_, _ = io.WriteString(w, tt.body)
			})
			houses, err := c.FetchHouses(context.Background())
			if err != nil {
				t.Fatalf("FetchHouses: %v", err)
			}
			if len(houses) != tt.want {
				t.Errorf("len = %d, want %d", len(houses), tt.want)
			}
		})
	}
}

func TestFetchHouses_Non2xx(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := c.FetchHouses(context.Background())
	if err == nil || err.Error() != "HTTP error! Status: 500" {
		t.Errorf("err = %v", err)
	}
}

func TestUpdateHouseInfo_ForwardsRawBody(t *testing.T) {
	const csv = "id,name\n\"1\",\"Dior, \"\"Paris\"\"\""
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != UpdateHousesPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "text/csv" {
			t.Errorf("content type = %q", r.Header.Get("Content-Type"))
		}
		if r.Header.Get(CSRFHeader) != "tok-12345" {
			t.Errorf("csrf header = %q", r.Header.Get(CSRFHeader))
		}
		if ck, err := r.Cookie(DefaultCSRFCookie); err != nil || ck.Value != "tok-12345" {
			t.Errorf("csrf cookie = %v, %v", ck, err)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != csv {
			t.Errorf("body = %q, want unmodified %q", body, csv)
		}
		_, _ = io.WriteString(w, `{"results":[{"name":"Dior","status":"updated"},{"name":"New","status":"created"},{"name":"Bad","status":"error","error":"Name is required"}]}`)
	})

	resp, err := c.UpdateHouseInfo(context.Background(), []byte(csv), "tok-12345")
	if err != nil {
		t.Fatalf("UpdateHouseInfo: %v", err)
	}
	tally := resp.Tally()
	if tally.Total != 3 || tally.Updated != 1 || tally.Created != 1 || tally.Failed != 1 {
		t.Errorf("tally = %+v", tally)
	}
}

func TestUpdateHouseInfo_ServerReportedError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"error":"duplicate row"}`)
	})
	resp, err := c.UpdateHouseInfo(context.Background(), []byte("id\n"), "tok")
	if err != nil {
		t.Fatalf("UpdateHouseInfo: %v", err)
	}
	if resp.Error != "duplicate row" {
		t.Errorf("Error = %q", resp.Error)
	}
}

func TestUpdateHouseInfo_Non2xx(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"error body", http.StatusBadRequest, `{"error":"CSV parse error","details":[{"row":2}]}`, "HTTP 400: CSV parse error"},
		{"empty body", http.StatusInternalServerError, ``, "HTTP 500: Unknown error"},
		{"html body", http.StatusBadGateway, `<html>bad gateway</html>`, "HTTP 502: Unknown error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.UpdateHouseInfo(context.Background(), []byte("id\n"), "tok")
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("err = %v, want %q", err, tt.wantErr)
			}
			var he *HTTPError
			if !errors.As(err, &he) || he.StatusCode != tt.status {
				t.Errorf("expected *HTTPError with status %d, got %#v", tt.status, err)
			}
		})
	}
}

func TestUpdateHouseInfo_NeverRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := c.UpdateHouseInfo(context.Background(), []byte("id\n"), "tok")
	if err == nil || err.Error() != "HTTP 429: Unknown error" {
		t.Errorf("err = %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want exactly 1", calls.Load())
	}
}

func TestReadBodyForError_Truncates(t *testing.T) {
	big := strings.Repeat("x", maxErrorBodySize+10)
	got := readBodyForError(strings.NewReader(big))
	if !strings.HasSuffix(string(got), "\n... (truncated)") {
		t.Error("expected truncation marker")
	}
	if len(got) != maxErrorBodySize+len("\n... (truncated)") {
		t.Errorf("len = %d", len(got))
	}
}

func TestHTTPError_Message(t *testing.T) {
	if got := (&HTTPError{StatusCode: 403}).Error(); got != "HTTP 403: Unknown error" {
		t.Errorf("got %q", got)
	}
	if got := (&HTTPError{StatusCode: 400, Message: "bad csv"}).Error(); got != "HTTP 400: bad csv" {
		t.Errorf("got %q", got)
	}
}

func TestTokenSources(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	req.AddCookie(&http.Cookie{Name: "_csrf", Value: "from-cookie"})

	if got := (RequestToken{Request: req}).CSRFToken(); got != "from-cookie" {
		t.Errorf("cookie fallback = %q", got)
	}

	req.Header.Set(CSRFHeader, "from-header")
	if got := (RequestToken{Request: req}).CSRFToken(); got != "from-header" {
		t.Errorf("header = %q", got)
	}

	if got := (RequestToken{}).CSRFToken(); got != "" {
		t.Errorf("nil request = %q", got)
	}

	empty := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	if got := FirstToken(RequestToken{Request: empty}, nil, StaticToken("static")); got != "static" {
		t.Errorf("FirstToken = %q", got)
	}
	if got := FirstToken(RequestToken{Request: empty}); got != "" {
		t.Errorf("FirstToken = %q, want empty", got)
	}
}
