// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package metrics

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("HTTP %d", int(e)) }
func (e statusErr) HTTPStatus() int { return int(e) }

// histogramCount extracts the sample count from a histogram child.
func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	m, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatal("observer is not a metric")
	}
	var pb dto.Metric
	if err := m.Write(&pb); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return pb.GetHistogram().GetSampleCount()
}

func TestClassifyUpstreamError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"429", statusErr(429), "rate_limited"},
		{"500", statusErr(500), "http_5xx"},
		{"503 wrapped", fmt.Errorf("fetch: %w", statusErr(503)), "http_5xx"},
		{"404", statusErr(404), "http_4xx"},
		{"breaker", errors.New("circuit breaker open: catalog unavailable"), "circuit_open"},
		{"retries exhausted", errors.New("rate limit exceeded after 5 retries (HTTP 429)"), "rate_limited"},
		{"decode", errors.New("decode stats: unexpected EOF"), "decode"},
		{"dial", errors.New("dial tcp: connection refused"), "transport"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyUpstreamError(tt.err); got != tt.want {
				t.Errorf("classifyUpstreamError(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestRecordUpstreamRequest(t *testing.T) {
	const endpoint = "test-endpoint"
	beforeCount := histogramCount(t, UpstreamRequestDuration.WithLabelValues(endpoint))
	beforeErr := testutil.ToFloat64(UpstreamRequestErrors.WithLabelValues(endpoint, "http_5xx"))

	RecordUpstreamRequest(endpoint, 20*time.Millisecond, nil)
	RecordUpstreamRequest(endpoint, 40*time.Millisecond, statusErr(502))

	if got := histogramCount(t, UpstreamRequestDuration.WithLabelValues(endpoint)); got != beforeCount+2 {
		t.Errorf("sample count = %d, want %d", got, beforeCount+2)
	}
	if got := testutil.ToFloat64(UpstreamRequestErrors.WithLabelValues(endpoint, "http_5xx")); got != beforeErr+1 {
		t.Errorf("errors = %v, want %v", got, beforeErr+1)
	}
}

func TestRecordStatsFetch(t *testing.T) {
	okBefore := testutil.ToFloat64(StatsCacheFetches.WithLabelValues("week", "true", "success"))
	failBefore := testutil.ToFloat64(StatsCacheFetches.WithLabelValues("week", "false", "failure"))

	RecordStatsFetch("week", true, time.Millisecond, nil)
	RecordStatsFetch("week", false, time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(StatsCacheFetches.WithLabelValues("week", "true", "success")); got != okBefore+1 {
		t.Errorf("success = %v, want %v", got, okBefore+1)
	}
	if got := testutil.ToFloat64(StatsCacheFetches.WithLabelValues("week", "false", "failure")); got != failBefore+1 {
		t.Errorf("failure = %v, want %v", got, failBefore+1)
	}
}

func TestRecordImportResults(t *testing.T) {
	created := testutil.ToFloat64(ImportRows.WithLabelValues("created"))
	updated := testutil.ToFloat64(ImportRows.WithLabelValues("updated"))
	failed := testutil.ToFloat64(ImportRows.WithLabelValues("error"))

	RecordImportResults(1, 4, 2)

	if testutil.ToFloat64(ImportRows.WithLabelValues("created")) != created+1 ||
		testutil.ToFloat64(ImportRows.WithLabelValues("updated")) != updated+4 ||
		testutil.ToFloat64(ImportRows.WithLabelValues("error")) != failed+2 {
		t.Error("import row tallies not recorded")
	}
}

func TestTrackActiveRequest_RequestLifecycle(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active = %v, want %v", got, before)
	}
}

func TestConcurrentMetricRecording(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/concurrent", "200"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			RecordAPIRequest("GET", "/api/v1/concurrent", "200", time.Millisecond)
			RecordStatsFetch("all", false, time.Millisecond, nil)
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/concurrent", "200")); got != before+50 {
		t.Errorf("requests = %v, want %v", got, before+50)
	}
}

func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		UpstreamRequestDuration,
		UpstreamRequestErrors,
		UpstreamRateLimitRetries,
		StatsCacheHits,
		StatsCacheMisses,
		StatsCacheStaleServes,
		StatsCacheFetches,
		StatsCacheFetchDuration,
		StatsCacheCoalesced,
		StatsCacheEvictions,
		StatsCacheEntries,
		ExportRows,
		ExportsTotal,
		ImportsTotal,
		ImportRows,
		ScheduledRefreshes,
		APIRequestsTotal,
		APIRequestDuration,
		APIActiveRequests,
		APIRateLimitHits,
		WSConnections,
		WSMessagesSent,
		WSMessagesDropped,
		WSErrors,
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerConsecutiveFailures,
		CircuitBreakerTransitions,
		AppInfo,
		AppUptime,
	}

	for _, c := range collectors {
		ch := make(chan *prometheus.Desc, 10)
		c.Describe(ch)
		close(ch)
		count := 0
		for range ch {
			count++
		}
		if count == 0 {
			t.Errorf("collector %T has no descriptors", c)
		}
	}
}

func BenchmarkRecordAPIRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordAPIRequest("GET", "/api/v1/data-quality", "200", 10*time.Millisecond)
	}
}
