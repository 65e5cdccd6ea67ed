package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"athleteportal/internal/adapters/http/perf"
)

func timed(collector *perf.Collector, h http.HandlerFunc) http.Handler {
	return Timing(collector, time.Second)(h)
}

// TestTiming_RecordsEntry verifies method, path and status are recorded.
func TestTiming_RecordsEntry(t *testing.T) {
	collector := perf.NewCollector(1)
	handler := timed(collector, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/api/athletes/import", nil))

	if rr.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rr.Code)
	}
	snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
	if len(snap.SlowestPaths) != 1 || snap.SlowestPaths[0].Path != "POST /api/athletes/import" {
		t.Fatalf("SlowestPaths = %+v", snap.SlowestPaths)
	}
	if snap.SlowestPaths[0].AvgMs < 0 {
		t.Errorf("AvgMs = %v, want >= 0", snap.SlowestPaths[0].AvgMs)
	}
}

// TestTiming_SkipsHealthCheck verifies /healthz is not recorded.
func TestTiming_SkipsHealthCheck(t *testing.T) {
	collector := perf.NewCollector(100)
	handler := timed(collector, func(w http.ResponseWriter, r *http.Request) {})

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/healthz", nil))

	if collector.TotalRecorded() != 0 {
		t.Errorf("TotalRecorded = %d, want 0", collector.TotalRecorded())
	}
}

// TestTiming_NilCollector verifies middleware works without a collector.
func TestTiming_NilCollector(t *testing.T) {
	handler := timed(nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/features", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

// TestTiming_HandlerPanic verifies the deferred recording runs when the
// handler panics.
func TestTiming_HandlerPanic(t *testing.T) {
	collector := perf.NewCollector(100)
	handler := timed(collector, func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic to propagate")
		}
		if collector.TotalRecorded() != 1 {
			t.Errorf("TotalRecorded = %d, want 1", collector.TotalRecorded())
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/panic", nil))
}

// TestTiming_PoolNoStateLeak verifies pooled writers do not carry status
// codes between requests.
func TestTiming_PoolNoStateLeak(t *testing.T) {
	collector := perf.NewCollector(100)

	fail := timed(collector, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	fail.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/fail", nil))

	ok := timed(collector, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/ok", nil))

	snap := collector.Snapshot(time.Now().Add(-time.Minute), 0)
	if snap.ServerErrors != 1 {
		t.Errorf("ServerErrors = %d, want 1", snap.ServerErrors)
	}
}

// BenchmarkTiming measures per-request overhead.
func BenchmarkTiming(b *testing.B) {
	collector := perf.NewCollector(perf.DefaultRingSize)
	handler := timed(collector, func(w http.ResponseWriter, r *http.Request) {})
	req := httptest.NewRequest("GET", "/api/bench", nil)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
}
