package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func serveLogged(t *testing.T, handler http.HandlerFunc, target string) []observer.LoggedEntry {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	wrapped := Logger(zap.New(core))(handler)
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(entries))
	}
	return entries
}

func TestLoggerRecordsImplicitOK(t *testing.T) {
	entries := serveLogged(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok")) // no explicit WriteHeader
	}, "/api/services")

	entry := entries[0]
	if entry.Level != zapcore.InfoLevel {
		t.Errorf("level = %s, want info", entry.Level)
	}
	fields := entry.ContextMap()
	if fields["status"] != int64(http.StatusOK) {
		t.Errorf("status field = %v, want 200", fields["status"])
	}
	if fields["size"] != int64(2) {
		t.Errorf("size field = %v, want 2", fields["size"])
	}
}

func TestLoggerEscalatesServerErrors(t *testing.T) {
	entries := serveLogged(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, "/api/bookings?page=2")

	entry := entries[0]
	if entry.Level != zapcore.ErrorLevel {
		t.Errorf("level = %s, want error for a 5xx", entry.Level)
	}
	fields := entry.ContextMap()
	if fields["query"] != "page=2" {
		t.Errorf("query field = %v, want page=2", fields["query"])
	}
}
