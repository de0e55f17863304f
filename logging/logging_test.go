package logging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatalf("FromContext() returned nil for an empty context")
	}

	logger := zap.NewNop().Sugar()
	ctx := WithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Errorf("FromContext() did not return the stored logger")
	}
}

func TestMiddlewareAndRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core).Sugar()

	var fromRequest *zap.SugaredLogger
	handler := Middleware(logger)(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromRequest = FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if fromRequest != logger {
		t.Errorf("handler did not see the logger in its context")
	}

	entries := logs.FilterMessage("request completed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 request log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/ping" {
		t.Errorf("logged path = %v, expected /ping", fields["path"])
	}
	if fields["status"] != int64(http.StatusTeapot) {
		t.Errorf("logged status = %v (%T), expected %d", fields["status"], fields["status"], http.StatusTeapot)
	}
}
