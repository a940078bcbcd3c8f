package telemetry

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/flicky/e-games-api/internal/config"
)

func TestSetup_None(t *testing.T) {
	shutdown, err := setup(context.Background(), config.TelemetryConfig{Exporter: ExporterNone}, nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_UnknownExporter(t *testing.T) {
	_, err := setup(context.Background(), config.TelemetryConfig{Exporter: "zipkin"}, nil)
	assert.Error(t, err)
}

func TestSetup_StdoutExportsSpans(t *testing.T) {
	var out bytes.Buffer
	shutdown, err := setup(context.Background(), config.TelemetryConfig{Exporter: ExporterStdout, ServiceName: "e-games-test"}, &out)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "unit-span")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, out.String(), "unit-span")
	assert.Contains(t, out.String(), "e-games-test")
}

func TestWrapHandler_SkipsHealthChecks(t *testing.T) {
	var out bytes.Buffer
	shutdown, err := setup(context.Background(), config.TelemetryConfig{Exporter: ExporterStdout, ServiceName: "e-games-test"}, &out)
	require.NoError(t, err)

	sawSpan := map[string]bool{}
	h := WrapHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawSpan[r.URL.Path] = trace.SpanContextFromContext(r.Context()).IsValid()
		w.WriteHeader(http.StatusOK)
	}), "e-games-test")

	for _, path := range []string{"/healthz", "/api/games/list"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	require.NoError(t, shutdown(context.Background()))

	assert.False(t, sawSpan["/healthz"])
	assert.True(t, sawSpan["/api/games/list"])
	assert.Contains(t, out.String(), "GET /api/games/list")
}
