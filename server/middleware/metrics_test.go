package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/brewgen/brewgen/server/metrics"
	"github.com/brewgen/brewgen/server/middleware"
)

func TestPrometheusMetrics(t *testing.T) {
	tests := []struct {
		name           string
		handler        http.HandlerFunc
		expectedCode   int
		expectedPath   string
		expectedStatus string
		expectedErrTyp string
	}{
		{
			name: "success request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			expectedCode:   http.StatusOK,
			expectedPath:   "/",
			expectedStatus: "200",
		},
		{
			name: "client error request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			},
			expectedCode:   http.StatusBadRequest,
			expectedPath:   "/",
			expectedStatus: "400",
			expectedErrTyp: "request",
		},
		{
			name: "server error request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			expectedCode:   http.StatusInternalServerError,
			expectedPath:   "/",
			expectedStatus: "500",
			expectedErrTyp: "upstream",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Fresh metrics per case so counters start at zero
			m := metrics.NewMetrics()
			handler := middleware.PrometheusMetrics(m)(tt.handler)
			server := httptest.NewServer(handler)
			defer server.Close()

			resp, err := http.Get(server.URL)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedCode, resp.StatusCode)

			requestCount := testutil.ToFloat64(m.RequestsTotal.WithLabelValues(tt.expectedPath, tt.expectedStatus))
			assert.Equal(t, float64(1), requestCount)

			// Active requests should be back to zero after the request completes
			activeRequests := testutil.ToFloat64(m.ActiveRequests.WithLabelValues(tt.expectedPath))
			assert.Equal(t, float64(0), activeRequests)

			if tt.expectedErrTyp != "" {
				errorCount := testutil.ToFloat64(m.ErrorsTotal.WithLabelValues(tt.expectedErrTyp))
				assert.Equal(t, float64(1), errorCount)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.NewMetrics()
	m.UpstreamResults.WithLabelValues("success").Inc()

	server := httptest.NewServer(m.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	count := testutil.ToFloat64(m.UpstreamResults.WithLabelValues("success"))
	assert.Equal(t, float64(1), count)
}
