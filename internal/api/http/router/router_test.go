package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"

	"github.com/dtroode/regbot/internal/api/http/handler"
	"github.com/dtroode/regbot/internal/metrics"
	"github.com/dtroode/regbot/internal/testutil"
)

func newTestRouter(messenger *testutil.Messenger) http.Handler {
	reg := prometheus.NewRegistry()
	metrics.New(reg).ObserveSubmission("succeeded")
	log := testutil.MakeNoopLogger()
	return New(handler.NewNotify(messenger, log), "your_super_secret_admin_key", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), log)
}

func TestRouter(t *testing.T) {
	messenger := testutil.NewMessenger()
	r := newTestRouter(messenger)

	tests := []struct {
		name     string
		method   string
		path     string
		auth     string
		body     string
		want     int
		contains string
	}{
		{name: "health", method: http.MethodGet, path: "/healthz", want: http.StatusOK, contains: "ok"},
		{name: "metrics", method: http.MethodGet, path: "/metrics", want: http.StatusOK, contains: "regbot_submissions_total"},
		{name: "notify unauthorized", method: http.MethodPost, path: "/notify", body: `{"user_id":1,"text":"x"}`, want: http.StatusUnauthorized},
		{name: "notify ok", method: http.MethodPost, path: "/notify", auth: "Bearer your_super_secret_admin_key", body: `{"user_id":1,"text":"x"}`, want: http.StatusOK, contains: "success"},
		{name: "notify wrong method", method: http.MethodGet, path: "/notify", want: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.contains != "" {
				assert.Contains(t, rec.Body.String(), tt.contains)
			}
		})
	}

	assert.Len(t, messenger.Prompts(1), 1)
}
