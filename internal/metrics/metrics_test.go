package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveEvent("awaiting_phone", "contact")
	m.ObserveSubmission("succeeded")
	m.ObserveUpload("passport_main", nil)
	m.ObserveUpload("driver_license", errors.New("timeout"))
	m.ObserveNotification(nil)
	m.Sessions.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Events.WithLabelValues("awaiting_phone", "contact")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Uploads.WithLabelValues("driver_license", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Uploads.WithLabelValues("passport_main", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Sessions))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 5)
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNoop()
		NewNoop()
	})
}
