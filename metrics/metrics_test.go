package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(bookingCreated.WithLabelValues("conflict"))
	IncBookingCreated("conflict")
	assert.Equal(t, before+1, testutil.ToFloat64(bookingCreated.WithLabelValues("conflict")))

	before = testutil.ToFloat64(bookingCancelled)
	IncBookingCancelled()
	assert.Equal(t, before+1, testutil.ToFloat64(bookingCancelled))

	before = testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/health", "200"))
	ObserveHTTP("GET", "/api/health", "200", 0.01)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/health", "200")))
}
