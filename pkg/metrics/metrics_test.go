package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRoute_IncrementsCounter(t *testing.T) {
	initial := testutil.ToFloat64(routedTotal.WithLabelValues("dispatch", "flight_search"))

	RecordRoute("dispatch", "FLIGHT_SEARCH")

	actual := testutil.ToFloat64(routedTotal.WithLabelValues("dispatch", "flight_search"))
	assert.Equal(t, initial+1, actual)
}

func TestRecordRoute_NormalizesUnknownBranch(t *testing.T) {
	initial := testutil.ToFloat64(routedTotal.WithLabelValues("unknown", "unknown"))

	RecordRoute("sideways", " ")

	actual := testutil.ToFloat64(routedTotal.WithLabelValues("unknown", "unknown"))
	assert.Equal(t, initial+1, actual)
}

func TestRecordCapabilityCall_NormalizesResult(t *testing.T) {
	initial := testutil.ToFloat64(capabilityCallsTotal.WithLabelValues("price_offer", "unknown"))

	RecordCapabilityCall("price_offer", "exploded")

	actual := testutil.ToFloat64(capabilityCallsTotal.WithLabelValues("price_offer", "unknown"))
	assert.Equal(t, initial+1, actual)
}

func TestRecordUpstreamRequest_StatusClass(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, "error"},
		{200, "2xx"},
		{404, "4xx"},
		{502, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusClass(tt.code))
	}

	initial := testutil.ToFloat64(upstreamRequestsTotal.WithLabelValues("search", "5xx"))
	RecordUpstreamRequest("search", 503)
	assert.Equal(t, initial+1, testutil.ToFloat64(upstreamRequestsTotal.WithLabelValues("search", "5xx")))
}
