package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(liveChecks.WithLabelValues("name", "invalid"))
	RecordLiveCheck("name", "invalid")
	assert.Equal(t, before+1, testutil.ToFloat64(liveChecks.WithLabelValues("name", "invalid")))

	before = testutil.ToFloat64(signups.WithLabelValues("committed"))
	RecordSignup("committed")
	assert.Equal(t, before+1, testutil.ToFloat64(signups.WithLabelValues("committed")))

	done := TrackInFlight()
	assert.Equal(t, float64(1), testutil.ToFloat64(httpInFlight))
	done()
	assert.Equal(t, float64(0), testutil.ToFloat64(httpInFlight))
}

func TestHandler(t *testing.T) {
	RecordHTTPRequest("GET", "/contacts/:id", 200, 12*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `contact_book_http_requests_total{method="GET",route="/contacts/:id",status="200"}`))
	assert.True(t, strings.Contains(body, "contact_book_http_request_duration_seconds_bucket"))
}
