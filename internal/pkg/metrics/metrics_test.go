package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/movies", "200"))

	RecordHTTPRequest("GET", "/api/v1/movies", 200, 15*time.Millisecond)

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/movies", "200"))
	assert.Equal(t, before+1, after)
}

func TestRecordOrder(t *testing.T) {
	skippedBefore := testutil.ToFloat64(CheckoutSkippedItems)

	RecordOrder("Miami, FL", 19.98, 2)
	RecordOrder("Miami, FL", 5.00, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(OrdersCreated.WithLabelValues("Miami, FL")))
	assert.InDelta(t, 24.98, testutil.ToFloat64(OrderRevenue.WithLabelValues("Miami, FL")), 0.0001)
	assert.Equal(t, skippedBefore+2, testutil.ToFloat64(CheckoutSkippedItems))
}

func TestRecordCacheLookup(t *testing.T) {
	RecordCacheLookup("movie_rating", true)
	RecordCacheLookup("movie_rating", false)
	RecordCacheLookup("movie_rating", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(CacheLookups.WithLabelValues("movie_rating", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(CacheLookups.WithLabelValues("movie_rating", "miss")))
}

func TestRecordRatingRecalculation(t *testing.T) {
	RecordRatingRecalculation(nil)
	RecordRatingRecalculation(errors.New("db down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(RatingRecalculations.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(RatingRecalculations.WithLabelValues("error")))
}
