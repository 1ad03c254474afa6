// file: internal/metrics/metrics_test.go
// version: 2.0.0
// guid: 8db821b1-6336-4a6f-a885-2e8197d54684

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestCacheCounters(t *testing.T) {
	before := testutil.ToFloat64(cacheLookups.WithLabelValues(OutcomeExpired))
	IncCacheLookup(OutcomeExpired)
	assert.Equal(t, before+1, testutil.ToFloat64(cacheLookups.WithLabelValues(OutcomeExpired)))

	okBefore := testutil.ToFloat64(cacheWrites.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(cacheWrites.WithLabelValues("error"))
	IncCacheWrite(true)
	IncCacheWrite(false)
	IncCacheWrite(false)
	assert.Equal(t, okBefore+1, testutil.ToFloat64(cacheWrites.WithLabelValues("ok")))
	assert.Equal(t, errBefore+2, testutil.ToFloat64(cacheWrites.WithLabelValues("error")))
}

func TestObserveCatalogRequest(t *testing.T) {
	okBefore := testutil.ToFloat64(catalogRequests.WithLabelValues("search", "ok"))
	errBefore := testutil.ToFloat64(catalogRequests.WithLabelValues("search", "error"))

	ObserveCatalogRequest("search", 120*time.Millisecond, nil)
	ObserveCatalogRequest("search", time.Second, errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(catalogRequests.WithLabelValues("search", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(catalogRequests.WithLabelValues("search", "error")))
}

func TestSetDownloads(t *testing.T) {
	SetDownloads(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(downloadsGauge))
}
