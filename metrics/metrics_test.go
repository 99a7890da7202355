package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHelpers(t *testing.T) {
	before := testutil.ToFloat64(TableOperationsTotal.WithLabelValues("create", "ok"))
	RecordTableOperation("create", "ok")
	assert.Equal(t, before+1, testutil.ToFloat64(TableOperationsTotal.WithLabelValues("create", "ok")))

	before = testutil.ToFloat64(ReservationOperationsTotal.WithLabelValues("create", "CapacityExceeded"))
	RecordReservationOperation("create", "CapacityExceeded")
	assert.Equal(t, before+1, testutil.ToFloat64(ReservationOperationsTotal.WithLabelValues("create", "CapacityExceeded")))

	before = testutil.ToFloat64(QRCodesIssuedTotal.WithLabelValues("menu"))
	RecordQRCode("menu")
	assert.Equal(t, before+1, testutil.ToFloat64(QRCodesIssuedTotal.WithLabelValues("menu")))
}

func TestTrackAvailabilityCheck(t *testing.T) {
	TrackAvailabilityCheck()(time.Now().Add(-10 * time.Millisecond))
	assert.Equal(t, 1, testutil.CollectAndCount(AvailabilityCheckDuration))
}
