package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTransition(t *testing.T) {
	before := testutil.ToFloat64(lifecycleTransitions.WithLabelValues("idle", "submitting"))
	RecordTransition("idle", "submitting")
	assert.Equal(t, before+1, testutil.ToFloat64(lifecycleTransitions.WithLabelValues("idle", "submitting")))
}

func TestRecordStaleResponse(t *testing.T) {
	before := testutil.ToFloat64(staleResponses)
	RecordStaleResponse()
	RecordStaleResponse()
	assert.Equal(t, before+2, testutil.ToFloat64(staleResponses))
}

func TestRecordOutcome(t *testing.T) {
	before := testutil.ToFloat64(analysesCompleted.WithLabelValues("failed"))
	RecordOutcome("failed")
	assert.Equal(t, before+1, testutil.ToFloat64(analysesCompleted.WithLabelValues("failed")))
}
