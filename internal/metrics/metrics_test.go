package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRemoteCall(t *testing.T) {
	before := testutil.CollectAndCount(RemoteCallDuration)
	ObserveRemoteCall("notion", "test_op", 200, time.Now())
	ObserveRemoteCall("notion", "test_op", 0, time.Now())

	after := testutil.CollectAndCount(RemoteCallDuration)
	if after != before+2 {
		t.Errorf("expected 2 new series, got %d -> %d", before, after)
	}
}

func TestToolCallsCounter(t *testing.T) {
	c := ToolCalls.WithLabelValues("metrics_test_tool", "success")
	c.Inc()
	c.Inc()
	if got := testutil.ToFloat64(c); got != 2 {
		t.Errorf("expected 2, got %v", got)
	}
}
