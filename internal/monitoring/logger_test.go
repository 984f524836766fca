package monitoring

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})
	Logf("skin %d: %d cells", 3, 410)
	if got != "skin 3: 410 cells" {
		t.Errorf("custom logger got %q", got)
	}

	got = ""
	SetLogger(nil)
	Logf("muted")
	if got != "" {
		t.Errorf("nil logger should be a no-op, custom logger saw %q", got)
	}
}

func TestQuiet_RestoresLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	calls := 0
	SetLogger(func(string, ...interface{}) { calls++ })
	restore := Quiet()
	Logf("hidden")
	restore()
	Logf("visible")
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRecoveriesCounter(t *testing.T) {
	before := testutil.ToFloat64(Recoveries.WithLabelValues("stalled"))
	Recoveries.WithLabelValues("stalled").Inc()
	if got := testutil.ToFloat64(Recoveries.WithLabelValues("stalled")); got != before+1 {
		t.Errorf("counter = %v, want %v", got, before+1)
	}
}

func TestTracer_NoopWithoutSDK(t *testing.T) {
	if Tracer("grow") == nil {
		t.Fatal("Tracer returned nil")
	}
}
