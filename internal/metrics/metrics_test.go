package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jopa/internal/diag"
	"jopa/internal/source"
)

func TestObserveSite(t *testing.T) {
	r := New()
	r.ObserveSite("resolved", "strict")
	r.ObserveSite("resolved", "loose")
	r.ObserveSite("resolved", "strict")
	r.ObserveSite("failed", "")

	assert.InDelta(t, 3, testutil.ToFloat64(r.callSites.WithLabelValues("resolved")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.callSites.WithLabelValues("failed")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(r.phases.WithLabelValues("strict")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(r.phases))
}

func TestReporterCountsAndForwards(t *testing.T) {
	r := New()
	bag := diag.NewBag(8)
	rep := r.Reporter(diag.BagReporter{Bag: bag})
	diag.ReportError(rep, diag.ResMethodNotFound, source.Span{}, "no method").Emit()
	diag.ReportError(rep, diag.ResMethodNotFound, source.Span{}, "no method again").Emit()
	diag.ReportWarning(rep, diag.ResDeprecatedMethod, source.Span{}, "old").Emit()

	assert.Equal(t, 3, bag.Len())
	assert.InDelta(t, 2, testutil.ToFloat64(r.diagnostics.WithLabelValues(diag.ResMethodNotFound.ID())), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.diagnostics.WithLabelValues(diag.ResDeprecatedMethod.ID())), 0)
}

func TestAccessorsAndFixtures(t *testing.T) {
	r := New()
	r.AddAccessors(2)
	r.AddAccessors(0)
	r.AddAccessors(1)
	r.ObserveFixture(20 * time.Millisecond)
	assert.InDelta(t, 3, testutil.ToFloat64(r.accessors), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(r.fixtures))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.ObserveSite("resolved", "strict")
	r.ObserveDiagnostic(diag.ResMethodNotFound)
	r.AddAccessors(1)
	r.ObserveFixture(time.Second)
	assert.Nil(t, r.Registry())
	require.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "none.prom")))
	next := diag.NopReporter{}
	assert.Equal(t, diag.Reporter(next), r.Reporter(next))
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.ObserveSite("deferred", "")
	path := filepath.Join(t.TempDir(), "jopa.prom")
	require.NoError(t, r.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `jopa_call_sites_total{outcome="deferred"} 1`), text)
	assert.True(t, strings.Contains(text, "# HELP jopa_accessors_total"), text)
}
