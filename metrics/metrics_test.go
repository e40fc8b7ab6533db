package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findMetric(t *testing.T, families []*dto.MetricFamily, name string) *dto.MetricFamily {
	t.Helper()
	for _, family := range families {
		if family.GetName() == name {
			return family
		}
	}
	t.Fatalf("metric %s not registered", name)
	return nil
}

func TestCountersRegistered(t *testing.T) {
	ItemsIngested.WithLabelValues("posts").Add(3)
	StaleCursorResets.WithLabelValues("comments").Inc()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	ingested := findMetric(t, families, "redditwatch_items_ingested_total")
	assert.Equal(t, dto.MetricType_COUNTER, ingested.GetType())

	var found bool
	for _, m := range ingested.GetMetric() {
		for _, label := range m.GetLabel() {
			if label.GetName() == "kind" && label.GetValue() == "posts" {
				found = true
				assert.GreaterOrEqual(t, m.GetCounter().GetValue(), 3.0)
			}
		}
	}
	assert.True(t, found, "posts label series exists")

	findMetric(t, families, "redditwatch_stale_cursor_resets_total")
	findMetric(t, families, "redditwatch_scan_errors_total")
}
