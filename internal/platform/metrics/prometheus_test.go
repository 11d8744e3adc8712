package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsManager_CountersRegistered(t *testing.T) {
	m := NewMetricsManager("adpost")

	m.ListingsSubmitted.WithLabelValues("create").Inc()
	m.DraftsSaved.Inc()
	m.SuggestionCalls.WithLabelValues("tags", "error").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ListingsSubmitted.WithLabelValues("create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DraftsSaved))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SuggestionCalls.WithLabelValues("tags", "error")))

	families, err := m.Registry.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}
