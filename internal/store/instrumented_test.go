package store

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentedCountsOutcomes(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	s := NewInstrumented(NewMemory(), reg)

	require.NoError(t, s.Set(ctx, "items", "a", map[string]any{"owner": "u1"}))
	var out map[string]any
	require.NoError(t, s.Get(ctx, "items", "a", &out))
	assert.ErrorIs(t, s.Get(ctx, "items", "missing", &out), ErrNotFound)

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "ayursutra_store_operations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			key := ""
			for _, l := range m.GetLabel() {
				key += l.GetName() + "=" + l.GetValue() + ","
			}
			counts[key] = m.GetCounter().GetValue()
		}
	}

	assert.Equal(t, 1.0, counts["collection=items,operation=get,status=ok,"])
	assert.Equal(t, 1.0, counts["collection=items,operation=get,status=not_found,"])
	assert.Equal(t, 1.0, counts["collection=items,operation=set,status=ok,"])
}
