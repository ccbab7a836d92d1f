package heatmap

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"metoncofit/internal/table"
)

func ptr(v float64) *float64 { return &v }

func TestPivotExample(t *testing.T) {
	subset := Filter(examplePartition(), Selection{Cancer: pan, Target: de, GeneLimit: 2})

	m := Pivot(subset, DefaultReferenceFeature)

	assert.Equal(t, []string{"Feat1"}, m.Features)
	assert.Equal(t, []string{"GeneA", "GeneB"}, m.Genes)
	assert.False(t, m.Reordered)
	if diff := cmp.Diff([][]*float64{{ptr(0.83), ptr(0.40)}}, m.Values()); diff != "" {
		t.Errorf("values (-want +got):\n%s", diff)
	}
}

func TestPivotGapsAreNotZero(t *testing.T) {
	subset := []table.Row{
		row("G1", "F1", pan, de, "GAIN", 0, 0.9, 0),
		row("G2", "F2", pan, de, "GAIN", 2, 0.8, 0),
	}
	m := Pivot(subset, "")

	v, ok := m.At(0, 0)
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)

	_, ok = m.At(0, 1)
	assert.False(t, ok)
	_, ok = m.At(1, 0)
	assert.False(t, ok)

	assert.Equal(t, [][]*float64{{ptr(0), nil}, {nil, ptr(2)}}, m.Values())
}

func TestPivotFeatureOrderFollowsGini(t *testing.T) {
	subset := Filter(NewPartition(Up, []table.Row{
		row("G1", "Low", pan, de, "GAIN", 1, 0.1, 0),
		row("G1", "High", pan, de, "GAIN", 2, 0.9, 0),
		row("G2", "Mid", pan, de, "GAIN", 3, 0.5, 0),
	}), Selection{Cancer: pan, Target: de, GeneLimit: 10})

	m := Pivot(subset, "")
	assert.Equal(t, []string{"High", "Mid", "Low"}, m.Features)
	assert.Equal(t, []string{"G1", "G2"}, m.Genes)
}

func TestPivotReordersByReferenceFeature(t *testing.T) {
	const ref = DefaultReferenceFeature
	subset := []table.Row{
		row("G1", "Flux", pan, de, "GAIN", 1, 0.9, 0),
		row("G2", "Flux", pan, de, "GAIN", 2, 0.9, 0),
		row("G3", "Flux", pan, de, "GAIN", 3, 0.9, 0),
		row("G4", "Flux", pan, de, "GAIN", 4, 0.9, 0),
		row("G1", ref, pan, de, "GAIN", 0.2, 0.5, 0),
		row("G2", ref, pan, de, "GAIN", 0.7, 0.5, 0),
		row("G4", ref, pan, de, "GAIN", 0.7, 0.5, 0),
	}

	m := Pivot(subset, ref)

	assert.True(t, m.Reordered)
	// G2 and G4 tie and keep axis order; G3 has no reference value and goes last.
	assert.Equal(t, []string{"G2", "G4", "G1", "G3"}, m.Genes)
	assert.Equal(t, []string{"Flux", ref}, m.Features)

	v, ok := m.At(0, 3)
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)
	_, ok = m.At(1, 3)
	assert.False(t, ok)
}

func TestPivotMissingReferenceFallsBack(t *testing.T) {
	subset := []table.Row{
		row("G1", "Flux", pan, de, "GAIN", 1, 0.9, 0),
		row("G2", "Flux", pan, de, "GAIN", 5, 0.9, 0),
	}
	m := Pivot(subset, "Not here")

	assert.False(t, m.Reordered)
	assert.Equal(t, []string{"G1", "G2"}, m.Genes)
}

func TestPivotAveragesDuplicatePairs(t *testing.T) {
	subset := []table.Row{
		row("G1", "F1", pan, de, "GAIN", 1, 0.9, 0),
		row("G1", "F1", pan, de, "GAIN", 3, 0.8, 0),
	}
	m := Pivot(subset, "")

	v, ok := m.At(0, 0)
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)
}

func TestPivotEmpty(t *testing.T) {
	m := Pivot(nil, DefaultReferenceFeature)

	assert.True(t, m.Empty())
	assert.Empty(t, m.Genes)
	assert.Empty(t, m.Features)
	assert.Empty(t, m.Values())
	_, ok := m.At(0, 0)
	assert.False(t, ok)
}

func TestPivotIsIdempotent(t *testing.T) {
	p := NewPartition(Up, []table.Row{
		row("G1", "F1", pan, de, "GAIN", 1, 0.9, 0),
		row("G2", "F1", pan, de, "GAIN", 2, 0.9, 0),
		row("G2", "F2", pan, de, "GAIN", -1, 0.4, 0),
		row("G3", DefaultReferenceFeature, pan, de, "GAIN", 7, 0.3, 0),
		row("G1", DefaultReferenceFeature, pan, de, "GAIN", 9, 0.3, 0),
	})
	sel := Selection{Cancer: pan, Target: de, GeneLimit: 3}

	first := Pivot(Filter(p, sel), DefaultReferenceFeature)
	second := Pivot(Filter(p, sel), DefaultReferenceFeature)

	assert.Equal(t, first.Features, second.Features)
	assert.Equal(t, first.Genes, second.Genes)
	if diff := cmp.Diff(first.Values(), second.Values()); diff != "" {
		t.Errorf("pivot not idempotent (-first +second):\n%s", diff)
	}
}
