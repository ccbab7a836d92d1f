package heatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metoncofit/internal/table"
)

const (
	pan = "Pan Cancer"
	de  = "Differential Expression"
)

func row(gene, feature, cancer, target, typ string, value, gini, r float64) table.Row {
	return table.Row{Gene: gene, Feature: feature, Cancer: cancer, Target: target, Type: typ, Value: value, Gini: gini, R: r}
}

func TestSplit(t *testing.T) {
	tbl := table.New([]table.Row{
		row("A", "F", pan, de, "UPREGULATED", 1, 0.2, 0),
		row("B", "F", pan, de, "GAIN", 1, 0.9, 0),
		row("C", "F", pan, de, "NEUT", 1, 0.5, 0),
		row("D", "F", pan, de, "NEUTRAL", 1, 0.5, 0),
		row("E", "F", pan, de, "LOSS", 1, 0.1, 0),
		row("F", "F", pan, de, "DOWNREGULATED", 1, 0.3, 0),
		row("G", "F", pan, de, "upregulated", 1, 0.3, 0),
		row("H", "F", pan, de, "AMPLIFIED", 1, 0.3, 0),
		row("I", "F", pan, de, "AMPLIFIED", 1, 0.3, 0),
	})

	ps := Split(tbl)

	assert.Equal(t, []string{"B", "A"}, genesOf(ps.Up.Rows()))
	// Equal Gini keeps table order.
	assert.Equal(t, []string{"C", "D"}, genesOf(ps.Neutral.Rows()))
	assert.Equal(t, []string{"F", "E"}, genesOf(ps.Down.Rows()))
	assert.Equal(t, map[string]int{"upregulated": 1, "AMPLIFIED": 2}, ps.Unclassified)

	total := ps.Up.Len() + ps.Neutral.Len() + ps.Down.Len()
	for _, n := range ps.Unclassified {
		total += n
	}
	assert.Equal(t, tbl.Len(), total)
}

func TestSplitCoversTableWithoutDuplicates(t *testing.T) {
	rows := []table.Row{}
	types := []string{"UPREGULATED", "GAIN", "NEUTRAL", "NEUT", "DOWNREGULATED", "LOSS"}
	for i := 0; i < 60; i++ {
		rows = append(rows, row(string(rune('A'+i%26))+string(rune('a'+i/26)), "F", pan, de, types[i%len(types)], float64(i), float64(i%7)/7, 0))
	}
	ps := Split(table.New(rows))

	seen := map[string]int{}
	for _, d := range Directions {
		for _, r := range ps.Get(d).Rows() {
			seen[r.Gene]++
		}
	}
	assert.Len(t, seen, len(rows))
	for gene, n := range seen {
		assert.Equal(t, 1, n, gene)
	}
	assert.Empty(t, ps.Unclassified)
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{
		"up": Up, "GAIN": Up, "neut": Neutral, "neutral": Neutral, "down": Down, "LOSS": Down,
	} {
		got, err := ParseDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDirection("sideways")
	assert.Error(t, err)
}

func TestDirectionLabels(t *testing.T) {
	assert.Equal(t, "UPREGULATED", Up.Label())
	assert.Equal(t, "NEUTRAL", Neutral.Label())
	assert.Equal(t, "DOWNREGULATED", Down.Label())
	assert.Equal(t, "neut", Neutral.String())
	assert.Equal(t, "Direction(7)", Direction(7).Label())
	assert.False(t, Direction(-1).Valid())
	assert.True(t, Down.Valid())
}

func TestHoverText(t *testing.T) {
	got := HoverText(table.Row{Gene: "TP53", Feature: "Flux", Value: 1.005, R: -0.333})
	assert.Equal(t, "Gene: TP53<br>Feature: Flux<br>Value: 1.00<br>R: -0.33", got)

	got = HoverText(table.Row{Gene: "MYC", Feature: "Degree", Value: 0, R: 0.125})
	assert.Equal(t, "Gene: MYC<br>Feature: Degree<br>Value: 0.00<br>R: 0.12", got)
}

func genesOf(rows []table.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Gene
	}
	return out
}
