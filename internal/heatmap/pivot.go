package heatmap

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"metoncofit/internal/table"
)

// DefaultReferenceFeature orders gene columns when present in a subset.
const DefaultReferenceFeature = "NCI-60 gene expression"

// Matrix is a feature x gene grid of Values. Cells without a source row are
// gaps, which is distinct from a zero Value.
type Matrix struct {
	Features []string
	Genes    []string
	// Reordered reports whether the genes were sorted by the reference feature.
	Reordered bool

	// cells is nil when either axis is empty; gaps are NaN.
	cells *mat.Dense
}

// Empty reports whether the matrix has no cells.
func (m *Matrix) Empty() bool {
	return m.cells == nil
}

// At returns the value at feature i, gene j and whether the cell is filled.
func (m *Matrix) At(i, j int) (float64, bool) {
	if m.cells == nil {
		return 0, false
	}
	v := m.cells.At(i, j)
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Values returns the grid row by row with nil for gaps.
func (m *Matrix) Values() [][]*float64 {
	out := make([][]*float64, len(m.Features))
	for i := range m.Features {
		out[i] = make([]*float64, len(m.Genes))
		for j := range m.Genes {
			if v, ok := m.At(i, j); ok {
				out[i][j] = &v
			}
		}
	}
	return out
}

// Pivot reshapes a filtered subset into a Matrix. Features keep their order of
// first appearance in subset, genes likewise, unless reference names a feature
// present in subset: genes are then sorted by that feature's Value descending,
// with genes lacking a value last. An empty reference disables the reordering.
func Pivot(subset []table.Row, reference string) *Matrix {
	m, _ := pivot(subset, reference)
	return m
}

// pivot also returns, per cell, the index in subset of the first row that
// filled it (-1 for gaps).
func pivot(subset []table.Row, reference string) (*Matrix, [][]int) {
	features, featureIdx := axis(subset, func(r table.Row) string { return r.Feature })
	genes, geneIdx := axis(subset, func(r table.Row) string { return r.Gene })

	m := &Matrix{Features: features, Genes: genes}
	if len(features) == 0 || len(genes) == 0 {
		return m, nil
	}

	sums := make([][]float64, len(features))
	counts := make([][]int, len(features))
	source := make([][]int, len(features))
	for i := range features {
		sums[i] = make([]float64, len(genes))
		counts[i] = make([]int, len(genes))
		source[i] = make([]int, len(genes))
		for j := range source[i] {
			source[i][j] = -1
		}
	}
	for k, r := range subset {
		i, j := featureIdx[r.Feature], geneIdx[r.Gene]
		// Duplicate pairs are averaged; the first row supplies the hover text.
		sums[i][j] += r.Value
		counts[i][j]++
		if source[i][j] < 0 {
			source[i][j] = k
		}
	}

	order := make([]int, len(genes))
	for j := range order {
		order[j] = j
	}
	if ref, ok := featureIdx[reference]; ok && reference != "" {
		sort.SliceStable(order, func(a, b int) bool {
			ca, cb := counts[ref][order[a]], counts[ref][order[b]]
			if ca == 0 || cb == 0 {
				return ca > 0 && cb == 0
			}
			return sums[ref][order[a]]/float64(ca) > sums[ref][order[b]]/float64(cb)
		})
		m.Reordered = true
	}

	m.Genes = make([]string, len(genes))
	m.cells = mat.NewDense(len(features), len(genes), nil)
	cellSource := make([][]int, len(features))
	for i := range features {
		cellSource[i] = make([]int, len(genes))
	}
	for col, j := range order {
		m.Genes[col] = genes[j]
		for i := range features {
			v := math.NaN()
			if counts[i][j] > 0 {
				v = sums[i][j] / float64(counts[i][j])
			}
			m.cells.Set(i, col, v)
			cellSource[i][col] = source[i][j]
		}
	}
	return m, cellSource
}

func axis(rows []table.Row, key func(table.Row) string) ([]string, map[string]int) {
	labels := []string{}
	idx := make(map[string]int)
	for _, r := range rows {
		k := key(r)
		if _, ok := idx[k]; ok {
			continue
		}
		idx[k] = len(labels)
		labels = append(labels, k)
	}
	return labels, idx
}
