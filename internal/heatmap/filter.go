package heatmap

import (
	"sort"

	"metoncofit/internal/table"
)

// Selection is the user's current choice of cancer, prediction target and
// number of genes to show.
type Selection struct {
	Cancer    string `json:"cancer" yaml:"cancer"`
	Target    string `json:"target" yaml:"target"`
	GeneLimit int    `json:"genes" yaml:"genes"`
}

// Filter narrows p to the rows for sel.Cancer and sel.Target, keeps the first
// sel.GeneLimit genes in partition order, and sorts the result by Gini then
// Value, both descending. A non-positive GeneLimit yields no rows.
func Filter(p *Partition, sel Selection) []table.Row {
	if sel.GeneLimit <= 0 {
		return []table.Row{}
	}

	matched := make([]table.Row, 0)
	for _, r := range p.rows {
		if r.Target == sel.Target && r.Cancer == sel.Cancer {
			matched = append(matched, r)
		}
	}

	keep := make(map[string]struct{}, sel.GeneLimit)
	for _, r := range matched {
		if len(keep) == sel.GeneLimit {
			break
		}
		keep[r.Gene] = struct{}{}
	}

	out := make([]table.Row, 0, len(matched))
	for _, r := range matched {
		if _, ok := keep[r.Gene]; ok {
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Gini != out[j].Gini {
			return out[i].Gini > out[j].Gini
		}
		return out[i].Value > out[j].Value
	})
	return out
}
