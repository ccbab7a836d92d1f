// Package table holds the MetOncoFit prediction table and its loaders.
package table

// Row is one prediction record. The JSON names are the on-disk contract.
type Row struct {
	Gene    string  `json:"Gene" yaml:"gene"`
	Feature string  `json:"Feature" yaml:"feature"`
	Cancer  string  `json:"Cancer" yaml:"cancer"`
	Target  string  `json:"Target" yaml:"target"`
	Type    string  `json:"Type" yaml:"type"`
	Value   float64 `json:"Value" yaml:"value"`
	Gini    float64 `json:"Gini" yaml:"gini"`
	R       float64 `json:"R" yaml:"r"`
}

// Columns lists the required fields in the order they are served as headers.
var Columns = []string{"Gene", "Feature", "Cancer", "Target", "Type", "Value", "Gini", "R"}

// Values returns the row's fields in Columns order.
func (r Row) Values() []interface{} {
	return []interface{}{r.Gene, r.Feature, r.Cancer, r.Target, r.Type, r.Value, r.Gini, r.R}
}

// Table is the loaded dataset. It is never modified after New returns.
type Table struct {
	rows []Row
}

// New copies rows into a Table.
func New(rows []Row) *Table {
	cp := make([]Row, len(rows))
	copy(cp, rows)
	return &Table{rows: cp}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of the rows in load order.
func (t *Table) Rows() []Row {
	cp := make([]Row, len(t.rows))
	copy(cp, t.rows)
	return cp
}

// Page returns up to limit rows starting at offset.
func (t *Table) Page(offset, limit int) []Row {
	if offset < 0 || offset >= len(t.rows) || limit <= 0 {
		return []Row{}
	}
	end := offset + limit
	if end > len(t.rows) {
		end = len(t.rows)
	}
	cp := make([]Row, end-offset)
	copy(cp, t.rows[offset:end])
	return cp
}

// Cancers returns the distinct Cancer values in first-seen order.
func (t *Table) Cancers() []string {
	return t.distinct(func(r Row) string { return r.Cancer })
}

// Targets returns the distinct Target values in first-seen order.
func (t *Table) Targets() []string {
	return t.distinct(func(r Row) string { return r.Target })
}

// GeneCount returns the number of distinct genes.
func (t *Table) GeneCount() int {
	return len(t.distinct(func(r Row) string { return r.Gene }))
}

func (t *Table) distinct(key func(Row) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range t.rows {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
