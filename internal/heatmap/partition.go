// Package heatmap turns the prediction table into per-direction heatmap views:
// partition by Type, filter by selection, pivot into a feature x gene matrix.
package heatmap

import (
	"fmt"
	"sort"
	"strings"

	"metoncofit/internal/table"
)

// Direction identifies one of the three partitions.
type Direction int

const (
	Up Direction = iota
	Neutral
	Down
)

// Directions lists the partitions in render order.
var Directions = []Direction{Up, Neutral, Down}

// synonyms holds the two Type labels accepted per direction; the first is the
// label used in titles when a view has no rows.
var synonyms = [...][2]string{
	Up:      {"UPREGULATED", "GAIN"},
	Neutral: {"NEUTRAL", "NEUT"},
	Down:    {"DOWNREGULATED", "LOSS"},
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Neutral:
		return "neut"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Valid reports whether d is one of Up, Neutral or Down.
func (d Direction) Valid() bool {
	return d >= Up && d <= Down
}

// Label returns the primary Type label for d, or its String form when d is
// not a known direction.
func (d Direction) Label() string {
	if !d.Valid() {
		return d.String()
	}
	return synonyms[d][0]
}

// ParseDirection accepts the short names used in routes ("up", "neut", "down"),
// "neutral", or any of the Type labels.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "up", "upregulated", "gain":
		return Up, nil
	case "neut", "neutral":
		return Neutral, nil
	case "down", "downregulated", "loss":
		return Down, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

func classify(typ string) (Direction, bool) {
	for _, d := range Directions {
		if typ == synonyms[d][0] || typ == synonyms[d][1] {
			return d, true
		}
	}
	return 0, false
}

// Partition is a Gini-descending view of the rows for one direction.
// It is read-only once built.
type Partition struct {
	dir  Direction
	rows []table.Row
}

// NewPartition sorts rows by Gini descending, keeping input order for ties.
// rows is copied.
func NewPartition(dir Direction, rows []table.Row) *Partition {
	cp := make([]table.Row, len(rows))
	copy(cp, rows)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Gini > cp[j].Gini })
	return &Partition{dir: dir, rows: cp}
}

func (p *Partition) Direction() Direction { return p.dir }

func (p *Partition) Len() int { return len(p.rows) }

// Rows returns a copy of the partition's rows.
func (p *Partition) Rows() []table.Row {
	cp := make([]table.Row, len(p.rows))
	copy(cp, p.rows)
	return cp
}

// Partitions is the result of Split.
type Partitions struct {
	Up      *Partition
	Neutral *Partition
	Down    *Partition

	// Unclassified counts rows per Type label that matched no direction.
	Unclassified map[string]int
}

// Get returns the partition for d. Unknown directions get an empty partition.
func (ps Partitions) Get(d Direction) *Partition {
	switch d {
	case Up:
		return ps.Up
	case Neutral:
		return ps.Neutral
	case Down:
		return ps.Down
	default:
		return &Partition{dir: d}
	}
}

// Split buckets the table rows by Type. Rows whose Type is not one of the six
// known labels land in no partition and are counted in Unclassified.
func Split(t *table.Table) Partitions {
	var buckets [3][]table.Row
	unclassified := make(map[string]int)
	for _, r := range t.Rows() {
		d, ok := classify(r.Type)
		if !ok {
			unclassified[r.Type]++
			continue
		}
		buckets[d] = append(buckets[d], r)
	}
	return Partitions{
		Up:           NewPartition(Up, buckets[Up]),
		Neutral:      NewPartition(Neutral, buckets[Neutral]),
		Down:         NewPartition(Down, buckets[Down]),
		Unclassified: unclassified,
	}
}
