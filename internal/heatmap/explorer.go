package heatmap

import (
	"context"
	"fmt"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"metoncofit/internal/table"
)

// View is everything the browser needs to draw one heatmap.
type View struct {
	Direction string        `json:"direction" yaml:"direction"`
	Title     string        `json:"title" yaml:"title"`
	Genes     []string      `json:"x" yaml:"genes"`
	Features  []string      `json:"y" yaml:"features"`
	Z         [][]*float64  `json:"z" yaml:"z"`
	Text      [][]string    `json:"text" yaml:"text"`
	Empty     bool          `json:"empty" yaml:"empty"`
	Rows      int           `json:"rows" yaml:"rows"`
	Stats     *ValueSummary `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// ValueSummary bounds the colour scale of a view.
type ValueSummary struct {
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	Median float64 `json:"median" yaml:"median"`
}

// Options describes the values the selection controls may take.
type Options struct {
	Cancers   []string  `json:"cancers"`
	Targets   []string  `json:"targets"`
	GeneCount int       `json:"gene_count"`
	Defaults  Selection `json:"defaults"`
}

// Explorer is the read-only context every render works from. It is safe for
// concurrent use.
type Explorer struct {
	table      *table.Table
	partitions Partitions
	reference  string
	defaults   Selection
	logger     *zap.Logger
}

// Option configures an Explorer.
type Option func(*Explorer)

// WithReferenceFeature sets the feature used to order gene columns. An empty
// name keeps first-appearance order.
func WithReferenceFeature(name string) Option {
	return func(e *Explorer) { e.reference = name }
}

// WithDefaults sets the selection reported by Options.
func WithDefaults(sel Selection) Option {
	return func(e *Explorer) { e.defaults = sel }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Explorer) { e.logger = l }
}

// DefaultSelection matches the controls' initial state.
var DefaultSelection = Selection{
	Cancer:    "Pan Cancer",
	Target:    "Differential Expression",
	GeneLimit: 25,
}

// NewExplorer partitions t once and returns the context used for all renders.
func NewExplorer(t *table.Table, opts ...Option) *Explorer {
	e := &Explorer{
		table:     t,
		reference: DefaultReferenceFeature,
		defaults:  DefaultSelection,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.partitions = Split(t)
	for label, n := range e.partitions.Unclassified {
		e.logger.Warn("rows with unknown Type dropped from all partitions",
			zap.String("type", label), zap.Int("rows", n))
	}
	e.logger.Info("partitioned prediction table",
		zap.Int("rows", t.Len()),
		zap.Int("up", e.partitions.Up.Len()),
		zap.Int("neut", e.partitions.Neutral.Len()),
		zap.Int("down", e.partitions.Down.Len()))
	return e
}

// Table returns the loaded table.
func (e *Explorer) Table() *table.Table { return e.table }

// Partition returns the partition for d.
func (e *Explorer) Partition(d Direction) *Partition { return e.partitions.Get(d) }

// Options returns the control domains and defaults.
func (e *Explorer) Options() Options {
	return Options{
		Cancers:   e.table.Cancers(),
		Targets:   e.table.Targets(),
		GeneCount: e.table.GeneCount(),
		Defaults:  e.defaults,
	}
}

// Defaults returns the configured default selection.
func (e *Explorer) Defaults() Selection { return e.defaults }

// Render runs filter, pivot and hover formatting for one partition.
func (e *Explorer) Render(d Direction, sel Selection) View {
	subset := Filter(e.partitions.Get(d), sel)
	m, source := pivot(subset, e.reference)

	if e.reference != "" && !m.Reordered && !m.Empty() {
		e.logger.Debug("reference feature absent, keeping gene order",
			zap.String("direction", d.String()),
			zap.String("feature", e.reference),
			zap.String("cancer", sel.Cancer),
			zap.String("target", sel.Target))
	}

	label := d.Label()
	if len(subset) > 0 {
		label = subset[0].Type
	}

	v := View{
		Direction: d.String(),
		Title:     "<b>Target label: " + label + "</b>",
		Genes:     m.Genes,
		Features:  m.Features,
		Z:         m.Values(),
		Text:      make([][]string, len(m.Features)),
		Empty:     m.Empty(),
		Rows:      len(subset),
	}

	present := make([]float64, 0, len(subset))
	for i := range m.Features {
		v.Text[i] = make([]string, len(m.Genes))
		for j := range m.Genes {
			if k := source[i][j]; k >= 0 {
				v.Text[i][j] = HoverText(subset[k])
			}
			if val, ok := m.At(i, j); ok {
				present = append(present, val)
			}
		}
	}
	v.Stats = summarize(present)
	return v
}

// RenderAll renders the up, neutral and down views in parallel.
func (e *Explorer) RenderAll(ctx context.Context, sel Selection) ([]View, error) {
	views := make([]View, len(Directions))
	g, ctx := errgroup.WithContext(ctx)
	for i, d := range Directions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("render %s: %w", d, err)
			}
			views[i] = e.Render(d, sel)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

// Caption is the readout shown next to the gene slider.
func Caption(sel Selection) string {
	return fmt.Sprintf("Number of genes displayed: %d", sel.GeneLimit)
}

func summarize(values []float64) *ValueSummary {
	if len(values) == 0 {
		return nil
	}
	data := stats.Float64Data(values)
	lo, _ := data.Min()
	hi, _ := data.Max()
	med, _ := data.Median()
	return &ValueSummary{Min: lo, Max: hi, Median: med}
}
