package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"metoncofit/internal/config"
	"metoncofit/internal/heatmap"
	"metoncofit/internal/table"
)

var (
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "metoncofit",
	Short: "MetOncoFit heatmap explorer",
	Long: `Serves the MetOncoFit prediction table as three filterable heatmaps
(upregulated/gain, neutral, downregulated/loss).

Run without a subcommand to start the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logger, err = newLogger(cfg.LogLevel, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var (
	renderCancer    string
	renderTarget    string
	renderGenes     int
	renderDirection string
	renderFormat    string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print heatmap views for one selection",
	Long: `Runs the same filter and pivot as the server and prints the views.

Example:
  metoncofit render --cancer Glioma --genes 10 --direction down --format yaml`,
	RunE: runRender,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	renderCmd.Flags().StringVar(&renderCancer, "cancer", "", "cancer type (default from config)")
	renderCmd.Flags().StringVar(&renderTarget, "target", "", "prediction target (default from config)")
	renderCmd.Flags().IntVar(&renderGenes, "genes", 0, "number of genes (default from config)")
	renderCmd.Flags().StringVar(&renderDirection, "direction", "", "up, neut or down (default all three)")
	renderCmd.Flags().StringVar(&renderFormat, "format", "json", "output format: json or yaml")

	rootCmd.AddCommand(serveCmd, renderCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

// loadExplorer loads the table once; a load failure stops the process before
// anything is served.
func loadExplorer(ctx context.Context, c *config.Config, logger *zap.Logger) (*heatmap.Explorer, error) {
	tbl, err := table.Open(ctx, c.DataFile, c.DuckDBTable)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded prediction table", zap.String("source", c.DataFile), zap.Int("rows", tbl.Len()))

	return heatmap.NewExplorer(tbl,
		heatmap.WithLogger(logger),
		heatmap.WithReferenceFeature(c.ReferenceFeature),
		heatmap.WithDefaults(heatmap.Selection{
			Cancer:    c.DefaultCancer,
			Target:    c.DefaultTarget,
			GeneLimit: c.DefaultGenes,
		}),
	), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ex, err := loadExplorer(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Error("failed to load prediction table", zap.Error(err))
		return err
	}

	gin.SetMode(cfg.GinMode)
	router := newRouter(ex, logger)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("failed to run server", zap.Error(err))
		return err
	}
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	ex, err := loadExplorer(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	sel := ex.Defaults()
	if renderCancer != "" {
		sel.Cancer = renderCancer
	}
	if renderTarget != "" {
		sel.Target = renderTarget
	}
	if cmd.Flags().Changed("genes") {
		sel.GeneLimit = renderGenes
	}

	var views []heatmap.View
	if renderDirection != "" {
		dir, err := heatmap.ParseDirection(renderDirection)
		if err != nil {
			return err
		}
		views = []heatmap.View{ex.Render(dir, sel)}
	} else {
		views, err = ex.RenderAll(cmd.Context(), sel)
		if err != nil {
			return err
		}
	}
	return writeViews(cmd.OutOrStdout(), renderFormat, sel, views)
}

type renderOutput struct {
	Selection heatmap.Selection `json:"selection" yaml:"selection"`
	Caption   string            `json:"caption" yaml:"caption"`
	Heatmaps  []heatmap.View    `json:"heatmaps" yaml:"heatmaps"`
}

func writeViews(w io.Writer, format string, sel heatmap.Selection, views []heatmap.View) error {
	out := renderOutput{Selection: sel, Caption: heatmap.Caption(sel), Heatmaps: views}
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
