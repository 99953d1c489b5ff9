// Package pipeline runs the batch: acquire the dataset, aggregate the
// catalog, summarise trends, build the chart and render it.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kacperjurak/batteryaging/pkg/aggregate"
	"github.com/kacperjurak/batteryaging/pkg/chart"
	"github.com/kacperjurak/batteryaging/pkg/config"
	"github.com/kacperjurak/batteryaging/pkg/dataset"
	"github.com/kacperjurak/batteryaging/pkg/models"
	"github.com/kacperjurak/batteryaging/pkg/profiling"
	"github.com/kacperjurak/batteryaging/pkg/render"
	"github.com/kacperjurak/batteryaging/pkg/report"
)

// Renderer writes the chart document.
type Renderer interface {
	Render(state chart.State, path string) error
}

// Pipeline wires the stages of one run
type Pipeline struct {
	config   *config.Config
	acquirer dataset.Acquirer
	renderer Renderer
	out      io.Writer
}

// Options holds configuration for creating a new Pipeline. Nil collaborators
// are derived from Config; a nil Renderer is built during Run once the
// plotly.js bundle is available.
type Options struct {
	Config   *config.Config
	Acquirer dataset.Acquirer
	Renderer Renderer
	Out      io.Writer
}

// Result is what a successful run produced.
type Result struct {
	Dataset    models.CombinedDataset
	Chart      chart.State
	Trends     []report.TrendRow
	OutputPath string
}

// New creates a new pipeline
func New(opts Options) *Pipeline {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Acquirer == nil {
		opts.Acquirer = NewAcquirer(opts.Config)
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &Pipeline{
		config:   opts.Config,
		acquirer: opts.Acquirer,
		renderer: opts.Renderer,
		out:      opts.Out,
	}
}

// NewAcquirer uses the local dataset directory when one is configured and
// the archive download otherwise.
func NewAcquirer(cfg *config.Config) dataset.Acquirer {
	if cfg.DatasetDir != "" {
		return dataset.LocalDir{Path: cfg.DatasetDir}
	}
	return dataset.NewArchiveDownloader(dataset.Options{
		URL:      cfg.DatasetURL,
		CacheDir: cfg.CacheDir,
		Username: cfg.KaggleUsername,
		Key:      cfg.KaggleKey,
		Timeout:  cfg.HTTPTimeout,
	})
}

// NewRenderer builds the HTML renderer. The plotly.js bundle is inlined
// unless the configuration opts into the CDN reference.
func NewRenderer(ctx context.Context, cfg *config.Config) (Renderer, error) {
	if cfg.PlotlyCDN {
		return render.NewHTMLRenderer(render.Options{PlotlyURL: cfg.PlotlyURL}), nil
	}
	script, err := render.ScriptSource{
		URL:      cfg.PlotlyURL,
		File:     cfg.PlotlyFile,
		CacheDir: cfg.CacheDir,
		Timeout:  cfg.HTTPTimeout,
	}.Load(ctx)
	if err != nil {
		return nil, err
	}
	return render.NewHTMLRenderer(render.Options{Script: script}), nil
}

// Run executes every stage in order. The output document is only written
// once all earlier stages succeeded.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	fmt.Fprintln(p.out, "Processing NASA battery dataset...")
	fmt.Fprintln(p.out, "Please wait...")

	var (
		layout   dataset.Layout
		metadata []models.MetadataRecord
		res      = Result{OutputPath: p.config.OutputPath}
	)

	err := profiling.Stage("acquire", func() error {
		root, err := p.acquirer.Acquire(ctx)
		if err != nil {
			return errors.Wrap(err, "acquire dataset")
		}
		layout, err = dataset.ResolveLayout(root)
		return errors.Wrap(err, "locate dataset")
	})
	if err != nil {
		return Result{}, err
	}

	err = profiling.Stage("metadata", func() error {
		var err error
		metadata, err = dataset.ReadMetadata(layout.MetadataPath)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	logrus.Infof("Loaded %d metadata rows from %s", len(metadata), layout.MetadataPath)

	err = profiling.Stage("aggregate", func() error {
		var progress io.Writer
		if p.config.Progress {
			progress = p.out
		}
		var err error
		res.Dataset, err = aggregate.New(aggregate.Options{Progress: progress}).
			Aggregate(metadata, dataset.NewFileLoader(layout))
		return errors.Wrap(err, "aggregate")
	})
	if err != nil {
		return Result{}, err
	}

	profiling.Stage("trend", func() error {
		res.Trends = report.Trends(res.Dataset, p.config.Trend)
		if len(res.Trends) > 0 {
			report.WriteTrendTable(p.out, res.Trends)
		}
		return nil
	})

	res.Chart = chart.Build(res.Dataset)

	renderer := p.renderer
	if renderer == nil {
		err = profiling.Stage("plotly", func() error {
			var err error
			renderer, err = NewRenderer(ctx, p.config)
			return errors.Wrap(err, "load plotly.js")
		})
		if err != nil {
			return Result{}, err
		}
	}

	err = profiling.Stage("render", func() error {
		return errors.Wrap(renderer.Render(res.Chart, p.config.OutputPath), "render chart")
	})
	if err != nil {
		return Result{}, err
	}

	fmt.Fprintf(p.out, "Plot saved. Open '%s' in a browser.\n", p.config.OutputPath)
	return res, nil
}
