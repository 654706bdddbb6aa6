package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eringen/spindrift"
	"github.com/eringen/spindrift/logger"
)

type buildOptions struct {
	config      string
	source      string
	output      string
	templates   string
	extensions  []string
	concurrency int
	watch       bool

	verbose  int
	quiet    bool
	jsonLogs bool
}

func defaultBuildOptions() *buildOptions {
	return &buildOptions{
		config:     spindrift.DefaultConfigPath,
		templates:  spindrift.DefaultTemplateDir,
		extensions: spindrift.DefaultExtensions,
	}
}

func (o *buildOptions) bindFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.config, "config", "c", o.config, "Project configuration file")
	f.StringVarP(&o.source, "source", "s", "", "Directory containing droplet files")
	f.StringVarP(&o.output, "output", "o", "", "Directory the site is written to")
	f.StringVarP(&o.templates, "templates", "t", o.templates, "Template directory")
	f.StringSliceVarP(&o.extensions, "extensions", "e", o.extensions, "Accepted droplet file extensions")
	f.IntVarP(&o.concurrency, "concurrency", "j", 0, "Maximum parallel workers per stage (0 = one per file)")
	f.BoolVarP(&o.watch, "watch", "w", false, "Rebuild when droplets or templates change")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("output")
}

// runBuild loads the project, runs one build and prints its summary. With
// watch enabled it keeps rebuilding until interrupted. Failed droplets and a
// failed index page do not produce an error.
func runBuild(ctx context.Context, w io.Writer, o *buildOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := spindrift.LoadConfig(o.config)
	if err != nil {
		return err
	}
	site, err := spindrift.New(cfg,
		spindrift.WithLogger(logger.Logger),
		spindrift.WithTemplateDir(o.templates),
		spindrift.WithExtensions(o.extensions...),
		spindrift.WithConcurrency(o.concurrency),
	)
	if err != nil {
		return err
	}

	if err := buildOnce(ctx, w, site, o); err != nil {
		return err
	}
	if !o.watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Logger.Infow("watching for changes", logger.FieldPath, o.source, logger.FieldTemplate, o.templates)
	return spindrift.Watch(ctx, []string{o.source, o.templates}, spindrift.DefaultDebounce, func(ctx context.Context) {
		if err := site.ReloadTemplates(); err != nil {
			logger.Logger.Errorw("template reload failed, keeping previous templates", logger.FieldError, err)
		}
		if err := buildOnce(ctx, w, site, o); err != nil {
			logger.Logger.Errorw("rebuild failed", logger.FieldError, err)
		}
	})
}

func buildOnce(ctx context.Context, w io.Writer, site *spindrift.Site, o *buildOptions) error {
	sum, err := site.Build(ctx, o.source, o.output)
	if err != nil {
		return err
	}
	for _, warn := range sum.Warnings {
		logger.Logger.Warnw("optional output failed", logger.FieldError, warn)
	}
	return sum.Print(w)
}
