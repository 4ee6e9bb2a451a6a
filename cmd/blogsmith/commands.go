package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/thomas11/blogsmith/internal/deploy"
	"github.com/thomas11/blogsmith/internal/devserver"
	"github.com/thomas11/blogsmith/internal/htmlcheck"
	"github.com/thomas11/blogsmith/internal/metrics"
	"github.com/thomas11/blogsmith/internal/site"
	"github.com/thomas11/blogsmith/internal/siteconf"
)

// CLI holds the global flags and the commands.
type CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"blogsmith.yaml" env:"BLOGSMITH_CONFIG" type:"path"`
	Verbose bool   `short:"v" help:"Enable verbose logging" env:"BLOGSMITH_VERBOSE"`

	Build    BuildCmd    `cmd:"" default:"1" help:"Build the site"`
	Serve    ServeCmd    `cmd:"" help:"Build, serve and rebuild the site on changes"`
	Validate ValidateCmd `cmd:"" help:"Build and check every page with the Nu HTML checker"`
	Lint     LintCmd     `cmd:"" help:"Build and run the local HTML rules"`
	Links    LinksCmd    `cmd:"" help:"Build and check every internal link"`
	Deploy   DeployCmd   `cmd:"" help:"Build and sync the site to S3"`
}

// AfterApply runs after flag parsing; set up logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// errChecksFailed makes the process exit with 1 after a check reported its
// findings.
var errChecksFailed = errors.New("checks failed")

func (c *CLI) load() (*siteconf.SiteConf, error) {
	conf, err := siteconf.Read(c.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return conf, nil
}

// build loads the configuration and builds the site, logging the outcome
// the way every command reports it.
func (c *CLI) build(ctx context.Context, opts site.Options) (*siteconf.SiteConf, error) {
	conf, err := c.load()
	if err != nil {
		return nil, err
	}
	if _, err := site.Build(ctx, conf, opts); err != nil {
		slog.Error("Build failed", "error", err)
		return nil, err
	}
	slog.Info("Build ok")
	return conf, nil
}

type BuildCmd struct {
	Drafts bool `help:"Include files flagged as drafts" env:"BLOGSMITH_DRAFTS"`
	Debug  bool `help:"Print the file tree after the last plugin"`
}

func (b *BuildCmd) Run(ctx context.Context, root *CLI) error {
	_, err := root.build(ctx, site.Options{Drafts: b.Drafts, Debug: b.Debug})
	return err
}

type ServeCmd struct {
	Port   int  `short:"p" help:"Port to listen on" default:"3000" env:"PORT"`
	Drafts bool `help:"Include files flagged as drafts"`
}

func (s *ServeCmd) Run(ctx context.Context, root *CLI) error {
	recorder := metrics.NewPrometheusRecorder(prometheus.NewRegistry())
	opts := site.Options{Drafts: s.Drafts, Recorder: recorder}

	conf, err := root.build(ctx, opts)
	if err != nil {
		return err
	}

	srv := devserver.New(conf.Destination, devserver.Options{
		Watch:   []string{conf.Source, conf.LayoutDir},
		Metrics: recorder.Handler(),
		Rebuild: func(ctx context.Context) error {
			// Pick up configuration edits too.
			fresh, err := root.load()
			if err != nil {
				return err
			}
			_, err = site.Build(ctx, fresh, opts)
			return err
		},
	})

	errc := make(chan error, 1)
	go func() { errc <- srv.Watch(ctx) }()

	if err := srv.ListenAndServe(ctx, fmt.Sprintf(":%d", s.Port)); err != nil {
		return err
	}
	return <-errc
}

type ValidateCmd struct{}

func (ValidateCmd) Run(ctx context.Context, root *CLI) error {
	conf, err := root.build(ctx, site.Options{})
	if err != nil {
		return err
	}
	pages, err := htmlcheck.Pages(conf.Destination, conf.LintSkip)
	if err != nil {
		return err
	}

	v := htmlcheck.NewValidator(conf.ValidatorURL)
	issues, err := v.ValidateDir(ctx, conf.Destination, pages)
	if err != nil {
		return err
	}
	return reportIssues("validator", len(pages), issues)
}

type LintCmd struct{}

func (LintCmd) Run(ctx context.Context, root *CLI) error {
	conf, err := root.build(ctx, site.Options{})
	if err != nil {
		return err
	}
	pages, err := htmlcheck.Pages(conf.Destination, conf.LintSkip)
	if err != nil {
		return err
	}
	issues, err := htmlcheck.Lint(conf.Destination, pages)
	if err != nil {
		return err
	}
	return reportIssues("lint", len(pages), issues)
}

func reportIssues(check string, pages int, issues []htmlcheck.Issue) error {
	for _, i := range issues {
		fmt.Println(i)
	}
	slog.Info("Checked pages", "check", check, "pages", pages, "issues", len(issues))
	if len(issues) > 0 {
		return errChecksFailed
	}
	return nil
}

type LinksCmd struct{}

func (LinksCmd) Run(ctx context.Context, root *CLI) error {
	conf, err := root.build(ctx, site.Options{})
	if err != nil {
		return err
	}

	var hosts []string
	if u, err := url.Parse(conf.Site.URL); err == nil && u.Host != "" {
		hosts = append(hosts, u.Host)
	}
	report, err := htmlcheck.NewLinkChecker(conf.Destination, hosts...).Check()
	if err != nil {
		return err
	}
	for _, bad := range report.Bad {
		slog.Error(bad.String())
	}
	slog.Info(fmt.Sprintf("Checked %d links", report.Checked))
	if len(report.Bad) > 0 {
		return errChecksFailed
	}
	return nil
}

type DeployCmd struct {
	DryRun bool `name:"dry-run" help:"Show what would be uploaded without uploading"`
}

func (d *DeployCmd) Run(ctx context.Context, root *CLI) error {
	conf, err := root.build(ctx, site.Options{})
	if err != nil {
		return err
	}
	return deploy.Sync(ctx, deploy.Target{
		Dir:    conf.Destination,
		Bucket: conf.Deploy.Bucket,
		Args:   conf.Deploy.Args,
		DryRun: d.DryRun,
	}, os.Stdout)
}
