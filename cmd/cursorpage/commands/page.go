package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ncobase/cursorpage/config"
	"github.com/ncobase/cursorpage/ctxutil"
	"github.com/ncobase/cursorpage/data"
	"github.com/ncobase/cursorpage/data/metrics"
	"github.com/ncobase/cursorpage/data/mongodb"
	"github.com/ncobase/cursorpage/logging/logger"
	"github.com/ncobase/cursorpage/logging/observes"
	"github.com/ncobase/cursorpage/paging"
	"github.com/ncobase/cursorpage/version"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// pageFlags are the command line form of mongodb.Request.
type pageFlags struct {
	collection      string
	filter          string
	projection      string
	field           string
	order           string
	limit           int
	prev            string
	next            string
	all             bool
	format          string
	collationLocale string
	aggregate       bool
}

// NewPageCommand creates the page command
func NewPageCommand(configFile *string) *cobra.Command {
	var f pageFlags

	cmd := &cobra.Command{
		Use:   "page",
		Short: "Print one page of a collection, or every page with --all",
		Long: `Print pages of a MongoDB collection as relaxed extended JSON, one batch per line.
Pass the prev_page or next_page token of a batch back with --prev or --next to move.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, _ := ctxutil.EnsureTraceID(cmd.Context())

			cfg, err := config.LoadConfig(*configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cleanupLogger, err := logger.New(cfg.Logger)
			if err != nil {
				return fmt.Errorf("failed to init logger: %w", err)
			}
			defer cleanupLogger()

			if err := startSentry(cfg); err != nil {
				return fmt.Errorf("failed to init sentry: %w", err)
			}
			defer func() { observes.ReportError(err, 2*time.Second) }()

			shutdownTracer, err := startTracer(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to init tracer: %w", err)
			}
			defer func() {
				if err := shutdownTracer(context.WithoutCancel(ctx)); err != nil {
					logger.StdLogger().Warnf(ctx, "failed to flush spans: %v", err)
				}
			}()

			defaults, err := cfg.Paging.Defaults()
			if err != nil {
				return err
			}
			req, err := f.request()
			if err != nil {
				return err
			}

			d, cleanup, err := data.New(ctx, cfg.Data, data.WithMetricsCollector(metrics.NewDataCollector()))
			if err != nil {
				return fmt.Errorf("failed to connect: %w", err)
			}
			defer cleanup()

			store, err := d.GetMongoCollection(f.collection, true)
			if err != nil {
				return err
			}

			opts := []paging.Option{paging.WithCollector(d.GetMetricsCollector())}
			if cfg.Paging.CacheEnabled() {
				if c := d.PageCache(cfg.Paging.CacheTTL); c != nil {
					opts = append(opts, paging.WithCache(c))
				}
			}

			coll := mongodb.NewCollection(store, defaults, opts...)
			if err := printPages(ctx, cmd.OutOrStdout(), coll, req); err != nil {
				return err
			}

			logger.StdLogger().EntryWithFields(ctx, d.GetStats()).Debug("page command finished")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.collection, "collection", "", "collection name")
	flags.StringVar(&f.filter, "filter", "", "query filter as extended JSON")
	flags.StringVar(&f.projection, "projection", "", "projection as extended JSON")
	flags.StringVar(&f.field, "field", "", "ordering field")
	flags.StringVar(&f.order, "order", "", "ordering direction: asc or desc")
	flags.IntVar(&f.limit, "limit", 0, "documents per page")
	flags.StringVar(&f.prev, "prev", "", "token of the page to go back from")
	flags.StringVar(&f.next, "next", "", "token of the page to continue after")
	flags.BoolVar(&f.all, "all", false, "follow next pages until the end")
	flags.StringVar(&f.format, "format", "", "response format: default or chat")
	flags.StringVar(&f.collationLocale, "collation-locale", "", "collation locale, e.g. en")
	flags.BoolVar(&f.aggregate, "aggregate", false, "query through the aggregation pipeline")
	_ = cmd.MarkFlagRequired("collection")

	return cmd
}

func (f pageFlags) request() (mongodb.Request, error) {
	req := mongodb.Request{
		OrderingField:       f.field,
		Limit:               f.limit,
		PrevPage:            f.prev,
		NextPage:            f.next,
		AutomaticPagination: &f.all,
		UseAggregate:        f.aggregate,
		ResponseFormat:      f.format,
	}
	if f.limit < 0 {
		return req, errors.New("--limit must not be negative")
	}

	var err error
	if req.Filter, err = parseDocument("filter", f.filter); err != nil {
		return req, err
	}
	if req.Projection, err = parseDocument("projection", f.projection); err != nil {
		return req, err
	}
	if f.order != "" {
		if req.Ordering, err = paging.ParseDirection(f.order); err != nil {
			return req, err
		}
	}
	if f.collationLocale != "" {
		req.Collation = &options.Collation{Locale: f.collationLocale}
	}
	return req, nil
}

func parseDocument(name, s string) (bson.M, error) {
	if s == "" {
		return nil, nil
	}
	var doc bson.M
	if err := bson.UnmarshalExtJSON([]byte(s), false, &doc); err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return doc, nil
}

// printPages writes every batch of req as one line of relaxed extended JSON.
func printPages(ctx context.Context, out io.Writer, coll *mongodb.Collection, req mongodb.Request) error {
	it, err := coll.Paginate(req)
	if err != nil {
		return err
	}
	for batch, err := range it.All(ctx) {
		if err != nil {
			return err
		}
		line, err := bson.MarshalExtJSON(batch, false, false)
		if err != nil {
			return fmt.Errorf("failed to render batch: %w", err)
		}
		if _, err := fmt.Fprintf(out, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// tracerOption maps the observes.tracer section onto the exporter options.
func tracerOption(cfg *config.Config) *observes.TracerOption {
	t := cfg.Observes.Tracer
	info := version.GetVersionInfo()
	opt := &observes.TracerOption{
		URL:                t.Endpoint,
		Insecure:           t.Insecure,
		Name:               t.ServiceName,
		Version:            t.ServiceVersion,
		Revision:           info.Revision,
		Environment:        t.Environment,
		SamplingRate:       t.SamplingRate,
		BatchTimeout:       t.BatchTimeout,
		ExportTimeout:      t.ExportTimeout,
		MaxExportBatchSize: t.MaxExportBatchSize,
	}
	if opt.Name == "" {
		opt.Name = cfg.AppName
	}
	if opt.Version == "" {
		opt.Version = info.Version
	}
	if opt.Environment == "" {
		opt.Environment = cfg.RunMode
	}
	return opt
}

func startSentry(cfg *config.Config) error {
	if cfg.Observes == nil || !cfg.Observes.Sentry.ReportingEnabled() {
		return nil
	}
	s := cfg.Observes.Sentry
	if err := s.Validate(); err != nil {
		return err
	}
	release := s.Release
	if release == "" {
		release = version.GetVersionInfo().Version
	}
	return observes.NewSentry(&observes.SentryOptions{
		Dsn:         s.Endpoint,
		Name:        cfg.AppName,
		Release:     release,
		Environment: s.Environment,
		SampleRate:  s.SampleRate,
	})
}

func startTracer(ctx context.Context, cfg *config.Config) (observes.ShutdownFunc, error) {
	if cfg.Observes == nil || !cfg.Observes.Tracer.TracingEnabled() {
		return func(context.Context) error { return nil }, nil
	}
	if err := cfg.Observes.Tracer.Validate(); err != nil {
		return nil, err
	}
	return observes.NewTracer(ctx, tracerOption(cfg))
}
