// Command recipes browses TheMealDB from the terminal and manages a local list of
// favorite recipes.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"recipebrowser"
	"recipebrowser/catalog"
	"recipebrowser/favorites"
	"recipebrowser/listing"
	"recipebrowser/storage"
)

var (
	verbose       bool
	timeout       time.Duration
	resolutionLog bool
)

// app holds the components wired for one command invocation.
type app struct {
	listCfg   recipebrowser.ListConfig
	shareCfg  recipebrowser.ShareConfig
	ctrl      *listing.Controller
	favorites *favorites.Store
	tracer    trace.Tracer
	logger    *slog.Logger
	cleanup   []func(context.Context) error
}

var current *app

var rootCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Browse recipes and keep a list of favorites",
	Long: `Browse TheMealDB by name or category and keep favorite recipes locally.

Favorites are stored in FAVORITES_PATH, or in S3 when FAVORITES_S3_BUCKET is set.
Set OTEL_ENABLED=true to export traces and metrics over OTLP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		current = a
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")
	rootCmd.PersistentFlags().BoolVar(&resolutionLog, "resolution-log", false, "Write list resolutions to ./logs")
}

func main() {
	if err := execute(context.Background(), rootCmd); err != nil {
		os.Exit(1)
	}
}

// execute runs cmd and then the app cleanup, which cobra's post-run hooks would
// skip when the command fails.
func execute(ctx context.Context, cmd *cobra.Command) error {
	err := cmd.ExecuteContext(ctx)
	if current != nil {
		if cerr := current.close(context.Background()); cerr != nil {
			slog.Error("SETUP: Failed to clean up", "error", cerr)
		}
	}
	return err
}

func newApp(ctx context.Context) (*app, error) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	var (
		catalogCfg recipebrowser.CatalogConfig
		listCfg    recipebrowser.ListConfig
		favCfg     recipebrowser.FavoritesConfig
		shareCfg   recipebrowser.ShareConfig
		otelCfg    recipebrowser.OtelConfig
	)
	for _, cfg := range []any{&catalogCfg, &listCfg, &favCfg, &shareCfg, &otelCfg} {
		if err := recipebrowser.LoadConfig(cfg); err != nil {
			return nil, fmt.Errorf("SETUP: failed to decode config: %w", err)
		}
	}

	a := &app{
		listCfg:  listCfg,
		shareCfg: shareCfg,
		logger:   logger,
		tracer:   tracenoop.NewTracerProvider().Tracer(recipebrowser.TracerNameCLI),
	}

	opts := append(listing.ConfigOptions(listCfg), listing.WithLogger(logger))

	if otelCfg.Enabled {
		tracerProvider, meterProvider, otelShutdown, err := recipebrowser.InitOtel(ctx, otelCfg)
		if err != nil {
			slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
			return nil, err
		}
		a.cleanup = append(a.cleanup, otelShutdown)
		a.tracer = tracerProvider.Tracer(recipebrowser.TracerNameCLI)
		opts = append(opts,
			listing.WithTracer(tracerProvider.Tracer(recipebrowser.TracerNameListing)),
			listing.WithMeter(meterProvider.Meter(recipebrowser.TracerNameListing)),
		)
	}

	if resolutionLog {
		resLogger, cleanup, err := newResolutionLogger("cli")
		if err != nil {
			slog.Error("SETUP: Failed to create resolution logger", "error", err)
			return nil, err
		}
		a.cleanup = append(a.cleanup, func(context.Context) error { return cleanup() })
		opts = append(opts, listing.WithResolutionLogger(resLogger))
	}

	client := catalog.NewClientFromConfig(catalogCfg, logger)
	a.ctrl = listing.NewController(client, opts...)

	state, err := newFavoritesState(ctx, favCfg)
	if err != nil {
		slog.Error("SETUP: Failed to create favorites state", "error", err)
		return nil, err
	}
	a.favorites = favorites.Load(ctx, state, logger)
	slog.Debug("SETUP: Favorites loaded", "count", a.favorites.Len())

	return a, nil
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		errs = append(errs, a.cleanup[i](ctx))
	}
	return errors.Join(errs...)
}

// span starts a command span and a context bounded by --timeout.
func (a *app) span(cmd *cobra.Command, attrs ...attribute.KeyValue) (context.Context, func()) {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	ctx, span := a.tracer.Start(ctx, "recipes "+cmd.Name(), trace.WithAttributes(attrs...))
	return ctx, func() {
		span.End()
		cancel()
	}
}

func newFavoritesState(ctx context.Context, cfg recipebrowser.FavoritesConfig) (storage.State, error) {
	if cfg.S3Bucket == "" {
		return storage.NewFileState(cfg.Path), nil
	}
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return storage.NewS3State(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Key), nil
}

func newResolutionLogger(label string) (recipebrowser.ResolutionLogger, func() error, error) {
	logFilePath := recipebrowser.NewResolutionLogFilePath(label)
	if err := os.MkdirAll("./logs", 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log dir: %w", err)
	}
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := recipebrowser.NewFileResolutionLogger(logFile)
	cleanup := func() error {
		return errors.Join(logger.Flush(), logFile.Close())
	}
	return logger, cleanup, nil
}
