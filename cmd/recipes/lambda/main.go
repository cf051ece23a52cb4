package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"recipebrowser"
	"recipebrowser/catalog"
	"recipebrowser/favorites"
	"recipebrowser/listing"
	"recipebrowser/storage"
	"recipebrowser/tools"
)

// Params selects a tool by name; the remaining fields become its input.
type Params struct {
	Tool     string `json:"tool"`
	Search   string `json:"search,omitempty"`
	Category string `json:"category,omitempty"`
	Page     int    `json:"page,omitempty"`
	ID       string `json:"id,omitempty"`
}

type Results struct {
	Output any `json:"output"`
}

func (p Params) input() map[string]any {
	in := map[string]any{}
	if p.Search != "" {
		in["search"] = p.Search
	}
	if p.Category != "" {
		in["category"] = p.Category
	}
	if p.Page != 0 {
		in["page"] = p.Page
	}
	if p.ID != "" {
		in["id"] = p.ID
	}
	return in
}

func main() {
	var (
		catalogCfg recipebrowser.CatalogConfig
		listCfg    recipebrowser.ListConfig
		favCfg     recipebrowser.FavoritesConfig
		otelCfg    recipebrowser.OtelConfig
	)
	for _, cfg := range []any{&catalogCfg, &listCfg, &favCfg, &otelCfg} {
		if err := recipebrowser.LoadConfig(cfg); err != nil {
			slog.Error("SETUP: Failed to decode config", "error", err)
			return
		}
	}

	flush := func(context.Context) error { return nil }
	opts := append(listing.ConfigOptions(listCfg), listing.WithResolutionLogger(recipebrowser.NewStdoutResolutionLogger()))
	if otelCfg.Enabled {
		tracerProvider, meterProvider, _, err := recipebrowser.InitOtel(context.Background(), otelCfg)
		if err != nil {
			slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
			return
		}
		// lambda.Start never returns; export at the end of each invocation.
		flush = func(ctx context.Context) error {
			return errors.Join(tracerProvider.ForceFlush(ctx), meterProvider.ForceFlush(ctx))
		}
		opts = append(opts,
			listing.WithTracer(tracerProvider.Tracer(recipebrowser.TracerNameLambda)),
			listing.WithMeter(meterProvider.Meter(recipebrowser.TracerNameLambda)),
		)
	}
	// Shared across warm invocations along with its cache.
	ctrl := listing.NewController(catalog.NewClientFromConfig(catalogCfg, slog.Default()), opts...)

	fn := func(ctx context.Context, params Params) (Results, error) {
		defer func() {
			if err := flush(ctx); err != nil {
				slog.Error("SETUP: Failed to flush OpenTelemetry", "error", err)
			}
		}()

		if favCfg.S3Bucket == "" {
			return Results{}, fmt.Errorf("missing S3 config: FAVORITES_S3_BUCKET must be set")
		}

		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return Results{}, fmt.Errorf("failed to load AWS config: %w", err)
		}

		// Favorites are reloaded per invocation since other writers share the object.
		state := storage.NewS3State(s3.NewFromConfig(awsCfg), favCfg.S3Bucket, favCfg.S3Key)
		favs := favorites.Load(ctx, state, slog.Default())
		slog.Info("SETUP: S3 favorites state initialized", "favorites", favs.Len())

		registry, err := tools.NewRegistry(ctrl, favs)
		if err != nil {
			slog.Error("SETUP: Failed to create tool registry", "error", err)
			return Results{}, err
		}

		output, err := registry.Dispatch(ctx, tools.Call{Name: params.Tool, Input: params.input()})
		if err != nil {
			slog.Error("RESULT: Error handling request", "tool", params.Tool, "error", err)
			return Results{}, err
		}

		return Results{Output: output}, nil
	}

	lambda.Start(fn)
}
