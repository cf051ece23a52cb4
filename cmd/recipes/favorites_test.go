package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"recipebrowser"
	"recipebrowser/favorites"
	"recipebrowser/listing"
	"recipebrowser/storage"
)

var errUnreachable = errors.New("catalog unreachable")

type unreachableCatalog struct{}

func (unreachableCatalog) ListCategories(context.Context) ([]string, error) {
	return nil, errUnreachable
}

func (unreachableCatalog) FilterByCategory(context.Context, string) ([]recipebrowser.Recipe, error) {
	return nil, errUnreachable
}

func (unreachableCatalog) SearchByName(context.Context, string) ([]recipebrowser.Recipe, error) {
	return nil, errUnreachable
}

func (unreachableCatalog) LookupByID(context.Context, string) (*recipebrowser.Recipe, error) {
	return nil, errUnreachable
}

func TestToggleFavoriteRemovesWithoutCatalog(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := favorites.Load(ctx, storage.NewMemoryState(nil), logger)
	require.NoError(t, store.Add(ctx, recipebrowser.Recipe{ID: "gone", Name: "Retired Stew"}))

	current = &app{
		ctrl:      listing.NewController(unreachableCatalog{}, listing.WithLogger(logger)),
		favorites: store,
		tracer:    tracenoop.NewTracerProvider().Tracer(recipebrowser.TracerNameCLI),
		logger:    logger,
	}
	t.Cleanup(func() { current = nil })

	cmd := &cobra.Command{Use: "toggle"}
	cmd.SetContext(ctx)

	var out bytes.Buffer
	require.NoError(t, toggleFavorite(cmd, &out, "gone"))
	assert.Equal(t, "Removed Retired Stew from favorites.\n", out.String())
	assert.False(t, store.IsFavorite("gone"))

	err := toggleFavorite(cmd, &out, "gone")
	assert.ErrorIs(t, err, errUnreachable, "adding still needs the catalog")
	assert.Zero(t, store.Len())
}
