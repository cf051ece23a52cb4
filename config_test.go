package recipebrowser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var list ListConfig
		require.NoError(t, LoadConfig(&list))
		assert.Equal(t, ListConfig{
			PageSize:       12,
			SearchDebounce: 500 * time.Millisecond,
			Freshness:      5 * time.Minute,
			FanOutLimit:    8,
			RetryAfter:     15 * time.Second,
		}, list)

		var cat CatalogConfig
		require.NoError(t, LoadConfig(&cat))
		assert.Equal(t, "https://www.themealdb.com/api/json/v1/1", cat.BaseURL)
		assert.Equal(t, 10.0, cat.RequestsPerSecond)
		assert.Equal(t, 15*time.Second, cat.Timeout)

		var otelCfg OtelConfig
		require.NoError(t, LoadConfig(&otelCfg))
		assert.False(t, otelCfg.Enabled)
		assert.Equal(t, "recipe-browser", otelCfg.ServiceName)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("LIST_PAGE_SIZE", "6")
		t.Setenv("LIST_FRESHNESS", "1m")
		t.Setenv("FAVORITES_S3_BUCKET", "recipes")
		t.Setenv("SLACK_CHANNEL", "#dinner")

		var list ListConfig
		require.NoError(t, LoadConfig(&list))
		assert.Equal(t, 6, list.PageSize)
		assert.Equal(t, time.Minute, list.Freshness)

		var fav FavoritesConfig
		require.NoError(t, LoadConfig(&fav))
		assert.Equal(t, "recipes", fav.S3Bucket)
		assert.Equal(t, "favorites.json", fav.S3Key)

		var share ShareConfig
		require.NoError(t, LoadConfig(&share))
		assert.Equal(t, "#dinner", share.SlackChannel)
		assert.Empty(t, share.SlackWebhookURL)
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("LIST_PAGE_SIZE", "twelve")

		var list ListConfig
		assert.Error(t, LoadConfig(&list))
	})
}
